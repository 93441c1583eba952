package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/argrp/rpbot/internal/model"
)

type ratingFile struct {
	Ratings []ratingRow `yaml:"ratings"`
}

type ratingRow struct {
	StaffID   string    `yaml:"staff_user_id"`
	RaterID   string    `yaml:"calificador_user_id"`
	Stars     int       `yaml:"estrellas"`
	Note      string    `yaml:"nota"`
	CreatedAt time.Time `yaml:"created_at"`
}

func readRatings(path string) ([]model.Rating, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read ratings file: %w", err)
	}
	return parseRatings(data)
}

func parseRatings(data []byte) ([]model.Rating, error) {
	var f ratingFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode ratings file: %w", err)
	}

	ratings := make([]model.Rating, 0, len(f.Ratings))
	for _, row := range f.Ratings {
		ratings = append(ratings, model.Rating{
			StaffID:   row.StaffID,
			RaterID:   row.RaterID,
			Stars:     row.Stars,
			Note:      row.Note,
			CreatedAt: row.CreatedAt,
		})
	}
	return ratings, nil
}
