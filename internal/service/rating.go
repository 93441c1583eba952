package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/argrp/rpbot/internal/logger"
	"github.com/argrp/rpbot/internal/model"
)

// Ratings stores member ratings of staff.
type Ratings struct {
	store        model.RatingStore
	members      model.MemberManager
	capabilities model.CapabilityChecker
	channelID    string
	logger       *logger.Logger
}

func NewRatings(
	store model.RatingStore,
	members model.MemberManager,
	capabilities model.CapabilityChecker,
	channelID string,
	logger *logger.Logger,
) *Ratings {
	return &Ratings{
		store:        store,
		members:      members,
		capabilities: capabilities,
		channelID:    channelID,
		logger:       logger,
	}
}

// Rate stores a rating of a moderator and returns the moderator's updated stats.
func (s *Ratings) Rate(ctx context.Context, params model.RateStaffParams) (model.Rating, model.RatingStats, error) {
	if params.ChannelID != s.channelID {
		return model.Rating{}, model.RatingStats{}, model.NewValidationError("Este comando solo se puede usar en <#%s>", s.channelID)
	}
	if params.Stars < 1 || params.Stars > 5 {
		return model.Rating{}, model.RatingStats{}, model.NewValidationError("La calificación debe ser de 1 a 5 estrellas.")
	}
	note := strings.TrimSpace(params.Note)
	if note == "" {
		return model.Rating{}, model.RatingStats{}, model.NewValidationError("Explicá por qué das esta calificación.")
	}
	if utf8.RuneCountInString(note) > maxTextLength {
		return model.Rating{}, model.RatingStats{}, model.NewValidationError("La opinión no puede superar los %d caracteres.", maxTextLength)
	}

	staff, err := s.members.Member(ctx, params.StaffID)
	if errors.Is(err, model.ErrNotFound) || (err == nil && !s.capabilities.HasCapability(staff, model.CapabilityModerator)) {
		return model.Rating{}, model.RatingStats{}, model.NewValidationError("El usuario mencionado no es Moderador. Por favor intentalo de nuevo.")
	}
	if err != nil {
		return model.Rating{}, model.RatingStats{}, model.NewExternalError("obtener al miembro del staff", err)
	}

	rating, err := s.store.Create(ctx, model.Rating{
		StaffID: params.StaffID,
		RaterID: params.Rater.ID,
		Stars:   params.Stars,
		Note:    note,
	})
	if err != nil {
		s.logger.Error("Ratings service: failed to store rating", "staff", params.StaffID, "rater", params.Rater.ID, "error", err.Error())
		return model.Rating{}, model.RatingStats{}, model.NewExternalError("guardar la calificación", err)
	}

	stats, err := s.Stats(ctx, params.StaffID)
	if err != nil {
		return rating, model.RatingStats{}, err
	}

	return rating, stats, nil
}

// Stats returns the rating count and average of a staff member.
func (s *Ratings) Stats(ctx context.Context, staffID string) (model.RatingStats, error) {
	count, err := s.store.CountByStaff(ctx, staffID)
	if err != nil {
		return model.RatingStats{}, model.NewExternalError("calcular las estadísticas", err)
	}
	avg, err := s.store.AverageByStaff(ctx, staffID)
	if err != nil {
		return model.RatingStats{}, model.NewExternalError("calcular las estadísticas", err)
	}
	return model.RatingStats{Count: count, Average: avg}, nil
}

// Import stores ratings that are not already present and resynchronises the id
// sequence. Rows matching an existing staff, rater, note and stars are skipped.
func (s *Ratings) Import(ctx context.Context, ratings []model.Rating) (model.ImportResult, error) {
	var result model.ImportResult
	for i, r := range ratings {
		if r.StaffID == "" || r.RaterID == "" || r.Stars < 1 || r.Stars > 5 {
			return result, model.NewValidationError("rating %d: staff, rater and stars 1-5 are required", i)
		}

		exists, err := s.store.Exists(ctx, r)
		if err != nil {
			return result, err
		}
		if exists {
			result.Skipped++
			continue
		}
		if _, err := s.store.Create(ctx, r); err != nil {
			return result, err
		}
		result.Imported++
	}

	if err := s.store.ResyncSequence(ctx); err != nil {
		return result, err
	}

	s.logger.Info("Ratings service: import finished", "imported", result.Imported, "skipped", result.Skipped)

	return result, nil
}
