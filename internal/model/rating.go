package model

import (
	"context"
	"time"
)

// RatingStore defines persistence operations for staff ratings.
type RatingStore interface {
	Create(ctx context.Context, rating Rating) (Rating, error)
	CountByStaff(ctx context.Context, staffID string) (int, error)
	AverageByStaff(ctx context.Context, staffID string) (float64, error)
	Exists(ctx context.Context, rating Rating) (bool, error)
	ResyncSequence(ctx context.Context) error
}

// Rating is one member's star rating of a staff member.
type Rating struct {
	ID        int64
	StaffID   string
	RaterID   string
	Stars     int
	Note      string
	CreatedAt time.Time
}

// RatingStats summarises the ratings of a staff member.
type RatingStats struct {
	Count   int
	Average float64
}

// RateStaffParams contains parameters to rate a staff member.
type RateStaffParams struct {
	ChannelID string
	Rater     Member
	StaffID   string
	Stars     int
	Note      string
}
