package postgres

import (
	"context"
	"database/sql"

	"github.com/argrp/rpbot/internal/model"
)

var _ model.RatingStore = (*RatingRepository)(nil)

type RatingRepository struct {
	db *sql.DB
}

func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{
		db: db,
	}
}

// Create stores a rating. A zero CreatedAt is filled by the database.
func (r *RatingRepository) Create(ctx context.Context, rating model.Rating) (model.Rating, error) {
	const query = `
		INSERT INTO calificaciones (staff_user_id, calificador_user_id, estrellas, nota, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5::timestamp, NOW()))
		RETURNING id, created_at`

	createdAt := sql.NullTime{Time: rating.CreatedAt, Valid: !rating.CreatedAt.IsZero()}
	err := r.db.QueryRowContext(ctx, query,
		rating.StaffID, rating.RaterID, rating.Stars, rating.Note, createdAt,
	).Scan(&rating.ID, &rating.CreatedAt)
	if err != nil {
		return model.Rating{}, err
	}

	return rating, nil
}

func (r *RatingRepository) CountByStaff(ctx context.Context, staffID string) (int, error) {
	const query = `SELECT COUNT(*) FROM calificaciones WHERE staff_user_id = $1`

	var count int
	if err := r.db.QueryRowContext(ctx, query, staffID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// AverageByStaff returns the mean stars rounded to one decimal, or 0 without ratings.
func (r *RatingRepository) AverageByStaff(ctx context.Context, staffID string) (float64, error) {
	const query = `SELECT COALESCE(ROUND(AVG(estrellas)::numeric, 1), 0)::float8 FROM calificaciones WHERE staff_user_id = $1`

	var avg float64
	if err := r.db.QueryRowContext(ctx, query, staffID).Scan(&avg); err != nil {
		return 0, err
	}
	return avg, nil
}

// Exists reports whether an identical rating (staff, rater, note, stars) is stored.
func (r *RatingRepository) Exists(ctx context.Context, rating model.Rating) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM calificaciones
			WHERE staff_user_id = $1 AND calificador_user_id = $2 AND nota = $3 AND estrellas = $4
		)`

	var exists bool
	err := r.db.QueryRowContext(ctx, query, rating.StaffID, rating.RaterID, rating.Note, rating.Stars).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// ResyncSequence moves the id sequence past the highest stored id.
func (r *RatingRepository) ResyncSequence(ctx context.Context) error {
	const query = `SELECT setval('calificaciones_id_seq', COALESCE((SELECT MAX(id) FROM calificaciones), 0) + 1, false)`

	_, err := r.db.ExecContext(ctx, query)
	return err
}
