package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/argrp/rpbot/internal/model"
)

var _ model.RecordStore = (*RecordRepository)(nil)

// RecordRepository stores arrests and fines, one table per kind.
type RecordRepository struct {
	db *sql.DB
}

func NewRecordRepository(db *sql.DB) *RecordRepository {
	return &RecordRepository{
		db: db,
	}
}

func tableFor(kind model.RecordKind) (string, error) {
	switch kind {
	case model.RecordKindArrest:
		return "arrestos", nil
	case model.RecordKindFine:
		return "multas", nil
	default:
		return "", model.NewValidationError("unknown record kind %q", kind)
	}
}

func (r *RecordRepository) Create(ctx context.Context, record model.Record) (int64, error) {
	table, err := tableFor(record.Kind)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (user_id, user_tag, roblox_name, roblox_url, cargos, oficial_id, oficial_tag, foto_url, evidence_key, fecha)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`, table)

	var id int64
	err = r.db.QueryRowContext(ctx, query,
		record.UserID, record.UserTag, record.RobloxName, record.RobloxURL, record.Charges,
		record.OfficerID, record.OfficerTag, record.PhotoURL, record.EvidenceKey, record.Date,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// ListByUser returns the newest records first. A non-positive limit returns all of them.
func (r *RecordRepository) ListByUser(ctx context.Context, kind model.RecordKind, userID string, limit int) ([]model.Record, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, user_tag, roblox_name, roblox_url, cargos, oficial_id, oficial_tag, foto_url, evidence_key, fecha, created_at
		FROM %s
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`, table)

	rows, err := r.db.QueryContext(ctx, query, userID, sql.NullInt64{Int64: int64(limit), Valid: limit > 0})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		record := model.Record{Kind: kind}
		err := rows.Scan(
			&record.ID, &record.UserID, &record.UserTag, &record.RobloxName, &record.RobloxURL,
			&record.Charges, &record.OfficerID, &record.OfficerTag, &record.PhotoURL,
			&record.EvidenceKey, &record.Date, &record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

func (r *RecordRepository) CountByUser(ctx context.Context, kind model.RecordKind, userID string) (int, error) {
	table, err := tableFor(kind)
	if err != nil {
		return 0, err
	}

	var count int
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE user_id = $1`, table)
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *RecordRepository) DeleteByUser(ctx context.Context, kind model.RecordKind, userID string) ([]string, error) {
	table, err := tableFor(kind)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 RETURNING evidence_key`, table)
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := []string{}
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keys, nil
}

func (r *RecordRepository) DeleteByID(ctx context.Context, kind model.RecordKind, id int64) (bool, error) {
	table, err := tableFor(kind)
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, table), id)
	if err != nil {
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
