package postgres

import (
	"context"
	"database/sql"

	"github.com/argrp/rpbot/internal/model"
)

var _ model.AuditStore = (*AuditRepository)(nil)

// AuditRepository writes the deletion log.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{
		db: db,
	}
}

func (r *AuditRepository) Insert(ctx context.Context, entry model.DeletionLog) error {
	const query = `
		INSERT INTO log_eliminaciones (tipo, user_id, user_tag, cantidad, motivo, ejecutado_by, fecha)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		string(entry.Kind), entry.UserID, entry.UserTag, entry.Count, entry.Reason, entry.ExecutedBy, entry.Date,
	)
	return err
}
