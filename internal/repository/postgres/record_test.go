package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/argrp/rpbot/internal/model"
)

var recordColumns = []string{
	"id", "user_id", "user_tag", "roblox_name", "roblox_url", "cargos",
	"oficial_id", "oficial_tag", "foto_url", "evidence_key", "fecha", "created_at",
}

func TestRecordRepository_Create(t *testing.T) {
	tests := []struct {
		name  string
		kind  model.RecordKind
		table string
	}{
		{name: "arrest", kind: model.RecordKindArrest, table: "arrestos"},
		{name: "fine", kind: model.RecordKindFine, table: "multas"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			record := model.Record{
				Kind:        tt.kind,
				UserID:      "U1",
				UserTag:     "user#0001",
				RobloxName:  "Juan123",
				RobloxURL:   "https://www.roblox.com/users/1/profile",
				Charges:     "robo",
				OfficerID:   "P1",
				OfficerTag:  "cop#0001",
				PhotoURL:    "https://cdn.example/a.png",
				EvidenceKey: "arresto/U1/k.png",
				Date:        "15/02/2026",
			}

			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO "+tt.table)).
				WithArgs("U1", "user#0001", "Juan123", "https://www.roblox.com/users/1/profile", "robo",
					"P1", "cop#0001", "https://cdn.example/a.png", "arresto/U1/k.png", "15/02/2026").
				WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))

			id, err := NewRecordRepository(db).Create(context.Background(), record)
			require.NoError(t, err)
			assert.Equal(t, int64(12), id)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestRecordRepository_UnknownKind(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewRecordRepository(db)
	ctx := context.Background()

	_, err = repo.Create(ctx, model.Record{Kind: "ticket"})
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = repo.ListByUser(ctx, "ticket", "U1", 0)
	assert.ErrorIs(t, err, model.ErrValidation)

	_, err = repo.DeleteByUser(ctx, "", "U1")
	assert.ErrorIs(t, err, model.ErrValidation)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_ListByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Date(2026, 2, 20, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(recordColumns).
		AddRow(2, "U1", "user", "Juan123", "", "hurto", "P1", "cop", "u2", "", "20/02/2026", now).
		AddRow(1, "U1", "user", "Juan123", "", "robo", "P1", "cop", "u1", "k1", "19/02/2026", now.Add(-24*time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("FROM arrestos")).
		WithArgs("U1", 25).
		WillReturnRows(rows)

	records, err := NewRecordRepository(db).ListByUser(context.Background(), model.RecordKindArrest, "U1", 25)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, int64(2), records[0].ID)
	assert.Equal(t, model.RecordKindArrest, records[0].Kind)
	assert.Equal(t, "hurto", records[0].Charges)
	assert.Equal(t, "k1", records[1].EvidenceKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_ListByUserUnlimited(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM multas")).
		WithArgs("U1", nil).
		WillReturnRows(sqlmock.NewRows(recordColumns))

	records, err := NewRecordRepository(db).ListByUser(context.Background(), model.RecordKindFine, "U1", 0)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_CountByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM multas WHERE user_id = $1")).
		WithArgs("U1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := NewRecordRepository(db).CountByUser(context.Background(), model.RecordKindFine, "U1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRecordRepository_DeleteByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM arrestos WHERE user_id = $1 RETURNING evidence_key")).
		WithArgs("U1").
		WillReturnRows(sqlmock.NewRows([]string{"evidence_key"}).AddRow("k1").AddRow(""))

	keys, err := NewRecordRepository(db).DeleteByUser(context.Background(), model.RecordKindArrest, "U1")
	require.NoError(t, err)
	assert.Equal(t, []string{"k1", ""}, keys)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRepository_DeleteByUserNone(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM multas")).
		WithArgs("U9").
		WillReturnRows(sqlmock.NewRows([]string{"evidence_key"}))

	keys, err := NewRecordRepository(db).DeleteByUser(context.Background(), model.RecordKindFine, "U9")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRecordRepository_DeleteByID(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		execErr  error
		want     bool
		wantErr  bool
	}{
		{name: "deleted", affected: 1, want: true},
		{name: "missing", affected: 0, want: false},
		{name: "database error", execErr: errors.New("boom"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			exp := mock.ExpectExec(regexp.QuoteMeta("DELETE FROM arrestos WHERE id = $1")).WithArgs(5)
			if tt.execErr != nil {
				exp.WillReturnError(tt.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, tt.affected))
			}

			got, err := NewRecordRepository(db).DeleteByID(context.Background(), model.RecordKindArrest, 5)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
