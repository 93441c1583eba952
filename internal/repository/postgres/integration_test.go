//go:build integration

package postgres_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/argrp/rpbot/internal/model"
	repo "github.com/argrp/rpbot/internal/repository/postgres"
)

var dsn string

func TestMain(m *testing.M) {
	ctx := context.Background()
	container, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{
		ContainerRequest: tc.ContainerRequest{
			Image:        "postgres:15-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "postgres",
				"POSTGRES_PASSWORD": "password",
				"POSTGRES_DB":       "rpbot_test",
			},
			WaitingFor: wait.ForListeningPort("5432/tcp").WithStartupTimeout(2 * time.Minute),
		},
		Started: true,
	})
	if err != nil {
		panic(err)
	}
	host, err := container.Host(ctx)
	if err != nil {
		panic(err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		panic(err)
	}
	dsn = fmt.Sprintf("postgres://postgres:password@%s:%s/rpbot_test?sslmode=disable", host, port.Port())

	code := m.Run()
	_ = container.Terminate(ctx)
	os.Exit(code)
}

func TestRepositories_CRUD(t *testing.T) {
	ctx := context.Background()
	conn, err := repo.NewConnection(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	t.Run("rating_repository", func(t *testing.T) {
		rr := repo.NewRatingRepository(conn.DB)
		for _, stars := range []int{5, 4, 4} {
			_, err := rr.Create(ctx, model.Rating{StaffID: "S1", RaterID: "R1", Stars: stars, Note: fmt.Sprintf("nota %d", stars)})
			require.NoError(t, err)
		}

		count, err := rr.CountByStaff(ctx, "S1")
		require.NoError(t, err)
		require.Equal(t, 3, count)

		avg, err := rr.AverageByStaff(ctx, "S1")
		require.NoError(t, err)
		require.Equal(t, 4.3, avg)

		avg, err = rr.AverageByStaff(ctx, "nobody")
		require.NoError(t, err)
		require.Zero(t, avg)

		exists, err := rr.Exists(ctx, model.Rating{StaffID: "S1", RaterID: "R1", Stars: 5, Note: "nota 5"})
		require.NoError(t, err)
		require.True(t, exists)

		require.NoError(t, rr.ResyncSequence(ctx))
		next, err := rr.Create(ctx, model.Rating{StaffID: "S2", RaterID: "R1", Stars: 3, Note: "x"})
		require.NoError(t, err)
		require.Greater(t, next.ID, int64(3))
	})

	t.Run("record_repository", func(t *testing.T) {
		rr := repo.NewRecordRepository(conn.DB)
		for _, charges := range []string{"robo", "hurto"} {
			_, err := rr.Create(ctx, model.Record{
				Kind: model.RecordKindArrest, UserID: "U1", UserTag: "user", Charges: charges,
				OfficerID: "P1", OfficerTag: "cop", EvidenceKey: "key-" + charges, Date: "15/02/2026",
			})
			require.NoError(t, err)
		}

		list, err := rr.ListByUser(ctx, model.RecordKindArrest, "U1", 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, "hurto", list[0].Charges)

		count, err := rr.CountByUser(ctx, model.RecordKindArrest, "U1")
		require.NoError(t, err)
		require.Equal(t, 2, count)

		fines, err := rr.CountByUser(ctx, model.RecordKindFine, "U1")
		require.NoError(t, err)
		require.Zero(t, fines)

		ok, err := rr.DeleteByID(ctx, model.RecordKindArrest, list[0].ID)
		require.NoError(t, err)
		require.True(t, ok)

		keys, err := rr.DeleteByUser(ctx, model.RecordKindArrest, "U1")
		require.NoError(t, err)
		require.Equal(t, []string{"key-robo"}, keys)
	})

	t.Run("audit_repository", func(t *testing.T) {
		ar := repo.NewAuditRepository(conn.DB)
		require.NoError(t, ar.Insert(ctx, model.DeletionLog{
			Kind: model.RecordKindFine, UserID: "U1", UserTag: "user", Count: 1,
			Reason: "test", ExecutedBy: "cop (P1)", Date: "15/2/2026, 10:00:00",
		}))
	})
}
