package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"

	"tillpoint/internal/database"
)

func newTestPostgresStore(t *testing.T) *PostgresStore {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:15",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("could not start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sql.Open("pgx", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, database.RunMigrations(db, "../../migrations", zap.NewNop()))

	return NewPostgresStore(db)
}

func TestPostgresStoreGetSetDelete(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "k", []byte(`{"v":1}`)))
	got, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1}`, string(got))

	require.NoError(t, s.Set(ctx, "k", []byte(`{"v":2}`)))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, s.Delete(ctx, "k"))
}

func TestPostgresStoreCounter(t *testing.T) {
	s := newTestPostgresStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := s.Incr(ctx, "counter:invoice")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	require.NoError(t, s.ResetCounter(ctx, "counter:invoice"))
	got, err := s.Incr(ctx, "counter:invoice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), got)
}
