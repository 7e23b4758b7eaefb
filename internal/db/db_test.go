package db

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_URL(t *testing.T) {
	cfg := &Config{
		Host:     "db.internal",
		Port:     5433,
		User:     "harvester",
		Password: "p@ss:word/1",
		Database: "analytics",
	}

	raw := cfg.URL("pgx5")
	u, err := url.Parse(raw)
	require.NoError(t, err)

	assert.Equal(t, "pgx5", u.Scheme)
	assert.Equal(t, "db.internal:5433", u.Host)
	assert.Equal(t, "/analytics", u.Path)
	assert.Equal(t, "harvester", u.User.Username())
	password, _ := u.User.Password()
	assert.Equal(t, "p@ss:word/1", password)
	assert.Equal(t, "disable", u.Query().Get("sslmode"))

	cfg.SSLMode = "require"
	u, err = url.Parse(cfg.URL("postgres"))
	require.NoError(t, err)
	assert.Equal(t, "require", u.Query().Get("sslmode"))
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
	}{
		{"no rows", pgx.ErrNoRows, ErrNotFound},
		{"unique violation", &pgconn.PgError{Code: "23505", ConstraintName: "videos_pkey"}, ErrDuplicateKey},
		{"check violation", &pgconn.PgError{Code: "23514", ConstraintName: "videos_view_count_check"}, ErrCheckViolation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := WrapError(fmt.Errorf("exec: %w", tt.err), "upsert video")
			assert.True(t, errors.Is(err, tt.target))
			assert.Contains(t, err.Error(), "upsert video")
		})
	}

	t.Run("other pg error keeps code and cause", func(t *testing.T) {
		pgErr := &pgconn.PgError{Code: "42P01", Message: "relation does not exist"}
		err := WrapError(pgErr, "list channels")
		assert.Contains(t, err.Error(), "42P01")
		assert.True(t, errors.As(err, new(*pgconn.PgError)))
		assert.False(t, IsDuplicateKey(err))
		assert.False(t, IsNotFound(err))
	})

	t.Run("nil stays nil", func(t *testing.T) {
		assert.NoError(t, WrapError(nil, "noop"))
	})

	t.Run("helpers", func(t *testing.T) {
		assert.True(t, IsNotFound(WrapError(pgx.ErrNoRows, "get")))
		assert.True(t, IsDuplicateKey(WrapError(&pgconn.PgError{Code: "23505"}, "insert")))
	})
}

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := migrationFiles.ReadDir("migrations")
	require.NoError(t, err)

	var up, down int
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			up++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			down++
		}
	}

	assert.Equal(t, 3, up)
	assert.Equal(t, up, down, "every migration needs a down file")
}
