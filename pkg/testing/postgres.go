package testing

import (
	"context"
	"testing"
	"time"

	"github.com/Toromb/gym-app-sub000/internal/db"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// GetDBPool connects to POSTGRES_HOST:POSTGRES_PORT/POSTGRES_DB and applies
// the musclestats schema. Tests own their rows and clean them up. The pool is
// closed when the test ends.
func GetDBPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	params := db.NewDBPoolParams{
		DBHost:     envOr("POSTGRES_HOST", "localhost"),
		DBPort:     envOr("POSTGRES_PORT", "5432"),
		DBName:     envOr("POSTGRES_DB", "gym_app_test"),
		DBUser:     envOr("POSTGRES_USER", "postgres"),
		DBPassword: envOr("POSTGRES_PASSWORD", ""),
	}
	t.Logf("using postgres: [%s:%s/%s]", params.DBHost, params.DBPort, params.DBName)

	pool, err := db.NewDBPool(ctx, params)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, db.Migrate(ctx, pool))

	return pool
}
