package db

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var SchemaSQL string

// MusclestatsTables lists the tables created by SchemaSQL.
var MusclestatsTables = []string{"muscle", "exercise_muscle", "muscle_load_ledger", "muscle_load_state"}

// arbitrary, shared by every process applying the schema
const migrateLockID = 7_340_112

// Migrate applies SchemaSQL. Safe to run on every start, and from several
// processes at once.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	err := pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, migrateLockID); err != nil {
			return fmt.Errorf("schema lock: %w", err)
		}
		_, err := tx.Exec(ctx, SchemaSQL)
		return err
	})
	if err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
