package loadstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Toromb/gym-app-sub000/internal/telemetry/tracing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Get(ctx context.Context, studentID, muscleID string) (_ *State, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.loadstate.get")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	s := &State{}
	err = r.db.QueryRow(ctx, `
		SELECT student_id, muscle_id, current_load, last_computed_date
		FROM muscle_load_state
		WHERE student_id = $1 AND muscle_id = $2
	`, studentID, muscleID).Scan(&s.StudentID, &s.MuscleID, &s.CurrentLoad, &s.LastComputedDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStateNotFound
		}
		return nil, fmt.Errorf("get load state: %w", err)
	}
	return s, nil
}

func (r *Repo) ListForStudent(ctx context.Context, studentID string) (_ []State, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.loadstate.list_student")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("student", studentID))

	rows, err := r.db.Query(ctx, `
		SELECT student_id, muscle_id, current_load, last_computed_date
		FROM muscle_load_state
		WHERE student_id = $1
		ORDER BY muscle_id
	`, studentID)
	if err != nil {
		return nil, fmt.Errorf("query load states: %w", err)
	}

	states, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (State, error) {
		var s State
		err := row.Scan(&s.StudentID, &s.MuscleID, &s.CurrentLoad, &s.LastComputedDate)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect load states: %w", err)
	}
	return states, nil
}

// UpsertBatch writes all states in one transaction. A row is never moved
// back to an older date than the one already stored.
func (r *Repo) UpsertBatch(ctx context.Context, states []State) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.loadstate.upsert_batch")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.Int("states", len(states)))

	if len(states) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range states {
		batch.Queue(`
			INSERT INTO muscle_load_state (student_id, muscle_id, current_load, last_computed_date, updated_at)
			VALUES ($1, $2, $3, $4, now())
			ON CONFLICT (student_id, muscle_id) DO UPDATE
			SET current_load = EXCLUDED.current_load,
			    last_computed_date = EXCLUDED.last_computed_date,
			    updated_at = now()
			WHERE muscle_load_state.last_computed_date <= EXCLUDED.last_computed_date
		`, s.StudentID, s.MuscleID, s.CurrentLoad, s.LastComputedDate)
	}

	err = pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("upsert load states: %w", err)
	}
	return nil
}

// InvalidateFrom drops the student's states for the given muscles computed
// on or after from, so the next read replays the ledger from an older point.
func (r *Repo) InvalidateFrom(ctx context.Context, studentID string, muscleIDs []string, from time.Time) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.loadstate.invalidate_from")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("student", studentID),
		attribute.StringSlice("muscles", muscleIDs),
		attribute.String("from", from.Format("2006-01-02")),
	)

	if len(muscleIDs) == 0 {
		return 0, nil
	}

	tag, err := r.db.Exec(ctx, `
		DELETE FROM muscle_load_state
		WHERE student_id = $1
		  AND muscle_id = ANY($2)
		  AND last_computed_date >= $3
	`, studentID, muscleIDs, from)
	if err != nil {
		return 0, fmt.Errorf("invalidate load states: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *Repo) DeleteForStudent(ctx context.Context, studentID string) (_ int64, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.loadstate.delete_student")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("student", studentID))

	tag, err := r.db.Exec(ctx, `DELETE FROM muscle_load_state WHERE student_id = $1`, studentID)
	if err != nil {
		return 0, fmt.Errorf("delete load states: %w", err)
	}
	return tag.RowsAffected(), nil
}
