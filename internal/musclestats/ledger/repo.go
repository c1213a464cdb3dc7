package ledger

import (
	"context"
	"fmt"

	"github.com/Toromb/gym-app-sub000/internal/telemetry/tracing"
	"github.com/Toromb/gym-app-sub000/pkg"

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

// ReplaceSessionEntries deletes every entry of the session and inserts the
// given ones, in one transaction. It returns the deleted entries.
func (r *Repo) ReplaceSessionEntries(ctx context.Context, sessionID string, entries []Entry) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.ledger.replace_session")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("session", sessionID),
		attribute.Int("entries", len(entries)),
	)

	if err := checkUnique(entries); err != nil {
		return nil, err
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil {
				err = fmt.Errorf("failed to rollback transaction: %w: %w", rollbackErr, err)
			}
		} else {
			err = tx.Commit(ctx)
		}
	}()

	rows, err := tx.Query(ctx, `
		DELETE FROM muscle_load_ledger
		WHERE source_session_id = $1
		RETURNING id::text, student_id, muscle_id, date, delta_load, source_session_id, created_at
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("delete session entries: %w", err)
	}
	removed, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("collect deleted entries: %w", err)
	}

	if len(entries) > 0 {
		batch := &pgx.Batch{}
		for _, e := range entries {
			batch.Queue(`
				INSERT INTO muscle_load_ledger (id, student_id, muscle_id, date, delta_load, source_session_id, created_at)
				VALUES ($1::text::uuid, $2, $3, $4, $5, $6, $7)
			`, e.ID, e.StudentID, e.MuscleID, e.Date, e.DeltaLoad, e.SourceSessionID, e.CreatedAt)
		}
		if err = tx.SendBatch(ctx, batch).Close(); err != nil {
			if pkg.IsUniqueViolationError(err) {
				return nil, fmt.Errorf("insert session entries: %w: %w", ErrDuplicateEntry, err)
			}
			return nil, fmt.Errorf("insert session entries: %w", err)
		}
	}

	return removed, nil
}

// List returns matching entries sorted by date, then insertion time.
func (r *Repo) List(ctx context.Context, params ListParams) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.ledger.list")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("student", params.StudentID),
		attribute.String("muscle", params.MuscleID),
		attribute.String("after", params.After.Format("2006-01-02")),
		attribute.String("until", params.Until.Format("2006-01-02")),
	)

	rows, err := r.db.Query(ctx, `
		SELECT id::text, student_id, muscle_id, date, delta_load, source_session_id, created_at
		FROM muscle_load_ledger
		WHERE student_id = $1
		  AND ($2::text = '' OR muscle_id = $2)
		  AND date > $3
		  AND date <= $4
		ORDER BY date ASC, created_at ASC, id ASC
	`, params.StudentID, params.MuscleID, params.After, params.Until)
	if err != nil {
		return nil, fmt.Errorf("query ledger: %w", err)
	}

	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("collect ledger entries: %w", err)
	}
	return entries, nil
}

func (r *Repo) ListBySession(ctx context.Context, sessionID string) (_ []Entry, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.ledger.list_session")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("session", sessionID))

	rows, err := r.db.Query(ctx, `
		SELECT id::text, student_id, muscle_id, date, delta_load, source_session_id, created_at
		FROM muscle_load_ledger
		WHERE source_session_id = $1
		ORDER BY muscle_id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query session entries: %w", err)
	}

	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("collect session entries: %w", err)
	}
	return entries, nil
}

func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.StudentID, &e.MuscleID, &e.Date, &e.DeltaLoad, &e.SourceSessionID, &e.CreatedAt)
	return e, err
}
