package catalog

import (
	"context"
	"fmt"

	"github.com/Toromb/gym-app-sub000/internal/telemetry/tracing"
	"github.com/Toromb/gym-app-sub000/pkg"

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

// AllMuscles returns the active muscles ordered by name.
func (r *Repo) AllMuscles(ctx context.Context) (_ []Muscle, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.muscles.all")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	rows, err := r.db.Query(ctx, `
		SELECT id, name, region, active
		FROM muscle
		WHERE active = TRUE
		ORDER BY name, id
	`)
	if err != nil {
		return nil, fmt.Errorf("query muscles: %w", err)
	}
	defer rows.Close()

	muscles := make([]Muscle, 0)
	for rows.Next() {
		var m Muscle
		if err := rows.Scan(&m.ID, &m.Name, &m.Region, &m.Active); err != nil {
			return nil, fmt.Errorf("scan muscle: %w", err)
		}
		muscles = append(muscles, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate muscles: %w", err)
	}

	return muscles, nil
}

func (r *Repo) MappingsForExercise(ctx context.Context, exerciseID string) (_ []Mapping, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.mappings.exercise")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("exercise", exerciseID))

	return r.queryMappings(ctx, `
		SELECT exercise_id, muscle_id, role, load_percentage
		FROM exercise_muscle
		WHERE exercise_id = $1
		ORDER BY muscle_id
	`, exerciseID)
}

func (r *Repo) AllMappings(ctx context.Context) (_ []Mapping, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.mappings.all")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	return r.queryMappings(ctx, `
		SELECT exercise_id, muscle_id, role, load_percentage
		FROM exercise_muscle
		ORDER BY exercise_id, muscle_id
	`)
}

func (r *Repo) queryMappings(ctx context.Context, query string, args ...any) ([]Mapping, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query mappings: %w", err)
	}
	defer rows.Close()

	mappings := make([]Mapping, 0)
	for rows.Next() {
		var m Mapping
		if err := rows.Scan(&m.ExerciseID, &m.MuscleID, &m.Role, &m.LoadPercentage); err != nil {
			return nil, fmt.Errorf("scan mapping: %w", err)
		}
		mappings = append(mappings, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mappings: %w", err)
	}

	return mappings, nil
}

func (r *Repo) UpsertMuscle(ctx context.Context, m Muscle) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.muscles.upsert")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(ctx, `
		INSERT INTO muscle (id, name, region, active)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, region = EXCLUDED.region, active = EXCLUDED.active
	`, m.ID, m.Name, m.Region, m.Active)
	if err != nil {
		return fmt.Errorf("upsert muscle [%s]: %w", m.ID, err)
	}
	return nil
}

func (r *Repo) UpsertMapping(ctx context.Context, m Mapping) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.catalog.mappings.upsert")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()

	_, err = r.db.Exec(ctx, `
		INSERT INTO exercise_muscle (exercise_id, muscle_id, role, load_percentage)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (exercise_id, muscle_id) DO UPDATE
		SET role = EXCLUDED.role, load_percentage = EXCLUDED.load_percentage
	`, m.ExerciseID, m.MuscleID, string(m.Role), m.LoadPercentage)
	if err != nil {
		if pkg.IsForeignKeyViolationError(err) {
			return fmt.Errorf("upsert mapping [%s/%s]: %w", m.ExerciseID, m.MuscleID, ErrMuscleNotFound)
		}
		return fmt.Errorf("upsert mapping [%s/%s]: %w", m.ExerciseID, m.MuscleID, err)
	}
	return nil
}
