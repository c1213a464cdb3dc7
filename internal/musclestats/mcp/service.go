package mcp

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Toromb/gym-app-sub000/internal/db"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/catalog"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/fatigue"
)

// LoadEngine is the part of the fatigue service exposed over MCP.
type LoadEngine interface {
	GetLoadsForStudent(ctx context.Context, studentID string, targetDate time.Time) ([]fatigue.MuscleLoad, error)
	GetLoadForMuscle(ctx context.Context, studentID, muscleID string, targetDate time.Time) (*fatigue.MuscleLoad, error)
	SyncSessionLoad(ctx context.Context, session fatigue.CompletedSessionRecord) (*fatigue.SyncResult, error)
	RebuildStudent(ctx context.Context, studentID string, targetDate time.Time) ([]fatigue.MuscleLoad, error)
}

// MappingLister lists the whole exercise muscle map.
type MappingLister interface {
	AllMappings(ctx context.Context) ([]catalog.Mapping, error)
}

// contextService is what Handler needs, kept as an interface for tests.
type contextService interface {
	GetSchema(ctx context.Context) (string, error)
	GetLoads(ctx context.Context, studentID string, date time.Time) ([]fatigue.MuscleLoad, error)
	GetLoad(ctx context.Context, studentID, muscleID string, date time.Time) (*fatigue.MuscleLoad, error)
	SyncSession(ctx context.Context, session fatigue.CompletedSessionRecord) (*fatigue.SyncResult, error)
	Rebuild(ctx context.Context, studentID string, date time.Time) ([]fatigue.MuscleLoad, error)
	ValidateMappings(ctx context.Context) ([]catalog.MappingIssue, error)
}

// ContextService backs the musclestats MCP tools.
type ContextService struct {
	schema   SchemaRepo
	engine   LoadEngine
	mappings MappingLister
}

func NewContextService(schemaRepo SchemaRepo, engine LoadEngine, mappings MappingLister) *ContextService {
	return &ContextService{
		schema:   schemaRepo,
		engine:   engine,
		mappings: mappings,
	}
}

// GetSchema returns the DB schema of the musclestats tables as markdown.
func (s *ContextService) GetSchema(ctx context.Context) (string, error) {
	cols, err := s.schema.GetMusclestatsColumns(ctx)
	if err != nil {
		return "", err
	}
	return formatMusclestatsSchema(cols), nil
}

func formatMusclestatsSchema(cols []SchemaColumn) string {
	if len(cols) == 0 {
		return "# Musclestats DB Schema\n\nNo musclestats tables found in the database.\n"
	}

	byTable := make(map[string][]SchemaColumn)
	for _, c := range cols {
		byTable[c.TableName] = append(byTable[c.TableName], c)
	}

	tableOrder := make([]string, 0, len(byTable))
	for t := range byTable {
		tableOrder = append(tableOrder, t)
	}
	sort.Strings(tableOrder)

	var b strings.Builder
	b.WriteString("# Musclestats DB Schema\n\n")
	fmt.Fprintf(&b, "Tables: %s (schema: public).\n\n", strings.Join(db.MusclestatsTables, ", "))

	for _, tableName := range tableOrder {
		b.WriteString("## ")
		b.WriteString(tableName)
		b.WriteString("\n\n| Column | Type | Nullable | Default |\n|--------|------|----------|--------|\n")
		for _, c := range byTable[tableName] {
			def := "-"
			if c.ColumnDef != nil && *c.ColumnDef != "" {
				def = *c.ColumnDef
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", c.ColumnName, c.DataType, c.IsNullable, def)
		}
		b.WriteString("\n")
	}

	return strings.TrimSuffix(b.String(), "\n\n") + "\n"
}

func (s *ContextService) GetLoads(ctx context.Context, studentID string, date time.Time) ([]fatigue.MuscleLoad, error) {
	return s.engine.GetLoadsForStudent(ctx, studentID, date)
}

func (s *ContextService) GetLoad(ctx context.Context, studentID, muscleID string, date time.Time) (*fatigue.MuscleLoad, error) {
	return s.engine.GetLoadForMuscle(ctx, studentID, muscleID, date)
}

func (s *ContextService) SyncSession(ctx context.Context, session fatigue.CompletedSessionRecord) (*fatigue.SyncResult, error) {
	return s.engine.SyncSessionLoad(ctx, session)
}

func (s *ContextService) Rebuild(ctx context.Context, studentID string, date time.Time) ([]fatigue.MuscleLoad, error) {
	return s.engine.RebuildStudent(ctx, studentID, date)
}

// ValidateMappings checks the whole exercise muscle map.
func (s *ContextService) ValidateMappings(ctx context.Context) ([]catalog.MappingIssue, error) {
	mappings, err := s.mappings.AllMappings(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.ValidateMappings(mappings), nil
}
