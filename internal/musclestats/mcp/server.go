package mcp

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with the musclestats tools: load reports,
// session sync, rebuild, mapping validation and the DB schema.
func NewServer(pool *pgxpool.Pool, engine LoadEngine, mappings MappingLister) *mcp.Server {
	return NewServerWithService(NewContextService(NewPoolSchemaRepo(pool), engine, mappings))
}

func NewServerWithService(svc contextService) *mcp.Server {
	h := NewHandler(svc)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "musclestats",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_muscle_loads",
		Description: "Returns the fatigue load (0-100) and status (RECOVERED, ACTIVE, FATIGUED, OVERLOADED) of every muscle for a student. Args: student_id; optional: date (YYYY-MM-DD, defaults to today). Use when planning the next workout or checking recovery.",
	}, h.GetMuscleLoadsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_muscle_load",
		Description: "Returns the fatigue load and status of one muscle for a student. Args: student_id, muscle_id; optional: date (YYYY-MM-DD).",
	}, h.GetMuscleLoadTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "sync_session_load",
		Description: "Records the muscle load of a workout session. Only COMPLETED sessions add load; syncing a session again replaces its previous load, so re-sync after any edit, including un-completing or cancelling it.",
	}, h.SyncSessionLoadTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "rebuild_muscle_loads",
		Description: "Drops the cached load snapshots of a student and recomputes them from the full session history. Rate limited. Args: student_id; optional: date (YYYY-MM-DD).",
	}, h.RebuildMuscleLoadsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "validate_exercise_mappings",
		Description: "Checks the exercise muscle map: load percentages summing to 100, exactly one PRIMARY muscle per exercise, known roles, no duplicates.",
	}, h.ValidateExerciseMappingsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_musclestats_schema",
		Description: "Returns the DB schema of the musclestats tables (muscle, exercise_muscle, muscle_load_ledger, muscle_load_state): columns, types, nullable, default.",
	}, h.GetMusclestatsSchemaTool())

	return s
}
