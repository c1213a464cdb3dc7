package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Toromb/gym-app-sub000/internal/musclestats/fatigue"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler parses MCP tool input, calls the service and formats the MCP result.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

// GetMusclestatsSchemaTool returns the MCP tool handler for get_musclestats_schema.
func (h *Handler) GetMusclestatsSchemaTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		text, err := h.service.GetSchema(ctx)
		if err != nil {
			return errorResult("Error fetching schema: " + err.Error()), nil, nil
		}
		return textResult(text), nil, nil
	}
}

// MuscleLoadsInput is the input for get_muscle_loads and rebuild_muscle_loads.
type MuscleLoadsInput struct {
	StudentID string `json:"student_id" jsonschema:"Student id"`
	Date      string `json:"date,omitempty" jsonschema:"Report date (YYYY-MM-DD), today when omitted"`
}

// GetMuscleLoadsTool returns the MCP tool handler for get_muscle_loads.
func (h *Handler) GetMuscleLoadsTool() func(context.Context, *mcp.CallToolRequest, MuscleLoadsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MuscleLoadsInput) (*mcp.CallToolResult, any, error) {
		if in.StudentID == "" {
			return errorResult("Missing student_id"), nil, nil
		}
		date, ok := parseDateArg(in.Date)
		if !ok {
			return errorResult("Invalid date: use YYYY-MM-DD"), nil, nil
		}

		loads, err := h.service.GetLoads(ctx, in.StudentID, date)
		if err != nil {
			return errorResult("Error computing muscle loads: " + err.Error()), nil, nil
		}
		return jsonResult(loads), nil, nil
	}
}

// MuscleLoadInput is the input for get_muscle_load.
type MuscleLoadInput struct {
	StudentID string `json:"student_id" jsonschema:"Student id"`
	MuscleID  string `json:"muscle_id" jsonschema:"Muscle id"`
	Date      string `json:"date,omitempty" jsonschema:"Report date (YYYY-MM-DD), today when omitted"`
}

// GetMuscleLoadTool returns the MCP tool handler for get_muscle_load.
func (h *Handler) GetMuscleLoadTool() func(context.Context, *mcp.CallToolRequest, MuscleLoadInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MuscleLoadInput) (*mcp.CallToolResult, any, error) {
		if in.StudentID == "" || in.MuscleID == "" {
			return errorResult("Missing student_id or muscle_id"), nil, nil
		}
		date, ok := parseDateArg(in.Date)
		if !ok {
			return errorResult("Invalid date: use YYYY-MM-DD"), nil, nil
		}

		load, err := h.service.GetLoad(ctx, in.StudentID, in.MuscleID, date)
		if err != nil {
			return errorResult("Error computing muscle load: " + err.Error()), nil, nil
		}
		return jsonResult(load), nil, nil
	}
}

type SessionExerciseInput struct {
	ExerciseID  string `json:"exercise_id" jsonschema:"Exercise id as used in the exercise muscle map"`
	IsCompleted bool   `json:"is_completed" jsonschema:"Whether the exercise was completed"`
}

// SyncSessionInput is the input for sync_session_load.
type SyncSessionInput struct {
	SessionID string                 `json:"session_id" jsonschema:"Session id"`
	StudentID string                 `json:"student_id" jsonschema:"Student id"`
	Date      string                 `json:"date" jsonschema:"Session date (YYYY-MM-DD)"`
	Status    string                 `json:"status" jsonschema:"Session status: PENDING, IN_PROGRESS, COMPLETED or CANCELLED"`
	Exercises []SessionExerciseInput `json:"exercises,omitempty" jsonschema:"Exercises of the session"`
}

func (in SyncSessionInput) record() fatigue.CompletedSessionRecord {
	rec := fatigue.CompletedSessionRecord{
		ID:        in.SessionID,
		StudentID: in.StudentID,
		Date:      in.Date,
		Status:    fatigue.SessionStatus(in.Status),
		Exercises: make([]fatigue.SessionExercise, 0, len(in.Exercises)),
	}
	for _, ex := range in.Exercises {
		rec.Exercises = append(rec.Exercises, fatigue.SessionExercise{
			ExerciseID:  ex.ExerciseID,
			IsCompleted: ex.IsCompleted,
		})
	}
	return rec
}

// SyncSessionLoadTool returns the MCP tool handler for sync_session_load.
func (h *Handler) SyncSessionLoadTool() func(context.Context, *mcp.CallToolRequest, SyncSessionInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in SyncSessionInput) (*mcp.CallToolResult, any, error) {
		res, err := h.service.SyncSession(ctx, in.record())
		if err != nil {
			return errorResult("Error syncing session: " + err.Error()), nil, nil
		}
		return jsonResult(res), nil, nil
	}
}

// RebuildMuscleLoadsTool returns the MCP tool handler for rebuild_muscle_loads.
func (h *Handler) RebuildMuscleLoadsTool() func(context.Context, *mcp.CallToolRequest, MuscleLoadsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in MuscleLoadsInput) (*mcp.CallToolResult, any, error) {
		if in.StudentID == "" {
			return errorResult("Missing student_id"), nil, nil
		}
		date, ok := parseDateArg(in.Date)
		if !ok {
			return errorResult("Invalid date: use YYYY-MM-DD"), nil, nil
		}

		loads, err := h.service.Rebuild(ctx, in.StudentID, date)
		if err != nil {
			return errorResult("Error rebuilding muscle loads: " + err.Error()), nil, nil
		}
		return jsonResult(loads), nil, nil
	}
}

// ValidateExerciseMappingsTool returns the MCP tool handler for validate_exercise_mappings.
func (h *Handler) ValidateExerciseMappingsTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		issues, err := h.service.ValidateMappings(ctx)
		if err != nil {
			return errorResult("Error validating mappings: " + err.Error()), nil, nil
		}
		if len(issues) == 0 {
			return textResult("All exercise muscle mappings are consistent."), nil, nil
		}
		return jsonResult(issues), nil, nil
	}
}

func parseDateArg(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, true
	}
	d, err := fatigue.ParseDay(s)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return textResult(string(raw))
}
