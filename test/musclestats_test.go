//go:build integration_test || all_tests

package test

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Toromb/gym-app-sub000/internal/musclestats/catalog"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/fatigue"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) seedCatalog(ctx context.Context) {
	t := s.T()
	for _, m := range []catalog.Muscle{
		{ID: "pecho", Name: "Pecho", Region: "torso", Active: true},
		{ID: "triceps", Name: "Tríceps", Region: "brazos", Active: true},
		{ID: "cuadriceps", Name: "Cuádriceps", Region: "piernas", Active: true},
	} {
		require.NoError(t, s.server.CatalogRepo.UpsertMuscle(ctx, m))
	}
	for _, m := range []catalog.Mapping{
		{ExerciseID: "press-banca", MuscleID: "pecho", Role: catalog.RolePrimary, LoadPercentage: 70},
		{ExerciseID: "press-banca", MuscleID: "triceps", Role: catalog.RoleSecondary, LoadPercentage: 30},
		{ExerciseID: "sentadilla", MuscleID: "cuadriceps", Role: catalog.RolePrimary, LoadPercentage: 100},
	} {
		require.NoError(t, s.server.CatalogRepo.UpsertMapping(ctx, m))
	}
	s.server.Catalog.Invalidate()
}

func (s *IntegrationTestSuite) loadsAt(ctx context.Context, studentID, date string) map[string]fatigue.MuscleLoad {
	t := s.T()
	day, err := fatigue.ParseDay(date)
	require.NoError(t, err)

	loads, err := s.server.Engine.GetLoadsForStudent(ctx, studentID, day)
	require.NoError(t, err)

	byMuscle := make(map[string]fatigue.MuscleLoad, len(loads))
	for _, l := range loads {
		byMuscle[l.MuscleID] = l
	}
	return byMuscle
}

func (s *IntegrationTestSuite) ledgerRows(sessionID string) int {
	var count int
	err := s.DB.QueryRow(`SELECT count(*) FROM muscle_load_ledger WHERE source_session_id = $1`, sessionID).Scan(&count)
	s.Require().NoError(err)
	return count
}

func (s *IntegrationTestSuite) stateDate(studentID, muscleID string) (string, bool) {
	var date time.Time
	err := s.DB.QueryRow(
		`SELECT last_computed_date FROM muscle_load_state WHERE student_id = $1 AND muscle_id = $2`,
		studentID, muscleID,
	).Scan(&date)
	if err != nil {
		return "", false
	}
	return fatigue.FormatDay(date), true
}

func (s *IntegrationTestSuite) TestMusclestats_SyncReportAndInvalidate() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()
	s.seedCatalog(ctx)

	const studentID = "student-sync"
	pressSession := fatigue.CompletedSessionRecord{
		ID:        "session-a",
		StudentID: studentID,
		Date:      "2024-03-10",
		Status:    fatigue.SessionStatusCompleted,
		Exercises: []fatigue.SessionExercise{
			{ExerciseID: "press-banca", IsCompleted: true},
			{ExerciseID: "press-banca", IsCompleted: true},
		},
	}

	res, err := s.server.Engine.SyncSessionLoad(ctx, pressSession)
	require.NoError(t, err)
	assert.Equal(t, 2, res.EntriesWritten)
	assert.Equal(t, map[string]float64{"pecho": 30, "triceps": 16}, res.Deltas)
	assert.Equal(t, 2, s.ledgerRows("session-a"))
	entries, err := s.server.Ledger.ListBySession(ctx, "session-a")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "pecho", entries[0].MuscleID)
	assert.Equal(t, 30.0, entries[0].DeltaLoad)

	// same input again leaves the ledger as it was
	res, err = s.server.Engine.SyncSessionLoad(ctx, pressSession)
	require.NoError(t, err)
	assert.Equal(t, 2, res.EntriesRemoved)
	assert.Equal(t, 2, s.ledgerRows("session-a"))

	loads := s.loadsAt(ctx, studentID, "2024-03-10")
	require.Len(t, loads, 3)
	assert.Equal(t, 30.0, loads["pecho"].Load)
	assert.Equal(t, fatigue.StatusActive, loads["pecho"].Status)
	assert.Equal(t, 16.0, loads["triceps"].Load)
	assert.Equal(t, fatigue.StatusRecovered, loads["triceps"].Status)
	assert.Equal(t, 0.0, loads["cuadriceps"].Load)

	loads = s.loadsAt(ctx, studentID, "2024-03-12")
	assert.Equal(t, 10.0, loads["pecho"].Load)
	assert.Equal(t, 0.0, loads["triceps"].Load)
	date, ok := s.stateDate(studentID, "pecho")
	require.True(t, ok)
	assert.Equal(t, "2024-03-12", date)
	state, err := s.server.States.Get(ctx, studentID, "pecho")
	require.NoError(t, err)
	assert.Equal(t, 10.0, state.CurrentLoad)

	// a session before the latest snapshot drops the stale snapshot
	_, err = s.server.Engine.SyncSessionLoad(ctx, fatigue.CompletedSessionRecord{
		ID:        "session-b",
		StudentID: studentID,
		Date:      "2024-03-11",
		Status:    fatigue.SessionStatusCompleted,
		Exercises: []fatigue.SessionExercise{{ExerciseID: "sentadilla", IsCompleted: true}},
	})
	require.NoError(t, err)
	_, ok = s.stateDate(studentID, "cuadriceps")
	assert.False(t, ok)
	_, ok = s.stateDate(studentID, "pecho")
	assert.True(t, ok)

	loads = s.loadsAt(ctx, studentID, "2024-03-12")
	assert.Equal(t, 5.0, loads["cuadriceps"].Load)
	assert.Equal(t, 10.0, loads["pecho"].Load)

	// cancelling the first session takes its load back out
	pressSession.Status = fatigue.SessionStatusCancelled
	res, err = s.server.Engine.SyncSessionLoad(ctx, pressSession)
	require.NoError(t, err)
	assert.False(t, res.Completed)
	assert.Equal(t, 0, res.EntriesWritten)
	assert.Equal(t, 0, s.ledgerRows("session-a"))

	loads = s.loadsAt(ctx, studentID, "2024-03-12")
	assert.Equal(t, 0.0, loads["pecho"].Load)
	assert.Equal(t, 0.0, loads["triceps"].Load)
	assert.Equal(t, 5.0, loads["cuadriceps"].Load)
}

func (s *IntegrationTestSuite) TestMusclestats_RebuildIsRateLimited() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()
	s.seedCatalog(ctx)

	const studentID = "student-rebuild"
	_, err := s.server.Engine.SyncSessionLoad(ctx, fatigue.CompletedSessionRecord{
		ID:        "session-rebuild",
		StudentID: studentID,
		Date:      "2024-03-14",
		Status:    fatigue.SessionStatusCompleted,
		Exercises: []fatigue.SessionExercise{{ExerciseID: "sentadilla", IsCompleted: true}},
	})
	require.NoError(t, err)

	// a corrupted snapshot is thrown away by the rebuild
	_, err = s.DB.Exec(`
		INSERT INTO muscle_load_state (student_id, muscle_id, current_load, last_computed_date)
		VALUES ($1, 'cuadriceps', 99, '2024-03-14')
	`, studentID)
	require.NoError(t, err)

	target, err := fatigue.ParseDay("2024-03-15")
	require.NoError(t, err)

	loads, err := s.server.Engine.RebuildStudent(ctx, studentID, target)
	require.NoError(t, err)
	for _, l := range loads {
		if l.MuscleID == "cuadriceps" {
			assert.Equal(t, 5.0, l.Load)
		} else {
			assert.Equal(t, 0.0, l.Load)
		}
	}

	_, err = s.server.Engine.RebuildStudent(ctx, studentID, target)
	require.Error(t, err)
	assert.ErrorIs(t, err, fatigue.ErrRebuildRateLimited)
}

func (s *IntegrationTestSuite) TestMusclestats_MCPTools() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	t := s.T()
	s.seedCatalog(ctx)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := s.server.MCPServer().Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	client := mcp.NewClient(&mcp.Implementation{Name: "integration-test", Version: "1.0.0"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer func() {
		_ = clientSession.Close()
		_ = serverSession.Wait()
	}()

	res, err := clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name: "sync_session_load",
		Arguments: map[string]any{
			"session_id": "session-mcp",
			"student_id": "student-mcp",
			"date":       "2024-03-15",
			"status":     "completed",
			"exercises":  []map[string]any{{"exercise_id": "press-banca", "is_completed": true}},
		},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, "%+v", res.Content)
	assert.Equal(t, 2, s.ledgerRows("session-mcp"))

	res, err = clientSession.CallTool(ctx, &mcp.CallToolParams{
		Name:      "get_muscle_load",
		Arguments: map[string]any{"student_id": "student-mcp", "muscle_id": "pecho", "date": "2024-03-15"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, "%+v", res.Content)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)

	var load fatigue.MuscleLoad
	require.NoError(t, json.Unmarshal([]byte(text.Text), &load))
	assert.Equal(t, "pecho", load.MuscleID)
	assert.Equal(t, 15.0, load.Load)
	assert.Equal(t, fatigue.StatusRecovered, load.Status)

	res, err = clientSession.CallTool(ctx, &mcp.CallToolParams{Name: "get_musclestats_schema"})
	require.NoError(t, err)
	require.False(t, res.IsError, "%+v", res.Content)
	text, ok = res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "muscle_load_ledger")
}
