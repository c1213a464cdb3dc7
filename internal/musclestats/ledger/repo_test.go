//go:build integration_test || all_tests

package ledger

import (
	"context"
	"testing"
	"time"

	testingpkg "github.com/Toromb/gym-app-sub000/pkg/testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRepoSetup(t *testing.T, studentID string) *Repo {
	t.Helper()
	repo := NewRepo(testingpkg.GetDBPool(t))
	t.Cleanup(func() {
		_, err := repo.db.Exec(context.Background(), `DELETE FROM muscle_load_ledger WHERE student_id = $1`, studentID)
		assert.NoError(t, err)
	})
	return repo
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func newEntry(studentID, muscleID string, date time.Time, delta float64, sessionID string) Entry {
	return Entry{
		ID:              uuid.NewString(),
		StudentID:       studentID,
		MuscleID:        muscleID,
		Date:            date,
		DeltaLoad:       delta,
		SourceSessionID: sessionID,
		CreatedAt:       time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestRepo_ReplaceAndList(t *testing.T) {
	const studentID = "ledger-repo-student"
	repo := testRepoSetup(t, studentID)
	ctx := context.Background()
	sessionID := "ledger-repo-" + uuid.NewString()

	first := []Entry{
		newEntry(studentID, "pecho", day(t, "2024-03-10"), 15, sessionID),
		newEntry(studentID, "triceps", day(t, "2024-03-10"), 8, sessionID),
	}
	removed, err := repo.ReplaceSessionEntries(ctx, sessionID, first)
	require.NoError(t, err)
	assert.Empty(t, removed)

	entries, err := repo.List(ctx, ListParams{
		StudentID: studentID,
		After:     day(t, "2024-03-09"),
		Until:     day(t, "2024-03-10"),
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	entries, err = repo.List(ctx, ListParams{
		StudentID: studentID,
		MuscleID:  "pecho",
		After:     day(t, "2024-03-09"),
		Until:     day(t, "2024-03-10"),
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 15.0, entries[0].DeltaLoad)
	assert.Equal(t, "2024-03-10", entries[0].Date.Format("2006-01-02"))

	// the after bound is exclusive
	entries, err = repo.List(ctx, ListParams{
		StudentID: studentID,
		After:     day(t, "2024-03-10"),
		Until:     day(t, "2024-03-20"),
	})
	require.NoError(t, err)
	assert.Empty(t, entries)

	moved := []Entry{newEntry(studentID, "pecho", day(t, "2024-03-12"), 30, sessionID)}
	removed, err = repo.ReplaceSessionEntries(ctx, sessionID, moved)
	require.NoError(t, err)
	assert.Len(t, removed, 2)

	bySession, err := repo.ListBySession(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	assert.Equal(t, moved[0].ID, bySession[0].ID)

	removed, err = repo.ReplaceSessionEntries(ctx, sessionID, nil)
	require.NoError(t, err)
	assert.Len(t, removed, 1)

	bySession, err = repo.ListBySession(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, bySession)
}

func TestRepo_ReplaceRejectsDuplicates(t *testing.T) {
	const studentID = "ledger-repo-dup-student"
	repo := testRepoSetup(t, studentID)
	ctx := context.Background()
	sessionID := "ledger-repo-" + uuid.NewString()

	date := day(t, "2024-03-10")
	_, err := repo.ReplaceSessionEntries(ctx, sessionID, []Entry{
		newEntry(studentID, "pecho", date, 15, sessionID),
		newEntry(studentID, "pecho", date, 15, sessionID),
	})
	require.ErrorIs(t, err, ErrDuplicateEntry)

	bySession, err := repo.ListBySession(ctx, sessionID)
	require.NoError(t, err)
	assert.Empty(t, bySession)
}
