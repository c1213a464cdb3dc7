package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestTestRepo_ReplaceSessionEntries(t *testing.T) {
	ctx := context.Background()
	repo := NewTestRepo()

	first := []Entry{
		{ID: "1", StudentID: "s1", MuscleID: "pecho", Date: day("2024-03-01"), DeltaLoad: 15, SourceSessionID: "sess-1"},
		{ID: "2", StudentID: "s1", MuscleID: "triceps", Date: day("2024-03-01"), DeltaLoad: 8, SourceSessionID: "sess-1"},
	}
	removed, err := repo.ReplaceSessionEntries(ctx, "sess-1", first)
	require.NoError(t, err)
	assert.Empty(t, removed)
	assert.Equal(t, 2, repo.Len())

	other := []Entry{
		{ID: "3", StudentID: "s1", MuscleID: "pecho", Date: day("2024-03-01"), DeltaLoad: 15, SourceSessionID: "sess-2"},
	}
	_, err = repo.ReplaceSessionEntries(ctx, "sess-2", other)
	require.NoError(t, err)

	second := []Entry{
		{ID: "4", StudentID: "s1", MuscleID: "pecho", Date: day("2024-03-02"), DeltaLoad: 30, SourceSessionID: "sess-1"},
	}
	removed, err = repo.ReplaceSessionEntries(ctx, "sess-1", second)
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.Equal(t, 2, repo.Len())

	bySession, err := repo.ListBySession(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, bySession, 1)
	assert.Equal(t, "4", bySession[0].ID)

	removed, err = repo.ReplaceSessionEntries(ctx, "sess-1", nil)
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	assert.Equal(t, 1, repo.Len())
}

func TestTestRepo_ReplaceSessionEntries_Duplicates(t *testing.T) {
	repo := NewTestRepo()
	dup := []Entry{
		{ID: "1", StudentID: "s1", MuscleID: "pecho", Date: day("2024-03-01"), SourceSessionID: "sess-1"},
		{ID: "2", StudentID: "s1", MuscleID: "pecho", Date: day("2024-03-01"), SourceSessionID: "sess-1"},
	}
	_, err := repo.ReplaceSessionEntries(context.Background(), "sess-1", dup)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateEntry))
	assert.Zero(t, repo.Len())
}

func TestTestRepo_List(t *testing.T) {
	repo := NewTestRepo()
	now := time.Now()
	repo.Append(
		Entry{ID: "c", StudentID: "s1", MuscleID: "pecho", Date: day("2024-03-05"), DeltaLoad: 3, CreatedAt: now},
		Entry{ID: "a", StudentID: "s1", MuscleID: "pecho", Date: day("2024-03-01"), DeltaLoad: 1, CreatedAt: now},
		Entry{ID: "b", StudentID: "s1", MuscleID: "espalda", Date: day("2024-03-03"), DeltaLoad: 2, CreatedAt: now},
		Entry{ID: "d", StudentID: "s2", MuscleID: "pecho", Date: day("2024-03-03"), DeltaLoad: 4, CreatedAt: now},
		Entry{ID: "e", StudentID: "s1", MuscleID: "pecho", Date: day("2024-03-09"), DeltaLoad: 5, CreatedAt: now},
	)

	entries, err := repo.List(context.Background(), ListParams{
		StudentID: "s1",
		After:     day("2024-03-01"),
		Until:     day("2024-03-05"),
	})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].ID)
	assert.Equal(t, "c", entries[1].ID)

	entries, err = repo.List(context.Background(), ListParams{
		StudentID: "s1",
		MuscleID:  "pecho",
		After:     day("2020-01-01"),
		Until:     day("2024-12-31"),
	})
	require.NoError(t, err)
	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"a", "c", "e"}, ids)
}
