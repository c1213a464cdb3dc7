package ledger

import (
	"errors"
	"time"
)

var ErrDuplicateEntry = errors.New("duplicate ledger entry")

// Entry is one immutable load event: a session's stimulus on one muscle, on one day.
type Entry struct {
	ID              string    `json:"id"`
	StudentID       string    `json:"studentId"`
	MuscleID        string    `json:"muscleId"`
	Date            time.Time `json:"date"`
	DeltaLoad       float64   `json:"deltaLoad"`
	SourceSessionID string    `json:"sourceSessionId"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ListParams selects a student's entries with After < date <= Until,
// optionally for a single muscle.
type ListParams struct {
	StudentID string
	MuscleID  string
	After     time.Time
	Until     time.Time
}

func (p ListParams) matches(e Entry) bool {
	if e.StudentID != p.StudentID {
		return false
	}
	if p.MuscleID != "" && e.MuscleID != p.MuscleID {
		return false
	}
	return e.Date.After(p.After) && !e.Date.After(p.Until)
}

type entryKey struct {
	studentID string
	muscleID  string
	date      time.Time
	sessionID string
}

func keyOf(e Entry) entryKey {
	return entryKey{e.StudentID, e.MuscleID, e.Date.UTC(), e.SourceSessionID}
}

// checkUnique enforces one entry per (student, muscle, date, session) within a batch.
func checkUnique(entries []Entry) error {
	seen := make(map[entryKey]struct{}, len(entries))
	for _, e := range entries {
		k := keyOf(e)
		if _, ok := seen[k]; ok {
			return ErrDuplicateEntry
		}
		seen[k] = struct{}{}
	}
	return nil
}
