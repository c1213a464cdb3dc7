package fatigue

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSession = errors.New("invalid session")

type SessionStatus string

const (
	SessionStatusPending    SessionStatus = "PENDING"
	SessionStatusInProgress SessionStatus = "IN_PROGRESS"
	SessionStatusCompleted  SessionStatus = "COMPLETED"
	SessionStatusCancelled  SessionStatus = "CANCELLED"
)

// CompletedSessionRecord is the normalized view of a workout session the
// engine syncs. Despite the name it also carries non completed sessions,
// which sync to zero load.
type CompletedSessionRecord struct {
	ID        string            `json:"id" validate:"required"`
	StudentID string            `json:"studentId" validate:"required"`
	Date      string            `json:"date" validate:"required,datetime=2006-01-02"`
	Status    SessionStatus     `json:"status" validate:"required"`
	Exercises []SessionExercise `json:"exercises" validate:"dive"`
}

type SessionExercise struct {
	ExerciseID  string `json:"exerciseId" validate:"required"`
	IsCompleted bool   `json:"isCompleted"`
}

func (s CompletedSessionRecord) IsCompleted() bool {
	return strings.EqualFold(string(s.Status), string(SessionStatusCompleted))
}

func (s CompletedSessionRecord) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	return nil
}
