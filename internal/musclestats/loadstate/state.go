package loadstate

import (
	"errors"
	"time"
)

var ErrStateNotFound = errors.New("load state not found")

// State is the cached simulation result for one (student, muscle). It is
// derived from the ledger and can be dropped at any time.
type State struct {
	StudentID        string    `json:"studentId"`
	MuscleID         string    `json:"muscleId"`
	CurrentLoad      float64   `json:"currentLoad"`
	LastComputedDate time.Time `json:"lastComputedDate"`
}
