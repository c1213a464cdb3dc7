package catalog

import (
	"errors"
	"strings"
)

var ErrMuscleNotFound = errors.New("muscle not found")

// Role is how an exercise engages a muscle.
type Role string

const (
	RolePrimary    Role = "PRIMARY"
	RoleSecondary  Role = "SECONDARY"
	RoleStabilizer Role = "STABILIZER"
)

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	return r, r.Valid()
}

func (r Role) Valid() bool {
	switch r {
	case RolePrimary, RoleSecondary, RoleStabilizer:
		return true
	default:
		return false
	}
}

type Muscle struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Region string `json:"region"`
	Active bool   `json:"active"`
}

// Mapping is one (exercise, muscle) row of the exercise muscle map.
type Mapping struct {
	ExerciseID     string `json:"exerciseId"`
	MuscleID       string `json:"muscleId"`
	Role           Role   `json:"role"`
	LoadPercentage int    `json:"loadPercentage"`
}
