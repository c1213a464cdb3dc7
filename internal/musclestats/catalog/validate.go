package catalog

import (
	"fmt"
	"sort"
)

// MappingIssue describes why one exercise's mapping set is inconsistent.
type MappingIssue struct {
	ExerciseID string `json:"exerciseId"`
	Problem    string `json:"problem"`
}

func (i MappingIssue) String() string {
	return fmt.Sprintf("%s: %s", i.ExerciseID, i.Problem)
}

// ValidateMappings checks every exercise for: percentages summing to 100,
// exactly one PRIMARY with a positive percentage, no duplicate muscles and
// known roles. Issues are ordered by exercise.
func ValidateMappings(mappings []Mapping) []MappingIssue {
	byExercise := make(map[string][]Mapping)
	for _, m := range mappings {
		byExercise[m.ExerciseID] = append(byExercise[m.ExerciseID], m)
	}

	exerciseIDs := make([]string, 0, len(byExercise))
	for id := range byExercise {
		exerciseIDs = append(exerciseIDs, id)
	}
	sort.Strings(exerciseIDs)

	var issues []MappingIssue
	for _, exerciseID := range exerciseIDs {
		issues = append(issues, validateExercise(exerciseID, byExercise[exerciseID])...)
	}
	return issues
}

func validateExercise(exerciseID string, mappings []Mapping) []MappingIssue {
	var (
		issues    []MappingIssue
		sum       int
		primaries int
		seen      = make(map[string]bool, len(mappings))
	)
	add := func(format string, args ...any) {
		issues = append(issues, MappingIssue{ExerciseID: exerciseID, Problem: fmt.Sprintf(format, args...)})
	}

	for _, m := range mappings {
		if seen[m.MuscleID] {
			add("muscle %s mapped more than once", m.MuscleID)
		}
		seen[m.MuscleID] = true

		if !m.Role.Valid() {
			add("muscle %s has unknown role %q", m.MuscleID, m.Role)
		}
		if m.LoadPercentage < 0 {
			add("muscle %s has negative load percentage %d", m.MuscleID, m.LoadPercentage)
		}
		if m.Role == RolePrimary {
			primaries++
			if m.LoadPercentage <= 0 {
				add("primary muscle %s has no load percentage", m.MuscleID)
			}
		}
		sum += m.LoadPercentage
	}

	if primaries != 1 {
		add("expected exactly one PRIMARY muscle, found %d", primaries)
	}
	if sum != 100 {
		add("load percentages sum to %d, expected 100", sum)
	}
	return issues
}
