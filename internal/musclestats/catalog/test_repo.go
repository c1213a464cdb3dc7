package catalog

import (
	"context"
	"sort"
	"sync"
)

// TestRepo is an in-memory catalog, used by tests and local tooling.
type TestRepo struct {
	mu       sync.RWMutex
	muscles  map[string]Muscle
	mappings map[string]map[string]Mapping

	// Err, when set, is returned by every read.
	Err error
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		muscles:  make(map[string]Muscle),
		mappings: make(map[string]map[string]Mapping),
	}
}

func (r *TestRepo) AllMuscles(_ context.Context) ([]Muscle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	muscles := make([]Muscle, 0, len(r.muscles))
	for _, m := range r.muscles {
		if m.Active {
			muscles = append(muscles, m)
		}
	}
	sort.Slice(muscles, func(i, j int) bool {
		if muscles[i].Name == muscles[j].Name {
			return muscles[i].ID < muscles[j].ID
		}
		return muscles[i].Name < muscles[j].Name
	})
	return muscles, nil
}

func (r *TestRepo) MappingsForExercise(_ context.Context, exerciseID string) ([]Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}
	return sortedMappings(r.mappings[exerciseID]), nil
}

func (r *TestRepo) AllMappings(_ context.Context) ([]Mapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.Err != nil {
		return nil, r.Err
	}

	all := make([]Mapping, 0)
	for _, byMuscle := range r.mappings {
		all = append(all, sortedMappings(byMuscle)...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].ExerciseID < all[j].ExerciseID
	})
	return all, nil
}

func (r *TestRepo) UpsertMuscle(_ context.Context, m Muscle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.muscles[m.ID] = m
	return nil
}

func (r *TestRepo) UpsertMapping(_ context.Context, m Mapping) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.mappings[m.ExerciseID]; !ok {
		r.mappings[m.ExerciseID] = make(map[string]Mapping)
	}
	r.mappings[m.ExerciseID][m.MuscleID] = m
	return nil
}

func sortedMappings(byMuscle map[string]Mapping) []Mapping {
	mappings := make([]Mapping, 0, len(byMuscle))
	for _, m := range byMuscle {
		mappings = append(mappings, m)
	}
	sort.Slice(mappings, func(i, j int) bool {
		return mappings[i].MuscleID < mappings[j].MuscleID
	})
	return mappings
}
