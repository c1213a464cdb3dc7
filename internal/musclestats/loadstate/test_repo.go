package loadstate

import (
	"context"
	"sort"
	"sync"
	"time"
)

type stateKey struct {
	studentID string
	muscleID  string
}

// TestRepo is an in-memory load state store with the same write rules as Repo.
type TestRepo struct {
	mu     sync.Mutex
	states map[stateKey]State

	// Err, when set, fails every call.
	Err error
	// Upserts counts the rows passed to UpsertBatch.
	Upserts int
}

func NewTestRepo() *TestRepo {
	return &TestRepo{
		states: make(map[stateKey]State),
	}
}

func (r *TestRepo) Get(_ context.Context, studentID, muscleID string) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	s, ok := r.states[stateKey{studentID, muscleID}]
	if !ok {
		return nil, ErrStateNotFound
	}
	return &s, nil
}

func (r *TestRepo) ListForStudent(_ context.Context, studentID string) ([]State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	var res []State
	for k, s := range r.states {
		if k.studentID == studentID {
			res = append(res, s)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].MuscleID < res[j].MuscleID
	})
	return res, nil
}

func (r *TestRepo) UpsertBatch(_ context.Context, states []State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	for _, s := range states {
		k := stateKey{s.StudentID, s.MuscleID}
		if existing, ok := r.states[k]; ok && existing.LastComputedDate.After(s.LastComputedDate) {
			continue
		}
		r.states[k] = s
	}
	r.Upserts += len(states)
	return nil
}

func (r *TestRepo) InvalidateFrom(_ context.Context, studentID string, muscleIDs []string, from time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}

	var n int64
	for _, muscleID := range muscleIDs {
		k := stateKey{studentID, muscleID}
		if s, ok := r.states[k]; ok && !s.LastComputedDate.Before(from) {
			delete(r.states, k)
			n++
		}
	}
	return n, nil
}

func (r *TestRepo) DeleteForStudent(_ context.Context, studentID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return 0, r.Err
	}

	var n int64
	for k := range r.states {
		if k.studentID == studentID {
			delete(r.states, k)
			n++
		}
	}
	return n, nil
}

// Put stores a state as is, for test setup.
func (r *TestRepo) Put(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states[stateKey{s.StudentID, s.MuscleID}] = s
}
