package ledger

import (
	"context"
	"sort"
	"sync"
)

// TestRepo is an in-memory ledger with the same replace semantics as Repo.
type TestRepo struct {
	mu      sync.Mutex
	entries []Entry

	// Err, when set, fails every call.
	Err error
}

func NewTestRepo() *TestRepo {
	return &TestRepo{}
}

func (r *TestRepo) ReplaceSessionEntries(_ context.Context, sessionID string, entries []Entry) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if err := checkUnique(entries); err != nil {
		return nil, err
	}

	var removed []Entry
	kept := make([]Entry, 0, len(r.entries)+len(entries))
	existing := make(map[entryKey]struct{}, len(r.entries))
	for _, e := range r.entries {
		if e.SourceSessionID == sessionID {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
		existing[keyOf(e)] = struct{}{}
	}
	for _, e := range entries {
		if _, ok := existing[keyOf(e)]; ok {
			return nil, ErrDuplicateEntry
		}
	}

	r.entries = append(kept, entries...)
	return removed, nil
}

func (r *TestRepo) List(_ context.Context, params ListParams) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	var res []Entry
	for _, e := range r.entries {
		if params.matches(e) {
			res = append(res, e)
		}
	}
	sort.SliceStable(res, func(i, j int) bool {
		if !res[i].Date.Equal(res[j].Date) {
			return res[i].Date.Before(res[j].Date)
		}
		return res[i].CreatedAt.Before(res[j].CreatedAt)
	})
	return res, nil
}

func (r *TestRepo) ListBySession(_ context.Context, sessionID string) ([]Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	var res []Entry
	for _, e := range r.entries {
		if e.SourceSessionID == sessionID {
			res = append(res, e)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].MuscleID < res[j].MuscleID
	})
	return res, nil
}

// Append adds entries directly, bypassing session replacement.
func (r *TestRepo) Append(entries ...Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entries...)
}

func (r *TestRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
