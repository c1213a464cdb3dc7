package fatigue

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=fatigue

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/Toromb/gym-app-sub000/internal/locker"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/catalog"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/ledger"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/loadstate"
	"github.com/Toromb/gym-app-sub000/internal/telemetry/metrics"
	"github.com/Toromb/gym-app-sub000/internal/telemetry/tracing"

	"github.com/go-redis/redis_rate/v9"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

var (
	ErrInvalidStudent     = errors.New("student id is required")
	ErrRebuildRateLimited = errors.New("rebuild rate limited")
)

type LedgerRepo interface {
	ReplaceSessionEntries(ctx context.Context, sessionID string, entries []ledger.Entry) ([]ledger.Entry, error)
	List(ctx context.Context, params ledger.ListParams) ([]ledger.Entry, error)
}

type StateRepo interface {
	ListForStudent(ctx context.Context, studentID string) ([]loadstate.State, error)
	UpsertBatch(ctx context.Context, states []loadstate.State) error
	InvalidateFrom(ctx context.Context, studentID string, muscleIDs []string, from time.Time) (int64, error)
	DeleteForStudent(ctx context.Context, studentID string) (int64, error)
}

type RebuildLimiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// MuscleLoad is one row of a student's load report.
type MuscleLoad struct {
	MuscleID         string  `json:"muscleId"`
	MuscleName       string  `json:"muscleName"`
	Load             float64 `json:"load"`
	Status           Status  `json:"status"`
	LastComputedDate string  `json:"lastComputedDate"`
}

type SyncResult struct {
	SessionID      string             `json:"sessionId"`
	StudentID      string             `json:"studentId"`
	Date           string             `json:"date"`
	Completed      bool               `json:"completed"`
	EntriesRemoved int                `json:"entriesRemoved"`
	EntriesWritten int                `json:"entriesWritten"`
	Deltas         map[string]float64 `json:"deltas"`
}

type NewServiceParams struct {
	Catalog catalog.Source
	Ledger  LedgerRepo
	States  StateRepo
	// Locker defaults to an in-process locker.
	Locker locker.Locker
	// RebuildLimiter is optional, rebuilds are unthrottled without it.
	RebuildLimiter RebuildLimiter
	Params         Params
	Metrics        *metrics.Manager
	// Location decides the calendar date of "today", UTC when nil.
	Location *time.Location
	Now      func() time.Time
}

// Service syncs sessions into the ledger and computes load reports from it.
// Everything touching a student's load state runs under that student's lock.
type Service struct {
	catalog  catalog.Source
	ledger   LedgerRepo
	states   StateRepo
	locker   locker.Locker
	limiter  RebuildLimiter
	stimulus *StimulusCalculator
	params   Params
	metrics  *metrics.Manager
	location *time.Location
	now      func() time.Time
}

func NewService(p NewServiceParams) (*Service, error) {
	if p.Catalog == nil || p.Ledger == nil || p.States == nil {
		return nil, errors.New("catalog, ledger and states are required")
	}
	if err := p.Params.Validate(); err != nil {
		return nil, err
	}

	if p.Locker == nil {
		p.Locker = locker.NewLocalLocker()
	}
	if p.Metrics == nil {
		p.Metrics = metrics.NewManager("musclestats", "engine", prometheus.NewRegistry())
	}
	if p.Location == nil {
		p.Location = time.UTC
	}
	if p.Now == nil {
		p.Now = time.Now
	}

	return &Service{
		catalog:  p.Catalog,
		ledger:   p.Ledger,
		states:   p.States,
		locker:   p.Locker,
		limiter:  p.RebuildLimiter,
		stimulus: NewStimulusCalculator(p.Catalog, p.Params, p.Metrics),
		params:   p.Params,
		metrics:  p.Metrics,
		location: p.Location,
		now:      p.Now,
	}, nil
}

// SyncSessionLoad makes the ledger reflect the session: its previous rows are
// removed and, if it is completed, one row per stimulated muscle is written.
// Calling it again with the same input changes nothing.
func (s *Service) SyncSessionLoad(ctx context.Context, session CompletedSessionRecord) (_ *SyncResult, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.fatigue.sync_session")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(
		attribute.String("session", session.ID),
		attribute.String("student", session.StudentID),
		attribute.String("status", string(session.Status)),
	)

	outcome := "error"
	defer func() { s.metrics.CounterSessionSyncs.WithLabelValues(outcome).Inc() }()

	if err := session.Validate(); err != nil {
		outcome = "invalid"
		return nil, err
	}
	sessionDate, err := ParseDay(session.Date)
	if err != nil {
		outcome = "invalid"
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}

	unlock, err := s.lockStudent(ctx, session.StudentID)
	if err != nil {
		return nil, fmt.Errorf("sync session [%s]: %w", session.ID, err)
	}
	defer unlock()

	result := &SyncResult{
		SessionID: session.ID,
		StudentID: session.StudentID,
		Date:      FormatDay(sessionDate),
		Completed: session.IsCompleted(),
		Deltas:    map[string]float64{},
	}

	var entries []ledger.Entry
	if result.Completed {
		deltas, err := s.stimulus.Compute(ctx, session.Exercises)
		if err != nil {
			return nil, fmt.Errorf("compute stimulus: %w", err)
		}
		result.Deltas = deltas
		entries = s.newEntries(session, sessionDate, deltas)
	}

	removed, err := s.ledger.ReplaceSessionEntries(ctx, session.ID, entries)
	if err != nil {
		return nil, fmt.Errorf("replace ledger entries: %w", err)
	}
	result.EntriesRemoved = len(removed)
	result.EntriesWritten = len(entries)
	s.metrics.CounterLedgerRowsWritten.Add(float64(len(entries)))

	if err := s.invalidateStates(ctx, removed, entries); err != nil {
		return nil, fmt.Errorf("invalidate load states: %w", err)
	}

	if result.Completed {
		outcome = "completed"
	} else {
		outcome = "reverted"
	}
	log.Debugf("synced session [%s] for student [%s]: removed %d, wrote %d ledger entries",
		session.ID, session.StudentID, result.EntriesRemoved, result.EntriesWritten)
	return result, nil
}

func (s *Service) newEntries(session CompletedSessionRecord, date time.Time, deltas map[string]float64) []ledger.Entry {
	muscleIDs := make([]string, 0, len(deltas))
	for muscleID := range deltas {
		muscleIDs = append(muscleIDs, muscleID)
	}
	sort.Strings(muscleIDs)

	createdAt := s.now().UTC()
	entries := make([]ledger.Entry, 0, len(muscleIDs))
	for _, muscleID := range muscleIDs {
		entries = append(entries, ledger.Entry{
			ID:              uuid.NewString(),
			StudentID:       session.StudentID,
			MuscleID:        muscleID,
			Date:            date,
			DeltaLoad:       deltas[muscleID],
			SourceSessionID: session.ID,
			CreatedAt:       createdAt,
		})
	}
	return entries
}

// invalidateStates drops snapshots that may already include the removed
// entries, or that were computed past the date of the new ones.
func (s *Service) invalidateStates(ctx context.Context, removed, written []ledger.Entry) error {
	type scope struct {
		muscles map[string]struct{}
		from    time.Time
	}
	touched := make([]ledger.Entry, 0, len(removed)+len(written))
	touched = append(touched, removed...)
	touched = append(touched, written...)

	byStudent := make(map[string]*scope)
	for _, e := range touched {
		sc, ok := byStudent[e.StudentID]
		if !ok {
			sc = &scope{muscles: make(map[string]struct{}), from: Day(e.Date)}
			byStudent[e.StudentID] = sc
		}
		sc.muscles[e.MuscleID] = struct{}{}
		if Day(e.Date).Before(sc.from) {
			sc.from = Day(e.Date)
		}
	}

	for studentID, sc := range byStudent {
		muscleIDs := make([]string, 0, len(sc.muscles))
		for muscleID := range sc.muscles {
			muscleIDs = append(muscleIDs, muscleID)
		}
		sort.Strings(muscleIDs)

		n, err := s.states.InvalidateFrom(ctx, studentID, muscleIDs, sc.from)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Debugf("invalidated %d load states of student [%s] from %s", n, studentID, FormatDay(sc.from))
		}
	}
	return nil
}

// GetLoadsForStudent reports the load of every active muscle as of
// targetDate (today when zero), persisting changed snapshots. If the
// student lock cannot be taken the report is replayed from the ledger alone
// and nothing is persisted.
func (s *Service) GetLoadsForStudent(ctx context.Context, studentID string, targetDate time.Time) (_ []MuscleLoad, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.fatigue.loads")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("student", studentID))

	if studentID == "" {
		return nil, ErrInvalidStudent
	}
	target := s.targetDay(targetDate)
	span.SetAttributes(attribute.String("target", FormatDay(target)))

	start := time.Now()
	defer func() { s.metrics.HistReportDuration.Observe(time.Since(start).Seconds()) }()

	muscles, err := s.catalog.AllMuscles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list muscles: %w", err)
	}

	unlock, err := s.lockStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, locker.ErrLockNotAcquired) {
			log.Warnf("loads for student [%s]: %s, replaying from ledger", studentID, err)
		} else {
			log.Errorf("loads for student [%s]: lock: %s, replaying from ledger", studentID, err)
		}
		s.metrics.CounterLockFallbacks.Inc()
		s.metrics.CounterReports.WithLabelValues("ledger").Inc()
		return s.replayFromLedger(ctx, studentID, muscles, target)
	}
	defer unlock()

	loads, err := s.loadsLocked(ctx, studentID, muscles, target)
	if err != nil {
		return nil, err
	}
	s.metrics.CounterReports.WithLabelValues("snapshot").Inc()
	return loads, nil
}

// GetLoadForMuscle is GetLoadsForStudent narrowed to one muscle.
func (s *Service) GetLoadForMuscle(ctx context.Context, studentID, muscleID string, targetDate time.Time) (*MuscleLoad, error) {
	loads, err := s.GetLoadsForStudent(ctx, studentID, targetDate)
	if err != nil {
		return nil, err
	}
	for _, l := range loads {
		if l.MuscleID == muscleID {
			return &l, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", catalog.ErrMuscleNotFound, muscleID)
}

// RebuildStudent drops every snapshot of the student and recomputes the
// report from the ledger, persisting the fresh snapshots.
func (s *Service) RebuildStudent(ctx context.Context, studentID string, targetDate time.Time) (_ []MuscleLoad, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.fatigue.rebuild")
	defer func() { tracing.EndSpanWithErrCheck(span, err) }()
	span.SetAttributes(attribute.String("student", studentID))

	if studentID == "" {
		return nil, ErrInvalidStudent
	}
	if err := s.allowRebuild(ctx, studentID); err != nil {
		return nil, err
	}
	target := s.targetDay(targetDate)

	muscles, err := s.catalog.AllMuscles(ctx)
	if err != nil {
		return nil, fmt.Errorf("list muscles: %w", err)
	}

	unlock, err := s.lockStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("rebuild student [%s]: %w", studentID, err)
	}
	defer unlock()

	deleted, err := s.states.DeleteForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("delete load states: %w", err)
	}
	log.Infof("rebuilding loads of student [%s]: dropped %d snapshots", studentID, deleted)

	loads, err := s.loadsLocked(ctx, studentID, muscles, target)
	if err != nil {
		return nil, err
	}
	s.metrics.CounterReports.WithLabelValues("rebuild").Inc()
	return loads, nil
}

func (s *Service) allowRebuild(ctx context.Context, studentID string) error {
	if s.limiter == nil || s.params.RebuildsPerMinute <= 0 {
		return nil
	}

	res, err := s.limiter.Allow(ctx, "musclestats:rebuild:"+studentID, redis_rate.PerMinute(s.params.RebuildsPerMinute))
	if err != nil {
		return fmt.Errorf("rebuild rate limiter: %w", err)
	}
	if res.Allowed > 0 {
		return nil
	}

	s.metrics.CounterRebuildsRateLimited.Inc()
	return fmt.Errorf("%w: retry after %.0f seconds", ErrRebuildRateLimited, math.Ceil(res.RetryAfter.Seconds()))
}

func (s *Service) loadsLocked(ctx context.Context, studentID string, muscles []catalog.Muscle, target time.Time) ([]MuscleLoad, error) {
	states, err := s.states.ListForStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("list load states: %w", err)
	}
	existing := make(map[string]loadstate.State, len(states))
	for _, st := range states {
		existing[st.MuscleID] = st
	}

	bases := make(map[string]Snapshot, len(muscles))
	for _, m := range muscles {
		base := s.params.Baseline()
		// a snapshot of the target day itself is recomputed, only earlier ones are trusted
		if st, ok := existing[m.ID]; ok && Day(st.LastComputedDate).Before(target) {
			base = Snapshot{Load: st.CurrentLoad, Date: Day(st.LastComputedDate)}
		}
		bases[m.ID] = base
	}

	events, err := s.eventsByMuscle(ctx, studentID, bases, target)
	if err != nil {
		return nil, err
	}

	loads := make([]MuscleLoad, 0, len(muscles))
	var staged []loadstate.State
	for _, m := range muscles {
		snap := s.params.Simulate(bases[m.ID], events[m.ID], target)
		loads = append(loads, s.report(m, snap))

		var prev *loadstate.State
		if st, ok := existing[m.ID]; ok {
			prev = &st
		}
		if !s.needsWrite(prev, snap) {
			s.metrics.CounterStateWritesSkipped.Inc()
			continue
		}
		staged = append(staged, loadstate.State{
			StudentID:        studentID,
			MuscleID:         m.ID,
			CurrentLoad:      snap.Load,
			LastComputedDate: snap.Date,
		})
	}

	if len(staged) > 0 {
		if err := s.states.UpsertBatch(ctx, staged); err != nil {
			return nil, fmt.Errorf("persist load states: %w", err)
		}
		s.metrics.CounterStateWrites.Add(float64(len(staged)))
	}
	log.Debugf("loads for student [%s] at %s: %d muscles, %d snapshots written",
		studentID, FormatDay(target), len(loads), len(staged))

	return loads, nil
}

func (s *Service) replayFromLedger(ctx context.Context, studentID string, muscles []catalog.Muscle, target time.Time) ([]MuscleLoad, error) {
	bases := make(map[string]Snapshot, len(muscles))
	for _, m := range muscles {
		bases[m.ID] = s.params.Baseline()
	}

	events, err := s.eventsByMuscle(ctx, studentID, bases, target)
	if err != nil {
		return nil, err
	}

	loads := make([]MuscleLoad, 0, len(muscles))
	for _, m := range muscles {
		loads = append(loads, s.report(m, s.params.Simulate(bases[m.ID], events[m.ID], target)))
	}
	return loads, nil
}

// eventsByMuscle loads the student's ledger once, from the oldest base
// date, and groups it per muscle. Simulate drops what a base already covers.
func (s *Service) eventsByMuscle(ctx context.Context, studentID string, bases map[string]Snapshot, target time.Time) (map[string][]ledger.Entry, error) {
	if len(bases) == 0 {
		return map[string][]ledger.Entry{}, nil
	}

	after := target
	for _, b := range bases {
		if b.Date.Before(after) {
			after = b.Date
		}
	}

	entries, err := s.ledger.List(ctx, ledger.ListParams{
		StudentID: studentID,
		After:     after,
		Until:     target,
	})
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}

	byMuscle := make(map[string][]ledger.Entry)
	for _, e := range entries {
		byMuscle[e.MuscleID] = append(byMuscle[e.MuscleID], e)
	}
	return byMuscle, nil
}

func (s *Service) needsWrite(prev *loadstate.State, snap Snapshot) bool {
	if prev == nil {
		return true
	}
	prevDate := Day(prev.LastComputedDate)
	if prevDate.After(snap.Date) {
		return false
	}
	if !prevDate.Equal(snap.Date) {
		return true
	}
	return math.Abs(prev.CurrentLoad-snap.Load) > s.params.StateEpsilon
}

func (s *Service) report(m catalog.Muscle, snap Snapshot) MuscleLoad {
	return MuscleLoad{
		MuscleID:         m.ID,
		MuscleName:       m.Name,
		Load:             snap.Load,
		Status:           s.params.StatusFor(snap.Load),
		LastComputedDate: FormatDay(snap.Date),
	}
}

func (s *Service) lockStudent(ctx context.Context, studentID string) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, s.params.LockWait)
	defer cancel()
	return s.locker.Lock(lockCtx, "student:"+studentID)
}

func (s *Service) targetDay(targetDate time.Time) time.Time {
	if targetDate.IsZero() {
		return Today(s.now(), s.location)
	}
	return Day(targetDate)
}

// Today is the current calendar date in the service's time zone.
func (s *Service) Today() time.Time {
	return Today(s.now(), s.location)
}
