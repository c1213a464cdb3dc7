package fatigue

import (
	"math"
	"sort"
	"time"

	"github.com/Toromb/gym-app-sub000/internal/musclestats/ledger"
)

// Snapshot is a simulated load as of the end of Date.
type Snapshot struct {
	Load float64
	Date time.Time
}

// Baseline is the starting point for a muscle with no usable snapshot.
func (p Params) Baseline() Snapshot {
	return Snapshot{Load: 0, Date: Day(p.BaselineDate)}
}

// Simulate replays events forward from base up to target and returns the
// snapshot at target.
//
// Only events with base.Date < date <= target are applied, in date order.
// Before each event the load decays by floor(elapsed days) * RecoveryPerDay,
// and the gap from the last event to target decays by ceil(elapsed days).
// With whole-day dates both round the same way. Decay never goes below 0,
// but accumulated load may exceed MaxLoad until the final clamp: a muscle
// hit hard on consecutive days stays saturated for longer. The returned
// snapshot is clamped, so resuming from it after such a run reports less
// than a replay from the baseline would.
func (p Params) Simulate(base Snapshot, events []ledger.Entry, target time.Time) Snapshot {
	target = Day(target)
	load := base.Load
	simDate := Day(base.Date)

	applicable := make([]ledger.Entry, 0, len(events))
	for _, e := range events {
		d := Day(e.Date)
		if d.After(simDate) && !d.After(target) {
			applicable = append(applicable, e)
		}
	}
	sort.SliceStable(applicable, func(i, j int) bool {
		return Day(applicable[i].Date).Before(Day(applicable[j].Date))
	})

	for _, e := range applicable {
		eventDate := Day(e.Date)
		load = p.decay(load, math.Floor(daysBetween(simDate, eventDate)))
		load += e.DeltaLoad
		simDate = eventDate
	}

	load = p.clamp(p.decay(load, math.Ceil(daysBetween(simDate, target))))

	return Snapshot{Load: load, Date: target}
}

func (p Params) decay(load, days float64) float64 {
	if days <= 0 {
		return load
	}
	return math.Max(0, load-days*p.RecoveryPerDay)
}

func (p Params) clamp(load float64) float64 {
	return math.Min(p.MaxLoad, math.Max(0, load))
}
