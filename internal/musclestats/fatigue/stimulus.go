package fatigue

import (
	"context"
	"fmt"

	"github.com/Toromb/gym-app-sub000/internal/musclestats/catalog"
	"github.com/Toromb/gym-app-sub000/internal/telemetry/metrics"

	log "github.com/sirupsen/logrus"
)

// MappingLookup resolves the muscles an exercise works.
type MappingLookup interface {
	MappingsForExercise(ctx context.Context, exerciseID string) ([]catalog.Mapping, error)
}

// StimulusCalculator turns a session's completed exercises into per muscle load.
type StimulusCalculator struct {
	mappings MappingLookup
	params   Params
	metrics  *metrics.Manager
}

func NewStimulusCalculator(mappings MappingLookup, params Params, metricsManager *metrics.Manager) *StimulusCalculator {
	return &StimulusCalculator{
		mappings: mappings,
		params:   params,
		metrics:  metricsManager,
	}
}

// Compute sums the role stimulus of every mapping of every completed
// exercise. The result only holds muscles with a positive delta.
func (c *StimulusCalculator) Compute(ctx context.Context, exercises []SessionExercise) (map[string]float64, error) {
	deltas := make(map[string]float64)
	for _, ex := range exercises {
		if !ex.IsCompleted {
			continue
		}

		mappings, err := c.mappings.MappingsForExercise(ctx, ex.ExerciseID)
		if err != nil {
			return nil, fmt.Errorf("mappings for exercise [%s]: %w", ex.ExerciseID, err)
		}
		if len(mappings) == 0 {
			log.Warnf("stimulus: exercise [%s] has no muscle mapping, skipping", ex.ExerciseID)
			if c.metrics != nil {
				c.metrics.CounterUnmappedExerciseSkips.Inc()
			}
			continue
		}

		for _, m := range mappings {
			stimulus := c.params.StimulusFor(m.Role)
			if stimulus == 0 && !m.Role.Valid() {
				log.Warnf("stimulus: exercise [%s] maps muscle [%s] with unknown role %q", ex.ExerciseID, m.MuscleID, m.Role)
			}
			deltas[m.MuscleID] += stimulus
		}
	}

	for muscleID, delta := range deltas {
		if delta <= 0 {
			delete(deltas, muscleID)
		}
	}
	return deltas, nil
}
