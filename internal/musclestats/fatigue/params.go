package fatigue

import (
	"fmt"
	"time"

	"github.com/Toromb/gym-app-sub000/internal/config"
	"github.com/Toromb/gym-app-sub000/internal/musclestats/catalog"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Params are the tunables of the stimulus and recovery model.
type Params struct {
	StimulusPrimary    float64 `validate:"gte=0"`
	StimulusSecondary  float64 `validate:"gte=0"`
	StimulusStabilizer float64 `validate:"gte=0"`

	// RecoveryPerDay is the load removed per elapsed day.
	RecoveryPerDay float64 `validate:"gt=0"`
	MaxLoad        float64 `validate:"gt=0"`

	OverloadedAt float64 `validate:"gtfield=FatiguedAt,ltefield=MaxLoad"`
	FatiguedAt   float64 `validate:"gtfield=ActiveAt"`
	ActiveAt     float64 `validate:"gt=0"`

	// StateEpsilon is the smallest load change worth persisting.
	StateEpsilon float64 `validate:"gte=0"`
	// BaselineDate is where replay starts when there is no usable snapshot.
	BaselineDate time.Time `validate:"required"`

	LockTTL           time.Duration `validate:"gt=0"`
	LockWait          time.Duration `validate:"gt=0"`
	RebuildsPerMinute int           `validate:"gte=0"`
}

func DefaultParams() Params {
	return Params{
		StimulusPrimary:    15,
		StimulusSecondary:  8,
		StimulusStabilizer: 3,
		RecoveryPerDay:     10,
		MaxLoad:            100,
		OverloadedAt:       80,
		FatiguedAt:         50,
		ActiveAt:           20,
		StateEpsilon:       0.01,
		BaselineDate:       time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC),
		LockTTL:            10 * time.Second,
		LockWait:           2 * time.Second,
		RebuildsPerMinute:  5,
	}
}

// NewParams overlays the non-zero values of c on DefaultParams.
func NewParams(c config.LoadConfig) (Params, error) {
	p := DefaultParams()

	setIfPositive(&p.StimulusPrimary, c.StimulusPrimary)
	setIfPositive(&p.StimulusSecondary, c.StimulusSecondary)
	setIfPositive(&p.StimulusStabilizer, c.StimulusStabilizer)
	setIfPositive(&p.RecoveryPerDay, c.RecoveryPerDay)
	setIfPositive(&p.MaxLoad, c.MaxLoad)
	setIfPositive(&p.OverloadedAt, c.OverloadedAt)
	setIfPositive(&p.FatiguedAt, c.FatiguedAt)
	setIfPositive(&p.ActiveAt, c.ActiveAt)
	setIfPositive(&p.StateEpsilon, c.StateEpsilon)
	if c.RebuildsPerMinute > 0 {
		p.RebuildsPerMinute = c.RebuildsPerMinute
	}

	if c.BaselineDate != "" {
		baseline, err := ParseDay(c.BaselineDate)
		if err != nil {
			return Params{}, fmt.Errorf("baseline_date: %w", err)
		}
		p.BaselineDate = baseline
	}
	for _, d := range []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"lock_ttl", c.LockTTL, &p.LockTTL},
		{"lock_wait", c.LockWait, &p.LockWait},
	} {
		if d.raw == "" {
			continue
		}
		parsed, err := time.ParseDuration(d.raw)
		if err != nil {
			return Params{}, fmt.Errorf("%s: %w", d.name, err)
		}
		*d.dst = parsed
	}

	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid load params: %w", err)
	}
	return nil
}

// StimulusFor is the load one mapping of a completed exercise adds to its muscle.
func (p Params) StimulusFor(role catalog.Role) float64 {
	switch role {
	case catalog.RolePrimary:
		return p.StimulusPrimary
	case catalog.RoleSecondary:
		return p.StimulusSecondary
	case catalog.RoleStabilizer:
		return p.StimulusStabilizer
	default:
		return 0
	}
}

func setIfPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}
