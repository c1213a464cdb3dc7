package fatigue

type Status string

const (
	StatusRecovered  Status = "RECOVERED"
	StatusActive     Status = "ACTIVE"
	StatusFatigued   Status = "FATIGUED"
	StatusOverloaded Status = "OVERLOADED"
)

func (p Params) StatusFor(load float64) Status {
	switch {
	case load >= p.OverloadedAt:
		return StatusOverloaded
	case load >= p.FatiguedAt:
		return StatusFatigued
	case load >= p.ActiveAt:
		return StatusActive
	default:
		return StatusRecovered
	}
}
