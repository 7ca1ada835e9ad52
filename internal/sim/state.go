package sim

import (
	"time"

	"github.com/napolitain/citysim/internal/models"
)

// SimulationState is the mutable non-spatial state of a city: session
// clock, lockout, stage machines and the resolved one-shot decisions.
// It changes only through the transition methods below.
type SimulationState struct {
	Clock       time.Duration
	Cooldown    time.Duration
	LastRevenue time.Duration
	Timeline    Timeline

	Vaccinated   bool
	CashPaid     bool
	FestivalPaid bool
}

// NewSimulationState creates the state at clock zero
func NewSimulationState(cfg models.TimelineConfig) SimulationState {
	return SimulationState{Timeline: NewTimeline(cfg)}
}

// Advance moves the clock forward, runs down the lockout and returns the
// stages newly activated by the new clock
func (s *SimulationState) Advance(delta time.Duration) []Stage {
	if delta < 0 {
		delta = 0
	}
	s.Clock += delta
	s.Cooldown -= delta
	if s.Cooldown < 0 {
		s.Cooldown = 0
	}
	return s.Timeline.Advance(s.Clock)
}

// Lock starts a placement lockout
func (s *SimulationState) Lock(d time.Duration) {
	if d > s.Cooldown {
		s.Cooldown = d
	}
}

// Locked reports whether placements are rejected
func (s *SimulationState) Locked() bool {
	return s.Cooldown > 0
}

// RevenueDue reports whether a revenue pass is owed at the current clock
func (s *SimulationState) RevenueDue(interval time.Duration) bool {
	return s.Clock-s.LastRevenue >= interval
}

// MarkRevenue records a revenue pass at the current clock
func (s *SimulationState) MarkRevenue() {
	s.LastRevenue = s.Clock
}

// MarkFestivalPaid returns true the first time only
func (s *SimulationState) MarkFestivalPaid() bool {
	if s.FestivalPaid {
		return false
	}
	s.FestivalPaid = true
	return true
}

// Resolve sets the flag a prompt of the given kind settles
func (s *SimulationState) Resolve(kind PromptKind) {
	switch kind {
	case PromptVaccine:
		s.Vaccinated = true
	case PromptCashPayment:
		s.CashPaid = true
	}
}

// Resolved reports whether the decision behind a prompt kind is settled
func (s *SimulationState) Resolved(kind PromptKind) bool {
	switch kind {
	case PromptVaccine:
		return s.Vaccinated
	case PromptCashPayment:
		return s.CashPaid
	default:
		return false
	}
}
