package sim

import (
	"fmt"
	"time"

	"github.com/napolitain/citysim/internal/models"
)

// Stage is one of the scheduled one-shot city events
type Stage int

const (
	StageBurn Stage = iota
	StageHospitalReduction
	StageHouseReduction
	StagePlague
	StageMarketDeduction
	StageFestival
	StageConcertStoppage
	StageSeasonalReduction
	stageCount
)

// String returns a string representation of the stage
func (s Stage) String() string {
	switch s {
	case StageBurn:
		return "burn"
	case StageHospitalReduction:
		return "hospital_reduction"
	case StageHouseReduction:
		return "house_reduction"
	case StagePlague:
		return "plague"
	case StageMarketDeduction:
		return "market_deduction"
	case StageFestival:
		return "festival"
	case StageConcertStoppage:
		return "concert_stoppage"
	case StageSeasonalReduction:
		return "seasonal_reduction"
	default:
		return "unknown"
	}
}

// MarshalText encodes the stage by name
func (s Stage) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseStage is the inverse of Stage.String
func ParseStage(name string) (Stage, error) {
	for _, s := range AllStages() {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown stage %q", name)
}

// AllStages returns the stages in activation order
func AllStages() []Stage {
	stages := make([]Stage, 0, stageCount)
	for s := StageBurn; s < stageCount; s++ {
		stages = append(stages, s)
	}
	return stages
}

// StageStatus is the state of a stage machine
type StageStatus int

const (
	StagePending StageStatus = iota
	StageActive
)

// StageState records one stage machine
type StageState struct {
	Status      StageStatus   `json:"-"`
	Threshold   time.Duration `json:"threshold"`
	ActivatedAt time.Duration `json:"activatedAt,omitempty"`
}

// Active reports whether the stage has fired
func (s StageState) Active() bool { return s.Status == StageActive }

// Timeline holds one Pending -> Active machine per stage. Stages never
// return to Pending.
type Timeline struct {
	stages   [stageCount]StageState
	noticeAt time.Duration
	noticed  bool
}

// NewTimeline builds a timeline from minute thresholds
func NewTimeline(cfg models.TimelineConfig) Timeline {
	var t Timeline
	for i, minutes := range cfg.Ordered() {
		t.stages[i].Threshold = time.Duration(minutes) * time.Minute
	}
	t.noticeAt = time.Duration(cfg.RobberyNotice) * time.Minute
	return t
}

// Advance activates every pending stage whose threshold is <= clock and
// returns them in activation order. Already active stages are untouched.
func (t *Timeline) Advance(clock time.Duration) []Stage {
	var fired []Stage
	for s := StageBurn; s < stageCount; s++ {
		st := &t.stages[s]
		if st.Status == StagePending && clock >= st.Threshold {
			st.Status = StageActive
			st.ActivatedAt = clock
			fired = append(fired, s)
		}
	}
	return fired
}

// NoticeDue reports the announcement-only robbery notice exactly once
func (t *Timeline) NoticeDue(clock time.Duration) bool {
	if t.noticed || clock < t.noticeAt {
		return false
	}
	t.noticed = true
	return true
}

// Active reports whether a stage has fired
func (t *Timeline) Active(s Stage) bool {
	if s < 0 || s >= stageCount {
		return false
	}
	return t.stages[s].Active()
}

// State returns the machine for one stage
func (t *Timeline) State(s Stage) StageState {
	if s < 0 || s >= stageCount {
		return StageState{}
	}
	return t.stages[s]
}

// ActiveStages returns the fired stages in activation order
func (t *Timeline) ActiveStages() []Stage {
	var active []Stage
	for s := StageBurn; s < stageCount; s++ {
		if t.stages[s].Active() {
			active = append(active, s)
		}
	}
	return active
}

// Next returns the next pending stage, if any
func (t *Timeline) Next() (Stage, time.Duration, bool) {
	for s := StageBurn; s < stageCount; s++ {
		if !t.stages[s].Active() {
			return s, t.stages[s].Threshold, true
		}
	}
	return 0, 0, false
}
