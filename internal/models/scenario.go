package models

import (
	"fmt"
	"time"
)

// ActionKind is the operation of a scripted action
type ActionKind string

const (
	ActionPlace     ActionKind = "place"
	ActionBulldoze  ActionKind = "bulldoze"
	ActionRepair    ActionKind = "repair"
	ActionStabilize ActionKind = "stabilize"
)

// ScenarioAction is one scripted player action
type ScenarioAction struct {
	At     time.Duration `yaml:"at"`
	Action ActionKind    `yaml:"action"`
	X      int           `yaml:"x"`
	Y      int           `yaml:"y"`
	Type   BuildingType  `yaml:"type,omitempty"`
}

// Scenario is a deterministic scripted session
type Scenario struct {
	Name          string           `yaml:"name"`
	Duration      time.Duration    `yaml:"duration"`
	AcceptPrompts bool             `yaml:"accept_prompts"`
	Actions       []ScenarioAction `yaml:"actions"`
}

// ValidateScenario checks a scenario for structural errors. Whether an
// action succeeds in the city is decided when it runs.
func ValidateScenario(s *Scenario) error {
	if s.Duration <= 0 {
		return fmt.Errorf("scenario duration must be positive, got %s", s.Duration)
	}
	for i, a := range s.Actions {
		if a.At < 0 {
			return fmt.Errorf("action %d: negative time %s", i, a.At)
		}
		if a.At > s.Duration {
			return fmt.Errorf("action %d: time %s is after the scenario ends (%s)", i, a.At, s.Duration)
		}
		switch a.Action {
		case ActionPlace:
			if a.Type == "" {
				return fmt.Errorf("action %d: place requires a building type", i)
			}
		case ActionBulldoze, ActionRepair, ActionStabilize:
		default:
			return fmt.Errorf("action %d: unknown action %q", i, a.Action)
		}
	}
	return nil
}
