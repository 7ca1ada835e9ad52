package scenario

import (
	"fmt"

	"github.com/napolitain/citysim/internal/models"
	"github.com/napolitain/citysim/internal/sim"
)

// Action is one scripted player operation
type Action interface {
	Apply(c *sim.City) error
	Kind() models.ActionKind
	Description() string
}

// PlaceAction places a building
type PlaceAction struct {
	X, Y int
	Type models.BuildingType
}

func (a *PlaceAction) Apply(c *sim.City) error {
	return c.PlaceBuilding(a.X, a.Y, a.Type)
}

func (a *PlaceAction) Kind() models.ActionKind { return models.ActionPlace }

func (a *PlaceAction) Description() string {
	return fmt.Sprintf("place %s at (%d,%d)", a.Type, a.X, a.Y)
}

// BulldozeAction demolishes the building covering a cell
type BulldozeAction struct {
	X, Y int
}

func (a *BulldozeAction) Apply(c *sim.City) error {
	return c.Bulldoze(a.X, a.Y)
}

func (a *BulldozeAction) Kind() models.ActionKind { return models.ActionBulldoze }

func (a *BulldozeAction) Description() string {
	return fmt.Sprintf("bulldoze (%d,%d)", a.X, a.Y)
}

// RepairAction repairs a burned building
type RepairAction struct {
	X, Y int
}

func (a *RepairAction) Apply(c *sim.City) error {
	return c.RepairBuilding(a.X, a.Y)
}

func (a *RepairAction) Kind() models.ActionKind { return models.ActionRepair }

func (a *RepairAction) Description() string {
	return fmt.Sprintf("repair (%d,%d)", a.X, a.Y)
}

// StabilizeAction stabilizes a special building
type StabilizeAction struct {
	X, Y int
}

func (a *StabilizeAction) Apply(c *sim.City) error {
	return c.StabilizeBuilding(a.X, a.Y)
}

func (a *StabilizeAction) Kind() models.ActionKind { return models.ActionStabilize }

func (a *StabilizeAction) Description() string {
	return fmt.Sprintf("stabilize (%d,%d)", a.X, a.Y)
}

// NewAction converts a scripted action
func NewAction(sa models.ScenarioAction) (Action, error) {
	switch sa.Action {
	case models.ActionPlace:
		return &PlaceAction{X: sa.X, Y: sa.Y, Type: sa.Type}, nil
	case models.ActionBulldoze:
		return &BulldozeAction{X: sa.X, Y: sa.Y}, nil
	case models.ActionRepair:
		return &RepairAction{X: sa.X, Y: sa.Y}, nil
	case models.ActionStabilize:
		return &StabilizeAction{X: sa.X, Y: sa.Y}, nil
	default:
		return nil, fmt.Errorf("unknown action %q", sa.Action)
	}
}

// priority orders actions scheduled at the same instant. Lower runs first;
// demolition goes last because it locks placement.
func priority(kind models.ActionKind) int {
	switch kind {
	case models.ActionRepair, models.ActionStabilize:
		return 0
	case models.ActionPlace:
		return 1
	case models.ActionBulldoze:
		return 2
	default:
		return 99
	}
}
