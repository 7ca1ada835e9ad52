package sim

import (
	"fmt"

	"github.com/napolitain/citysim/internal/models"
)

// PlaceBuilding places a building of type bt with its footprint starting at
// (x, y). Checks run in order: lockout, type, footprint, budget. On any
// failure the city is unchanged.
func (c *City) PlaceBuilding(x, y int, bt models.BuildingType) error {
	if c.state.Locked() {
		return fmt.Errorf("place %s at (%d,%d): %w for %s", bt, x, y, ErrPlacementLocked, c.state.Cooldown)
	}
	spec, ok := c.cfg.Catalog.Spec(bt)
	if !ok {
		return fmt.Errorf("place %q: %w", bt, ErrInvalidType)
	}
	if err := c.checkFootprint(x, y, max(spec.Footprint, 1)); err != nil {
		return fmt.Errorf("place %s at (%d,%d): %w", bt, x, y, err)
	}
	if c.budget < spec.Cost {
		return fmt.Errorf("place %s: %w: cost %.2f, budget %.2f", bt, ErrInsufficientFunds, spec.Cost, c.budget)
	}

	c.debit(spec.Cost)
	c.install(bt, spec, x, y)
	return nil
}

func (c *City) checkFootprint(x, y, size int) error {
	for dy := 0; dy < size; dy++ {
		for dx := 0; dx < size; dx++ {
			t, ok := c.grid.Tile(x+dx, y+dy)
			if !ok {
				return fmt.Errorf("cell (%d,%d): %w", x+dx, y+dy, ErrOutOfBounds)
			}
			if t.Occupied() {
				return fmt.Errorf("cell (%d,%d): %w", x+dx, y+dy, ErrTileOccupied)
			}
		}
	}
	return nil
}

// install commits a validated placement
func (c *City) install(bt models.BuildingType, spec models.BuildingSpec, x, y int) {
	origin := models.Coord{X: x, Y: y}
	b := newBuilding(bt, spec, origin, c.state.Clock)
	for _, cell := range b.Footprint() {
		t, _ := c.grid.Tile(cell.X, cell.Y)
		t.setBuilding(b)
	}
	for _, kind := range proximityKindsFor(bt, spec) {
		c.proximity.Register(kind, origin)
	}
	c.notifyArea(origin, b.Size)
}

// Bulldoze demolishes the building covering (x, y), wherever in its
// footprint (x, y) lies. The refund is credited and placements lock.
func (c *City) Bulldoze(x, y int) error {
	t, ok := c.grid.Tile(x, y)
	if !ok {
		return fmt.Errorf("bulldoze (%d,%d): %w", x, y, ErrOutOfBounds)
	}
	b := t.Building()
	if b == nil {
		return fmt.Errorf("bulldoze (%d,%d): %w", x, y, ErrNoBuildingPresent)
	}

	spec := c.cfg.Catalog[b.Type]
	refund := 0.0
	if !spec.RefundExempt {
		refund = spec.Cost * c.cfg.Prices.RefundRatio
	}

	for _, cell := range b.Footprint() {
		if ft, ok := c.grid.Tile(cell.X, cell.Y); ok {
			ft.setBuilding(nil)
		}
	}
	for _, kind := range proximityKindsFor(b.Type, spec) {
		c.proximity.Unregister(kind, b.Origin)
	}

	c.credit(refund)
	c.state.Lock(c.cfg.DemolitionLockout())
	c.notifyArea(b.Origin, b.Size)
	return nil
}

// RepairBuilding clears the burned flag for the repair price. Repairing an
// intact building is a no-op.
func (c *City) RepairBuilding(x, y int) error {
	b, err := c.buildingAt("repair", x, y)
	if err != nil {
		return err
	}
	if !b.Burned {
		return nil
	}
	cost := c.cfg.Prices.Repair
	if c.budget < cost {
		return fmt.Errorf("repair (%d,%d): %w: cost %.2f, budget %.2f", x, y, ErrInsufficientFunds, cost, c.budget)
	}
	c.debit(cost)
	b.Burned = false
	c.notifyArea(b.Origin, b.Size)
	return nil
}

// StabilizeBuilding restores full revenue of a special building after the
// earthquake. Only special buildings can be stabilized.
func (c *City) StabilizeBuilding(x, y int) error {
	b, err := c.buildingAt("stabilize", x, y)
	if err != nil {
		return err
	}
	if !c.cfg.Catalog[b.Type].Special {
		return fmt.Errorf("stabilize %s at (%d,%d): %w: not a special building", b.Type, x, y, ErrInvalidType)
	}
	if b.Stabilized {
		return nil
	}
	cost := c.cfg.Prices.Stabilize
	if c.budget < cost {
		return fmt.Errorf("stabilize (%d,%d): %w: cost %.2f, budget %.2f", x, y, ErrInsufficientFunds, cost, c.budget)
	}
	c.debit(cost)
	b.Stabilized = true
	c.notifyArea(b.Origin, b.Size)
	return nil
}

func (c *City) buildingAt(op string, x, y int) (*Building, error) {
	t, ok := c.grid.Tile(x, y)
	if !ok {
		return nil, fmt.Errorf("%s (%d,%d): %w", op, x, y, ErrOutOfBounds)
	}
	if !t.Occupied() {
		return nil, fmt.Errorf("%s (%d,%d): %w", op, x, y, ErrNoBuildingPresent)
	}
	return t.Building(), nil
}

// ResolvePrompt applies the player's answer. Accepting deducts the cost and
// settles the decision; accepting without funds fails and leaves the prompt
// open; declining closes it unsettled.
func (c *City) ResolvePrompt(id string, accept bool) error {
	p, err := c.prompts.find(id)
	if err != nil {
		return err
	}
	if accept {
		if c.budget < p.Cost {
			return fmt.Errorf("prompt %s: %w: cost %.2f, budget %.2f", id, ErrInsufficientFunds, p.Cost, c.budget)
		}
		c.debit(p.Cost)
		c.state.Resolve(p.Kind)
	}
	c.prompts.close(id)
	c.emit(Event{Kind: EventPromptResolved, Prompt: &p, Accepted: accept, Amount: p.Cost})
	return nil
}

// notifyArea emits one TileChanged per cell of the footprint grown by one
func (c *City) notifyArea(origin models.Coord, size int) {
	for _, t := range c.grid.area(origin, size, 1) {
		e := Event{Kind: EventTileChanged, Coord: t.Coord(), Occupied: t.Occupied()}
		if b := t.Building(); b != nil {
			e.Building = b.Type
		}
		c.emit(e)
	}
}
