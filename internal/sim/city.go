package sim

import (
	"fmt"
	"time"

	"github.com/napolitain/citysim/internal/models"
)

// City is the aggregate root: it owns the grid, budget, proximity index,
// simulation state, pending prompts and registered services. It is not safe
// for concurrent use; callers serialize access per city.
type City struct {
	cfg       *models.Config
	budget    float64
	grid      *Grid
	proximity ProximityIndex
	state     SimulationState
	revenue   RevenueEngine
	prompts   promptQueue
	services  []Service
	observers []Observer

	lastRevenue RevenueReport
	promptIDs   func() string
}

// Option configures a City at construction
type Option func(*City)

// WithProximityIndex replaces the default linear-scan index
func WithProximityIndex(index ProximityIndex) Option {
	return func(c *City) { c.proximity = index }
}

// WithService registers a per-tick service
func WithService(s Service) Option {
	return func(c *City) { c.services = append(c.services, s) }
}

// WithObserver subscribes an observer before the town hall is placed
func WithObserver(o Observer) Option {
	return func(c *City) { c.observers = append(c.observers, o) }
}

// WithPromptIDs sets the prompt id generator (default: prompt-1, prompt-2, ...)
func WithPromptIDs(next func() string) Option {
	return func(c *City) { c.promptIDs = next }
}

// NewCity validates cfg and builds an empty city. The config is copied.
func NewCity(cfg *models.Config, opts ...Option) (*City, error) {
	if cfg == nil {
		cfg = models.DefaultConfig()
	}
	if err := models.ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg = cfg.Clone()

	c := &City{
		cfg:       cfg,
		budget:    cfg.Budget,
		grid:      newGrid(cfg.Size),
		proximity: NewListIndex(),
		state:     NewSimulationState(cfg.Timeline),
		revenue:   NewRevenueEngine(cfg),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.prompts = newPromptQueue(c.promptIDs)

	if cfg.TownHall {
		center := cfg.Size / 2
		spec := cfg.Catalog[models.TownHall]
		if center+spec.Footprint > cfg.Size {
			center = cfg.Size - spec.Footprint
		}
		c.debit(spec.Cost)
		c.install(models.TownHall, spec, center, center)
	}
	return c, nil
}

// Config returns the city's config. Callers must not modify it.
func (c *City) Config() *models.Config { return c.cfg }

// Size returns the grid side length
func (c *City) Size() int { return c.grid.Size() }

// Budget returns the current budget
func (c *City) Budget() float64 { return c.budget }

// Clock returns the accumulated simulated session time
func (c *City) Clock() time.Duration { return c.state.Clock }

// Cooldown returns the remaining placement lockout
func (c *City) Cooldown() time.Duration { return c.state.Cooldown }

// State returns a copy of the simulation state
func (c *City) State() SimulationState { return c.state }

// LastRevenue returns the report of the most recent revenue pass
func (c *City) LastRevenue() RevenueReport { return c.lastRevenue }

// Proximity returns the proximity index
func (c *City) Proximity() ProximityIndex { return c.proximity }

// Population returns the residents of every building, each counted once
func (c *City) Population() int {
	total := 0
	for _, b := range c.Buildings() {
		total += b.Residents
	}
	return total
}

// Buildings returns the placed buildings ordered by origin, row-major
func (c *City) Buildings() []*Building {
	var buildings []*Building
	c.grid.Each(func(t *Tile) {
		if t.Owns() {
			buildings = append(buildings, t.Building())
		}
	})
	return buildings
}

// GetTile returns the tile at (x, y), false when out of bounds
func (c *City) GetTile(x, y int) (*Tile, bool) {
	return c.grid.Tile(x, y)
}

// TileNeighbors returns the orthogonal in-bounds neighbours of (x, y)
func (c *City) TileNeighbors(x, y int) []*Tile {
	return c.grid.Neighbors(x, y)
}

// FindTile searches outward from start; see Grid.FindTile
func (c *City) FindTile(start models.Coord, pred func(*Tile) bool, maxDistance int) (*Tile, bool) {
	return c.grid.FindTile(start, pred, maxDistance)
}

// IsInPoliceStationProximity reports police coverage of (x, y)
func (c *City) IsInPoliceStationProximity(x, y int) bool {
	return c.proximity.Covered(ProximityPolice, x, y, c.cfg.Radii.Police)
}

// IsInFireStationProximity reports fire coverage of (x, y)
func (c *City) IsInFireStationProximity(x, y int) bool {
	return c.proximity.Covered(ProximityFire, x, y, c.cfg.Radii.Fire)
}

// IsInHospitalProximity reports hospital coverage of (x, y)
func (c *City) IsInHospitalProximity(x, y int) bool {
	return c.proximity.Covered(ProximityHospital, x, y, c.cfg.Radii.Hospital)
}

// Subscribe adds an observer
func (c *City) Subscribe(o Observer) {
	c.observers = append(c.observers, o)
}

// PendingPrompts returns the open prompts in raise order
func (c *City) PendingPrompts() []Prompt {
	return c.prompts.pending()
}

func (c *City) emit(e Event) {
	e.Clock = c.state.Clock
	for _, o := range c.observers {
		o.Observe(e)
	}
}

func (c *City) credit(amount float64) {
	c.budget += amount
}

func (c *City) debit(amount float64) {
	c.budget -= amount
}
