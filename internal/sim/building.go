package sim

import (
	"time"

	"github.com/napolitain/citysim/internal/models"
)

// Building is a placed structure. It is owned by the tile at Origin; the
// other footprint tiles only reference it.
type Building struct {
	Type       models.BuildingType `json:"type"`
	Size       int                 `json:"size"`
	Origin     models.Coord        `json:"origin"`
	PlacedAt   time.Duration       `json:"placedAt"`
	Burned     bool                `json:"burned"`
	Stabilized bool                `json:"stabilized"`
	Residents  int                 `json:"residents,omitempty"`

	capacity int
}

func newBuilding(bt models.BuildingType, spec models.BuildingSpec, origin models.Coord, now time.Duration) *Building {
	size := spec.Footprint
	if size < 1 {
		size = 1
	}
	b := &Building{
		Type:     bt,
		Size:     size,
		Origin:   origin,
		PlacedAt: now,
	}
	if spec.Residential {
		b.capacity = spec.Residents
	}
	return b
}

// Footprint returns the Size x Size cells covered by the building, row-major
func (b *Building) Footprint() []models.Coord {
	cells := make([]models.Coord, 0, b.Size*b.Size)
	for y := b.Origin.Y; y < b.Origin.Y+b.Size; y++ {
		for x := b.Origin.X; x < b.Origin.X+b.Size; x++ {
			cells = append(cells, models.Coord{X: x, Y: y})
		}
	}
	return cells
}

// Age returns the simulated time since placement
func (b *Building) Age(now time.Duration) time.Duration {
	if now < b.PlacedAt {
		return 0
	}
	return now - b.PlacedAt
}

// Capacity returns the maximum resident count (zero for non-residential)
func (b *Building) Capacity() int {
	return b.capacity
}

func (b *Building) simulate() {
	if b.Residents < b.capacity {
		b.Residents = min(b.capacity, b.Residents+ResidentsPerTick)
	}
}
