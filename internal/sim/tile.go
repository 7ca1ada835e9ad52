package sim

import (
	"time"

	"github.com/napolitain/citysim/internal/models"
)

// Tile is one grid cell. Its coordinates never change after construction.
type Tile struct {
	id       int
	x, y     int
	building *Building
}

func newTile(id, x, y int) *Tile {
	return &Tile{id: id, x: x, y: y}
}

// ID returns the tile identity, unique within its grid
func (t *Tile) ID() int { return t.id }

// X returns the column
func (t *Tile) X() int { return t.x }

// Y returns the row
func (t *Tile) Y() int { return t.y }

// Coord returns the tile coordinate
func (t *Tile) Coord() models.Coord { return models.Coord{X: t.x, Y: t.y} }

// Building returns the building covering this tile, if any
func (t *Tile) Building() *Building { return t.building }

// Occupied reports whether any building covers the tile
func (t *Tile) Occupied() bool { return t.building != nil }

// Owns reports whether the tile is the origin cell of its building
func (t *Tile) Owns() bool {
	return t.building != nil && t.building.Origin.X == t.x && t.building.Origin.Y == t.y
}

// DistanceTo returns the Manhattan distance, matching the orthogonal
// neighbour expansion used by FindTile
func (t *Tile) DistanceTo(other *Tile) int {
	return abs(t.x-other.x) + abs(t.y-other.y)
}

func (t *Tile) setBuilding(b *Building) {
	t.building = b
}

func (t *Tile) simulate(_ *City, _ time.Duration) {
	if t.Owns() {
		t.building.simulate()
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
