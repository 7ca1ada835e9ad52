package sim

import (
	"testing"

	"github.com/napolitain/citysim/internal/models"
)

func TestListIndex(t *testing.T) {
	idx := NewListIndex()
	a := models.Coord{X: 1, Y: 1}
	b := models.Coord{X: 8, Y: 8}

	idx.Register(ProximityFire, a)
	idx.Register(ProximityFire, b)
	idx.Register(ProximityFire, a)

	if !idx.Covered(ProximityFire, 3, 3, 2) {
		t.Error("(3,3) should be within 2 of (1,1)")
	}
	if idx.Covered(ProximityFire, 4, 1, 2) {
		t.Error("(4,1) is 3 columns away")
	}
	if idx.Covered(ProximityPolice, 1, 1, 5) {
		t.Error("kinds must be independent")
	}

	idx.Unregister(ProximityFire, a)
	coords := idx.Coords(ProximityFire)
	if len(coords) != 2 || coords[0] != b || coords[1] != a {
		t.Errorf("Coords after unregister = %v, want [b a]", coords)
	}

	coords[0] = models.Coord{X: 99, Y: 99}
	if idx.Coords(ProximityFire)[0] != b {
		t.Error("Coords must return a copy")
	}

	idx.Register(ProximityKind(42), a)
	if idx.Covered(ProximityKind(42), 1, 1, 0) {
		t.Error("invalid kind should never be covered")
	}
}

func TestSpecialBuildingsRegister(t *testing.T) {
	c, _ := newTestCity(t, 10, 5000)
	mustPlace(t, c, 2, 2, models.ShoppingMall)
	if got := c.Proximity().Coords(ProximitySpecial); len(got) != 1 || got[0] != (models.Coord{X: 2, Y: 2}) {
		t.Errorf("special coords = %v", got)
	}
}
