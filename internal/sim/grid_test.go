package sim

import (
	"testing"

	"github.com/napolitain/citysim/internal/models"
)

func TestGridTileBounds(t *testing.T) {
	for n := 1; n <= 6; n++ {
		g := newGrid(n)
		for y := -2; y < n+2; y++ {
			for x := -2; x < n+2; x++ {
				tile, ok := g.Tile(x, y)
				inside := x >= 0 && y >= 0 && x < n && y < n
				if ok != inside {
					t.Fatalf("size %d: Tile(%d, %d) ok=%v, want %v", n, x, y, ok, inside)
				}
				if ok && (tile.X() != x || tile.Y() != y) {
					t.Fatalf("size %d: Tile(%d, %d) returned (%d, %d)", n, x, y, tile.X(), tile.Y())
				}
			}
		}
	}
}

func TestGridUninitialized(t *testing.T) {
	var g *Grid
	if _, ok := g.Tile(0, 0); ok {
		t.Error("nil grid should not return tiles")
	}
	if _, ok := (&Grid{size: 3}).Tile(0, 0); ok {
		t.Error("grid without rows should not return tiles")
	}
}

func TestGridNeighbors(t *testing.T) {
	g := newGrid(3)
	tests := []struct {
		x, y int
		want int
	}{
		{0, 0, 2},
		{1, 0, 3},
		{1, 1, 4},
		{2, 2, 2},
		{5, 5, 0},
	}
	for _, tt := range tests {
		if got := len(g.Neighbors(tt.x, tt.y)); got != tt.want {
			t.Errorf("Neighbors(%d, %d) = %d tiles, want %d", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestGridFindTile(t *testing.T) {
	g := newGrid(7)
	target, _ := g.Tile(4, 3)
	isTarget := func(tile *Tile) bool { return tile == target }

	found, ok := g.FindTile(models.Coord{X: 1, Y: 1}, isTarget, 5)
	if !ok || found != target {
		t.Fatalf("FindTile within range: got %v, %v", found, ok)
	}

	if _, ok := g.FindTile(models.Coord{X: 1, Y: 1}, isTarget, 4); ok {
		t.Error("FindTile should not match beyond maxDistance")
	}

	if _, ok := g.FindTile(models.Coord{X: -1, Y: 0}, isTarget, 10); ok {
		t.Error("FindTile from out-of-bounds start should fail")
	}

	// restartable: a second search gives the same answer
	again, ok := g.FindTile(models.Coord{X: 1, Y: 1}, isTarget, 5)
	if !ok || again != target {
		t.Error("FindTile is not restartable")
	}
}

func TestGridFindTileVisitOrder(t *testing.T) {
	g := newGrid(5)
	var visited []int
	g.FindTile(models.Coord{X: 2, Y: 2}, func(tile *Tile) bool {
		visited = append(visited, tile.ID())
		return false
	}, 1)

	if len(visited) != 5 {
		t.Fatalf("visited %d tiles within distance 1, want 5", len(visited))
	}
	seen := make(map[int]bool)
	for _, id := range visited {
		if seen[id] {
			t.Fatalf("tile %d visited twice", id)
		}
		seen[id] = true
	}
	if visited[0] != 2*5+2 {
		t.Errorf("first visited tile = %d, want the start tile", visited[0])
	}
}
