package sim

import "github.com/napolitain/citysim/internal/models"

// Grid is the fixed N x N tile storage, rows indexed by y then x
type Grid struct {
	size int
	rows [][]*Tile
}

func newGrid(size int) *Grid {
	g := &Grid{size: size, rows: make([][]*Tile, size)}
	for y := 0; y < size; y++ {
		row := make([]*Tile, size)
		for x := 0; x < size; x++ {
			row[x] = newTile(y*size+x, x, y)
		}
		g.rows[y] = row
	}
	return g
}

// Size returns the side length of the grid
func (g *Grid) Size() int {
	if g == nil {
		return 0
	}
	return g.size
}

// Tile returns the tile at (x, y). The second result is false when the
// coordinate is outside [0, size) or the grid is not initialized.
func (g *Grid) Tile(x, y int) (*Tile, bool) {
	if g == nil || g.rows == nil {
		return nil, false
	}
	if x < 0 || y < 0 || x >= g.size || y >= g.size {
		return nil, false
	}
	row := g.rows[y]
	if row == nil {
		return nil, false
	}
	return row[x], true
}

// Neighbors returns the up-to-4 orthogonally adjacent tiles
func (g *Grid) Neighbors(x, y int) []*Tile {
	var neighbors []*Tile
	for _, d := range [4][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if t, ok := g.Tile(x+d[0], y+d[1]); ok {
			neighbors = append(neighbors, t)
		}
	}
	return neighbors
}

// FindTile runs a breadth-first search from start through orthogonal
// neighbours and returns the first tile matching pred. Tiles further than
// maxDistance (Manhattan) from start are neither matched nor expanded.
func (g *Grid) FindTile(start models.Coord, pred func(*Tile) bool, maxDistance int) (*Tile, bool) {
	origin, ok := g.Tile(start.X, start.Y)
	if !ok {
		return nil, false
	}

	visited := make(map[int]bool)
	queue := []*Tile{origin}

	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]

		if visited[t.id] {
			continue
		}
		visited[t.id] = true

		if origin.DistanceTo(t) > maxDistance {
			continue
		}

		queue = append(queue, g.Neighbors(t.x, t.y)...)

		if pred(t) {
			return t, true
		}
	}
	return nil, false
}

// Each visits every tile row by row
func (g *Grid) Each(fn func(*Tile)) {
	if g == nil {
		return
	}
	for _, row := range g.rows {
		for _, t := range row {
			fn(t)
		}
	}
}

// area returns the in-bounds cells of the square at origin with side size,
// grown by margin cells on every side, row-major
func (g *Grid) area(origin models.Coord, size, margin int) []*Tile {
	var tiles []*Tile
	for y := origin.Y - margin; y < origin.Y+size+margin; y++ {
		for x := origin.X - margin; x < origin.X+size+margin; x++ {
			if t, ok := g.Tile(x, y); ok {
				tiles = append(tiles, t)
			}
		}
	}
	return tiles
}
