package core

// directions lists the 4-connected moves in a fixed order: up, right, down, left.
var directions = [4]Cell{{-1, 0}, {0, 1}, {1, 0}, {0, -1}}

// Grid is a static obstacle map. It is immutable once built.
type Grid struct {
	rows, cols int
	blocked    []bool
}

// NewGrid creates a grid from a row-major obstacle map (true = blocked).
// Rows shorter than the widest row are padded with blocked cells.
func NewGrid(obstacles [][]bool) *Grid {
	rows := len(obstacles)
	cols := 0
	for _, r := range obstacles {
		if len(r) > cols {
			cols = len(r)
		}
	}

	g := &Grid{rows: rows, cols: cols, blocked: make([]bool, rows*cols)}
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			g.blocked[r*cols+c] = c >= len(obstacles[r]) || obstacles[r][c]
		}
	}
	return g
}

// NewOpenGrid creates a rows x cols grid without obstacles.
func NewOpenGrid(rows, cols int) *Grid {
	return &Grid{rows: rows, cols: cols, blocked: make([]bool, rows*cols)}
}

// WithBlocked returns a copy of the grid with the given cells blocked.
func (g *Grid) WithBlocked(cells ...Cell) *Grid {
	out := &Grid{rows: g.rows, cols: g.cols, blocked: make([]bool, len(g.blocked))}
	copy(out.blocked, g.blocked)
	for _, c := range cells {
		if g.InBounds(c) {
			out.blocked[g.Index(c)] = true
		}
	}
	return out
}

// Rows returns the grid height.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the grid width.
func (g *Grid) Cols() int { return g.cols }

// Size returns the number of cells, free or blocked.
func (g *Grid) Size() int { return g.rows * g.cols }

// Index maps an in-bounds cell to its row-major index.
func (g *Grid) Index(c Cell) int {
	return c.Row*g.cols + c.Col
}

// CellAt is the inverse of Index.
func (g *Grid) CellAt(idx int) Cell {
	return Cell{Row: idx / g.cols, Col: idx % g.cols}
}

// InBounds reports whether c lies inside the grid.
func (g *Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.rows && c.Col >= 0 && c.Col < g.cols
}

// Passable reports whether c is inside the grid and not blocked.
func (g *Grid) Passable(c Cell) bool {
	return g.InBounds(c) && !g.blocked[g.Index(c)]
}

// Neighbors returns the passable 4-connected neighbors of c in
// up, right, down, left order.
func (g *Grid) Neighbors(c Cell) []Cell {
	out := make([]Cell, 0, 4)
	for _, d := range directions {
		n := Cell{Row: c.Row + d.Row, Col: c.Col + d.Col}
		if g.Passable(n) {
			out = append(out, n)
		}
	}
	return out
}

// Adjacent reports whether a and b are 4-connected neighbors.
func Adjacent(a, b Cell) bool {
	dr, dc := a.Row-b.Row, a.Col-b.Col
	return dr*dr+dc*dc == 1
}

// FreeCells counts passable cells.
func (g *Grid) FreeCells() int {
	n := 0
	for _, b := range g.blocked {
		if !b {
			n++
		}
	}
	return n
}
