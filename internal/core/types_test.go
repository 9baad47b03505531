package core

import (
	"errors"
	"testing"
)

func TestPathAt(t *testing.T) {
	p := Path{{0, 0}, {0, 1}, {0, 2}}

	tests := []struct {
		t    int
		want Cell
	}{
		{-1, Cell{0, 0}},
		{0, Cell{0, 0}},
		{1, Cell{0, 1}},
		{2, Cell{0, 2}},
		{10, Cell{0, 2}}, // waits at goal
	}

	for _, tt := range tests {
		if got := p.At(tt.t); got != tt.want {
			t.Errorf("At(%d) = %v, want %v", tt.t, got, tt.want)
		}
	}

	if p.Cost() != 2 {
		t.Errorf("Cost() = %d, want 2", p.Cost())
	}
	if (Path{}).Cost() != 0 {
		t.Error("empty path should cost 0")
	}
}

func TestGridNeighbors(t *testing.T) {
	g := NewGrid([][]bool{
		{false, false, false},
		{true, false, true},
	})

	got := g.Neighbors(Cell{0, 1})
	want := []Cell{{0, 2}, {1, 1}, {0, 0}} // right, down, left
	if len(got) != len(want) {
		t.Fatalf("Neighbors = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Neighbors[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if n := g.Neighbors(Cell{0, 0}); len(n) != 1 {
		t.Errorf("corner with obstacle below should have 1 neighbor, got %v", n)
	}
	if g.FreeCells() != 4 {
		t.Errorf("FreeCells = %d, want 4", g.FreeCells())
	}
	if g.Passable(Cell{5, 5}) {
		t.Error("out-of-bounds cell reported passable")
	}
}

func TestValidate(t *testing.T) {
	grid := NewOpenGrid(3, 3).WithBlocked(Cell{1, 1})

	tests := []struct {
		name   string
		starts []Cell
		goals  []Cell
		ok     bool
	}{
		{"valid", []Cell{{0, 0}, {2, 2}}, []Cell{{2, 2}, {0, 0}}, true},
		{"start at goal", []Cell{{0, 0}}, []Cell{{0, 0}}, true},
		{"blocked start", []Cell{{1, 1}}, []Cell{{0, 0}}, false},
		{"goal out of bounds", []Cell{{0, 0}}, []Cell{{3, 0}}, false},
		{"shared start", []Cell{{0, 0}, {0, 0}}, []Cell{{2, 2}, {2, 1}}, false},
		{"shared goal", []Cell{{0, 0}, {0, 1}}, []Cell{{2, 2}, {2, 2}}, false},
		{"no agents", nil, nil, false},
	}

	for _, tt := range tests {
		inst := NewInstance(tt.name, grid, tt.starts, tt.goals)
		err := inst.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrMalformedInstance) {
			t.Errorf("%s: want ErrMalformedInstance, got %v", tt.name, err)
		}
	}
}
