package core

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Instance text format:
//
//	rows cols
//	<rows lines of '.' (free) and '@' (blocked); whitespace ignored>
//	agents
//	<one "startRow startCol goalRow goalCol" line per agent>

// LoadInstance reads and validates an instance file. The instance is named
// after the file's base name.
func LoadInstance(path string) (*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	inst, err := ParseInstance(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	inst.Name = filepath.Base(path)
	if err := inst.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return inst, nil
}

// ParseInstance decodes the text format. It checks syntax only; call
// Validate for semantic checks.
func ParseInstance(r io.Reader) (*Instance, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<22)
	line := 0
	next := func() (string, bool) {
		for sc.Scan() {
			line++
			text := strings.TrimSpace(sc.Text())
			if text != "" {
				return text, true
			}
		}
		return "", false
	}

	header, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: missing header", ErrMalformedInstance)
	}
	dims, err := parseInts(header, 2)
	if err != nil {
		return nil, fmt.Errorf("%w: line %d: header: %v", ErrMalformedInstance, line, err)
	}
	rows, cols := dims[0], dims[1]
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: line %d: non-positive dimensions %dx%d", ErrMalformedInstance, line, rows, cols)
	}

	obstacles := make([][]bool, rows)
	for r := 0; r < rows; r++ {
		text, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: expected %d map rows, got %d", ErrMalformedInstance, rows, r)
		}
		text = strings.Join(strings.Fields(text), "")
		if len(text) != cols {
			return nil, fmt.Errorf("%w: line %d: map row has %d cells, want %d", ErrMalformedInstance, line, len(text), cols)
		}
		obstacles[r] = make([]bool, cols)
		for c, ch := range text {
			switch ch {
			case '@':
				obstacles[r][c] = true
			case '.':
			default:
				return nil, fmt.Errorf("%w: line %d: unexpected map symbol %q", ErrMalformedInstance, line, ch)
			}
		}
	}

	text, ok := next()
	if !ok {
		return nil, fmt.Errorf("%w: missing agent count", ErrMalformedInstance)
	}
	n, err := strconv.Atoi(text)
	if err != nil || n < 0 {
		return nil, fmt.Errorf("%w: line %d: bad agent count %q", ErrMalformedInstance, line, text)
	}

	starts := make([]Cell, 0, n)
	goals := make([]Cell, 0, n)
	for i := 0; i < n; i++ {
		text, ok := next()
		if !ok {
			return nil, fmt.Errorf("%w: expected %d agents, got %d", ErrMalformedInstance, n, i)
		}
		v, err := parseInts(text, 4)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: agent %d: %v", ErrMalformedInstance, line, i, err)
		}
		starts = append(starts, Cell{Row: v[0], Col: v[1]})
		goals = append(goals, Cell{Row: v[2], Col: v[3]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return NewInstance("", NewGrid(obstacles), starts, goals), nil
}

// WriteInstance encodes inst in the text format.
func WriteInstance(w io.Writer, inst *Instance) error {
	bw := bufio.NewWriter(w)
	g := inst.Grid
	fmt.Fprintf(bw, "%d %d\n", g.Rows(), g.Cols())
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			if c > 0 {
				bw.WriteByte(' ')
			}
			if g.Passable(Cell{Row: r, Col: c}) {
				bw.WriteByte('.')
			} else {
				bw.WriteByte('@')
			}
		}
		bw.WriteByte('\n')
	}
	fmt.Fprintf(bw, "%d\n", len(inst.Agents))
	for _, a := range inst.Agents {
		fmt.Fprintf(bw, "%d %d %d %d\n", a.Start.Row, a.Start.Col, a.Goal.Row, a.Goal.Col)
	}
	return bw.Flush()
}

func parseInts(text string, want int) ([]int, error) {
	fields := strings.Fields(text)
	if len(fields) != want {
		return nil, fmt.Errorf("want %d integers, got %d fields", want, len(fields))
	}
	out := make([]int, want)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
