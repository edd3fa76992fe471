package grid

import (
	"errors"
	"fmt"
	"strings"
)

type Cell int8

const (
	Wall  Cell = iota // zero value, what every untouched cell reads as
	Floor
)

func (c Cell) String() string {
	switch c {
	case Wall:
		return "#"
	case Floor:
		return "."
	default:
		return "?"
	}
}

func ParseCell(r rune) (Cell, error) {
	switch r {
	case '#':
		return Wall, nil
	case '.':
		return Floor, nil
	default:
		return Wall, fmt.Errorf("unknown cell %q", r)
	}
}

var (
	ErrEmptyGrid      = errors.New("grid: must have at least one row and one column")
	ErrNonRectangular = errors.New("grid: all rows must have the same length")
)

// Grid is a row-major 2D array of cells.
type Grid struct {
	Width, Height int
	Cells         []Cell
}

func New(width, height int) *Grid {
	return &Grid{
		Width:  width,
		Height: height,
		Cells:  make([]Cell, width*height),
	}
}

func (g *Grid) InBounds(x, y int) bool {
	return 0 <= x && x < g.Width && 0 <= y && y < g.Height
}

func (g *Grid) Get(x, y int) Cell {
	return g.Cells[y*g.Width+x]
}

func (g *Grid) Set(x, y int, c Cell) {
	g.Cells[y*g.Width+x] = c
}

func (g *Grid) Fill(c Cell) {
	for i := range g.Cells {
		g.Cells[i] = c
	}
}

func (g *Grid) Clone() *Grid {
	cells := make([]Cell, len(g.Cells))
	copy(cells, g.Cells)
	return &Grid{Width: g.Width, Height: g.Height, Cells: cells}
}

func (g *Grid) Equal(o *Grid) bool {
	if g.Width != o.Width || g.Height != o.Height {
		return false
	}
	for i := range g.Cells {
		if g.Cells[i] != o.Cells[i] {
			return false
		}
	}
	return true
}

func (g *Grid) Count(c Cell) (n int) {
	for _, cc := range g.Cells {
		if cc == c {
			n++
		}
	}
	return
}

func (g *Grid) String() string {
	var b strings.Builder
	for y := range g.Height {
		for x := range g.Width {
			b.WriteString(g.Get(x, y).String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Rows returns the grid as one string per row, the shape used in JSON payloads.
func (g *Grid) Rows() []string {
	rows := make([]string, g.Height)
	for y := range g.Height {
		var b strings.Builder
		for x := range g.Width {
			b.WriteString(g.Get(x, y).String())
		}
		rows[y] = b.String()
	}
	return rows
}

/*
Parse reads the text form produced by [Grid.String]: one line per row,
'#' for wall and '.' for floor. Blank lines and surrounding whitespace
are ignored.
*/
func Parse(s string) (*Grid, error) {
	lines := make([]string, 0)
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return FromRows(lines)
}

func FromRows(rows []string) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, ErrEmptyGrid
	}
	width := len([]rune(rows[0]))
	g := New(width, len(rows))
	for y, row := range rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("row %d: %w", y, ErrNonRectangular)
		}
		for x, r := range runes {
			c, err := ParseCell(r)
			if err != nil {
				return nil, fmt.Errorf("row %d col %d: %w", y, x, err)
			}
			g.Set(x, y, c)
		}
	}
	return g, nil
}
