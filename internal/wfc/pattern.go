package wfc

import (
	"strings"

	"github.com/vancomm/wfc-server/internal/grid"
)

// Pattern is an immutable size×size tile of cells stored row-major.
type Pattern struct {
	size  int
	cells []grid.Cell
}

func newPattern(size int, cells []grid.Cell) Pattern {
	return Pattern{size: size, cells: cells}
}

// UniformPattern is a pattern whose every cell is c.
func UniformPattern(size int, c grid.Cell) Pattern {
	cells := make([]grid.Cell, size*size)
	for i := range cells {
		cells[i] = c
	}
	return newPattern(size, cells)
}

// PatternFromRows builds a pattern from square text rows ('#', '.').
func PatternFromRows(rows ...string) (Pattern, error) {
	g, err := grid.FromRows(rows)
	if err != nil {
		return Pattern{}, err
	}
	if g.Width != g.Height {
		return Pattern{}, AssertionError{"pattern rows must form a square"}
	}
	return newPattern(g.Width, g.Cells), nil
}

// window copies the size×size block of g whose top-left corner is (x, y).
func window(g *grid.Grid, x, y, size int) Pattern {
	cells := make([]grid.Cell, 0, size*size)
	for yy := range size {
		for xx := range size {
			cells = append(cells, g.Get(x+xx, y+yy))
		}
	}
	return newPattern(size, cells)
}

func (p Pattern) Size() int {
	return p.size
}

func (p Pattern) At(x, y int) grid.Cell {
	return p.cells[y*p.size+x]
}

// Center is the cell a collapsed pattern contributes to the output grid.
func (p Pattern) Center() grid.Cell {
	return p.At(p.size/2, p.size/2)
}

/*
Rotate returns p turned 90° clockwise: the left column, read bottom to
top, becomes the top row.
*/
func (p Pattern) Rotate() Pattern {
	n := p.size
	cells := make([]grid.Cell, n*n)
	for y := range n {
		for x := range n {
			cells[y*n+x] = p.At(y, n-1-x)
		}
	}
	return newPattern(n, cells)
}

func (p Pattern) Uniform(c grid.Cell) bool {
	for _, cc := range p.cells {
		if cc != c {
			return false
		}
	}
	return true
}

// Key identifies a pattern by content; equal keys mean equal patterns.
func (p Pattern) Key() string {
	var b strings.Builder
	b.Grow(len(p.cells) + 1)
	b.WriteByte(byte('0' + p.size%10))
	for _, c := range p.cells {
		b.WriteString(c.String())
	}
	return b.String()
}

func (p Pattern) Equal(o Pattern) bool {
	if p.size != o.size {
		return false
	}
	for i := range p.cells {
		if p.cells[i] != o.cells[i] {
			return false
		}
	}
	return true
}

func (p Pattern) Rows() []string {
	rows := make([]string, p.size)
	for y := range p.size {
		var b strings.Builder
		for x := range p.size {
			b.WriteString(p.At(x, y).String())
		}
		rows[y] = b.String()
	}
	return rows
}

func (p Pattern) String() string {
	return strings.Join(p.Rows(), "\n")
}
