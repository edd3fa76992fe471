package wfc

import "github.com/vancomm/wfc-server/internal/grid"

type Direction int

const (
	East Direction = iota
	South
	West
	North
)

var Directions = [...]Direction{East, South, West, North}

func (d Direction) String() string {
	switch d {
	case East:
		return "east"
	case South:
		return "south"
	case West:
		return "west"
	case North:
		return "north"
	default:
		return "unknown"
	}
}

// Delta is the grid offset of one step towards d; y grows downwards.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case East:
		return 1, 0
	case South:
		return 0, 1
	case West:
		return -1, 0
	case North:
		return 0, -1
	default:
		return 0, 0
	}
}

func (d Direction) Opposite() Direction {
	return (d + 2) % 4
}

/*
Compatible reports whether b may sit next to a in direction d: the edge
strip of a facing d must equal, cell for cell, the edge strip of b facing
back towards a. For East that is the last column of a against the first
column of b.
*/
func Compatible(a, b Pattern, d Direction) bool {
	if a.Size() != b.Size() {
		return false
	}
	for i := range a.Size() {
		if edge(a, d, i) != edge(b, d.Opposite(), i) {
			return false
		}
	}
	return true
}

// edge is the i-th cell of the strip of p that faces d, read left to
// right or top to bottom.
func edge(p Pattern, d Direction, i int) grid.Cell {
	last := p.Size() - 1
	switch d {
	case East:
		return p.At(last, i)
	case West:
		return p.At(0, i)
	case South:
		return p.At(i, last)
	default:
		return p.At(i, 0)
	}
}

// Table is the compatibility relation of one catalog, precomputed.
// support[d][p] holds every pattern allowed next to p towards d.
type Table struct {
	n       int
	support [4][]Domain
}

/*
NewTable evaluates [Compatible] for East and South only; West and North
follow from compatible(a, b, d) == compatible(b, a, opposite(d)).
*/
func NewTable(c *Catalog) *Table {
	n := c.Len()
	t := &Table{n: n}
	for _, d := range Directions {
		t.support[d] = make([]Domain, n)
		for p := range n {
			t.support[d][p] = NewDomain(n)
		}
	}
	for a := range n {
		pa := c.Pattern(a)
		for b := range n {
			pb := c.Pattern(b)
			for _, d := range [...]Direction{East, South} {
				if Compatible(pa, pb, d) {
					t.support[d][a].Add(b)
					t.support[d.Opposite()][b].Add(a)
				}
			}
		}
	}
	return t
}

func (t *Table) Len() int {
	return t.n
}

func (t *Table) Compatible(a, b int, d Direction) bool {
	return t.support[d][a].Has(b)
}

// Support is the set of patterns allowed next to a towards d. The
// returned domain is shared and must not be modified.
func (t *Table) Support(a int, d Direction) Domain {
	return t.support[d][a]
}
