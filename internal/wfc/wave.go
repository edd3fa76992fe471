package wfc

import (
	"fmt"
	"strings"

	"github.com/vancomm/wfc-server/internal/grid"
)

// Wave holds the domain of every output cell during the search.
type Wave struct {
	width, height int
	n             int
	cells         []Domain
}

// NewWave starts every cell with the full pattern set of c.
func NewWave(width, height int, c *Catalog) *Wave {
	if c == nil {
		panic(AssertionError{"wave needs a catalog"})
	}
	if width < 0 || height < 0 {
		panic(AssertionError{fmt.Sprintf("invalid wave size %dx%d", width, height)})
	}
	w := &Wave{
		width:  width,
		height: height,
		n:      c.Len(),
		cells:  make([]Domain, width*height),
	}
	for i := range w.cells {
		w.cells[i] = FullDomain(w.n)
	}
	return w
}

func (w *Wave) Width() int {
	return w.width
}

func (w *Wave) Height() int {
	return w.height
}

// Patterns is the size of the catalog the wave was built for.
func (w *Wave) Patterns() int {
	return w.n
}

func (w *Wave) index(x, y int) int {
	if x < 0 || x >= w.width || y < 0 || y >= w.height {
		panic(AssertionError{fmt.Sprintf("cell %d:%d outside %dx%d wave", x, y, w.width, w.height)})
	}
	return y*w.width + x
}

func (w *Wave) inBounds(x, y int) bool {
	return 0 <= x && x < w.width && 0 <= y && y < w.height
}

// Domain exposes the live domain of a cell; callers must not keep it
// across a rollback.
func (w *Wave) Domain(x, y int) Domain {
	return w.cells[w.index(x, y)]
}

func (w *Wave) Entropy(x, y int) int {
	return w.cells[w.index(x, y)].Len()
}

func (w *Wave) IsCollapsed(x, y int) bool {
	return w.Entropy(x, y) == 1
}

// Collapse commits a cell to a single pattern. It fails, leaving the wave
// untouched, when id is no longer possible there.
func (w *Wave) Collapse(x, y, id int) bool {
	if id < 0 || id >= w.n {
		return false
	}
	d := w.cells[w.index(x, y)]
	if !d.Has(id) {
		return false
	}
	d.Set(id)
	return true
}

// Restrict intersects a cell's domain with allowed and reports whether
// it shrank.
func (w *Wave) Restrict(x, y int, allowed Domain) bool {
	return w.cells[w.index(x, y)].IntersectWith(allowed)
}

// TotalEntropy is the sum of all domain sizes.
func (w *Wave) TotalEntropy() (n int) {
	for _, d := range w.cells {
		n += d.Len()
	}
	return
}

// Done reports whether every cell is collapsed.
func (w *Wave) Done() bool {
	for _, d := range w.cells {
		if d.Len() != 1 {
			return false
		}
	}
	return true
}

// Clone is a fully independent copy, used as a backtracking snapshot.
func (w *Wave) Clone() *Wave {
	c := &Wave{
		width:  w.width,
		height: w.height,
		n:      w.n,
		cells:  make([]Domain, len(w.cells)),
	}
	for i, d := range w.cells {
		c.cells[i] = d.Clone()
	}
	return c
}

/*
SeedBorder restricts the outermost ring of cells to the catalog's
all-wall patterns. When the catalog has none it does nothing and returns
false.
*/
func (w *Wave) SeedBorder(c *Catalog) bool {
	walls := c.UniformIDs(grid.Wall)
	if len(walls) == 0 || w.width == 0 || w.height == 0 {
		return false
	}
	allowed := NewDomain(w.n)
	for _, id := range walls {
		allowed.Add(id)
	}
	for y := range w.height {
		for x := range w.width {
			if x == 0 || y == 0 || x == w.width-1 || y == w.height-1 {
				w.Restrict(x, y, allowed)
			}
		}
	}
	return true
}

// String renders entropies, '*' for collapsed and '!' for contradictions.
func (w *Wave) String() string {
	var b strings.Builder
	for y := range w.height {
		for x := range w.width {
			switch e := w.Entropy(x, y); {
			case e == 0:
				b.WriteString("! ")
			case e == 1:
				b.WriteString("* ")
			case e < 10:
				fmt.Fprintf(&b, "%d ", e)
			default:
				b.WriteString("+ ")
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
