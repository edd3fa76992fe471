package wfc

import (
	"bytes"
	"encoding/gob"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"

	"github.com/vancomm/wfc-server/internal/grid"
)

// Catalog is the ordered, deduplicated set of patterns a wave chooses
// from. A pattern's ID is its index. A catalog is never empty.
type Catalog struct {
	size     int
	patterns []Pattern
	index    map[string]int
}

func newCatalog(size int) *Catalog {
	return &Catalog{
		size:     size,
		patterns: make([]Pattern, 0),
		index:    make(map[string]int),
	}
}

// insert adds p unless an identical pattern is already present.
func (c *Catalog) insert(p Pattern) bool {
	key := p.Key()
	if _, ok := c.index[key]; ok {
		return false
	}
	c.index[key] = len(c.patterns)
	c.patterns = append(c.patterns, p)
	return true
}

// insertRotations adds p and then its three quarter turns, each only if novel.
func (c *Catalog) insertRotations(p Pattern) {
	c.insert(p)
	r := p
	for range 3 {
		r = r.Rotate()
		c.insert(r)
	}
}

func (c *Catalog) seedFallback() {
	c.insert(UniformPattern(c.size, grid.Wall))
	c.insert(UniformPattern(c.size, grid.Floor))
}

/*
Extract learns the patterns of sample: every size×size window (no
wrapping) in row-major order of its top-left corner, each followed by its
rotations. Discovery order is part of the result since it fixes pattern
IDs, and with them the order of random draws during generation.

A sample too small to hold a single window yields the all-wall and
all-floor patterns instead.
*/
func Extract(sample *grid.Grid, size int) *Catalog {
	if size < 1 {
		size = 1
	}
	c := newCatalog(size)
	if sample == nil || sample.Width < size || sample.Height < size {
		c.seedFallback()
		return c
	}
	for y := 0; y+size <= sample.Height; y++ {
		for x := 0; x+size <= sample.Width; x++ {
			c.insertRotations(window(sample, x, y, size))
		}
	}
	if len(c.patterns) == 0 {
		c.seedFallback()
	}
	return c
}

// NewCatalog builds a catalog from explicit patterns, dropping duplicates
// and any pattern whose size differs from size. Rotations are not added.
func NewCatalog(size int, patterns ...Pattern) *Catalog {
	if size < 1 {
		size = 1
	}
	c := newCatalog(size)
	for _, p := range patterns {
		if p.Size() == size {
			c.insert(p)
		}
	}
	if len(c.patterns) == 0 {
		c.seedFallback()
	}
	return c
}

func (c *Catalog) Len() int {
	return len(c.patterns)
}

func (c *Catalog) Size() int {
	return c.size
}

func (c *Catalog) Pattern(id int) Pattern {
	return c.patterns[id]
}

func (c *Catalog) Patterns() []Pattern {
	out := make([]Pattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// IndexOf returns the ID of a pattern equal to p.
func (c *Catalog) IndexOf(p Pattern) (int, bool) {
	id, ok := c.index[p.Key()]
	return id, ok
}

// UniformIDs lists the IDs of patterns made entirely of cell.
func (c *Catalog) UniformIDs(cell grid.Cell) []int {
	ids := make([]int, 0)
	for id, p := range c.patterns {
		if p.Uniform(cell) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Digest is a content address for the catalog: same patterns in the same
// order give the same digest.
func (c *Catalog) Digest() string {
	h, _ := blake2b.New256(nil)
	fmt.Fprintf(h, "%d:", c.size)
	for _, p := range c.patterns {
		h.Write([]byte(p.Key()))
		h.Write([]byte{'|'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

type catalogWire struct {
	Size     int
	Patterns [][]grid.Cell
}

// [Catalog] implements [encoding.BinaryMarshaler]
func (c *Catalog) MarshalBinary() ([]byte, error) {
	wire := catalogWire{Size: c.size, Patterns: make([][]grid.Cell, len(c.patterns))}
	for i, p := range c.patterns {
		wire.Patterns[i] = p.cells
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(wire); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// [Catalog] implements [encoding.BinaryUnmarshaler]
func (c *Catalog) UnmarshalBinary(data []byte) error {
	var wire catalogWire
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&wire); err != nil {
		return err
	}
	if wire.Size < 1 {
		return fmt.Errorf("invalid catalog pattern size %d", wire.Size)
	}
	decoded := newCatalog(wire.Size)
	for i, cells := range wire.Patterns {
		if len(cells) != wire.Size*wire.Size {
			return fmt.Errorf("pattern %d: expected %d cells, got %d",
				i, wire.Size*wire.Size, len(cells))
		}
		for j, cell := range cells {
			if cell != grid.Wall && cell != grid.Floor {
				return fmt.Errorf("pattern %d: unknown cell value %d at %d:%d",
					i, cell, j%wire.Size, j/wire.Size)
			}
		}
		if !decoded.insert(newPattern(wire.Size, cells)) {
			return fmt.Errorf("pattern %d is a duplicate", i)
		}
	}
	if decoded.Len() == 0 {
		decoded.seedFallback()
	}
	*c = *decoded
	return nil
}

func DecodeCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := c.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &c, nil
}

var defaultSample = []string{
	"################",
	"#....#######...#",
	"#....#######...#",
	"#..............#",
	"#....###.###...#",
	"######.....#####",
	"######.....#####",
	"#...##.....##..#",
	"#..............#",
	"#...########...#",
	"#...########...#",
	"################",
}

// DefaultSample is the built-in rooms-and-corridors sample behind
// [DefaultCatalog].
func DefaultSample() *grid.Grid {
	g, err := grid.FromRows(defaultSample)
	if err != nil {
		panic(AssertionError{"built-in sample is malformed: " + err.Error()})
	}
	return g
}

func DefaultCatalog(size int) *Catalog {
	return Extract(DefaultSample(), size)
}
