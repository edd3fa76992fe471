package wfc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vancomm/wfc-server/internal/grid"
)

func TestRotate(t *testing.T) {
	p := mustPattern(t,
		"#..",
		"#..",
		"###",
	)
	want := mustPattern(t,
		"###",
		"#..",
		"#..",
	)
	r := p.Rotate()
	assert.True(t, want.Equal(r), "got\n%s", r)

	full := p.Rotate().Rotate().Rotate().Rotate()
	assert.True(t, p.Equal(full))
	assert.Equal(t, p.Key(), full.Key())
}

func TestRotateAsymmetric(t *testing.T) {
	p := mustPattern(t,
		"#.",
		"..",
	)
	seen := map[string]bool{p.Key(): true}
	r := p
	for range 3 {
		r = r.Rotate()
		seen[r.Key()] = true
	}
	assert.Len(t, seen, 4)
	assert.Equal(t, []string{".#", ".."}, p.Rotate().Rows())
}

func TestCenter(t *testing.T) {
	tests := []struct {
		name string
		p    Pattern
		want grid.Cell
	}{
		{name: "1x1", p: UniformPattern(1, grid.Floor), want: grid.Floor},
		{name: "2x2", p: mustPattern(t, "##", "#."), want: grid.Floor},
		{name: "3x3", p: mustPattern(t, "###", "#.#", "###"), want: grid.Floor},
		{name: "3x3 wall", p: mustPattern(t, "...", ".#.", "..."), want: grid.Wall},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.want, test.p.Center())
		})
	}
}

func TestUniform(t *testing.T) {
	assert.True(t, UniformPattern(3, grid.Wall).Uniform(grid.Wall))
	assert.False(t, UniformPattern(3, grid.Wall).Uniform(grid.Floor))
	assert.False(t, mustPattern(t, "#.", "##").Uniform(grid.Wall))
}

func TestPatternFromRowsRejectsRectangles(t *testing.T) {
	_, err := PatternFromRows("###", "###")
	assert.Error(t, err)
}
