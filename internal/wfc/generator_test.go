package wfc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/wfc-server/internal/grid"
)

var _ grid.Generator = (*Generator)(nil)

func assertBorderIsWall(t *testing.T, g *grid.Grid) {
	t.Helper()
	for y := range g.Height {
		for x := range g.Width {
			if x == 0 || y == 0 || x == g.Width-1 || y == g.Height-1 {
				assert.Equal(t, grid.Wall, g.Get(x, y), "border cell %d:%d", x, y)
			}
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want error
	}{
		{name: "default", cfg: DefaultConfig()},
		{name: "size", cfg: Config{PatternSize: 0}, want: ErrPatternSize},
		{name: "weight", cfg: Config{PatternSize: 3, FloorWeight: 1.5}, want: ErrFloorWeight},
		{name: "depth", cfg: Config{PatternSize: 3, MaxDepth: -1}, want: ErrMaxDepth},
		{name: "backtracks", cfg: Config{PatternSize: 3, MaxBacktracks: -1}, want: ErrMaxBacktracks},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			err := test.cfg.Validate()
			if test.want == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, test.want)
			}
		})
	}
}

func TestGenerateDeterministic(t *testing.T) {
	c := DefaultCatalog(3)
	gen := New(DefaultConfig())
	for _, seed := range []uint64{1, 2, 42, 1 << 40} {
		a, b := grid.New(16, 12), grid.New(16, 12)
		ra := gen.GenerateWithPatterns(a, c, seed)
		rb := gen.GenerateWithPatterns(b, c, seed)
		assert.True(t, a.Equal(b), "seed %d\n%s\n%s", seed, a, b)
		ra.Elapsed, rb.Elapsed = 0, 0
		assert.Equal(t, ra, rb)
	}
}

func TestGenerateIgnoresPreviousContents(t *testing.T) {
	c := DefaultCatalog(3)
	gen := New(DefaultConfig())
	a, b := grid.New(10, 10), grid.New(10, 10)
	b.Fill(grid.Floor)
	gen.GenerateWithPatterns(a, c, 5)
	gen.GenerateWithPatterns(b, c, 5)
	assert.True(t, a.Equal(b))
}

func TestGenerateBorderIsWall(t *testing.T) {
	gen := New(DefaultConfig())
	for seed := range uint64(5) {
		g := grid.New(14, 10)
		gen.Generate(g, seed)
		assertBorderIsWall(t, g)
	}

	c := NewCatalog(3,
		UniformPattern(3, grid.Wall),
		UniformPattern(3, grid.Floor),
		mustPattern(t, "###", "...", "..."),
		mustPattern(t, "...", "...", "###"),
	)
	for _, backtracking := range []bool{true, false} {
		cfg := DefaultConfig()
		cfg.EnableBacktracking = backtracking
		g := grid.New(7, 7)
		New(cfg).GenerateWithPatterns(g, c, 3)
		assertBorderIsWall(t, g)
	}
}

func TestSuccessCollapsesEveryCell(t *testing.T) {
	gen := New(DefaultConfig())

	c := twinCatalog(t)
	for seed := range uint64(10) {
		w, res := gen.search(c, 6, 4, seed)
		require.Equal(t, Success, res.State)
		assert.True(t, w.Done())
		for y := range 4 {
			for x := range 6 {
				assert.Equal(t, 1, w.Entropy(x, y))
			}
		}
	}

	// budgeted runs may stop early; any that succeed are fully collapsed
	budgeted := DefaultConfig()
	budgeted.MaxBacktracks = 500
	for seed := range uint64(10) {
		w, res := New(budgeted).search(DefaultCatalog(3), 12, 10, seed)
		if res.State == Success {
			assert.True(t, w.Done(), "seed %d", seed)
			assert.Equal(t, 120, w.TotalEntropy())
		}
	}
}

func TestBacktrackingRecovers(t *testing.T) {
	gen := New(DefaultConfig())
	c := twinCatalog(t)

	backtracked := 0
	for seed := range uint64(32) {
		out := grid.New(2, 1)
		res := gen.GenerateWithPatterns(out, c, seed)
		require.Equal(t, Success, res.State, "seed %d", seed)
		// the pattern walled on its east edge cannot stay in the first cell
		assert.Equal(t, grid.Floor, out.Get(0, 0))
		assert.Equal(t, res.Contradictions, res.Backtracks)
		if res.Backtracks > 0 {
			backtracked++
		}
	}
	assert.Positive(t, backtracked)
}

func TestNoBacktrackingAbandonsOnFirstContradiction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.EnableBacktracking = false
	c := twinCatalog(t)

	abandoned := 0
	for seed := range uint64(32) {
		var events []Event
		gen := New(cfg).WithObserver(func(e Event) {
			events = append(events, e)
		})
		res := gen.GenerateWithPatterns(grid.New(2, 1), c, seed)

		assert.Equal(t, 0, res.Backtracks)
		assert.Equal(t, 0, res.MaxStackDepth)
		for _, e := range events {
			assert.Equal(t, 0, e.Depth)
			assert.NotEqual(t, EventBacktrack, e.Kind)
		}

		require.NotEmpty(t, events)
		last := events[len(events)-1]
		assert.Equal(t, EventDone, last.Kind)
		assert.Equal(t, res.State, last.State)

		switch res.State {
		case Abandoned:
			abandoned++
			assert.Equal(t, 1, res.Contradictions)
			require.GreaterOrEqual(t, len(events), 2)
			assert.Equal(t, EventContradiction, events[len(events)-2].Kind)
		case Success:
			assert.Equal(t, 0, res.Contradictions)
		}
	}
	assert.Positive(t, abandoned)
}

func TestContradictionWithEmptyStackAbandons(t *testing.T) {
	c := NewCatalog(2, mustPattern(t, ".#", ".#"))
	for _, backtracking := range []bool{true, false} {
		cfg := DefaultConfig()
		cfg.EnableBacktracking = backtracking
		out := grid.New(2, 1)
		out.Fill(grid.Floor)
		res := New(cfg).GenerateWithPatterns(out, c, 1)

		assert.Equal(t, Abandoned, res.State)
		assert.Equal(t, 1, res.Contradictions)
		assert.Equal(t, 0, res.Backtracks)
		assert.Equal(t, 0, res.Collapses)
		// abandoned output still comes back, empty cells as wall
		assert.Equal(t, grid.Wall, out.Get(0, 0))
		assert.Equal(t, grid.Wall, out.Get(1, 0))
	}
}

func TestDefaultConfigBacktracksWhileSnapshotsRemain(t *testing.T) {
	c := twinCatalog(t)
	most := 0
	for seed := range uint64(256) {
		var events []Event
		gen := New(DefaultConfig()).WithObserver(func(e Event) {
			events = append(events, e)
		})
		res := gen.GenerateWithPatterns(grid.New(2, 1), c, seed)

		require.Equal(t, Success, res.State, "seed %d", seed)
		for i, e := range events {
			if e.Kind == EventContradiction && e.Depth > 0 {
				require.Less(t, i+1, len(events))
				assert.Equal(t, EventBacktrack, events[i+1].Kind, "seed %d event %d", seed, i)
			}
		}
		most = max(most, res.Backtracks)
	}
	// more rollbacks than cells: there is no implicit per-size budget
	assert.Greater(t, most, 2)
}

func TestBacktrackBudget(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxBacktracks = 1
	c := twinCatalog(t)
	for seed := range uint64(32) {
		res := New(cfg).GenerateWithPatterns(grid.New(2, 1), c, seed)
		assert.LessOrEqual(t, res.Backtracks, 1)
		if res.State == Abandoned {
			assert.Equal(t, 2, res.Contradictions)
		}
	}
}

func TestMaxDepthCapsStack(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxDepth = 3
	var deepest int
	gen := New(cfg).WithObserver(func(e Event) {
		deepest = max(deepest, e.Depth)
	})
	res := gen.GenerateWithPatterns(grid.New(8, 8), DefaultCatalog(3), 9)
	assert.LessOrEqual(t, res.MaxStackDepth, 3)
	assert.LessOrEqual(t, deepest, 3)
}

func TestObserverMatchesResult(t *testing.T) {
	counts := make(map[EventKind]int)
	gen := New(DefaultConfig()).WithObserver(func(e Event) {
		counts[e.Kind]++
	})
	res := gen.GenerateWithPatterns(grid.New(12, 12), DefaultCatalog(3), 11)
	assert.Equal(t, res.Collapses, counts[EventCollapse])
	assert.Equal(t, res.Contradictions, counts[EventContradiction])
	assert.Equal(t, res.Backtracks, counts[EventBacktrack])
	assert.Equal(t, 1, counts[EventDone])
}

func TestEndToEndRoomSample(t *testing.T) {
	c := Extract(roomSample(t), 3)
	require.GreaterOrEqual(t, c.Len(), 2)

	out := grid.New(9, 9)
	res := New(DefaultConfig()).GenerateWithPatterns(out, c, 1)

	assert.Contains(t, []State{Success, Abandoned}, res.State)
	assert.LessOrEqual(t, res.MaxPropagationSteps, 9*9*c.Len())
	assert.Equal(t, c.Len(), res.Patterns)
	t.Logf("%s after %d collapses, %d backtracks\n%s",
		res.State, res.Collapses, res.Backtracks, out)
}

func TestGenerateEmptyGrid(t *testing.T) {
	out := grid.New(0, 0)
	res := New(DefaultConfig()).GenerateWithPatterns(out, DefaultCatalog(3), 1)
	assert.Equal(t, Success, res.State)
	assert.Equal(t, 0, res.Collapses)
}

func TestNewDefaultsPatternSize(t *testing.T) {
	gen := New(Config{})
	assert.Equal(t, 3, gen.Config().PatternSize)
}
