package wfc

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/wfc-server/internal/grid"
)

var Log = logrus.New()

type Config struct {
	// FloorWeight is reserved for weighted collapse; the base rule ignores it.
	FloorWeight float64 `yaml:"floor_weight" json:"floor_weight"`
	// PatternSize is the side of the patterns used by [Generator.Generate].
	PatternSize int `yaml:"pattern_size" json:"pattern_size"`
	// EnableBacktracking snapshots the wave before each collapse and rolls
	// back on contradiction; without it the first contradiction abandons.
	EnableBacktracking bool `yaml:"enable_backtracking" json:"enable_backtracking"`
	// MaxDepth caps the number of retained snapshots, 0 means no cap.
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
	// MaxBacktracks caps rollbacks per call, 0 means no cap.
	MaxBacktracks int `yaml:"max_backtracks" json:"max_backtracks"`
}

func DefaultConfig() Config {
	return Config{
		FloorWeight:        0.5,
		PatternSize:        3,
		EnableBacktracking: true,
	}
}

var (
	ErrPatternSize   = errors.New("pattern size must be positive")
	ErrFloorWeight   = errors.New("floor weight must be within [0, 1]")
	ErrMaxDepth      = errors.New("max depth cannot be negative")
	ErrMaxBacktracks = errors.New("max backtracks cannot be negative")
)

func (c Config) Validate() error {
	if c.PatternSize < 1 {
		return fmt.Errorf("%w (got %d)", ErrPatternSize, c.PatternSize)
	}
	if c.FloorWeight < 0 || c.FloorWeight > 1 {
		return fmt.Errorf("%w (got %g)", ErrFloorWeight, c.FloorWeight)
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("%w (got %d)", ErrMaxDepth, c.MaxDepth)
	}
	if c.MaxBacktracks < 0 {
		return fmt.Errorf("%w (got %d)", ErrMaxBacktracks, c.MaxBacktracks)
	}
	return nil
}

type State int8

const (
	Propagating State = iota
	Selecting
	Collapsing
	Contradiction
	Success
	Abandoned
)

func (s State) String() string {
	switch s {
	case Propagating:
		return "propagating"
	case Selecting:
		return "selecting"
	case Collapsing:
		return "collapsing"
	case Contradiction:
		return "contradiction"
	case Success:
		return "success"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Result summarises one generation. Only State distinguishes a finished
// search from an abandoned one; both leave a grid behind.
type Result struct {
	State          State
	Patterns       int
	Collapses      int
	Contradictions int
	Backtracks     int
	// MaxStackDepth is the deepest the snapshot stack got.
	MaxStackDepth int
	// PropagationSteps totals effective narrowings over all propagations;
	// MaxPropagationSteps is the largest single propagation.
	PropagationSteps    int
	MaxPropagationSteps int
	Elapsed             time.Duration
}

func (r Result) Fields() logrus.Fields {
	return logrus.Fields{
		"state":          r.State.String(),
		"patterns":       r.Patterns,
		"collapses":      r.Collapses,
		"contradictions": r.Contradictions,
		"backtracks":     r.Backtracks,
		"maxDepth":       r.MaxStackDepth,
		"propSteps":      r.PropagationSteps,
		"elapsed":        r.Elapsed.String(),
	}
}

type EventKind int8

const (
	EventCollapse EventKind = iota
	EventContradiction
	EventBacktrack
	EventDone
)

func (k EventKind) String() string {
	switch k {
	case EventCollapse:
		return "collapse"
	case EventContradiction:
		return "contradiction"
	case EventBacktrack:
		return "backtrack"
	case EventDone:
		return "done"
	default:
		return "unknown"
	}
}

// Event reports one transition of the search. X, Y and Pattern are set
// for collapses; Depth is the snapshot stack depth after the transition.
type Event struct {
	Kind    EventKind
	X, Y    int
	Pattern int
	Depth   int
	State   State
}

// Observer is called synchronously from the search loop.
type Observer func(Event)

// Generator runs the search. It keeps no state between calls, so one
// Generator may serve concurrent, unrelated calls.
type Generator struct {
	cfg      Config
	observer Observer
}

func New(cfg Config) *Generator {
	if cfg.PatternSize < 1 {
		cfg.PatternSize = DefaultConfig().PatternSize
	}
	return &Generator{cfg: cfg}
}

// WithObserver returns a copy of g that reports events to o.
func (g *Generator) WithObserver(o Observer) *Generator {
	c := *g
	c.observer = o
	return &c
}

func (g *Generator) Config() Config {
	return g.cfg
}

func (g *Generator) emit(e Event) {
	if g.observer != nil {
		g.observer(e)
	}
}

// [Generator] implements [grid.Generator]
func (g *Generator) Generate(out *grid.Grid, seed uint64) {
	g.GenerateWithPatterns(out, DefaultCatalog(g.cfg.PatternSize), seed)
}

/*
GenerateWithPatterns fills out from the patterns of c. The same catalog,
seed and configuration always give the same grid.

The search alternates propagation, selection of the most constrained
cell and collapse. When propagation empties a domain the wave is rolled
back to the snapshot taken before the latest collapse and the search
resumes from there; failed choices are not remembered, so a retry may
draw the same pattern again. The search is abandoned when backtracking
is off or no snapshot is left, and also once a positive MaxBacktracks is
spent. Either way the wave is materialized into out.
*/
func (g *Generator) GenerateWithPatterns(out *grid.Grid, c *Catalog, seed uint64) Result {
	wave, res := g.search(c, out.Width, out.Height, seed)
	Materialize(wave, c, out)
	return res
}

func (g *Generator) search(c *Catalog, width, height int, seed uint64) (*Wave, Result) {
	start := time.Now()

	var (
		rng        = grid.NewRand(seed)
		table      = NewTable(c)
		propagator = NewPropagator(table)
		scheduler  = &Scheduler{FloorWeight: g.cfg.FloorWeight}
		stack      = NewStack(g.cfg.MaxDepth)
		wave       = NewWave(width, height, c)
		budget     = g.cfg.MaxBacktracks
		res        = Result{Patterns: c.Len()}
		state      = Propagating
		x, y       int
	)

	log := Log.WithFields(logrus.Fields{
		"size":     fmt.Sprintf("%dx%d", width, height),
		"patterns": c.Len(),
		"seed":     seed,
	})

	if wave.SeedBorder(c) {
		log.Debug("border restricted to wall patterns")
	}

	for state != Success && state != Abandoned {
		switch state {
		case Propagating:
			ok := propagator.Propagate(wave)
			steps := propagator.Steps()
			res.PropagationSteps += steps
			res.MaxPropagationSteps = max(res.MaxPropagationSteps, steps)
			if ok {
				state = Selecting
			} else {
				state = Contradiction
			}

		case Selecting:
			var ok bool
			if x, y, ok = scheduler.Next(wave); ok {
				state = Collapsing
			} else {
				state = Success
			}

		case Collapsing:
			id := scheduler.Choose(wave, x, y, rng)
			if g.cfg.EnableBacktracking {
				stack.Push(wave)
			}
			if !wave.Collapse(x, y, id) {
				panic(AssertionError{fmt.Sprintf("drew pattern %d outside the domain of %d:%d", id, x, y)})
			}
			res.Collapses++
			log.WithFields(logrus.Fields{
				"x": x, "y": y, "pattern": id, "depth": stack.Len(),
			}).Debug("collapse")
			g.emit(Event{Kind: EventCollapse, X: x, Y: y, Pattern: id, Depth: stack.Len(), State: state})
			state = Propagating

		case Contradiction:
			res.Contradictions++
			g.emit(Event{Kind: EventContradiction, Depth: stack.Len(), State: state})
			if !g.cfg.EnableBacktracking || stack.Len() == 0 {
				state = Abandoned
				break
			}
			if budget > 0 && res.Backtracks >= budget {
				log.WithField("backtracks", res.Backtracks).Debug("rollback budget spent")
				state = Abandoned
				break
			}
			wave = stack.Pop()
			res.Backtracks++
			log.WithField("depth", stack.Len()).Debug("backtrack")
			g.emit(Event{Kind: EventBacktrack, Depth: stack.Len(), State: state})
			state = Propagating
		}
	}

	stack.Clear()

	res.State = state
	res.MaxStackDepth = stack.Peak()
	res.Elapsed = time.Since(start)
	g.emit(Event{Kind: EventDone, Depth: stack.Len(), State: state})
	log.WithFields(res.Fields()).Info("generation finished")
	return wave, res
}
