package wfc

// Propagator narrows domains until every cell's domain is supported by
// all of its neighbours (arc consistency over the 4-neighbourhood).
type Propagator struct {
	table   *Table
	steps   int
	queued  []bool
	queue   []int
	ids     []int
	support Domain
}

func NewPropagator(t *Table) *Propagator {
	return &Propagator{
		table:   t,
		support: NewDomain(t.Len()),
	}
}

// Steps is the number of effective narrowings done by the last call to
// [Propagator.Propagate].
func (p *Propagator) Steps() int {
	return p.steps
}

func (p *Propagator) reset(cells int) {
	p.steps = 0
	p.queue = p.queue[:0]
	if cap(p.queued) < cells {
		p.queued = make([]bool, cells)
	} else {
		p.queued = p.queued[:cells]
		for i := range p.queued {
			p.queued[i] = false
		}
	}
}

func (p *Propagator) push(i int) {
	if !p.queued[i] {
		p.queued[i] = true
		p.queue = append(p.queue, i)
	}
}

/*
Propagate runs the constraint sweep over w and reports whether w is still
consistent. It returns false as soon as some domain becomes empty; the
wave is then garbage and must be rolled back or abandoned.

The worklist starts with every collapsed cell. Each popped cell restricts
its neighbours to the union of what its remaining patterns allow towards
them, and a neighbour that lost something is queued in turn. A cell
already waiting is not queued twice, which only merges duplicate work:
it still sees its latest domain when popped. Every effective step removes
at least one ID from a finite total, so the sweep terminates.
*/
func (p *Propagator) Propagate(w *Wave) bool {
	if w.n != p.table.Len() {
		panic(AssertionError{"wave and compatibility table disagree on catalog size"})
	}
	p.reset(len(w.cells))

	for i, d := range w.cells {
		if d.Len() == 1 {
			p.push(i)
		}
	}

	for head := 0; head < len(p.queue); head++ {
		i := p.queue[head]
		p.queued[i] = false
		x, y := i%w.width, i/w.width
		p.ids = w.cells[i].AppendIDs(p.ids[:0])

		for _, dir := range Directions {
			dx, dy := dir.Delta()
			nx, ny := x+dx, y+dy
			if !w.inBounds(nx, ny) {
				continue
			}

			p.support.Clear()
			for _, id := range p.ids {
				p.support.UnionWith(p.table.Support(id, dir))
			}

			j := ny*w.width + nx
			if !w.cells[j].IntersectWith(p.support) {
				continue
			}
			p.steps++
			if w.cells[j].Empty() {
				return false /* contradiction */
			}
			p.push(j)
		}
	}

	return true
}
