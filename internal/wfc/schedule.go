package wfc

import "math/rand/v2"

// Scheduler decides where the next collapse happens and what it commits to.
type Scheduler struct {
	// FloorWeight is carried for weighted collapse rules; the base rule
	// draws uniformly and ignores it.
	FloorWeight float64
}

/*
Next finds the uncollapsed cell with the fewest remaining patterns. Ties
go to the first such cell in row-major order, so the choice never depends
on the random source. ok is false once no cell has entropy above 1.
*/
func (s *Scheduler) Next(w *Wave) (x, y int, ok bool) {
	best := -1
	for i, d := range w.cells {
		e := d.Len()
		if e <= 1 {
			continue
		}
		if best < 0 || e < best {
			best = e
			x, y = i%w.width, i/w.width
			ok = true
			if e == 2 {
				break /* nothing smaller is possible */
			}
		}
	}
	return
}

// Choose draws one pattern ID uniformly from the domain of (x, y).
func (s *Scheduler) Choose(w *Wave, x, y int, r *rand.Rand) int {
	d := w.Domain(x, y)
	n := d.Len()
	if n == 0 {
		return -1
	}
	return d.Nth(r.IntN(n))
}
