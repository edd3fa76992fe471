package wfc

import "github.com/vancomm/wfc-server/internal/grid"

/*
Materialize writes the wave into out, which must have the wave's size.
A collapsed cell takes the centre cell of its pattern; a cell that is
still open or was emptied by a contradiction is left as [grid.Wall].
*/
func Materialize(w *Wave, c *Catalog, out *grid.Grid) {
	if out.Width != w.width || out.Height != w.height {
		panic(AssertionError{"output grid does not match the wave size"})
	}
	for y := range w.height {
		for x := range w.width {
			d := w.cells[y*w.width+x]
			if d.Len() == 1 {
				out.Set(x, y, c.Pattern(d.First()).Center())
			} else {
				out.Set(x, y, grid.Wall)
			}
		}
	}
}
