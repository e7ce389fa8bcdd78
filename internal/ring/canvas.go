package ring

import (
	"math"
	"strings"
	"sync"
)

// CellAspect is how many surface units tall one canvas cell is relative to
// its width. Terminal cells are roughly twice as tall as they are wide.
const CellAspect = 2.0

// Cell is one rasterized canvas position.
type Cell struct {
	Lit   bool
	Color string
	Alpha float64
}

// Canvas is a coarse raster Surface. Drawing happens on the overlay loop;
// Snapshot may be called from any goroutine.
type Canvas struct {
	mu    sync.Mutex
	cols  int
	rows  int
	cells []Cell
	dirty chan struct{}
}

// NewCanvas creates a cols x rows canvas.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{dirty: make(chan struct{}, 1)}
	c.Resize(cols, rows)
	return c
}

// Resize reallocates the raster and clears it.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c.mu.Lock()
	c.cols, c.rows = cols, rows
	c.cells = make([]Cell, cols*rows)
	c.mu.Unlock()
}

// Bounds is the canvas extent in surface units.
func (c *Canvas) Bounds() Rect {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Rect{Right: float64(c.cols), Bottom: float64(c.rows) * CellAspect}
}

func (c *Canvas) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.cells {
		c.cells[i] = Cell{}
	}
}

func (c *Canvas) DrawArc(oval Rect, startDeg, sweepDeg float64, p Paint) {
	if oval.Empty() || sweepDeg == 0 || p.Alpha <= 0 {
		return
	}
	center := oval.Center()
	rx, ry := oval.Width()/2, oval.Height()/2
	circumference := 2 * math.Pi * math.Max(rx, ry) * math.Abs(sweepDeg) / 360
	steps := int(math.Ceil(circumference * 2))
	if steps < 16 {
		steps = 16
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for _, off := range strokeOffsets(p.StrokeWidth) {
		for i := 0; i <= steps; i++ {
			deg := startDeg + sweepDeg*float64(i)/float64(steps)
			rad := deg * math.Pi / 180
			x := center.X + (rx+off)*math.Cos(rad)
			y := center.Y + (ry+off)*math.Sin(rad)
			c.plot(x, y, p)
		}
	}
}

func (c *Canvas) DrawPath(path Path, p Paint) {
	if len(path) < 2 || p.Alpha <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		length := math.Hypot(b.X-a.X, b.Y-a.Y)
		steps := int(math.Ceil(length * 2))
		if steps < 1 {
			steps = 1
		}
		for s := 0; s <= steps; s++ {
			t := float64(s) / float64(steps)
			c.plot(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t, p)
		}
	}
}

// Invalidate signals the host without blocking; repeated calls coalesce.
func (c *Canvas) Invalidate() {
	select {
	case c.dirty <- struct{}{}:
	default:
	}
}

// Dirty delivers a value whenever a redraw was requested.
func (c *Canvas) Dirty() <-chan struct{} {
	return c.dirty
}

// Snapshot copies the raster row by row.
func (c *Canvas) Snapshot() [][]Cell {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]Cell, c.rows)
	for r := 0; r < c.rows; r++ {
		row := make([]Cell, c.cols)
		copy(row, c.cells[r*c.cols:(r+1)*c.cols])
		out[r] = row
	}
	return out
}

// String renders lit cells as '#' and the rest as spaces. Used by tests and
// the headless dump.
func (c *Canvas) String() string {
	var b strings.Builder
	for i, row := range c.Snapshot() {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, cell := range row {
			if cell.Lit {
				b.WriteByte('#')
			} else {
				b.WriteByte(' ')
			}
		}
	}
	return b.String()
}

// LitCount returns how many cells are lit.
func (c *Canvas) LitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, cell := range c.cells {
		if cell.Lit {
			n++
		}
	}
	return n
}

// plot must be called with mu held.
func (c *Canvas) plot(x, y float64, p Paint) {
	col := int(math.Floor(x))
	row := int(math.Floor(y / CellAspect))
	if col < 0 || row < 0 || col >= c.cols || row >= c.rows {
		return
	}
	cell := &c.cells[row*c.cols+col]
	// Later draws win unless they are fainter than what is already there
	if cell.Lit && cell.Alpha > p.Alpha {
		return
	}
	*cell = Cell{Lit: true, Color: p.Color, Alpha: p.Alpha}
}

func strokeOffsets(width float64) []float64 {
	if width <= 1 {
		return []float64{0}
	}
	var offs []float64
	for o := -width / 2; o <= width/2+1e-9; o += 0.5 {
		offs = append(offs, o)
	}
	return offs
}
