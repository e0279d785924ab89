package tui

import (
	"math"
	"strings"

	"github.com/mattn/go-runewidth"
)

// One terminal cell covers CellWidth x CellHeight world units.
const (
	CellWidth  = 8.0
	CellHeight = 16.0
)

const (
	blankCell  = ' '
	filledCell = '█'
	// wideTail marks the cell occupied by the right half of a wide rune.
	wideTail = rune(0)
)

// Canvas is a rune grid implementing sim.Surface in world units.
type Canvas struct {
	cols  int
	rows  int
	cells [][]rune
}

// NewCanvas returns a blank canvas of cols x rows cells.
func NewCanvas(cols, rows int) *Canvas {
	c := &Canvas{}
	c.Resize(cols, rows)
	return c
}

// Resize reallocates the grid. Content is dropped.
func (c *Canvas) Resize(cols, rows int) {
	if cols < 0 {
		cols = 0
	}
	if rows < 0 {
		rows = 0
	}
	c.cols = cols
	c.rows = rows
	c.cells = make([][]rune, rows)
	for i := range c.cells {
		c.cells[i] = make([]rune, cols)
		for j := range c.cells[i] {
			c.cells[i][j] = blankCell
		}
	}
}

// Size returns the grid size in cells.
func (c *Canvas) Size() (cols, rows int) {
	return c.cols, c.rows
}

// WorldSize returns the grid size in world units.
func (c *Canvas) WorldSize() (width, height float64) {
	return float64(c.cols) * CellWidth, float64(c.rows) * CellHeight
}

func (c *Canvas) ClearRect(x, y, w, h float64) {
	c.fill(x, y, w, h, blankCell)
}

func (c *Canvas) FillRect(x, y, w, h float64) {
	c.fill(x, y, w, h, filledCell)
}

// DrawText writes text with its left edge at x on the row containing y.
// Runes outside the grid are clipped.
func (c *Canvas) DrawText(text string, x, y float64) {
	row := int(math.Floor(y / CellHeight))
	if row < 0 || row >= c.rows {
		return
	}
	col := int(math.Floor(x / CellWidth))
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if col >= c.cols {
			return
		}
		if col >= 0 && col+w <= c.cols {
			c.cells[row][col] = r
			if w == 2 {
				c.cells[row][col+1] = wideTail
			}
		}
		col += w
	}
}

func (c *Canvas) fill(x, y, w, h float64, ch rune) {
	col0, col1 := span(x, w, CellWidth, c.cols)
	row0, row1 := span(y, h, CellHeight, c.rows)
	for row := row0; row < row1; row++ {
		for col := col0; col < col1; col++ {
			c.cells[row][col] = ch
		}
	}
}

// span converts [start, start+size) to a clipped half-open cell range.
func span(start, size, cell float64, limit int) (int, int) {
	from := int(math.Floor(start / cell))
	to := int(math.Ceil((start + size) / cell))
	if from < 0 {
		from = 0
	}
	if to > limit {
		to = limit
	}
	if to < from {
		to = from
	}
	return from, to
}

// Lines returns each row with trailing blanks trimmed.
func (c *Canvas) Lines() []string {
	lines := make([]string, c.rows)
	var b strings.Builder
	for i, row := range c.cells {
		b.Reset()
		for _, r := range row {
			if r == wideTail {
				continue
			}
			b.WriteRune(r)
		}
		lines[i] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

// String renders the grid, padding every row to the full width.
func (c *Canvas) String() string {
	lines := c.Lines()
	for i, line := range lines {
		lines[i] = runewidth.FillRight(line, c.cols)
	}
	return strings.Join(lines, "\n")
}
