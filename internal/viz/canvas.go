package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Cell is one terminal character with its colors. A zero Cell is blank.
type Cell struct {
	Ch   rune
	Fg   lipgloss.Color
	Bg   lipgloss.Color
	Bold bool
}

func (c Cell) blank() bool { return c.Ch == 0 && c.Bg == "" }

func (c Cell) sameStyle(o Cell) bool {
	return c.Fg == o.Fg && c.Bg == o.Bg && c.Bold == o.Bold
}

// Canvas is a grid of styled cells, drawn back to front.
type Canvas struct {
	Width, Height int
	Grid          [][]Cell
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]Cell, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]Cell, w)
	}
	return c
}

// Set writes a cell; out of range coordinates are ignored.
func (c *Canvas) Set(x, y int, cell Cell) {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return
	}
	c.Grid[y][x] = cell
}

func (c *Canvas) At(x, y int) Cell {
	if x < 0 || y < 0 || x >= c.Width || y >= c.Height {
		return Cell{}
	}
	return c.Grid[y][x]
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		clear(c.Grid[i])
	}
}

// Fill paints the rectangle [x0,x1]x[y0,y1].
func (c *Canvas) Fill(x0, y0, x1, y1 int, cell Cell) {
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c.Set(x, y, cell)
		}
	}
}

// Text writes s starting at (x, y), keeping the background already there.
func (c *Canvas) Text(x, y int, s string, fg lipgloss.Color) {
	for _, r := range s {
		bg := c.At(x, y).Bg
		c.Set(x, y, Cell{Ch: r, Fg: fg, Bg: bg, Bold: true})
		x++
	}
}

// DrawLine draws a line using Bresenham's algorithm. A positive dash
// alternates dash cells drawn with dash cells skipped.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, cell Cell, dash int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for i := 0; ; i++ {
		if dash <= 0 || (i/dash)%2 == 0 {
			c.Set(x0, y0, cell)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String renders the grid, one lipgloss style per run of equal cells.
func (c *Canvas) String() string {
	var b strings.Builder
	for y, row := range c.Grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		for x := 0; x < len(row); {
			start := row[x]
			var run strings.Builder
			for x < len(row) && row[x].sameStyle(start) && row[x].blank() == start.blank() {
				ch := row[x].Ch
				if ch == 0 {
					ch = ' '
				}
				run.WriteRune(ch)
				x++
			}
			if start.blank() {
				b.WriteString(run.String())
				continue
			}
			style := lipgloss.NewStyle().Bold(start.Bold)
			if start.Fg != "" {
				style = style.Foreground(start.Fg)
			}
			if start.Bg != "" {
				style = style.Background(start.Bg)
			}
			b.WriteString(style.Render(run.String()))
		}
	}
	return b.String()
}

// Plain returns the characters without styling.
func (c *Canvas) Plain() string {
	var b strings.Builder
	for y, row := range c.Grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, cell := range row {
			if cell.Ch == 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteRune(cell.Ch)
		}
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
