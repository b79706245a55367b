package viz

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/focusdrift/internal/session"
)

// blurRunes fill the body from sharp to smeared as the blur radius grows.
var blurRunes = []rune{'█', '▓', '▒', '░'}

// Arena maps the game viewport onto a grid of terminal cells.
type Arena struct {
	Cols, Rows    int
	Width, Height float64
}

// ToCell returns the cell that holds viewport point (x, y).
func (a Arena) ToCell(x, y float64) (int, int) {
	if a.Width <= 0 || a.Height <= 0 {
		return 0, 0
	}
	return int(x * float64(a.Cols) / a.Width), int(y * float64(a.Rows) / a.Height)
}

// ToViewport returns the viewport point at the centre of a cell.
func (a Arena) ToViewport(col, row int) (float64, float64) {
	if a.Cols <= 0 || a.Rows <= 0 {
		return 0, 0
	}
	return (float64(col) + 0.5) * a.Width / float64(a.Cols),
		(float64(row) + 0.5) * a.Height / float64(a.Rows)
}

// span converts a viewport rectangle to an inclusive cell range that is at
// least one cell wide and tall.
func (a Arena) span(x, y, w, h float64) (x0, y0, x1, y1 int) {
	x0, y0 = a.ToCell(x, y)
	x1, y1 = a.ToCell(x+w, y+h)
	x1, y1 = max(x0, x1-1), max(y0, y1-1)
	return
}

// Draw paints one frame: glitch noise, tether, distractions, body, then
// particles on top.
func (a Arena) Draw(c *Canvas, snap session.Snapshot, theme Theme) {
	c.Clear()
	sat := snap.Saturation()

	if snap.Glitch() {
		a.drawGlitch(c, snap.Ticks, Desaturate(theme.Error, sat))
	}

	bounds := snap.Bounds
	if snap.Running {
		px, py := a.ToCell(snap.Tether.From.X, snap.Tether.From.Y)
		bx, by := a.ToCell(snap.Tether.To.X, snap.Tether.To.Y)
		if snap.Tether.Locked {
			c.DrawLine(px, py, bx, by, Cell{Ch: '•', Fg: theme.Success}, 0)
		} else {
			c.DrawLine(px, py, bx, by, Cell{Ch: '·', Fg: theme.Muted}, 1)
		}
	}

	bg := Desaturate(theme.Muted, sat)
	for _, d := range snap.Distractions {
		x0, y0, x1, y1 := a.span(d.X, d.Y, d.Width, d.Height)
		c.Fill(x0, y0, x1, y1, Cell{Bg: bg})

		fg := theme.Accent
		if d.Sticky {
			fg = theme.Warning
		}
		label := []rune(d.Text)
		if w := x1 - x0 + 1; len(label) > w {
			label = label[:w]
		}
		mid := x0 + (x1-x0+1-len(label))/2
		c.Text(mid, (y0+y1)/2, string(label), Desaturate(fg, sat))
	}

	if snap.Running || snap.Ended {
		body := theme.Primary
		if snap.Alarm() {
			body = theme.Error
		}
		idx := min(int(snap.Blur()/2), len(blurRunes)-1)
		x0, y0, x1, y1 := a.span(snap.Body.X, snap.Body.Y, bounds.BodyWidth, bounds.BodyHeight)
		c.Fill(x0, y0, x1, y1, Cell{Ch: blurRunes[idx], Fg: Desaturate(body, sat)})
	}

	for _, p := range snap.Particles {
		if !p.Alive(snap.Now) {
			continue
		}
		x, y := p.Position(snap.Now)
		col, row := a.ToCell(x, y)
		ch := '·'
		if p.Scale(snap.Now) > 0.5 {
			ch = '*'
		}
		c.Set(col, row, Cell{Ch: ch, Fg: HueColor(p.Hue), Bg: c.At(col, row).Bg})
	}
}

// drawGlitch scatters noise that changes every tick.
func (a Arena) drawGlitch(c *Canvas, tick int, fg lipgloss.Color) {
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			h := uint32(col)*73856093 ^ uint32(row)*19349663 ^ uint32(tick)*83492791
			if h%23 == 0 {
				c.Set(col, row, Cell{Ch: '▒', Fg: fg})
			}
		}
	}
}
