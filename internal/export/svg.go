// Package export renders sessions as standalone SVG documents.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/san-kum/focusdrift/internal/config"
	"github.com/san-kum/focusdrift/internal/session"
)

const (
	background = "#1a1a2e"
	bodyColor  = "#00ffff"
	alarmColor = "#ff0055"
	stripH     = 120.0
)

// FrameToSVG draws one frame the way the browser arena does: blur and
// saturation filters on the body, a dashed tether while the signal is lost,
// distraction boxes and particle sparks.
func FrameToSVG(w io.Writer, snap session.Snapshot) error {
	b := snap.Bounds
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<defs>
<filter id="stress"><feGaussianBlur stdDeviation="%.2f"/><feColorMatrix type="saturate" values="%.2f"/></filter>
</defs>
<rect width="100%%" height="100%%" fill="%s"/>
`, b.Width, b.Height, b.Width, b.Height, snap.Blur(), snap.Saturation()/100, background))

	if snap.Running {
		t := snap.Tether
		color := "#444466"
		if t.Locked {
			color = "#00ff88"
		}
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2" stroke-dasharray="%s"/>
`, t.From.X, t.From.Y, t.To.X, t.To.Y, color, t.Dash()))
	}

	for _, d := range snap.Distractions {
		fill := "#444466"
		if d.Sticky {
			fill = "#ff8800"
		}
		cx, cy := d.Center()
		sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
<text x="%.1f" y="%.1f" fill="#ffffff" font-family="monospace" font-size="12" text-anchor="middle">%s</text>
`, d.X, d.Y, d.Width, d.Height, fill, cx, cy+4, d.Text))
	}

	fill := bodyColor
	if snap.Alarm() {
		fill = alarmColor
	}
	sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="12" fill="%s" filter="url(#stress)"/>
`, snap.Body.X, snap.Body.Y, b.BodyWidth, b.BodyHeight, fill))

	for _, p := range snap.Particles {
		if !p.Alive(snap.Now) {
			continue
		}
		x, y := p.Position(snap.Now)
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="hsl(%.0f,100%%,60%%)"/>
`, x, y, 4*p.Scale(snap.Now), p.Hue))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

// RunToSVG traces the body centre over a recorded run and plots stress and
// focus in a strip underneath.
func RunToSVG(w io.Writer, samples []session.Sample, vp config.ViewportConfig) error {
	if len(samples) < 2 {
		return fmt.Errorf("export: need at least 2 samples, got %d", len(samples))
	}

	width, height := vp.Width, vp.Height+stripH
	half := vp.BodySize / 2

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
<rect width="%.0f" height="%.0f" fill="none" stroke="#444466"/>
`, width, height, width, height, background, vp.Width, vp.Height))

	trail := make([]point, len(samples))
	for i, s := range samples {
		trail[i] = point{s.X + half, s.Y + half}
	}
	writePath(&sb, trail, bodyColor)

	last := samples[len(samples)-1]
	sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" rx="12" fill="none" stroke="%s" stroke-width="2"/>
`, last.X, last.Y, vp.BodySize, vp.BodySize, bodyColor))

	stress := make([]point, len(samples))
	focus := make([]point, len(samples))
	span := float64(len(samples) - 1)
	for i, s := range samples {
		x := float64(i) / span * width
		stress[i] = point{x, vp.Height + stripH - s.Stress/100*stripH}
		focus[i] = point{x, vp.Height + stripH - s.Focus/100*stripH}
	}
	writePath(&sb, stress, alarmColor)
	writePath(&sb, focus, "#00ff88")

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

type point struct{ X, Y float64 }

func writePath(sb *strings.Builder, points []point, stroke string) {
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
	for i, p := range points {
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", p.X, p.Y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", p.X, p.Y))
		}
	}
	sb.WriteString("\"/>\n")
}
