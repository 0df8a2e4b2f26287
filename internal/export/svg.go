// Package export writes scenes and traces as SVG.
package export

import (
	"fmt"
	"html"
	"strings"

	"github.com/san-kum/mindwave/internal/analysis"
	"github.com/san-kum/mindwave/internal/dynamo"
)

const background = "#f0fdfa"

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// SceneToSVG replays a frame's display list in scene order.
func SceneToSVG(s *dynamo.Scene) string {
	if s == nil {
		return ""
	}
	var sb strings.Builder
	header(&sb, s.Size.Width, s.Size.Height)

	for _, l := range s.Lines {
		width := l.Width
		if width <= 0 {
			width = 1
		}
		fmt.Fprintf(&sb, `<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="%.1f" stroke-opacity="%.3f"/>
`, l.From.X, l.From.Y, l.To.X, l.To.Y, l.Color, width, l.Alpha)
	}

	for _, p := range s.Polylines {
		if len(p.Points) < 2 {
			continue
		}
		width := p.Width
		if width <= 0 {
			width = 1
		}
		fmt.Fprintf(&sb, `<polyline fill="none" stroke="%s" stroke-width="%.1f" points="`, p.Color, width)
		for i, pt := range p.Points {
			if i > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%.1f,%.1f", pt.X, pt.Y)
		}
		sb.WriteString("\"/>\n")
	}

	for _, c := range s.Circles {
		fill := "none"
		if c.Filled {
			fill = string(c.Color)
		}
		fmt.Fprintf(&sb, `<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s"/>
`, c.Center.X, c.Center.Y, c.Radius, fill, c.Color)
	}

	for _, t := range s.Texts {
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="%s" font-family="sans-serif" font-size="14" text-anchor="middle">%s</text>
`, t.At.X, t.At.Y, t.Color, html.EscapeString(t.Content))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrajectoryToSVG scales points into a width x height plot with 10%
// padding on every side.
func TrajectoryToSVG(points []analysis.Point, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = min(minX, p.X)
		maxX = max(maxX, p.X)
		minY = min(minY, p.Y)
		maxY = max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	rangeX *= 1.2
	rangeY *= 1.2

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor)

	for i, p := range points {
		x := (p.X - minX) / rangeX * float64(width)
		y := float64(height) - (p.Y-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}

	sb.WriteString("\"/>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots values against their sample index.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	points := make([]analysis.Point, len(values))
	for i, v := range values {
		points[i] = analysis.Point{X: float64(i), Y: v}
	}
	return TrajectoryToSVG(points, width, height, strokeColor)
}
