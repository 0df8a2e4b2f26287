package viz

import (
	"math"
	"strings"

	"github.com/san-kum/mindwave/internal/dynamo"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800 // Empty braille char
		}
	}
	return c
}

// PixelSize is the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) {
	return c.Width * 2, c.Height * 4
}

// Set sets a pixel at (x, y) where x,y are in "sub-pixel" coordinates.
// The canvas size in sub-pixels is (Width*2) x (Height*4).
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}

	col := x / 2
	row := y / 4
	if col >= c.Width || row >= c.Height {
		return
	}

	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
}

func (c *Canvas) IsSet(x, y int) bool {
	if x < 0 || y < 0 {
		return false
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return false
	}
	return c.Grid[row][col]&rune(pixelMap[y%4][x%2]) != 0
}

// Clear resets the canvas
func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = 0x2800
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	c.DrawLineAlpha(x0, y0, x1, y1, 1)
}

// DrawLineAlpha draws a Bresenham line where roughly alpha of the pixels
// are lit. Faint links come out dotted.
func (c *Canvas) DrawLineAlpha(x0, y0, x1, y1 int, alpha float64) {
	if alpha <= 0 {
		return
	}
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
	acc := 1.0

	for {
		if acc >= 1 {
			c.Set(x0, y0)
			acc -= 1
		}
		acc += alpha
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

// FillEllipse lights every pixel inside the ellipse centered at (cx, cy).
// A radius below one still lights the center.
func (c *Canvas) FillEllipse(cx, cy int, rx, ry float64) {
	c.Set(cx, cy)
	if rx < 1 && ry < 1 {
		return
	}
	rx, ry = math.Max(rx, 0.5), math.Max(ry, 0.5)
	ix, iy := int(math.Ceil(rx)), int(math.Ceil(ry))
	for y := -iy; y <= iy; y++ {
		for x := -ix; x <= ix; x++ {
			nx, ny := float64(x)/rx, float64(y)/ry
			if nx*nx+ny*ny <= 1 {
				c.Set(cx+x, cy+y)
			}
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Rasterize clears the canvas and draws the scene scaled from its logical
// size onto the sub-pixel grid. Text is left to the caller.
func (c *Canvas) Rasterize(s *dynamo.Scene) {
	c.Clear()
	if s.Size.Width <= 0 || s.Size.Height <= 0 {
		return
	}
	pw, ph := c.PixelSize()
	sx, sy := float64(pw)/s.Size.Width, float64(ph)/s.Size.Height
	px := func(p dynamo.Point) (int, int) {
		return int(math.Round(p.X * sx)), int(math.Round(p.Y * sy))
	}

	for _, l := range s.Lines {
		x0, y0 := px(l.From)
		x1, y1 := px(l.To)
		c.DrawLineAlpha(x0, y0, x1, y1, l.Alpha)
	}
	for _, pl := range s.Polylines {
		for i := 1; i < len(pl.Points); i++ {
			x0, y0 := px(pl.Points[i-1])
			x1, y1 := px(pl.Points[i])
			c.DrawLine(x0, y0, x1, y1)
		}
	}
	for _, ci := range s.Circles {
		x, y := px(ci.Center)
		if ci.Filled {
			c.FillEllipse(x, y, ci.Radius*sx, ci.Radius*sy)
		} else {
			c.Set(x, y)
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
