package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/sim"
)

// Profile draws the side view of a recorded flight (world X to the right,
// altitude up) on a cols x rows canvas. Both axes share one scale, the
// ground spans the full width and the last position is marked with a blob.
func Profile(frames []sim.Frame, cols, rows int) *Canvas {
	c := NewCanvas(cols, rows)
	if len(frames) == 0 {
		return c
	}
	pw, ph := c.PixelSize()

	first := frames[0].Position
	minX, maxX := first.X(), first.X()
	minY, maxY := math.Min(0, first.Y()), first.Y()
	for _, f := range frames {
		minX, maxX = math.Min(minX, f.Position.X()), math.Max(maxX, f.Position.X())
		minY, maxY = math.Min(minY, f.Position.Y()), math.Max(maxY, f.Position.Y())
	}
	scale := math.Min(float64(pw-1)/math.Max(maxX-minX, 1), float64(ph-1)/math.Max(maxY-minY, 1))
	toPixel := func(p mgl64.Vec3) (int, int) {
		return int(math.Round((p.X() - minX) * scale)), ph - 1 - int(math.Round((p.Y()-minY)*scale))
	}

	_, groundY := toPixel(mgl64.Vec3{minX, 0, 0})
	c.DrawLine(0, groundY, pw-1, groundY)

	px, py := toPixel(first)
	for _, f := range frames[1:] {
		x, y := toPixel(f.Position)
		c.DrawLine(px, py, x, y)
		px, py = x, y
	}
	c.DrawBlob(px, py, 1)
	return c
}
