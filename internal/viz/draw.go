package viz

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/camera"
)

func (m *Model) draw() {
	m.canvas.Clear()
	if m.view == CameraView {
		m.drawCamera()
		return
	}
	m.drawSide()
}

// drawSide is an orthographic view looking along -Z: world X to the right,
// world Y up. The view follows the drone horizontally and scrolls up once
// it climbs past the top third.
func (m *Model) drawSide() {
	pw, ph := m.canvas.PixelSize()
	pos := m.frame.Position
	groundY := ph - 2

	top := float64(groundY) / sideScale
	floor := math.Max(0, pos.Y()-top*0.66)
	toScreen := func(p mgl64.Vec3) (int, int) {
		x := float64(pw)/2 + (p.X()-pos.X())*sideScale
		y := float64(groundY) - (p.Y()-floor)*sideScale
		return int(math.Round(x)), int(math.Round(y))
	}

	if floor == 0 {
		m.canvas.DrawLine(0, groundY, pw-1, groundY)
		// ground ticks every 5 m so horizontal motion is visible
		for gx := math.Ceil((pos.X()-float64(pw)/2/sideScale)/5) * 5; ; gx += 5 {
			x, _ := toScreen(mgl64.Vec3{gx, 0, 0})
			if x >= pw {
				break
			}
			m.canvas.Set(x, groundY+1)
		}
	}

	for _, p := range m.trail {
		m.canvas.Set(toScreen(p))
	}

	pose := m.frame.Pose()
	half := m.loop.Simulation().HalfExtents()
	right := pose.Right().Mul(half.X() * 2)
	up := pose.Up().Mul(half.X() * 0.5)
	cx, cy := toScreen(pos)
	lx, ly := toScreen(pos.Sub(right))
	rx, ry := toScreen(pos.Add(right))
	m.canvas.DrawLine(lx, ly, rx, ry)
	for _, end := range []mgl64.Vec3{pos.Sub(right), pos.Add(right)} {
		ax, ay := toScreen(end)
		tx, ty := toScreen(end.Add(up))
		m.canvas.DrawLine(ax, ay, tx, ty)
		m.canvas.DrawLine(tx-3, ty, tx+3, ty)
	}
	m.canvas.DrawBlob(cx, cy, 1)
}

// drawCamera renders the chase or FPV perspective.
func (m *Model) drawCamera() {
	pose := m.frame.Pose()
	view := m.opts.Camera.View(m.camMode, pose)

	scene := GroundGrid(pose.Position, 5, 8)
	if m.camMode != camera.FPV {
		scene.Append(DroneWireframe(pose, m.loop.Simulation().HalfExtents()))
	}
	for _, p := range m.trail {
		scene.AddPoint(p)
	}
	Render3D(m.canvas, scene, m.opts.Camera, view)
}
