// Package camera derives chase and first-person camera views and the
// compass heading from the drone pose. It only reads poses.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/physics"
)

type Mode int

const (
	Chase Mode = iota
	FPV
)

func (m Mode) String() string {
	if m == FPV {
		return "fpv"
	}
	return "chase"
}

// Next cycles chase -> fpv -> chase.
func (m Mode) Next() Mode {
	if m == Chase {
		return FPV
	}
	return Chase
}

type Config struct {
	ChaseOffset mgl64.Vec3 `yaml:"chase_offset"`
	FPVOffset   mgl64.Vec3 `yaml:"fpv_offset"`
	FOV         float64    `yaml:"fov"` // vertical, degrees
	Near        float64    `yaml:"near"`
	Far         float64    `yaml:"far"`
}

func DefaultConfig() Config {
	return Config{
		ChaseOffset: mgl64.Vec3{0, 5, -10},
		FPVOffset:   mgl64.Vec3{0, 0.5, 0.5},
		FOV:         75,
		Near:        0.1,
		Far:         1000,
	}
}

// View is a camera placement in world space.
type View struct {
	Eye    mgl64.Vec3
	Target mgl64.Vec3
	Up     mgl64.Vec3
}

// Chase places the camera behind and above the drone, rotated with it,
// looking at the drone.
func (c Config) Chase(p physics.Pose) View {
	return View{
		Eye:    p.Position.Add(p.Orientation.Rotate(c.ChaseOffset)),
		Target: p.Position,
		Up:     physics.AxisUp,
	}
}

// FPV places the camera on the drone looking along its forward axis.
func (c Config) FPV(p physics.Pose) View {
	eye := p.Position.Add(p.Orientation.Rotate(c.FPVOffset))
	return View{
		Eye:    eye,
		Target: eye.Add(p.Forward()),
		Up:     p.Up(),
	}
}

func (c Config) View(m Mode, p physics.Pose) View {
	if m == FPV {
		return c.FPV(p)
	}
	return c.Chase(p)
}

func (v View) Matrix() mgl64.Mat4 {
	return mgl64.LookAtV(v.Eye, v.Target, v.Up)
}

func (c Config) Projection(aspect float64) mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// Project maps a world point onto a width x height viewport. The second
// result is false for points behind the camera or outside the viewport.
func (c Config) Project(v View, point mgl64.Vec3, width, height int) (x, y float64, ok bool) {
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	view := v.Matrix()
	if view.Mul4x1(point.Vec4(1)).Z() >= 0 {
		return 0, 0, false
	}
	proj := c.Projection(float64(width) / float64(height))
	win := mgl64.Project(point, view, proj, 0, 0, width, height)
	// window origin is bottom-left
	x, y = win.X(), float64(height)-win.Y()
	if x < 0 || y < 0 || x >= float64(width) || y >= float64(height) {
		return x, y, false
	}
	return x, y, true
}

// Heading returns the compass heading of the body forward axis in degrees,
// in [0, 360). 0 points along +Z, 90 along +X.
func Heading(q mgl64.Quat) float64 {
	f := q.Rotate(physics.AxisForward)
	if math.Hypot(f.X(), f.Z()) < 1e-9 {
		return 0
	}
	deg := mgl64.RadToDeg(math.Atan2(f.X(), f.Z()))
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg -= 360
	}
	return deg
}

var points = []string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}

// Cardinal returns the nearest of the eight compass points.
func Cardinal(deg float64) string {
	i := int(math.Floor(math.Mod(deg+22.5, 360)/45)) % len(points)
	if i < 0 {
		i += len(points)
	}
	return points[i]
}
