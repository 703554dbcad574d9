package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/dronesim/internal/sim"
)

// Column is one named scalar extracted from a frame.
type Column struct {
	Name  string
	Value func(f sim.Frame) float64
}

// Columns is the CSV layout and the set of plottable fields.
var Columns = []Column{
	{"t", func(f sim.Frame) float64 { return f.T }},
	{"x", func(f sim.Frame) float64 { return f.Position.X() }},
	{"y", func(f sim.Frame) float64 { return f.Position.Y() }},
	{"z", func(f sim.Frame) float64 { return f.Position.Z() }},
	{"qw", func(f sim.Frame) float64 { return f.Orientation.W }},
	{"qx", func(f sim.Frame) float64 { return f.Orientation.X() }},
	{"qy", func(f sim.Frame) float64 { return f.Orientation.Y() }},
	{"qz", func(f sim.Frame) float64 { return f.Orientation.Z() }},
	{"vx", func(f sim.Frame) float64 { return f.LinearVelocity.X() }},
	{"vy", func(f sim.Frame) float64 { return f.LinearVelocity.Y() }},
	{"vz", func(f sim.Frame) float64 { return f.LinearVelocity.Z() }},
	{"wx", func(f sim.Frame) float64 { return f.AngularVelocity.X() }},
	{"wy", func(f sim.Frame) float64 { return f.AngularVelocity.Y() }},
	{"wz", func(f sim.Frame) float64 { return f.AngularVelocity.Z() }},
	{"roll", func(f sim.Frame) float64 { return f.Channels.Normalized.Roll }},
	{"pitch", func(f sim.Frame) float64 { return f.Channels.Normalized.Pitch }},
	{"yaw", func(f sim.Frame) float64 { return f.Channels.Normalized.Yaw }},
	{"throttle", func(f sim.Frame) float64 { return f.Channels.Normalized.Throttle }},
	{"speed", func(f sim.Frame) float64 { return f.LinearVelocity.Len() }},
	{"energy", func(f sim.Frame) float64 { return f.Energy }},
}

func LookupColumn(name string) (Column, error) {
	for _, c := range Columns {
		if c.Name == name {
			return c, nil
		}
	}
	return Column{}, fmt.Errorf("unknown field %q (have %s)", name, strings.Join(ColumnNames(), ", "))
}

func ColumnNames() []string {
	names := make([]string, len(Columns))
	for i, c := range Columns {
		names[i] = c.Name
	}
	return names
}

// Series extracts one column from every frame.
func Series(frames []sim.Frame, name string) ([]float64, error) {
	col, err := LookupColumn(name)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = col.Value(f)
	}
	return out, nil
}
