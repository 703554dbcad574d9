package config

import (
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Model is a drone mesh. The simulation only uses its extent: the body is
// the scaled bounding box of the vertices.
type Model struct {
	Name     string       `yaml:"name"`
	Scale    float64      `yaml:"scale"`
	Vertices []mgl64.Vec3 `yaml:"vertices"`
}

func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m := &Model{Scale: 1}
	if err := yaml.Unmarshal(data, m); err != nil {
		return nil, fmt.Errorf("parse model %s: %w", path, err)
	}
	return m, nil
}

// HalfExtents returns half the bounding box size. Every axis must have a
// positive extent.
func (m *Model) HalfExtents() (mgl64.Vec3, error) {
	if len(m.Vertices) < 2 {
		return mgl64.Vec3{}, fmt.Errorf("model %q: %w: need at least 2 vertices", m.Name, dynamo.ErrParameterBounds)
	}
	if !dynamo.Finite(m.Scale) || m.Scale <= 0 {
		return mgl64.Vec3{}, fmt.Errorf("model %q: %w", m.Name, dynamo.ParamError("scale", m.Scale))
	}
	lo, hi := m.Vertices[0], m.Vertices[0]
	for _, v := range m.Vertices {
		if !dynamo.FiniteVec(v) {
			return mgl64.Vec3{}, fmt.Errorf("model %q: %w: non-finite vertex", m.Name, dynamo.ErrInvalidState)
		}
		for i := 0; i < 3; i++ {
			lo[i], hi[i] = math.Min(lo[i], v[i]), math.Max(hi[i], v[i])
		}
	}
	half := hi.Sub(lo).Mul(0.5 * m.Scale)
	if half.X() <= 0 || half.Y() <= 0 || half.Z() <= 0 {
		return mgl64.Vec3{}, fmt.Errorf("model %q: %w: flat bounding box %v", m.Name, dynamo.ErrParameterBounds, half)
	}
	return half, nil
}

// ModelLoader is the asset collaborator that supplies the drone body. With
// no Path the configured Body is used unchanged.
type ModelLoader struct {
	Path string
	Body sim.BodySpec
}

func (l ModelLoader) Spec() (sim.BodySpec, error) {
	spec := l.Body
	if l.Path == "" {
		return spec, nil
	}
	m, err := LoadModel(l.Path)
	if err != nil {
		return sim.BodySpec{}, err
	}
	if spec.HalfExtents, err = m.HalfExtents(); err != nil {
		return sim.BodySpec{}, err
	}
	return spec, nil
}

// Resolve loads the body and publishes it on ready. A failed load leaves
// ready unresolved.
func (l ModelLoader) Resolve(ready *sim.Readiness) error {
	spec, err := l.Spec()
	if err != nil {
		return err
	}
	ready.Resolve(spec)
	return nil
}
