package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/camera"
	"github.com/san-kum/dronesim/internal/physics"
)

type Edge struct {
	Start, End mgl64.Vec3
}

// Wireframe is a set of world-space edges.
type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe               { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e mgl64.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p mgl64.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Append(o *Wireframe)     { w.Edges = append(w.Edges, o.Edges...) }
func (w *Wireframe) Clear()                  { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 float64
	depth          float64
}

// Render3D projects the wireframe through view and draws it far to near.
// Edges with an endpoint off screen or behind the camera are dropped.
func Render3D(c *Canvas, w *Wireframe, cfg camera.Config, view camera.View) {
	if c == nil || w == nil {
		return
	}
	pw, ph := c.PixelSize()
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, ok1 := cfg.Project(view, e.Start, pw, ph)
		x2, y2, ok2 := cfg.Project(view, e.End, pw, ph)
		if !ok1 || !ok2 {
			continue
		}
		mid := e.Start.Add(e.End).Mul(0.5)
		proj = append(proj, projectedEdge{x1, y1, x2, y2, mid.Sub(view.Eye).Len()})
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth > proj[j].depth })
	for _, e := range proj {
		c.DrawLine(int(math.Round(e.x1)), int(math.Round(e.y1)), int(math.Round(e.x2)), int(math.Round(e.y2)))
	}
}

var boxEdges = [12][2]int{{0, 1}, {1, 3}, {3, 2}, {2, 0}, {4, 5}, {5, 7}, {7, 6}, {6, 4}, {0, 4}, {1, 5}, {2, 6}, {3, 7}}

// DroneWireframe is the body box at pose plus a forward tick.
func DroneWireframe(pose physics.Pose, half mgl64.Vec3) *Wireframe {
	w := NewWireframe()
	var v [8]mgl64.Vec3
	for i := range v {
		local := mgl64.Vec3{half.X(), half.Y(), half.Z()}
		if i&1 == 0 {
			local[0] = -local[0]
		}
		if i&2 == 0 {
			local[1] = -local[1]
		}
		if i&4 == 0 {
			local[2] = -local[2]
		}
		v[i] = pose.Position.Add(pose.ToWorld(local))
	}
	for _, e := range boxEdges {
		w.AddEdge(v[e[0]], v[e[1]])
	}
	nose := pose.Position.Add(pose.Forward().Mul(half.Z() * 2))
	w.AddEdge(pose.Position, nose)
	return w
}

// GroundGrid draws grid lines on y=0 around center, snapped to spacing so
// the grid does not slide with the drone. Lines are split into
// spacing-long edges so partly visible lines still render.
func GroundGrid(center mgl64.Vec3, spacing float64, lines int) *Wireframe {
	w := NewWireframe()
	ox := math.Round(center.X()/spacing) * spacing
	oz := math.Round(center.Z()/spacing) * spacing
	for i := -lines; i <= lines; i++ {
		a := float64(i) * spacing
		for j := -lines; j < lines; j++ {
			b0, b1 := float64(j)*spacing, float64(j+1)*spacing
			w.AddEdge(mgl64.Vec3{ox + a, 0, oz + b0}, mgl64.Vec3{ox + a, 0, oz + b1})
			w.AddEdge(mgl64.Vec3{ox + b0, 0, oz + a}, mgl64.Vec3{ox + b1, 0, oz + a})
		}
	}
	return w
}
