package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/sim"
)

func frames(n int) []sim.Frame {
	out := make([]sim.Frame, n)
	for i := range out {
		t := float64(i) * 0.1
		out[i] = sim.Frame{
			Tick:           i + 1,
			T:              t,
			Position:       mgl64.Vec3{t, 5 - t, -2 * t},
			Orientation:    mgl64.QuatIdent(),
			LinearVelocity: mgl64.Vec3{1, -1, -2},
		}
		out[i].Channels.Normalized.Throttle = 0.5
	}
	return out
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, frames(3)); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "t,x,y,z,qw") {
		t.Errorf("unexpected header %q", lines[0])
	}

	ys, err := ReadCSVSeries(strings.NewReader(buf.String()), "y")
	if err != nil {
		t.Fatalf("ReadCSVSeries() error = %v", err)
	}
	want := []float64{5, 4.9, 4.8}
	for i := range want {
		if diff := ys[i] - want[i]; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("y[%d] = %v, want %v", i, ys[i], want[i])
		}
	}

	if _, err := ReadCSVSeries(strings.NewReader(buf.String()), "altitude"); err == nil {
		t.Error("expected error for missing column")
	}
}

func TestWriteJSON(t *testing.T) {
	res := &sim.Result{
		Frames:   frames(2),
		Metrics:  map[string]float64{"max_altitude": 5},
		Stats:    sim.Stats{Steps: 2},
		Ticks:    2,
		Duration: 0.2,
	}
	var buf bytes.Buffer
	if err := WriteJSON(&buf, NewReport("drop", sim.DefaultRunConfig(), res)); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got["scenario"] != "drop" || got["ticks"] != float64(2) {
		t.Errorf("unexpected report header: %v", got)
	}
	if fs, ok := got["frames"].([]any); !ok || len(fs) != 2 {
		t.Errorf("expected 2 frames, got %v", got["frames"])
	}
}

func TestSeries(t *testing.T) {
	s, err := Series(frames(4), "throttle")
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range s {
		if v != 0.5 {
			t.Errorf("throttle = %v, want 0.5", v)
		}
	}
	if _, err := Series(frames(1), "nope"); err == nil {
		t.Error("expected unknown field error")
	}
}

func TestPlot(t *testing.T) {
	var buf bytes.Buffer
	if err := Plot(&buf, frames(20), "y", PlotOptions{Width: 40, Height: 5}); err != nil {
		t.Fatalf("Plot() error = %v", err)
	}
	if !strings.Contains(buf.String(), "y") {
		t.Error("plot should carry the field caption")
	}
	if err := PlotSeries(&buf, nil, "empty", PlotOptions{}); err == nil {
		t.Error("expected error for empty series")
	}
}

func TestTrajectorySVG(t *testing.T) {
	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, frames(5), 200, 100, "#ff0000"); err != nil {
		t.Fatalf("TrajectorySVG() error = %v", err)
	}
	svg := buf.String()
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete svg document")
	}
	if strings.Count(svg, " L") != 4 {
		t.Errorf("expected 4 line segments, got %d", strings.Count(svg, " L"))
	}

	if err := TrajectorySVG(&buf, frames(1), 200, 100, "#ff0000"); err == nil {
		t.Error("expected error for a single frame")
	}
}

func TestBrailleSVG(t *testing.T) {
	grid := [][]rune{{0x2800 | 0x01 | 0x80, ' '}, {0x2800}}
	var buf bytes.Buffer
	if err := BrailleSVG(&buf, grid, 2, "#00ff88"); err != nil {
		t.Fatalf("BrailleSVG() error = %v", err)
	}
	svg := buf.String()
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("expected 2 dots, got %d", n)
	}
	// top-left dot and bottom-right dot of the first cell
	for _, want := range []string{`cx="1.0" cy="1.0"`, `cx="3.0" cy="7.0"`} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing dot %s", want)
		}
	}
	if !strings.Contains(svg, `width="8" height="16"`) {
		t.Errorf("unexpected svg size in %q", svg[:120])
	}

	if err := BrailleSVG(&buf, nil, 1, "#fff"); err == nil {
		t.Error("empty grid should fail")
	}
	if err := BrailleSVG(&buf, grid, 0, "#fff"); err == nil {
		t.Error("zero scale should fail")
	}
}
