package viz

import (
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/sim"
)

func TestCanvasSet(t *testing.T) {
	c := NewCanvas(4, 2)
	c.Set(0, 0)
	c.Set(3, 7)
	c.Set(-1, 0)
	c.Set(100, 100)

	if c.Grid[0][0] != 0x2801 {
		t.Errorf("expected dot 1 at origin, got %U", c.Grid[0][0])
	}
	if c.Grid[1][1] != 0x2880 {
		t.Errorf("expected dot 8 in cell (1,1), got %U", c.Grid[1][1])
	}
	if !c.IsSet(3, 7) || c.IsSet(1, 1) {
		t.Error("IsSet disagrees with Set")
	}

	c.Clear()
	if c.IsSet(0, 0) {
		t.Error("Clear left pixels set")
	}
}

func TestCanvasDrawLine(t *testing.T) {
	c := NewCanvas(10, 2)
	c.DrawLine(0, 3, 19, 3)
	for x := 0; x < 20; x++ {
		if !c.IsSet(x, 3) {
			t.Fatalf("pixel %d not set on horizontal line", x)
		}
	}

	c.Clear()
	c.DrawLine(-10, -10, 5, 5)
	if !c.IsSet(5, 5) || !c.IsSet(0, 0) {
		t.Error("clipped diagonal should still draw its on-canvas part")
	}
}

func TestCanvasResizeAndString(t *testing.T) {
	c := NewCanvas(3, 2)
	c.Resize(5, 3)
	w, h := c.PixelSize()
	if w != 10 || h != 12 {
		t.Errorf("pixel size = %dx%d, want 10x12", w, h)
	}
	lines := strings.Split(c.String(), "\n")
	if len(lines) != 3 || len([]rune(lines[0])) != 5 {
		t.Errorf("unexpected string layout %q", c.String())
	}
}

func TestProfile(t *testing.T) {
	frames := []sim.Frame{
		{Position: mgl64.Vec3{0, 10, 0}},
		{Position: mgl64.Vec3{5, 5, 0}},
		{Position: mgl64.Vec3{10, 0, 0}},
	}
	c := Profile(frames, 10, 5)
	cases := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},   // start, top left
		{10, 9, true},  // midpoint
		{19, 19, true}, // landing
		{3, 19, true},  // ground
		{19, 0, false},
	}
	for _, tc := range cases {
		if got := c.IsSet(tc.x, tc.y); got != tc.want {
			t.Errorf("IsSet(%d, %d) = %v, want %v", tc.x, tc.y, got, tc.want)
		}
	}

	if s := Profile(nil, 3, 2).String(); strings.Trim(s, "\u2800\n") != "" {
		t.Errorf("empty profile should be blank, got %q", s)
	}
}

func TestKeyboardHoldWindow(t *testing.T) {
	now := time.Unix(0, 0)
	kb := NewKeyboard(150 * time.Millisecond)
	kb.now = func() time.Time { return now }

	kb.Press("w")
	if !kb.Poll().Held["w"] {
		t.Fatal("key should be held right after press")
	}

	now = now.Add(100 * time.Millisecond)
	kb.Press("up")
	in := kb.Poll()
	if !in.Held["w"] || !in.Held["up"] {
		t.Errorf("both keys should be held inside the window: %v", in.Held)
	}

	now = now.Add(60 * time.Millisecond)
	in = kb.Poll()
	if in.Held["w"] {
		t.Error("w should expire 150ms after its last event")
	}
	if !in.Held["up"] {
		t.Error("up is still inside its window")
	}
	if in.GamepadConnected {
		t.Error("keyboard never reports a gamepad")
	}

	kb.ReleaseAll()
	if len(kb.Poll().Held) != 0 {
		t.Error("ReleaseAll should drop every key")
	}
}

func TestKeyboardRepeatsExtendHold(t *testing.T) {
	now := time.Unix(0, 0)
	kb := NewKeyboard(150 * time.Millisecond)
	kb.now = func() time.Time { return now }

	for i := 0; i < 10; i++ {
		kb.Press(control.Key("w"))
		now = now.Add(50 * time.Millisecond)
		if !kb.Poll().Held["w"] {
			t.Fatalf("repeat %d: key dropped while repeating", i)
		}
	}
}

func TestThemes(t *testing.T) {
	if GetTheme("nope").Name != "default" {
		t.Error("unknown theme should fall back to default")
	}
	seen := map[string]bool{}
	th := ThemeDefault
	for range Themes {
		seen[th.Name] = true
		th = NextTheme(th)
	}
	if len(seen) != len(Themes) || th.Name != ThemeDefault.Name {
		t.Errorf("NextTheme should cycle through all themes, saw %v", seen)
	}
}

func TestChannelBar(t *testing.T) {
	st := newStyles(ThemeMinimal)
	for _, tc := range []struct {
		v        float64
		centered bool
	}{
		{0, true}, {1, true}, {-1, true}, {0.5, false}, {2, false}, {-3, true},
	} {
		bar := st.ChannelBar(tc.v, tc.centered, 11)
		if !strings.Contains(bar, "█") && tc.v != 0 {
			t.Errorf("ChannelBar(%v) has no fill: %q", tc.v, bar)
		}
	}
}
