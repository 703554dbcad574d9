package experiment

import (
	"fmt"
	"os"
	"sort"

	"github.com/san-kum/dronesim/internal/control"
	"github.com/san-kum/dronesim/internal/dynamo"
	"github.com/san-kum/dronesim/internal/sim"
	"gopkg.in/yaml.v3"
)

// Segment is one step of a scripted flight. From At onward the listed keys
// are held; when Gamepad is set the segment drives the channel axes instead.
// Pad holds raw device axes as a recorded controller reports them; they are
// picked into channels through the mixer's gamepad layout.
type Segment struct {
	At      float64       `yaml:"at"`
	Keys    []control.Key `yaml:"keys,omitempty"`
	Gamepad *[4]float64   `yaml:"gamepad,omitempty"`
	Pad     []float64     `yaml:"pad,omitempty"`
}

type Script struct {
	Segments []Segment `yaml:"segments"`
}

func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	sort.SliceStable(s.Segments, func(i, j int) bool { return s.Segments[i].At < s.Segments[j].At })
	return &s, nil
}

func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

func (s *Script) Validate() error {
	if len(s.Segments) == 0 {
		return fmt.Errorf("script: %w: no segments", dynamo.ErrParameterBounds)
	}
	for i, seg := range s.Segments {
		if !dynamo.Finite(seg.At) || seg.At < 0 {
			return fmt.Errorf("script segment %d: %w", i, dynamo.ParamError("at", seg.At))
		}
		if seg.Gamepad != nil && seg.Pad != nil {
			return fmt.Errorf("script segment %d: %w: gamepad and pad are exclusive", i, dynamo.ErrParameterBounds)
		}
	}
	return nil
}

// Timeline plays a Script back as an input device. It learns the flight
// time from the frames it observes, so inputs switch one tick after the
// segment boundary is crossed.
type Timeline struct {
	script *Script
	layout control.GamepadLayout
	t      float64
}

func NewTimeline(s *Script, layout control.GamepadLayout) *Timeline {
	return &Timeline{script: s, layout: layout}
}

func (tl *Timeline) OnStep(f sim.Frame) { tl.t = f.T }

// Active returns the segment in effect, or nil before the first one starts.
func (tl *Timeline) Active() *Segment {
	var active *Segment
	for i := range tl.script.Segments {
		seg := &tl.script.Segments[i]
		if seg.At > tl.t {
			break
		}
		active = seg
	}
	return active
}

func (tl *Timeline) Poll() control.InputState {
	in := control.InputState{Held: control.KeySet{}}
	seg := tl.Active()
	if seg == nil {
		return in
	}
	if seg.Gamepad != nil {
		in.GamepadConnected = true
		in.Axes = *seg.Gamepad
		return in
	}
	if seg.Pad != nil {
		in.GamepadConnected = true
		in.Axes = tl.layout.Map(seg.Pad)
		return in
	}
	for _, k := range seg.Keys {
		in.Held[k] = true
	}
	return in
}
