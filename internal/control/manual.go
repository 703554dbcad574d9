package control

// Manual is a device whose state is set directly by the caller.
// Used by tests, scripted flights and the terminal keyboard layer.
type Manual struct {
	state InputState
}

func NewManual() *Manual {
	return &Manual{state: InputState{Held: KeySet{}}}
}

// Press marks keys as held until released.
func (m *Manual) Press(keys ...Key) {
	for _, k := range keys {
		m.state.Held[k] = true
	}
}

func (m *Manual) Release(keys ...Key) {
	for _, k := range keys {
		delete(m.state.Held, k)
	}
}

func (m *Manual) ReleaseAll() {
	m.state.Held = KeySet{}
}

// ConnectGamepad reports a connected gamepad with the given channel axes.
func (m *Manual) ConnectGamepad(axes [4]float64) {
	m.state.GamepadConnected = true
	m.state.Axes = axes
}

func (m *Manual) DisconnectGamepad() {
	m.state.GamepadConnected = false
	m.state.Axes = [4]float64{}
}

// Poll returns a copy of the current state.
func (m *Manual) Poll() InputState {
	held := make(KeySet, len(m.state.Held))
	for k, v := range m.state.Held {
		held[k] = v
	}
	return InputState{Held: held, GamepadConnected: m.state.GamepadConnected, Axes: m.state.Axes}
}
