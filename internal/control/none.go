package control

// Idle is a device with no keys held and no gamepad.
type Idle struct{}

func (Idle) Poll() InputState {
	return InputState{}
}
