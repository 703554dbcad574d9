// Package control turns pilot input into the four flight control channels.
//
// An [InputDevice] is polled once per tick by the [Mixer], which keeps the
// raw channel values and derives normalized values from them:
//
//   - gamepad axes are authoritative and applied without ramping
//   - held keys ramp a channel by [Config.RampRate] per tick
//   - released channels ramp back toward their idle value
//
// Raw values are clamped on every write and normalized values are only ever
// produced through [ChannelRange.Normalize].
//
// # Devices
//
//   - [Idle]: nothing held, no gamepad
//   - [Manual]: snapshot set by the caller (tests, scripts)
//   - [AltitudeHold]: PID autopilot acting as a virtual gamepad
//
// # Usage
//
//	m, err := control.NewMixer(control.DefaultConfig(), device)
//	ch := m.Update()
//	sim.Step(ch.Normalized, dt)
package control
