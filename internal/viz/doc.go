// Package viz is the terminal flight view built on Bubble Tea.
//
// [Model] runs the simulation loop in real time, one tick per frame, and
// draws the drone on a Braille [Canvas] either from the side or through the
// chase/FPV camera. [Keyboard] turns terminal key repeats into held keys for
// the mixer.
//
// # Key Bindings
//
//	W/S         - Throttle
//	Up/Down     - Roll
//	Right/Left  - Pitch
//	A/D         - Yaw
//	Space       - Pause/Resume
//	R           - Reset to spawn
//	V           - Toggle side/camera view
//	C           - Cycle chase/FPV camera
//	T           - Cycle color themes
//	?           - Show help overlay
package viz
