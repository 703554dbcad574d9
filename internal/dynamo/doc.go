// Package dynamo holds the small vocabulary shared by every layer of the
// flight simulator: sentinel errors, the step error wrapper, finiteness
// checks for mgl64 values, and the [Configurable] interface used for live
// tuning.
//
//   - [FiniteVec] / [FiniteQuat]: NaN and Inf detection
//   - [ClampLength]: rescale a vector to a maximum magnitude
//   - [StepError]: per-step failure with tick context
//
// # Thread Safety
//
// Nothing in this package holds state; all helpers are safe for concurrent use.
package dynamo
