// Package physics is the rigid-body backend of the flight simulator.
//
// A [Backend] is loaded once with [Load] before any simulation exists. It
// creates [World] instances holding box-shaped [Body] values:
//
//   - [World.Step]: advance by a variable dt split into equal sub-steps
//   - [Body.ApplyCentralForce] / [Body.ApplyTorque]: per-step accumulators
//   - static bodies (mass 0) act as ground slabs with +Y contact normals
//
// Integration is semi-implicit Euler with Bullet-style damping, where a
// damping coefficient d scales velocity by (1-d)^h per sub-step of length h.
//
// # Example
//
//	backend, err := physics.Load(physics.DefaultSettings())
//	if err != nil {
//	    return err
//	}
//	world := backend.NewWorld()
//	drone, _ := world.AddBody(physics.DroneBody(pose, physics.DefaultHalfExtents))
//	drone.ApplyCentralForce(mgl64.Vec3{0, 5, 0})
//	world.Step(1.0 / 60.0)
//
// # Thread Safety
//
// Worlds and bodies are NOT safe for concurrent mutation. One goroutine owns
// a world and everything inside it.
package physics
