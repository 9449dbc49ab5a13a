// SPDX-License-Identifier: BSD-3-Clause

// Package process bridges the engine's internal runners (the tick
// loop, backend pollers, the NATS in-process server) and the oversight
// supervision tree (cirello.io/oversight/v2), so any of them can
// panic, error, or be killed and come back under OneForOne restart
// without taking the daemon down with it.
//
// # Basic usage
//
//	type tickLoop struct{ eng *engine.Engine }
//
//	func (t *tickLoop) Name() string { return "engine" }
//	func (t *tickLoop) Run(ctx context.Context) error { return t.eng.Run(ctx) }
//
//	child := process.New(&tickLoop{eng: eng})
//	tree := oversight.New(oversight.NeverHalt(), oversight.DefaultRestartStrategy())
//	tree.Add(child, oversight.Transient(), oversight.Timeout(30*time.Second), "engine")
//
// # Panic recovery
//
// New wraps Runner.Run in a deferred recover, turning any panic into
// an error that names the runner, so the oversight tree's restart
// logic sees a normal error return rather than a crashed process.
//
// Stub provides a no-op Runner for tests and for disabling a
// supervised child without removing it from the tree.
package process
