// SPDX-License-Identifier: BSD-3-Clause

// Package state provides a thread-safe finite state machine, used by
// the engine loop to model daemon lifecycle (starting/running/paused/
// stopping) and, per profile, the duty-threshold safety latch's armed/
// triggered state.
// # Basic usage
// machine, err:= state.NewEngineLifecycleMachine("engine")
// if err != nil {
// return err
// }
// if err:= machine.Start(ctx); err != nil {
// return err
// }
// if err:= machine.Fire(ctx, "init_complete"); err != nil {
// return err
// }
// LifecycleBuilder and SafetyLatchBuilder provide fluent construction
// with start-up/shutdown and latch-trip hooks wired in.
// # Persistence and broadcast
// machine.SetPersistenceCallback(func(ctx context.Context, name, state string) error {
// return nil // no persistence required by this daemon
// })
// machine.SetBroadcastCallback(func(ctx context.Context, name, prev, curr, trigger string) error {
// return bus.Publish(ctx, "engine.lifecycle", curr)
// })
// Both callbacks must be set before Start.
// # Tracing
// Set Config.EnableTracing (via WithTracing(true)) to wrap every Fire
// call in an OpenTelemetry span.
// # Thread safety
// All Machine and Manager methods are safe for concurrent use.
package state
