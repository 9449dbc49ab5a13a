// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"fmt"
	"time"
)

// NewStateMachine creates a basic state machine with the provided configuration.
func NewStateMachine(opts ...Option) (*Machine, error) {
	config := NewConfig(opts...)
	return New(config)
}

// NewEngineLifecycleMachine builds the daemon's top-level lifecycle
// state machine: starting -> running, with excursions into paused
// (the suspend/wake-from-sleep window) and a terminal stopping state
// reached from any point.
func NewEngineLifecycleMachine(name string, opts ...Option) (*Machine, error) {
	baseOpts := []Option{
		WithName(name),
		WithDescription("daemon lifecycle"),
		WithInitialState("starting"),
		WithStates("starting", "running", "paused", "stopping", "stopped"),
		WithTransition("starting", "running", "init_complete"),
		WithTransition("running", "paused", "suspend"),
		WithTransition("paused", "running", "resume"),
		WithTransition("running", "stopping", "shutdown"),
		WithTransition("paused", "stopping", "shutdown"),
		WithTransition("starting", "stopping", "shutdown"),
		WithTransition("stopping", "stopped", "shutdown_complete"),
		WithStateTimeout(30 * time.Second),
	}

	allOpts := append(baseOpts, opts...)
	return NewStateMachine(allOpts...)
}

// LifecycleBuilder provides a fluent interface for building the engine
// lifecycle machine with start-up/shutdown hooks.
type LifecycleBuilder struct {
	name         string
	opts         []Option
	onRunning    ActionFunc
	onStopping   ActionFunc
	canSuspend   GuardFunc
	suspendAfter bool
}

// NewLifecycleBuilder creates a new engine lifecycle builder.
func NewLifecycleBuilder(name string) *LifecycleBuilder {
	return &LifecycleBuilder{name: name, opts: []Option{}}
}

// WithOnRunning sets the action executed when the engine reaches the
// running state (first tick allowed).
func (b *LifecycleBuilder) WithOnRunning(action ActionFunc) *LifecycleBuilder {
	b.onRunning = action
	return b
}

// WithOnStopping sets the action executed on entering stopping, before
// back-ends run their Shutdown.
func (b *LifecycleBuilder) WithOnStopping(action ActionFunc) *LifecycleBuilder {
	b.onStopping = action
	return b
}

// WithSuspendGuard sets a guard condition for the suspend transition.
func (b *LifecycleBuilder) WithSuspendGuard(guard GuardFunc) *LifecycleBuilder {
	b.canSuspend = guard
	return b
}

// WithPersistence adds a persistence callback.
func (b *LifecycleBuilder) WithPersistence(callback PersistenceCallback) *LifecycleBuilder {
	b.opts = append(b.opts, WithPersistence(callback))
	return b
}

// WithBroadcast adds a broadcast callback, used to publish lifecycle
// transitions onto the internal event bus.
func (b *LifecycleBuilder) WithBroadcast(callback BroadcastCallback) *LifecycleBuilder {
	b.opts = append(b.opts, WithBroadcast(callback))
	return b
}

// Build constructs the configured lifecycle machine.
func (b *LifecycleBuilder) Build() (*Machine, error) {
	opts := []Option{
		WithName(b.name),
		WithDescription(fmt.Sprintf("daemon lifecycle for %s", b.name)),
		WithInitialState("starting"),
		WithStates("starting", "running", "paused", "stopping", "stopped"),
	}

	if b.onRunning != nil {
		opts = append(opts, WithActionTransition("starting", "running", "init_complete", b.onRunning))
	} else {
		opts = append(opts, WithTransition("starting", "running", "init_complete"))
	}

	if b.canSuspend != nil {
		opts = append(opts, WithGuardedTransition("running", "paused", "suspend", b.canSuspend))
	} else {
		opts = append(opts, WithTransition("running", "paused", "suspend"))
	}
	opts = append(opts, WithTransition("paused", "running", "resume"))

	if b.onStopping != nil {
		opts = append(opts, WithActionTransition("running", "stopping", "shutdown", b.onStopping))
		opts = append(opts, WithActionTransition("paused", "stopping", "shutdown", b.onStopping))
		opts = append(opts, WithActionTransition("starting", "stopping", "shutdown", b.onStopping))
	} else {
		opts = append(opts, WithTransition("running", "stopping", "shutdown"))
		opts = append(opts, WithTransition("paused", "stopping", "shutdown"))
		opts = append(opts, WithTransition("starting", "stopping", "shutdown"))
	}
	opts = append(opts, WithTransition("stopping", "stopped", "shutdown_complete"))
	opts = append(opts, WithStateTimeout(30*time.Second))

	opts = append(opts, b.opts...)

	return NewStateMachine(opts...)
}

// SafetyLatchBuilder builds a per-profile safety-latch state machine
// mirroring the counter-driven logic in internal/processor's safety
// latch: armed while duty commands are flowing,
// triggered once max_no_duty_set_count consecutive ticks produce no
// emission, and reset the instant a duty is next emitted. Used where a
// caller wants the latch's state observable/broadcastable independent
// of the pipeline's own counter, e.g. for diagnostics.
type SafetyLatchBuilder struct {
	name        string
	opts        []Option
	onTriggered ActionFunc
}

// NewSafetyLatchBuilder creates a new safety-latch builder for
// profileUID.
func NewSafetyLatchBuilder(profileUID string) *SafetyLatchBuilder {
	return &SafetyLatchBuilder{name: "safety-latch:" + profileUID, opts: []Option{}}
}

// WithOnTriggered sets the action executed when the latch trips.
func (b *SafetyLatchBuilder) WithOnTriggered(action ActionFunc) *SafetyLatchBuilder {
	b.onTriggered = action
	return b
}

// WithBroadcast adds a broadcast callback.
func (b *SafetyLatchBuilder) WithBroadcast(callback BroadcastCallback) *SafetyLatchBuilder {
	b.opts = append(b.opts, WithBroadcast(callback))
	return b
}

// Build constructs the configured safety-latch machine.
func (b *SafetyLatchBuilder) Build() (*Machine, error) {
	opts := []Option{
		WithName(b.name),
		WithDescription("safety latch for " + b.name),
		WithInitialState("armed"),
		WithStates("armed", "triggered"),
	}

	if b.onTriggered != nil {
		opts = append(opts, WithActionTransition("armed", "triggered", "silence_exceeded", b.onTriggered))
	} else {
		opts = append(opts, WithTransition("armed", "triggered", "silence_exceeded"))
	}
	opts = append(opts, WithTransition("triggered", "armed", "duty_emitted"))
	opts = append(opts, WithStateTimeout(5*time.Second))

	opts = append(opts, b.opts...)

	return NewStateMachine(opts...)
}
