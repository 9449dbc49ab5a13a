// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/qmuntal/stateless"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Machine is a thread-safe finite state machine, used by the engine
// loop to model daemon lifecycle (starting/running/paused/
// stopping/stopped) and by the processor package's conceptual per-profile
// safety-latch state.
type Machine struct {
	config  *Config
	machine *stateless.StateMachine
	mu      sync.RWMutex
	tracer  trace.Tracer
	started bool
	stopped bool

	currentState      string
	persistCallback   PersistenceCallback
	broadcastCallback BroadcastCallback
}

// New creates a new state machine with the provided configuration.
func New(config *Config) (*Machine, error) {
	if config == nil {
		return nil, ErrInvalidConfig
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	sm := &Machine{
		config:            config,
		currentState:      config.InitialState,
		persistCallback:   config.PersistenceCallback,
		broadcastCallback: config.BroadcastCallback,
	}

	if config.EnableTracing {
		sm.tracer = otel.Tracer("state")
	}

	sm.machine = stateless.NewStateMachine(config.InitialState)

	for _, s := range config.States {
		sm.configureState(s)
	}

	for _, transition := range config.Transitions {
		sm.configureTransition(transition)
	}

	return sm, nil
}

// SetPersistenceCallback sets the callback for state persistence.
func (sm *Machine) SetPersistenceCallback(callback PersistenceCallback) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.started {
		return ErrStateMachineAlreadyStarted
	}

	sm.persistCallback = callback
	return nil
}

// SetBroadcastCallback sets the callback for state change broadcasts.
func (sm *Machine) SetBroadcastCallback(callback BroadcastCallback) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.started {
		return ErrStateMachineAlreadyStarted
	}

	sm.broadcastCallback = callback
	return nil
}

// Start initializes and starts the state machine.
func (sm *Machine) Start(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.started {
		return nil
	}

	if sm.stopped {
		return ErrStateMachineStopped
	}

	sm.started = true

	if sm.persistCallback != nil {
		if err := sm.persistCallback(ctx, sm.config.Name, sm.currentState); err != nil {
			return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
		}
	}

	return nil
}

// Stop gracefully stops the state machine.
func (sm *Machine) Stop(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if !sm.started || sm.stopped {
		return nil
	}

	sm.stopped = true
	return nil
}

// Fire triggers a state transition with the specified trigger.
func (sm *Machine) Fire(ctx context.Context, trigger string) error {
	sm.mu.Lock()

	if !sm.started {
		sm.mu.Unlock()
		return ErrStateMachineNotStarted
	}

	if sm.stopped {
		sm.mu.Unlock()
		return ErrStateMachineStopped
	}

	var span trace.Span
	if sm.tracer != nil {
		ctx, span = sm.tracer.Start(ctx, "state.Fire",
			trace.WithAttributes(
				attribute.String("state_machine.name", sm.config.Name),
				attribute.String("state.current", sm.currentState),
				attribute.String("trigger", trigger),
			))
		defer span.End()
	}

	if ok, err := sm.machine.CanFire(trigger); err != nil {
		sm.mu.Unlock()
		return fmt.Errorf("%w: trigger %s not valid in state %s: %w", ErrInvalidTrigger, trigger, sm.currentState, err)
	} else if !ok {
		sm.mu.Unlock()
		return fmt.Errorf("%w: trigger %s not valid in state %s", ErrInvalidTrigger, trigger, sm.currentState)
	}

	previousState := sm.currentState

	timeout := sm.config.StateTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	fireCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		if err := sm.machine.FireCtx(fireCtx, trigger); err != nil {
			done <- fmt.Errorf("%w: %w", ErrInvalidTransition, err)
			return
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			if span != nil {
				span.RecordError(err)
			}
			sm.mu.Unlock()
			return err
		}
	case <-fireCtx.Done():
		if fireCtx.Err() == context.DeadlineExceeded {
			sm.mu.Unlock()
			return ErrTransitionTimeout
		}
		sm.mu.Unlock()
		return fireCtx.Err()
	}

	newState, err := sm.machine.State(ctx)
	if err != nil {
		if span != nil {
			span.RecordError(err)
		}
		sm.mu.Unlock()
		return fmt.Errorf("failed to get current state: %w", err)
	}
	sm.currentState = fmt.Sprintf("%v", newState)

	name := sm.config.Name
	curr := sm.currentState
	persistCb := sm.persistCallback
	broadcastCb := sm.broadcastCallback
	sm.mu.Unlock()

	if persistCb != nil {
		if perr := persistCb(ctx, name, curr); perr != nil {
			if span != nil {
				span.RecordError(perr)
			}
			return fmt.Errorf("%w: %w", ErrPersistenceFailed, perr)
		}
	}
	if broadcastCb != nil {
		if berr := broadcastCb(ctx, name, previousState, curr, trigger); berr != nil && span != nil {
			span.RecordError(berr)
		}
	}

	if span != nil {
		span.SetAttributes(
			attribute.String("state.previous", previousState),
			attribute.String("state.new", curr),
		)
	}

	return nil
}

// CurrentState returns the current state of the state machine.
func (sm *Machine) CurrentState() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentState
}

// CanFire checks if the specified trigger can be fired from the current state.
func (sm *Machine) CanFire(trigger string) (bool, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.machine.CanFire(trigger)
}

// PermittedTriggers returns all triggers that can be fired from the current state.
func (sm *Machine) PermittedTriggers() []string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	triggers, err := sm.machine.PermittedTriggers()
	if err != nil {
		return []string{}
	}

	result := make([]string, len(triggers))
	for i, t := range triggers {
		result[i] = fmt.Sprintf("%v", t)
	}
	return result
}

// IsInState checks if the state machine is in the specified state.
func (sm *Machine) IsInState(state string) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.currentState == state
}

// Name returns the name of the state machine.
func (sm *Machine) Name() string {
	return sm.config.Name
}

// Description returns the description of the state machine.
func (sm *Machine) Description() string {
	return sm.config.Description
}

// ToGraph returns a DOT graph representation of the state machine.
func (sm *Machine) ToGraph() string {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.machine.ToGraph()
}

func (sm *Machine) configureState(s string) {
	stateConfig := sm.machine.Configure(s)

	if sm.config.OnStateEntry != nil {
		entry := sm.config.OnStateEntry
		name := sm.config.Name
		stateConfig.OnEntry(func(ctx context.Context, args ...any) error {
			return entry(ctx, name, s)
		})
	}

	if sm.config.OnStateExit != nil {
		exit := sm.config.OnStateExit
		name := sm.config.Name
		stateConfig.OnExit(func(ctx context.Context, args ...any) error {
			return exit(ctx, name, s)
		})
	}
}

func (sm *Machine) configureTransition(transition Transition) {
	fromCfg := sm.machine.Configure(transition.From)

	if transition.Guard != nil {
		fromCfg.PermitDynamic(transition.Trigger, func(ctx context.Context, args ...any) (any, error) {
			if transition.Guard() {
				return transition.To, nil
			}
			return nil, fmt.Errorf("%w: %s", ErrTransitionGuardFailed, transition.Trigger)
		})
	} else {
		fromCfg.Permit(transition.Trigger, transition.To)
	}

	if transition.Action != nil {
		toCfg := sm.machine.Configure(transition.To)
		toCfg.OnEntryFrom(transition.Trigger, func(ctx context.Context, args ...any) error {
			return transition.Action(transition.From, transition.To, transition.Trigger)
		})
	}
}

// Manager manages multiple state machines (one per monitored profile's
// safety latch, or one per daemon subsystem).
type Manager struct {
	machines map[string]*Machine
	mu       sync.RWMutex
}

// NewManager creates a new state machine manager.
func NewManager() *Manager {
	return &Manager{
		machines: make(map[string]*Machine),
	}
}

// AddStateMachine adds a state machine to the manager.
func (m *Manager) AddStateMachine(sm *Machine) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if sm == nil {
		return fmt.Errorf("%w: nil state machine", ErrInvalidConfig)
	}

	if _, exists := m.machines[sm.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrStateMachineExists, sm.Name())
	}

	m.machines[sm.Name()] = sm
	return nil
}

// RemoveStateMachine removes a state machine from the manager.
func (m *Manager) RemoveStateMachine(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.machines[name]; !exists {
		return fmt.Errorf("%w: %s", ErrStateMachineNotFound, name)
	}

	delete(m.machines, name)
	return nil
}

// GetStateMachine retrieves a state machine by name.
func (m *Manager) GetStateMachine(name string) (*Machine, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sm, exists := m.machines[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrStateMachineNotFound, name)
	}

	return sm, nil
}

// ListStateMachines returns the names of all managed state machines.
func (m *Manager) ListStateMachines() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.machines))
	for name := range m.machines {
		names = append(names, name)
	}

	return names
}

// StopAll stops all managed state machines.
func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var errs []error
	for _, sm := range m.machines {
		if err := sm.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
