// SPDX-License-Identifier: BSD-3-Clause

package state

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineLifecycleMachine_StartsInStarting(t *testing.T) {
	m, err := NewEngineLifecycleMachine("engine")
	require.NoError(t, err)
	assert.Equal(t, "starting", m.CurrentState())
}

func TestEngineLifecycleMachine_FullLifecycle(t *testing.T) {
	m, err := NewEngineLifecycleMachine("engine")
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))

	require.NoError(t, m.Fire(context.Background(), "init_complete"))
	assert.Equal(t, "running", m.CurrentState())

	require.NoError(t, m.Fire(context.Background(), "suspend"))
	assert.Equal(t, "paused", m.CurrentState())

	require.NoError(t, m.Fire(context.Background(), "resume"))
	assert.Equal(t, "running", m.CurrentState())

	require.NoError(t, m.Fire(context.Background(), "shutdown"))
	assert.Equal(t, "stopping", m.CurrentState())

	require.NoError(t, m.Fire(context.Background(), "shutdown_complete"))
	assert.Equal(t, "stopped", m.CurrentState())
}

func TestMachine_FireRejectsInvalidTrigger(t *testing.T) {
	m, err := NewEngineLifecycleMachine("engine")
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))

	err = m.Fire(context.Background(), "suspend")
	assert.ErrorIs(t, err, ErrInvalidTrigger)
}

func TestMachine_FireBeforeStartErrors(t *testing.T) {
	m, err := NewEngineLifecycleMachine("engine")
	require.NoError(t, err)

	err = m.Fire(context.Background(), "init_complete")
	assert.ErrorIs(t, err, ErrStateMachineNotStarted)
}

func TestLifecycleBuilder_OnStoppingActionRuns(t *testing.T) {
	called := false
	m, err := NewLifecycleBuilder("engine").
		WithOnStopping(func(from, to, trigger string) error {
			called = true
			return nil
		}).
		Build()
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Fire(context.Background(), "init_complete"))

	require.NoError(t, m.Fire(context.Background(), "shutdown"))
	assert.True(t, called)
}

func TestLifecycleBuilder_SuspendGuardBlocksTransition(t *testing.T) {
	m, err := NewLifecycleBuilder("engine").
		WithSuspendGuard(func() bool { return false }).
		Build()
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Fire(context.Background(), "init_complete"))

	err = m.Fire(context.Background(), "suspend")
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, "running", m.CurrentState())
}

func TestLifecycleBuilder_BroadcastCallbackReceivesTransition(t *testing.T) {
	var gotFrom, gotTo, gotTrigger string
	m, err := NewLifecycleBuilder("engine").
		WithBroadcast(func(ctx context.Context, name, from, to, trigger string) error {
			gotFrom, gotTo, gotTrigger = from, to, trigger
			return nil
		}).
		Build()
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))

	require.NoError(t, m.Fire(context.Background(), "init_complete"))
	assert.Equal(t, "starting", gotFrom)
	assert.Equal(t, "running", gotTo)
	assert.Equal(t, "init_complete", gotTrigger)
}

func TestSafetyLatchBuilder_TripsAndResets(t *testing.T) {
	tripped := false
	m, err := NewSafetyLatchBuilder("profile1").
		WithOnTriggered(func(from, to, trigger string) error {
			tripped = true
			return nil
		}).
		Build()
	require.NoError(t, err)
	require.NoError(t, m.Start(context.Background()))
	assert.Equal(t, "armed", m.CurrentState())

	require.NoError(t, m.Fire(context.Background(), "silence_exceeded"))
	assert.True(t, tripped)
	assert.Equal(t, "triggered", m.CurrentState())

	require.NoError(t, m.Fire(context.Background(), "duty_emitted"))
	assert.Equal(t, "armed", m.CurrentState())
}

func TestConfig_ValidateRejectsMissingName(t *testing.T) {
	c := NewConfig(WithInitialState("a"), WithStates("a"))
	err := c.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_ValidateRejectsUnknownInitialState(t *testing.T) {
	c := NewConfig(WithName("m"), WithInitialState("missing"), WithStates("a", "b"))
	err := c.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestConfig_ValidateRejectsTransitionToUnknownState(t *testing.T) {
	c := NewConfig(
		WithName("m"),
		WithInitialState("a"),
		WithStates("a", "b"),
		WithTransition("a", "missing", "go"),
	)
	err := c.Validate()
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestManager_AddGetRemove(t *testing.T) {
	mgr := NewManager()
	m, err := NewStateMachine(WithName("latch1"), WithInitialState("armed"), WithStates("armed", "triggered"),
		WithTransition("armed", "triggered", "trip"))
	require.NoError(t, err)

	require.NoError(t, mgr.AddStateMachine(m))
	assert.ErrorIs(t, mgr.AddStateMachine(m), ErrStateMachineExists)

	got, err := mgr.GetStateMachine("latch1")
	require.NoError(t, err)
	assert.Same(t, m, got)

	assert.Equal(t, []string{"latch1"}, mgr.ListStateMachines())

	require.NoError(t, mgr.RemoveStateMachine("latch1"))
	_, err = mgr.GetStateMachine("latch1")
	assert.ErrorIs(t, err, ErrStateMachineNotFound)
}

func TestManager_RemoveUnknownErrors(t *testing.T) {
	mgr := NewManager()
	err := mgr.RemoveStateMachine("missing")
	assert.ErrorIs(t, err, ErrStateMachineNotFound)
}

func TestManager_AddNilErrors(t *testing.T) {
	mgr := NewManager()
	err := mgr.AddStateMachine(nil)
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}
