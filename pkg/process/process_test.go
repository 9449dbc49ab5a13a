// SPDX-License-Identifier: BSD-3-Clause

package process

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type erroringRunner struct{ err error }

func (r *erroringRunner) Name() string                        { return "erroring" }
func (r *erroringRunner) Run(ctx context.Context) error        { return r.err }

type panickingRunner struct{}

func (r *panickingRunner) Name() string                 { return "panicker" }
func (r *panickingRunner) Run(ctx context.Context) error { panic("boom") }

func TestNew_RunsUnderlyingRunner(t *testing.T) {
	child := New(NewStub("test-runner"))
	require.NoError(t, child(context.Background()))
}

func TestNew_PropagatesRunnerError(t *testing.T) {
	wantErr := errors.New("backend offline")
	child := New(&erroringRunner{err: wantErr})
	err := child(context.Background())
	assert.ErrorIs(t, err, wantErr)
}

func TestNew_RecoversPanicIntoNamedError(t *testing.T) {
	child := New(&panickingRunner{})
	err := child(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicker")
	assert.Contains(t, err.Error(), "boom")
}

func TestStub_NameAndRun(t *testing.T) {
	s := NewStub("idle")
	assert.Equal(t, "idle", s.Name())
	assert.NoError(t, s.Run(context.Background()))
}
