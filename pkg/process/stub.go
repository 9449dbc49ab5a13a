// SPDX-License-Identifier: BSD-3-Clause

package process

import (
	"context"
)

// Stub is a no-op Runner. It can be used as a placeholder, for testing
// purposes, or to disable a supervised child without removing it from
// the oversight tree.
type Stub struct {
	name string
}

// Name returns the identifier name for this stub runner.
func (s *Stub) Name() string {
	return s.name
}

// Run returns immediately without error.
func (s *Stub) Run(_ context.Context) error {
	return nil
}

// NewStub creates a new stub Runner with the given name.
func NewStub(name string) *Stub {
	return &Stub{
		name: name,
	}
}
