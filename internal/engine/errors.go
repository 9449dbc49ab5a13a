// SPDX-License-Identifier: BSD-3-Clause

package engine

import "errors"

var (
	// ErrNoBackends indicates backend.Build returned no usable
	// adapters at start-up.
	ErrNoBackends = errors.New("no back-ends available")
	// ErrAlreadyRunning indicates Run was called on an engine that is
	// already running.
	ErrAlreadyRunning = errors.New("engine already running")
)
