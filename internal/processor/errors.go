// SPDX-License-Identifier: BSD-3-Clause

package processor

import "errors"

var (
	// ErrProfileNotFound indicates the pipeline was asked to evaluate an unknown profile UID.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrFunctionNotFound indicates a Graph profile named a function UID the store does not hold.
	ErrFunctionNotFound = errors.New("function not found")
	// ErrCyclicProfile indicates a Mix/Overlay reference graph contains a cycle.
	ErrCyclicProfile = errors.New("cyclic profile reference")
	// ErrMaxDepthExceeded guards against runaway recursion in malformed profile graphs.
	ErrMaxDepthExceeded = errors.New("profile evaluation exceeded maximum depth")
)

// maxEvalDepth bounds Mix/Overlay recursion; the data model has no
// explicit depth limit, but a real configuration never nests more than a
// handful of levels deep.
const maxEvalDepth = 16

// errNoEmission is an internal sentinel (never returned to callers of
// Pipeline.Tick) meaning a pre-processor suppressed this tick's
// temperature, so downstream evaluation has nothing to emit.
var errNoEmission = errors.New("no temperature emitted this tick")
