// SPDX-License-Identifier: BSD-3-Clause

package eventbus

import "errors"

var (
	// ErrServerNotReady indicates the embedded NATS server did not
	// become ready for connections within its startup timeout.
	ErrServerNotReady = errors.New("event bus server not ready")
	// ErrNotStarted indicates Publish was called before Start.
	ErrNotStarted = errors.New("event bus not started")
)
