// SPDX-License-Identifier: BSD-3-Clause

package process

import (
	"context"
	"fmt"

	"cirello.io/oversight/v2"
)

// Runner is anything that can be run as a supervised child process: the
// engine's tick loop, a backend's discovery/poll goroutine, or the NATS
// in-process server itself.
type Runner interface {
	Name() string
	Run(ctx context.Context) error
}

// New creates an oversight.ChildProcess that wraps r. The returned
// function runs r with the provided context and recovers from any
// panic, converting it to an error that names the runner for easier
// diagnosis in the supervision tree's restart log.
func New(r Runner) oversight.ChildProcess {
	return func(ctx context.Context) (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("%s panicked: %v", r.Name(), rec)
			}
		}()

		return r.Run(ctx)
	}
}
