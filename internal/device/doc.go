// SPDX-License-Identifier: BSD-3-Clause

// Package device defines the uniform data model that every back-end
// adapter normalizes its samples into, and the process-wide registry that owns
// device state for the lifetime of the daemon.
// The registry map is built once at start-up and is read-only
// thereafter; only a device's own
// status history and current pointer mutate on later ticks, each guarded
// by that device's own lock so the registry map lock is never held
// across back-end I/O.
package device
