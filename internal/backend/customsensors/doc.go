// SPDX-License-Identifier: BSD-3-Clause

// Package customsensors wraps internal/customsensor's evaluation
// engine as a backend.Repository, registering one virtual Device per defined
// sensor and pushing its per-tick result in as that device's sole
// temperature reading. This is the wiring internal/customsensor's
// own doc comment defers to "the custom-sensors back-end".
// Custom sensors are read-only: every ApplySetting* method returns
// backend.ErrUnsupportedChannel, since they expose no channel.
package customsensors
