// SPDX-License-Identifier: BSD-3-Clause

// Package liquidctl implements backend.Repository by talking to an
// external per-device driver process over line-oriented JSON on its
// stdio pipes, the same wire shape an os/exec-spawned liquidctl helper
// would use if run as a long-lived child instead of invoked per call.
// Status reports use well-known string keys ("liquid temperature",
// "fan speed", "fan N duty"); every numeric value is clamped to the
// device registry's bounds before it reaches it (temp∈[-40,200]°C,
// duty∈[0,100]%, rpm∈[0,10_000]).
package liquidctl
