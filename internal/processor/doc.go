// SPDX-License-Identifier: BSD-3-Clause

// Package processor implements the per-channel pipeline that turns a
// temperature sample into a duty command: a safety-latch
// pre-tick, a temperature pre-processor (Identity, Standard hysteresis,
// or EMA), a Graph/Mix/Overlay profile evaluator, a duty-threshold
// post-processor, and a safety-latch post-tick.
// The pipeline performs no suspensions: every Processor reads
// already-snapshotted device status history and profile/function
// definitions handed to it by the caller, and returns synchronously.
package processor
