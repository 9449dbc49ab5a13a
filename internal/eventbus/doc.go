// SPDX-License-Identifier: BSD-3-Clause

// Package eventbus provides the engine's internal, in-process
// publish/subscribe decoupling point. It embeds a NATS server with its
// network listener disabled and publishes JSON-encoded EngineEvents that
// a future API layer (out of scope here) could subscribe to; nothing in
// the control engine core requires a subscriber to be present.
//
// This trims the embedded-NATS pattern down to JetStream-free,
// tracing-free pub/sub — this bus has no durability or
// distributed-tracing requirement, only an in-process fan-out of
// already-computed tick results.
package eventbus
