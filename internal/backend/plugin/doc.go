// SPDX-License-Identifier: BSD-3-Clause

// Package plugin implements backend.Repository for external
// service-plugin processes.
// No `.proto` schema ships with this module's example pack, so the
// gRPC transport itself is out of scope here; this
// package models the adapter's observable contract — a per-device
// mutex and an 8s default call timeout — against a
// small client interface, pluginClient, that a real
// google.golang.org/grpc-generated stub would satisfy. call() is
// where that stub plugs in.
package plugin
