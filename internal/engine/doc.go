// SPDX-License-Identifier: BSD-3-Clause

// Package engine drives the per-tick loop:
// preload every back-end, pull fresh statuses, run the custom-sensor
// engine, drive the processor pipeline for every scheduled channel,
// and dispatch resulting duties. It implements the process.Runner
// contract (Name/Run) so it can be supervised by cirello.io/oversight/v2
// via pkg/process.New, and drives its start-up/shutdown/suspend
// lifecycle through a state machine (pkg/state).
package engine
