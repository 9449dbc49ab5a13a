// SPDX-License-Identifier: BSD-3-Clause

// Package config defines the read-only Provider contract the engine
// core consumes and ships a TOML-backed implementation matching
// CoolerControl's on-disk configuration format. The persisted config
// file's full schema, the HTTP API that edits it, and authentication
// are out of scope; this package only covers what the core needs to
// read and the settings subset it can write back.
package config
