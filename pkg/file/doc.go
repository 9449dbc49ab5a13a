// SPDX-License-Identifier: BSD-3-Clause

// Package file provides atomic writes for the daemon's on-disk TOML
// configuration: a temp-file-then-rename discipline so a crash or power
// loss mid-write can never leave the config file half-written.
//
//   - AtomicCreateFile creates a file, failing if it already exists. Used
//     by config.WriteSample to seed a default config on first run without
//     clobbering one a user already has.
//   - AtomicUpdateFile replaces an existing file's content (or creates it
//     if absent), preserving nothing of the original. Used by
//     config.TOMLProvider.Save to persist settings changes made over the
//     API back to the config file.
//
// Both copy to a temp file in the target's directory, set its permissions,
// then rename it into place, so readers never observe a partially written
// file and a process that dies mid-write leaves the original untouched.
package file
