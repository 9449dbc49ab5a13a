// SPDX-License-Identifier: BSD-3-Clause

// Package customsensor implements the virtual-temperature-channel engine: Mix, Offset and File sensors composed in a strict
// one-level parent/child hierarchy, evaluated in two passes per tick so
// that parent sensors always read their children's same-tick results.
package customsensor
