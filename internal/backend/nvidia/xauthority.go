// SPDX-License-Identifier: BSD-3-Clause

package nvidia

import (
	"os"
	"path/filepath"
)

// candidateXauthorityGlobs are globbed, in order, to find a usable
// Xauthority file for invoking nvidia-settings from a non-interactive
// daemon session.
var candidateXauthorityGlobs = []string{
	"/home/*/.Xauthority",
	"/run/user/*/gdm/Xauthority",
	"/var/run/lightdm/root/*",
	"/var/lib/gdm*/.Xauthority",
	"/var/lib/sddm/.Xauthority",
}

// findXauthority globs the well-known locations and returns the first
// existing file that is not a directory (readability is not checked). It returns "" if none is found; callers
// then invoke nvidia-settings without XAUTHORITY and accept the
// "Authorization required" failure mode.
func findXauthority() string {
	if p := os.Getenv("XAUTHORITY"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	for _, pattern := range candidateXauthorityGlobs {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			continue
		}
		for _, m := range matches {
			if fi, err := os.Stat(m); err == nil && !fi.IsDir() {
				return m
			}
		}
	}
	return ""
}
