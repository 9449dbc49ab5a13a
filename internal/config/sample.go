// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"fmt"

	"github.com/codifryed/coolercontrold/pkg/file"
)

// defaultSampleTOML is written by WriteSample when no config file exists
// yet; it is a minimal, valid starting point, not the full persisted
// schema.
const defaultSampleTOML = `[settings]
poll_rate = 1.0
apply_on_boot = true
thinkpad_full_speed = false
`

// WriteSample atomically creates path with a minimal default
// configuration, if it does not already exist. It uses the same
// temp-file-then-rename discipline as the rest of this module's
// file-backed state (pkg/file), so a crash mid-write can never leave a
// half-written config behind.
func WriteSample(path string) error {
	if err := file.AtomicCreateFile(path, []byte(defaultSampleTOML), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}
