// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"fmt"
	"log/slog"

	"github.com/codifryed/coolercontrold/internal/config"
	"github.com/codifryed/coolercontrold/internal/device"
)

// Constructor builds a Repository from the daemon's ConfigProvider.
// Adapters register themselves at package init time (see each
// sub-package's init()), mirroring the probe-then-register factory
// pattern used for narrow hardware-driver construction in the pack's
// driver-factory example.
type Constructor func(cfg config.Provider, log *slog.Logger) (Repository, error)

var registry = map[device.Type]Constructor{}

// Register adds a Constructor for typ. Called from each adapter
// sub-package's init().
func Register(typ device.Type, ctor Constructor) {
	registry[typ] = ctor
}

// Build constructs every registered adapter. An adapter whose
// constructor returns an error is skipped with a logged warning rather
// than failing daemon start-up; Build fails only when no adapter could
// be constructed. Absent hardware is not detected here: it surfaces
// later as an error from the adapter's InitializeDevices.
func Build(cfg config.Provider, log *slog.Logger) ([]Repository, error) {
	var out []Repository
	for typ, ctor := range registry {
		repo, err := ctor(cfg, log)
		if err != nil {
			log.Warn("back-end unavailable, skipping", "type", typ, "error", err)
			continue
		}
		out = append(out, repo)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no back-ends available", ErrHardwareUnreadable)
	}
	return out, nil
}
