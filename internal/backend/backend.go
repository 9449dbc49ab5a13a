// SPDX-License-Identifier: BSD-3-Clause

package backend

import (
	"context"

	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// LightingSetting describes a requested lighting mode; the concrete
// mode vocabulary is adapter-specific and out of scope here beyond the
// pass-through shape.
type LightingSetting struct {
	Mode   string
	Colors [][3]uint8
}

// LCDSetting describes a requested LCD mode; image rendering itself is
// out of scope.
type LCDSetting struct {
	Mode  string
	Image []byte
}

// PWMMode selects a hwmon pwmN_mode value, where the adapter supports it.
type PWMMode int

// Repository is the contract every device back-end adapter implements.
// All methods accept a context so the engine loop can bound per-call
// latency.
type Repository interface {
	// Name identifies the back-end for logging/diagnostics.
	Name() string

	// InitializeDevices discovers hardware, registers devices into the
	// shared registry, and fills their Info and an initial Status. It
	// fails if hardware required by this back-end is unreadable.
	InitializeDevices(ctx context.Context, registry *device.Registry) error

	// Devices returns the UIDs of devices this adapter owns.
	Devices() []string

	// PreloadStatuses performs optional pre-tick concurrent I/O; adapters with nothing to prefetch may no-op.
	PreloadStatuses(ctx context.Context) error

	// UpdateStatuses pushes one new Status snapshot per owned device
	// into the registry.
	UpdateStatuses(ctx context.Context, registry *device.Registry) error

	ApplySettingReset(ctx context.Context, deviceUID, channel string) error
	ApplySettingManualControl(ctx context.Context, deviceUID, channel string) error
	ApplySettingSpeedFixed(ctx context.Context, deviceUID, channel string, dutyPct float64) error
	ApplySettingSpeedProfile(ctx context.Context, deviceUID, channel string, source profile.TempSource, points []profile.GraphPoint) error
	ApplySettingLighting(ctx context.Context, deviceUID, channel string, setting LightingSetting) error
	ApplySettingLCD(ctx context.Context, deviceUID, channel string, setting LCDSetting) error
	ApplySettingPWMMode(ctx context.Context, deviceUID, channel string, mode PWMMode) error

	// ReinitializeDevices is called after system resume.
	ReinitializeDevices(ctx context.Context, registry *device.Registry) error

	// Shutdown releases resources, applying safe defaults (typically
	// reset to auto) per writable channel.
	Shutdown(ctx context.Context) error
}
