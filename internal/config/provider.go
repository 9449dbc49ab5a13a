// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"github.com/codifryed/coolercontrold/internal/customsensor"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// Settings carries the daemon-wide knobs. The engine loop reads
// poll_rate, no_init, and startup_delay; the hwmon adapter reads
// thinkpad_full_speed; apply_on_boot and compress are carried through
// unchanged and are not read anywhere in this module.
type Settings struct {
	PollRateSec       float64
	ApplyOnBoot       bool
	ThinkpadFullSpeed bool
	NoInit            bool
	StartupDelaySec   float64
	Compress          bool
}

// ChannelSetting assigns a profile to one device channel.
type ChannelSetting struct {
	ChannelName string
	ProfileUID  string
}

// DeviceSettings is the set of channel assignments configured for one
// device.
type DeviceSettings struct {
	DeviceUID string
	Channels  []ChannelSetting
}

// Provider is the read-only configuration contract the engine core
// consumes. Implementations must be safe for concurrent use; the
// engine loop never writes through this interface.
type Provider interface {
	GetProfiles() ([]*profile.Profile, error)
	GetFunctions() ([]*profile.Function, error)
	GetCustomSensors() ([]*customsensor.Sensor, error)
	GetDeviceSettings(deviceUID string) (*DeviceSettings, error)
	GetSettings() (Settings, error)
}
