// SPDX-License-Identifier: BSD-3-Clause

// Package hwmon talks to the Linux kernel's hwmon subsystem through sysfs —
// the /sys/class/hwmon/hwmonN device directories that fan and temperature
// controller drivers (nct6775, k10temp, it87, and the NZXT/Corsair AIO
// drivers among them) expose. It gives the hwmon backend adapter discovery
// of devices and channels, context-aware reads and writes of their
// attribute files, and the handful of hardware-specific conversions those
// files require:
//
//   - pwm[x] values are 0-255, not the 0-100% duty the rest of the daemon
//     works in; DutyToPWM and PWMToDuty convert between them.
//   - fan[x]_input reports a sentinel of 65535 (or higher) while a fan is
//     still spinning up, rather than a real tachometer count; DecodeFanRPM
//     clamps it to zero.
//   - the Kraken3 family (NZXT Kraken X3/Z3) exposes a fixed 40-point curve
//     pinned to one-degree buckets from 20 to 59 Celsius instead of letting
//     a curve be placed freely; InterpolateKrakenBuckets resamples a user
//     graph onto those buckets.
//
// # Discovery
//
// A Discoverer walks /sys/class/hwmon/hwmonN/name to identify each device,
// then scans its directory for temp*, fan*, and pwm* attribute files,
// grouping them into SensorInfo by channel index:
//
//	discoverer := hwmon.NewDiscoverer(
//		hwmon.WithDiscoveryPath(hwmon.DefaultHwmonPath),
//		hwmon.WithDiscoveryTimeout(8*time.Second),
//	)
//	devices, err := discoverer.DiscoverDevices(ctx)
//
// Discovery results are cached for CacheTTL (enabled by default) so a
// reinitialize doesn't re-stat every attribute file on the next poll tick.
//
// # Reading and writing
//
// ReadIntCtx and WriteIntCtx perform a single attribute file access, wrapped
// in a goroutine so a stuck sysfs read (seen on some USB-attached
// controllers) is bounded by the caller's context instead of hanging the
// poll loop:
//
//	path, _ := sensor.GetAttributePath(hwmon.AttributeInput)
//	raw, err := hwmon.ReadIntCtx(ctx, path)
//	temp := hwmon.NewTemperatureValue(int64(raw)).Celsius()
//
// # Error handling
//
// Errors are sentinel values joined with errors.Is-compatible wrapping:
//
//	if _, err := hwmon.ReadIntCtx(ctx, path); err != nil {
//		switch {
//		case errors.Is(err, hwmon.ErrFileNotFound):
//			// sensor disappeared, likely unplugged
//		case errors.Is(err, hwmon.ErrOperationTimeout):
//			// sysfs read exceeded the caller's deadline
//		}
//	}
package hwmon
