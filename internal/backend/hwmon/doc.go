// SPDX-License-Identifier: BSD-3-Clause

// Package hwmon adapts the kernel hwmon sysfs interface
// (/sys/class/hwmon) into a backend.Repository, built on the low-level sysfs primitives and device/sensor
// discovery in pkg/hwmon.
package hwmon
