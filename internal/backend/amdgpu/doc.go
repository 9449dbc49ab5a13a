// SPDX-License-Identifier: BSD-3-Clause

// Package amdgpu implements backend.Repository for AMD GPUs exposed
// through the kernel amdgpu driver's hwmon interface.
// On RDNA3/4 hardware with the `gpu_od/fan_ctrl` overdrive sysfs tree
// present and the ppfeaturemask overdrive bit set, duty is expressed
// as a flat curve: two points at fixed 0°C and 100°C (the card's own
// reported temperature range is not read), both
// carrying the same duty, so a single fixed/graph-evaluated duty value
// can still be pushed through hardware that only accepts curves.
// Cards without that overdrive tree fall back to plain hwmon pwm1
// semantics, identical to package hwmon.
package amdgpu
