// SPDX-License-Identifier: BSD-3-Clause

// Package backend declares the Repository contract every device
// back-end adapter implements and a small factory for
// constructing the adapters this module ships: hwmon, AMD GPU, Nvidia,
// liquidctl, service-plugin, and custom-sensors. Each adapter lives in
// its own sub-package; the hwmon and AMD GPU adapters build on the
// discovery/IO code in pkg/hwmon.
package backend
