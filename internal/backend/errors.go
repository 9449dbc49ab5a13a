// SPDX-License-Identifier: BSD-3-Clause

package backend

import "errors"

var (
	// ErrDeviceBusy indicates a call could not acquire the device's per-device mutex before its deadline.
	ErrDeviceBusy = errors.New("device busy")
	// ErrTimeout indicates a back-end call exceeded its per-call budget.
	ErrTimeout = errors.New("back-end call timed out")
	// ErrBackendWriteFailed indicates a sysfs write was denied or a driver rejected a command.
	ErrBackendWriteFailed = errors.New("back-end write failed")
	// ErrUnsupportedChannel indicates a setting was requested on a channel that does not support it (e.g. speed_profile on a non-auto_hw_curve channel).
	ErrUnsupportedChannel = errors.New("channel does not support requested setting")
	// ErrHardwareUnreadable indicates initialize_devices() could not read required hardware state.
	ErrHardwareUnreadable = errors.New("hardware unreadable")
	// ErrUnknownBackend indicates the factory was asked for a device.Type it has no adapter for.
	ErrUnknownBackend = errors.New("unknown back-end type")
)
