// SPDX-License-Identifier: BSD-3-Clause

package device

import "errors"

var (
	// ErrDeviceNotFound indicates a lookup referenced a UID the registry does not hold.
	ErrDeviceNotFound = errors.New("device not found")
	// ErrSensorNotFound indicates a lookup referenced a temperature or channel name the device does not expose.
	ErrSensorNotFound = errors.New("sensor not found on device")
	// ErrAlreadyRegistered indicates a device with the same UID is already present in the registry.
	ErrAlreadyRegistered = errors.New("device already registered")
	// ErrInvalidUID indicates an empty or malformed device UID.
	ErrInvalidUID = errors.New("invalid device UID")
)
