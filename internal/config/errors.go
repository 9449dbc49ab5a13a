// SPDX-License-Identifier: BSD-3-Clause

package config

import "errors"

var (
	// ErrDeviceSettingsNotFound indicates no settings are configured for a device UID.
	ErrDeviceSettingsNotFound = errors.New("device settings not found")
	// ErrLoadFailed indicates the backing config source could not be read or parsed.
	ErrLoadFailed = errors.New("failed to load configuration")
	// ErrSaveFailed indicates the backing config source could not be encoded or written.
	ErrSaveFailed = errors.New("failed to save configuration")
)
