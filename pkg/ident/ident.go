// SPDX-License-Identifier: BSD-3-Clause

// Package ident derives stable identifiers for devices, profiles,
// functions and custom sensors.
//
// Unlike pkg/id in the reference daemon core (random uuid.New, persisted
// to a file so it survives restarts), identifiers here are deterministic:
// the same (kind, name, index, driver id) tuple always yields the same
// UID, so a device gets the same UID across restarts without needing any
// on-disk state. This matches the engine's requirement that a device UID
// Package ident derives stable identifiers for devices, profiles,
// functions and custom sensors.
// Unlike pkg/id in the reference daemon core (random uuid.New, persisted
// to a file so it survives restarts), identifiers here are deterministic:
// the same (kind, name, index, driver id) tuple always yields the same
// UID, so a device gets the same UID across restarts without needing any
// on-disk state. This matches the engine's requirement that a device UID
// be derivable purely from its discovered attributes.
package ident

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// namespace is a fixed, arbitrary UUID used as the root for all
// name-based (v5) UIDs this package generates. Changing it would change
// every derived UID, so it must never change across releases.
var namespace = uuid.MustParse("c0071e2c-0000-4000-8000-000000000001")

// DeviceUID derives a stable UID for a physical or virtual device from
// its type, name, index and an optional driver-reported unique
// identifier (e.g. a serial number). driverID may be empty when the
// driver does not expose one; the UID is still stable across restarts
// because name and index are themselves stable for a given back-end.
func DeviceUID(deviceType, name string, index int, driverID string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}
	key := fmt.Sprintf("device|%s|%s|%d|%s", deviceType, name, index, driverID)
	return uuid.NewSHA1(namespace, []byte(key)).String(), nil
}

// ProfileUID derives a stable UID for a profile from its kind and name.
func ProfileUID(kind, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}
	key := fmt.Sprintf("profile|%s|%s", kind, name)
	return uuid.NewSHA1(namespace, []byte(key)).String(), nil
}

// FunctionUID derives a stable UID for a function from its name.
func FunctionUID(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}
	return uuid.NewSHA1(namespace, []byte("function|"+name)).String(), nil
}

// CustomSensorUID derives a stable ID for a custom sensor from its kind
// and name.
func CustomSensorUID(kind, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrEmptyName
	}
	key := fmt.Sprintf("customsensor|%s|%s", kind, name)
	return uuid.NewSHA1(namespace, []byte(key)).String(), nil
}

// New returns a fresh random UID, for cases (test fixtures, ephemeral
// schedules) that do not need determinism.
func New() string {
	return uuid.New().String()
}

// Valid reports whether s parses as a UUID.
func Valid(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
