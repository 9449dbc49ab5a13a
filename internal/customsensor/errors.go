// SPDX-License-Identifier: BSD-3-Clause

package customsensor

import "errors"

var (
	// ErrSensorNotFound indicates a lookup referenced an unknown custom sensor ID.
	ErrSensorNotFound = errors.New("custom sensor not found")
	// ErrAlreadyExists indicates a sensor with the same ID is already registered.
	ErrAlreadyExists = errors.New("custom sensor already exists")
	// ErrSelfReference indicates a sensor names itself as one of its own sources.
	ErrSelfReference = errors.New("custom sensor cannot reference itself as a source")
	// ErrNotOneLevel indicates an attempt to create a second hierarchy level (a child-of-a-child, or a source that is itself a parent).
	ErrNotOneLevel = errors.New("custom sensor hierarchy may only be one level deep")
	// ErrFileSensorHasSources indicates a File sensor was given sources (it must have zero).
	ErrFileSensorHasSources = errors.New("file sensor cannot have sources")
	// ErrOffsetSensorSourceCount indicates an Offset sensor was given a source count other than exactly one.
	ErrOffsetSensorSourceCount = errors.New("offset sensor requires exactly one source")
	// ErrLastChildOfParent indicates an attempt to remove a parent's sole remaining child without deleting the parent first.
	ErrLastChildOfParent = errors.New("cannot remove the last child of a parent; delete the parent instead")
	// ErrInUse indicates a sensor is still a source of another custom sensor and cannot be deleted.
	ErrInUse = errors.New("custom sensor is in use")
	// ErrFilePathEmpty indicates a File sensor has no configured path.
	ErrFilePathEmpty = errors.New("file sensor has no path configured")
	// ErrFileContentTooLarge indicates a file-backed sensor's content exceeded the 15-byte bound.
	ErrFileContentTooLarge = errors.New("file sensor content exceeds 15 bytes")
	// ErrFileContentInvalid indicates a file-backed sensor's content did not parse as a base-10 millidegree integer.
	ErrFileContentInvalid = errors.New("file sensor content is not a valid integer")
	// ErrFileContentOutOfRange indicates a file-backed sensor's parsed value fell outside [0, 120000] millidegrees.
	ErrFileContentOutOfRange = errors.New("file sensor content out of range")
)
