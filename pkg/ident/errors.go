// SPDX-License-Identifier: BSD-3-Clause

package ident

import "errors"

var (
	// ErrEmptyName indicates that an empty name component was supplied for UID derivation.
	ErrEmptyName = errors.New("name component for UID derivation cannot be empty")
	// ErrInvalidUUID indicates that a string did not parse as a valid UUID.
	ErrInvalidUUID = errors.New("invalid UUID format")
)
