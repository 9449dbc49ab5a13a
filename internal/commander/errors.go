// SPDX-License-Identifier: BSD-3-Clause

package commander

import "errors"

// ErrWrongCommander indicates a profile was scheduled on the
// commander for a different Kind.
var ErrWrongCommander = errors.New("profile kind does not match this commander")
