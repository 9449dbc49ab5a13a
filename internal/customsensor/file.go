// SPDX-License-Identifier: BSD-3-Clause

package customsensor

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	fileSensorMaxBytes  = 15
	fileSensorMaxMillis = 120_000
)

// ReadFileSensor reads and validates a File custom sensor's backing path: content must be at most 15 bytes, a base-10 integer
// number of millidegrees Celsius in [0, 120000]; the return value is in
// degrees Celsius (millidegrees / 1000, so it may be fractional).
func ReadFileSensor(path string) (float64, error) {
	if path == "" {
		return 0, ErrFilePathEmpty
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	if len(raw) > fileSensorMaxBytes {
		return 0, fmt.Errorf("%w: %d bytes", ErrFileContentTooLarge, len(raw))
	}

	s := strings.TrimSpace(string(raw))
	millis, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrFileContentInvalid, s)
	}
	if millis < 0 || millis > fileSensorMaxMillis {
		return 0, fmt.Errorf("%w: %d", ErrFileContentOutOfRange, millis)
	}

	return float64(millis) / 1000.0, nil
}
