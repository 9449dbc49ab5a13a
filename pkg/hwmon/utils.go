// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
)

var hwmonDirPattern = regexp.MustCompile(`^hwmon\d+$`)

// IsHwmonDevice checks if a directory name represents a hwmon device.
func IsHwmonDevice(name string) bool {
	return hwmonDirPattern.MatchString(name)
}

// ExtractHwmonNumber extracts the numeric ID from a hwmon device name, used
// to keep discovered devices (and their derived channel names) in a stable
// order across restarts.
func ExtractHwmonNumber(hwmonName string) (int, error) {
	if !IsHwmonDevice(hwmonName) {
		return 0, fmt.Errorf("%w: invalid hwmon device name: %s", ErrInvalidConfig, hwmonName)
	}

	num, err := strconv.Atoi(strings.TrimPrefix(hwmonName, "hwmon"))
	if err != nil {
		return 0, fmt.Errorf("%w: failed to parse hwmon number: %w", ErrInvalidConfig, err)
	}

	return num, nil
}

// IsFileWritable checks if a sysfs attribute file exists and accepts writes.
// hwmon marks read-only sensors by simply omitting the write permission bit,
// so this is the only reliable way to detect a writable pwm/auto_point file
// short of attempting the write itself.
func IsFileWritable(path string) bool {
	if _, err := os.Stat(path); err != nil {
		return false
	}

	file, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return false
	}
	_ = file.Close()
	return true
}
