// SPDX-License-Identifier: BSD-3-Clause

package customsensor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sensor")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadFileSensor_ValidMillidegrees(t *testing.T) {
	path := writeTempFile(t, "45000")
	got, err := ReadFileSensor(path)
	require.NoError(t, err)
	assert.Equal(t, 45.0, got)
}

func TestReadFileSensor_TrimsWhitespace(t *testing.T) {
	path := writeTempFile(t, " 30000\n")
	got, err := ReadFileSensor(path)
	require.NoError(t, err)
	assert.Equal(t, 30.0, got)
}

func TestReadFileSensor_EmptyPath(t *testing.T) {
	_, err := ReadFileSensor("")
	assert.ErrorIs(t, err, ErrFilePathEmpty)
}

func TestReadFileSensor_TooLarge(t *testing.T) {
	path := writeTempFile(t, "1234567890123456")
	_, err := ReadFileSensor(path)
	assert.ErrorIs(t, err, ErrFileContentTooLarge)
}

func TestReadFileSensor_NotAnInteger(t *testing.T) {
	path := writeTempFile(t, "not-a-number")
	_, err := ReadFileSensor(path)
	assert.ErrorIs(t, err, ErrFileContentInvalid)
}

func TestReadFileSensor_OutOfRange(t *testing.T) {
	path := writeTempFile(t, "-5")
	_, err := ReadFileSensor(path)
	assert.ErrorIs(t, err, ErrFileContentOutOfRange)

	path2 := writeTempFile(t, "999999")
	_, err = ReadFileSensor(path2)
	assert.ErrorIs(t, err, ErrFileContentOutOfRange)
}
