// SPDX-License-Identifier: BSD-3-Clause

//go:build linux
// +build linux

package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicCreateFile_CreatesNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, AtomicCreateFile(path, []byte("hello"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(got))
}

func TestAtomicCreateFile_FailsIfAlreadyExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, AtomicCreateFile(path, []byte("first"), 0o644))

	err := AtomicCreateFile(path, []byte("second"), 0o644)
	assert.ErrorIs(t, err, ErrFileAlreadyExists)

	got, _ := os.ReadFile(path)
	assert.Equal(t, "first", string(got))
}

func TestAtomicCreateFile_LeavesNoTempFileOnSuccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, AtomicCreateFile(path, []byte("data"), 0o644))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.json", entries[0].Name())
}

func TestAtomicUpdateFile_CreatesWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "log.txt")
	require.NoError(t, AtomicUpdateFile(path, []byte("entry1"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "entry1", string(got))
}

func TestAtomicUpdateFile_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("original"), 0o644))

	require.NoError(t, AtomicUpdateFile(path, []byte("replacement"), 0o644))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "replacement", string(got))
}

func TestAtomicUpdateFile_SetsRequestedPermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.json")
	require.NoError(t, AtomicUpdateFile(path, []byte("secret"), 0o600))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
