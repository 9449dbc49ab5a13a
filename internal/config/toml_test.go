// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codifryed/coolercontrold/internal/profile"
	"github.com/codifryed/coolercontrold/pkg/ident"
)

const sampleTOML = `
[settings]
poll_rate = 0.5
apply_on_boot = true
thinkpad_full_speed = true
no_init = false
startup_delay = 2.0
compress = true

[[function]]
name = "smooth"
kind = "standard"
response_delay = 3.0
deviance = 0.5

[[profile]]
name = "cpu-curve"
kind = "graph"
source_device_uid = "dev1"
source_temp_name = "value"
function_name = "smooth"

  [[profile.point]]
  temp = 0
  duty = 20

  [[profile.point]]
  temp = 100
  duty = 100

[[device]]
device_uid = "dev1"

  [[device.channel_setting]]
  channel = "fan1"
  profile_name = "cpu-curve"
`

func writeTOML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOMLProvider_RoundTripsSettings(t *testing.T) {
	path := writeTOML(t, sampleTOML)
	p, err := LoadTOMLProvider(path)
	require.NoError(t, err)

	settings, err := p.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, 0.5, settings.PollRateSec)
	assert.True(t, settings.ApplyOnBoot)
	assert.True(t, settings.ThinkpadFullSpeed)
	assert.Equal(t, 2.0, settings.StartupDelaySec)
	assert.True(t, settings.Compress)
}

func TestLoadTOMLProvider_ResolvesProfileFunctionAndChannelLinkage(t *testing.T) {
	path := writeTOML(t, sampleTOML)
	p, err := LoadTOMLProvider(path)
	require.NoError(t, err)

	profiles, err := p.GetProfiles()
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	prof := profiles[0]
	assert.Equal(t, profile.KindGraph, prof.Kind)
	assert.Equal(t, "dev1", prof.Source.DeviceUID)
	require.Len(t, prof.Points, 2)

	functions, err := p.GetFunctions()
	require.NoError(t, err)
	require.Len(t, functions, 1)
	assert.Equal(t, prof.FunctionUID, functions[0].UID)

	wantProfileUID, err := ident.ProfileUID("graph", "cpu-curve")
	require.NoError(t, err)
	assert.Equal(t, wantProfileUID, prof.UID)

	ds, err := p.GetDeviceSettings("dev1")
	require.NoError(t, err)
	require.Len(t, ds.Channels, 1)
	assert.Equal(t, "fan1", ds.Channels[0].ChannelName)
	assert.Equal(t, wantProfileUID, ds.Channels[0].ProfileUID)
}

func TestLoadTOMLProvider_UnknownDeviceSettingsReturnsSentinelError(t *testing.T) {
	path := writeTOML(t, sampleTOML)
	p, err := LoadTOMLProvider(path)
	require.NoError(t, err)

	_, err = p.GetDeviceSettings("missing-device")
	assert.ErrorIs(t, err, ErrDeviceSettingsNotFound)
}

func TestLoadTOMLProvider_MissingFileReturnsLoadFailed(t *testing.T) {
	_, err := LoadTOMLProvider(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	assert.ErrorIs(t, err, ErrLoadFailed)
}

func TestLoadTOMLProvider_DefaultsPollRateWhenUnset(t *testing.T) {
	path := writeTOML(t, "[settings]\napply_on_boot = false\n")
	p, err := LoadTOMLProvider(path)
	require.NoError(t, err)

	settings, err := p.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, 1.0, settings.PollRateSec)
}

func TestWriteSample_CreatesReadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	require.NoError(t, WriteSample(path))

	p, err := LoadTOMLProvider(path)
	require.NoError(t, err)
	settings, err := p.GetSettings()
	require.NoError(t, err)
	assert.Equal(t, 1.0, settings.PollRateSec)
	assert.True(t, settings.ApplyOnBoot)
}
