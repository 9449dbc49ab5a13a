// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codifryed/coolercontrold/internal/backend"
	"github.com/codifryed/coolercontrold/internal/commander"
	"github.com/codifryed/coolercontrold/internal/config"
	"github.com/codifryed/coolercontrold/internal/customsensor"
	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/processor"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// fakeProvider is an in-memory config.Provider for engine tests.
type fakeProvider struct {
	profiles  []*profile.Profile
	functions []*profile.Function
	sensors   []*customsensor.Sensor
	settings  map[string]*config.DeviceSettings
	base      config.Settings
}

func newFakeProvider() *fakeProvider {
	return &fakeProvider{settings: map[string]*config.DeviceSettings{}, base: config.Settings{PollRateSec: 1.0}}
}

func (f *fakeProvider) GetProfiles() ([]*profile.Profile, error)         { return f.profiles, nil }
func (f *fakeProvider) GetFunctions() ([]*profile.Function, error)       { return f.functions, nil }
func (f *fakeProvider) GetCustomSensors() ([]*customsensor.Sensor, error) { return f.sensors, nil }
func (f *fakeProvider) GetSettings() (config.Settings, error)            { return f.base, nil }
func (f *fakeProvider) GetDeviceSettings(deviceUID string) (*config.DeviceSettings, error) {
	ds, ok := f.settings[deviceUID]
	if !ok {
		return nil, config.ErrDeviceSettingsNotFound
	}
	return ds, nil
}

func newTestEngine(t *testing.T, cfg config.Provider) *Engine {
	t.Helper()
	e := New(cfg, nil, nil, nil)

	reg := device.NewRegistry()
	dev := device.NewDevice("dev1", "dev1", device.TypeHwmon, device.Info{})
	require.NoError(t, reg.Register(dev))
	dev.PushStatus(device.Status{Temps: []device.TempStatus{{Name: "value", TempC: 50}}})

	store := newConfigStore(cfg)
	require.NoError(t, store.Refresh())

	pipeline := processor.NewPipeline(reg, store, 1.0, nil)
	dispatch := commander.NewDispatcher(nil)
	group := commander.NewGroup(pipeline, dispatch, store, nil)

	e.mu.Lock()
	e.registry, e.store, e.pipeline, e.group = reg, store, pipeline, group
	e.mu.Unlock()
	return e
}

func TestConfigStore_RefreshIndexesByUID(t *testing.T) {
	cfg := newFakeProvider()
	cfg.profiles = []*profile.Profile{{UID: "p1", Kind: profile.KindFixed, FixedDutyPct: 50}}
	cfg.functions = []*profile.Function{{UID: "f1", Kind: profile.FunctionStandard}}

	store := newConfigStore(cfg)
	require.NoError(t, store.Refresh())

	p, ok := store.Profile("p1")
	require.True(t, ok)
	assert.Equal(t, 50.0, p.FixedDutyPct)

	f, ok := store.Function("f1")
	require.True(t, ok)
	assert.Equal(t, profile.FunctionStandard, f.Kind)

	assert.Len(t, store.All(), 1)
}

func TestConfigStore_UnknownUIDNotFound(t *testing.T) {
	store := newConfigStore(newFakeProvider())
	require.NoError(t, store.Refresh())

	_, ok := store.Profile("missing")
	assert.False(t, ok)
}

func TestEngine_ScheduleAllChannelSettingsInstallsConfiguredProfiles(t *testing.T) {
	cfg := newFakeProvider()
	cfg.profiles = []*profile.Profile{{UID: "fixed1", Kind: profile.KindFixed, FixedDutyPct: 80}}
	cfg.settings["dev1"] = &config.DeviceSettings{
		DeviceUID: "dev1",
		Channels:  []config.ChannelSetting{{ChannelName: "fan1", ProfileUID: "fixed1"}},
	}

	e := newTestEngine(t, cfg)
	e.scheduleAllChannelSettings(e.group, e.registry)

	toApply := e.group.Graph.ProcessAllProfiles()
	duty, ok := toApply[commander.ChannelKey{DeviceUID: "dev1", Channel: "fan1"}]
	require.True(t, ok)
	assert.Equal(t, 80.0, duty)
}

func TestEngine_ScheduleOneIgnoresUnknownProfile(t *testing.T) {
	cfg := newFakeProvider()
	e := newTestEngine(t, cfg)

	e.scheduleOne(e.group, commander.ChannelKey{DeviceUID: "dev1", Channel: "fan1"}, "does-not-exist")

	toApply := e.group.Graph.ProcessAllProfiles()
	assert.Empty(t, toApply)
}

func TestEngine_ApplyChannelSettingSchedulesAfterRefresh(t *testing.T) {
	cfg := newFakeProvider()
	e := newTestEngine(t, cfg)

	cfg.profiles = []*profile.Profile{{UID: "fixed1", Kind: profile.KindFixed, FixedDutyPct: 33}}

	require.NoError(t, e.ApplyChannelSetting(context.Background(), "dev1", "fan1", "fixed1"))

	toApply := e.group.Graph.ProcessAllProfiles()
	duty, ok := toApply[commander.ChannelKey{DeviceUID: "dev1", Channel: "fan1"}]
	require.True(t, ok)
	assert.Equal(t, 33.0, duty)
}

func TestEngine_ResetChannelSettingClearsCommandersAndAppliesReset(t *testing.T) {
	cfg := newFakeProvider()
	cfg.profiles = []*profile.Profile{{UID: "fixed1", Kind: profile.KindFixed, FixedDutyPct: 33}}
	e := newTestEngine(t, cfg)

	key := commander.ChannelKey{DeviceUID: "dev1", Channel: "fan1"}
	require.NoError(t, e.group.ScheduleSetting(key, cfg.profiles[0]))

	require.NoError(t, e.ResetChannelSetting(context.Background(), "dev1", "fan1"))

	toApply := e.group.Graph.ProcessAllProfiles()
	assert.Empty(t, toApply)
}

func TestEngine_OnProfileChangedRefreshesStore(t *testing.T) {
	cfg := newFakeProvider()
	e := newTestEngine(t, cfg)

	cfg.profiles = []*profile.Profile{{UID: "p2", Kind: profile.KindFixed, FixedDutyPct: 10}}
	require.NoError(t, e.OnProfileChanged(context.Background(), "p2", "added"))

	_, ok := e.store.Profile("p2")
	assert.True(t, ok)
}

func TestEngine_WakeFromSleepResetsHistoryAndRebuildsDispatcher(t *testing.T) {
	cfg := newFakeProvider()
	e := newTestEngine(t, cfg)

	dev, err := e.registry.Get("dev1")
	require.NoError(t, err)
	require.NotNil(t, dev)

	e.mu.Lock()
	e.repos = []backend.Repository{}
	e.mu.Unlock()

	require.NoError(t, e.WakeFromSleep(context.Background()))

	_, ok := dev.Latest()
	assert.False(t, ok)
}
