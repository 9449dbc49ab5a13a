// SPDX-License-Identifier: BSD-3-Clause

package commander

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codifryed/coolercontrold/internal/backend"
	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/processor"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// fakeRepository is a minimal backend.Repository recording applied duties.
type fakeRepository struct {
	name    string
	uids    []string
	mu      sync.Mutex
	applied map[string]float64
}

func newFakeRepository(name string, uids ...string) *fakeRepository {
	return &fakeRepository{name: name, uids: uids, applied: map[string]float64{}}
}

func (f *fakeRepository) Name() string            { return f.name }
func (f *fakeRepository) Devices() []string        { return f.uids }
func (f *fakeRepository) InitializeDevices(ctx context.Context, r *device.Registry) error   { return nil }
func (f *fakeRepository) PreloadStatuses(ctx context.Context) error                          { return nil }
func (f *fakeRepository) UpdateStatuses(ctx context.Context, r *device.Registry) error        { return nil }
func (f *fakeRepository) ApplySettingReset(ctx context.Context, deviceUID, channel string) error {
	return nil
}
func (f *fakeRepository) ApplySettingManualControl(ctx context.Context, deviceUID, channel string) error {
	return nil
}
func (f *fakeRepository) ApplySettingSpeedFixed(ctx context.Context, deviceUID, channel string, dutyPct float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.applied[deviceUID+"/"+channel] = dutyPct
	return nil
}
func (f *fakeRepository) ApplySettingSpeedProfile(ctx context.Context, deviceUID, channel string, source profile.TempSource, points []profile.GraphPoint) error {
	return nil
}
func (f *fakeRepository) ApplySettingLighting(ctx context.Context, deviceUID, channel string, setting backend.LightingSetting) error {
	return nil
}
func (f *fakeRepository) ApplySettingLCD(ctx context.Context, deviceUID, channel string, setting backend.LCDSetting) error {
	return nil
}
func (f *fakeRepository) ApplySettingPWMMode(ctx context.Context, deviceUID, channel string, mode backend.PWMMode) error {
	return nil
}
func (f *fakeRepository) ReinitializeDevices(ctx context.Context, r *device.Registry) error { return nil }
func (f *fakeRepository) Shutdown(ctx context.Context) error                                 { return nil }

func (f *fakeRepository) dutyFor(deviceUID, channel string) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.applied[deviceUID+"/"+channel]
	return d, ok
}

func TestDispatcher_RoutesByDeviceUID(t *testing.T) {
	repo := newFakeRepository("hwmon", "dev1")
	d := NewDispatcher([]backend.Repository{repo})

	require.NoError(t, d.ApplyDuty(context.Background(), "dev1", "fan1", 42))
	duty, ok := repo.dutyFor("dev1", "fan1")
	require.True(t, ok)
	assert.Equal(t, 42.0, duty)
}

func TestDispatcher_UnknownDeviceErrors(t *testing.T) {
	d := NewDispatcher(nil)
	err := d.ApplyDuty(context.Background(), "missing", "fan1", 10)
	assert.ErrorIs(t, err, backend.ErrUnknownBackend)
}

func TestDispatcher_Rebuild(t *testing.T) {
	repoA := newFakeRepository("a", "dev1")
	d := NewDispatcher([]backend.Repository{repoA})

	repoB := newFakeRepository("b", "dev1")
	d.Rebuild([]backend.Repository{repoB})

	require.NoError(t, d.ApplyDuty(context.Background(), "dev1", "fan1", 55))
	_, onA := repoA.dutyFor("dev1", "fan1")
	duty, onB := repoB.dutyFor("dev1", "fan1")
	assert.False(t, onA)
	require.True(t, onB)
	assert.Equal(t, 55.0, duty)
}

func TestScheduler_RejectsWrongKind(t *testing.T) {
	store := processor.NewMapStore()
	pipeline := processor.NewPipeline(device.NewRegistry(), store, 1.0, nil)
	g := NewGraphProfileCommander(pipeline, NewDispatcher(nil), store, nil)

	err := g.ScheduleSetting(ChannelKey{DeviceUID: "dev1", Channel: "fan1"}, &profile.Profile{Kind: profile.KindMix})
	assert.ErrorIs(t, err, ErrWrongCommander)
}

func TestGroup_ScheduleAndProcessGraphProfile(t *testing.T) {
	reg := device.NewRegistry()
	dev := device.NewDevice("dev1", "dev1", device.TypeHwmon, device.Info{})
	require.NoError(t, reg.Register(dev))
	dev.PushStatus(device.Status{Temps: []device.TempStatus{{Name: "value", TempC: 50}}})

	store := processor.NewMapStore()
	store.Profiles["fixed1"] = &profile.Profile{UID: "fixed1", Kind: profile.KindFixed, FixedDutyPct: 75}

	pipeline := processor.NewPipeline(reg, store, 1.0, nil)
	repo := newFakeRepository("hwmon", "dev1")
	dispatch := NewDispatcher([]backend.Repository{repo})
	group := NewGroup(pipeline, dispatch, store, nil)

	key := ChannelKey{DeviceUID: "dev1", Channel: "fan1"}
	require.NoError(t, group.ScheduleSetting(key, store.Profiles["fixed1"]))

	group.ProcessAndApply(context.Background())

	duty, ok := repo.dutyFor("dev1", "fan1")
	require.True(t, ok)
	assert.Equal(t, 75.0, duty)
}

func TestGroup_ClearChannelSettingAllCommanders(t *testing.T) {
	store := processor.NewMapStore()
	store.Profiles["fixed1"] = &profile.Profile{UID: "fixed1", Kind: profile.KindFixed, FixedDutyPct: 10}
	pipeline := processor.NewPipeline(device.NewRegistry(), store, 1.0, nil)
	group := NewGroup(pipeline, NewDispatcher(nil), store, nil)

	key := ChannelKey{DeviceUID: "dev1", Channel: "fan1"}
	require.NoError(t, group.ScheduleSetting(key, store.Profiles["fixed1"]))

	group.ClearChannelSettingAllCommanders(key)

	toApply := group.Graph.ProcessAllProfiles()
	assert.Empty(t, toApply)
}
