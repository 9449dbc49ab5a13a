// SPDX-License-Identifier: BSD-3-Clause

package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/profile"
)

func newTestRegistry(t *testing.T, deviceUID, tempName string, temps ...float64) *device.Registry {
	t.Helper()
	reg := device.NewRegistry()
	dev := device.NewDevice(deviceUID, deviceUID, device.TypeHwmon, device.Info{})
	require.NoError(t, reg.Register(dev))
	for _, temp := range temps {
		dev.PushStatus(device.Status{Temps: []device.TempStatus{{Name: tempName, TempC: temp}}})
	}
	return reg
}

func graphProfile(uid, funcUID, deviceUID, tempName string, points ...profile.GraphPoint) *profile.Profile {
	return &profile.Profile{
		UID:         uid,
		Name:        uid,
		Kind:        profile.KindGraph,
		Source:      profile.TempSource{DeviceUID: deviceUID, TempName: tempName},
		FunctionUID: funcUID,
		Points:      points,
	}
}

func TestPipelineTick_FixedProfile(t *testing.T) {
	store := processorStoreWithFixed(50)
	p := NewPipeline(device.NewRegistry(), store, 1.0, nil)

	duty, emitted, err := p.Tick("fixed1")
	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, 50.0, duty)
}

func processorStoreWithFixed(duty float64) *MapStore {
	store := NewMapStore()
	store.Profiles["fixed1"] = &profile.Profile{UID: "fixed1", Kind: profile.KindFixed, FixedDutyPct: duty}
	return store
}

func TestPipelineTick_GraphIdentity(t *testing.T) {
	reg := newTestRegistry(t, "dev1", "value", 60)
	store := NewMapStore()
	store.Functions["fn1"] = &profile.Function{UID: "fn1", Kind: profile.FunctionIdentity}
	store.Profiles["g1"] = graphProfile("g1", "fn1", "dev1", "value",
		profile.GraphPoint{TempC: 0, DutyPct: 20},
		profile.GraphPoint{TempC: 100, DutyPct: 100},
	)

	p := NewPipeline(reg, store, 1.0, nil)
	duty, emitted, err := p.Tick("g1")
	require.NoError(t, err)
	assert.True(t, emitted)
	assert.InDelta(t, 68, duty, 0.001)
}

func TestPipelineTick_UnknownProfile(t *testing.T) {
	p := NewPipeline(device.NewRegistry(), NewMapStore(), 1.0, nil)
	_, emitted, err := p.Tick("missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.False(t, emitted)
}

func TestPipelineTick_UnresolvedSourceUsesEmergencyTemp(t *testing.T) {
	store := NewMapStore()
	store.Functions["fn1"] = &profile.Function{UID: "fn1", Kind: profile.FunctionIdentity}
	store.Profiles["g1"] = graphProfile("g1", "fn1", "missing-device", "value",
		profile.GraphPoint{TempC: 0, DutyPct: 0},
		profile.GraphPoint{TempC: 100, DutyPct: 100},
	)

	p := NewPipeline(device.NewRegistry(), store, 1.0, nil)
	duty, emitted, err := p.Tick("g1")
	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, device.EmergencyTempC, duty)
}

func TestPipelineTick_MixMax(t *testing.T) {
	reg := newTestRegistry(t, "cpu", "value", 40)
	devGPU := device.NewDevice("gpu", "gpu", device.TypeGPUAMD, device.Info{})
	require.NoError(t, reg.Register(devGPU))
	devGPU.PushStatus(device.Status{Temps: []device.TempStatus{{Name: "value", TempC: 80}}})

	store := NewMapStore()
	store.Functions["fn1"] = &profile.Function{UID: "fn1", Kind: profile.FunctionIdentity}
	store.Profiles["cpuGraph"] = graphProfile("cpuGraph", "fn1", "cpu", "value",
		profile.GraphPoint{TempC: 0, DutyPct: 0}, profile.GraphPoint{TempC: 100, DutyPct: 100})
	store.Profiles["gpuGraph"] = graphProfile("gpuGraph", "fn1", "gpu", "value",
		profile.GraphPoint{TempC: 0, DutyPct: 0}, profile.GraphPoint{TempC: 100, DutyPct: 100})
	store.Profiles["mix1"] = &profile.Profile{
		UID: "mix1", Kind: profile.KindMix,
		MemberUIDs:  []string{"cpuGraph", "gpuGraph"},
		MixFunction: profile.MixMax,
	}

	p := NewPipeline(reg, store, 1.0, nil)
	duty, emitted, err := p.Tick("mix1")
	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, 80.0, duty)
}

func TestPipelineTick_OverlayAddsOffset(t *testing.T) {
	reg := newTestRegistry(t, "dev1", "value", 50)
	store := NewMapStore()
	store.Functions["fn1"] = &profile.Function{UID: "fn1", Kind: profile.FunctionIdentity}
	store.Profiles["base"] = graphProfile("base", "fn1", "dev1", "value",
		profile.GraphPoint{TempC: 0, DutyPct: 50}, profile.GraphPoint{TempC: 100, DutyPct: 50})
	store.Profiles["overlay1"] = &profile.Profile{
		UID: "overlay1", Kind: profile.KindOverlay,
		MemberUID:    "base",
		OffsetPoints: []profile.OffsetPoint{{DutyPct: 0, OffsetDutyPct: 10}, {DutyPct: 100, OffsetDutyPct: 10}},
	}

	p := NewPipeline(reg, store, 1.0, nil)
	duty, emitted, err := p.Tick("overlay1")
	require.NoError(t, err)
	assert.True(t, emitted)
	assert.Equal(t, 60.0, duty)
}

func TestPipelineTick_CyclicMixHitsMaxDepth(t *testing.T) {
	store := NewMapStore()
	store.Profiles["a"] = &profile.Profile{UID: "a", Kind: profile.KindMix, MemberUIDs: []string{"b"}, MixFunction: profile.MixMax}
	store.Profiles["b"] = &profile.Profile{UID: "b", Kind: profile.KindMix, MemberUIDs: []string{"a"}, MixFunction: profile.MixMax}

	p := NewPipeline(device.NewRegistry(), store, 1.0, nil)
	_, _, err := p.Tick("a")
	assert.ErrorIs(t, err, ErrMaxDepthExceeded)
}

func TestClearProfile_ResetsPerProfileState(t *testing.T) {
	store := processorStoreWithFixed(50)
	p := NewPipeline(device.NewRegistry(), store, 1.0, nil)
	_, _, err := p.Tick("fixed1")
	require.NoError(t, err)

	p.mu.Lock()
	_, hasThreshold := p.thresholds["fixed1"]
	p.mu.Unlock()
	assert.True(t, hasThreshold)

	p.ClearProfile("fixed1")

	p.mu.Lock()
	_, hasThresholdAfter := p.thresholds["fixed1"]
	_, hasLatchAfter := p.latches["fixed1"]
	p.mu.Unlock()
	assert.False(t, hasThresholdAfter)
	assert.False(t, hasLatchAfter)
}

func TestCombineMix(t *testing.T) {
	duties := []float64{20, 80, 40}
	assert.Equal(t, 20.0, combineMix(profile.MixMin, duties))
	assert.Equal(t, 80.0, combineMix(profile.MixMax, duties))
	assert.InDelta(t, 46.666, combineMix(profile.MixAvg, duties), 0.01)
	assert.Equal(t, 60.0, combineMix(profile.MixDelta, duties))
}
