// SPDX-License-Identifier: BSD-3-Clause

package customsensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codifryed/coolercontrold/internal/device"
)

func newTestEngine(t *testing.T, deviceUID, tempName string, tempC float64) *Engine {
	t.Helper()
	reg := device.NewRegistry()
	dev := device.NewDevice(deviceUID, deviceUID, device.TypeHwmon, device.Info{})
	require.NoError(t, reg.Register(dev))
	dev.PushStatus(device.Status{Temps: []device.TempStatus{{Name: tempName, TempC: tempC}}})
	return New(reg, nil)
}

func TestAddSensor_RejectsSelfReference(t *testing.T) {
	e := newTestEngine(t, "dev1", "value", 50)
	s := &Sensor{ID: "s1", Kind: KindMix, Sources: []SourceRef{{SensorID: "s1"}}}
	assert.ErrorIs(t, e.AddSensor(s), ErrSelfReference)
}

func TestAddSensor_RejectsSecondHierarchyLevel(t *testing.T) {
	e := newTestEngine(t, "dev1", "value", 50)

	child := &Sensor{ID: "child", Kind: KindOffset, Sources: []SourceRef{{DeviceUID: "dev1", TempName: "value"}}, OffsetC: 2}
	require.NoError(t, e.AddSensor(child))

	parent := &Sensor{ID: "parent", Kind: KindOffset, Sources: []SourceRef{{SensorID: "child"}}, OffsetC: 3}
	require.NoError(t, e.AddSensor(parent))

	grandparent := &Sensor{ID: "grandparent", Kind: KindOffset, Sources: []SourceRef{{SensorID: "parent"}}, OffsetC: 1}
	assert.ErrorIs(t, e.AddSensor(grandparent), ErrNotOneLevel)
}

func TestAddSensor_RejectsChildBecomingAnotherParentsChildTwice(t *testing.T) {
	e := newTestEngine(t, "dev1", "value", 50)

	child := &Sensor{ID: "child", Kind: KindOffset, Sources: []SourceRef{{DeviceUID: "dev1", TempName: "value"}}}
	require.NoError(t, e.AddSensor(child))

	parent1 := &Sensor{ID: "parent1", Kind: KindOffset, Sources: []SourceRef{{SensorID: "child"}}}
	require.NoError(t, e.AddSensor(parent1))

	parent2 := &Sensor{ID: "parent2", Kind: KindOffset, Sources: []SourceRef{{SensorID: "parent1"}}}
	assert.ErrorIs(t, e.AddSensor(parent2), ErrNotOneLevel)
}

func TestAddSensor_FileSensorRejectsSources(t *testing.T) {
	e := newTestEngine(t, "dev1", "value", 50)
	s := &Sensor{ID: "f1", Kind: KindFile, FilePath: "/tmp/x", Sources: []SourceRef{{DeviceUID: "dev1", TempName: "value"}}}
	assert.ErrorIs(t, e.AddSensor(s), ErrFileSensorHasSources)
}

func TestAddSensor_OffsetRequiresExactlyOneSource(t *testing.T) {
	e := newTestEngine(t, "dev1", "value", 50)
	s := &Sensor{ID: "o1", Kind: KindOffset}
	assert.ErrorIs(t, e.AddSensor(s), ErrOffsetSensorSourceCount)
}

func TestRemoveSource_RejectsRemovingLastChild(t *testing.T) {
	e := newTestEngine(t, "dev1", "value", 50)
	child := &Sensor{ID: "child", Kind: KindOffset, Sources: []SourceRef{{DeviceUID: "dev1", TempName: "value"}}}
	require.NoError(t, e.AddSensor(child))
	parent := &Sensor{ID: "parent", Kind: KindOffset, Sources: []SourceRef{{SensorID: "child"}}}
	require.NoError(t, e.AddSensor(parent))

	assert.ErrorIs(t, e.RemoveSource("parent", "child"), ErrLastChildOfParent)
}

func TestDeleteSensor_RejectsWhenReferencedByParent(t *testing.T) {
	e := newTestEngine(t, "dev1", "value", 50)
	child := &Sensor{ID: "child", Kind: KindOffset, Sources: []SourceRef{{DeviceUID: "dev1", TempName: "value"}}}
	require.NoError(t, e.AddSensor(child))
	parent := &Sensor{ID: "parent", Kind: KindOffset, Sources: []SourceRef{{SensorID: "child"}}}
	require.NoError(t, e.AddSensor(parent))

	assert.ErrorIs(t, e.DeleteSensor("child"), ErrInUse)
	assert.NoError(t, e.DeleteSensor("parent"))
	assert.NoError(t, e.DeleteSensor("child"))
}

func TestUpdateStatuses_ParentReadsChildsSameTickResult(t *testing.T) {
	e := newTestEngine(t, "dev1", "value", 50)

	child := &Sensor{ID: "child", Kind: KindOffset, Sources: []SourceRef{{DeviceUID: "dev1", TempName: "value"}}, OffsetC: 10}
	require.NoError(t, e.AddSensor(child))
	parent := &Sensor{ID: "parent", Kind: KindOffset, Sources: []SourceRef{{SensorID: "child"}}, OffsetC: 5}
	require.NoError(t, e.AddSensor(parent))

	results := e.UpdateStatuses()
	assert.Equal(t, 60.0, results["child"])  // 50 + 10
	assert.Equal(t, 65.0, results["parent"]) // child's 60 + 5, same tick
}

func TestUpdateStatuses_MixOfPhysicalSources(t *testing.T) {
	reg := device.NewRegistry()
	cpu := device.NewDevice("cpu", "cpu", device.TypeHwmon, device.Info{})
	gpu := device.NewDevice("gpu", "gpu", device.TypeGPUAMD, device.Info{})
	require.NoError(t, reg.Register(cpu))
	require.NoError(t, reg.Register(gpu))
	cpu.PushStatus(device.Status{Temps: []device.TempStatus{{Name: "value", TempC: 40}}})
	gpu.PushStatus(device.Status{Temps: []device.TempStatus{{Name: "value", TempC: 80}}})

	e := New(reg, nil)
	mix := &Sensor{
		ID:   "mix1",
		Kind: KindMix,
		Sources: []SourceRef{
			{DeviceUID: "cpu", TempName: "value"},
			{DeviceUID: "gpu", TempName: "value"},
		},
		MixFn: MixMax,
	}
	require.NoError(t, e.AddSensor(mix))

	results := e.UpdateStatuses()
	assert.Equal(t, 80.0, results["mix1"])
}

func TestReadSourceTemp_NegativeBecomesZeroWithoutError(t *testing.T) {
	reg := device.NewRegistry()
	dev := device.NewDevice("dev1", "dev1", device.TypeHwmon, device.Info{})
	require.NoError(t, reg.Register(dev))
	dev.PushStatus(device.Status{Temps: []device.TempStatus{{Name: "value", TempC: -5}}})

	e := New(reg, nil)
	s := &Sensor{ID: "o1", Kind: KindOffset, Sources: []SourceRef{{DeviceUID: "dev1", TempName: "value"}}, OffsetC: 10}
	require.NoError(t, e.AddSensor(s))

	results := e.UpdateStatuses()
	assert.Equal(t, 10.0, results["o1"]) // 0 (negative clamped) + 10 offset
}
