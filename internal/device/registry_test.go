// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := NewRegistry()
	d := NewDevice("dev1", "Dev One", TypeHwmon, Info{})
	require.NoError(t, r.Register(d))

	got, err := r.Get("dev1")
	require.NoError(t, err)
	assert.Same(t, d, got)
}

func TestRegistry_RegisterRejectsDuplicateUID(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewDevice("dev1", "a", TypeHwmon, Info{})))
	err := r.Register(NewDevice("dev1", "b", TypeHwmon, Info{}))
	assert.ErrorIs(t, err, ErrAlreadyRegistered)
}

func TestRegistry_RegisterRejectsEmptyUID(t *testing.T) {
	r := NewRegistry()
	err := r.Register(NewDevice("", "a", TypeHwmon, Info{}))
	assert.ErrorIs(t, err, ErrInvalidUID)
}

func TestRegistry_GetUnknownReturnsError(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("missing")
	assert.ErrorIs(t, err, ErrDeviceNotFound)
}

func TestRegistry_ByType(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewDevice("cpu", "cpu", TypeHwmon, Info{})))
	require.NoError(t, r.Register(NewDevice("gpu", "gpu", TypeGPUAMD, Info{})))

	hwmon := r.ByType(TypeHwmon)
	require.Len(t, hwmon, 1)
	assert.Equal(t, "cpu", hwmon[0].UID)
}

func TestRegistry_TempSource(t *testing.T) {
	r := NewRegistry()
	d := NewDevice("dev1", "dev1", TypeHwmon, Info{})
	require.NoError(t, r.Register(d))
	d.PushStatus(Status{Temps: []TempStatus{{Name: "value", TempC: 45}}})

	tempC, ok := r.TempSource("dev1", "value")
	assert.True(t, ok)
	assert.Equal(t, 45.0, tempC)
}

func TestRegistry_TempSourceUnknownDeviceUsesEmergencySentinel(t *testing.T) {
	r := NewRegistry()
	tempC, ok := r.TempSource("missing", "value")
	assert.False(t, ok)
	assert.Equal(t, EmergencyTempC, tempC)
}

func TestRegistry_TempSourceUnknownSensorUsesEmergencySentinel(t *testing.T) {
	r := NewRegistry()
	d := NewDevice("dev1", "dev1", TypeHwmon, Info{})
	require.NoError(t, r.Register(d))
	d.PushStatus(Status{Temps: []TempStatus{{Name: "value", TempC: 45}}})

	tempC, ok := r.TempSource("dev1", "other")
	assert.False(t, ok)
	assert.Equal(t, EmergencyTempC, tempC)
}

func TestDevice_HistoryBoundedAndOrdered(t *testing.T) {
	d := NewDevice("dev1", "dev1", TypeHwmon, Info{})
	for i := 0; i < 5; i++ {
		d.PushStatus(Status{Temps: []TempStatus{{Name: "value", TempC: float64(i)}}})
	}

	hist := d.History(3)
	require.Len(t, hist, 3)
	assert.Equal(t, 2.0, hist[0].Temps[0].TempC)
	assert.Equal(t, 4.0, hist[2].Temps[0].TempC)

	latest, ok := d.Latest()
	require.True(t, ok)
	assert.Equal(t, 4.0, latest.Temps[0].TempC)
}

func TestClampDutyAndTemp(t *testing.T) {
	assert.Equal(t, DutyMinPct, ClampDuty(-5))
	assert.Equal(t, DutyMaxPct, ClampDuty(150))
	assert.Equal(t, 50.0, ClampDuty(50))

	assert.Equal(t, TempMinC, ClampTemp(-100))
	assert.Equal(t, TempMaxC, ClampTemp(1000))
}

func TestClampRPM(t *testing.T) {
	assert.Equal(t, 0, ClampRPM(-1))
	assert.Equal(t, 0, ClampRPM(65535))
	assert.Equal(t, RPMMax, ClampRPM(50_000))
	assert.Equal(t, 1200, ClampRPM(1200))
}
