// SPDX-License-Identifier: BSD-3-Clause

package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codifryed/coolercontrold/internal/device"
)

func TestIdentityTemp_ResolvesFromRegistry(t *testing.T) {
	reg := device.NewRegistry()
	dev := device.NewDevice("dev1", "dev1", device.TypeHwmon, device.Info{})
	require.NoError(t, reg.Register(dev))
	dev.PushStatus(device.Status{Temps: []device.TempStatus{{Name: "value", TempC: 55}}})

	assert.Equal(t, 55.0, identityTemp(reg, "dev1", "value"))
}

func TestIdentityTemp_UnresolvedSourceReturnsEmergency(t *testing.T) {
	reg := device.NewRegistry()
	assert.Equal(t, device.EmergencyTempC, identityTemp(reg, "missing", "value"))
}

func TestEMATemp_EmptyHistoryReturnsEmergency(t *testing.T) {
	assert.Equal(t, device.EmergencyTempC, emaTemp(nil, 8))
}

func TestEMATemp_WeightsTowardMostRecent(t *testing.T) {
	got := emaTemp([]float64{10, 20, 30}, 3)
	assert.InDelta(t, 23.33, got, 0.01)
}

func TestEMATemp_WindowLargerThanHistoryClampsToHistory(t *testing.T) {
	got := emaTemp([]float64{10, 20, 30}, 50)
	assert.InDelta(t, 23.33, got, 0.01)
}

func TestEMATemp_ZeroSampleWindowDefaultsToEight(t *testing.T) {
	history := make([]float64, 0, 20)
	for i := 0; i < 20; i++ {
		history = append(history, float64(i))
	}
	withDefault := emaTemp(history, 0)
	withExplicitEight := emaTemp(history, 8)
	assert.Equal(t, withExplicitEight, withDefault)
}
