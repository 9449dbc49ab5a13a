// SPDX-License-Identifier: BSD-3-Clause

package customsensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMix(t *testing.T) {
	temps := []float64{20, 50, 80}

	assert.Equal(t, 20.0, Mix(MixMin, temps, nil))
	assert.Equal(t, 80.0, Mix(MixMax, temps, nil))
	assert.InDelta(t, 50, Mix(MixAvg, temps, nil), 0.001)
	assert.Equal(t, 60.0, Mix(MixDelta, temps, nil))
}

func TestMix_WeightedAvgFallsBackToEqualWeightWhenUnset(t *testing.T) {
	temps := []float64{20, 80}
	got := Mix(MixWeightedAvg, temps, nil)
	assert.InDelta(t, 50, got, 0.001)
}

func TestMix_WeightedAvgHonorsWeights(t *testing.T) {
	temps := []float64{20, 80}
	weights := []float64{3, 1}
	got := Mix(MixWeightedAvg, temps, weights)
	assert.InDelta(t, 35, got, 0.001) // (20*3 + 80*1) / 4
}

func TestMix_EmptyInputReturnsZero(t *testing.T) {
	assert.Equal(t, 0.0, Mix(MixAvg, nil, nil))
}

func TestOffset_ClampsToRange(t *testing.T) {
	assert.Equal(t, 0.0, Offset(5, -20))
	assert.Equal(t, 150.0, Offset(140, 20))
	assert.Equal(t, 55.0, Offset(50, 5))
}
