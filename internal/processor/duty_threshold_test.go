// SPDX-License-Identifier: BSD-3-Clause

package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codifryed/coolercontrold/internal/profile"
)

func TestDutyThreshold_FirstTickAlwaysEmits(t *testing.T) {
	d := newDutyThresholdState()
	fn := &profile.Function{StepSizeMaxIncreasing: 5}

	emit, out := d.tick(fn, 42, false)
	assert.True(t, emit)
	assert.Equal(t, 42.0, out)
}

func TestDutyThreshold_SmallDeltaSuppressedBelowMin(t *testing.T) {
	d := newDutyThresholdState()
	fn := &profile.Function{StepSizeMinIncreasing: 3, StepSizeMaxIncreasing: 10}

	d.tick(fn, 50, false)
	emit, _ := d.tick(fn, 52, false) // delta=2 < min 3
	assert.False(t, emit)
}

func TestDutyThreshold_LargeDeltaClampedToMax(t *testing.T) {
	d := newDutyThresholdState()
	fn := &profile.Function{StepSizeMaxIncreasing: 5}

	d.tick(fn, 50, false)
	emit, out := d.tick(fn, 60, false) // delta=10 > max 5
	assert.True(t, emit)
	assert.Equal(t, 55.0, out)
}

func TestDutyThreshold_WithinRangeEmitsRawDuty(t *testing.T) {
	d := newDutyThresholdState()
	fn := &profile.Function{StepSizeMaxIncreasing: 5}

	d.tick(fn, 50, false)
	emit, out := d.tick(fn, 53, false)
	assert.True(t, emit)
	assert.Equal(t, 53.0, out)
}

func TestDutyThreshold_SymmetricDecreaseDefaultsFromIncrease(t *testing.T) {
	d := newDutyThresholdState()
	fn := &profile.Function{StepSizeMaxIncreasing: 5}

	d.tick(fn, 50, false)
	emit, out := d.tick(fn, 30, false) // decrease of 20 clamps to -5 symmetric default
	assert.True(t, emit)
	assert.Equal(t, 45.0, out)
}

func TestDutyThreshold_SafetyTriggeredWithoutHopping_HoldsLastBelowMin(t *testing.T) {
	d := newDutyThresholdState()
	fn := &profile.Function{StepSizeMinIncreasing: 3, StepSizeMaxIncreasing: 10}

	d.tick(fn, 50, false)
	emit, out := d.tick(fn, 51, true) // delta 1 < min 3, safety triggered, no hopping -> holds last
	assert.True(t, emit)
	assert.Equal(t, 50.0, out)
}

func TestDutyThreshold_SafetyTriggeredWithHopping_AlwaysEmits(t *testing.T) {
	d := newDutyThresholdState()
	fn := &profile.Function{StepSizeMinIncreasing: 3, StepSizeMaxIncreasing: 10, ThresholdHopping: true}

	d.tick(fn, 50, false)
	emit, out := d.tick(fn, 51, true) // delta 1 < min, but hopping bypasses the min suppression
	assert.True(t, emit)
	assert.Equal(t, 51.0, out)
}

func TestDutyThreshold_RingBufferCapsAtMaxSampleSize(t *testing.T) {
	d := newDutyThresholdState()
	for i := 0; i < maxDutySampleSize+10; i++ {
		d.record(float64(i))
	}
	assert.Len(t, d.recent, maxDutySampleSize)
	last, ok := d.lastDuty()
	assert.True(t, ok)
	assert.Equal(t, float64(maxDutySampleSize+9), last)
}
