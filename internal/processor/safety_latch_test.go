// SPDX-License-Identifier: BSD-3-Clause

package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/codifryed/coolercontrold/internal/profile"
)

func TestSafetyLatch_StartsPreArmedAndTriggersOnFirstTick(t *testing.T) {
	s := newSafetyLatchState()
	fn := &profile.Function{}

	triggered := s.preTick(fn, 1.0)
	assert.True(t, triggered)
	assert.Equal(t, 30, s.maxNoDutySetCount)
}

func TestSafetyLatch_ResetsAfterDutyEmitted(t *testing.T) {
	s := newSafetyLatchState()
	fn := &profile.Function{}

	s.preTick(fn, 1.0)
	s.postTick(true)

	triggered := s.preTick(fn, 1.0)
	assert.False(t, triggered)
	assert.Equal(t, 0, s.noDutySetCounter)
}

func TestSafetyLatch_RetriggersAfterSustainedSilence(t *testing.T) {
	s := newSafetyLatchState()
	fn := &profile.Function{}

	s.preTick(fn, 1.0)
	s.postTick(true) // arm fresh at 0

	for i := 0; i < 30; i++ {
		triggered := s.preTick(fn, 1.0)
		assert.False(t, triggered, "tick %d should not yet be triggered", i)
		s.postTick(false)
	}

	assert.True(t, s.preTick(fn, 1.0))
}

func TestSafetyLatch_ResponseDelayClampedIntoWindow(t *testing.T) {
	s := newSafetyLatchState()
	fn := &profile.Function{ResponseDelaySec: 5} // below minNoDutySetSeconds=30, clamps up

	s.preTick(fn, 1.0)
	assert.Equal(t, 30, s.maxNoDutySetCount)

	s2 := newSafetyLatchState()
	fn2 := &profile.Function{ResponseDelaySec: 120} // above maxNoDutySetSeconds=60, clamps down
	s2.preTick(fn2, 1.0)
	assert.Equal(t, 60, s2.maxNoDutySetCount)
}

func TestSafetyLatch_FasterPollRateScalesCountUp(t *testing.T) {
	s := newSafetyLatchState()
	fn := &profile.Function{}

	s.preTick(fn, 0.5) // 30s / 0.5s per tick = 60 ticks
	assert.Equal(t, 60, s.maxNoDutySetCount)
}
