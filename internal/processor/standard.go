// SPDX-License-Identifier: BSD-3-Clause

package processor

import (
	"math"

	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// standardState is the Standard pre-processor's per-profile metadata.
// The started flag records whether the first run has happened, so a
// genuine 0°C lastApplied value is never mistaken for "never applied".
type standardState struct {
	stack          []float64
	idealStackSize int
	lastApplied    float64
	started        bool
}

func newStandardState() *standardState {
	return &standardState{}
}

// tick runs one pass of the Standard hysteresis pre-processor and
// reports whether a temperature should flow to the evaluator this tick.
func (s *standardState) tick(fn *profile.Function, newest float64, history []float64, pollRateSec float64, safetyTriggered bool) (emit bool, out float64) {
	if s.idealStackSize == 0 {
		delay := fn.ResponseDelaySec
		if delay <= 0 {
			delay = profile.DefaultStandardResponseDelaySec
		}
		s.idealStackSize = int(math.Max(2, math.Ceil(delay/pollRateSec)+1))
	}

	firstRun := !s.started
	if firstRun {
		s.started = true
		if len(history) == 0 {
			s.stack = []float64{device.EmergencyTempC}
		} else {
			n := len(history)
			if n > s.idealStackSize {
				n = s.idealStackSize
			}
			s.stack = append([]float64(nil), history[len(history)-n:]...)
		}
	}

	s.stack = append(s.stack, newest)
	if len(s.stack) > s.idealStackSize {
		s.stack = s.stack[1:]
	}

	if firstRun && len(s.stack) < s.idealStackSize {
		out = s.stack[0]
		s.lastApplied = out
		return true, out
	}

	within := func(t float64) bool { return math.Abs(t-s.lastApplied) <= fn.DevianceC }

	if fn.OnlyDownward && newest > s.lastApplied {
		s.stack = []float64{newest}
		s.lastApplied = newest
		return true, newest
	}

	if len(s.stack) > 2 && within(s.stack[0]) && within(s.stack[len(s.stack)-1]) {
		oldest := s.stack[0]
		for i := 0; i < len(s.stack)-1; i++ {
			s.stack[i] = oldest
		}
	}

	oldest := s.stack[0]
	switch {
	case safetyTriggered && fn.ThresholdHopping:
		s.lastApplied = oldest
		return true, oldest
	case safetyTriggered && !fn.ThresholdHopping:
		return true, s.lastApplied
	case within(oldest):
		return false, 0
	default:
		s.lastApplied = oldest
		return true, oldest
	}
}
