// SPDX-License-Identifier: BSD-3-Clause

package processor

import (
	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// maxDutySampleSize caps the recent-applied-duty ring.
const maxDutySampleSize = 20

// dutyThresholdState is the duty-threshold post-processor's per-profile
// metadata.
type dutyThresholdState struct {
	recent []float64
}

func newDutyThresholdState() *dutyThresholdState {
	return &dutyThresholdState{}
}

func (d *dutyThresholdState) lastDuty() (float64, bool) {
	if len(d.recent) == 0 {
		return 0, false
	}
	return d.recent[len(d.recent)-1], true
}

func (d *dutyThresholdState) record(duty float64) {
	d.recent = append(d.recent, duty)
	if len(d.recent) > maxDutySampleSize {
		d.recent = d.recent[1:]
	}
}

// tick rate-limits newDuty against the last emitted duty's resolution and emission rules.
func (d *dutyThresholdState) tick(fn *profile.Function, newDuty float64, safetyTriggered bool) (emit bool, out float64) {
	last, hasLast := d.lastDuty()
	if !hasLast {
		d.record(newDuty)
		return true, newDuty
	}

	incMin, incMax, decMin, decMax := fn.ResolvedThresholds()

	delta := newDuty - last
	increasing := delta >= 0
	abs := delta
	if !increasing {
		abs = -delta
	}

	minThresh, maxThresh := incMin, incMax
	if !increasing {
		minThresh, maxThresh = decMin, decMax
	}

	if safetyTriggered {
		if fn.ThresholdHopping {
			if abs > maxThresh {
				out = clampedStep(last, increasing, maxThresh)
			} else {
				out = newDuty
			}
			d.record(out)
			return true, out
		}
		if abs < minThresh {
			d.record(last)
			return true, last
		}
		if abs > maxThresh {
			out = clampedStep(last, increasing, maxThresh)
			d.record(out)
			return true, out
		}
		d.record(newDuty)
		return true, newDuty
	}

	switch {
	case abs < minThresh:
		return false, 0
	case abs > maxThresh:
		out = clampedStep(last, increasing, maxThresh)
		d.record(out)
		return true, out
	default:
		d.record(newDuty)
		return true, newDuty
	}
}

func clampedStep(last float64, increasing bool, maxThresh float64) float64 {
	if increasing {
		return device.ClampDuty(last + maxThresh)
	}
	return device.ClampDuty(last - maxThresh)
}
