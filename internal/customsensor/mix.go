// SPDX-License-Identifier: BSD-3-Clause

package customsensor

// MixFunctionKind selects how a Mix custom sensor combines its sources.
type MixFunctionKind string

const (
	MixMin         MixFunctionKind = "min"
	MixMax         MixFunctionKind = "max"
	MixAvg         MixFunctionKind = "avg"
	MixWeightedAvg MixFunctionKind = "weighted_avg"
	MixDelta       MixFunctionKind = "delta"
)

// Mix combines temps according to fn. weights is only consulted for
// MixWeightedAvg; members are otherwise weighted equally regardless of
// their configured weight.
func Mix(fn MixFunctionKind, temps []float64, weights []float64) float64 {
	if len(temps) == 0 {
		if fn == MixDelta {
			return 0
		}
		return 0
	}

	switch fn {
	case MixMin:
		m := 254.0
		for _, t := range temps {
			if t < m {
				m = t
			}
		}
		return m
	case MixMax:
		m := 0.0
		for _, t := range temps {
			if t > m {
				m = t
			}
		}
		return m
	case MixAvg:
		var sum float64
		for _, t := range temps {
			sum += t
		}
		return sum / float64(len(temps))
	case MixWeightedAvg:
		var acc, accW float64
		for i, t := range temps {
			w := 1.0
			if i < len(weights) && weights[i] > 0 {
				w = weights[i]
			}
			acc = (acc*accW + t*w) / (accW + w)
			accW += w
		}
		return acc
	case MixDelta:
		lo, hi := temps[0], temps[0]
		for _, t := range temps[1:] {
			if t < lo {
				lo = t
			}
			if t > hi {
				hi = t
			}
		}
		d := hi - lo
		if d < 0 {
			d = -d
		}
		return d
	default:
		return 0
	}
}

// Offset applies a signed offset and clamps the result to [0, 150]:
// clamp(t + offset, 0, 150).
func Offset(tempC, offsetC float64) float64 {
	t := tempC + offsetC
	if t < 0 {
		return 0
	}
	if t > 150 {
		return 150
	}
	return t
}
