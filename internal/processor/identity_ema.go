// SPDX-License-Identifier: BSD-3-Clause

package processor

import (
	"math"

	"github.com/codifryed/coolercontrold/internal/device"
)

// identityTemp implements the Identity pre-processor:
// the latest raw sample, or the emergency temperature when the source
// cannot be resolved.
func identityTemp(registry *device.Registry, deviceUID, tempName string) float64 {
	t, ok := registry.TempSource(deviceUID, tempName)
	if !ok {
		return device.EmergencyTempC
	}
	return t
}

// emaTemp implements the EMA pre-processor: a
// triangular moving average over the last min(16, len(history)) raw
// temperatures, window-sized by sampleWindow, rounded to 0.01.
func emaTemp(history []float64, sampleWindow int) float64 {
	const tempSampleSize = 16

	if len(history) == 0 {
		return device.EmergencyTempC
	}
	if sampleWindow <= 0 {
		sampleWindow = 8
	}

	n := len(history)
	if n > tempSampleSize {
		n = tempSampleSize
	}
	samples := history[len(history)-n:]

	w := sampleWindow
	if w > len(samples) {
		w = len(samples)
	}
	window := samples[len(samples)-w:]

	var weightedSum, weightTotal float64
	for i, t := range window {
		weight := float64(i + 1)
		weightedSum += t * weight
		weightTotal += weight
	}
	if weightTotal == 0 {
		return device.EmergencyTempC
	}

	avg := weightedSum / weightTotal
	return math.Round(avg*100) / 100
}
