// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"fmt"
	"math"
	"strings"
)

// TemperatureValue represents a temperature sensor value read from a
// tempN_input file, stored in hwmon's native millidegree Celsius.
type TemperatureValue struct {
	raw int64 // millidegree Celsius
}

// NewTemperatureValue creates a new temperature value from millidegree Celsius.
func NewTemperatureValue(millidegree int64) TemperatureValue {
	return TemperatureValue{raw: millidegree}
}

// Raw returns the raw millidegree Celsius value.
func (t TemperatureValue) Raw() int64 {
	return t.raw
}

// Celsius returns the temperature in degrees Celsius.
func (t TemperatureValue) Celsius() float64 {
	return float64(t.raw) / 1000.0
}

// String returns a human-readable temperature string.
func (t TemperatureValue) String() string {
	return fmt.Sprintf("%.1f°C", t.Celsius())
}

// DutyToPWM converts a 0-100% duty target into the raw 0-255 value a pwm[x]
// file expects, clamped to the valid sysfs range.
func DutyToPWM(dutyPct float64) int {
	raw := int(math.Round(dutyPct * 2.55))
	switch {
	case raw < 0:
		return 0
	case raw > 255:
		return 255
	default:
		return raw
	}
}

// PWMToDuty converts a raw 0-255 pwm[x] reading back to a 0-100% duty.
func PWMToDuty(raw int) float64 {
	duty := math.Round(float64(raw) / 2.55)
	switch {
	case duty < 0:
		return 0
	case duty > 100:
		return 100
	default:
		return duty
	}
}

// DecodeFanRPM clamps the spin-up sentinel some fan controllers report
// (65535 or above) while a fan is still ramping up to 0, since a real
// tachometer reading never reaches that value.
func DecodeFanRPM(raw int) int {
	if raw < 0 || raw >= 65535 {
		return 0
	}
	return raw
}

// CurvePoint is a (temperature °C, duty %) vertex of a user-defined fan
// graph, used only to re-sample a curve onto a device's fixed control
// points without this package depending on the profile evaluator.
type CurvePoint struct {
	TempC   float64
	DutyPct float64
}

// Kraken3 firmware (NZXT Kraken X3/Z3 AIO pumps) does not accept arbitrary
// temp[x]_auto_pointN_temp writes: the 40 points are pinned by the device to
// fixed one-degree buckets from 20 to 59 Celsius, and only the paired
// pwm[x]_auto_pointN_pwm duty value can be written.
const (
	KrakenBucketMinC  = 20
	KrakenBucketMaxC  = 59
	KrakenBucketCount = KrakenBucketMaxC - KrakenBucketMinC + 1
)

// IsKrakenFamily reports whether a discovered hwmon device name belongs to
// the Kraken3 fixed-bucket family.
func IsKrakenFamily(deviceName string) bool {
	return strings.Contains(strings.ToLower(deviceName), "kraken")
}

// InterpolateKrakenBuckets re-samples a user curve onto the 40 fixed Kraken3
// temperature buckets, returning the duty percent for each bucket in
// ascending temperature order (index 0 is KrakenBucketMinC).
func InterpolateKrakenBuckets(curve []CurvePoint) [KrakenBucketCount]float64 {
	var duties [KrakenBucketCount]float64
	for i := range duties {
		duties[i] = interpolateDutyAt(curve, float64(KrakenBucketMinC+i))
	}
	return duties
}

// interpolateDutyAt linearly interpolates duty for tempC between the
// bracketing points of curve, clamping to the curve's end duties outside its
// range. curve must be sorted ascending by TempC.
func interpolateDutyAt(curve []CurvePoint, tempC float64) float64 {
	if len(curve) == 0 {
		return 0
	}

	first := curve[0]
	if tempC <= first.TempC {
		return first.DutyPct
	}

	last := curve[len(curve)-1]
	if tempC >= last.TempC {
		return last.DutyPct
	}

	for i := 1; i < len(curve); i++ {
		prev, next := curve[i-1], curve[i]
		if tempC > next.TempC {
			continue
		}
		span := next.TempC - prev.TempC
		if span <= 0 {
			return next.DutyPct
		}
		frac := (tempC - prev.TempC) / span
		return prev.DutyPct + frac*(next.DutyPct-prev.DutyPct)
	}

	return last.DutyPct
}
