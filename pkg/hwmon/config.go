// SPDX-License-Identifier: BSD-3-Clause

package hwmon

// SensorType represents the type of hardware sensor channel exposed under a
// hwmon device directory. CoolerControl only drives the channel kinds a fan
// curve actually needs: temperatures to sample and pwm/fan pairs to control.
type SensorType int

const (
	// SensorTypeTemperature represents temperature sensors (temp*).
	SensorTypeTemperature SensorType = iota
	// SensorTypeFan represents fan tachometer sensors (fan*).
	SensorTypeFan
	// SensorTypePWM represents PWM duty outputs (pwm*).
	SensorTypePWM
	// SensorTypeGeneric represents an unrecognized sensor file.
	SensorTypeGeneric
)

// String returns the string representation of the sensor type.
func (st SensorType) String() string {
	switch st {
	case SensorTypeTemperature:
		return "temperature"
	case SensorTypeFan:
		return "fan"
	case SensorTypePWM:
		return "pwm"
	case SensorTypeGeneric:
		return "generic"
	default:
		return "unknown"
	}
}

// Prefix returns the hwmon file prefix for the sensor type.
func (st SensorType) Prefix() string {
	switch st {
	case SensorTypeTemperature:
		return "temp"
	case SensorTypeFan:
		return "fan"
	case SensorTypePWM:
		return "pwm"
	default:
		return ""
	}
}

// SensorAttribute represents the hwmon attribute files CoolerControl reads
// or writes on a sensor channel.
type SensorAttribute int

const (
	// AttributeInput represents the current sensor reading (*_input), or the
	// pwmN duty value itself for PWM channels.
	AttributeInput SensorAttribute = iota
	// AttributeLabel represents the sensor label (*_label).
	AttributeLabel
	// AttributeEnable represents the manual/automatic control switch (*_enable).
	AttributeEnable
	// AttributeTarget represents an on-device curve point's target value
	// (temp[x]_auto_pointN_temp / pwm[x]_auto_pointN_pwm).
	AttributeTarget
	// AttributeType represents the PWM control mode (*_type: DC vs PWM).
	AttributeType
)

// String returns the string representation of the sensor attribute.
func (sa SensorAttribute) String() string {
	switch sa {
	case AttributeInput:
		return "input"
	case AttributeLabel:
		return "label"
	case AttributeEnable:
		return "enable"
	case AttributeTarget:
		return "target"
	case AttributeType:
		return "type"
	default:
		return "unknown"
	}
}

// IsWritable returns true if the attribute is typically writable.
func (sa SensorAttribute) IsWritable() bool {
	switch sa {
	case AttributeEnable, AttributeTarget:
		return true
	default:
		return false
	}
}
