// SPDX-License-Identifier: BSD-3-Clause

package customsensor

// Kind identifies how a custom sensor derives its temperature.
type Kind string

const (
	KindMix    Kind = "mix"
	KindOffset Kind = "offset"
	KindFile   Kind = "file"
)

// SourceRef is one input to a Mix or Offset sensor. It is a union: a
// leaf reference names a physical device's temperature channel
// (DeviceUID+TempName); a composing reference names another custom
// sensor (SensorID). Only Mix/Offset sensors that are not themselves
// used as another sensor's source may use a SensorID reference.
type SourceRef struct {
	DeviceUID string
	TempName  string
	SensorID  string
	WeightPct float64
}

// IsSensorRef reports whether this source composes another custom
// sensor rather than reading a physical device directly.
func (s SourceRef) IsSensorRef() bool { return s.SensorID != "" }

// Sensor is a virtual temperature channel.
type Sensor struct {
	ID   string
	Name string
	Kind Kind

	// Mix, Offset
	Sources []SourceRef

	// Mix
	MixFn MixFunctionKind

	// Offset
	OffsetC float64

	// File
	FilePath string
}

// childCount returns how many of s's sources compose other custom
// sensors.
func (s *Sensor) childCount() int {
	n := 0
	for _, src := range s.Sources {
		if src.IsSensorRef() {
			n++
		}
	}
	return n
}

// isParent reports whether s composes at least one other custom sensor.
func (s *Sensor) isParent() bool { return s.childCount() > 0 }
