// SPDX-License-Identifier: BSD-3-Clause

package customsensor

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/codifryed/coolercontrold/internal/device"
)

// Engine owns the custom-sensor definitions and the live results of the
// most recent evaluation pass.
type Engine struct {
	registry *device.Registry
	log      *slog.Logger

	mu      sync.RWMutex
	sensors map[string]*Sensor
	results map[string]float64
}

// New constructs an Engine reading device temperatures from registry.
func New(registry *device.Registry, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{
		registry: registry,
		log:      log,
		sensors:  map[string]*Sensor{},
		results:  map[string]float64{},
	}
}

// parentsOf returns the IDs of sensors that reference id as a child
// source.
func (e *Engine) parentsOf(id string) []string {
	var out []string
	for _, s := range e.sensors {
		for _, src := range s.Sources {
			if src.SensorID == id {
				out = append(out, s.ID)
				break
			}
		}
	}
	return out
}

// AddSensor registers a new custom sensor after validating the
// invariants
func (e *Engine) AddSensor(s *Sensor) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.sensors[s.ID]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyExists, s.ID)
	}
	if err := e.validateLocked(s); err != nil {
		return err
	}

	e.sensors[s.ID] = s
	return nil
}

// validateLocked must be called with e.mu held.
func (e *Engine) validateLocked(s *Sensor) error {
	switch s.Kind {
	case KindFile:
		if len(s.Sources) != 0 {
			return fmt.Errorf("%w: %s", ErrFileSensorHasSources, s.ID)
		}
		if s.FilePath == "" {
			return fmt.Errorf("%w: %s", ErrFilePathEmpty, s.ID)
		}
		return nil
	case KindOffset:
		if len(s.Sources) != 1 {
			return fmt.Errorf("%w: %s", ErrOffsetSensorSourceCount, s.ID)
		}
	case KindMix:
		if len(s.Sources) == 0 {
			return fmt.Errorf("%w: mix sensor %s has no sources", ErrSensorNotFound, s.ID)
		}
	}

	for _, src := range s.Sources {
		if src.SensorID == s.ID {
			return fmt.Errorf("%w: %s", ErrSelfReference, s.ID)
		}
		if src.IsSensorRef() {
			child, ok := e.sensors[src.SensorID]
			if !ok {
				return fmt.Errorf("%w: %s", ErrSensorNotFound, src.SensorID)
			}
			if child.isParent() {
				return fmt.Errorf("%w: %s is already a parent", ErrNotOneLevel, child.ID)
			}
		}
	}

	if s.isParent() {
		if parents := e.parentsOf(s.ID); len(parents) > 0 {
			return fmt.Errorf("%w: %s is already referenced as a child", ErrNotOneLevel, s.ID)
		}
	}

	return nil
}

// RemoveSource removes a single child reference from a parent sensor.
// It is rejected when the reference is the parent's sole remaining
// child.
func (e *Engine) RemoveSource(parentID, childSensorID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	parent, ok := e.sensors[parentID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSensorNotFound, parentID)
	}

	if parent.childCount() == 1 {
		for _, src := range parent.Sources {
			if src.SensorID == childSensorID {
				return fmt.Errorf("%w: %s", ErrLastChildOfParent, parentID)
			}
		}
	}

	out := parent.Sources[:0]
	for _, src := range parent.Sources {
		if src.SensorID != childSensorID {
			out = append(out, src)
		}
	}
	parent.Sources = out
	return nil
}

// DeleteSensor removes a sensor, refusing if it is currently referenced
// as a child by another sensor.
func (e *Engine) DeleteSensor(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.sensors[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSensorNotFound, id)
	}
	if parents := e.parentsOf(id); len(parents) > 0 {
		return fmt.Errorf("%w: %s referenced by %v", ErrInUse, id, parents)
	}

	delete(e.sensors, id)
	delete(e.results, id)
	return nil
}

// Result returns the most recently computed temperature for id.
func (e *Engine) Result(id string) (float64, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	t, ok := e.results[id]
	return t, ok
}

// UpdateStatuses runs the two-pass per-tick evaluation, records each
// sensor's result, and returns the results keyed by sensor ID. It does
// not write to the device registry; the custom-sensors back-end pushes
// the returned values into its virtual devices.
func (e *Engine) UpdateStatuses() map[string]float64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	leaves := make([]*Sensor, 0, len(e.sensors))
	parents := make([]*Sensor, 0)
	for _, s := range e.sensors {
		if s.isParent() {
			parents = append(parents, s)
		} else {
			leaves = append(leaves, s)
		}
	}

	next := make(map[string]float64, len(e.sensors))
	for _, s := range leaves {
		next[s.ID] = e.evaluateLeaf(s)
	}
	for _, s := range parents {
		next[s.ID] = e.evaluateParent(s, next)
	}

	e.results = next
	return next
}

func (e *Engine) evaluateLeaf(s *Sensor) float64 {
	switch s.Kind {
	case KindFile:
		t, err := ReadFileSensor(s.FilePath)
		if err != nil {
			e.log.Warn("custom sensor file read failed", "sensor", s.ID, "path", s.FilePath, "error", err)
			return 0
		}
		return t
	case KindOffset:
		src := s.Sources[0]
		t := e.readSourceTemp(src, nil)
		return Offset(t, s.OffsetC)
	case KindMix:
		temps := make([]float64, 0, len(s.Sources))
		weights := make([]float64, 0, len(s.Sources))
		for _, src := range s.Sources {
			temps = append(temps, e.readSourceTemp(src, nil))
			weights = append(weights, src.WeightPct)
		}
		return Mix(MixFunctionFromSources(s), temps, weights)
	default:
		return 0
	}
}

func (e *Engine) evaluateParent(s *Sensor, leafResults map[string]float64) float64 {
	switch s.Kind {
	case KindOffset:
		src := s.Sources[0]
		t := e.readSourceTemp(src, leafResults)
		return Offset(t, s.OffsetC)
	case KindMix:
		temps := make([]float64, 0, len(s.Sources))
		weights := make([]float64, 0, len(s.Sources))
		for _, src := range s.Sources {
			temps = append(temps, e.readSourceTemp(src, leafResults))
			weights = append(weights, src.WeightPct)
		}
		return Mix(MixFunctionFromSources(s), temps, weights)
	default:
		return 0
	}
}

// readSourceTemp resolves one SourceRef, preferring the in-memory
// leafResults (pass-1 output) for sensor references, and the live
// device registry for physical references. Negative or invalid values
// become 0, with a warning logged.
func (e *Engine) readSourceTemp(src SourceRef, leafResults map[string]float64) float64 {
	var t float64
	var ok bool
	if src.IsSensorRef() {
		if leafResults != nil {
			t, ok = leafResults[src.SensorID]
		}
		if !ok {
			t, ok = e.results[src.SensorID]
		}
	} else {
		t, ok = e.registry.TempSource(src.DeviceUID, src.TempName)
	}
	if !ok || t < 0 {
		if ok {
			e.log.Warn("custom sensor source temperature invalid", "source", src)
		}
		return 0
	}
	return t
}

// MixFunctionFromSources returns the mix function configured on s.
func MixFunctionFromSources(s *Sensor) MixFunctionKind {
	return s.MixFn
}
