// SPDX-License-Identifier: BSD-3-Clause

package processor

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// defaultThresholdFunction is used when a Mix or Overlay profile does
// not name its own Function. Mix/Overlay carry no temperature source of
// their own, so the Standard/EMA portion is irrelevant; only the
// duty-threshold and safety-latch parameters matter here, and they
// default to unrestricted so a top-level Mix/Overlay never silently
// rate-limits unless the operator explicitly attaches a Function (the
// data model names FunctionUID only under "Graph", so accepting one on
// Mix/Overlay extends it).
func defaultThresholdFunction() *profile.Function {
	return &profile.Function{
		Kind:                  profile.FunctionIdentity,
		StepSizeMaxIncreasing: device.DutyMaxPct,
		StepSizeMaxDecreasing: device.DutyMaxPct,
	}
}

// Pipeline evaluates scheduled profiles into duty commands, holding the
// per-profile processor state "Processor
// state" and orchestrating the chain order
type Pipeline struct {
	registry    *device.Registry
	store       ProfileStore
	pollRateSec float64
	log         *slog.Logger

	mu         sync.Mutex
	standard   map[string]*standardState
	thresholds map[string]*dutyThresholdState
	latches    map[string]*safetyLatchState
}

// NewPipeline constructs a Pipeline bound to registry and store, polling
// at pollRateSec-second intervals.
func NewPipeline(registry *device.Registry, store ProfileStore, pollRateSec float64, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		registry:    registry,
		store:       store,
		pollRateSec: pollRateSec,
		log:         log,
		standard:    map[string]*standardState{},
		thresholds:  map[string]*dutyThresholdState{},
		latches:     map[string]*safetyLatchState{},
	}
}

// Tick runs the full chain for the profile scheduled at the top level
// (the profile a GraphProfileCommander/MixProfileCommander/
// OverlayProfileCommander installed on a channel) and reports whether a
// duty should be written to the back-end this tick.
func (p *Pipeline) Tick(topProfileUID string) (dutyPct float64, emitted bool, err error) {
	top, ok := p.store.Profile(topProfileUID)
	if !ok {
		return 0, false, fmt.Errorf("%w: %s", ErrProfileNotFound, topProfileUID)
	}

	thresholdFn := p.thresholdFunctionFor(top)

	p.mu.Lock()
	latch := p.latches[topProfileUID]
	if latch == nil {
		latch = newSafetyLatchState()
		p.latches[topProfileUID] = latch
	}
	p.mu.Unlock()
	safetyTriggered := latch.preTick(thresholdFn, p.pollRateSec)

	rawDuty, err := p.evaluate(topProfileUID, safetyTriggered, 0)
	if err == errNoEmission {
		latch.postTick(false)
		if safetyTriggered {
			p.log.Warn("no duty set while safety latch triggered", "profile", topProfileUID)
		}
		return 0, false, nil
	}
	if err != nil {
		latch.postTick(false)
		return 0, false, err
	}

	p.mu.Lock()
	thr := p.thresholds[topProfileUID]
	if thr == nil {
		thr = newDutyThresholdState()
		p.thresholds[topProfileUID] = thr
	}
	p.mu.Unlock()

	emit, out := thr.tick(thresholdFn, device.ClampDuty(rawDuty), safetyTriggered)
	latch.postTick(emit)

	if !emit && safetyTriggered {
		p.log.Warn("no duty set while safety latch triggered", "profile", topProfileUID)
	}

	return out, emit, nil
}

// thresholdFunctionFor resolves the Function that governs a top-level
// profile's own duty-threshold/safety-latch parameters.
func (p *Pipeline) thresholdFunctionFor(prof *profile.Profile) *profile.Function {
	if prof.Kind == profile.KindGraph && prof.FunctionUID != "" {
		if fn, ok := p.store.Function(prof.FunctionUID); ok {
			return fn
		}
	}
	if (prof.Kind == profile.KindMix || prof.Kind == profile.KindOverlay) && prof.FunctionUID != "" {
		if fn, ok := p.store.Function(prof.FunctionUID); ok {
			return fn
		}
	}
	return defaultThresholdFunction()
}

// evaluate recursively computes the duty for a profile, handling Graph
// leaves (pre-processor + graph interpolation) and Mix/Overlay
// composition.
func (p *Pipeline) evaluate(profileUID string, safetyTriggered bool, depth int) (float64, error) {
	if depth > maxEvalDepth {
		return 0, fmt.Errorf("%w: %s", ErrMaxDepthExceeded, profileUID)
	}

	prof, ok := p.store.Profile(profileUID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrProfileNotFound, profileUID)
	}

	switch prof.Kind {
	case profile.KindFixed:
		return device.ClampDuty(prof.FixedDutyPct), nil

	case profile.KindDefault:
		return 0, nil

	case profile.KindGraph:
		return p.evaluateGraph(prof, safetyTriggered)

	case profile.KindMix:
		return p.evaluateMix(prof, safetyTriggered, depth)

	case profile.KindOverlay:
		d, err := p.evaluate(prof.MemberUID, safetyTriggered, depth+1)
		if err != nil {
			return 0, err
		}
		offset := profile.InterpolateOffset(prof.OffsetPoints, d)
		return device.ClampDuty(d + offset), nil

	default:
		return 0, fmt.Errorf("%w: unknown kind %q", ErrProfileNotFound, prof.Kind)
	}
}

func (p *Pipeline) evaluateGraph(prof *profile.Profile, safetyTriggered bool) (float64, error) {
	fn, ok := p.store.Function(prof.FunctionUID)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrFunctionNotFound, prof.FunctionUID)
	}

	dev, devErr := p.registry.Get(prof.Source.DeviceUID)
	var history []float64
	if devErr == nil {
		for _, st := range dev.History(16) {
			if t, found := st.TempByName(prof.Source.TempName); found {
				history = append(history, t)
			}
		}
	}

	newest := identityTemp(p.registry, prof.Source.DeviceUID, prof.Source.TempName)

	var tempC float64
	var emit bool
	switch fn.Kind {
	case profile.FunctionStandard:
		p.mu.Lock()
		st := p.standard[prof.UID]
		if st == nil {
			st = newStandardState()
			p.standard[prof.UID] = st
		}
		p.mu.Unlock()
		emit, tempC = st.tick(fn, newest, history, p.pollRateSec, safetyTriggered)
	case profile.FunctionEMA:
		tempC, emit = emaTemp(history, fn.SampleWindow), true
	default: // Identity
		tempC, emit = newest, true
	}

	if !emit {
		// No new temperature to evaluate this tick: nothing is emitted,
		// and the channel keeps whatever duty was last applied.
		return 0, errNoEmission
	}

	return profile.InterpolateGraph(prof.Points, tempC), nil
}

func (p *Pipeline) evaluateMix(prof *profile.Profile, safetyTriggered bool, depth int) (float64, error) {
	duties := make([]float64, 0, len(prof.MemberUIDs))
	for _, m := range prof.MemberUIDs {
		d, err := p.evaluate(m, safetyTriggered, depth+1)
		if err != nil {
			if err == errNoEmission {
				continue
			}
			return 0, err
		}
		duties = append(duties, d)
	}
	if len(duties) == 0 {
		return 0, errNoEmission
	}
	return combineMix(prof.MixFunction, duties), nil
}

func combineMix(fn profile.MixFunction, duties []float64) float64 {
	switch fn {
	case profile.MixMin:
		m := duties[0]
		for _, d := range duties[1:] {
			if d < m {
				m = d
			}
		}
		return m
	case profile.MixMax:
		m := duties[0]
		for _, d := range duties[1:] {
			if d > m {
				m = d
			}
		}
		return m
	case profile.MixAvg:
		var sum float64
		for _, d := range duties {
			sum += d
		}
		return sum / float64(len(duties))
	case profile.MixWeightedAvg:
		var accW, acc float64
		for _, d := range duties {
			w := 1.0
			acc = (acc*accW + d*w) / (accW + w)
			accW += w
		}
		return acc
	case profile.MixDelta:
		lo, hi := duties[0], duties[0]
		for _, d := range duties[1:] {
			if d < lo {
				lo = d
			}
			if d > hi {
				hi = d
			}
		}
		return hi - lo
	default:
		return duties[0]
	}
}

// ClearProfile discards all per-profile processor state.
func (p *Pipeline) ClearProfile(profileUID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.standard, profileUID)
	delete(p.thresholds, profileUID)
	delete(p.latches, profileUID)
}
