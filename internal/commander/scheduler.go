package commander

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/codifryed/coolercontrold/internal/processor"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// ChannelKey addresses one controllable channel on one device.
type ChannelKey struct {
	DeviceUID string
	Channel   string
}

// scheduleEntry is one channel's installed top-level profile.
type scheduleEntry struct {
	profileUID string
	lastDuty   float64
	hasLast    bool
}

// scheduler is the shared machinery behind every *ProfileCommander:
// installing a channel's top-level profile, driving the pipeline for
// every scheduled channel on a tick, and dispatching the resulting
// duties to their back-ends concurrently since multiple channels may
// update in parallel without interfering with each other.
type scheduler struct {
	kind     profile.Kind
	pipeline *processor.Pipeline
	dispatch *Dispatcher
	store    processor.ProfileStore
	log      *slog.Logger

	mu       sync.Mutex
	schedule map[ChannelKey]*scheduleEntry
}

func newScheduler(kind profile.Kind, pipeline *processor.Pipeline, dispatch *Dispatcher, store processor.ProfileStore, log *slog.Logger) *scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &scheduler{
		kind:     kind,
		pipeline: pipeline,
		dispatch: dispatch,
		store:    store,
		log:      log,
		schedule: map[ChannelKey]*scheduleEntry{},
	}
}

// scheduleSetting installs prof on key, replacing any previously
// scheduled profile. It refuses a profile whose Kind does not match
// this commander, except that the Graph commander also accepts Default
// and Fixed profiles.
func (s *scheduler) scheduleSetting(key ChannelKey, prof *profile.Profile) error {
	accepted := prof.Kind == s.kind ||
		(s.kind == profile.KindGraph && (prof.Kind == profile.KindFixed || prof.Kind == profile.KindDefault))
	if !accepted {
		return fmt.Errorf("%w: %s commander cannot schedule a %q profile", ErrWrongCommander, s.kind, prof.Kind)
	}
	if err := prof.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.schedule[key] = &scheduleEntry{profileUID: prof.UID}
	return nil
}

// clearChannelSetting removes key's installed profile, if this
// commander owns one, and drops the pipeline's processor state for it
// clearChannelSetting removes key's installed profile, if this
// commander owns one, and drops the pipeline's processor state for it.
func (s *scheduler) clearChannelSetting(key ChannelKey) {
	s.mu.Lock()
	entry, ok := s.schedule[key]
	if ok {
		delete(s.schedule, key)
	}
	s.mu.Unlock()

	if ok {
		s.pipeline.ClearProfile(entry.profileUID)
	}
}

// processAllProfiles drives the pipeline for every scheduled channel
// and records the resulting duty, without yet touching any back-end
// processAllProfiles drives the pipeline for every scheduled channel
// and records the resulting duty, without yet touching any back-end.
func (s *scheduler) processAllProfiles() map[ChannelKey]float64 {
	s.mu.Lock()
	keys := make([]ChannelKey, 0, len(s.schedule))
	for k := range s.schedule {
		keys = append(keys, k)
	}
	s.mu.Unlock()

	toApply := map[ChannelKey]float64{}
	for _, key := range keys {
		s.mu.Lock()
		entry := s.schedule[key]
		s.mu.Unlock()
		if entry == nil {
			continue
		}

		duty, emitted, err := s.pipeline.Tick(entry.profileUID)
		if err != nil {
			s.log.Warn("profile tick failed", "device", key.DeviceUID, "channel", key.Channel, "profile", entry.profileUID, "error", err)
			continue
		}
		if !emitted {
			continue
		}

		s.mu.Lock()
		entry.lastDuty, entry.hasLast = duty, true
		s.mu.Unlock()
		toApply[key] = duty
	}
	return toApply
}

// updateSpeeds dispatches every entry in toApply to its back-end
// concurrently.
func (s *scheduler) updateSpeeds(ctx context.Context, toApply map[ChannelKey]float64) {
	var wg sync.WaitGroup
	for key, duty := range toApply {
		wg.Add(1)
		go func(key ChannelKey, duty float64) {
			defer wg.Done()
			if err := s.dispatch.ApplyDuty(ctx, key.DeviceUID, key.Channel, duty); err != nil {
				s.log.Warn("apply duty failed", "device", key.DeviceUID, "channel", key.Channel, "duty", duty, "error", err)
			}
		}(key, duty)
	}
	wg.Wait()
}
