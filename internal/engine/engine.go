// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/arunsworld/nursery"

	"github.com/codifryed/coolercontrold/internal/backend"
	"github.com/codifryed/coolercontrold/internal/commander"
	"github.com/codifryed/coolercontrold/internal/config"
	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/eventbus"
	"github.com/codifryed/coolercontrold/internal/processor"
	"github.com/codifryed/coolercontrold/pkg/metrics"
	"github.com/codifryed/coolercontrold/pkg/state"
)

// customSensorsBackendName is the Name() reported by
// internal/backend/customsensors, used to schedule its UpdateStatuses
// call strictly after every physical back-end's.
const customSensorsBackendName = "custom-sensors"

// channelProcessor is the method set shared by every *ProfileCommander;
// engine drives all three identically each tick.
type channelProcessor interface {
	ProcessAllProfiles() map[commander.ChannelKey]float64
	UpdateSpeeds(ctx context.Context, toApply map[commander.ChannelKey]float64)
}

// Engine is the daemon's tick loop. It satisfies pkg/process.Runner so
// it can be supervised by an oversight tree.
type Engine struct {
	cfg     config.Provider
	bus     *eventbus.Bus
	metrics *metrics.Registry
	log     *slog.Logger

	mu        sync.Mutex
	registry  *device.Registry
	repos     []backend.Repository
	store     *configStore
	pipeline  *processor.Pipeline
	group     *commander.Group
	lifecycle *state.Machine
	ticks     uint64
}

// New constructs an unstarted Engine.
func New(cfg config.Provider, bus *eventbus.Bus, metricsReg *metrics.Registry, log *slog.Logger) *Engine {
	if log == nil {
		log = slog.Default()
	}
	return &Engine{cfg: cfg, bus: bus, metrics: metricsReg, log: log}
}

// Name identifies this runner in the oversight supervision tree.
func (e *Engine) Name() string { return "engine" }

// Run builds every back-end, schedules configured channel settings,
// and drives the tick loop until ctx is canceled.
func (e *Engine) Run(ctx context.Context) error {
	settings, err := e.cfg.GetSettings()
	if err != nil {
		return err
	}
	if settings.PollRateSec <= 0 {
		settings.PollRateSec = 1.0
	}

	repos, err := backend.Build(e.cfg, e.log)
	if err != nil {
		return err
	}

	registry := device.NewRegistry()
	if !settings.NoInit {
		for _, r := range repos {
			if err := r.InitializeDevices(ctx, registry); err != nil {
				e.log.Warn("back-end initialization failed", "backend", r.Name(), "error", err)
			}
		}
	}

	store := newConfigStore(e.cfg)
	if err := store.Refresh(); err != nil {
		return err
	}

	pipeline := processor.NewPipeline(registry, store, settings.PollRateSec, e.log)
	dispatch := commander.NewDispatcher(repos)
	group := commander.NewGroup(pipeline, dispatch, store, e.log)

	e.mu.Lock()
	e.registry, e.repos, e.store, e.pipeline, e.group = registry, repos, store, pipeline, group
	e.mu.Unlock()

	e.scheduleAllChannelSettings(group, registry)

	lifecycle, err := state.NewLifecycleBuilder("engine").
		WithBroadcast(e.broadcastLifecycle).
		Build()
	if err != nil {
		return err
	}
	e.mu.Lock()
	e.lifecycle = lifecycle
	e.mu.Unlock()

	if err := lifecycle.Start(ctx); err != nil {
		return err
	}
	if err := lifecycle.Fire(ctx, "init_complete"); err != nil {
		return err
	}

	if settings.StartupDelaySec > 0 {
		select {
		case <-time.After(time.Duration(settings.StartupDelaySec * float64(time.Second))):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ticker := time.NewTicker(time.Duration(settings.PollRateSec * float64(time.Second)))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = lifecycle.Fire(shutdownCtx, "shutdown")
			e.shutdownBackends(shutdownCtx)
			_ = lifecycle.Fire(shutdownCtx, "shutdown_complete")
			return ctx.Err()

		case <-ticker.C:
			e.tick(ctx)
		}
	}
}

func (e *Engine) broadcastLifecycle(ctx context.Context, machineName, previousState, currentState, trigger string) error {
	if e.bus == nil {
		return nil
	}
	return e.bus.Publish(eventbus.SubjectProfileChanged, eventbus.ProfileChanged{
		Timestamp:  time.Now(),
		ProfileUID: machineName,
		Action:     previousState + "->" + currentState + ":" + trigger,
	})
}

// tick runs one iteration of the engine's five-step loop: preload,
// update statuses, evaluate custom sensors, process profiles and
// dispatch duties, then record timing.
func (e *Engine) tick(ctx context.Context) {
	start := time.Now()

	e.mu.Lock()
	repos, registry, group := e.repos, e.registry, e.group
	e.mu.Unlock()

	var physical []backend.Repository
	var customSensors backend.Repository
	for _, r := range repos {
		if r.Name() == customSensorsBackendName {
			customSensors = r
			continue
		}
		physical = append(physical, r)
	}

	// Steps 1-2: preload then update every physical back-end
	// concurrently, joining before step 3 so every profile evaluation
	// this tick observes one snapshot.
	e.runConcurrently(ctx, physical, func(r backend.Repository) error { return r.PreloadStatuses(ctx) })
	e.runConcurrently(ctx, physical, func(r backend.Repository) error { return r.UpdateStatuses(ctx, registry) })

	// Step 3: custom sensors compose the readings step 2 just produced,
	// so it runs strictly after every physical back-end has updated.
	if customSensors != nil {
		if err := customSensors.UpdateStatuses(ctx, registry); err != nil {
			e.log.Warn("custom sensor update failed", "error", err)
		}
	}

	// Step 4: drive every commander's scheduled channels and dispatch.
	for _, c := range []channelProcessor{group.Graph, group.Mix, group.Overlay} {
		toApply := c.ProcessAllProfiles()
		if len(toApply) == 0 {
			continue
		}
		for key, duty := range toApply {
			if e.metrics != nil {
				e.metrics.RecordDuty(key.DeviceUID, key.Channel, duty)
			}
			if e.bus != nil {
				_ = e.bus.Publish(eventbus.SubjectDutyApplied, eventbus.DutyApplied{
					Timestamp: time.Now(),
					DeviceUID: key.DeviceUID,
					Channel:   key.Channel,
					DutyPct:   duty,
				})
			}
		}
		c.UpdateSpeeds(ctx, toApply)
	}

	// Step 5: record elapsed time for diagnostics.
	elapsed := time.Since(start)
	e.mu.Lock()
	e.ticks++
	ticks := e.ticks
	e.mu.Unlock()

	if e.metrics != nil {
		e.metrics.ObserveTick(elapsed)
	}
	if e.bus != nil {
		_ = e.bus.Publish(eventbus.SubjectTickCompleted, eventbus.TickCompleted{
			Timestamp:  time.Now(),
			Elapsed:    elapsed,
			TicksTotal: ticks,
		})
	}
}

// runConcurrently fans fn out across repos cooperatively with
// nursery.RunConcurrentlyWithContext. A single
// back-end's failure is logged and does not abort its siblings or the
// tick.
func (e *Engine) runConcurrently(ctx context.Context, repos []backend.Repository, fn func(backend.Repository) error) {
	if len(repos) == 0 {
		return
	}

	tasks := make([]nursery.ConcurrentJob, 0, len(repos))
	for _, r := range repos {
		r := r
		tasks = append(tasks, func(ctx context.Context, errChan chan error) {
			if err := fn(r); err != nil {
				e.log.Warn("back-end call failed", "backend", r.Name(), "error", err)
				if e.metrics != nil {
					e.metrics.RecordDeviceFailure(r.Name(), "", err.Error())
				}
				if e.bus != nil {
					_ = e.bus.Publish(eventbus.SubjectDeviceFailure, eventbus.DeviceFailure{
						Timestamp: time.Now(),
						DeviceUID: r.Name(),
						Error:     err.Error(),
					})
				}
			}
		})
	}

	if err := nursery.RunConcurrentlyWithContext(ctx, tasks...); err != nil {
		e.log.Warn("back-end fan-out reported an error", "error", err)
	}
}

func (e *Engine) shutdownBackends(ctx context.Context) {
	e.mu.Lock()
	repos := e.repos
	e.mu.Unlock()

	for _, r := range repos {
		if err := r.Shutdown(ctx); err != nil {
			e.log.Warn("back-end shutdown failed", "backend", r.Name(), "error", err)
		}
	}
}
