// SPDX-License-Identifier: BSD-3-Clause

package customsensors

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codifryed/coolercontrold/internal/backend"
	"github.com/codifryed/coolercontrold/internal/config"
	"github.com/codifryed/coolercontrold/internal/customsensor"
	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/profile"
)

func init() {
	backend.Register(device.TypeCustomSensors, func(cfg config.Provider, log *slog.Logger) (backend.Repository, error) {
		return New(cfg, log), nil
	})
}

// tempName is the single temperature every virtual custom-sensor
// device reports under.
const tempName = "value"

// Adapter implements backend.Repository over customsensor.Engine.
type Adapter struct {
	cfg config.Provider
	log *slog.Logger

	mu      sync.Mutex
	engine  *customsensor.Engine
	uids    map[string]string // sensor ID -> device UID
}

// New constructs an Adapter. The wrapped customsensor.Engine is built
// lazily in InitializeDevices, once a *device.Registry is available
// for it to resolve physical source references against.
func New(cfg config.Provider, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{cfg: cfg, log: log, uids: map[string]string{}}
}

func (a *Adapter) Name() string { return "custom-sensors" }

func (a *Adapter) Devices() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.uids))
	for _, uid := range a.uids {
		out = append(out, uid)
	}
	return out
}

// InitializeDevices loads sensor definitions from config.Provider,
// builds the evaluation engine against registry, and registers one
// virtual Device per sensor.
func (a *Adapter) InitializeDevices(ctx context.Context, registry *device.Registry) error {
	sensors, err := a.cfg.GetCustomSensors()
	if err != nil {
		return fmt.Errorf("%w: %w", backend.ErrHardwareUnreadable, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.engine = customsensor.New(registry, a.log)
	a.uids = map[string]string{}

	// Parents must be added after the children they reference
	// (customsensor.Engine.AddSensor validates a sensor-ref source
	// against an already-registered child), so add leaves first.
	var leaves, parents []*customsensor.Sensor
	for _, s := range sensors {
		if s.Kind != customsensor.KindFile && hasSensorRefSource(s) {
			parents = append(parents, s)
		} else {
			leaves = append(leaves, s)
		}
	}

	for _, s := range append(leaves, parents...) {
		if err := a.engine.AddSensor(s); err != nil {
			return fmt.Errorf("%w: %w", backend.ErrHardwareUnreadable, err)
		}

		uid := "custom-sensor:" + s.ID
		info := device.Info{
			TempLabels: map[string]string{tempName: s.Name},
		}
		// A device left registered by an earlier InitializeDevices (as on
		// ReinitializeDevices) is reused rather than registered twice.
		if _, err := registry.Get(uid); err != nil {
			if err := registry.Register(device.NewDevice(uid, s.Name, device.TypeCustomSensors, info)); err != nil {
				return err
			}
		}
		a.uids[s.ID] = uid
	}

	return nil
}

func hasSensorRefSource(s *customsensor.Sensor) bool {
	for _, src := range s.Sources {
		if src.IsSensorRef() {
			return true
		}
	}
	return false
}

func (a *Adapter) PreloadStatuses(ctx context.Context) error { return nil }

// UpdateStatuses runs the engine's two-pass evaluation and pushes each
// sensor's result into its virtual device.
func (a *Adapter) UpdateStatuses(ctx context.Context, registry *device.Registry) error {
	a.mu.Lock()
	engine := a.engine
	uids := make(map[string]string, len(a.uids))
	for id, uid := range a.uids {
		uids[id] = uid
	}
	a.mu.Unlock()

	if engine == nil {
		return nil
	}

	results := engine.UpdateStatuses()
	for id, temp := range results {
		uid, ok := uids[id]
		if !ok {
			continue
		}
		dev, err := registry.Get(uid)
		if err != nil {
			continue
		}
		dev.PushStatus(device.Status{
			Timestamp: time.Now(),
			Temps:     []device.TempStatus{{Name: tempName, TempC: device.ClampTemp(temp)}},
		})
	}
	return nil
}

func (a *Adapter) ApplySettingReset(ctx context.Context, deviceUID, channel string) error {
	return fmt.Errorf("%w: custom sensors are read-only", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingManualControl(ctx context.Context, deviceUID, channel string) error {
	return fmt.Errorf("%w: custom sensors are read-only", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingSpeedFixed(ctx context.Context, deviceUID, channel string, dutyPct float64) error {
	return fmt.Errorf("%w: custom sensors are read-only", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingSpeedProfile(ctx context.Context, deviceUID, channel string, source profile.TempSource, points []profile.GraphPoint) error {
	return fmt.Errorf("%w: custom sensors are read-only", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingLighting(ctx context.Context, deviceUID, channel string, setting backend.LightingSetting) error {
	return fmt.Errorf("%w: custom sensors are read-only", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingLCD(ctx context.Context, deviceUID, channel string, setting backend.LCDSetting) error {
	return fmt.Errorf("%w: custom sensors are read-only", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingPWMMode(ctx context.Context, deviceUID, channel string, mode backend.PWMMode) error {
	return fmt.Errorf("%w: custom sensors are read-only", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ReinitializeDevices(ctx context.Context, registry *device.Registry) error {
	a.mu.Lock()
	a.uids = map[string]string{}
	a.mu.Unlock()
	return a.InitializeDevices(ctx, registry)
}

func (a *Adapter) Shutdown(ctx context.Context) error { return nil }
