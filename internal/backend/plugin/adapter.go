// SPDX-License-Identifier: BSD-3-Clause

package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/codifryed/coolercontrold/internal/backend"
	"github.com/codifryed/coolercontrold/internal/config"
	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/profile"
)

func init() {
	backend.Register(device.TypeServicePlugin, func(cfg config.Provider, log *slog.Logger) (backend.Repository, error) {
		return New(os.Getenv("COOLERCONTROLD_PLUGIN_TARGET"), cfg, log), nil
	})
}

// defaultTimeout is the global per-call timeout applied to every plugin
// RPC.
const defaultTimeout = 8 * time.Second

// deviceState pairs a remote device's registered identity with its own
// mutex, enforcing a per-device lock so two concurrent calls against
// the same plugin device serialize instead of racing the plugin's own
// internal state.
type deviceState struct {
	mu   sync.Mutex
	info remoteDevice
}

// Adapter implements backend.Repository against an external
// service-plugin process reached through pluginClient.
type Adapter struct {
	target string
	cfg    config.Provider
	log    *slog.Logger
	client pluginClient

	mu      sync.Mutex
	devices map[string]*deviceState
}

// New constructs an Adapter. target is stored, but no client is built
// from it: whatever the target, the adapter is wired to
// unconfiguredClient, so it discovers no devices and no plugin process
// is contacted.
func New(target string, cfg config.Provider, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	a := &Adapter{
		target:  target,
		cfg:     cfg,
		log:     log,
		devices: map[string]*deviceState{},
		client:  unconfiguredClient{},
	}
	return a
}

func (a *Adapter) Name() string { return "service-plugin" }

func (a *Adapter) Devices() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.devices))
	for uid := range a.devices {
		out = append(out, uid)
	}
	return out
}

// call bounds every RPC to defaultTimeout, stacked under whatever
// deadline ctx already carries. This is the seam a real
// google.golang.org/grpc client plugs into: swap a.client for one
// backed by a grpc.ClientConn and every method below keeps working
// unchanged.
func (a *Adapter) call(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	return fn(ctx)
}

func (a *Adapter) InitializeDevices(ctx context.Context, registry *device.Registry) error {
	if err := a.call(ctx, a.client.Health); err != nil {
		return fmt.Errorf("%w: plugin health check: %w", backend.ErrHardwareUnreadable, err)
	}

	var remotes []remoteDevice
	if err := a.call(ctx, func(ctx context.Context) error {
		rd, err := a.client.ListDevices(ctx)
		remotes = rd
		return err
	}); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrHardwareUnreadable, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, rd := range remotes {
		registered := device.NewDevice(rd.UID, rd.Name, device.TypeServicePlugin, rd.Info)
		if err := registry.Register(registered); err != nil {
			return err
		}
		a.devices[rd.UID] = &deviceState{info: rd}
	}

	return nil
}

func (a *Adapter) PreloadStatuses(ctx context.Context) error { return nil }

func (a *Adapter) UpdateStatuses(ctx context.Context, registry *device.Registry) error {
	a.mu.Lock()
	states := make([]*deviceState, 0, len(a.devices))
	for _, ds := range a.devices {
		states = append(states, ds)
	}
	a.mu.Unlock()

	for _, ds := range states {
		ds.mu.Lock()
		uid := ds.info.UID

		var status remoteStatus
		err := a.call(ctx, func(ctx context.Context) error {
			s, err := a.client.Status(ctx, uid)
			status = s
			return err
		})
		ds.mu.Unlock()
		if err != nil {
			a.log.Warn("plugin status failed", "device", uid, "error", err)
			continue
		}

		dev, err := registry.Get(uid)
		if err != nil {
			continue
		}
		dev.PushStatus(status.Status)
	}

	return nil
}

func (a *Adapter) state(deviceUID string) (*deviceState, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ds, ok := a.devices[deviceUID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", backend.ErrHardwareUnreadable, deviceUID)
	}
	return ds, nil
}

func (a *Adapter) ApplySettingReset(ctx context.Context, deviceUID, channel string) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := a.call(ctx, func(ctx context.Context) error {
		return a.client.ResetChannel(ctx, deviceUID, channel)
	}); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

func (a *Adapter) ApplySettingManualControl(ctx context.Context, deviceUID, channel string) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := a.call(ctx, func(ctx context.Context) error {
		return a.client.EnableManualFanControl(ctx, deviceUID, channel)
	}); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

func (a *Adapter) ApplySettingSpeedFixed(ctx context.Context, deviceUID, channel string, dutyPct float64) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := a.call(ctx, func(ctx context.Context) error {
		return a.client.FixedDuty(ctx, deviceUID, channel, device.ClampDuty(dutyPct))
	}); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

func (a *Adapter) ApplySettingSpeedProfile(ctx context.Context, deviceUID, channel string, source profile.TempSource, points []profile.GraphPoint) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := a.call(ctx, func(ctx context.Context) error {
		return a.client.SpeedProfile(ctx, deviceUID, channel, source, points)
	}); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

func (a *Adapter) ApplySettingLighting(ctx context.Context, deviceUID, channel string, setting backend.LightingSetting) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := a.call(ctx, func(ctx context.Context) error {
		return a.client.Lighting(ctx, deviceUID, channel, setting)
	}); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

func (a *Adapter) ApplySettingLCD(ctx context.Context, deviceUID, channel string, setting backend.LCDSetting) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	ds.mu.Lock()
	defer ds.mu.Unlock()

	if err := a.call(ctx, func(ctx context.Context) error {
		return a.client.Lcd(ctx, deviceUID, channel, setting)
	}); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

func (a *Adapter) ApplySettingPWMMode(ctx context.Context, deviceUID, channel string, mode backend.PWMMode) error {
	return fmt.Errorf("%w: service plugins have no pwm_mode RPC", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ReinitializeDevices(ctx context.Context, registry *device.Registry) error {
	a.mu.Lock()
	a.devices = map[string]*deviceState{}
	a.mu.Unlock()
	return a.InitializeDevices(ctx, registry)
}

func (a *Adapter) Shutdown(ctx context.Context) error {
	return a.call(ctx, a.client.Shutdown)
}
