// SPDX-License-Identifier: BSD-3-Clause

package liquidctl

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
	"github.com/codifryed/coolercontrold/pkg/ident"
)

func init() {
	backend.Register(device.TypeLiquidctl, func(cfg config.Provider, log *slog.Logger) (backend.Repository, error) {
		return New(defaultDriverPath(), cfg, log), nil
	})
}

// defaultDriverPath resolves the external driver binary, overridable
// via environment for test/packaging purposes; the driver itself is
// not part of this module.
func defaultDriverPath() string {
	if p := os.Getenv("COOLERCONTROLD_LIQUIDCTL_DRIVER"); p != "" {
		return p
	}
	return "coolercontrol-liqctlsd"
}

// callTimeout bounds every request/response exchange with the driver
// process.
const callTimeout = 8 * time.Second

// Well-known liquidctl status keys.
const (
	statusLiquidTemp = "liquid temperature"
	statusFanSpeed   = "fan speed"
	statusFanDuty    = "fan duty"
	statusPumpSpeed  = "pump speed"
	statusPumpDuty   = "pump duty"
)

type deviceState struct {
	uid      string
	name     string
	index    int
	channels []string
	manual   map[string]bool
}

// Adapter implements backend.Repository by driving an external
// liquidctl-compatible driver process over line-oriented JSON.
type Adapter struct {
	driverPath string
	cfg        config.Provider
	log        *slog.Logger

	mu      sync.Mutex
	drv     *driver
	devices map[string]*deviceState
}

// New constructs an Adapter that will spawn driverPath on
// InitializeDevices.
func New(driverPath string, cfg config.Provider, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		driverPath: driverPath,
		cfg:        cfg,
		log:        log,
		devices:    map[string]*deviceState{},
	}
}

// callWithTimeout bounds a driver exchange to callTimeout, stacked
// under whatever deadline ctx already carries.
func callWithTimeout(ctx context.Context, drv *driver, req driverRequest) (driverResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()
	return drv.call(ctx, req)
}

func (a *Adapter) Name() string { return "liquidctl" }

func (a *Adapter) Devices() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.devices))
	for uid := range a.devices {
		out = append(out, uid)
	}
	return out
}

// InitializeDevices spawns the driver process and asks it to list its
// attached devices.
func (a *Adapter) InitializeDevices(ctx context.Context, registry *device.Registry) error {
	a.mu.Lock()
	drv, err := startDriver(ctx, a.driverPath, nil, a.log)
	if err != nil {
		a.mu.Unlock()
		return fmt.Errorf("%w: %w", backend.ErrHardwareUnreadable, err)
	}
	a.drv = drv
	a.mu.Unlock()

	resp, err := callWithTimeout(ctx, drv, driverRequest{Cmd: "list"})
	if err != nil {
		return fmt.Errorf("%w: %w", backend.ErrHardwareUnreadable, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, dd := range resp.Devices {
		uid, err := ident.DeviceUID(string(device.TypeLiquidctl), dd.Name, dd.Index, dd.Serial)
		if err != nil {
			return err
		}

		channels := map[string]device.ChannelInfo{}
		for _, ch := range dd.Channels {
			channels[ch] = device.ChannelInfo{
				Label: ch,
				Speed: &device.SpeedOptions{MinDutyPct: 0, MaxDutyPct: 100, FixedEnabled: true},
			}
		}

		info := device.Info{
			Channels:   channels,
			TempLabels: map[string]string{"liquid": "Liquid Temperature"},
		}

		registered := device.NewDevice(uid, dd.Name, device.TypeLiquidctl, info)
		if err := registry.Register(registered); err != nil {
			return err
		}
		a.devices[uid] = &deviceState{
			uid: uid, name: dd.Name, index: dd.Index,
			channels: dd.Channels, manual: map[string]bool{},
		}
	}

	return nil
}

func (a *Adapter) PreloadStatuses(ctx context.Context) error { return nil }

// UpdateStatuses requests a fresh status map per device and pushes a
// clamped snapshot.
func (a *Adapter) UpdateStatuses(ctx context.Context, registry *device.Registry) error {
	a.mu.Lock()
	drv := a.drv
	states := make([]*deviceState, 0, len(a.devices))
	for _, ds := range a.devices {
		states = append(states, ds)
	}
	a.mu.Unlock()

	if drv == nil {
		return nil
	}

	for _, ds := range states {
		resp, err := callWithTimeout(ctx, drv, driverRequest{Cmd: "status", Device: ds.index})
		if err != nil {
			a.log.Warn("liquidctl status failed", "device", ds.name, "error", err)
			continue
		}

		dev, err := registry.Get(ds.uid)
		if err != nil {
			continue
		}

		status := device.Status{Timestamp: time.Now()}
		if t, ok := resp.Status[statusLiquidTemp]; ok {
			status.Temps = append(status.Temps, device.TempStatus{Name: "liquid", TempC: device.ClampTemp(t)})
		}
		for _, ch := range ds.channels {
			cs := device.ChannelStatus{Name: ch}
			if rpm, ok := resp.Status[ch+" speed"]; ok {
				r := device.ClampRPM(int(rpm))
				cs.RPM = &r
			} else if rpm, ok := resp.Status[statusFanSpeed]; ok && ch == "fan1" {
				r := device.ClampRPM(int(rpm))
				cs.RPM = &r
			} else if rpm, ok := resp.Status[statusPumpSpeed]; ok && ch == "pump" {
				r := device.ClampRPM(int(rpm))
				cs.RPM = &r
			}
			if d, ok := resp.Status[ch+" duty"]; ok {
				dp := device.ClampDuty(d)
				cs.DutyPct = &dp
			} else if d, ok := resp.Status[statusFanDuty]; ok && ch == "fan1" {
				dp := device.ClampDuty(d)
				cs.DutyPct = &dp
			} else if d, ok := resp.Status[statusPumpDuty]; ok && ch == "pump" {
				dp := device.ClampDuty(d)
				cs.DutyPct = &dp
			}
			status.Channels = append(status.Channels, cs)
		}
		dev.PushStatus(status)
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
	a.mu.Lock()
	drv := a.drv
	a.mu.Unlock()
	if drv == nil {
		return backend.ErrHardwareUnreadable
	}

	if _, err := callWithTimeout(ctx, drv, driverRequest{Cmd: "reset", Device: ds.index, Channel: channel}); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	a.mu.Lock()
	ds.manual[channel] = false
	a.mu.Unlock()
	return nil
}

func (a *Adapter) ApplySettingManualControl(ctx context.Context, deviceUID, channel string) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	a.mu.Lock()
	drv := a.drv
	a.mu.Unlock()
	if drv == nil {
		return backend.ErrHardwareUnreadable
	}

	if _, err := callWithTimeout(ctx, drv, driverRequest{Cmd: "set_manual", Device: ds.index, Channel: channel}); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	a.mu.Lock()
	ds.manual[channel] = true
	a.mu.Unlock()
	return nil
}

func (a *Adapter) ApplySettingSpeedFixed(ctx context.Context, deviceUID, channel string, dutyPct float64) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	a.mu.Lock()
	drv := a.drv
	manual := ds.manual[channel]
	a.mu.Unlock()
	if drv == nil {
		return backend.ErrHardwareUnreadable
	}
	if !manual {
		if err := a.ApplySettingManualControl(ctx, deviceUID, channel); err != nil {
			return err
		}
	}

	if _, err := callWithTimeout(ctx, drv, driverRequest{Cmd: "set_duty", Device: ds.index, Channel: channel, Duty: device.ClampDuty(dutyPct)}); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

func (a *Adapter) ApplySettingSpeedProfile(ctx context.Context, deviceUID, channel string, source profile.TempSource, points []profile.GraphPoint) error {
	return fmt.Errorf("%w: liquidctl has no on-device curve, evaluate host-side and use ApplySettingSpeedFixed", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingLighting(ctx context.Context, deviceUID, channel string, setting backend.LightingSetting) error {
	return fmt.Errorf("%w: lighting not modeled by this driver protocol", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingLCD(ctx context.Context, deviceUID, channel string, setting backend.LCDSetting) error {
	return fmt.Errorf("%w: LCD not modeled by this driver protocol", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingPWMMode(ctx context.Context, deviceUID, channel string, mode backend.PWMMode) error {
	return fmt.Errorf("%w: liquidctl devices have no pwm_mode", backend.ErrUnsupportedChannel)
}

// ReinitializeDevices restarts the driver process and rediscovers its
// devices, since a dead driver child cannot be told to re-probe.
func (a *Adapter) ReinitializeDevices(ctx context.Context, registry *device.Registry) error {
	a.mu.Lock()
	if a.drv != nil {
		_ = a.drv.close()
		a.drv = nil
	}
	a.devices = map[string]*deviceState{}
	a.mu.Unlock()

	return a.InitializeDevices(ctx, registry)
}

// Shutdown resets every channel to auto, then terminates the driver
// process.
func (a *Adapter) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	states := make([]*deviceState, 0, len(a.devices))
	for _, ds := range a.devices {
		states = append(states, ds)
	}
	drv := a.drv
	a.mu.Unlock()

	for _, ds := range states {
		for _, ch := range ds.channels {
			if err := a.ApplySettingReset(ctx, ds.uid, ch); err != nil {
				a.log.Warn("liquidctl shutdown reset failed", "device", ds.name, "channel", ch, "error", err)
			}
		}
	}

	if drv != nil {
		return drv.close()
	}
	return nil
}
