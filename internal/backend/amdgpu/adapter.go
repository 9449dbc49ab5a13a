// SPDX-License-Identifier: BSD-3-Clause

package amdgpu

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codifryed/coolercontrold/internal/backend"
	"github.com/codifryed/coolercontrold/internal/config"
	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/profile"
	"github.com/codifryed/coolercontrold/pkg/ident"
	sysfs "github.com/codifryed/coolercontrold/pkg/hwmon"
)

func init() {
	backend.Register(device.TypeGPUAMD, func(cfg config.Provider, log *slog.Logger) (backend.Repository, error) {
		return New(sysfs.DefaultHwmonPath, cfg, log), nil
	})
}

// ppfeaturemaskPath is the amdgpu kernel module parameter gating the
// overdrive (PP_OVERDRIVE_MASK) feature bit.
const ppfeaturemaskPath = "/sys/module/amdgpu/parameters/ppfeaturemask"

// ppOverdriveMask is bit 14 of ppfeaturemask (PP_OVERDRIVE_MASK),
// required for the gpu_od/fan_ctrl tree to accept writes.
const ppOverdriveMask = 1 << 14

// deviceState is the adapter's per-card bookkeeping.
type deviceState struct {
	dev           *sysfs.Device
	uid           string
	name          string
	pwm           *sysfs.SensorInfo
	fan           *sysfs.SensorInfo
	temp          *sysfs.SensorInfo
	restoreEnable int
	odRoot        string // gpu_od/fan_ctrl directory, empty if unsupported
	hasZeroRPM    bool
}

// Adapter implements backend.Repository for AMD GPUs.
type Adapter struct {
	basePath string
	cfg      config.Provider
	log      *slog.Logger

	discoverer *sysfs.Discoverer

	mu      sync.Mutex
	devices map[string]*deviceState
}

// New constructs an Adapter rooted at basePath.
func New(basePath string, cfg config.Provider, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		basePath:   basePath,
		cfg:        cfg,
		log:        log,
		discoverer: sysfs.NewDiscoverer(sysfs.WithDiscoveryPath(basePath), sysfs.WithDiscoveryTimeout(8*time.Second)),
		devices:    map[string]*deviceState{},
	}
}

func (a *Adapter) Name() string { return "amdgpu" }

func (a *Adapter) Devices() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.devices))
	for uid := range a.devices {
		out = append(out, uid)
	}
	return out
}

// overdriveEnabled reads the amdgpu ppfeaturemask and reports whether
// PP_OVERDRIVE_MASK is set.
func overdriveEnabled() bool {
	raw, err := os.ReadFile(ppfeaturemaskPath)
	if err != nil {
		return false
	}
	var mask uint64
	if _, err := fmt.Sscanf(string(raw), "0x%x", &mask); err != nil {
		if _, err := fmt.Sscanf(string(raw), "%d", &mask); err != nil {
			return false
		}
	}
	return mask&ppOverdriveMask != 0
}

// InitializeDevices discovers hwmon devices reported by the amdgpu
// driver and, where present, the gpu_od/fan_ctrl overdrive tree
// rooted at <hwmon>/device/gpu_od/fan_ctrl.
func (a *Adapter) InitializeDevices(ctx context.Context, registry *device.Registry) error {
	discovered, err := a.discoverer.DiscoverDevices(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", backend.ErrHardwareUnreadable, err)
	}

	odCapable := overdriveEnabled()

	a.mu.Lock()
	defer a.mu.Unlock()

	idx := 0
	for _, d := range discovered {
		if d.Name != "amdgpu" {
			continue
		}

		uid, err := ident.DeviceUID(string(device.TypeGPUAMD), d.Name, idx, "")
		if err != nil {
			return err
		}
		idx++

		pwmSensors, _ := d.GetSensorsByType(ctx, sysfs.SensorTypePWM)
		fanSensors, _ := d.GetSensorsByType(ctx, sysfs.SensorTypeFan)
		tempSensors, _ := d.GetSensorsByType(ctx, sysfs.SensorTypeTemperature)
		if len(pwmSensors) == 0 {
			continue
		}

		ds := &deviceState{dev: d, uid: uid, name: d.Name, pwm: pwmSensors[0]}
		if len(fanSensors) > 0 {
			ds.fan = fanSensors[0]
		}
		if len(tempSensors) > 0 {
			ds.temp = tempSensors[0]
		}

		if p, err := ds.pwm.GetAttributePath(sysfs.AttributeEnable); err == nil {
			if v, err := sysfs.ReadIntCtx(ctx, p); err == nil {
				ds.restoreEnable = v
			}
		}

		odRoot := filepath.Join(d.Path, "device", "gpu_od", "fan_ctrl")
		if odCapable {
			if fi, err := os.Stat(filepath.Join(odRoot, "fan_curve")); err == nil && !fi.IsDir() {
				ds.odRoot = odRoot
				ds.hasZeroRPM = sysfs.FileExistsCtx(ctx, filepath.Join(odRoot, "fan_zero_rpm_enable"))
			}
		}

		info := device.Info{
			Channels: map[string]device.ChannelInfo{
				"pwm1": {
					Label: "GPU Fan",
					Speed: &device.SpeedOptions{MinDutyPct: 0, MaxDutyPct: 100, FixedEnabled: true, AutoHWCurve: ds.odRoot != ""},
				},
			},
			TempLabels:     map[string]string{"edge": "edge"},
			DriverMetadata: map[string]string{"driver": "amdgpu"},
		}

		registered := device.NewDevice(uid, d.Name, device.TypeGPUAMD, info)
		if err := registry.Register(registered); err != nil {
			return err
		}
		a.devices[uid] = ds
	}

	return nil
}

func (a *Adapter) PreloadStatuses(ctx context.Context) error { return nil }

// UpdateStatuses reads the current edge temperature, pwm duty and fan
// RPM for every registered card.
func (a *Adapter) UpdateStatuses(ctx context.Context, registry *device.Registry) error {
	a.mu.Lock()
	states := make([]*deviceState, 0, len(a.devices))
	for _, ds := range a.devices {
		states = append(states, ds)
	}
	a.mu.Unlock()

	for _, ds := range states {
		dev, err := registry.Get(ds.uid)
		if err != nil {
			continue
		}

		status := device.Status{Timestamp: time.Now()}
		if ds.temp != nil {
			if p, err := ds.temp.GetAttributePath(sysfs.AttributeInput); err == nil {
				if raw, err := sysfs.ReadIntCtx(ctx, p); err == nil {
					status.Temps = append(status.Temps, device.TempStatus{
						Name:  "edge",
						TempC: device.ClampTemp(sysfs.NewTemperatureValue(int64(raw)).Celsius()),
					})
				}
			}
		}

		cs := device.ChannelStatus{Name: "pwm1"}
		if p, err := ds.pwm.GetAttributePath(sysfs.AttributeInput); err == nil {
			if raw, err := sysfs.ReadIntCtx(ctx, p); err == nil {
				duty := pwmValueToDuty(raw)
				cs.DutyPct = &duty
			}
		}
		if ds.fan != nil {
			if p, err := ds.fan.GetAttributePath(sysfs.AttributeInput); err == nil {
				if raw, err := sysfs.ReadIntCtx(ctx, p); err == nil {
					rpm := device.ClampRPM(raw)
					cs.RPM = &rpm
				}
			}
		}
		status.Channels = append(status.Channels, cs)

		dev.PushStatus(status)
	}

	return nil
}

func pwmValueToDuty(raw int) float64 { return math.Round(float64(raw) / 2.55) }
func dutyToPWMValue(dutyPct float64) int {
	return int(math.Round(device.ClampDuty(dutyPct) * 2.55))
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
	if channel != "pwm1" {
		return fmt.Errorf("%w: %s/%s", backend.ErrUnsupportedChannel, deviceUID, channel)
	}
	enablePath, err := ds.pwm.GetAttributePath(sysfs.AttributeEnable)
	if err != nil {
		return nil
	}
	restore := ds.restoreEnable
	if restore == 0 {
		restore = 2
	}
	if err := sysfs.WriteIntCtx(ctx, enablePath, restore); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

func (a *Adapter) ApplySettingManualControl(ctx context.Context, deviceUID, channel string) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	if channel != "pwm1" {
		return fmt.Errorf("%w: %s/%s", backend.ErrUnsupportedChannel, deviceUID, channel)
	}
	enablePath, err := ds.pwm.GetAttributePath(sysfs.AttributeEnable)
	if err != nil {
		return nil
	}
	current, err := sysfs.ReadIntCtx(ctx, enablePath)
	if err == nil && current == 1 {
		return nil
	}
	if err := sysfs.WriteIntCtx(ctx, enablePath, 1); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

func (a *Adapter) ApplySettingSpeedFixed(ctx context.Context, deviceUID, channel string, dutyPct float64) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	if channel != "pwm1" {
		return fmt.Errorf("%w: %s/%s", backend.ErrUnsupportedChannel, deviceUID, channel)
	}

	if ds.odRoot != "" {
		return a.writeFlatCurve(ctx, ds, dutyPct)
	}

	if err := a.ApplySettingManualControl(ctx, deviceUID, channel); err != nil {
		return err
	}
	inputPath, err := ds.pwm.GetAttributePath(sysfs.AttributeInput)
	if err != nil {
		return fmt.Errorf("%w: %s/%s has no writable pwm input", backend.ErrUnsupportedChannel, deviceUID, channel)
	}
	if err := sysfs.WriteIntCtx(ctx, inputPath, dutyToPWMValue(dutyPct)); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

// writeFlatCurve pushes a two-point curve at fixed 0°C and 100°C, both
// carrying dutyPct, onto the gpu_od/fan_ctrl tree, then commits it; the
// card's reported temperature range is not read. Zero-RPM
// is disabled first so the flat curve is never silently overridden by
// the firmware's stop-at-idle behavior.
func (a *Adapter) writeFlatCurve(ctx context.Context, ds *deviceState, dutyPct float64) error {
	duty := device.ClampDuty(dutyPct)
	minC, maxC := 0, 100
	curve := fmt.Sprintf("0 %d %.0f\n1 %d %.0f\n", minC, duty, maxC, duty)

	if ds.hasZeroRPM {
		_ = sysfs.WriteIntCtx(ctx, filepath.Join(ds.odRoot, "fan_zero_rpm_enable"), 0)
	}
	if err := sysfs.WriteStringCtx(ctx, filepath.Join(ds.odRoot, "fan_curve"), curve); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	if err := sysfs.WriteStringCtx(ctx, filepath.Join(ds.odRoot, "commit"), "c\n"); err != nil {
		a.log.Warn("amdgpu fan curve commit failed", "device", ds.name, "error", err)
	}
	return nil
}

func (a *Adapter) ApplySettingSpeedProfile(ctx context.Context, deviceUID, channel string, source profile.TempSource, points []profile.GraphPoint) error {
	return fmt.Errorf("%w: amdgpu evaluates profiles host-side, see ApplySettingSpeedFixed", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingLighting(ctx context.Context, deviceUID, channel string, setting backend.LightingSetting) error {
	return fmt.Errorf("%w: amdgpu does not support lighting", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingLCD(ctx context.Context, deviceUID, channel string, setting backend.LCDSetting) error {
	return fmt.Errorf("%w: amdgpu does not support LCDs", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingPWMMode(ctx context.Context, deviceUID, channel string, mode backend.PWMMode) error {
	return fmt.Errorf("%w: amdgpu does not expose pwm_mode", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ReinitializeDevices(ctx context.Context, registry *device.Registry) error {
	a.mu.Lock()
	a.devices = map[string]*deviceState{}
	a.mu.Unlock()
	return a.InitializeDevices(ctx, registry)
}

func (a *Adapter) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	states := make([]*deviceState, 0, len(a.devices))
	for _, ds := range a.devices {
		states = append(states, ds)
	}
	a.mu.Unlock()

	for _, ds := range states {
		if err := a.ApplySettingReset(ctx, ds.uid, "pwm1"); err != nil {
			a.log.Warn("amdgpu shutdown reset failed", "device", ds.name, "error", err)
		}
	}
	return nil
}
