// SPDX-License-Identifier: BSD-3-Clause

package hwmon

import (
	"context"
	"fmt"
	"log/slog"
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
	backend.Register(device.TypeHwmon, func(cfg config.Provider, log *slog.Logger) (backend.Repository, error) {
		return New(sysfs.DefaultHwmonPath, cfg, log), nil
	})
}

// deviceState is the adapter's per-device bookkeeping: the discovered
// sensors and the pwmN_enable value observed at start-up, which
// ApplySettingReset restores.
type deviceState struct {
	dev          *sysfs.Device
	uid          string
	pwmSensors   map[string]*sysfs.SensorInfo // channel name -> pwm sensor
	fanSensors   map[string]*sysfs.SensorInfo // channel name -> fan sensor
	tempSensors  map[string]*sysfs.SensorInfo // temp name -> temp sensor
	restoreEnable map[string]int
	thinkpad     bool
}

// Adapter implements backend.Repository over kernel hwmon sysfs files.
type Adapter struct {
	basePath string
	cfg      config.Provider
	log      *slog.Logger

	discoverer *sysfs.Discoverer

	mu      sync.Mutex
	devices map[string]*deviceState
}

// New constructs an Adapter rooted at basePath (normally
// sysfs.DefaultHwmonPath).
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

func (a *Adapter) Name() string { return "hwmon" }

func (a *Adapter) Devices() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.devices))
	for uid := range a.devices {
		out = append(out, uid)
	}
	return out
}

// InitializeDevices discovers hwmon devices, records each pwm channel's
// restore-default enable value, and registers every device with registry.
func (a *Adapter) InitializeDevices(ctx context.Context, registry *device.Registry) error {
	settings, err := a.cfg.GetSettings()
	if err != nil {
		return fmt.Errorf("%w: %w", backend.ErrHardwareUnreadable, err)
	}

	discovered, err := a.discoverer.DiscoverDevices(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", backend.ErrHardwareUnreadable, err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for idx, d := range discovered {
		uid, err := ident.DeviceUID(string(device.TypeHwmon), d.Name, idx, "")
		if err != nil {
			return err
		}

		pwmSensors, err := d.GetSensorsByType(ctx, sysfs.SensorTypePWM)
		if err != nil {
			a.log.Warn("hwmon pwm discovery failed", "device", d.Name, "error", err)
		}
		fanSensors, _ := d.GetSensorsByType(ctx, sysfs.SensorTypeFan)
		tempSensors, _ := d.GetSensorsByType(ctx, sysfs.SensorTypeTemperature)

		ds := &deviceState{
			dev:           d,
			uid:           uid,
			pwmSensors:    map[string]*sysfs.SensorInfo{},
			fanSensors:    map[string]*sysfs.SensorInfo{},
			tempSensors:   map[string]*sysfs.SensorInfo{},
			restoreEnable: map[string]int{},
			thinkpad:      settings.ThinkpadFullSpeed && isThinkpadName(d.Name),
		}

		channels := map[string]device.ChannelInfo{}
		for _, s := range pwmSensors {
			name := channelName(s)
			ds.pwmSensors[name] = s
			writable := s.Writable
			if p, err := s.GetAttributePath(sysfs.AttributeEnable); err == nil {
				if v, err := sysfs.ReadIntCtx(ctx, p); err == nil {
					ds.restoreEnable[name] = v
				}
			}
			channels[name] = device.ChannelInfo{
				Label: s.Label,
				Speed: &device.SpeedOptions{MinDutyPct: 0, MaxDutyPct: 100, FixedEnabled: writable, AutoHWCurve: hasAutoPoints(s)},
			}
		}
		for _, s := range fanSensors {
			ds.fanSensors[channelName(s)] = s
		}
		info := device.Info{Channels: channels, TempLabels: map[string]string{}}
		for _, s := range tempSensors {
			name := tempName(s)
			ds.tempSensors[name] = s
			info.TempLabels[name] = s.Label
		}

		registered := device.NewDevice(uid, d.Name, device.TypeHwmon, info)
		if err := registry.Register(registered); err != nil {
			return err
		}
		a.devices[uid] = ds
	}

	return nil
}

func isThinkpadName(name string) bool {
	return name == "thinkpad"
}

func hasAutoPoints(s *sysfs.SensorInfo) bool {
	_, ok := s.Attributes[sysfs.AttributeTarget]
	return ok
}

func channelName(s *sysfs.SensorInfo) string {
	return fmt.Sprintf("pwm%d", s.Index)
}

func tempName(s *sysfs.SensorInfo) string {
	if s.Label != "" {
		return s.Label
	}
	return fmt.Sprintf("temp%d", s.Index)
}

// PreloadStatuses has no concurrent pre-tick work for hwmon: every read
// is already a cheap sysfs file read performed in UpdateStatuses.
func (a *Adapter) PreloadStatuses(ctx context.Context) error { return nil }

// UpdateStatuses reads the current temp/fan/pwm values for every
// registered device.
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
		for name, s := range ds.tempSensors {
			p, err := s.GetAttributePath(sysfs.AttributeInput)
			if err != nil {
				continue
			}
			raw, err := sysfs.ReadIntCtx(ctx, p)
			if err != nil {
				a.log.Warn("hwmon temp read failed", "device", ds.dev.Name, "sensor", name, "error", err)
				continue
			}
			status.Temps = append(status.Temps, device.TempStatus{Name: name, TempC: device.ClampTemp(sysfs.NewTemperatureValue(int64(raw)).Celsius())})
		}

		for name, s := range ds.pwmSensors {
			cs := device.ChannelStatus{Name: name}
			if p, err := s.GetAttributePath(sysfs.AttributeInput); err == nil {
				if raw, err := sysfs.ReadIntCtx(ctx, p); err == nil {
					d := sysfs.PWMToDuty(raw)
					cs.DutyPct = &d
				}
			}
			if fan, ok := ds.fanSensors[fanChannelFor(name)]; ok {
				if p, err := fan.GetAttributePath(sysfs.AttributeInput); err == nil {
					if raw, err := sysfs.ReadIntCtx(ctx, p); err == nil {
						rpm := device.ClampRPM(sysfs.DecodeFanRPM(raw))
						cs.RPM = &rpm
					}
				}
			}
			status.Channels = append(status.Channels, cs)
		}

		dev.PushStatus(status)
	}

	return nil
}

func fanChannelFor(pwmChannel string) string {
	// pwm1 pairs with fan1 by hwmon convention.
	return "fan" + pwmChannel[len("pwm"):]
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

// ApplySettingReset reverts a channel to its discovered default pwm_enable
// value. For a ThinkPad fan with thinkpad_full_speed enabled, this instead
// writes the full-speed passthrough sequence.
func (a *Adapter) ApplySettingReset(ctx context.Context, deviceUID, channel string) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	s, ok := ds.pwmSensors[channel]
	if !ok {
		return fmt.Errorf("%w: %s/%s", backend.ErrUnsupportedChannel, deviceUID, channel)
	}

	if ds.thinkpad && channel == "pwm1" {
		return a.applyThinkpadFullSpeed(ctx, s)
	}

	enablePath, err := s.GetAttributePath(sysfs.AttributeEnable)
	if err != nil {
		return nil // device has no enable control; nothing to reset
	}
	restore, ok := ds.restoreEnable[channel]
	if !ok {
		restore = 2 // hwmon convention: 2 = automatic/firmware control
	}
	if err := sysfs.WriteIntCtx(ctx, enablePath, restore); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

// applyThinkpadFullSpeed writes pwm1=255 then pwm1_enable=0; the firmware
// only honors full-speed passthrough once the duty has already been pinned
// to max, so the order matters.
func (a *Adapter) applyThinkpadFullSpeed(ctx context.Context, s *sysfs.SensorInfo) error {
	inputPath, err := s.GetAttributePath(sysfs.AttributeInput)
	if err != nil {
		return fmt.Errorf("%w: thinkpad pwm1 not writable", backend.ErrUnsupportedChannel)
	}
	if err := sysfs.WriteIntCtx(ctx, inputPath, 255); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	enablePath, err := s.GetAttributePath(sysfs.AttributeEnable)
	if err != nil {
		return fmt.Errorf("%w: thinkpad pwm1_enable missing", backend.ErrUnsupportedChannel)
	}
	if err := sysfs.WriteIntCtx(ctx, enablePath, 0); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

// ApplySettingManualControl switches a channel to manual duty mode by
// writing pwm[i]_enable=1, skipping the write if it's already set.
func (a *Adapter) ApplySettingManualControl(ctx context.Context, deviceUID, channel string) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	s, ok := ds.pwmSensors[channel]
	if !ok {
		return fmt.Errorf("%w: %s/%s", backend.ErrUnsupportedChannel, deviceUID, channel)
	}
	enablePath, err := s.GetAttributePath(sysfs.AttributeEnable)
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

// ApplySettingSpeedFixed writes a steady duty to a channel's pwm input.
func (a *Adapter) ApplySettingSpeedFixed(ctx context.Context, deviceUID, channel string, dutyPct float64) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	s, ok := ds.pwmSensors[channel]
	if !ok {
		return fmt.Errorf("%w: %s/%s", backend.ErrUnsupportedChannel, deviceUID, channel)
	}
	if err := a.ApplySettingManualControl(ctx, deviceUID, channel); err != nil {
		return err
	}
	inputPath, err := s.GetAttributePath(sysfs.AttributeInput)
	if err != nil {
		return fmt.Errorf("%w: %s/%s has no writable pwm input", backend.ErrUnsupportedChannel, deviceUID, channel)
	}
	if err := sysfs.WriteIntCtx(ctx, inputPath, sysfs.DutyToPWM(device.ClampDuty(dutyPct))); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

// ApplySettingSpeedProfile pushes an on-device curve, only valid when the
// channel supports auto_hw_curve. The Kraken3 family (NZXT Kraken X3/Z3)
// can't accept arbitrary auto_point temperatures — its firmware pins 40
// buckets to fixed one-degree steps from 20 to 59 Celsius — so those
// devices get the user graph resampled onto the fixed buckets instead of a
// point-for-point write.
func (a *Adapter) ApplySettingSpeedProfile(ctx context.Context, deviceUID, channel string, source profile.TempSource, points []profile.GraphPoint) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	if _, ok := ds.pwmSensors[channel]; !ok {
		return fmt.Errorf("%w: %s/%s", backend.ErrUnsupportedChannel, deviceUID, channel)
	}

	idx := channel[len("pwm"):]

	if sysfs.IsKrakenFamily(ds.dev.Name) {
		curve := make([]sysfs.CurvePoint, len(points))
		for i, pt := range points {
			curve[i] = sysfs.CurvePoint{TempC: pt.TempC, DutyPct: pt.DutyPct}
		}
		duties := sysfs.InterpolateKrakenBuckets(curve)
		for i, dutyPct := range duties {
			pwmPath := fmt.Sprintf("%s/pwm%s_auto_point%d_pwm", ds.dev.Path, idx, i+1)
			_ = sysfs.WriteIntCtx(ctx, pwmPath, sysfs.DutyToPWM(dutyPct))
		}
		return nil
	}

	// Writing temp[x]_auto_pointN_{temp,pwm} pairs is driver-specific;
	// this adapter supports the generic case by writing each point in
	// order to the matching pwmN_auto_pointK_{temp,pwm} files when the
	// driver exposes them, skipping silently when it does not (not
	// every hwmon driver implements on-device curves).
	for i, pt := range points {
		tempPath := fmt.Sprintf("%s/pwm%s_auto_point%d_temp", ds.dev.Path, idx, i+1)
		pwmPath := fmt.Sprintf("%s/pwm%s_auto_point%d_pwm", ds.dev.Path, idx, i+1)
		_ = sysfs.WriteIntCtx(ctx, tempPath, int(pt.TempC*1000))
		_ = sysfs.WriteIntCtx(ctx, pwmPath, sysfs.DutyToPWM(pt.DutyPct))
	}
	return nil
}

func (a *Adapter) ApplySettingLighting(ctx context.Context, deviceUID, channel string, setting backend.LightingSetting) error {
	return fmt.Errorf("%w: hwmon does not support lighting", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingLCD(ctx context.Context, deviceUID, channel string, setting backend.LCDSetting) error {
	return fmt.Errorf("%w: hwmon does not support LCDs", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingPWMMode(ctx context.Context, deviceUID, channel string, mode backend.PWMMode) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	s, ok := ds.pwmSensors[channel]
	if !ok {
		return fmt.Errorf("%w: %s/%s", backend.ErrUnsupportedChannel, deviceUID, channel)
	}
	modePath, err := s.GetAttributePath(sysfs.AttributeType)
	if err != nil {
		return fmt.Errorf("%w: %s/%s has no pwm_mode", backend.ErrUnsupportedChannel, deviceUID, channel)
	}
	if err := sysfs.WriteIntCtx(ctx, modePath, int(mode)); err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

// ReinitializeDevices re-runs discovery after a resume from sleep, when
// sysfs paths and pwm_enable defaults may have been reset by the kernel.
func (a *Adapter) ReinitializeDevices(ctx context.Context, registry *device.Registry) error {
	a.mu.Lock()
	a.devices = map[string]*deviceState{}
	a.mu.Unlock()
	return a.InitializeDevices(ctx, registry)
}

// Shutdown resets every writable pwm channel to its restore-default value so
// fans return to firmware control when the daemon stops.
func (a *Adapter) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	states := make([]*deviceState, 0, len(a.devices))
	for _, ds := range a.devices {
		states = append(states, ds)
	}
	a.mu.Unlock()

	for _, ds := range states {
		for channel := range ds.pwmSensors {
			if err := a.ApplySettingReset(ctx, ds.uid, channel); err != nil {
				a.log.Warn("hwmon shutdown reset failed", "device", ds.dev.Name, "channel", channel, "error", err)
			}
		}
	}
	return nil
}
