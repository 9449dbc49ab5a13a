// SPDX-License-Identifier: BSD-3-Clause

package nvidia

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/codifryed/coolercontrold/internal/backend"
	"github.com/codifryed/coolercontrold/internal/config"
	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/profile"
	"github.com/codifryed/coolercontrold/pkg/ident"
)

func init() {
	backend.Register(device.TypeGPUNvidia, func(cfg config.Provider, log *slog.Logger) (backend.Repository, error) {
		return New(cfg, log), nil
	})
}

// callTimeout bounds every nvidia-smi/nvidia-settings invocation.
const callTimeout = 8 * time.Second

// gpuSettingsID identifies one GPU's display:gpu:fan coordinates for
// nvidia-settings' `[target:index]` addressing scheme.
type gpuSettingsID struct {
	display string // e.g. ":0"
	gpu     int
	fan     int
}

type deviceState struct {
	uid     string
	name    string
	index   int
	ids     gpuSettingsID
	hasFan  bool
	manual  bool
}

// Adapter implements backend.Repository via the nvidia-smi/
// nvidia-settings CLI tools.
type Adapter struct {
	cfg config.Provider
	log *slog.Logger

	mu          sync.Mutex
	devices     map[string]*deviceState
	xauthority  string
	commandName string // overridable in tests
	settingsCmd string
}

// New constructs an Adapter.
func New(cfg config.Provider, log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{
		cfg:         cfg,
		log:         log,
		devices:     map[string]*deviceState{},
		commandName: "nvidia-smi",
		settingsCmd: "nvidia-settings",
	}
}

func (a *Adapter) Name() string { return "nvidia" }

func (a *Adapter) Devices() []string {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]string, 0, len(a.devices))
	for uid := range a.devices {
		out = append(out, uid)
	}
	return out
}

func (a *Adapter) run(ctx context.Context, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	if a.xauthority != "" {
		cmd.Env = append(cmd.Environ(), "XAUTHORITY="+a.xauthority)
	}
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// InitializeDevices enumerates GPUs with nvidia-smi and resolves their
// nvidia-settings display:gpu:fan IDs.
func (a *Adapter) InitializeDevices(ctx context.Context, registry *device.Registry) error {
	a.mu.Lock()
	a.xauthority = findXauthority()
	a.mu.Unlock()

	out, err := a.run(ctx, a.commandName, "--query-gpu=index,name,uuid", "--format=csv,noheader")
	if err != nil {
		return fmt.Errorf("%w: %w", backend.ErrHardwareUnreadable, err)
	}

	idsByIndex := a.queryFanIDs(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, ", ")
		if len(fields) < 3 {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(fields[1])
		driverUUID := strings.TrimSpace(fields[2])

		uid, err := ident.DeviceUID(string(device.TypeGPUNvidia), name, index, driverUUID)
		if err != nil {
			return err
		}

		ids, hasFan := idsByIndex[index]

		channels := map[string]device.ChannelInfo{}
		if hasFan {
			channels["fan1"] = device.ChannelInfo{
				Label: "GPU Fan",
				Speed: &device.SpeedOptions{MinDutyPct: 0, MaxDutyPct: 100, FixedEnabled: true},
			}
		}

		info := device.Info{
			Channels:       channels,
			TempLabels:     map[string]string{"gpu": "GPU Core"},
			DriverMetadata: map[string]string{"uuid": driverUUID},
		}

		registered := device.NewDevice(uid, name, device.TypeGPUNvidia, info)
		if err := registry.Register(registered); err != nil {
			return err
		}
		a.devices[uid] = &deviceState{uid: uid, name: name, index: index, ids: ids, hasFan: hasFan}
	}

	return nil
}

// queryFanIDs parses `nvidia-settings -q gpus --verbose` to build a
// display:gpu:fan mapping per GPU index. Parsing is best-effort: a
// missing or unparseable query leaves every GPU fan-less rather than
// failing discovery (some fans are firmware-controlled only).
func (a *Adapter) queryFanIDs(ctx context.Context) map[int]gpuSettingsID {
	out, err := a.run(ctx, a.settingsCmd, "-q", "gpus", "--verbose")
	if err != nil {
		return nil
	}

	gpuLine := regexp.MustCompile(`\[(\d+)\]\s+([^:]+):(\d+)\[gpu:(\d+)\]`)
	fanLine := regexp.MustCompile(`\[fan:(\d+)\]`)

	result := map[int]gpuSettingsID{}
	var current *int
	var display string
	var gpuIdx int

	for _, line := range strings.Split(out, "\n") {
		if m := gpuLine.FindStringSubmatch(line); m != nil {
			idx, _ := strconv.Atoi(m[1])
			display = ":" + m[3]
			gpuIdx, _ = strconv.Atoi(m[4])
			current = &idx
		}
		if current != nil {
			if m := fanLine.FindStringSubmatch(line); m != nil {
				fan, _ := strconv.Atoi(m[1])
				result[*current] = gpuSettingsID{display: display, gpu: gpuIdx, fan: fan}
			}
		}
	}
	return result
}

func (a *Adapter) PreloadStatuses(ctx context.Context) error { return nil }

// UpdateStatuses queries temperature/fan/power for every known GPU in
// one nvidia-smi call.
func (a *Adapter) UpdateStatuses(ctx context.Context, registry *device.Registry) error {
	out, err := a.run(ctx, a.commandName, "--query-gpu=index,temperature.gpu,fan.speed,power.draw", "--format=csv,noheader,nounits")
	if err != nil {
		a.log.Warn("nvidia-smi query failed", "error", err)
		return nil
	}

	a.mu.Lock()
	states := make(map[int]*deviceState, len(a.devices))
	for _, ds := range a.devices {
		states[ds.index] = ds
	}
	a.mu.Unlock()

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		fields := strings.Split(line, ", ")
		if len(fields) < 4 {
			continue
		}
		index, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			continue
		}
		ds, ok := states[index]
		if !ok {
			continue
		}
		dev, err := registry.Get(ds.uid)
		if err != nil {
			continue
		}

		status := device.Status{Timestamp: time.Now()}
		if t, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64); err == nil {
			status.Temps = append(status.Temps, device.TempStatus{Name: "gpu", TempC: device.ClampTemp(t)})
		}
		if ds.hasFan {
			cs := device.ChannelStatus{Name: "fan1"}
			if d, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64); err == nil {
				dp := device.ClampDuty(d)
				cs.DutyPct = &dp
			}
			if w, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64); err == nil {
				cs.Watts = &w
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

// settingsAttr runs nvidia-settings -a against one GPU's fan/display
// coordinates, retrying once with a freshly-discovered Xauthority on
// "Authorization required".
func (a *Adapter) settingsAttr(ctx context.Context, ids gpuSettingsID, attrs ...string) error {
	args := []string{"-c", ids.display}
	for _, attr := range attrs {
		args = append(args, "-a", attr)
	}

	_, err := a.run(ctx, a.settingsCmd, args...)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && strings.Contains(string(exitErr.Stderr), "Authorization required") {
		a.mu.Lock()
		a.xauthority = findXauthority()
		a.mu.Unlock()
		_, err = a.run(ctx, a.settingsCmd, args...)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", backend.ErrBackendWriteFailed, err)
	}
	return nil
}

func (a *Adapter) ApplySettingReset(ctx context.Context, deviceUID, channel string) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	if !ds.hasFan || channel != "fan1" {
		return fmt.Errorf("%w: %s/%s", backend.ErrUnsupportedChannel, deviceUID, channel)
	}
	return a.settingsAttr(ctx, ds.ids, fmt.Sprintf("[gpu:%d]/GPUFanControlState=0", ds.ids.gpu))
}

func (a *Adapter) ApplySettingManualControl(ctx context.Context, deviceUID, channel string) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	if !ds.hasFan || channel != "fan1" {
		return fmt.Errorf("%w: %s/%s", backend.ErrUnsupportedChannel, deviceUID, channel)
	}
	if err := a.settingsAttr(ctx, ds.ids, fmt.Sprintf("[gpu:%d]/GPUFanControlState=1", ds.ids.gpu)); err != nil {
		return err
	}
	ds.manual = true
	return nil
}

func (a *Adapter) ApplySettingSpeedFixed(ctx context.Context, deviceUID, channel string, dutyPct float64) error {
	ds, err := a.state(deviceUID)
	if err != nil {
		return err
	}
	if !ds.hasFan || channel != "fan1" {
		return fmt.Errorf("%w: %s/%s", backend.ErrUnsupportedChannel, deviceUID, channel)
	}
	if !ds.manual {
		if err := a.ApplySettingManualControl(ctx, deviceUID, channel); err != nil {
			return err
		}
	}
	return a.settingsAttr(ctx, ds.ids, fmt.Sprintf("[fan:%d]/GPUTargetFanSpeed=%d", ds.ids.fan, int(device.ClampDuty(dutyPct))))
}

func (a *Adapter) ApplySettingSpeedProfile(ctx context.Context, deviceUID, channel string, source profile.TempSource, points []profile.GraphPoint) error {
	return fmt.Errorf("%w: nvidia has no on-device curve, evaluate host-side and use ApplySettingSpeedFixed", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingLighting(ctx context.Context, deviceUID, channel string, setting backend.LightingSetting) error {
	return fmt.Errorf("%w: nvidia does not support lighting", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingLCD(ctx context.Context, deviceUID, channel string, setting backend.LCDSetting) error {
	return fmt.Errorf("%w: nvidia does not support LCDs", backend.ErrUnsupportedChannel)
}

func (a *Adapter) ApplySettingPWMMode(ctx context.Context, deviceUID, channel string, mode backend.PWMMode) error {
	return fmt.Errorf("%w: nvidia has no pwm_mode", backend.ErrUnsupportedChannel)
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
		if !ds.hasFan {
			continue
		}
		if err := a.ApplySettingReset(ctx, ds.uid, "fan1"); err != nil {
			a.log.Warn("nvidia shutdown reset failed", "device", ds.name, "error", err)
		}
	}
	return nil
}
