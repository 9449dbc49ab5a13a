// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"bytes"
	"fmt"
	"os"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/codifryed/coolercontrold/internal/customsensor"
	"github.com/codifryed/coolercontrold/internal/profile"
	"github.com/codifryed/coolercontrold/pkg/file"
	"github.com/codifryed/coolercontrold/pkg/ident"
)

// tomlFunction mirrors profile.Function for serialization; field names
// follow the original daemon's snake_case TOML keys.
type tomlFunction struct {
	Name                  string  `toml:"name"`
	Kind                  string  `toml:"kind"`
	ResponseDelaySec      float64 `toml:"response_delay"`
	DevianceC             float64 `toml:"deviance"`
	OnlyDownward          bool    `toml:"only_downward"`
	SampleWindow          int     `toml:"sample_window"`
	StepSizeMinIncreasing float64 `toml:"step_size_min"`
	StepSizeMaxIncreasing float64 `toml:"step_size_max"`
	StepSizeMinDecreasing float64 `toml:"step_size_min_decreasing"`
	StepSizeMaxDecreasing float64 `toml:"step_size_max_decreasing"`
	ThresholdHopping      bool    `toml:"threshold_hopping"`
	DutyMinimumPct        float64 `toml:"duty_minimum"`
	DutyMaximumPct        float64 `toml:"duty_maximum"`
}

type tomlGraphPoint struct {
	TempC   float64 `toml:"temp"`
	DutyPct float64 `toml:"duty"`
}

type tomlOffsetPoint struct {
	DutyPct       float64 `toml:"duty"`
	OffsetDutyPct float64 `toml:"offset_duty"`
}

type tomlProfile struct {
	Name string `toml:"name"`
	Kind string `toml:"kind"`

	FixedDutyPct float64 `toml:"fixed_duty"`

	SourceDeviceUID string           `toml:"source_device_uid"`
	SourceTempName  string           `toml:"source_temp_name"`
	FunctionName    string           `toml:"function_name"`
	Points          []tomlGraphPoint `toml:"point"`

	MemberNames []string `toml:"member_names"`
	MixFunction string   `toml:"mix_function"`

	MemberName   string            `toml:"member_name"`
	OffsetPoints []tomlOffsetPoint `toml:"offset_point"`
}

type tomlCustomSensorSource struct {
	DeviceUID string  `toml:"device_uid"`
	TempName  string  `toml:"temp_name"`
	SensorID  string  `toml:"sensor_id"`
	WeightPct float64 `toml:"weight"`
}

type tomlCustomSensor struct {
	ID       string                   `toml:"id"`
	Name     string                   `toml:"name"`
	Kind     string                   `toml:"kind"`
	Sources  []tomlCustomSensorSource `toml:"source"`
	MixFn    string                   `toml:"mix_function"`
	OffsetC  float64                  `toml:"offset"`
	FilePath string                   `toml:"file_path"`
}

type tomlChannelSetting struct {
	ChannelName string `toml:"channel"`
	ProfileName string `toml:"profile_name"`
}

type tomlDeviceSettings struct {
	DeviceUID string               `toml:"device_uid"`
	Channels  []tomlChannelSetting `toml:"channel_setting"`
}

type tomlDocument struct {
	Settings struct {
		PollRateSec       float64 `toml:"poll_rate"`
		ApplyOnBoot       bool    `toml:"apply_on_boot"`
		ThinkpadFullSpeed bool    `toml:"thinkpad_full_speed"`
		NoInit            bool    `toml:"no_init"`
		StartupDelaySec   float64 `toml:"startup_delay"`
		Compress          bool    `toml:"compress"`
	} `toml:"settings"`

	Functions     []tomlFunction       `toml:"function"`
	Profiles      []tomlProfile        `toml:"profile"`
	CustomSensors []tomlCustomSensor   `toml:"custom_sensor"`
	Devices       []tomlDeviceSettings `toml:"device"`
}

// TOMLProvider is a Provider backed by a TOML file, matching the
// on-disk format of the original daemon's persisted configuration
// (original_source/coolercontrold/src/config.rs). It is a reference/
// sample implementation: the full schema (UI layout, theme, API
// bindings) is out of scope, only the fields the engine core reads.
type TOMLProvider struct {
	mu            sync.RWMutex
	path          string
	settings      Settings
	functions     map[string]*profile.Function
	functionByName map[string]string
	profiles      map[string]*profile.Profile
	customSensors map[string]*customsensor.Sensor
	deviceSettings map[string]*DeviceSettings
}

// LoadTOMLProvider reads and parses path into a TOMLProvider.
func LoadTOMLProvider(path string) (*TOMLProvider, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	var doc tomlDocument
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	p := &TOMLProvider{
		path:           path,
		functions:      map[string]*profile.Function{},
		functionByName: map[string]string{},
		profiles:       map[string]*profile.Profile{},
		customSensors:  map[string]*customsensor.Sensor{},
		deviceSettings: map[string]*DeviceSettings{},
	}

	p.settings = Settings{
		PollRateSec:       orDefault(doc.Settings.PollRateSec, 1.0),
		ApplyOnBoot:       doc.Settings.ApplyOnBoot,
		ThinkpadFullSpeed: doc.Settings.ThinkpadFullSpeed,
		NoInit:            doc.Settings.NoInit,
		StartupDelaySec:   doc.Settings.StartupDelaySec,
		Compress:          doc.Settings.Compress,
	}

	for _, tf := range doc.Functions {
		uid, err := ident.FunctionUID(tf.Name)
		if err != nil {
			return nil, err
		}
		p.functions[uid] = &profile.Function{
			UID:                   uid,
			Name:                  tf.Name,
			Kind:                  profile.FunctionKind(tf.Kind),
			ResponseDelaySec:      tf.ResponseDelaySec,
			DevianceC:             tf.DevianceC,
			OnlyDownward:          tf.OnlyDownward,
			SampleWindow:          tf.SampleWindow,
			StepSizeMinIncreasing: tf.StepSizeMinIncreasing,
			StepSizeMaxIncreasing: tf.StepSizeMaxIncreasing,
			StepSizeMinDecreasing: tf.StepSizeMinDecreasing,
			StepSizeMaxDecreasing: tf.StepSizeMaxDecreasing,
			ThresholdHopping:      tf.ThresholdHopping,
			DutyMinimumPct:        tf.DutyMinimumPct,
			DutyMaximumPct:        tf.DutyMaximumPct,
		}
		p.functionByName[tf.Name] = uid
	}

	profileUIDByName := map[string]string{}
	for _, tp := range doc.Profiles {
		uid, err := ident.ProfileUID(tp.Kind, tp.Name)
		if err != nil {
			return nil, err
		}
		profileUIDByName[tp.Name] = uid
	}

	for _, tp := range doc.Profiles {
		uid := profileUIDByName[tp.Name]
		pr := &profile.Profile{
			UID:          uid,
			Name:         tp.Name,
			Kind:         profile.Kind(tp.Kind),
			FixedDutyPct: tp.FixedDutyPct,
			FunctionUID:  p.functionByName[tp.FunctionName],
			MixFunction:  profile.MixFunction(tp.MixFunction),
		}
		if tp.SourceDeviceUID != "" {
			pr.Source = profile.TempSource{DeviceUID: tp.SourceDeviceUID, TempName: tp.SourceTempName}
		}
		for _, pt := range tp.Points {
			pr.Points = append(pr.Points, profile.GraphPoint{TempC: pt.TempC, DutyPct: pt.DutyPct})
		}
		for _, name := range tp.MemberNames {
			if mUID, ok := profileUIDByName[name]; ok {
				pr.MemberUIDs = append(pr.MemberUIDs, mUID)
			}
		}
		if tp.MemberName != "" {
			pr.MemberUID = profileUIDByName[tp.MemberName]
		}
		for _, op := range tp.OffsetPoints {
			pr.OffsetPoints = append(pr.OffsetPoints, profile.OffsetPoint{DutyPct: op.DutyPct, OffsetDutyPct: op.OffsetDutyPct})
		}
		if err := pr.Validate(); err != nil {
			return nil, err
		}
		p.profiles[uid] = pr
	}

	for _, ts := range doc.CustomSensors {
		id := ts.ID
		if id == "" {
			var err error
			id, err = ident.CustomSensorUID(ts.Kind, ts.Name)
			if err != nil {
				return nil, err
			}
		}
		cs := &customsensor.Sensor{
			ID:       id,
			Name:     ts.Name,
			Kind:     customsensor.Kind(ts.Kind),
			MixFn:    customsensor.MixFunctionKind(ts.MixFn),
			OffsetC:  ts.OffsetC,
			FilePath: ts.FilePath,
		}
		for _, src := range ts.Sources {
			cs.Sources = append(cs.Sources, customsensor.SourceRef{
				DeviceUID: src.DeviceUID,
				TempName:  src.TempName,
				SensorID:  src.SensorID,
				WeightPct: src.WeightPct,
			})
		}
		p.customSensors[id] = cs
	}

	for _, td := range doc.Devices {
		ds := &DeviceSettings{DeviceUID: td.DeviceUID}
		for _, ch := range td.Channels {
			ds.Channels = append(ds.Channels, ChannelSetting{
				ChannelName: ch.ChannelName,
				ProfileUID:  profileUIDByName[ch.ProfileName],
			})
		}
		p.deviceSettings[td.DeviceUID] = ds
	}

	return p, nil
}

func orDefault(v, def float64) float64 {
	if v <= 0 {
		return def
	}
	return v
}

func (p *TOMLProvider) GetProfiles() ([]*profile.Profile, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*profile.Profile, 0, len(p.profiles))
	for _, pr := range p.profiles {
		out = append(out, pr)
	}
	return out, nil
}

func (p *TOMLProvider) GetFunctions() ([]*profile.Function, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*profile.Function, 0, len(p.functions))
	for _, f := range p.functions {
		out = append(out, f)
	}
	return out, nil
}

func (p *TOMLProvider) GetCustomSensors() ([]*customsensor.Sensor, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*customsensor.Sensor, 0, len(p.customSensors))
	for _, s := range p.customSensors {
		out = append(out, s)
	}
	return out, nil
}

func (p *TOMLProvider) GetDeviceSettings(deviceUID string) (*DeviceSettings, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ds, ok := p.deviceSettings[deviceUID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceSettingsNotFound, deviceUID)
	}
	return ds, nil
}

func (p *TOMLProvider) GetSettings() (Settings, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.settings, nil
}

// SetSettings replaces the daemon-wide settings and persists them.
func (p *TOMLProvider) SetSettings(s Settings) error {
	p.mu.Lock()
	p.settings = s
	p.mu.Unlock()
	return p.Save()
}

// Save rewrites the backing TOML file with the provider's current
// in-memory state, using an atomic replace so a concurrent reader (or a
// crash mid-write) never observes a partially written config.
func (p *TOMLProvider) Save() error {
	p.mu.RLock()
	doc := p.toDocument()
	path := p.path
	p.mu.RUnlock()

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}

	if err := file.AtomicUpdateFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	return nil
}

// toDocument converts the provider's in-memory state back into the TOML
// wire format. Caller must hold at least a read lock.
func (p *TOMLProvider) toDocument() tomlDocument {
	var doc tomlDocument
	doc.Settings.PollRateSec = p.settings.PollRateSec
	doc.Settings.ApplyOnBoot = p.settings.ApplyOnBoot
	doc.Settings.ThinkpadFullSpeed = p.settings.ThinkpadFullSpeed
	doc.Settings.NoInit = p.settings.NoInit
	doc.Settings.StartupDelaySec = p.settings.StartupDelaySec
	doc.Settings.Compress = p.settings.Compress

	profileNameByUID := map[string]string{}
	for _, pr := range p.profiles {
		profileNameByUID[pr.UID] = pr.Name
	}

	for _, f := range p.functions {
		doc.Functions = append(doc.Functions, tomlFunction{
			Name:                  f.Name,
			Kind:                  string(f.Kind),
			ResponseDelaySec:      f.ResponseDelaySec,
			DevianceC:             f.DevianceC,
			OnlyDownward:          f.OnlyDownward,
			SampleWindow:          f.SampleWindow,
			StepSizeMinIncreasing: f.StepSizeMinIncreasing,
			StepSizeMaxIncreasing: f.StepSizeMaxIncreasing,
			StepSizeMinDecreasing: f.StepSizeMinDecreasing,
			StepSizeMaxDecreasing: f.StepSizeMaxDecreasing,
			ThresholdHopping:      f.ThresholdHopping,
			DutyMinimumPct:        f.DutyMinimumPct,
			DutyMaximumPct:        f.DutyMaximumPct,
		})
	}

	for _, pr := range p.profiles {
		tp := tomlProfile{
			Name:            pr.Name,
			Kind:            string(pr.Kind),
			FixedDutyPct:    pr.FixedDutyPct,
			SourceDeviceUID: pr.Source.DeviceUID,
			SourceTempName:  pr.Source.TempName,
			MixFunction:     string(pr.MixFunction),
		}
		if pr.FunctionUID != "" {
			if f, ok := p.functions[pr.FunctionUID]; ok {
				tp.FunctionName = f.Name
			}
		}
		for _, pt := range pr.Points {
			tp.Points = append(tp.Points, tomlGraphPoint{TempC: pt.TempC, DutyPct: pt.DutyPct})
		}
		for _, uid := range pr.MemberUIDs {
			tp.MemberNames = append(tp.MemberNames, profileNameByUID[uid])
		}
		if pr.MemberUID != "" {
			tp.MemberName = profileNameByUID[pr.MemberUID]
		}
		for _, op := range pr.OffsetPoints {
			tp.OffsetPoints = append(tp.OffsetPoints, tomlOffsetPoint{DutyPct: op.DutyPct, OffsetDutyPct: op.OffsetDutyPct})
		}
		doc.Profiles = append(doc.Profiles, tp)
	}

	for _, cs := range p.customSensors {
		tcs := tomlCustomSensor{
			ID:       cs.ID,
			Name:     cs.Name,
			Kind:     string(cs.Kind),
			MixFn:    string(cs.MixFn),
			OffsetC:  cs.OffsetC,
			FilePath: cs.FilePath,
		}
		for _, src := range cs.Sources {
			tcs.Sources = append(tcs.Sources, tomlCustomSensorSource{
				DeviceUID: src.DeviceUID,
				TempName:  src.TempName,
				SensorID:  src.SensorID,
				WeightPct: src.WeightPct,
			})
		}
		doc.CustomSensors = append(doc.CustomSensors, tcs)
	}

	for _, ds := range p.deviceSettings {
		td := tomlDeviceSettings{DeviceUID: ds.DeviceUID}
		for _, ch := range ds.Channels {
			td.Channels = append(td.Channels, tomlChannelSetting{
				ChannelName: ch.ChannelName,
				ProfileName: profileNameByUID[ch.ProfileUID],
			})
		}
		doc.Devices = append(doc.Devices, td)
	}

	return doc
}
