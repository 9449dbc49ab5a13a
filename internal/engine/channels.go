// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"context"
	"time"

	"github.com/codifryed/coolercontrold/internal/commander"
	"github.com/codifryed/coolercontrold/internal/device"
	"github.com/codifryed/coolercontrold/internal/eventbus"
)

// scheduleAllChannelSettings installs every configured channel's
// profile onto the commander group at start-up.
func (e *Engine) scheduleAllChannelSettings(group *commander.Group, registry *device.Registry) {
	for _, dev := range registry.All() {
		settings, err := e.cfg.GetDeviceSettings(dev.UID)
		if err != nil || settings == nil {
			continue
		}
		for _, ch := range settings.Channels {
			e.scheduleOne(group, commander.ChannelKey{DeviceUID: dev.UID, Channel: ch.ChannelName}, ch.ProfileUID)
		}
	}
}

func (e *Engine) scheduleOne(group *commander.Group, key commander.ChannelKey, profileUID string) {
	if profileUID == "" {
		return
	}
	e.mu.Lock()
	store := e.store
	e.mu.Unlock()

	prof, ok := store.Profile(profileUID)
	if !ok {
		e.log.Warn("channel setting names an unknown profile", "device", key.DeviceUID, "channel", key.Channel, "profile", profileUID)
		return
	}
	if err := group.ScheduleSetting(key, prof); err != nil {
		e.log.Warn("failed to schedule channel setting", "device", key.DeviceUID, "channel", key.Channel, "profile", profileUID, "error", err)
	}
}

// ApplyChannelSetting handles a device channel setting applied
// out-of-band. It reloads the profile/function
// store so the newly-referenced profile is resolvable, then installs
// it on the channel.
func (e *Engine) ApplyChannelSetting(ctx context.Context, deviceUID, channel, profileUID string) error {
	e.mu.Lock()
	store, group := e.store, e.group
	e.mu.Unlock()

	if err := store.Refresh(); err != nil {
		return err
	}
	e.scheduleOne(group, commander.ChannelKey{DeviceUID: deviceUID, Channel: channel}, profileUID)

	if e.bus != nil {
		return e.bus.Publish(eventbus.SubjectProfileChanged, eventbus.ProfileChanged{
			Timestamp:  time.Now(),
			ProfileUID: profileUID,
			Action:     "applied:" + deviceUID + "/" + channel,
		})
	}
	return nil
}

// ResetChannelSetting handles a channel reset out-of-band. It clears
// the channel from every commander and issues the back-end reset.
func (e *Engine) ResetChannelSetting(ctx context.Context, deviceUID, channel string) error {
	e.mu.Lock()
	group := e.group
	e.mu.Unlock()

	key := commander.ChannelKey{DeviceUID: deviceUID, Channel: channel}
	group.ClearChannelSettingAllCommanders(key)
	return group.Dispatcher().ApplyReset(ctx, deviceUID, channel)
}

// OnProfileChanged reloads the profile/function store after a profile
// or function is added, updated, or deleted out-of-band.
func (e *Engine) OnProfileChanged(ctx context.Context, profileUID, action string) error {
	e.mu.Lock()
	store := e.store
	e.mu.Unlock()

	if err := store.Refresh(); err != nil {
		return err
	}
	if e.bus != nil {
		return e.bus.Publish(eventbus.SubjectProfileChanged, eventbus.ProfileChanged{Timestamp: time.Now(), ProfileUID: profileUID, Action: action})
	}
	return nil
}

// WakeFromSleep discards every device's status history (names included,
// until the next status update) and reinitializes every back-end, to
// recover from a suspend/resume cycle.
func (e *Engine) WakeFromSleep(ctx context.Context) error {
	e.mu.Lock()
	registry, repos := e.registry, e.repos
	e.mu.Unlock()

	for _, dev := range registry.All() {
		dev.ResetHistory()
	}

	for _, r := range repos {
		if err := r.ReinitializeDevices(ctx, registry); err != nil {
			e.log.Warn("back-end reinitialization failed", "backend", r.Name(), "error", err)
		}
	}

	e.mu.Lock()
	dispatch := e.group.Dispatcher()
	e.mu.Unlock()
	dispatch.Rebuild(repos)

	return nil
}
