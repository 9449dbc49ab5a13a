// SPDX-License-Identifier: BSD-3-Clause

package commander

import (
	"context"
	"log/slog"

	"github.com/codifryed/coolercontrold/internal/processor"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// GraphProfileCommander installs Graph profiles on channels: scheduling
// a setting installs per-channel pipeline state, and each tick's
// process-all-profiles pass drives the pipeline for every scheduled
// channel.
type GraphProfileCommander struct {
	*scheduler
}

// NewGraphProfileCommander constructs a commander that only accepts
// profile.KindGraph profiles.
func NewGraphProfileCommander(pipeline *processor.Pipeline, dispatch *Dispatcher, store processor.ProfileStore, log *slog.Logger) *GraphProfileCommander {
	return &GraphProfileCommander{scheduler: newScheduler(profile.KindGraph, pipeline, dispatch, store, log)}
}

// ScheduleSetting installs prof on key.
func (c *GraphProfileCommander) ScheduleSetting(key ChannelKey, prof *profile.Profile) error {
	return c.scheduleSetting(key, prof)
}

// ClearChannelSetting removes key's installed profile.
func (c *GraphProfileCommander) ClearChannelSetting(key ChannelKey) {
	c.clearChannelSetting(key)
}

// ProcessAllProfiles drives the pipeline for every scheduled channel.
func (c *GraphProfileCommander) ProcessAllProfiles() map[ChannelKey]float64 {
	return c.processAllProfiles()
}

// UpdateSpeeds dispatches the given tick's evaluated duties.
func (c *GraphProfileCommander) UpdateSpeeds(ctx context.Context, toApply map[ChannelKey]float64) {
	c.updateSpeeds(ctx, toApply)
}
