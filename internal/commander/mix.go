// SPDX-License-Identifier: BSD-3-Clause

package commander

import (
	"context"
	"log/slog"

	"github.com/codifryed/coolercontrold/internal/processor"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// MixProfileCommander installs Mix profiles on channels. The fan-out
// to member Graph profiles and the combine step both happen inside
// processor.Pipeline.Tick.
type MixProfileCommander struct {
	*scheduler
}

// NewMixProfileCommander constructs a commander that only accepts
// profile.KindMix profiles.
func NewMixProfileCommander(pipeline *processor.Pipeline, dispatch *Dispatcher, store processor.ProfileStore, log *slog.Logger) *MixProfileCommander {
	return &MixProfileCommander{scheduler: newScheduler(profile.KindMix, pipeline, dispatch, store, log)}
}

func (c *MixProfileCommander) ScheduleSetting(key ChannelKey, prof *profile.Profile) error {
	return c.scheduleSetting(key, prof)
}

func (c *MixProfileCommander) ClearChannelSetting(key ChannelKey) {
	c.clearChannelSetting(key)
}

func (c *MixProfileCommander) ProcessAllProfiles() map[ChannelKey]float64 {
	return c.processAllProfiles()
}

func (c *MixProfileCommander) UpdateSpeeds(ctx context.Context, toApply map[ChannelKey]float64) {
	c.updateSpeeds(ctx, toApply)
}
