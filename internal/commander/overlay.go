// SPDX-License-Identifier: BSD-3-Clause

package commander

import (
	"context"
	"log/slog"

	"github.com/codifryed/coolercontrold/internal/processor"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// OverlayProfileCommander installs Overlay profiles on channels. The
// single-member evaluation (which may itself be a Mix profile) and the
// offset interpolation happen inside processor.Pipeline.Tick.
type OverlayProfileCommander struct {
	*scheduler
}

// NewOverlayProfileCommander constructs a commander that only accepts
// profile.KindOverlay profiles.
func NewOverlayProfileCommander(pipeline *processor.Pipeline, dispatch *Dispatcher, store processor.ProfileStore, log *slog.Logger) *OverlayProfileCommander {
	return &OverlayProfileCommander{scheduler: newScheduler(profile.KindOverlay, pipeline, dispatch, store, log)}
}

func (c *OverlayProfileCommander) ScheduleSetting(key ChannelKey, prof *profile.Profile) error {
	return c.scheduleSetting(key, prof)
}

func (c *OverlayProfileCommander) ClearChannelSetting(key ChannelKey) {
	c.clearChannelSetting(key)
}

func (c *OverlayProfileCommander) ProcessAllProfiles() map[ChannelKey]float64 {
	return c.processAllProfiles()
}

func (c *OverlayProfileCommander) UpdateSpeeds(ctx context.Context, toApply map[ChannelKey]float64) {
	c.updateSpeeds(ctx, toApply)
}
