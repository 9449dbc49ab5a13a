// SPDX-License-Identifier: BSD-3-Clause

package commander

import (
	"context"
	"log/slog"

	"github.com/codifryed/coolercontrold/internal/processor"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// Group owns one commander per profile kind and coordinates them for
// the engine loop.
type Group struct {
	Graph   *GraphProfileCommander
	Mix     *MixProfileCommander
	Overlay *OverlayProfileCommander

	dispatch *Dispatcher
}

// NewGroup constructs a Group sharing one pipeline, dispatcher and
// profile store across all three commanders.
func NewGroup(pipeline *processor.Pipeline, dispatch *Dispatcher, store processor.ProfileStore, log *slog.Logger) *Group {
	return &Group{
		Graph:    NewGraphProfileCommander(pipeline, dispatch, store, log),
		Mix:      NewMixProfileCommander(pipeline, dispatch, store, log),
		Overlay:  NewOverlayProfileCommander(pipeline, dispatch, store, log),
		dispatch: dispatch,
	}
}

// ScheduleSetting routes prof to the commander matching its Kind.
// Default and Fixed profiles go through the Graph commander, which
// the pipeline resolves without a temperature source.
func (g *Group) ScheduleSetting(key ChannelKey, prof *profile.Profile) error {
	switch prof.Kind {
	case profile.KindMix:
		return g.Mix.ScheduleSetting(key, prof)
	case profile.KindOverlay:
		return g.Overlay.ScheduleSetting(key, prof)
	default:
		return g.Graph.ScheduleSetting(key, prof)
	}
}

// ClearChannelSettingAllCommanders removes key's installed profile
// from every commander, so a reset never leaves stale state when a
// channel switches between profile kinds.
func (g *Group) ClearChannelSettingAllCommanders(key ChannelKey) {
	g.Graph.ClearChannelSetting(key)
	g.Mix.ClearChannelSetting(key)
	g.Overlay.ClearChannelSetting(key)
}

// ProcessAndApply runs process_all_profiles then update_speeds across
// every commander for one engine tick.
func (g *Group) ProcessAndApply(ctx context.Context) {
	if toApply := g.Graph.ProcessAllProfiles(); len(toApply) > 0 {
		g.Graph.UpdateSpeeds(ctx, toApply)
	}
	if toApply := g.Mix.ProcessAllProfiles(); len(toApply) > 0 {
		g.Mix.UpdateSpeeds(ctx, toApply)
	}
	if toApply := g.Overlay.ProcessAllProfiles(); len(toApply) > 0 {
		g.Overlay.UpdateSpeeds(ctx, toApply)
	}
}

// Dispatcher exposes the shared back-end dispatcher, e.g. for
// apply_setting_reset calls issued outside a tick.
func (g *Group) Dispatcher() *Dispatcher { return g.dispatch }
