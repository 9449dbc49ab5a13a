// SPDX-License-Identifier: BSD-3-Clause

// Package commander implements 's profile commanders: the
// layer between the processor pipeline's evaluated duty and the
// back-end adapter that applies it, one commander instance per profile
// kind installed on a channel.
package commander

import (
	"context"
	"fmt"
	"sync"

	"github.com/codifryed/coolercontrold/internal/backend"
)

// Dispatcher resolves a device UID to the back-end Repository that
// owns it, built once from the adapters the factory constructed.
type Dispatcher struct {
	mu    sync.RWMutex
	byUID map[string]backend.Repository
}

// NewDispatcher indexes repos by every device UID each one reports
// owning.
func NewDispatcher(repos []backend.Repository) *Dispatcher {
	d := &Dispatcher{byUID: map[string]backend.Repository{}}
	for _, r := range repos {
		for _, uid := range r.Devices() {
			d.byUID[uid] = r
		}
	}
	return d
}

// Repository returns the back-end owning deviceUID.
func (d *Dispatcher) Repository(deviceUID string) (backend.Repository, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r, ok := d.byUID[deviceUID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", backend.ErrUnknownBackend, deviceUID)
	}
	return r, nil
}

// ApplyDuty writes dutyPct to deviceUID/channel via its owning
// back-end's ApplySettingSpeedFixed; it is the single entry point
// commanders use for emitting an evaluated duty. The Dispatcher does
// not switch the channel to manual control itself: the hwmon, Nvidia
// and liquidctl adapters (and the AMD GPU adapter on its pwm path) do
// that inside ApplySettingSpeedFixed, the service-plugin adapter does
// not, and the custom-sensors adapter rejects the call.
func (d *Dispatcher) ApplyDuty(ctx context.Context, deviceUID, channel string, dutyPct float64) error {
	r, err := d.Repository(deviceUID)
	if err != nil {
		return err
	}
	return r.ApplySettingSpeedFixed(ctx, deviceUID, channel, dutyPct)
}

// ApplyReset resets deviceUID/channel to its back-end's default.
func (d *Dispatcher) ApplyReset(ctx context.Context, deviceUID, channel string) error {
	r, err := d.Repository(deviceUID)
	if err != nil {
		return err
	}
	return r.ApplySettingReset(ctx, deviceUID, channel)
}

// Rebuild re-indexes the dispatcher after ReinitializeDevices changes
// which UIDs a back-end owns.
func (d *Dispatcher) Rebuild(repos []backend.Repository) {
	byUID := map[string]backend.Repository{}
	for _, r := range repos {
		for _, uid := range r.Devices() {
			byUID[uid] = r
		}
	}

	d.mu.Lock()
	d.byUID = byUID
	d.mu.Unlock()
}
