// SPDX-License-Identifier: BSD-3-Clause

package device

import (
	"fmt"
	"sync"
)

// Registry is the process-wide map of device UID to device state.
// Back-end adapters register devices during InitializeDevices; after
// start-up the map itself is read-only — only a Device's own status
// history mutates on later ticks.
type Registry struct {
	mu      sync.RWMutex
	devices map[string]*Device
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{devices: make(map[string]*Device)}
}

// Register adds d to the registry. It returns ErrAlreadyRegistered if a
// device with the same UID already exists.
func (r *Registry) Register(d *Device) error {
	if d == nil || d.UID == "" {
		return ErrInvalidUID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.devices[d.UID]; exists {
		return fmt.Errorf("%w: %s", ErrAlreadyRegistered, d.UID)
	}
	r.devices[d.UID] = d
	return nil
}

// Get returns the device with the given UID.
func (r *Registry) Get(uid string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.devices[uid]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDeviceNotFound, uid)
	}
	return d, nil
}

// All returns every registered device, in no particular order.
func (r *Registry) All() []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Device, 0, len(r.devices))
	for _, d := range r.devices {
		out = append(out, d)
	}
	return out
}

// ByType returns every registered device of the given type.
func (r *Registry) ByType(t Type) []*Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*Device
	for _, d := range r.devices {
		if d.Type == t {
			out = append(out, d)
		}
	}
	return out
}

// TempSource resolves a (device UID, temp name) pair against the live
// registry, substituting the emergency temperature and reporting ok=false
// when either half of the lookup fails.
func (r *Registry) TempSource(deviceUID, tempName string) (tempC float64, ok bool) {
	d, err := r.Get(deviceUID)
	if err != nil {
		return EmergencyTempC, false
	}
	t, found := d.TempByName(tempName)
	if !found {
		return EmergencyTempC, false
	}
	return t, true
}
