// SPDX-License-Identifier: BSD-3-Clause

package processor

import "github.com/codifryed/coolercontrold/internal/profile"

// ProfileStore resolves profile UIDs to definitions. internal/engine's
// ConfigProvider-backed cache is the production implementation; tests
// use a plain map.
type ProfileStore interface {
	Profile(uid string) (*profile.Profile, bool)
	Function(uid string) (*profile.Function, bool)
}

// MapStore is a trivial in-memory ProfileStore.
type MapStore struct {
	Profiles  map[string]*profile.Profile
	Functions map[string]*profile.Function
}

func NewMapStore() *MapStore {
	return &MapStore{Profiles: map[string]*profile.Profile{}, Functions: map[string]*profile.Function{}}
}

func (s *MapStore) Profile(uid string) (*profile.Profile, bool) {
	p, ok := s.Profiles[uid]
	return p, ok
}

func (s *MapStore) Function(uid string) (*profile.Function, bool) {
	f, ok := s.Functions[uid]
	return f, ok
}
