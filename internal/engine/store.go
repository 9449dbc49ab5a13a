// SPDX-License-Identifier: BSD-3-Clause

package engine

import (
	"sync"

	"github.com/codifryed/coolercontrold/internal/config"
	"github.com/codifryed/coolercontrold/internal/profile"
)

// configStore implements processor.ProfileStore over a config.Provider
// snapshot, refreshed whenever the engine observes a profile/function
// change event. Rebuilding
// wholesale on every change is simpler than incremental patching and
// cheap: the config data set is small and changes are rare relative to
// the poll cadence.
type configStore struct {
	cfg config.Provider

	mu        sync.RWMutex
	profiles  map[string]*profile.Profile
	functions map[string]*profile.Function
}

func newConfigStore(cfg config.Provider) *configStore {
	return &configStore{cfg: cfg, profiles: map[string]*profile.Profile{}, functions: map[string]*profile.Function{}}
}

// Refresh reloads every profile and function from the config
// provider.
func (s *configStore) Refresh() error {
	profiles, err := s.cfg.GetProfiles()
	if err != nil {
		return err
	}
	functions, err := s.cfg.GetFunctions()
	if err != nil {
		return err
	}

	profileByUID := make(map[string]*profile.Profile, len(profiles))
	for _, p := range profiles {
		profileByUID[p.UID] = p
	}
	functionByUID := make(map[string]*profile.Function, len(functions))
	for _, f := range functions {
		functionByUID[f.UID] = f
	}

	s.mu.Lock()
	s.profiles, s.functions = profileByUID, functionByUID
	s.mu.Unlock()
	return nil
}

func (s *configStore) Profile(uid string) (*profile.Profile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[uid]
	return p, ok
}

func (s *configStore) Function(uid string) (*profile.Function, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.functions[uid]
	return f, ok
}

// All returns every currently-known profile, for the engine's
// channel-scheduling pass.
func (s *configStore) All() []*profile.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*profile.Profile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p)
	}
	return out
}
