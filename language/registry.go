package language

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps language names to handler factories
type Registry struct {
	limits Limits

	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates a registry with the built-in profiles registered
func NewRegistry(limits Limits) *Registry {
	r := &Registry{
		limits:    limits,
		factories: make(map[string]Factory),
	}
	for _, p := range BuiltinProfiles() {
		r.factories[p.Name] = p.Factory(limits)
	}
	return r
}

// Register adds or replaces the factory for the language
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[strings.ToLower(name)] = f
}

// RegisterProfile checks the profile and registers a command handler factory for it
func (r *Registry) RegisterProfile(p Profile) error {
	if err := p.Check(); err != nil {
		return err
	}
	r.Register(p.Name, p.Factory(r.limits))
	return nil
}

// LoadFile registers every profile defined in the language configuration file
func (r *Registry) LoadFile(p string) error {
	profiles, err := LoadProfiles(p)
	if err != nil {
		return err
	}
	for _, l := range profiles {
		if err := r.RegisterProfile(l); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the factory for the language, case insensitive
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownLanguage, name)
	}
	return f, nil
}

// Names returns the registered languages in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for n := range r.factories {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
