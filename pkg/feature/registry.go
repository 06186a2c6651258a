package feature

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/voxelgameslib/voxelgameslib/pkg/game"
)

// Feature is re-exported for feature authors.
type Feature = game.Feature

// Info is re-exported for feature authors.
type Info = game.Info

var (
	ErrUnknownFeature   = errors.New("unknown feature")
	ErrDuplicateFeature = errors.New("feature already registered")
	ErrInvalidConfig    = errors.New("invalid feature config")
)

// Constructor creates a feature with its default configuration.
type Constructor func() Feature

type entry struct {
	info Info
	ctor Constructor
}

// Registry maps feature names to constructors. It implements game.Factory.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]entry)}
}

// Register adds a constructor under info.Name.
func (r *Registry) Register(info Info, ctor Constructor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[info.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateFeature, info.Name)
	}
	r.entries[info.Name] = entry{info: info, ctor: ctor}
	return nil
}

// MustRegister is Register that panics, for init-time registration of builtins.
func (r *Registry) MustRegister(info Info, ctor Constructor) {
	if err := r.Register(info, ctor); err != nil {
		panic(err)
	}
}

// Create instantiates a feature with its defaults.
func (r *Registry) Create(name string) (Feature, error) {
	r.mu.RLock()
	e, ok := r.entries[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFeature, name)
	}
	return e.ctor(), nil
}

// New instantiates a feature and decodes cfg into its exposed fields.
func (r *Registry) New(name string, cfg map[string]any) (Feature, error) {
	f, err := r.Create(name)
	if err != nil {
		return nil, err
	}
	if err := Decode(cfg, f); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return f, nil
}

// Info returns metadata of a registered feature.
func (r *Registry) Info(name string) (Info, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	return e.info, ok
}

// Infos lists all registered features sorted by name.
func (r *Registry) Infos() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Defaults returns the exposed default configuration of a feature.
func (r *Registry) Defaults(name string) (map[string]any, error) {
	f, err := r.Create(name)
	if err != nil {
		return nil, err
	}
	return Expose(f), nil
}

// Order sorts features by their dependencies.
func Order(features []Feature) ([]Feature, error) {
	return game.OrderFeatures(features)
}

var _ game.Factory = (*Registry)(nil)
