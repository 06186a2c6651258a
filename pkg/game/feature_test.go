package game_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voxelgameslib/voxelgameslib/pkg/game"
)

// recorder is a feature that logs its lifecycle into a shared slice.
type recorder struct {
	name     string
	deps     []string
	log      *[]string
	phase    *game.Phase
	startErr error
	onTick   func(*game.Phase)
}

func (r *recorder) Info() game.Info            { return game.Info{Name: r.name, Version: "test"} }
func (r *recorder) Phase() *game.Phase         { return r.phase }
func (r *recorder) SetPhase(p *game.Phase)     { r.phase = p }
func (r *recorder) Dependencies() []string     { return r.deps }
func (r *recorder) Init(context.Context) error { r.add("init"); return nil }
func (r *recorder) Start(context.Context) error {
	r.add("start")
	return r.startErr
}
func (r *recorder) Tick() {
	r.add("tick")
	if r.onTick != nil {
		r.onTick(r.phase)
	}
}
func (r *recorder) Stop(context.Context) error { r.add("stop"); return nil }

func (r *recorder) add(step string) {
	if r.log != nil {
		*r.log = append(*r.log, r.name+":"+step)
	}
}

type factory map[string]func(cfg map[string]any) game.Feature

func (f factory) New(name string, cfg map[string]any) (game.Feature, error) {
	ctor, ok := f[name]
	if !ok {
		return nil, fmt.Errorf("unknown feature %s", name)
	}
	return ctor(cfg), nil
}

func names(fs []game.Feature) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = f.Info().Name
	}
	return out
}

func TestOrderFeatures(t *testing.T) {
	t.Run("dependencies first, stable otherwise", func(t *testing.T) {
		fs := []game.Feature{
			&recorder{name: "spawn", deps: []string{"map"}},
			&recorder{name: "heal"},
			&recorder{name: "map"},
			&recorder{name: "mode"},
		}
		ordered, err := game.OrderFeatures(fs)
		require.NoError(t, err)
		assert.Equal(t, []string{"map", "spawn", "heal", "mode"}, names(ordered))
	})

	t.Run("missing dependency", func(t *testing.T) {
		_, err := game.OrderFeatures([]game.Feature{&recorder{name: "spawn", deps: []string{"map"}}})
		assert.True(t, errors.Is(err, game.ErrMissingDependency))
	})

	t.Run("cycle", func(t *testing.T) {
		_, err := game.OrderFeatures([]game.Feature{
			&recorder{name: "a", deps: []string{"b"}},
			&recorder{name: "b", deps: []string{"a"}},
		})
		assert.True(t, errors.Is(err, game.ErrDependencyCycle))
	})
}

func TestFeatureOf(t *testing.T) {
	p := game.NewPhase("lobby")
	r := &recorder{name: "heal"}
	p.AddFeature(r)

	got, ok := game.FeatureOf[*recorder](p)
	require.True(t, ok)
	assert.Same(t, r, got)
	assert.Same(t, p, r.Phase())
}
