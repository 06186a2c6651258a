package game

import (
	"context"
	"fmt"
)

// Info describes a feature implementation.
type Info struct {
	Name        string `json:"name"`
	Author      string `json:"author"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// Feature is a behaviour module attached to a phase.
// The lifecycle is Init -> Start -> Tick* -> Stop; each step runs in dependency order
// and Stop runs in reverse.
type Feature interface {
	Info() Info
	Phase() *Phase
	SetPhase(*Phase)

	Init(ctx context.Context) error
	Start(ctx context.Context) error
	Tick()
	Stop(ctx context.Context) error

	// Dependencies lists the names of features that must be part of the same
	// phase and are started before this one.
	Dependencies() []string
}

// Factory creates configured features by name.
type Factory interface {
	New(name string, config map[string]any) (Feature, error)
}

// FeatureOf returns the first feature of type T in the phase.
func FeatureOf[T Feature](p *Phase) (T, bool) {
	for _, f := range p.features {
		if typed, ok := f.(T); ok {
			return typed, true
		}
	}
	var zero T
	return zero, false
}

// OrderFeatures sorts features so that every feature comes after its
// dependencies. Features without ordering constraints keep their relative order.
func OrderFeatures(features []Feature) ([]Feature, error) {
	byName := make(map[string]int, len(features))
	for i, f := range features {
		byName[f.Info().Name] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	marks := make([]int, len(features))
	ordered := make([]Feature, 0, len(features))

	var visit func(i int, path []string) error
	visit = func(i int, path []string) error {
		switch marks[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %v", ErrDependencyCycle, append(path, features[i].Info().Name))
		}
		marks[i] = visiting
		name := features[i].Info().Name
		for _, dep := range features[i].Dependencies() {
			j, ok := byName[dep]
			if !ok {
				return fmt.Errorf("%w: %s requires %s", ErrMissingDependency, name, dep)
			}
			if err := visit(j, append(path, name)); err != nil {
				return err
			}
		}
		marks[i] = done
		ordered = append(ordered, features[i])
		return nil
	}

	for i := range features {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}
