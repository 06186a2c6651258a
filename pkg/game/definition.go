package game

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Definition describes a game mode as a list of phases built from registered features.
type Definition struct {
	Name        string            `yaml:"name" json:"name"`
	Description string            `yaml:"description,omitempty" json:"description,omitempty"`
	MaxPlayers  int               `yaml:"max_players,omitempty" json:"max_players,omitempty"`
	Phases      []PhaseDefinition `yaml:"phases" json:"phases"`
}

type PhaseDefinition struct {
	Name     string              `yaml:"name" json:"name"`
	Features []FeatureDefinition `yaml:"features" json:"features"`
}

type FeatureDefinition struct {
	Name   string         `yaml:"name" json:"name"`
	Config map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
}

// Validate checks the structural rules of a definition.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if d.MaxPlayers < 0 {
		return fmt.Errorf("%w: %s: max_players must not be negative", ErrInvalidDefinition, d.Name)
	}
	if len(d.Phases) == 0 {
		return fmt.Errorf("%w: %s: at least one phase is required", ErrInvalidDefinition, d.Name)
	}
	for i, p := range d.Phases {
		if strings.TrimSpace(p.Name) == "" {
			return fmt.Errorf("%w: %s: phase %d has no name", ErrInvalidDefinition, d.Name, i)
		}
		for j, f := range p.Features {
			if strings.TrimSpace(f.Name) == "" {
				return fmt.Errorf("%w: %s: phase %s feature %d has no name", ErrInvalidDefinition, d.Name, p.Name, j)
			}
		}
	}
	return nil
}

// Build creates a game from the definition using factory for every feature.
func (d Definition) Build(factory Factory, g *Game) error {
	for _, pd := range d.Phases {
		phase := NewPhase(pd.Name)
		for _, fd := range pd.Features {
			f, err := factory.New(fd.Name, fd.Config)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", d.Name, pd.Name, err)
			}
			phase.AddFeature(f)
		}
		g.AddPhase(phase)
	}
	return nil
}

// LoadDefinitions reads every *.yml, *.yaml and *.json file in dir. A missing directory yields no definitions.
func LoadDefinitions(dir string) ([]Definition, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read game definitions: %w", err)
	}

	var defs []Definition
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yml" && ext != ".yaml" && ext != ".json") {
			continue
		}
		def, err := LoadDefinition(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// LoadDefinition parses a single definition file, json by extension and yaml otherwise.
func LoadDefinition(path string) (Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read game definition: %w", err)
	}
	var def Definition
	unmarshal := yaml.Unmarshal
	if strings.EqualFold(filepath.Ext(path), ".json") {
		unmarshal = json.Unmarshal
	}
	if err := unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}
