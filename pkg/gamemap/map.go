package gamemap

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/voxelgameslib/voxelgameslib/pkg/domain"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported map format")

// Map is the metadata of a playable world.
type Map struct {
	Name         string
	Author       string
	Center       domain.Vector3D
	Radius       int
	Markers      []Marker
	ChestMarkers []ChestMarker
}

// MarkersWithData returns the markers whose data equals data, in file order.
func (m *Map) MarkersWithData(data string) []Marker {
	var out []Marker
	for _, marker := range m.Markers {
		if marker.Data() == data {
			out = append(out, marker)
		}
	}
	return out
}

// Chest finds a chest marker by inventory name.
func (m *Map) Chest(name string) (ChestMarker, bool) {
	for _, c := range m.ChestMarkers {
		if c.Name() == name {
			return c, true
		}
	}
	return ChestMarker{}, false
}

type mapDTO struct {
	Name         string          `json:"name" yaml:"name"`
	Author       string          `json:"author" yaml:"author"`
	Center       domain.Vector3D `json:"center" yaml:"center"`
	Radius       int             `json:"radius" yaml:"radius"`
	Markers      []markerDTO     `json:"markers" yaml:"markers"`
	ChestMarkers []chestDTO      `json:"chest_markers,omitempty" yaml:"chest_markers,omitempty"`
}

func (m *Map) toDTO() mapDTO {
	d := mapDTO{Name: m.Name, Author: m.Author, Center: m.Center, Radius: m.Radius}
	for _, marker := range m.Markers {
		d.Markers = append(d.Markers, marker.toDTO())
	}
	for _, c := range m.ChestMarkers {
		d.ChestMarkers = append(d.ChestMarkers, c.toDTO())
	}
	return d
}

func (d mapDTO) toMap() *Map {
	m := &Map{Name: d.Name, Author: d.Author, Center: d.Center, Radius: d.Radius}
	for _, marker := range d.Markers {
		m.Markers = append(m.Markers, marker.marker())
	}
	for _, c := range d.ChestMarkers {
		m.ChestMarkers = append(m.ChestMarkers, c.chest())
	}
	return m
}

func (m *Map) MarshalJSON() ([]byte, error) { return json.Marshal(m.toDTO()) }

func (m *Map) UnmarshalJSON(data []byte) error {
	var d mapDTO
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*m = *d.toMap()
	return nil
}

func (m *Map) MarshalYAML() (any, error) { return m.toDTO(), nil }

func (m *Map) UnmarshalYAML(node *yaml.Node) error {
	var d mapDTO
	if err := node.Decode(&d); err != nil {
		return err
	}
	*m = *d.toMap()
	return nil
}

// Load reads a map from a .yml, .yaml or .json file.
func Load(path string) (*Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read map: %w", err)
	}
	var m Map
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(data, &m)
	case ".json":
		err = json.Unmarshal(data, &m)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse map %s: %w", path, err)
	}
	return &m, nil
}

// Save writes the map in the format implied by the file extension.
func Save(path string, m *Map) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		data, err = yaml.Marshal(m)
	case ".json":
		data, err = json.MarshalIndent(m, "", "  ")
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return fmt.Errorf("encode map: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
