package features

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/voxelgameslib/voxelgameslib/pkg/feature"
	"github.com/voxelgameslib/voxelgameslib/pkg/gamemap"
)

var MapInfo = feature.Info{
	Name:        "MapFeature",
	Author:      "VoxelGamesLib",
	Version:     "1.0",
	Description: "Loads the map of the phase so other features can use its markers",
}

var ErrNoMap = errors.New("no map configured")

// MapFeature loads a map file during Init.
type MapFeature struct {
	feature.Base
	Path string `expose:"map"`

	dir string
	m   *gamemap.Map
}

// NewMapFeature resolves relative map paths against dir.
func NewMapFeature(dir string) *MapFeature {
	return &MapFeature{dir: dir}
}

func (*MapFeature) Info() feature.Info { return MapInfo }

func (f *MapFeature) Init(context.Context) error {
	if f.m != nil {
		return nil
	}
	if f.Path == "" {
		return ErrNoMap
	}
	path := f.Path
	if !filepath.IsAbs(path) && f.dir != "" {
		path = filepath.Join(f.dir, path)
	}
	m, err := gamemap.Load(path)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	f.m = m
	f.Logger().Debug("Map loaded", "map", m.Name, "markers", len(m.Markers))
	return nil
}

// Map returns the loaded map, nil before Init.
func (f *MapFeature) Map() *gamemap.Map { return f.m }

// SetMap installs an already loaded map, skipping the file lookup.
func (f *MapFeature) SetMap(m *gamemap.Map) { f.m = m }
