package gamemap

import "github.com/voxelgameslib/voxelgameslib/pkg/domain"

// Marker is a named point in a map, used for spawns and other locations.
// Its location is fixed once constructed.
type Marker struct {
	loc        domain.Vector3D
	yaw        float64
	data       string
	definition string
}

// NewMarker creates a marker. definition may be empty.
func NewMarker(loc domain.Vector3D, yaw float64, data, definition string) Marker {
	return Marker{loc: loc, yaw: yaw, data: data, definition: definition}
}

func (m Marker) Loc() domain.Vector3D { return m.loc }
func (m Marker) Yaw() float64         { return m.yaw }
func (m Marker) Data() string         { return m.data }
func (m Marker) Definition() string   { return m.definition }

// WithData returns a copy of the marker carrying different data.
func (m Marker) WithData(data string) Marker {
	m.data = data
	return m
}

// ChestMarker stores the content of a chest. Data holds the inventory name.
type ChestMarker struct {
	Marker
	items []domain.ItemStack
}

// NewChestMarker creates a chest marker with yaw 0 and no definition.
func NewChestMarker(loc domain.Vector3D, name string, items []domain.ItemStack) ChestMarker {
	cp := make([]domain.ItemStack, len(items))
	copy(cp, items)
	return ChestMarker{Marker: NewMarker(loc, 0, name, ""), items: cp}
}

// Items returns a copy of the chest content.
func (c ChestMarker) Items() []domain.ItemStack {
	out := make([]domain.ItemStack, len(c.items))
	copy(out, c.items)
	return out
}

// Name is the inventory name.
func (c ChestMarker) Name() string { return c.data }

type markerDTO struct {
	Loc        domain.Vector3D `json:"loc" yaml:"loc"`
	Yaw        float64         `json:"yaw" yaml:"yaw"`
	Data       string          `json:"data" yaml:"data"`
	Definition string          `json:"definition,omitempty" yaml:"definition,omitempty"`
}

type chestDTO struct {
	Loc   domain.Vector3D    `json:"loc" yaml:"loc"`
	Name  string             `json:"name" yaml:"name"`
	Items []domain.ItemStack `json:"items" yaml:"items"`
}

func (m Marker) toDTO() markerDTO {
	return markerDTO{Loc: m.loc, Yaw: m.yaw, Data: m.data, Definition: m.definition}
}

func (d markerDTO) marker() Marker {
	return NewMarker(d.Loc, d.Yaw, d.Data, d.Definition)
}

func (c ChestMarker) toDTO() chestDTO {
	return chestDTO{Loc: c.loc, Name: c.data, Items: c.Items()}
}

func (d chestDTO) chest() ChestMarker {
	return NewChestMarker(d.Loc, d.Name, d.Items)
}
