package asset

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/evogame/evolution/internal/core/id"
)

// Rect is an axis-aligned box in world units.
type Rect struct {
	Center      mgl64.Vec2
	HalfExtents mgl64.Vec2
}

// Trigger is a sensor area reported by tag when the player enters it.
type Trigger struct {
	Tag  id.ID
	Area Rect
}

// LevelData is the placed content of one level, in world units.
type LevelData struct {
	Name        string
	Size        mgl64.Vec2
	PlayerStart mgl64.Vec2
	CameraStart mgl64.Vec2
	Collisions  []Rect
	Triggers    []Trigger
	Enemies     []mgl64.Vec2
	Ammo        []mgl64.Vec2
}

type levelFile struct {
	Name        string      `yaml:"name"`
	Width       float64     `yaml:"width"`
	Height      float64     `yaml:"height"`
	PlayerStart []float64   `yaml:"player_start"`
	CameraStart []float64   `yaml:"camera_start"`
	Collisions  []rectFile  `yaml:"collisions"`
	Triggers    []rectFile  `yaml:"triggers"`
	Enemies     [][]float64 `yaml:"enemies"`
	Ammo        [][]float64 `yaml:"ammo"`
}

type rectFile struct {
	Name       string  `yaml:"name"`
	X          float64 `yaml:"x"`
	Y          float64 `yaml:"y"`
	HalfWidth  float64 `yaml:"half_width"`
	HalfHeight float64 `yaml:"half_height"`
}

func (r rectFile) rect() Rect {
	return Rect{Center: mgl64.Vec2{r.X, r.Y}, HalfExtents: mgl64.Vec2{r.HalfWidth, r.HalfHeight}}
}

type LevelLoader struct {
	ids *id.Registry
}

func point(field string, v []float64) (mgl64.Vec2, error) {
	if len(v) != 2 {
		return mgl64.Vec2{}, fmt.Errorf("%s: want [x, y], got %d values", field, len(v))
	}
	return mgl64.Vec2{v[0], v[1]}, nil
}

func (l *LevelLoader) Decode(path string, raw []byte) (any, error) {
	var f levelFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	if f.Width <= 0 || f.Height <= 0 {
		return nil, errors.New("level needs a positive width and height")
	}
	d := &LevelData{
		Name:       f.Name,
		Size:       mgl64.Vec2{f.Width, f.Height},
		Collisions: make([]Rect, 0, len(f.Collisions)),
	}
	var err error
	if d.PlayerStart, err = point("player_start", f.PlayerStart); err != nil {
		return nil, err
	}
	if d.CameraStart, err = point("camera_start", f.CameraStart); err != nil {
		return nil, err
	}
	for _, c := range f.Collisions {
		d.Collisions = append(d.Collisions, c.rect())
	}
	for i, p := range f.Enemies {
		v, err := point(fmt.Sprintf("enemies[%d]", i), p)
		if err != nil {
			return nil, err
		}
		d.Enemies = append(d.Enemies, v)
	}
	for i, p := range f.Ammo {
		v, err := point(fmt.Sprintf("ammo[%d]", i), p)
		if err != nil {
			return nil, err
		}
		d.Ammo = append(d.Ammo, v)
	}
	for i, t := range f.Triggers {
		if t.Name == "" {
			return nil, fmt.Errorf("triggers[%d] has no name", i)
		}
	}
	// Trigger names are interned on the simulation goroutine.
	return &decodedLevel{data: d, triggers: f.Triggers}, nil
}

type decodedLevel struct {
	data     *LevelData
	triggers []rectFile
}

func (l *LevelLoader) Resolve(path string, decoded any) (any, error) {
	dl := decoded.(*decodedLevel)
	for _, t := range dl.triggers {
		dl.data.Triggers = append(dl.data.Triggers, Trigger{Tag: l.ids.Intern(t.Name), Area: t.rect()})
	}
	return dl.data, nil
}

// Level returns a loaded level.
func (m *Manager) Level(path string) (*LevelData, error) {
	v, err := m.Get(path, KindLevel)
	if err != nil {
		return nil, err
	}
	return v.(*LevelData), nil
}
