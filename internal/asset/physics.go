package asset

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"

	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/physics"
)

// PhysicsData is a body template: one body definition, its mass and the
// fixtures to create on it, in order.
type PhysicsData struct {
	Body     physics.BodyDef
	Mass     physics.MassData
	Fixtures []physics.FixtureDef
}

type physicsFile struct {
	Type          string        `yaml:"type"`
	Bullet        bool          `yaml:"bullet"`
	Active        *bool         `yaml:"active"`
	FixedRotation bool          `yaml:"fixed_rotation"`
	GravityScale  *float64      `yaml:"gravity_scale"`
	Mass          massFile      `yaml:"mass"`
	Fixtures      []fixtureFile `yaml:"fixtures"`
}

type massFile struct {
	Mass    float64 `yaml:"mass"`
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
	I       float64 `yaml:"i"`
}

type fixtureFile struct {
	ID          string      `yaml:"id"`
	Density     float64     `yaml:"density"`
	Friction    float64     `yaml:"friction"`
	Restitution float64     `yaml:"restitution"`
	Sensor      bool        `yaml:"sensor"`
	Shape       *shapeFile  `yaml:"shape"`
	Filter      *filterFile `yaml:"filter"`
}

// UnmarshalYAML fills the engine defaults for fields the file leaves out.
func (f *fixtureFile) UnmarshalYAML(n *yaml.Node) error {
	type plain fixtureFile
	p := plain{Density: 1, Friction: 1}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*f = fixtureFile(p)
	return nil
}

type shapeFile struct {
	Type    string  `yaml:"type"` // circle | polygon
	CenterX float64 `yaml:"center_x"`
	CenterY float64 `yaml:"center_y"`
	Radius  float64 `yaml:"radius"`
	// Polygons are boxes; width and height are half extents.
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type filterFile struct {
	CategoryBits uint16 `yaml:"category_bits"`
	MaskBits     uint16 `yaml:"mask_bits"`
	GroupIndex   int16  `yaml:"group_index"`
}

type PhysicsLoader struct {
	ids *id.Registry
}

func (l *PhysicsLoader) Decode(path string, raw []byte) (any, error) {
	var f physicsFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse physics: %w", err)
	}
	if _, ok := physics.ParseBodyType(f.Type); !ok {
		return nil, fmt.Errorf("unknown body type %q", f.Type)
	}
	if len(f.Fixtures) == 0 {
		return nil, errors.New("physics file has no fixtures")
	}
	for i, fx := range f.Fixtures {
		if fx.Shape == nil {
			return nil, fmt.Errorf("fixture %d (%s) has no shape", i, fx.ID)
		}
		switch fx.Shape.Type {
		case "circle", "polygon":
		default:
			return nil, fmt.Errorf("fixture %d (%s): unknown shape %q", i, fx.ID, fx.Shape.Type)
		}
	}
	return &f, nil
}

func (l *PhysicsLoader) Resolve(path string, decoded any) (any, error) {
	f := decoded.(*physicsFile)
	bodyType, _ := physics.ParseBodyType(f.Type)

	d := &PhysicsData{
		Body: physics.BodyDef{
			Type:          bodyType,
			Active:        f.Active == nil || *f.Active,
			Bullet:        f.Bullet,
			FixedRotation: f.FixedRotation,
			AllowSleep:    true,
			GravityScale:  1,
		},
		Mass: physics.MassData{
			Mass:    f.Mass.Mass,
			Center:  mgl64.Vec2{f.Mass.CenterX, f.Mass.CenterY},
			Inertia: f.Mass.I,
		},
		Fixtures: make([]physics.FixtureDef, 0, len(f.Fixtures)),
	}
	if f.GravityScale != nil {
		d.Body.GravityScale = *f.GravityScale
	}
	if d.Mass.Mass == 0 {
		d.Mass.Mass = 1
	}

	for _, fx := range f.Fixtures {
		def := physics.FixtureDef{
			Density:     fx.Density,
			Friction:    fx.Friction,
			Restitution: fx.Restitution,
			Sensor:      fx.Sensor,
			Filter:      physics.DefaultFilter(),
		}
		if fx.ID != "" {
			def.Tag = l.ids.Intern(fx.ID)
		}
		center := mgl64.Vec2{fx.Shape.CenterX, fx.Shape.CenterY}
		if fx.Shape.Type == "circle" {
			r := fx.Shape.Radius
			if r == 0 {
				r = 1
			}
			def.Shape = physics.Circle(r, center)
		} else {
			w, h := fx.Shape.Width, fx.Shape.Height
			if w == 0 {
				w = 1
			}
			if h == 0 {
				h = 1
			}
			def.Shape = physics.Box(w, h, center)
		}
		if fx.Filter != nil {
			def.Filter = physics.Filter{
				CategoryBits: fx.Filter.CategoryBits,
				MaskBits:     fx.Filter.MaskBits,
				GroupIndex:   fx.Filter.GroupIndex,
			}
		}
		d.Fixtures = append(d.Fixtures, def)
	}
	return d, nil
}

// Physics returns a loaded body template.
func (m *Manager) Physics(path string) (*PhysicsData, error) {
	v, err := m.Get(path, KindPhysics)
	if err != nil {
		return nil, err
	}
	return v.(*PhysicsData), nil
}
