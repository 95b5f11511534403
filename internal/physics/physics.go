// Package physics is the rigid-body boundary the gameplay components talk
// to. Coordinates are world units with Y growing downwards; angles are
// radians.
package physics

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/evogame/evolution/internal/core/id"
)

type BodyType int

const (
	StaticBody BodyType = iota
	KinematicBody
	DynamicBody
)

func (t BodyType) String() string {
	switch t {
	case StaticBody:
		return "static"
	case KinematicBody:
		return "kinematic"
	case DynamicBody:
		return "dynamic"
	}
	return "unknown"
}

// ParseBodyType accepts the names used in physics asset files.
func ParseBodyType(s string) (BodyType, bool) {
	switch s {
	case "static":
		return StaticBody, true
	case "kinematic", "kynematic":
		return KinematicBody, true
	case "dynamic", "":
		return DynamicBody, true
	}
	return DynamicBody, false
}

type BodyDef struct {
	Type          BodyType
	Position      mgl64.Vec2
	Angle         float64
	Active        bool
	Bullet        bool
	FixedRotation bool
	AllowSleep    bool
	GravityScale  float64
}

// DefaultBodyDef mirrors the engine defaults: an active, sleepy dynamic body.
func DefaultBodyDef() BodyDef {
	return BodyDef{Type: DynamicBody, Active: true, AllowSleep: true, GravityScale: 1}
}

type ShapeKind int

const (
	ShapeBox ShapeKind = iota
	ShapeCircle
)

type Shape struct {
	Kind        ShapeKind
	Center      mgl64.Vec2
	HalfExtents mgl64.Vec2 // ShapeBox
	Angle       float64    // ShapeBox
	Radius      float64    // ShapeCircle
}

func Box(halfWidth, halfHeight float64, center mgl64.Vec2) Shape {
	return Shape{Kind: ShapeBox, HalfExtents: mgl64.Vec2{halfWidth, halfHeight}, Center: center}
}

func Circle(radius float64, center mgl64.Vec2) Shape {
	return Shape{Kind: ShapeCircle, Radius: radius, Center: center}
}

type Filter struct {
	CategoryBits uint16
	MaskBits     uint16
	GroupIndex   int16
}

// DefaultFilter collides with everything.
func DefaultFilter() Filter { return Filter{CategoryBits: 0x0001, MaskBits: 0xFFFF} }

type FixtureDef struct {
	// Tag identifies the fixture in contact callbacks ("foot" sensors).
	Tag         id.ID
	Shape       Shape
	Density     float64
	Friction    float64
	Restitution float64
	Sensor      bool
	Filter      Filter
}

type MassData struct {
	Mass    float64
	Center  mgl64.Vec2
	Inertia float64
}

type Body interface {
	Type() BodyType
	Position() mgl64.Vec2
	Angle() float64
	SetTransform(pos mgl64.Vec2, angle float64)
	LinearVelocity() mgl64.Vec2
	SetLinearVelocity(v mgl64.Vec2)
	ApplyLinearImpulse(impulse, point mgl64.Vec2)
	ApplyAngularImpulse(impulse float64)
	Active() bool
	SetActive(active bool)
	SetMassData(md MassData)
	// UserData is the gameplay owner: an *ecs.Entity for entity bodies, an
	// id.ID for level triggers, nil for plain level geometry.
	UserData() any
	SetUserData(v any)
	CreateFixture(def FixtureDef) Fixture
	// Fixtures are returned in creation order.
	Fixtures() []Fixture
}

type Fixture interface {
	Body() Body
	Tag() id.ID
	Sensor() bool
	Friction() float64
	SetFriction(f float64)
}

type Contact interface {
	FixtureA() Fixture
	FixtureB() Fixture
}

type ContactListener interface {
	BeginContact(c Contact)
	EndContact(c Contact)
}

// RayCastFunc follows the Box2D convention: return -1 to ignore the fixture,
// 0 to stop, fraction to clip the ray, 1 to continue.
type RayCastFunc func(f Fixture, point, normal mgl64.Vec2, fraction float64) float64

type World interface {
	CreateBody(def BodyDef) Body
	DestroyBody(b Body)
	Step(dt time.Duration)
	SetContactListener(l ContactListener)
	RayCast(fn RayCastFunc, from, to mgl64.Vec2)
	BodyCount() int
}

// Other returns the fixture of c that is not f, and whether f took part.
func Other(c Contact, f Fixture) (Fixture, bool) {
	switch f {
	case c.FixtureA():
		return c.FixtureB(), true
	case c.FixtureB():
		return c.FixtureA(), true
	}
	return nil, false
}

// Tagged returns the fixture of c carrying tag and the opposite fixture.
func Tagged(c Contact, tag id.ID) (own, other Fixture, ok bool) {
	a, b := c.FixtureA(), c.FixtureB()
	switch {
	case a.Tag() == tag:
		return a, b, true
	case b.Tag() == tag:
		return b, a, true
	}
	return nil, nil, false
}
