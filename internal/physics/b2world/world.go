// Package b2world backs physics.World with the ByteArena port of Box2D.
package b2world

import (
	"time"

	"github.com/ByteArena/box2d"
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/physics"
)

type Config struct {
	Gravity            mgl64.Vec2
	AllowSleep         bool
	VelocityIterations int
	PositionIterations int
}

// World wraps a box2d world. Every box2d body and fixture carries its
// wrapper as user data so callbacks can map back without lookups.
type World struct {
	w      *box2d.B2World
	cfg    Config
	bodies int
	log    *zap.Logger
}

var _ physics.World = (*World)(nil)

func New(cfg Config, log *zap.Logger) *World {
	w := box2d.MakeB2World(vec(cfg.Gravity))
	w.SetAllowSleeping(cfg.AllowSleep)
	if cfg.VelocityIterations <= 0 {
		cfg.VelocityIterations = 6
	}
	if cfg.PositionIterations <= 0 {
		cfg.PositionIterations = 2
	}
	return &World{w: &w, cfg: cfg, log: log}
}

func (w *World) CreateBody(def physics.BodyDef) physics.Body {
	bd := box2d.MakeB2BodyDef()
	switch def.Type {
	case physics.StaticBody:
		bd.Type = box2d.B2BodyType.B2_staticBody
	case physics.KinematicBody:
		bd.Type = box2d.B2BodyType.B2_kinematicBody
	default:
		bd.Type = box2d.B2BodyType.B2_dynamicBody
	}
	bd.Position = vec(def.Position)
	bd.Angle = def.Angle
	bd.Active = def.Active
	bd.Bullet = def.Bullet
	bd.FixedRotation = def.FixedRotation
	bd.AllowSleep = def.AllowSleep
	bd.GravityScale = def.GravityScale

	b := &body{b: w.w.CreateBody(&bd), kind: def.Type}
	b.b.SetUserData(b)
	w.bodies++
	return b
}

func (w *World) DestroyBody(pb physics.Body) {
	b, ok := pb.(*body)
	if !ok || b.b == nil {
		return
	}
	w.w.DestroyBody(b.b)
	b.b = nil
	b.fixtures = nil
	w.bodies--
}

func (w *World) BodyCount() int { return w.bodies }

func (w *World) Step(dt time.Duration) {
	w.w.Step(dt.Seconds(), w.cfg.VelocityIterations, w.cfg.PositionIterations)
}

func (w *World) SetContactListener(l physics.ContactListener) {
	w.w.SetContactListener(&contactListener{l: l})
}

func (w *World) RayCast(fn physics.RayCastFunc, from, to mgl64.Vec2) {
	w.w.RayCast(func(f *box2d.B2Fixture, point, normal box2d.B2Vec2, fraction float64) float64 {
		fx, ok := f.GetUserData().(*fixture)
		if !ok {
			return -1
		}
		return fn(fx, unvec(point), unvec(normal), fraction)
	}, vec(from), vec(to))
}

type body struct {
	b        *box2d.B2Body
	kind     physics.BodyType
	user     any
	fixtures []physics.Fixture
}

func (b *body) Type() physics.BodyType     { return b.kind }
func (b *body) Position() mgl64.Vec2       { return unvec(b.b.GetPosition()) }
func (b *body) Angle() float64             { return b.b.GetAngle() }
func (b *body) LinearVelocity() mgl64.Vec2 { return unvec(b.b.GetLinearVelocity()) }
func (b *body) Active() bool               { return b.b.IsActive() }
func (b *body) SetActive(active bool)      { b.b.SetActive(active) }
func (b *body) UserData() any              { return b.user }
func (b *body) SetUserData(v any)          { b.user = v }
func (b *body) Fixtures() []physics.Fixture {
	return b.fixtures
}

func (b *body) SetTransform(pos mgl64.Vec2, angle float64) {
	b.b.SetTransform(vec(pos), angle)
}

func (b *body) SetLinearVelocity(v mgl64.Vec2) {
	b.b.SetLinearVelocity(vec(v))
}

func (b *body) ApplyLinearImpulse(impulse, point mgl64.Vec2) {
	b.b.ApplyLinearImpulse(vec(impulse), vec(point), true)
}

func (b *body) ApplyAngularImpulse(impulse float64) {
	b.b.ApplyAngularImpulse(impulse, true)
}

func (b *body) SetMassData(md physics.MassData) {
	b.b.SetMassData(&box2d.B2MassData{Mass: md.Mass, Center: vec(md.Center), I: md.Inertia})
}

func (b *body) CreateFixture(def physics.FixtureDef) physics.Fixture {
	fd := box2d.MakeB2FixtureDef()
	fd.Density = def.Density
	fd.Friction = def.Friction
	fd.Restitution = def.Restitution
	fd.IsSensor = def.Sensor
	fd.Filter.CategoryBits = def.Filter.CategoryBits
	fd.Filter.MaskBits = def.Filter.MaskBits
	fd.Filter.GroupIndex = def.Filter.GroupIndex

	switch def.Shape.Kind {
	case physics.ShapeCircle:
		s := box2d.MakeB2CircleShape()
		s.M_p = vec(def.Shape.Center)
		s.M_radius = def.Shape.Radius
		fd.Shape = &s
	default:
		s := box2d.MakeB2PolygonShape()
		s.SetAsBoxFromCenterAndAngle(def.Shape.HalfExtents.X(), def.Shape.HalfExtents.Y(),
			vec(def.Shape.Center), def.Shape.Angle)
		fd.Shape = &s
	}

	f := &fixture{f: b.b.CreateFixtureFromDef(&fd), body: b, tag: def.Tag}
	f.f.SetUserData(f)
	b.fixtures = append(b.fixtures, f)
	return f
}

type fixture struct {
	f    *box2d.B2Fixture
	body *body
	tag  id.ID
}

func (f *fixture) Body() physics.Body    { return f.body }
func (f *fixture) Tag() id.ID            { return f.tag }
func (f *fixture) Sensor() bool          { return f.f.IsSensor() }
func (f *fixture) Friction() float64     { return f.f.GetFriction() }
func (f *fixture) SetFriction(v float64) { f.f.SetFriction(v) }

type contact struct {
	a, b *fixture
}

func (c contact) FixtureA() physics.Fixture { return c.a }
func (c contact) FixtureB() physics.Fixture { return c.b }

// contactListener adapts box2d callbacks. Contacts between fixtures that
// were not created through this package are ignored.
type contactListener struct {
	l physics.ContactListener
}

func (cl *contactListener) wrap(c box2d.B2ContactInterface) (contact, bool) {
	a, okA := c.GetFixtureA().GetUserData().(*fixture)
	b, okB := c.GetFixtureB().GetUserData().(*fixture)
	return contact{a: a, b: b}, okA && okB
}

func (cl *contactListener) BeginContact(c box2d.B2ContactInterface) {
	if wc, ok := cl.wrap(c); ok {
		cl.l.BeginContact(wc)
	}
}

func (cl *contactListener) EndContact(c box2d.B2ContactInterface) {
	if wc, ok := cl.wrap(c); ok {
		cl.l.EndContact(wc)
	}
}

func (cl *contactListener) PreSolve(box2d.B2ContactInterface, box2d.B2Manifold) {}

func (cl *contactListener) PostSolve(box2d.B2ContactInterface, *box2d.B2ContactImpulse) {}

func vec(v mgl64.Vec2) box2d.B2Vec2   { return box2d.MakeB2Vec2(v.X(), v.Y()) }
func unvec(v box2d.B2Vec2) mgl64.Vec2 { return mgl64.Vec2{v.X, v.Y} }
