// Package physicstest provides a deterministic physics.World for tests.
// Bodies integrate velocity and gravity without collision response;
// contacts and ray hits are scripted by the test.
package physicstest

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/physics"
)

type World struct {
	Gravity  mgl64.Vec2
	Bodies   []*Body
	Listener physics.ContactListener

	// RayHits are reported, in order, to every RayCast until the callback
	// returns 0. Rays records every cast.
	RayHits []RayHit
	Rays    [][2]mgl64.Vec2
}

type RayHit struct {
	Fixture  physics.Fixture
	Point    mgl64.Vec2
	Normal   mgl64.Vec2
	Fraction float64
}

var _ physics.World = (*World)(nil)

func NewWorld() *World { return &World{} }

func (w *World) CreateBody(def physics.BodyDef) physics.Body {
	b := &Body{
		Def:    def,
		pos:    def.Position,
		angle:  def.Angle,
		active: def.Active,
		mass:   1,
	}
	w.Bodies = append(w.Bodies, b)
	return b
}

func (w *World) DestroyBody(pb physics.Body) {
	for i, b := range w.Bodies {
		if b == pb {
			b.Destroyed = true
			w.Bodies = append(w.Bodies[:i], w.Bodies[i+1:]...)
			return
		}
	}
}

func (w *World) BodyCount() int { return len(w.Bodies) }

func (w *World) Step(dt time.Duration) {
	s := dt.Seconds()
	for _, b := range w.Bodies {
		if !b.active || b.Def.Type != physics.DynamicBody {
			continue
		}
		b.vel = b.vel.Add(w.Gravity.Mul(b.Def.GravityScale * s))
		b.pos = b.pos.Add(b.vel.Mul(s))
		b.angle += b.angVel * s
	}
}

func (w *World) SetContactListener(l physics.ContactListener) { w.Listener = l }

func (w *World) RayCast(fn physics.RayCastFunc, from, to mgl64.Vec2) {
	w.Rays = append(w.Rays, [2]mgl64.Vec2{from, to})
	for _, h := range w.RayHits {
		if fn(h.Fixture, h.Point, h.Normal, h.Fraction) == 0 {
			return
		}
	}
}

// Touch reports a begin contact between a and b to the listener.
func (w *World) Touch(a, b physics.Fixture) Contact {
	c := Contact{A: a, B: b}
	if w.Listener != nil {
		w.Listener.BeginContact(c)
	}
	return c
}

// Separate reports the end of a contact.
func (w *World) Separate(a, b physics.Fixture) {
	if w.Listener != nil {
		w.Listener.EndContact(Contact{A: a, B: b})
	}
}

// StaticBox adds level geometry with one fixture and returns that fixture.
func (w *World) StaticBox(pos mgl64.Vec2, user any) physics.Fixture {
	def := physics.DefaultBodyDef()
	def.Type = physics.StaticBody
	def.Position = pos
	b := w.CreateBody(def)
	b.SetUserData(user)
	return b.CreateFixture(physics.FixtureDef{Shape: physics.Box(1, 1, mgl64.Vec2{}), Friction: 1})
}

type Contact struct {
	A, B physics.Fixture
}

func (c Contact) FixtureA() physics.Fixture { return c.A }
func (c Contact) FixtureB() physics.Fixture { return c.B }

type Body struct {
	Def       physics.BodyDef
	Mass      physics.MassData
	Impulses  []mgl64.Vec2
	Destroyed bool

	pos      mgl64.Vec2
	angle    float64
	vel      mgl64.Vec2
	angVel   float64
	active   bool
	mass     float64
	user     any
	fixtures []physics.Fixture
}

func (b *Body) Type() physics.BodyType         { return b.Def.Type }
func (b *Body) Position() mgl64.Vec2           { return b.pos }
func (b *Body) Angle() float64                 { return b.angle }
func (b *Body) LinearVelocity() mgl64.Vec2     { return b.vel }
func (b *Body) SetLinearVelocity(v mgl64.Vec2) { b.vel = v }
func (b *Body) Active() bool                   { return b.active }
func (b *Body) SetActive(active bool)          { b.active = active }
func (b *Body) UserData() any                  { return b.user }
func (b *Body) SetUserData(v any)              { b.user = v }
func (b *Body) Fixtures() []physics.Fixture    { return b.fixtures }
func (b *Body) AngularVelocity() float64       { return b.angVel }

func (b *Body) SetTransform(pos mgl64.Vec2, angle float64) {
	b.pos, b.angle = pos, angle
}

func (b *Body) ApplyLinearImpulse(impulse, _ mgl64.Vec2) {
	b.Impulses = append(b.Impulses, impulse)
	b.vel = b.vel.Add(impulse.Mul(1 / b.mass))
}

func (b *Body) ApplyAngularImpulse(impulse float64) {
	b.angVel += impulse / b.mass
}

func (b *Body) SetMassData(md physics.MassData) {
	b.Mass = md
	if md.Mass > 0 {
		b.mass = md.Mass
	}
}

func (b *Body) CreateFixture(def physics.FixtureDef) physics.Fixture {
	f := &Fixture{Def: def, body: b, friction: def.Friction}
	b.fixtures = append(b.fixtures, f)
	return f
}

type Fixture struct {
	Def      physics.FixtureDef
	body     *Body
	friction float64
}

func (f *Fixture) Body() physics.Body    { return f.body }
func (f *Fixture) Tag() id.ID            { return f.Def.Tag }
func (f *Fixture) Sensor() bool          { return f.Def.Sensor }
func (f *Fixture) Friction() float64     { return f.friction }
func (f *Fixture) SetFriction(v float64) { f.friction = v }
