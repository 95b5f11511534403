package b2world

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/physics"
)

type recorder struct {
	begins, ends int
	tags         []id.ID
}

func (r *recorder) BeginContact(c physics.Contact) {
	r.begins++
	r.tags = append(r.tags, c.FixtureA().Tag(), c.FixtureB().Tag())
}

func (r *recorder) EndContact(physics.Contact) { r.ends++ }

func newTestWorld() *World {
	return New(Config{Gravity: mgl64.Vec2{0, 10}, AllowSleep: true}, zap.NewNop())
}

func ground(w *World) physics.Body {
	def := physics.DefaultBodyDef()
	def.Type = physics.StaticBody
	def.Position = mgl64.Vec2{0, 10}
	g := w.CreateBody(def)
	g.CreateFixture(physics.FixtureDef{Shape: physics.Box(50, 1, mgl64.Vec2{}), Friction: 1, Filter: physics.DefaultFilter()})
	return g
}

func TestBodyFallsOntoGround(t *testing.T) {
	w := newTestWorld()
	rec := &recorder{}
	w.SetContactListener(rec)
	ground(w)

	b := w.CreateBody(physics.DefaultBodyDef())
	b.SetUserData("crate")
	f := b.CreateFixture(physics.FixtureDef{
		Tag:      id.Foot,
		Shape:    physics.Box(0.5, 0.5, mgl64.Vec2{}),
		Density:  1,
		Friction: 0.8,
		Filter:   physics.DefaultFilter(),
	})
	require.Equal(t, 2, w.BodyCount())
	assert.Equal(t, []physics.Fixture{f}, b.Fixtures())
	assert.Same(t, b, f.Body())
	assert.InDelta(t, 0.8, f.Friction(), 1e-9)

	for i := 0; i < 180; i++ {
		w.Step(time.Second / 60)
	}
	assert.Greater(t, b.Position().Y(), 5.0)
	assert.Less(t, b.Position().Y(), 9.0)
	assert.Equal(t, 1, rec.begins)
	assert.Contains(t, rec.tags, id.Foot)
	assert.Equal(t, "crate", b.UserData())
}

func TestInactiveBodyDoesNotMove(t *testing.T) {
	w := newTestWorld()
	b := w.CreateBody(physics.DefaultBodyDef())
	b.CreateFixture(physics.FixtureDef{Shape: physics.Circle(0.5, mgl64.Vec2{}), Density: 1, Filter: physics.DefaultFilter()})
	b.SetActive(false)
	b.SetTransform(mgl64.Vec2{3, 4}, 0.5)

	for i := 0; i < 30; i++ {
		w.Step(time.Second / 60)
	}
	assert.False(t, b.Active())
	assert.InDelta(t, 3, b.Position().X(), 1e-9)
	assert.InDelta(t, 4, b.Position().Y(), 1e-9)
	assert.InDelta(t, 0.5, b.Angle(), 1e-9)
}

func TestRayCastReportsWrappedFixtures(t *testing.T) {
	w := newTestWorld()
	g := ground(w)

	var hit physics.Fixture
	var at mgl64.Vec2
	w.RayCast(func(f physics.Fixture, point, _ mgl64.Vec2, fraction float64) float64 {
		hit, at = f, point
		return fraction
	}, mgl64.Vec2{0, 0}, mgl64.Vec2{0, 20})

	require.NotNil(t, hit)
	assert.Same(t, g, hit.Body())
	assert.InDelta(t, 9, at.Y(), 1e-6)
}

func TestDestroyBody(t *testing.T) {
	w := newTestWorld()
	b := w.CreateBody(physics.DefaultBodyDef())
	w.DestroyBody(b)
	w.DestroyBody(b)
	assert.Zero(t, w.BodyCount())
}
