package physics_test

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"

	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/physics"
	"github.com/evogame/evolution/internal/physics/physicstest"
)

func TestParseBodyType(t *testing.T) {
	for in, want := range map[string]physics.BodyType{
		"static":    physics.StaticBody,
		"kinematic": physics.KinematicBody,
		"kynematic": physics.KinematicBody,
		"dynamic":   physics.DynamicBody,
		"":          physics.DynamicBody,
	} {
		got, ok := physics.ParseBodyType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := physics.ParseBodyType("floating")
	assert.False(t, ok)
}

func TestContactHelpers(t *testing.T) {
	w := physicstest.NewWorld()
	b := w.CreateBody(physics.DefaultBodyDef())
	foot := b.CreateFixture(physics.FixtureDef{Tag: id.Foot, Sensor: true})
	floor := w.StaticBox(mgl64.Vec2{0, 5}, nil)
	c := physicstest.Contact{A: floor, B: foot}

	own, other, ok := physics.Tagged(c, id.Foot)
	assert.True(t, ok)
	assert.Same(t, foot, own)
	assert.Same(t, floor, other)

	_, _, ok = physics.Tagged(c, id.LevelFinish)
	assert.False(t, ok)

	got, ok := physics.Other(c, floor)
	assert.True(t, ok)
	assert.Same(t, foot, got)

	stranger := b.CreateFixture(physics.FixtureDef{})
	_, ok = physics.Other(c, stranger)
	assert.False(t, ok)
}

func TestFakeWorldIntegrates(t *testing.T) {
	w := physicstest.NewWorld()
	w.Gravity = mgl64.Vec2{0, 10}
	b := w.CreateBody(physics.DefaultBodyDef()).(*physicstest.Body)
	b.ApplyLinearImpulse(mgl64.Vec2{2, 0}, mgl64.Vec2{})
	w.Step(time.Second)

	assert.InDelta(t, 2, b.Position().X(), 1e-9)
	assert.InDelta(t, 10, b.Position().Y(), 1e-9)

	b.SetActive(false)
	w.Step(time.Second)
	assert.InDelta(t, 2, b.Position().X(), 1e-9)

	w.DestroyBody(b)
	assert.True(t, b.Destroyed)
	assert.Zero(t, w.BodyCount())
}
