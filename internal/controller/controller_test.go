package controller

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evogame/evolution/internal/asset"
	"github.com/evogame/evolution/internal/component"
	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/event"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/engine/enginetest"
	"github.com/evogame/evolution/internal/input"
	"github.com/evogame/evolution/internal/physics"
	"github.com/evogame/evolution/internal/physics/physicstest"
)

const frame = 16 * time.Millisecond

func build(t *testing.T, env *enginetest.Env, e *ecs.Entity, cs ...ecs.Component) {
	t.Helper()
	for _, c := range cs {
		require.NoError(t, e.AddComponent(c))
	}
	require.NoError(t, e.Batch())
	env.Finish(t)
	e.FetchAssets()
}

func newPlayer(t *testing.T, env *enginetest.Env, pos mgl64.Vec3) (*ecs.Entity, *Player) {
	t.Helper()
	e := env.Obtain(t, id.Caveman)
	p := NewPlayer(e, env.Deps)
	build(t, env, e,
		component.NewAnimation(e, env.Deps, "data/caveman.yaml"),
		component.NewPhysics(e, env.Deps, "data/caveman_physics.yaml"),
		p)
	e.OnMessage(nil, id.DisablePhysics, nil)
	e.SetPosition(pos)
	e.OnMessage(nil, id.EnablePhysics, nil)
	require.NotNil(t, p.Body())
	return e, p
}

// prop is a bare entity body: an enemy, ammo or rock the player runs into.
func prop(t *testing.T, env *enginetest.Env, typ id.ID, sensor bool) (*ecs.Entity, physics.Fixture) {
	t.Helper()
	e := env.Obtain(t, typ)
	b := env.Fake.CreateBody(physics.DefaultBodyDef())
	b.SetUserData(e)
	f := b.CreateFixture(physics.FixtureDef{Shape: physics.Box(0.5, 0.5, mgl64.Vec2{}), Sensor: sensor})
	return e, f
}

func begin(e *ecs.Entity, a, b physics.Fixture) {
	e.OnMessage(nil, id.BeginContact, physicstest.Contact{A: a, B: b})
}

func end(e *ecs.Entity, a, b physics.Fixture) {
	e.OnMessage(nil, id.EndContact, physicstest.Contact{A: a, B: b})
}

func TestPlayerWalksWithSpeedCap(t *testing.T) {
	env := enginetest.New(t, nil)
	e, p := newPlayer(t, env, mgl64.Vec3{4, 18, 11})
	anim := animationOf(e)

	env.Keys.Press(input.KeyRight)
	p.Update(frame)
	assert.Equal(t, []mgl64.Vec2{{4, 0}}, env.Body(t, e).Impulses)
	assert.Equal(t, id.Idle, e.State())

	p.Update(frame)
	assert.Equal(t, id.Walk, e.State())
	assert.False(t, anim.FlipX())
	assert.Equal(t, 8.0, p.Body().LinearVelocity().X())

	p.Update(frame)
	assert.Equal(t, 7.0, p.Body().LinearVelocity().X())
	assert.Len(t, env.Body(t, e).Impulses, 2)

	env.Keys.Release(input.KeyRight)
	p.Body().SetLinearVelocity(mgl64.Vec2{-3, 0})
	p.Update(frame)
	assert.True(t, anim.FlipX())

	p.Body().SetLinearVelocity(mgl64.Vec2{0.1, 0})
	p.Update(frame)
	assert.Equal(t, id.Idle, e.State())
}

func TestPlayerJumpsOnlyFromGround(t *testing.T) {
	env := enginetest.New(t, nil)
	e, p := newPlayer(t, env, mgl64.Vec3{4, 18, 11})
	fx := p.Body().Fixtures()
	main, foot := fx[0], fx[1]
	ground := env.Fake.StaticBox(mgl64.Vec2{4, 20}, nil)

	env.Keys.Press(input.KeyUp)
	p.Update(frame)
	assert.Empty(t, env.Body(t, e).Impulses)
	assert.Equal(t, 0.2, main.Friction())
	assert.Equal(t, 0.2, foot.Friction())

	e.SetState(id.Jump)
	begin(e, ground, foot)
	assert.Equal(t, 1, p.FootContacts())
	assert.Equal(t, id.Idle, e.State())

	p.Update(frame)
	assert.Equal(t, []mgl64.Vec2{{0, -20}}, env.Body(t, e).Impulses)
	assert.Equal(t, 0.8, main.Friction())

	// a second ground piece does not re-land
	other := env.Fake.StaticBox(mgl64.Vec2{6, 20}, nil)
	e.SetState(id.Walk)
	begin(e, foot, other)
	assert.Equal(t, 2, p.FootContacts())
	assert.Equal(t, id.Walk, e.State())

	end(e, foot, other)
	assert.Equal(t, id.Walk, e.State())
	end(e, ground, foot)
	assert.Equal(t, 0, p.FootContacts())
	assert.Equal(t, id.Jump, e.State())
	assert.False(t, p.Grounded())

	p.Update(frame)
	assert.Len(t, env.Body(t, e).Impulses, 1)
}

func TestPlayerSensorsAreNotGround(t *testing.T) {
	env := enginetest.New(t, nil)
	e, p := newPlayer(t, env, mgl64.Vec3{})
	foot := p.Body().Fixtures()[1]

	trigger := env.Fake.CreateBody(physics.DefaultBodyDef())
	trigger.SetUserData(id.Fall)
	sensor := trigger.CreateFixture(physics.FixtureDef{Sensor: true, Shape: physics.Box(1, 1, mgl64.Vec2{})})

	begin(e, foot, sensor)
	assert.Zero(t, p.FootContacts())
}

func TestPlayerStompsEnemy(t *testing.T) {
	env := enginetest.New(t, nil)
	e, p := newPlayer(t, env, mgl64.Vec3{})
	foot := p.Body().Fixtures()[1]
	enemy, body := prop(t, env, id.Enemy, false)

	begin(e, body, foot)
	assert.Equal(t, id.Erase, enemy.State())
	assert.Zero(t, p.FootContacts())
	assert.Zero(t, env.Bus.Pending())
}

func TestPlayerDiesTouchingEnemy(t *testing.T) {
	env := enginetest.New(t, nil)
	e, p := newPlayer(t, env, mgl64.Vec3{})
	main := p.Body().Fixtures()[0]
	enemy, body := prop(t, env, id.Enemy, false)

	var deaths []event.Event
	env.Bus.Subscribe(id.PlayerDeath, func(ev event.Event) { deaths = append(deaths, ev) })

	begin(e, main, body)
	env.Bus.SwapBuffers()
	env.Bus.DispatchAll()
	require.Len(t, deaths, 1)
	assert.Same(t, e, deaths[0].Sender)

	// stomped enemies are harmless
	enemy.SetState(id.Erase)
	begin(e, body, main)
	env.Bus.SwapBuffers()
	env.Bus.DispatchAll()
	assert.Len(t, deaths, 1)
}

func TestPlayerCollectsAmmo(t *testing.T) {
	env := enginetest.New(t, nil)
	e, p := newPlayer(t, env, mgl64.Vec3{})
	main, foot := p.Body().Fixtures()[0], p.Body().Fixtures()[1]
	ammo, sensor := prop(t, env, id.Ammo, true)

	begin(e, foot, sensor)
	assert.Equal(t, id.Erase, ammo.State())
	assert.Equal(t, 1, p.Ammo())
	assert.Zero(t, p.FootContacts())

	begin(e, sensor, main)
	assert.Equal(t, 1, p.Ammo())

	e.Reset()
	assert.Zero(t, p.Ammo())
}

func TestPlayerThrowsRocks(t *testing.T) {
	env := enginetest.New(t, nil)
	env.Settings.Set("cavemanAmmo", 2)
	env.Settings.Set("cavemanThrowOffset", mgl64.Vec3{1, -0.5, 0})
	env.Settings.Set("cavemanThrowLinear", mgl64.Vec3{5, -3, 0})
	env.Assets.Load(RockAnimation, asset.KindAnimation)
	env.Assets.Load(RockPhysics, asset.KindPhysics)

	e, p := newPlayer(t, env, mgl64.Vec3{4, 18, 11})
	var thrown []*ecs.Entity
	p.OnThrow = func(item *ecs.Entity) { thrown = append(thrown, item) }

	assert.Nil(t, p.ThrowItem(), "cooldown starts at zero")
	p.Update(frame)

	item := p.ThrowItem()
	require.NotNil(t, item)
	assert.Equal(t, []*ecs.Entity{item}, thrown)
	assert.Equal(t, id.Item, item.Type())
	assert.Equal(t, id.Idle, item.State())
	assert.Equal(t, mgl64.Vec3{5, 17.5, 9}, item.Position())
	_, hasLife := item.Component(id.ItemController)
	assert.True(t, hasLife)

	rock := env.Body(t, item)
	assert.True(t, rock.Active())
	assert.Equal(t, mgl64.Vec2{5, 17.5}, rock.Position())
	assert.Equal(t, []mgl64.Vec2{{5, -3}}, rock.Impulses)
	assert.Equal(t, 1.0, rock.AngularVelocity())
	assert.Equal(t, 1, p.Ammo())
	assert.Equal(t, time.Second, p.ThrowCooldown())

	assert.Nil(t, p.ThrowItem(), "still cooling down")

	animationOf(e).Flip(true, true)
	p.Update(time.Second + frame)
	left := p.ThrowItem()
	require.NotNil(t, left)
	assert.Equal(t, mgl64.Vec3{3, 17.5, 9}, left.Position())
	assert.Equal(t, []mgl64.Vec2{{-5, -3}}, env.Body(t, left).Impulses)
	assert.Zero(t, p.Ammo())

	p.Update(2 * time.Second)
	assert.Nil(t, p.ThrowItem(), "out of ammo")
	assert.Len(t, thrown, 2)
}

func TestPlayerWithoutBodyIsInert(t *testing.T) {
	env := enginetest.New(t, nil)
	e := env.Obtain(t, id.Caveman)
	p := NewPlayer(e, env.Deps)
	require.NoError(t, e.AddComponent(component.NewAnimation(e, env.Deps, "data/caveman.yaml")))
	require.NoError(t, e.AddComponent(component.NewPhysics(e, env.Deps, "data/caveman_physics.yaml")))
	require.NoError(t, e.AddComponent(p))
	require.NoError(t, e.Batch())

	env.Keys.Press(input.KeyRight)
	p.Update(frame)
	assert.Nil(t, p.ThrowItem())
	assert.Empty(t, env.Fake.Bodies)
}

func TestPlayerNeedsPhysicsAndAnimation(t *testing.T) {
	env := enginetest.New(t, nil)
	e := env.Obtain(t, id.Caveman)
	require.NoError(t, e.AddComponent(NewPlayer(e, env.Deps)))
	assert.ErrorIs(t, e.Batch(), ecs.ErrMissingDependency)
}

func newEnemy(t *testing.T, env *enginetest.Env, pos mgl64.Vec3) (*ecs.Entity, *Enemy) {
	t.Helper()
	e := env.Obtain(t, id.Enemy)
	en := NewEnemy(e, env.Deps)
	build(t, env, e,
		component.NewAnimation(e, env.Deps, "data/enemy.yaml"),
		component.NewPhysics(e, env.Deps, "data/enemy_physics.yaml"),
		en)
	e.OnMessage(nil, id.DisablePhysics, nil)
	e.SetPosition(pos)
	e.SetState(id.Walk)
	e.OnMessage(nil, id.EnablePhysics, nil)
	return e, en
}

func TestEnemyWalksWhileFloorAhead(t *testing.T) {
	env := enginetest.New(t, nil)
	e, en := newEnemy(t, env, mgl64.Vec3{10, 5, 12})
	floor := env.Fake.StaticBox(mgl64.Vec2{10, 8}, nil)
	env.Fake.RayHits = []physicstest.RayHit{{Fixture: floor, Point: mgl64.Vec2{8.4, 7}}}

	en.Update(frame)
	require.Len(t, env.Fake.Rays, 1)
	assert.Equal(t, [2]mgl64.Vec2{{8.4, 5}, {8.4, 25}}, env.Fake.Rays[0])
	assert.False(t, en.WalkingRight())
	assert.Equal(t, []mgl64.Vec2{{-4, 0}}, env.Body(t, e).Impulses)
	assert.False(t, animationOf(e).FlipX())
}

func TestEnemyTurnsAtGap(t *testing.T) {
	env := enginetest.New(t, nil)
	e, en := newEnemy(t, env, mgl64.Vec3{10, 5, 12})
	body := env.Body(t, e)
	body.SetLinearVelocity(mgl64.Vec2{-2, 1})

	// its own body and far-away hits are not floor
	env.Fake.RayHits = []physicstest.RayHit{
		{Fixture: body.Fixtures()[0], Point: mgl64.Vec2{8.4, 6}},
		{Fixture: env.Fake.StaticBox(mgl64.Vec2{8, 30}, nil), Point: mgl64.Vec2{8.4, 9}},
	}
	en.Update(frame)

	assert.True(t, en.WalkingRight())
	assert.True(t, animationOf(e).FlipX())
	assert.Equal(t, mgl64.Vec2{4, 1}, body.LinearVelocity())
}

func TestEnemyTurnsWhenBlocked(t *testing.T) {
	env := enginetest.New(t, nil)
	e, en := newEnemy(t, env, mgl64.Vec3{10, 5, 12})
	floor := env.Fake.StaticBox(mgl64.Vec2{10, 8}, nil)
	env.Fake.RayHits = []physicstest.RayHit{{Fixture: floor, Point: mgl64.Vec2{8.4, 7}}}

	en.Update(600 * time.Millisecond)
	assert.True(t, en.WalkingRight())
	assert.Equal(t, []mgl64.Vec2{{4, 0}}, env.Body(t, e).Impulses)

	// a fresh turn waits for the change time again
	env.Body(t, e).SetLinearVelocity(mgl64.Vec2{0, 0})
	en.Update(frame)
	assert.True(t, en.WalkingRight())

	e.Reset()
	assert.False(t, en.WalkingRight())
}

func TestEnemySpeedCap(t *testing.T) {
	env := enginetest.New(t, nil)
	e, en := newEnemy(t, env, mgl64.Vec3{10, 5, 12})
	floor := env.Fake.StaticBox(mgl64.Vec2{10, 8}, nil)
	env.Fake.RayHits = []physicstest.RayHit{{Fixture: floor, Point: mgl64.Vec2{8.4, 7}}}
	env.Body(t, e).SetLinearVelocity(mgl64.Vec2{-10, 0})

	en.Update(frame)
	assert.Equal(t, mgl64.Vec2{-6, 0}, env.Body(t, e).LinearVelocity())
	assert.Empty(t, env.Body(t, e).Impulses)
}

func TestEnemyErasedByItem(t *testing.T) {
	env := enginetest.New(t, nil)
	e, _ := newEnemy(t, env, mgl64.Vec3{10, 5, 12})
	own := env.Body(t, e).Fixtures()[0]
	rock, rockFix := prop(t, env, id.Item, false)
	caveman, cavemanFix := prop(t, env, id.Caveman, false)

	begin(e, own, cavemanFix)
	assert.Equal(t, id.Walk, e.State())
	assert.Equal(t, id.Idle, caveman.State())

	begin(e, rockFix, own)
	assert.Equal(t, id.Erase, e.State())
	assert.Equal(t, id.Erase, rock.State())
}

func TestAmmoBobs(t *testing.T) {
	env := enginetest.New(t, nil)
	e := env.Obtain(t, id.Ammo)
	a := NewAmmo(e, env.Deps)
	build(t, env, e,
		component.NewAnimation(e, env.Deps, "data/ammo.yaml"),
		component.NewPhysics(e, env.Deps, "data/ammo_physics.yaml"),
		a)
	e.OnMessage(nil, id.DisablePhysics, nil)
	e.SetPosition(mgl64.Vec3{12, 17, 5})
	e.OnMessage(nil, id.EnablePhysics, nil)

	e.Reset()
	e.Reset()
	env.Tweens.Update(100 * time.Millisecond)
	assert.Equal(t, 1, env.Tweens.Len())
	assert.Equal(t, mgl64.Vec3{12, 17, 5}, e.Position())

	env.Tweens.Update(time.Second)
	assert.Equal(t, mgl64.Vec3{12, 15, 5}, e.Position())
	assert.Equal(t, mgl64.Vec2{12, 15}, env.Body(t, e).Position())
	assert.True(t, env.Body(t, e).Active())

	env.Tweens.Update(time.Second)
	assert.Equal(t, mgl64.Vec3{12, 17, 5}, e.Position())
	assert.True(t, env.Tweens.Running(e))

	require.NoError(t, env.Entities.Free(e))
	assert.False(t, env.Tweens.Running(e))
}

func TestItemExpires(t *testing.T) {
	env := enginetest.New(t, nil)
	e := env.Obtain(t, id.Item)
	it := NewItem(e, env.Deps)
	require.NoError(t, e.AddComponent(it))
	require.NoError(t, e.Batch())
	assert.Equal(t, 3*time.Second, it.Remaining())

	e.Update(2 * time.Second)
	e.Update(1500 * time.Millisecond)
	assert.Equal(t, id.Idle, e.State())
	e.Update(0)
	assert.Equal(t, id.Erase, e.State())

	e.Reset()
	assert.Equal(t, 3*time.Second, it.Remaining())
}
