package controller

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/component"
	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/physics"
)

var enemyEvents = []id.ID{id.EntityBatched, id.BeginContact}

// Enemy patrols a platform. It probes the floor ahead with a ray and turns
// around at gaps, and turns when blocked by an obstacle.
type Enemy struct {
	ecs.Base
	deps *engine.Deps

	body physics.Body
	anim *component.Animation

	maxSpeed     float64
	impulse      float64
	changeMin    time.Duration
	lookAhead    float64
	rayLength    float64
	groundOffset float64
	gapTolerance float64

	changeTime   time.Duration
	walkingRight bool
}

func NewEnemy(e *ecs.Entity, deps *engine.Deps) *Enemy {
	s := deps.Settings
	en := &Enemy{
		Base:         ecs.NewBase(e, "EnemyController", Priority),
		deps:         deps,
		maxSpeed:     s.Float("enemyMaxSpeedX", 6),
		impulse:      s.Float("enemyImpulseX", 4),
		changeMin:    seconds(s.Float("enemyChangeMinTime", 0.5)),
		lookAhead:    s.Float("enemyLookAhead", 1.6),
		rayLength:    s.Float("enemyRayLength", 20),
		groundOffset: s.Float("enemyGroundOffset", 2.5),
		gapTolerance: s.Float("enemyGapTolerance", 0.5),
	}
	en.changeTime = en.changeMin
	for _, ev := range enemyEvents {
		e.AddListener(ev, en)
	}
	return en
}

func (en *Enemy) WalkingRight() bool    { return en.walkingRight }
func (en *Enemy) Dependencies() []id.ID { return []id.ID{id.PhysicsComponent, id.AnimationComponent} }

func (en *Enemy) FetchAssets() {
	e := en.Entity()
	if e == nil {
		return
	}
	en.anim = animationOf(e)
	if phys := physicsOf(e); phys != nil {
		en.body = phys.Body()
	}
}

func (en *Enemy) Update(dt time.Duration) {
	if en.Entity() == nil || en.body == nil || en.anim == nil {
		return
	}
	vel := en.body.LinearVelocity()
	pos := en.body.Position()

	if math.Abs(vel.X()) > en.maxSpeed {
		vel[0] = sign(vel.X()) * en.maxSpeed
		en.body.SetLinearVelocity(vel)
	}

	en.changeTime -= dt
	en.walkingRight = en.anim.FlipX()

	if en.gapAhead(pos) {
		en.walkingRight = !en.walkingRight
		en.body.SetLinearVelocity(mgl64.Vec2{0, en.body.LinearVelocity().Y()})
	}

	// blocked: still slow while the patrol time is up
	if en.walkingRight && vel.X() < faceSpeed && en.changeTime < 0 {
		en.walkingRight = false
		en.changeTime = en.changeMin
	} else if !en.walkingRight && vel.X() > -faceSpeed && en.changeTime < 0 {
		en.walkingRight = true
		en.changeTime = en.changeMin
	}

	if en.walkingRight && vel.X() < en.maxSpeed {
		en.body.ApplyLinearImpulse(mgl64.Vec2{en.impulse, 0}, pos)
	} else if !en.walkingRight && vel.X() > -en.maxSpeed {
		en.body.ApplyLinearImpulse(mgl64.Vec2{-en.impulse, 0}, pos)
	}

	en.anim.Flip(en.walkingRight, true)
}

// gapAhead casts a ray down in front of the enemy. Any foreign fixture
// close enough below its feet counts as floor.
func (en *Enemy) gapAhead(pos mgl64.Vec2) bool {
	offset := -en.lookAhead
	if en.walkingRight {
		offset = en.lookAhead
	}
	from := mgl64.Vec2{pos.X() + offset, pos.Y()}
	to := mgl64.Vec2{from.X(), from.Y() + en.rayLength}

	gap := true
	ground := pos.Y() + en.groundOffset
	en.deps.World.RayCast(func(f physics.Fixture, point, _ mgl64.Vec2, _ float64) float64 {
		if f.Body() == en.body {
			return -1
		}
		if ground-point.Y() > -en.gapTolerance {
			gap = false
			return 0
		}
		return -1
	}, from, to)
	return gap
}

func (en *Enemy) Reset() {
	en.changeTime = en.changeMin
	en.walkingRight = false
}

func (en *Enemy) OnMessage(_ ecs.Component, ev id.ID, payload any) {
	e := en.Entity()
	if e == nil {
		return
	}
	switch ev {
	case id.EntityBatched:
	case id.BeginContact:
		c, ok := payload.(physics.Contact)
		if !ok {
			return
		}
		if other, ok := otherEntity(e, c); ok && other.Type() == id.Item {
			e.SetState(id.Erase)
			other.SetState(id.Erase)
		}
	default:
		en.deps.Log.Error("enemy event not handled", zap.String("event", e.Registry().Name(ev)))
	}
}

func (en *Enemy) Dispose() {
	if e := en.Entity(); e != nil {
		for _, ev := range enemyEvents {
			e.RemoveListener(ev, en)
		}
	}
	en.anim = nil
	en.body = nil
}
