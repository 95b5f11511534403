package controller

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/component"
	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/event"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/input"
	"github.com/evogame/evolution/internal/physics"
	"github.com/evogame/evolution/internal/scripting"
)

const (
	airFriction = 0.2
	walkSpeed   = 0.2 // below this the player is idle
	faceSpeed   = 0.5 // above this the sprite turns
	throwZ      = 9
)

// Item asset paths used for thrown rocks.
const (
	RockAnimation = "data/rock.yaml"
	RockPhysics   = "data/rock_physics.yaml"
)

var playerEvents = []id.ID{id.EntityBatched, id.BeginContact, id.EndContact}

// Player drives the caveman from the keyboard: walking with a speed cap,
// jumping off the ground, stomping enemies, collecting and throwing rocks.
type Player struct {
	ecs.Base
	deps *engine.Deps

	body            physics.Body
	main, sensor    physics.Fixture
	anim            *component.Animation
	regularFriction float64

	maxSpeed     float64
	walkImpulse  float64
	jumpImpulse  float64
	throwTime    time.Duration
	throwOffset  mgl64.Vec3
	throwLinear  mgl64.Vec3
	throwAngular float64
	initialAmmo  int

	throwCounter time.Duration
	footContacts int
	ammo         int

	// OnThrow receives every thrown item so the level can reclaim it.
	OnThrow func(item *ecs.Entity)
}

func NewPlayer(e *ecs.Entity, deps *engine.Deps) *Player {
	s := deps.Settings
	p := &Player{
		Base:            ecs.NewBase(e, "PlayerController", Priority),
		deps:            deps,
		regularFriction: 0.8,
		maxSpeed:        s.Float("cavemanMaxSpeed", 7),
		walkImpulse:     s.Float("cavemanWalkImpulse", 4),
		jumpImpulse:     s.Float("cavemanJumpImpulse", 20),
		throwTime:       seconds(s.Float("cavemanThrowTime", 1)),
		throwOffset:     s.Vector("cavemanThrowOffset", mgl64.Vec3{}),
		throwLinear:     s.Vector("cavemanThrowLinear", mgl64.Vec3{}),
		throwAngular:    s.Float("cavemanThrowAngular", 1),
		initialAmmo:     s.Int("cavemanAmmo", 0),
	}
	p.ammo = p.initialAmmo
	for _, ev := range playerEvents {
		e.AddListener(ev, p)
	}
	return p
}

func (p *Player) Ammo() int                    { return p.ammo }
func (p *Player) FootContacts() int            { return p.footContacts }
func (p *Player) Dependencies() []id.ID        { return []id.ID{id.PhysicsComponent, id.AnimationComponent} }
func (p *Player) Grounded() bool               { return p.footContacts > 0 }
func (p *Player) CanThrow() bool               { return p.ammo > 0 && p.throwCounter < 0 }
func (p *Player) Body() physics.Body           { return p.body }
func (p *Player) ThrowCooldown() time.Duration { return p.throwCounter }

func (p *Player) FetchAssets() {
	e := p.Entity()
	if e == nil {
		return
	}
	p.bind(e)
	if p.main != nil {
		p.regularFriction = p.main.Friction()
	}
}

func (p *Player) bind(e *ecs.Entity) {
	p.anim = animationOf(e)
	phys := physicsOf(e)
	if phys == nil || phys.Body() == nil {
		return
	}
	p.body = phys.Body()
	fx := p.body.Fixtures()
	if len(fx) < 2 {
		p.deps.Log.Error("player body needs a main fixture and a foot sensor",
			zap.Stringer("entity", e), zap.Int("fixtures", len(fx)))
		p.body = nil
		return
	}
	p.main, p.sensor = fx[0], fx[1]
}

func (p *Player) Update(dt time.Duration) {
	e := p.Entity()
	if e == nil || p.body == nil {
		return
	}
	vel := p.body.LinearVelocity()
	pos := p.body.Position()
	state := e.State()
	keys := p.deps.Input

	if math.Abs(vel.X()) > p.maxSpeed {
		vel[0] = sign(vel.X()) * p.maxSpeed
		p.body.SetLinearVelocity(vel)
	}

	if keys.Pressed(input.KeyLeft) && vel.X() > -p.maxSpeed {
		p.body.ApplyLinearImpulse(mgl64.Vec2{-p.walkImpulse, 0}, pos)
	} else if keys.Pressed(input.KeyRight) && vel.X() < p.maxSpeed {
		p.body.ApplyLinearImpulse(mgl64.Vec2{p.walkImpulse, 0}, pos)
	}

	if p.footContacts > 0 && state != id.Jump && keys.Pressed(input.KeyUp) {
		impulse := p.deps.Formulas.JumpImpulse(scripting.JumpContext{Impulse: p.jumpImpulse, VelocityX: vel.X()})
		p.body.ApplyLinearImpulse(mgl64.Vec2{0, impulse}, mgl64.Vec2{pos.X(), pos.Y() - 0.1})
	}

	if p.anim != nil {
		if vel.X() < -faceSpeed {
			p.anim.Flip(true, true)
		} else if vel.X() > faceSpeed {
			p.anim.Flip(false, true)
		}
	}

	p.throwCounter -= dt

	friction := airFriction
	if p.footContacts > 0 {
		friction = p.regularFriction
	}
	p.main.SetFriction(friction)
	p.sensor.SetFriction(friction)

	switch state {
	case id.Idle:
		if math.Abs(vel.X()) > walkSpeed {
			e.SetState(id.Walk)
		}
	case id.Walk:
		if math.Abs(vel.X()) < walkSpeed {
			e.SetState(id.Idle)
		}
	}
}

func (p *Player) Reset() {
	p.footContacts = 0
	p.throwCounter = 0
	p.ammo = p.initialAmmo
}

func (p *Player) OnMessage(_ ecs.Component, ev id.ID, payload any) {
	e := p.Entity()
	if e == nil {
		return
	}
	switch ev {
	case id.EntityBatched:
		p.bind(e)
	case id.BeginContact:
		if c, ok := payload.(physics.Contact); ok {
			p.beginContact(e, c)
		}
	case id.EndContact:
		if c, ok := payload.(physics.Contact); ok {
			p.endContact(e, c)
		}
	default:
		p.deps.Log.Error("player event not handled", zap.String("event", e.Registry().Name(ev)))
	}
}

func (p *Player) beginContact(e *ecs.Entity, c physics.Contact) {
	if _, other, ok := physics.Tagged(c, id.Foot); ok {
		if target, isEntity := entityOf(other); isEntity {
			if target.Type() == id.Enemy {
				target.SetState(id.Erase)
				return
			}
		} else if !other.Sensor() {
			p.footContacts++
			if p.footContacts == 1 {
				e.SetState(id.Idle)
			}
			return
		}
	}

	other, ok := otherEntity(e, c)
	if !ok {
		return
	}
	switch {
	case other.Type() == id.Enemy && other.State() != id.Erase:
		p.deps.Log.Info("player killed", zap.Stringer("by", other))
		p.deps.Bus.Emit(event.PlayerDeath(e))
	case other.Type() == id.Ammo && other.State() != id.Erase:
		other.SetState(id.Erase)
		p.ammo++
		p.deps.Log.Debug("ammo collected", zap.Int("ammo", p.ammo))
	}
}

func (p *Player) endContact(e *ecs.Entity, c physics.Contact) {
	_, other, ok := physics.Tagged(c, id.Foot)
	if !ok || other.Sensor() {
		return
	}
	if _, isEntity := entityOf(other); isEntity {
		return
	}
	p.footContacts--
	if p.footContacts == 0 {
		e.SetState(id.Jump)
	}
}

// ThrowItem spawns a rock in front of the player when there is ammo and
// the cooldown has passed. It returns nil when nothing was thrown.
func (p *Player) ThrowItem() *ecs.Entity {
	e := p.Entity()
	if e == nil || p.body == nil || !p.CanThrow() {
		return nil
	}
	item, err := p.deps.Entities.Obtain()
	if err != nil {
		p.deps.Log.Error("cannot spawn item", zap.Error(err))
		return nil
	}
	item.SetType(id.Item)
	phys := component.NewPhysics(item, p.deps, RockPhysics)
	for _, c := range []ecs.Component{component.NewAnimation(item, p.deps, RockAnimation), phys, NewItem(item, p.deps)} {
		if err := item.AddComponent(c); err != nil {
			p.deps.Log.Error("cannot build item", zap.Error(err))
		}
	}
	if err := item.Batch(); err != nil {
		p.deps.Log.Error("cannot batch item", zap.Error(err))
		_ = p.deps.Entities.Free(item)
		return nil
	}
	item.FetchAssets()

	facingLeft := p.anim != nil && p.anim.FlipX()
	from := e.Position2D()
	x := from.X() + p.throwOffset.X()
	if facingLeft {
		x = from.X() - p.throwOffset.X()
	}
	item.OnMessage(nil, id.DisablePhysics, nil)
	item.SetPosition(mgl64.Vec3{x, from.Y() + p.throwOffset.Y(), throwZ})
	item.OnMessage(nil, id.EnablePhysics, nil)
	item.SetState(id.Idle)

	if b := phys.Body(); b != nil {
		imp := p.deps.Formulas.ThrowImpulse(scripting.ThrowContext{
			LinearX:    p.throwLinear.X(),
			LinearY:    p.throwLinear.Y(),
			Angular:    p.throwAngular,
			VelocityX:  p.body.LinearVelocity().X(),
			FacingLeft: facingLeft,
		})
		b.ApplyAngularImpulse(imp.Angular)
		b.ApplyLinearImpulse(mgl64.Vec2{imp.X, imp.Y}, b.Position())
	}

	if p.OnThrow != nil {
		p.OnThrow(item)
	}
	p.throwCounter = p.throwTime
	p.ammo--
	return item
}

func (p *Player) Dispose() {
	if e := p.Entity(); e != nil {
		for _, ev := range playerEvents {
			e.RemoveListener(ev, p)
		}
	}
	p.anim = nil
	p.body = nil
	p.main, p.sensor = nil, nil
	p.OnThrow = nil
	p.Reset()
}
