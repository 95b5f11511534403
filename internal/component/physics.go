package component

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/asset"
	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/physics"
)

const (
	PhysicsName     = "PhysicsComponent"
	PhysicsPriority = 4
)

var physicsEvents = []id.ID{id.EntityMoved, id.EntityRotated, id.EnablePhysics, id.DisablePhysics}

// Physics binds the entity to a rigid body. An active body drives the
// entity transform; an inactive one follows it.
type Physics struct {
	ecs.Base
	deps *engine.Deps
	path string
	body physics.Body
}

// NewPhysics queues the physics template at path and subscribes to the
// transform and physics toggle events. The body is created in FetchAssets.
func NewPhysics(e *ecs.Entity, deps *engine.Deps, path string) *Physics {
	p := &Physics{
		Base: ecs.NewBase(e, PhysicsName, PhysicsPriority),
		deps: deps,
		path: path,
	}
	deps.Assets.Load(path, asset.KindPhysics)
	for _, ev := range physicsEvents {
		e.AddListener(ev, p)
	}
	return p
}

func (p *Physics) Path() string          { return p.path }
func (p *Physics) Body() physics.Body    { return p.body }
func (p *Physics) Dependencies() []id.ID { return nil }

func (p *Physics) FetchAssets() {
	e := p.Entity()
	if e == nil || p.body != nil {
		return
	}
	data, err := p.deps.Assets.Physics(p.path)
	if err != nil {
		p.deps.Log.Error("physics template not available", zap.String("file", p.path), zap.Error(err))
		return
	}
	def := data.Body
	def.Position = e.Position2D()
	def.Angle = mgl64.DegToRad(e.Rotation())
	p.body = p.deps.World.CreateBody(def)
	p.body.SetMassData(data.Mass)
	p.body.SetUserData(e)
	for _, f := range data.Fixtures {
		p.body.CreateFixture(f)
	}
}

// Update copies an active body's transform into the entity, keeping Z.
func (p *Physics) Update(time.Duration) {
	e := p.Entity()
	if e == nil || p.body == nil || !p.body.Active() {
		return
	}
	e.SetPosition2D(p.body.Position())
	e.SetRotation(mgl64.RadToDeg(p.body.Angle()))
}

// Reset parks the body until the owner enables physics again.
func (p *Physics) Reset() {
	if p.body != nil {
		p.body.SetActive(false)
	}
}

func (p *Physics) OnMessage(_ ecs.Component, event id.ID, _ any) {
	e := p.Entity()
	if e == nil {
		return
	}
	switch event {
	case id.EntityMoved, id.EntityRotated:
		if p.body != nil && !p.body.Active() {
			p.body.SetTransform(e.Position2D(), mgl64.DegToRad(e.Rotation()))
		}
	case id.EnablePhysics:
		if p.body != nil {
			p.body.SetActive(true)
		}
	case id.DisablePhysics:
		if p.body != nil {
			p.body.SetActive(false)
		}
	default:
		p.deps.Log.Error("unknown physics event",
			zap.String("event", e.Registry().Name(event)), zap.Stringer("entity", e))
	}
}

func (p *Physics) Dispose() {
	if p.body != nil {
		p.deps.World.DestroyBody(p.body)
		p.body = nil
	}
	p.deps.Assets.Unload(p.path)
	if e := p.Entity(); e != nil {
		for _, ev := range physicsEvents {
			e.RemoveListener(ev, p)
		}
	}
}
