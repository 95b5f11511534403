package controller

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"

	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/tween"
)

const ammoStartDelay = 100 * time.Millisecond

// Ammo makes a pickup bob up and down until it is collected.
type Ammo struct {
	ecs.Base
	deps *engine.Deps

	changeHeight float64
	phaseTime    time.Duration
}

func NewAmmo(e *ecs.Entity, deps *engine.Deps) *Ammo {
	return &Ammo{
		Base:         ecs.NewBase(e, "AmmoController", Priority),
		deps:         deps,
		changeHeight: deps.Settings.Float("ammoChangeHeight", 2),
		phaseTime:    seconds(deps.Settings.Float("ammoPhaseTime", 1)),
	}
}

func (a *Ammo) Update(time.Duration)                {}
func (a *Ammo) OnMessage(ecs.Component, id.ID, any) {}
func (a *Ammo) Dependencies() []id.ID               { return []id.ID{id.PhysicsComponent, id.AnimationComponent} }

// Reset starts the bobbing from the current position, replacing any
// running one.
func (a *Ammo) Reset() {
	e := a.Entity()
	if e == nil {
		return
	}
	a.deps.Tweens.KillTarget(e)
	pos := e.Position()
	a.deps.Tweens.To(e, tween.EntityPosition{E: e}, pos.Sub(mgl64.Vec3{0, a.changeHeight, 0}), a.phaseTime, ease.InOutQuad).
		Repeat(tween.Forever, true).
		Delay(ammoStartDelay)
}

func (a *Ammo) Dispose() {
	if e := a.Entity(); e != nil {
		a.deps.Tweens.KillTarget(e)
	}
}
