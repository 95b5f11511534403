// Package controller holds the gameplay components: the player, patrolling
// enemies, floating ammo pickups and thrown items.
package controller

import (
	"time"

	"github.com/evogame/evolution/internal/component"
	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/physics"
)

// Priority runs controllers after physics has synced the entity and after
// the sprite was submitted.
const Priority = 3

func physicsOf(e *ecs.Entity) *component.Physics {
	c, ok := e.Component(id.PhysicsComponent)
	if !ok {
		return nil
	}
	p, _ := c.(*component.Physics)
	return p
}

func animationOf(e *ecs.Entity) *component.Animation {
	c, ok := e.Component(id.AnimationComponent)
	if !ok {
		return nil
	}
	a, _ := c.(*component.Animation)
	return a
}

// entityOf returns the entity owning the fixture's body, if any.
func entityOf(f physics.Fixture) (*ecs.Entity, bool) {
	e, ok := f.Body().UserData().(*ecs.Entity)
	return e, ok && e != nil
}

// otherEntity returns the entity self is touching when both sides of the
// contact are entities.
func otherEntity(self *ecs.Entity, c physics.Contact) (*ecs.Entity, bool) {
	a, okA := entityOf(c.FixtureA())
	b, okB := entityOf(c.FixtureB())
	if !okA || !okB {
		return nil, false
	}
	if a == self {
		return b, true
	}
	return a, true
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func sign(v float64) float64 {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
