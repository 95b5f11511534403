package ecs

import (
	"time"

	"github.com/evogame/evolution/internal/core/id"
)

// Component is a prioritized unit of per-entity behavior. A component belongs
// to exactly one Entity for its whole life.
type Component interface {
	Name() string
	Type() id.ID
	Priority() int
	// Entity returns the owner, or nil once the owner has been recycled.
	Entity() *Entity

	Update(dt time.Duration)
	Reset()
	// OnMessage receives events raised on the owning entity. sender is nil
	// when the entity itself raised the event.
	OnMessage(sender Component, event id.ID, payload any)
	FetchAssets()
	// Dependencies lists component types that must be attached to the same
	// entity before it can be batched.
	Dependencies() []id.ID
	Dispose()
}

// Base carries the bookkeeping shared by every component. Embed it and
// implement the remaining Component methods.
type Base struct {
	owner    *Entity
	ownerID  EntityID
	name     string
	typ      id.ID
	priority int
}

// NewBase binds a component to e. The component type is the interned name.
func NewBase(e *Entity, name string, priority int) Base {
	return Base{
		owner:    e,
		ownerID:  e.ID(),
		name:     name,
		typ:      e.Registry().Intern(name),
		priority: priority,
	}
}

func (b *Base) Name() string  { return b.name }
func (b *Base) Type() id.ID   { return b.typ }
func (b *Base) Priority() int { return b.priority }

// Entity returns the owner while it still carries the id it had when the
// component was built.
func (b *Base) Entity() *Entity {
	if b.owner == nil || b.owner.ID() != b.ownerID {
		return nil
	}
	return b.owner
}

// FetchAssets is a no-op for components with nothing deferred.
func (b *Base) FetchAssets() {}

func (b *Base) String() string { return "Component(" + b.name + ")" }

// byPriority orders components highest priority first, keeping insertion
// order between equals.
func byPriority(cs []Component) func(i, j int) bool {
	return func(i, j int) bool { return cs[i].Priority() > cs[j].Priority() }
}
