package ecs

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/core/id"
)

var (
	ErrMissingDependency = errors.New("missing component dependency")
	ErrBatched           = errors.New("entity already batched")
	ErrForeignComponent  = errors.New("component belongs to another entity")
)

// maxDispatchDepth bounds re-entrant event dispatch (a handler of Moved that
// moves the entity again, and so on). Deeper messages are dropped.
const maxDispatchDepth = 8

// EntityID is the permanent identity handed out by the Manager. Ids grow
// monotonically and are never reused, even when the Entity object is.
type EntityID uint32

// Entity is a transform, a state and an ordered set of components with a
// per-event listener registry. Nothing runs until Batch succeeds.
type Entity struct {
	id       EntityID
	typ      id.ID
	name     string
	position mgl64.Vec3
	rotation float64 // degrees, [0, 360)
	scale    float64
	state    id.ID
	batched  bool

	components []Component
	listeners  map[id.ID][]Component
	depth      int
	released   bool // queued for free while the manager iterates

	ids *id.Registry
	log *zap.Logger
}

func newEntity(ids *id.Registry, log *zap.Logger) *Entity {
	return &Entity{
		typ:        id.Empty,
		scale:      1,
		state:      id.Idle,
		components: make([]Component, 0, 8),
		listeners:  make(map[id.ID][]Component),
		ids:        ids,
		log:        log,
	}
}

func (e *Entity) ID() EntityID            { return e.id }
func (e *Entity) Type() id.ID             { return e.typ }
func (e *Entity) SetType(t id.ID)         { e.typ = t }
func (e *Entity) Name() string            { return e.name }
func (e *Entity) SetName(n string)        { e.name = n }
func (e *Entity) Position() mgl64.Vec3    { return e.position }
func (e *Entity) Position2D() mgl64.Vec2  { return e.position.Vec2() }
func (e *Entity) Rotation() float64       { return e.rotation }
func (e *Entity) Scale() float64          { return e.scale }
func (e *Entity) State() id.ID            { return e.state }
func (e *Entity) Batched() bool           { return e.batched }
func (e *Entity) Registry() *id.Registry  { return e.ids }
func (e *Entity) Logger() *zap.Logger     { return e.log }
func (e *Entity) Components() []Component { return e.components }

// Equal reports whether both handles denote the same entity id.
func (e *Entity) Equal(o *Entity) bool {
	return o != nil && e.id == o.id
}

func (e *Entity) String() string {
	return fmt.Sprintf("Entity(id: %d type: %s name: %s)", e.id, e.ids.Name(e.typ), e.name)
}

// SetPosition moves the entity and raises EntityMoved.
func (e *Entity) SetPosition(p mgl64.Vec3) {
	e.position = p
	e.raise(id.EntityMoved)
}

// SetPosition2D moves the entity on the XY plane, keeping Z.
func (e *Entity) SetPosition2D(p mgl64.Vec2) {
	e.SetPosition(p.Vec3(e.position.Z()))
}

// SetRotation sets the rotation in degrees, normalized to [0, 360), and
// raises EntityRotated.
func (e *Entity) SetRotation(deg float64) {
	e.rotation = normalizeDegrees(deg)
	e.raise(id.EntityRotated)
}

// SetScale raises EntityScaled.
func (e *Entity) SetScale(s float64) {
	e.scale = s
	e.raise(id.EntityScaled)
}

// SetState raises EntityStateChanged.
func (e *Entity) SetState(s id.ID) {
	e.state = s
	e.raise(id.EntityStateChanged)
}

func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

// AddComponent attaches c. Only legal before Batch.
func (e *Entity) AddComponent(c Component) error {
	if e.batched {
		e.log.Warn("add component to batched entity",
			zap.Stringer("entity", e), zap.String("component", c.Name()))
		return fmt.Errorf("add %s: %w", c.Name(), ErrBatched)
	}
	if owner := c.Entity(); owner != e {
		e.log.Error("add foreign component",
			zap.Stringer("entity", e), zap.String("component", c.Name()))
		return fmt.Errorf("add %s: %w", c.Name(), ErrForeignComponent)
	}
	e.components = append(e.components, c)
	return nil
}

// Component returns the first attached component of type t.
func (e *Entity) Component(t id.ID) (Component, bool) {
	if c := e.find(t); c != nil {
		return c, true
	}
	e.log.Debug("component not found",
		zap.Stringer("entity", e), zap.String("type", e.ids.Name(t)))
	return nil, false
}

func (e *Entity) find(t id.ID) Component {
	for _, c := range e.components {
		if c.Type() == t {
			return c
		}
	}
	return nil
}

// Batch validates every component's dependencies, sorts the components by
// priority and activates the entity. A failed batch leaves the entity
// inactive with its components still attached.
func (e *Entity) Batch() error {
	if e.batched {
		return nil
	}
	var missing []string
	for _, c := range e.components {
		for _, dep := range c.Dependencies() {
			if e.find(dep) == nil {
				missing = append(missing, c.Name()+" needs "+e.ids.Name(dep))
			}
		}
	}
	if len(missing) > 0 {
		e.log.Error("entity dependency error",
			zap.Stringer("entity", e), zap.Strings("missing", missing))
		return fmt.Errorf("batch %s: %w: %v", e, ErrMissingDependency, missing)
	}

	sort.SliceStable(e.components, byPriority(e.components))
	e.batched = true
	e.raise(id.EntityBatched)
	return nil
}

// Update advances every component in priority order.
func (e *Entity) Update(dt time.Duration) {
	if !e.batched {
		e.log.Debug("update on unbatched entity", zap.Stringer("entity", e))
		return
	}
	for _, c := range e.components {
		c.Update(dt)
	}
}

// Reset restores every component, e.g. on respawn.
func (e *Entity) Reset() {
	if !e.batched {
		e.log.Debug("reset on unbatched entity", zap.Stringer("entity", e))
		return
	}
	for _, c := range e.components {
		c.Reset()
	}
}

// FetchAssets lets components resolve deferred asset handles once loading
// has finished.
func (e *Entity) FetchAssets() {
	if !e.batched {
		e.log.Debug("fetch assets on unbatched entity", zap.Stringer("entity", e))
		return
	}
	for _, c := range e.components {
		c.FetchAssets()
	}
}

// AddListener subscribes c to event on this entity.
func (e *Entity) AddListener(event id.ID, c Component) {
	e.listeners[event] = append(e.listeners[event], c)
}

// RemoveListener unsubscribes c. The slice is rebuilt so an in-flight
// dispatch keeps iterating the old one.
func (e *Entity) RemoveListener(event id.ID, c Component) {
	subs := e.listeners[event]
	for i, s := range subs {
		if s != c {
			continue
		}
		next := make([]Component, 0, len(subs)-1)
		next = append(next, subs[:i]...)
		next = append(next, subs[i+1:]...)
		if len(next) == 0 {
			delete(e.listeners, event)
		} else {
			e.listeners[event] = next
		}
		return
	}
	e.log.Info("remove missing listener",
		zap.Stringer("entity", e), zap.String("event", e.ids.Name(event)),
		zap.String("component", c.Name()))
}

// Listeners returns the components subscribed to event, in subscription order.
func (e *Entity) Listeners(event id.ID) []Component {
	return e.listeners[event]
}

// OnMessage fans event out to every subscribed component. It is a no-op on
// an entity that has not been batched.
func (e *Entity) OnMessage(sender Component, event id.ID, payload any) {
	if !e.batched {
		e.log.Warn("message to unbatched entity",
			zap.Stringer("entity", e), zap.String("event", e.ids.Name(event)))
		return
	}
	e.dispatch(sender, event, payload)
}

// raise is the setter path. Before batching the entity is still being
// placed, so the skip is only traced at debug level.
func (e *Entity) raise(event id.ID) {
	if !e.batched {
		e.log.Debug("event on unbatched entity skipped",
			zap.Stringer("entity", e), zap.String("event", e.ids.Name(event)))
		return
	}
	e.dispatch(nil, event, nil)
}

func (e *Entity) dispatch(sender Component, event id.ID, payload any) {
	if e.depth >= maxDispatchDepth {
		e.log.Error("event dispatch too deep, dropped",
			zap.Stringer("entity", e), zap.String("event", e.ids.Name(event)),
			zap.Int("depth", e.depth))
		return
	}
	e.depth++
	defer func() { e.depth-- }()

	// A handler may free the entity; the rest of the fan-out is dropped.
	eid := e.id
	for _, c := range e.listeners[event] {
		if !e.batched || e.id != eid {
			break
		}
		c.OnMessage(sender, event, payload)
	}
}

// Dispose disposes every component and returns the entity to its default
// state. Safe to call more than once.
func (e *Entity) Dispose() {
	e.batched = false
	for _, c := range e.components {
		c.Dispose()
	}
	clear(e.components)
	e.components = e.components[:0]
	clear(e.listeners)

	e.typ = id.Empty
	e.name = ""
	e.position = mgl64.Vec3{}
	e.rotation = 0
	e.scale = 1
	e.state = id.Idle
	e.released = false
}

// CompareDepth orders entities by descending Z for back-to-front drawing.
func CompareDepth(a, b *Entity) int {
	az, bz := a.position.Z(), b.position.Z()
	switch {
	case az > bz:
		return -1
	case az < bz:
		return 1
	}
	return 0
}
