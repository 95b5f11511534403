package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/core/event"
	coresys "github.com/evogame/evolution/internal/core/system"
	"github.com/evogame/evolution/internal/physics"
	"github.com/evogame/evolution/internal/render"
	"github.com/evogame/evolution/internal/state"
	"github.com/evogame/evolution/internal/tween"
)

// TweenSystem advances entity and camera tweens before physics so a tween
// owns the position it writes. Phase 1 (Tween).
type TweenSystem struct {
	tweens *tween.Manager
}

func NewTweenSystem(tweens *tween.Manager) *TweenSystem {
	return &TweenSystem{tweens: tweens}
}

func (s *TweenSystem) Phase() coresys.Phase    { return coresys.PhaseTween }
func (s *TweenSystem) Update(dt time.Duration) { s.tweens.Update(dt) }

// PhysicsSystem steps the world. Contact callbacks fire inside Step.
// Phase 2 (Physics).
type PhysicsSystem struct {
	world physics.World
}

func NewPhysicsSystem(world physics.World) *PhysicsSystem {
	return &PhysicsSystem{world: world}
}

func (s *PhysicsSystem) Phase() coresys.Phase    { return coresys.PhasePhysics }
func (s *PhysicsSystem) Update(dt time.Duration) { s.world.Step(dt) }

// EventSystem delivers the game events emitted since the last frame to the
// states and any other subscriber. Phase 3 (Events).
type EventSystem struct {
	bus *event.Bus
}

// NewEventSystem subscribes states to every event on bus.
func NewEventSystem(bus *event.Bus, states *state.Manager) *EventSystem {
	bus.SubscribeAll(states.OnEvent)
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() coresys.Phase { return coresys.PhaseEvents }

func (s *EventSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// StateSystem updates the state stack; entities and sprites follow from
// the active state. Phase 4 (Update).
type StateSystem struct {
	states *state.Manager
}

func NewStateSystem(states *state.Manager) *StateSystem {
	return &StateSystem{states: states}
}

func (s *StateSystem) Phase() coresys.Phase    { return coresys.PhaseUpdate }
func (s *StateSystem) Update(dt time.Duration) { s.states.Update(dt) }

// RenderSystem presents the frame when the backend buffers sprites.
// Phase 7 (Render).
type RenderSystem struct {
	backend render.Backend
	log     *zap.Logger
	failed  bool
}

func NewRenderSystem(backend render.Backend, log *zap.Logger) *RenderSystem {
	return &RenderSystem{backend: backend, log: log}
}

func (s *RenderSystem) Phase() coresys.Phase { return coresys.PhaseRender }

func (s *RenderSystem) Update(_ time.Duration) {
	f, ok := s.backend.(render.Flusher)
	if !ok {
		return
	}
	if err := f.Flush(); err != nil {
		// one report per failure streak
		if !s.failed {
			s.log.Error("present frame", zap.Error(err))
		}
		s.failed = true
		return
	}
	s.failed = false
}
