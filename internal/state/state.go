// Package state runs the screens of the game (menu, level) as a stack.
// Only the states on the stack are updated; the top one receives input.
package state

import (
	"time"

	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/core/event"
	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/input"
)

// State is one screen. Load and Dispose bracket its time on the stack and
// may run several times over the life of the game.
type State interface {
	Name() string
	Load()
	Dispose()
	Loaded() bool
	Active() bool
	SetActive(active bool)
	Pause()
	Resume()
	Update(dt time.Duration)
	KeyDown(k input.Key)
	OnEvent(ev event.Event)
}

// Base carries the bookkeeping shared by every state. Embed it and
// override what the screen needs.
type Base struct {
	name   string
	deps   *engine.Deps
	loaded bool
	active bool
	paused bool
}

func NewBase(name string, deps *engine.Deps) Base {
	return Base{name: name, deps: deps}
}

func (b *Base) Name() string         { return b.name }
func (b *Base) Deps() *engine.Deps   { return b.deps }
func (b *Base) Loaded() bool         { return b.loaded }
func (b *Base) Active() bool         { return b.active }
func (b *Base) Paused() bool         { return b.paused }
func (b *Base) Pause()               { b.paused = true }
func (b *Base) Resume()              { b.paused = false }
func (b *Base) Load()                { b.loaded = true }
func (b *Base) Dispose()             { b.loaded = false }
func (b *Base) Update(time.Duration) {}
func (b *Base) KeyDown(input.Key)    {}
func (b *Base) OnEvent(event.Event)  {}

func (b *Base) SetActive(active bool) {
	b.active = active
	if active {
		b.deps.Log.Info("state active", zap.String("state", b.name))
	} else {
		b.deps.Log.Info("state inactive", zap.String("state", b.name))
	}
}

// FinishLoading binds the assets handed off so far to the live entities.
func (b *Base) FinishLoading() {
	b.deps.Entities.FetchAssets()
}

func (b *Base) String() string { return "State(" + b.name + ")" }
