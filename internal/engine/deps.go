// Package engine holds the shared services of a running game.
package engine

import (
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/asset"
	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/event"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/input"
	"github.com/evogame/evolution/internal/lang"
	"github.com/evogame/evolution/internal/physics"
	"github.com/evogame/evolution/internal/render"
	"github.com/evogame/evolution/internal/scripting"
	"github.com/evogame/evolution/internal/settings"
	"github.com/evogame/evolution/internal/tween"
)

// Formulas are the tunable gameplay computations. The Lua engine and its
// Go defaults both satisfy it.
type Formulas interface {
	JumpImpulse(ctx scripting.JumpContext) float64
	ThrowImpulse(ctx scripting.ThrowContext) scripting.ThrowResult
	LevelScore(ctx scripting.ScoreContext) int
}

var (
	_ Formulas = (*scripting.Engine)(nil)
	_ Formulas = scripting.Defaults{}
)

// Deps holds shared dependencies injected into components and states.
type Deps struct {
	IDs      *id.Registry
	Entities *ecs.Manager
	Assets   *asset.Manager
	World    physics.World
	Renderer render.Backend
	Camera   *render.Camera
	Settings *settings.Settings
	Tweens   *tween.Manager
	Input    input.Source
	Bus      *event.Bus
	Formulas Formulas
	Lang     *lang.Manager
	Log      *zap.Logger

	// MetersPerPixel converts sprite sizes to world units.
	MetersPerPixel float64
}
