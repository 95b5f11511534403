// Package injector assembles a running game from its configuration.
package injector

import (
	"context"
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/wire"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/asset"
	"github.com/evogame/evolution/internal/config"
	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/event"
	"github.com/evogame/evolution/internal/core/id"
	coresys "github.com/evogame/evolution/internal/core/system"
	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/game"
	"github.com/evogame/evolution/internal/input"
	"github.com/evogame/evolution/internal/lang"
	"github.com/evogame/evolution/internal/persist"
	"github.com/evogame/evolution/internal/physics"
	"github.com/evogame/evolution/internal/physics/b2world"
	"github.com/evogame/evolution/internal/render"
	"github.com/evogame/evolution/internal/scripting"
	"github.com/evogame/evolution/internal/settings"
	"github.com/evogame/evolution/internal/state"
	"github.com/evogame/evolution/internal/system"
	"github.com/evogame/evolution/internal/termview"
	"github.com/evogame/evolution/internal/tween"
)

// App is a fully wired game ready for its frame loop.
type App struct {
	Config   *config.Config
	Deps     *engine.Deps
	States   *state.Manager
	Runner   *coresys.Runner
	Clock    *coresys.Clock
	Recorder *system.RunRecorder
	View     *View
	Log      *zap.Logger
}

// View is the presentation side: a terminal, or a recorder when headless.
type View struct {
	Backend render.Backend
	Screen  *termview.Screen // nil when headless
}

// Poller returns the input poller, nil when headless.
func (v *View) Poller() system.Poller {
	if v.Screen == nil {
		return nil
	}
	return v.Screen
}

// Quit reports whether the player closed the view.
func (v *View) Quit() bool { return v.Screen != nil && v.Screen.Quit() }

// CoreSet provides the engine services shared by components and states.
var CoreSet = wire.NewSet(
	id.NewRegistry,
	event.NewBus,
	input.NewState,
	ProvideEntities,
	ProvideAssets,
	ProvideWorld,
	ProvideCamera,
	ProvideSettings,
	ProvideTweens,
	ProvideFormulas,
	ProvideLang,
	ProvideView,
	ProvideDeps,
)

// GameSet provides the state stack, persistence and frame systems.
var GameSet = wire.NewSet(
	ProvideStates,
	ProvideRunStore,
	ProvideRunner,
	ProvideClock,
	wire.Struct(new(App), "*"),
)

func ProvideEntities(cfg *config.Config, ids *id.Registry, log *zap.Logger) *ecs.Manager {
	return ecs.NewManager(cfg.Game.MaxEntities, ids, log)
}

func ProvideAssets(cfg *config.Config, ids *id.Registry, log *zap.Logger) (*asset.Manager, func()) {
	m := asset.NewManager(os.DirFS(cfg.Assets.Root), ids, cfg.Assets.Workers, log)
	return m, m.Close
}

func ProvideWorld(cfg *config.Config, log *zap.Logger) physics.World {
	return b2world.New(b2world.Config{
		Gravity:            mgl64.Vec2{cfg.Physics.Gravity[0], cfg.Physics.Gravity[1]},
		AllowSleep:         cfg.Physics.AllowSleep,
		VelocityIterations: cfg.Physics.VelocityIterations,
		PositionIterations: cfg.Physics.PositionIterations,
	}, log)
}

func ProvideCamera(cfg *config.Config) *render.Camera {
	return render.NewCamera(cfg.Game.ViewportWidth, cfg.Game.ViewportHeight)
}

func ProvideSettings(cfg *config.Config, log *zap.Logger) (*settings.Settings, error) {
	return settings.Load(cfg.Game.Settings, log)
}

func ProvideTweens(log *zap.Logger) *tween.Manager {
	return tween.NewManager(log)
}

// ProvideFormulas loads the Lua formulas, or the Go defaults when scripting
// is off.
func ProvideFormulas(cfg *config.Config, log *zap.Logger) (engine.Formulas, func(), error) {
	if !cfg.Scripting.Enabled {
		log.Info("scripting disabled, using built-in formulas")
		return scripting.Defaults{}, func() {}, nil
	}
	e, err := scripting.NewEngine(cfg.Scripting.Dir, log)
	if err != nil {
		return nil, nil, fmt.Errorf("scripting: %w", err)
	}
	return e, e.Close, nil
}

func ProvideLang(cfg *config.Config, log *zap.Logger) (*lang.Manager, error) {
	return lang.Load(os.DirFS(cfg.Assets.Root), cfg.Language.File, cfg.Language.Preferred, log)
}

func ProvideView(cfg *config.Config, cam *render.Camera, keys *input.State, log *zap.Logger) (*View, func(), error) {
	if cfg.View.Headless {
		return &View{Backend: render.NewRecorder(cam)}, func() {}, nil
	}
	s, err := termview.New(cam, keys, cfg.View.CellsPerUnit, log)
	if err != nil {
		return nil, nil, fmt.Errorf("terminal: %w", err)
	}
	return &View{Backend: s, Screen: s}, s.Close, nil
}

func ProvideDeps(
	cfg *config.Config,
	ids *id.Registry,
	entities *ecs.Manager,
	assets *asset.Manager,
	world physics.World,
	view *View,
	cam *render.Camera,
	set *settings.Settings,
	tweens *tween.Manager,
	keys *input.State,
	bus *event.Bus,
	formulas engine.Formulas,
	strs *lang.Manager,
	log *zap.Logger,
) *engine.Deps {
	return &engine.Deps{
		IDs:            ids,
		Entities:       entities,
		Assets:         assets,
		World:          world,
		Renderer:       view.Backend,
		Camera:         cam,
		Settings:       set,
		Tweens:         tweens,
		Input:          keys,
		Bus:            bus,
		Formulas:       formulas,
		Lang:           strs,
		Log:            log,
		MetersPerPixel: cfg.Physics.MetersPerPixel,
	}
}

func ProvideStates(log *zap.Logger) *state.Manager {
	return state.NewManager(log)
}

// ProvideRunStore connects to the database when a DSN is configured. A nil
// store keeps run records in the log only.
func ProvideRunStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (system.RunStore, func(), error) {
	if !cfg.Database.Enabled() {
		return nil, func() {}, nil
	}
	db, err := persist.NewDB(ctx, cfg.Database, log)
	if err != nil {
		return nil, nil, fmt.Errorf("database: %w", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrations: %w", err)
	}
	return persist.NewRunRepo(db), db.Close, nil
}

// ProvideRunner registers the screens, pushes the menu and builds the
// frame systems in phase order.
func ProvideRunner(
	cfg *config.Config,
	deps *engine.Deps,
	states *state.Manager,
	view *View,
	keys *input.State,
	store system.RunStore,
	log *zap.Logger,
) (*coresys.Runner, *system.RunRecorder, error) {
	if _, _, err := game.Register(states, deps); err != nil {
		return nil, nil, err
	}
	states.Push(game.MenuName)

	recorder := system.NewRunRecorder(deps.Bus, store, log, cfg.Database.SaveInterval)

	r := coresys.NewRunner(cfg.Game.FrameTime(), log)
	r.Register(system.NewInputSystem(view.Poller(), keys, states, 0, log))
	r.Register(system.NewTweenSystem(deps.Tweens))
	r.Register(system.NewPhysicsSystem(deps.World))
	r.Register(system.NewEventSystem(deps.Bus, states))
	r.Register(system.NewStateSystem(states))
	r.Register(system.NewCleanupSystem(deps.Entities, log))
	r.Register(recorder)
	r.Register(system.NewRenderSystem(deps.Renderer, log))
	return r, recorder, nil
}

func ProvideClock(cfg *config.Config) *coresys.Clock {
	return coresys.NewClock(cfg.Game.FrameTime(), cfg.Game.MaxFrameTime)
}
