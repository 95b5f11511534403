// Package enginetest builds engine.Deps wired to fakes: an in-memory asset
// tree, the deterministic physics world and the recording renderer.
package enginetest

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/evogame/evolution/internal/asset"
	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/event"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/input"
	"github.com/evogame/evolution/internal/lang"
	"github.com/evogame/evolution/internal/physics/physicstest"
	"github.com/evogame/evolution/internal/render"
	"github.com/evogame/evolution/internal/scripting"
	"github.com/evogame/evolution/internal/settings"
	"github.com/evogame/evolution/internal/tween"
)

// Env is a Deps plus typed handles on the fakes behind it.
type Env struct {
	*engine.Deps
	Files    fstest.MapFS
	Fake     *physicstest.World
	Recorder *render.Recorder
	Keys     *input.State
	Logs     *observer.ObservedLogs
}

// Sprite sheets and physics templates shared by the tests. Every sheet is
// 256x128 cut into 4x2 frames of 64x64 pixels.
var Files = fstest.MapFS{
	"data/caveman.yaml": {Data: []byte(`
texture: caveman.png
width: 256
height: 128
rows: 2
columns: 4
frame_duration: 0.1
animations:
  - {name: idle, frames: [0], mode: loop}
  - {name: walk, frames: [1, 2, 3], mode: loop}
  - {name: jump, frames: [4]}
  - {name: erase, frames: [5, 6]}
`)},
	"data/caveman_physics.yaml": {Data: []byte(`
type: dynamic
fixed_rotation: true
mass: {mass: 1}
fixtures:
  - id: body
    friction: 0.8
    shape: {type: polygon, width: 0.4, height: 0.9}
  - id: foot
    sensor: true
    shape: {type: polygon, center_y: 0.9, width: 0.3, height: 0.1}
`)},
	"data/enemy.yaml": {Data: []byte(`
texture: enemy.png
width: 256
height: 128
rows: 2
columns: 4
frame_duration: 0.1
animations:
  - {name: walk, frames: [0, 1, 2, 3], mode: loop}
  - {name: erase, frames: [4, 5]}
`)},
	"data/enemy_physics.yaml": {Data: []byte(`
type: dynamic
fixed_rotation: true
fixtures:
  - id: body
    shape: {type: polygon, width: 0.5, height: 0.9}
`)},
	"data/rock.yaml": {Data: []byte(`
texture: rock.png
width: 256
height: 128
rows: 2
columns: 4
frame_duration: 0.1
animations:
  - {name: idle, frames: [0], mode: loop}
`)},
	"data/rock_physics.yaml": {Data: []byte(`
type: dynamic
bullet: true
fixtures:
  - id: rock
    restitution: 0.3
    shape: {type: circle, radius: 0.2}
`)},
	"data/ammo.yaml": {Data: []byte(`
texture: ammo.png
width: 256
height: 128
rows: 2
columns: 4
frame_duration: 0.1
animations:
  - {name: idle, frames: [0, 1], mode: loop_pingpong}
`)},
	"data/ammo_physics.yaml": {Data: []byte(`
type: kinematic
fixtures:
  - id: ammo
    sensor: true
    shape: {type: circle, radius: 0.3}
`)},
	"data/languages.yaml": {Data: []byte(`
languages:
  en_GB:
    menu.title: Evolution
    menu.start: Press any key
    level.start: Level start
    level.completed: Level completed
    level.gameover: Game over
    hud.ammo: "x  %d"
`)},
	"data/level1.yaml": {Data: []byte(`
name: Test Valley
width: 64
height: 24
player_start: [4, 18]
camera_start: [10, 12]
collisions:
  - {x: 32, y: 23, half_width: 32, half_height: 1}
triggers:
  - {name: levelFinish, x: 62, y: 20, half_width: 1, half_height: 3}
  - {name: fall, x: 32, y: 26, half_width: 40, half_height: 1}
enemies: [[20, 18], [40, 18]]
ammo: [[12, 17]]
`)},
}

// New builds an Env around Files, overlaid with extra.
func New(t *testing.T, extra fstest.MapFS) *Env {
	t.Helper()
	files := fstest.MapFS{}
	for k, v := range Files {
		files[k] = v
	}
	for k, v := range extra {
		files[k] = v
	}

	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)
	ids := id.NewRegistry()
	assets := asset.NewManager(files, ids, 2, log)
	t.Cleanup(assets.Close)

	fake := physicstest.NewWorld()
	cam := render.NewCamera(20, 12)
	rec := render.NewRecorder(nil)
	keys := input.NewState()
	strs, err := lang.Load(files, "data/languages.yaml", "en_GB", log)
	require.NoError(t, err)

	deps := &engine.Deps{
		IDs:            ids,
		Entities:       ecs.NewManager(64, ids, log),
		Assets:         assets,
		World:          fake,
		Renderer:       rec,
		Camera:         cam,
		Settings:       settings.New(nil, log),
		Tweens:         tween.NewManager(log),
		Input:          keys,
		Bus:            event.NewBus(),
		Formulas:       scripting.Defaults{},
		Lang:           strs,
		Log:            log,
		MetersPerPixel: 1.0 / 64,
	}
	return &Env{Deps: deps, Files: files, Fake: fake, Recorder: rec, Keys: keys, Logs: logs}
}

// Finish blocks until queued assets are loaded and fails on any error.
func (e *Env) Finish(t *testing.T) {
	t.Helper()
	require.NoError(t, e.TryFinish())
}

// TryFinish blocks until queued assets are handled.
func (e *Env) TryFinish() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return e.Assets.FinishLoading(ctx)
}

// Obtain takes an entity from the pool.
func (e *Env) Obtain(t *testing.T, typ id.ID) *ecs.Entity {
	t.Helper()
	ent, err := e.Entities.Obtain()
	require.NoError(t, err)
	ent.SetType(typ)
	return ent
}

// Body returns the fake body bound to an entity.
func (e *Env) Body(t *testing.T, ent *ecs.Entity) *physicstest.Body {
	t.Helper()
	for _, b := range e.Fake.Bodies {
		if b.UserData() == ent {
			return b
		}
	}
	require.FailNow(t, "no body for entity", ent.String())
	return nil
}
