package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/asset"
	"github.com/evogame/evolution/internal/controller"
	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/event"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/input"
	"github.com/evogame/evolution/internal/physics"
	"github.com/evogame/evolution/internal/scripting"
	"github.com/evogame/evolution/internal/state"
	"github.com/evogame/evolution/internal/tween"
)

// Phase is where the level is in its start, play, end cycle.
type Phase int

const (
	Loading Phase = iota
	LevelStart
	Running
	LevelCompleted
	GameOver
	ResetLevel
)

var phaseNames = [...]string{"loading", "level_start", "running", "level_completed", "game_over", "reset_level"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "phase(?)"
}

// Data files of the level's actors.
const (
	CavemanAnimation = "data/caveman.yaml"
	CavemanPhysics   = "data/caveman_physics.yaml"
	EnemyAnimation   = "data/enemy.yaml"
	EnemyPhysics     = "data/enemy_physics.yaml"
	AmmoAnimation    = "data/ammo.yaml"
	AmmoPhysics      = "data/ammo_physics.yaml"
)

// Depth of each actor kind; higher is drawn first.
const (
	cavemanZ = 11
	enemyZ   = 12
	ammoZ    = 5
)

// Holding DOWN lowers the camera by this much to look below the player.
const lookDown = 5

type assetRef struct {
	path string
	kind asset.Kind
}

// Play runs one level: load, title, play until the player reaches the
// exit or dies, then back to the menu or a restart.
type Play struct {
	state.Base
	states *state.Manager

	level          string
	titleTime      time.Duration
	cameraTime     time.Duration
	cameraOffsetY  float64
	cameraRetarget float64
	ammoTextPos    mgl64.Vec3
	titlePos       mgl64.Vec3

	phase        Phase
	titleCounter time.Duration
	elapsed      time.Duration
	data         *asset.LevelData

	caveman *ecs.Entity
	player  *controller.Player
	enemies []*ecs.Entity
	items   []*ecs.Entity
	ammo    []*ecs.Entity
	bodies  []physics.Body

	cameraTween *tween.Tween
	cameraGoal  mgl64.Vec2
}

var _ physics.ContactListener = (*Play)(nil)

func NewPlay(deps *engine.Deps, states *state.Manager) *Play {
	s := deps.Settings
	return &Play{
		Base:           state.NewBase(PlayName, deps),
		states:         states,
		level:          s.String("level", "data/level1.yaml"),
		titleTime:      seconds(s.Float("titleTime", 1.5)),
		cameraTime:     seconds(s.Float("cameraTweenTime", 5)),
		cameraOffsetY:  s.Float("cameraOffsetY", -3),
		cameraRetarget: s.Float("cameraRetargetDistance", 0.5),
		ammoTextPos:    s.Vector("ammoHUDTextPos", mgl64.Vec3{1, 0, 0}),
		titlePos:       s.Vector("titleTextPos", mgl64.Vec3{2, 2, 0}),
	}
}

func (g *Play) Phase() Phase               { return g.phase }
func (g *Play) Caveman() *ecs.Entity       { return g.caveman }
func (g *Play) Player() *controller.Player { return g.player }
func (g *Play) Level() *asset.LevelData    { return g.data }
func (g *Play) Elapsed() time.Duration     { return g.elapsed }
func (g *Play) Enemies() []*ecs.Entity     { return g.enemies }
func (g *Play) Items() []*ecs.Entity       { return g.items }
func (g *Play) AmmoPickups() []*ecs.Entity { return g.ammo }
func (g *Play) CameraTween() *tween.Tween  { return g.cameraTween }

func (g *Play) levelAssets() []assetRef {
	return []assetRef{
		{g.level, asset.KindLevel},
		{EnemyAnimation, asset.KindAnimation},
		{EnemyPhysics, asset.KindPhysics},
		{controller.RockAnimation, asset.KindAnimation},
		{controller.RockPhysics, asset.KindPhysics},
		{AmmoAnimation, asset.KindAnimation},
		{AmmoPhysics, asset.KindPhysics},
	}
}

// Load queues the level files and builds the caveman. The level itself is
// placed once loading finishes.
func (g *Play) Load() {
	g.Base.Load()
	d := g.Deps()
	for _, a := range g.levelAssets() {
		d.Assets.Load(a.path, a.kind)
	}
	g.spawnCaveman()
	d.World.SetContactListener(g)

	g.phase = Loading
	g.titleCounter = g.titleTime
	g.elapsed = 0
}

func (g *Play) Dispose() {
	g.Base.Dispose()
	d := g.Deps()
	for _, a := range g.levelAssets() {
		d.Assets.Unload(a.path)
	}
	g.data = nil

	d.Tweens.KillTarget(d.Camera)
	g.cameraTween = nil

	for _, list := range []*[]*ecs.Entity{&g.enemies, &g.items, &g.ammo} {
		if err := d.Entities.FreeAll(list); err != nil {
			d.Log.Error("free level entities", zap.Error(err))
		}
	}
	if g.caveman != nil {
		if err := d.Entities.Free(g.caveman); err != nil {
			d.Log.Error("free caveman", zap.Error(err))
		}
		g.caveman, g.player = nil, nil
	}
	g.deleteBodies()
}

func (g *Play) Update(dt time.Duration) {
	switch g.phase {
	case Loading:
		g.updateLoading()
	case LevelStart:
		g.updateTitle(dt, "level.start", Running)
	case Running:
		g.updateRunning(dt)
	case LevelCompleted:
		if g.updateTitle(dt, "level.completed", LevelCompleted) {
			g.states.Change(MenuName)
		}
	case GameOver:
		g.updateTitle(dt, "level.gameover", ResetLevel)
	case ResetLevel:
		d := g.Deps()
		d.Log.Info("resetting level", zap.String("level", g.level))
		g.Dispose()
		// Anything the level lists no longer hold, queued removals included.
		d.Entities.Clear()
		g.Load()
	}
}

func (g *Play) updateLoading() {
	d := g.Deps()
	if !d.Assets.Update() {
		return
	}
	if err := g.finishLoading(); err != nil {
		d.Log.Error("level failed to load", zap.String("level", g.level), zap.Error(err))
		g.states.Change(MenuName)
		return
	}
	d.Log.Info("level loaded", zap.String("level", g.level), zap.String("name", g.data.Name))
	g.enter(LevelStart)
}

// updateTitle shows a title card and moves to next when it times out. It
// reports whether the card timed out this frame.
func (g *Play) updateTitle(dt time.Duration, key string, next Phase) bool {
	d := g.Deps()
	g.titleCounter -= dt
	drawText(d, g.titlePos, d.Lang.Get(key))
	if g.titleCounter >= 0 {
		return false
	}
	g.titleCounter = g.titleTime
	g.enter(next)
	return true
}

func (g *Play) updateRunning(dt time.Duration) {
	d := g.Deps()
	g.elapsed += dt
	g.updateCamera()

	if d.Input.Pressed(input.KeySpace) && g.player != nil {
		g.player.ThrowItem()
	}

	d.Entities.Update(dt)

	if g.player != nil {
		drawText(d, g.ammoTextPos, d.Lang.Format("hud.ammo", g.player.Ammo()))
	}

	g.reclaim(&g.enemies)
	g.reclaim(&g.items)
	g.reclaim(&g.ammo)
}

// enter switches phase. Leaving Running reports the run.
func (g *Play) enter(p Phase) {
	if g.phase == p {
		return
	}
	g.Deps().Log.Info("level phase", zap.Stringer("from", g.phase), zap.Stringer("to", p))
	g.phase = p
	g.titleCounter = g.titleTime
	switch p {
	case LevelCompleted:
		g.report(true)
	case GameOver:
		g.report(false)
	}
}

func (g *Play) report(completed bool) {
	d := g.Deps()
	out := event.LevelOutcome{
		Level:     g.level,
		Completed: completed,
		Seconds:   g.elapsed.Seconds(),
	}
	if g.player != nil {
		out.Ammo = g.player.Ammo()
	}
	out.Score = d.Formulas.LevelScore(scripting.ScoreContext{
		Completed: out.Completed,
		Seconds:   out.Seconds,
		Ammo:      out.Ammo,
	})
	d.Bus.Emit(event.LevelFinished(out))
}

// reclaim drops the erased entities of list, keeping order, and queues them
// for the cleanup phase.
func (g *Play) reclaim(list *[]*ecs.Entity) {
	d := g.Deps()
	kept := (*list)[:0]
	for _, e := range *list {
		if e.State() != id.Erase {
			kept = append(kept, e)
			continue
		}
		d.Entities.MarkForRemoval(e)
	}
	clear((*list)[len(kept):])
	*list = kept
}

// updateCamera eases the camera towards the player, kept inside the level.
// A running tween is only replaced when the goal moved noticeably.
func (g *Play) updateCamera() {
	d := g.Deps()
	if g.caveman == nil || g.data == nil {
		return
	}
	pos := g.caveman.Position2D()
	offset := g.cameraOffsetY
	if d.Input.Pressed(input.KeyDown) {
		offset += lookDown
	}
	goal := d.Camera.Clamp(mgl64.Vec2{pos.X(), pos.Y() + offset}, g.data.Size)

	if g.cameraTween != nil {
		moved := goal.Sub(g.cameraGoal).Len()
		if moved == 0 || (!g.cameraTween.Finished() && moved <= g.cameraRetarget) {
			return
		}
	}
	d.Tweens.KillTarget(d.Camera)
	g.cameraGoal = goal
	g.cameraTween = d.Tweens.To(d.Camera, tween.CameraPosition{C: d.Camera},
		mgl64.Vec3{goal.X(), goal.Y(), d.Camera.Position.Z()}, g.cameraTime, ease.InQuad)
}

// OnEvent ends the run when the player dies.
func (g *Play) OnEvent(ev event.Event) {
	if ev.Type == id.PlayerDeath && g.phase == Running {
		g.enter(GameOver)
	}
}

func (g *Play) KeyDown(k input.Key) {
	if k == input.KeyEscape {
		g.states.Change(MenuName)
	}
}
