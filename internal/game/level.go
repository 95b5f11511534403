package game

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/asset"
	"github.com/evogame/evolution/internal/component"
	"github.com/evogame/evolution/internal/controller"
	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/physics"
)

// finishLoading places the level once every file is in: static geometry,
// triggers, enemies, ammo, then the caveman and the camera at their starts.
func (g *Play) finishLoading() error {
	d := g.Deps()
	g.FinishLoading()

	data, err := d.Assets.Level(g.level)
	if err != nil {
		return fmt.Errorf("level data: %w", err)
	}
	g.data = data

	g.loadCollisions()
	g.loadTriggers()
	for _, p := range data.Enemies {
		g.spawnEnemy(p)
	}
	for _, p := range data.Ammo {
		g.spawnAmmo(p)
	}

	if g.caveman != nil {
		place(g.caveman, mgl64.Vec3{data.PlayerStart.X(), data.PlayerStart.Y(), cavemanZ})
	}
	d.Camera.Position = mgl64.Vec3{data.CameraStart.X(), data.CameraStart.Y(), d.Camera.Position.Z()}
	return nil
}

// place moves an entity with its body parked so the body follows.
func place(e *ecs.Entity, pos mgl64.Vec3) {
	e.OnMessage(nil, id.DisablePhysics, nil)
	e.SetPosition(pos)
	e.OnMessage(nil, id.EnablePhysics, nil)
}

func (g *Play) staticBody(r asset.Rect, user any, sensor bool) physics.Body {
	d := g.Deps()
	def := physics.DefaultBodyDef()
	def.Type = physics.StaticBody
	def.Position = r.Center
	b := d.World.CreateBody(def)
	if user != nil {
		b.SetUserData(user)
	}
	fd := physics.FixtureDef{
		Shape:  physics.Box(r.HalfExtents.X(), r.HalfExtents.Y(), mgl64.Vec2{}),
		Sensor: sensor,
		Filter: physics.DefaultFilter(),
	}
	if !sensor {
		fd.Density, fd.Friction = 1, 1
	}
	b.CreateFixture(fd)
	g.bodies = append(g.bodies, b)
	return b
}

func (g *Play) loadCollisions() {
	for _, r := range g.data.Collisions {
		g.staticBody(r, nil, false)
	}
}

// loadTriggers adds sensor areas whose body user data is the trigger tag.
func (g *Play) loadTriggers() {
	for _, t := range g.data.Triggers {
		g.staticBody(t.Area, t.Tag, true)
	}
}

func (g *Play) deleteBodies() {
	d := g.Deps()
	for _, b := range g.bodies {
		d.World.DestroyBody(b)
	}
	clear(g.bodies)
	g.bodies = g.bodies[:0]
}

// build obtains an entity of typ and batches it with the components parts
// returns.
func (g *Play) build(typ id.ID, parts func(e *ecs.Entity) []ecs.Component) (*ecs.Entity, error) {
	d := g.Deps()
	e, err := d.Entities.Obtain()
	if err != nil {
		return nil, err
	}
	e.SetType(typ)
	for _, c := range parts(e) {
		if err := e.AddComponent(c); err != nil {
			_ = d.Entities.Free(e)
			return nil, err
		}
	}
	if err := e.Batch(); err != nil {
		_ = d.Entities.Free(e)
		return nil, err
	}
	return e, nil
}

func (g *Play) spawnCaveman() {
	d := g.Deps()
	var player *controller.Player
	e, err := g.build(id.Caveman, func(e *ecs.Entity) []ecs.Component {
		player = controller.NewPlayer(e, d)
		return []ecs.Component{
			component.NewAnimation(e, d, CavemanAnimation),
			component.NewPhysics(e, d, CavemanPhysics),
			player,
		}
	})
	if err != nil {
		d.Log.Error("cannot spawn caveman", zap.Error(err))
		return
	}
	player.OnThrow = func(item *ecs.Entity) { g.items = append(g.items, item) }
	g.caveman, g.player = e, player
}

func (g *Play) spawnEnemy(at mgl64.Vec2) {
	d := g.Deps()
	e, err := g.build(id.Enemy, func(e *ecs.Entity) []ecs.Component {
		return []ecs.Component{
			component.NewAnimation(e, d, EnemyAnimation),
			component.NewPhysics(e, d, EnemyPhysics),
			controller.NewEnemy(e, d),
		}
	})
	if err != nil {
		d.Log.Error("cannot spawn enemy", zap.Error(err))
		return
	}
	e.FetchAssets()
	e.OnMessage(nil, id.DisablePhysics, nil)
	e.SetPosition(mgl64.Vec3{at.X(), at.Y(), enemyZ})
	e.SetState(id.Walk)
	e.OnMessage(nil, id.EnablePhysics, nil)
	g.enemies = append(g.enemies, e)
}

func (g *Play) spawnAmmo(at mgl64.Vec2) {
	d := g.Deps()
	e, err := g.build(id.Ammo, func(e *ecs.Entity) []ecs.Component {
		return []ecs.Component{
			component.NewAnimation(e, d, AmmoAnimation),
			component.NewPhysics(e, d, AmmoPhysics),
			controller.NewAmmo(e, d),
		}
	})
	if err != nil {
		d.Log.Error("cannot spawn ammo", zap.Error(err))
		return
	}
	e.FetchAssets()
	place(e, mgl64.Vec3{at.X(), at.Y(), ammoZ})
	e.Reset()
	g.ammo = append(g.ammo, e)
}

// BeginContact ends the level when the caveman reaches the exit or falls
// off the map. Every other contact goes to the entities involved.
func (g *Play) BeginContact(c physics.Contact) {
	a, b := c.FixtureA().Body().UserData(), c.FixtureB().Body().UserData()
	if g.phase == Running && (isCaveman(a) || isCaveman(b)) {
		switch {
		case isTrigger(a, id.LevelFinish) || isTrigger(b, id.LevelFinish):
			g.enter(LevelCompleted)
			return
		case isTrigger(a, id.Fall) || isTrigger(b, id.Fall):
			g.enter(GameOver)
			return
		}
	}
	forward(a, id.BeginContact, c)
	forward(b, id.BeginContact, c)
}

func (g *Play) EndContact(c physics.Contact) {
	forward(c.FixtureA().Body().UserData(), id.EndContact, c)
	forward(c.FixtureB().Body().UserData(), id.EndContact, c)
}

func isCaveman(user any) bool {
	e, ok := user.(*ecs.Entity)
	return ok && e != nil && e.Type() == id.Caveman
}

func isTrigger(user any, tag id.ID) bool {
	t, ok := user.(id.ID)
	return ok && t == tag
}

func forward(user any, ev id.ID, c physics.Contact) {
	if e, ok := user.(*ecs.Entity); ok && e != nil {
		e.OnMessage(nil, ev, c)
	}
}
