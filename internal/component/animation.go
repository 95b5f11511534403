// Package component holds the engine components shared by every game
// entity: sprite animation and rigid-body physics.
package component

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/anim"
	"github.com/evogame/evolution/internal/asset"
	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/render"
)

const (
	AnimationName     = "AnimationComponent"
	AnimationPriority = 5
)

// Animation plays the clip matching the entity state and submits the
// current frame as a textured quad.
type Animation struct {
	ecs.Base
	deps *engine.Deps
	path string

	set      *anim.Set
	clip     *anim.Clip
	clipID   id.ID
	time     time.Duration
	playing  bool
	finished bool
	warned   bool

	flipX, flipY bool
	color        render.Color
	region       anim.Region
	vertices     [render.SpriteSize]float32

	// transform the vertices were computed for
	position mgl64.Vec3
	rotation float64
	scale    float64
	dirty    bool
}

// NewAnimation queues the animation asset at path for loading. The clips
// are picked up in FetchAssets.
func NewAnimation(e *ecs.Entity, deps *engine.Deps, path string) *Animation {
	a := &Animation{
		Base:    ecs.NewBase(e, AnimationName, AnimationPriority),
		deps:    deps,
		path:    path,
		playing: true,
		flipY:   true,
		dirty:   true,
	}
	a.SetColor(render.White)
	deps.Assets.Load(path, asset.KindAnimation)
	return a
}

func (a *Animation) Path() string                        { return a.path }
func (a *Animation) Set() *anim.Set                      { return a.set }
func (a *Animation) ClipID() id.ID                       { return a.clipID }
func (a *Animation) Time() time.Duration                 { return a.time }
func (a *Animation) Color() render.Color                 { return a.color }
func (a *Animation) Vertices() []float32                 { return a.vertices[:] }
func (a *Animation) FlipX() bool                         { return a.flipX }
func (a *Animation) FlipY() bool                         { return a.flipY }
func (a *Animation) Playing() bool                       { return a.playing }
func (a *Animation) SetPlaying(playing bool)             { a.playing = playing }
func (a *Animation) Dependencies() []id.ID               { return nil }
func (a *Animation) OnMessage(ecs.Component, id.ID, any) {}

// Size is the current frame's size in world units.
func (a *Animation) Size() mgl64.Vec2 {
	return mgl64.Vec2{float64(a.region.Width), float64(a.region.Height)}.Mul(a.worldScale())
}

func (a *Animation) SetColor(c render.Color) {
	a.color = c
	packed := c.Pack()
	a.vertices[render.C1] = packed
	a.vertices[render.C2] = packed
	a.vertices[render.C3] = packed
	a.vertices[render.C4] = packed
}

// Flip mirrors the sprite. Y is flipped by default for the y-down world.
func (a *Animation) Flip(x, y bool) {
	a.flipX = x
	a.flipY = y
	a.setRegion(a.region)
}

func (a *Animation) FetchAssets() {
	set, err := a.deps.Assets.Animation(a.path)
	if err != nil {
		a.deps.Log.Error("animation not available", zap.String("file", a.path), zap.Error(err))
		return
	}
	a.set = set
	e := a.Entity()
	if e == nil {
		return
	}
	a.selectClip(e.State())
	if a.clip != nil {
		if r, ok := a.clip.KeyFrame(a.time); ok {
			a.setRegion(r)
		}
	}
}

func (a *Animation) Update(dt time.Duration) {
	e := a.Entity()
	if e == nil {
		return
	}
	if a.set == nil {
		if !a.warned {
			a.deps.Log.Error("trying to draw without animation data",
				zap.String("file", a.path), zap.Stringer("entity", e))
			a.warned = true
		}
		return
	}
	if st := e.State(); st != a.clipID {
		a.selectClip(st)
		a.time = 0
	}
	a.advance(e, dt)
	a.applyTransform(e)
	a.computeVertices()
	a.draw()
}

// Reset restores the default facing.
func (a *Animation) Reset() {
	a.Flip(false, true)
}

func (a *Animation) Dispose() {
	a.deps.Assets.Unload(a.path)
	a.set = nil
	a.clip = nil
	a.clipID = id.Invalid
	a.time = 0
	a.Reset()
}

func (a *Animation) selectClip(state id.ID) {
	a.clipID = state
	a.clip, _ = a.set.Clip(state)
	a.finished = false
}

func (a *Animation) advance(e *ecs.Entity, dt time.Duration) {
	if a.clip == nil || !a.playing {
		return
	}
	a.time += dt
	if r, ok := a.clip.KeyFrame(a.time); ok {
		a.setRegion(r)
	}
	if !a.finished && a.clip.Finished(a.time) {
		a.finished = true
		e.OnMessage(a, id.AnimationFinished, a.clipID)
	}
}

func (a *Animation) worldScale() float64 {
	e := a.Entity()
	if e == nil {
		return a.deps.MetersPerPixel
	}
	return e.Scale() * a.deps.MetersPerPixel
}

func (a *Animation) applyTransform(e *ecs.Entity) {
	pos, rot, scale := e.Position(), e.Rotation(), a.worldScale()
	if pos != a.position || rot != a.rotation || scale != a.scale {
		a.position = pos
		a.rotation = rot
		a.scale = scale
		a.dirty = true
	}
}

// setRegion writes the frame's UVs, honouring the flips.
func (a *Animation) setRegion(r anim.Region) {
	if r.Width != a.region.Width || r.Height != a.region.Height {
		a.dirty = true
	}
	a.region = r

	u, u2 := r.U, r.U2
	if a.flipX {
		u, u2 = u2, u
	}
	v, v2 := r.V, r.V2
	if a.flipY {
		v, v2 = v2, v
	}
	a.vertices[render.U1], a.vertices[render.V1] = u, v2
	a.vertices[render.U2], a.vertices[render.V2] = u, v
	a.vertices[render.U3], a.vertices[render.V3] = u2, v
	a.vertices[render.U4], a.vertices[render.V4] = u2, v2
}

func (a *Animation) computeVertices() {
	if !a.dirty {
		return
	}
	a.dirty = false

	w, h := float64(a.region.Width), float64(a.region.Height)
	x1, y1 := -w/2*a.scale, -h/2*a.scale
	x2, y2 := w/2*a.scale, h/2*a.scale
	px, py := a.position.X(), a.position.Y()

	v := &a.vertices
	if a.rotation == 0 {
		v[render.X1], v[render.Y1] = float32(x1+px), float32(y1+py)
		v[render.X2], v[render.Y2] = float32(x1+px), float32(y2+py)
		v[render.X3], v[render.Y3] = float32(x2+px), float32(y2+py)
		v[render.X4], v[render.Y4] = float32(x2+px), float32(y1+py)
		return
	}

	sin, cos := math.Sincos(mgl64.DegToRad(a.rotation))
	corner := func(x, y float64) (float32, float32) {
		return float32(x*cos - y*sin + px), float32(x*sin + y*cos + py)
	}
	v[render.X1], v[render.Y1] = corner(x1, y1)
	v[render.X2], v[render.Y2] = corner(x1, y2)
	v[render.X3], v[render.Y3] = corner(x2, y2)
	v[render.X4], v[render.Y4] = corner(x2, y1)
}

func (a *Animation) bbox() render.BBox {
	half := mgl64.Vec3{float64(a.region.Width) * a.scale / 2, float64(a.region.Height) * a.scale / 2, 0}
	return render.BBox{Min: a.position.Sub(half), Max: a.position.Add(half)}
}

func (a *Animation) draw() {
	r := a.deps.Renderer
	if r == nil || !r.InFrustum(a.bbox()) {
		return
	}
	r.Draw(a.set.Texture, a.vertices[:])
}
