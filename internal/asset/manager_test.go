package asset

import (
	"context"
	"testing"
	"testing/fstest"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/anim"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/physics"
)

const cavemanYAML = `
texture: caveman.png
width: 256
height: 128
rows: 2
columns: 4
frame_duration: 0.1
animations:
  - name: idle
    frames: [0]
    mode: loop
  - name: walk
    frames: [1, 2, 3]
    mode: loop
  - name: die
    frames: [4, 5]
`

const cavemanPhysicsYAML = `
type: dynamic
fixed_rotation: true
mass: {mass: 2}
fixtures:
  - id: body
    friction: 0.8
    shape: {type: polygon, width: 0.5, height: 1}
  - id: foot
    sensor: true
    shape: {type: circle, center_y: 1, radius: 0.4}
    filter: {category_bits: 2, mask_bits: 1}
`

const levelYAML = `
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
`

func newTestManager(t *testing.T, files fstest.MapFS) (*Manager, *id.Registry) {
	t.Helper()
	ids := id.NewRegistry()
	m := NewManager(files, ids, 2, zap.NewNop())
	t.Cleanup(m.Close)
	return m, ids
}

func finish(t *testing.T, m *Manager) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.FinishLoading(ctx)
}

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"data/caveman.yaml":         {Data: []byte(cavemanYAML)},
		"data/caveman_physics.yaml": {Data: []byte(cavemanPhysicsYAML)},
		"data/level1.yaml":          {Data: []byte(levelYAML)},
		"data/broken.yaml":          {Data: []byte("texture: [oops")},
	}
}

func TestLoadAnimation(t *testing.T) {
	m, ids := newTestManager(t, testFS())
	m.Load("data/caveman.yaml", KindAnimation)
	require.NoError(t, finish(t, m))

	set, err := m.Animation("data/caveman.yaml")
	require.NoError(t, err)
	assert.Equal(t, "caveman.png", set.Texture)
	assert.Equal(t, 3, set.Len())
	assert.Equal(t, id.Idle, set.DefaultID())

	walk, ok := set.Clip(id.Walk)
	require.True(t, ok)
	assert.Equal(t, anim.Loop, walk.Mode)
	assert.Equal(t, 100*time.Millisecond, walk.FrameDuration)
	assert.Len(t, walk.Frames, 3)

	die, ok := set.Clip(ids.Intern("die"))
	require.True(t, ok)
	assert.Equal(t, anim.Normal, die.Mode)
}

func TestLoadPhysics(t *testing.T) {
	m, _ := newTestManager(t, testFS())
	m.Load("data/caveman_physics.yaml", KindPhysics)
	require.NoError(t, finish(t, m))

	d, err := m.Physics("data/caveman_physics.yaml")
	require.NoError(t, err)
	assert.Equal(t, physics.DynamicBody, d.Body.Type)
	assert.True(t, d.Body.Active)
	assert.True(t, d.Body.FixedRotation)
	assert.Equal(t, 2.0, d.Mass.Mass)
	require.Len(t, d.Fixtures, 2)

	body, foot := d.Fixtures[0], d.Fixtures[1]
	assert.Equal(t, 0.8, body.Friction)
	assert.Equal(t, 1.0, body.Density, "density defaults to 1")
	assert.Equal(t, physics.ShapeBox, body.Shape.Kind)
	assert.Equal(t, mgl64.Vec2{0.5, 1}, body.Shape.HalfExtents)
	assert.Equal(t, physics.DefaultFilter(), body.Filter)

	assert.Equal(t, id.Foot, foot.Tag)
	assert.True(t, foot.Sensor)
	assert.Equal(t, 1.0, foot.Friction, "friction defaults to 1")
	assert.Equal(t, physics.Circle(0.4, mgl64.Vec2{0, 1}), foot.Shape)
	assert.Equal(t, physics.Filter{CategoryBits: 2, MaskBits: 1}, foot.Filter)
}

func TestLoadLevel(t *testing.T) {
	m, _ := newTestManager(t, testFS())
	m.Load("data/level1.yaml", KindLevel)
	require.NoError(t, finish(t, m))

	lvl, err := m.Level("data/level1.yaml")
	require.NoError(t, err)
	assert.Equal(t, "Test Valley", lvl.Name)
	assert.Equal(t, mgl64.Vec2{64, 24}, lvl.Size)
	assert.Equal(t, mgl64.Vec2{4, 18}, lvl.PlayerStart)
	assert.Equal(t, []mgl64.Vec2{{20, 18}, {40, 18}}, lvl.Enemies)
	require.Len(t, lvl.Triggers, 2)
	assert.Equal(t, id.LevelFinish, lvl.Triggers[0].Tag)
	assert.Equal(t, id.Fall, lvl.Triggers[1].Tag)
	assert.Equal(t, Rect{Center: mgl64.Vec2{32, 23}, HalfExtents: mgl64.Vec2{32, 1}}, lvl.Collisions[0])
}

func TestUpdateHandsOffWithoutBlocking(t *testing.T) {
	m, _ := newTestManager(t, testFS())
	assert.True(t, m.Update(), "idle manager is done")

	m.Load("data/caveman.yaml", KindAnimation)
	m.Load("data/level1.yaml", KindLevel)
	assert.False(t, m.Loaded("data/caveman.yaml"))

	assert.Eventually(t, m.Update, 5*time.Second, time.Millisecond)
	assert.True(t, m.Loaded("data/caveman.yaml"))
	assert.True(t, m.Loaded("data/level1.yaml"))
}

func TestReferenceCounting(t *testing.T) {
	m, _ := newTestManager(t, testFS())
	m.Load("data/caveman.yaml", KindAnimation)
	m.Load("data/caveman.yaml", KindAnimation)
	assert.Equal(t, 2, m.RefCount("data/caveman.yaml"))
	require.NoError(t, finish(t, m))

	m.Unload("data/caveman.yaml")
	assert.True(t, m.Loaded("data/caveman.yaml"))
	m.Unload("data/caveman.yaml")
	assert.False(t, m.Loaded("data/caveman.yaml"))
	assert.Zero(t, m.RefCount("data/caveman.yaml"))

	_, err := m.Animation("data/caveman.yaml")
	assert.ErrorIs(t, err, ErrNotLoaded)
	assert.NotPanics(t, func() { m.Unload("data/caveman.yaml") })
}

func TestUnloadBeforeHandOffDropsResult(t *testing.T) {
	m, _ := newTestManager(t, testFS())
	m.Load("data/level1.yaml", KindLevel)
	m.Update() // starts the batch
	m.Unload("data/level1.yaml")
	require.NoError(t, finish(t, m))
	assert.False(t, m.Loaded("data/level1.yaml"))
}

func TestFailuresAreIsolated(t *testing.T) {
	m, _ := newTestManager(t, testFS())
	m.Load("data/broken.yaml", KindAnimation)
	m.Load("data/missing.yaml", KindPhysics)
	m.Load("data/caveman.yaml", KindAnimation)

	err := finish(t, m)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "data/broken.yaml")
	assert.Contains(t, err.Error(), "data/missing.yaml")
	assert.True(t, m.Loaded("data/caveman.yaml"))
	assert.Error(t, m.Err("data/broken.yaml"))

	// A failed asset is retried on the next Load.
	m.Load("data/broken.yaml", KindAnimation)
	assert.Error(t, finish(t, m))
	assert.Equal(t, 2, m.RefCount("data/broken.yaml"))
}

func TestKindMismatch(t *testing.T) {
	m, _ := newTestManager(t, testFS())
	m.Load("data/caveman.yaml", KindAnimation)
	m.Load("data/caveman.yaml", KindPhysics)
	assert.Equal(t, 1, m.RefCount("data/caveman.yaml"))
	require.NoError(t, finish(t, m))

	_, err := m.Physics("data/caveman.yaml")
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestFinishLoadingHonoursContext(t *testing.T) {
	m, _ := newTestManager(t, testFS())
	m.Load("data/level1.yaml", KindLevel)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.FinishLoading(ctx)
	// The batch may already be done; either way no hang.
	if err != nil {
		assert.ErrorIs(t, err, context.Canceled)
	}
}

func TestDecodeValidation(t *testing.T) {
	ids := id.NewRegistry()
	_, err := (&AnimationLoader{ids: ids}).Decode("x", []byte("texture: a.png\nwidth: 10\nheight: 10\nrows: 1\ncolumns: 1\nanimations: [{name: a, frames: [3]}]"))
	assert.ErrorContains(t, err, "outside")

	_, err = (&PhysicsLoader{ids: ids}).Decode("x", []byte("type: wobbly\nfixtures: [{shape: {type: circle}}]"))
	assert.ErrorContains(t, err, "unknown body type")

	_, err = (&PhysicsLoader{ids: ids}).Decode("x", []byte("fixtures: [{id: a}]"))
	assert.ErrorContains(t, err, "no shape")

	_, err = (&LevelLoader{ids: ids}).Decode("x", []byte("width: 10\nheight: 10\nplayer_start: [1]\ncamera_start: [1, 2]"))
	assert.ErrorContains(t, err, "player_start")
}
