package settings

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sample = `
cavemanMaxSpeed = 7.5
cavemanAmmo = 3
drawBodies = true
title = "Evolution"
cavemanThrowOffset = [1.0, -0.5, 0.0]
gravity = [0, 30]

[camera]
tweenTime = 5
`

func TestLoadAndLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.toml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	s, err := Load(path, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, path, s.Path())

	assert.Equal(t, 7.5, s.Float("cavemanMaxSpeed", 0))
	assert.Equal(t, 3, s.Int("cavemanAmmo", 0))
	assert.True(t, s.Bool("drawBodies", false))
	assert.Equal(t, "Evolution", s.String("title", ""))
	assert.Equal(t, mgl64.Vec3{1, -0.5, 0}, s.Vector("cavemanThrowOffset", mgl64.Vec3{}))
	assert.Equal(t, mgl64.Vec3{0, 30, 0}, s.Vector("gravity", mgl64.Vec3{}))
	assert.Equal(t, 5.0, s.Float("camera.tweenTime", 0), "ints widen to floats")
}

func TestDefaults(t *testing.T) {
	s := New(map[string]any{"speed": "fast", "ammo": 1.5}, zap.NewNop())

	assert.Equal(t, 4.0, s.Float("missing", 4))
	assert.Equal(t, 2.0, s.Float("speed", 2), "type mismatch falls back")
	assert.Equal(t, 9, s.Int("ammo", 9))
	assert.False(t, s.Bool("speed", false))
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, s.Vector("speed", mgl64.Vec3{1, 2, 3}))

	s.Set("speed", 12.0)
	assert.Equal(t, 12.0, s.Float("speed", 0))
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"), zap.NewNop())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
