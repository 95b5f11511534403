package anim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evogame/evolution/internal/core/id"
)

const frame = 100 * time.Millisecond

func clipOf(mode PlayMode, n int) *Clip {
	frames := make([]Region, n)
	for i := range frames {
		frames[i] = Region{Width: i}
	}
	return NewClip(id.Walk, frame, mode, frames)
}

func indices(c *Clip, steps int) []int {
	out := make([]int, steps)
	for i := range out {
		out[i] = c.FrameIndex(time.Duration(i) * frame)
	}
	return out
}

func TestFrameIndexByMode(t *testing.T) {
	tests := []struct {
		mode PlayMode
		want []int
	}{
		{Normal, []int{0, 1, 2, 3, 3, 3, 3, 3}},
		{Loop, []int{0, 1, 2, 3, 0, 1, 2, 3}},
		{LoopPingPong, []int{0, 1, 2, 3, 2, 1, 0, 1}},
		{LoopReversed, []int{3, 2, 1, 0, 3, 2, 1, 0}},
		{Reversed, []int{3, 2, 1, 0, 0, 0, 0, 0}},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, indices(clipOf(tc.mode, 4), 8), "mode %d", tc.mode)
	}
}

func TestLoopRandomStaysInRange(t *testing.T) {
	c := clipOf(LoopRandom, 3)
	for _, i := range indices(c, 50) {
		assert.GreaterOrEqual(t, i, 0)
		assert.Less(t, i, 3)
	}
}

func TestSingleFrameClips(t *testing.T) {
	for _, mode := range []PlayMode{Normal, Loop, LoopPingPong, LoopRandom, LoopReversed, Reversed} {
		assert.Equal(t, []int{0, 0, 0}, indices(clipOf(mode, 1), 3))
	}
	_, ok := clipOf(Loop, 0).KeyFrame(0)
	assert.False(t, ok)
}

func TestFinished(t *testing.T) {
	once := clipOf(Normal, 3)
	assert.False(t, once.Finished(0))
	assert.False(t, once.Finished(2*frame+frame/2))
	assert.True(t, once.Finished(3*frame))
	assert.Equal(t, 3*frame, once.Duration())

	assert.False(t, clipOf(Loop, 3).Finished(time.Hour))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("loop_pingpong")
	require.NoError(t, err)
	assert.Equal(t, LoopPingPong, m)

	m, err = ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, Normal, m)

	_, err = ParseMode("sideways")
	assert.Error(t, err)
}

func TestSetRegionsAndDefault(t *testing.T) {
	s := NewSet("caveman.png", 256, 128, 2, 4)
	r := s.Region(5)
	assert.Equal(t, Region{U: 0.25, V: 0.5, U2: 0.5, V2: 1, Width: 64, Height: 64}, r)

	idle := NewClip(id.Idle, frame, Loop, []Region{s.Region(0)})
	walk := NewClip(id.Walk, frame, Loop, []Region{s.Region(1), s.Region(2)})
	s.Add(idle)
	s.Add(walk)

	got, ok := s.Clip(id.Walk)
	assert.True(t, ok)
	assert.Same(t, walk, got)

	got, ok = s.Clip(id.Jump)
	assert.False(t, ok)
	assert.Same(t, idle, got)
	assert.Equal(t, id.Idle, s.DefaultID())
	assert.Equal(t, 2, s.Len())
}
