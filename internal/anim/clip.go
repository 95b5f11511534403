// Package anim models sprite-sheet animation clips: a frame list, a frame
// duration and a play mode.
package anim

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/evogame/evolution/internal/core/id"
)

type PlayMode int

const (
	Normal PlayMode = iota
	Loop
	LoopPingPong
	LoopRandom
	LoopReversed
	Reversed
)

var modeNames = map[string]PlayMode{
	"normal":        Normal,
	"loop":          Loop,
	"loop_pingpong": LoopPingPong,
	"loop_random":   LoopRandom,
	"loop_reversed": LoopReversed,
	"reversed":      Reversed,
}

// ParseMode maps asset file names to play modes. Unknown names play once.
func ParseMode(s string) (PlayMode, error) {
	if s == "" {
		return Normal, nil
	}
	m, ok := modeNames[s]
	if !ok {
		return Normal, fmt.Errorf("unknown play mode %q", s)
	}
	return m, nil
}

// Looping reports whether the clip never finishes.
func (m PlayMode) Looping() bool {
	return m != Normal && m != Reversed
}

// Region is a frame's rectangle in texture space. UVs are normalized.
type Region struct {
	U, V, U2, V2  float32
	Width, Height int
}

type Clip struct {
	ID            id.ID
	Frames        []Region
	FrameDuration time.Duration
	Mode          PlayMode

	rng *rand.Rand
}

func NewClip(clipID id.ID, frameDuration time.Duration, mode PlayMode, frames []Region) *Clip {
	return &Clip{
		ID:            clipID,
		Frames:        frames,
		FrameDuration: frameDuration,
		Mode:          mode,
		rng:           rand.New(rand.NewPCG(uint64(clipID), uint64(len(frames)))),
	}
}

func (c *Clip) frameNumber(t time.Duration) int {
	if c.FrameDuration <= 0 {
		return 0
	}
	return int(t / c.FrameDuration)
}

// FrameIndex returns the frame shown at time t into the clip.
func (c *Clip) FrameIndex(t time.Duration) int {
	n := len(c.Frames)
	if n <= 1 {
		return 0
	}
	f := c.frameNumber(t)
	switch c.Mode {
	case Loop:
		return f % n
	case LoopPingPong:
		f %= n*2 - 2
		if f >= n {
			f = n - 2 - (f - n)
		}
		return f
	case LoopRandom:
		return c.rng.IntN(n)
	case LoopReversed:
		return n - f%n - 1
	case Reversed:
		return max(n-f-1, 0)
	default:
		return min(n-1, f)
	}
}

// KeyFrame returns the region shown at time t.
func (c *Clip) KeyFrame(t time.Duration) (Region, bool) {
	if len(c.Frames) == 0 {
		return Region{}, false
	}
	return c.Frames[c.FrameIndex(t)], true
}

// Finished reports whether a one-shot clip has played past its last frame.
// Looping clips never finish.
func (c *Clip) Finished(t time.Duration) bool {
	if c.Mode.Looping() {
		return false
	}
	return len(c.Frames)-1 < c.frameNumber(t)
}

// Duration is the time one pass through the frames takes.
func (c *Clip) Duration() time.Duration {
	return c.FrameDuration * time.Duration(len(c.Frames))
}
