package system

import "time"

// Clock turns wall time into whole fixed steps. Time beyond maxFrame in a
// single advance is dropped so a stall does not cause a burst of steps.
type Clock struct {
	step     time.Duration
	maxFrame time.Duration
	acc      time.Duration
	steps    uint64
}

func NewClock(step, maxFrame time.Duration) *Clock {
	if maxFrame < step {
		maxFrame = step
	}
	return &Clock{step: step, maxFrame: maxFrame}
}

func (c *Clock) Step() time.Duration { return c.step }
func (c *Clock) Steps() uint64       { return c.steps }

// Advance adds elapsed wall time and returns how many steps are due.
func (c *Clock) Advance(elapsed time.Duration) int {
	if elapsed < 0 {
		elapsed = 0
	}
	c.acc += min(elapsed, c.maxFrame)
	n := int(c.acc / c.step)
	c.acc -= time.Duration(n) * c.step
	c.steps += uint64(n)
	return n
}

// Alpha is the fraction of a step left over, for interpolating a render.
func (c *Clock) Alpha() float64 {
	return float64(c.acc) / float64(c.step)
}
