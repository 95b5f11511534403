// Package tween animates entity and camera properties over time. Progress
// and easing come from gween; values are interpolated as mgl64 vectors.
package tween

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// Forever repeats a tween until it is killed.
const Forever = -1

// Accessor reads and writes the animated property.
type Accessor interface {
	Get() mgl64.Vec3
	Set(v mgl64.Vec3)
}

// Tween moves an accessor from its value at start to a target.
type Tween struct {
	target any
	acc    Accessor
	to     mgl64.Vec3
	dur    float32
	easing ease.TweenFunc

	delay   time.Duration
	repeats int
	yoyo    bool

	from     mgl64.Vec3
	progress *gween.Tween
	started  bool
	reversed bool
	done     bool
	killed   bool
}

// Delay postpones the start. The start value is captured when the delay
// ends.
func (t *Tween) Delay(d time.Duration) *Tween {
	t.delay = d
	return t
}

// Repeat runs the tween n more times, or Forever. With yoyo every other
// run plays backwards.
func (t *Tween) Repeat(n int, yoyo bool) *Tween {
	t.repeats = n
	t.yoyo = yoyo
	return t
}

func (t *Tween) Kill()             { t.killed = true }
func (t *Tween) Finished() bool    { return t.done || t.killed }
func (t *Tween) Target() any       { return t.target }
func (t *Tween) Value() mgl64.Vec3 { return t.acc.Get() }

func (t *Tween) update(dt time.Duration) {
	if t.Finished() {
		return
	}
	if t.delay > 0 {
		t.delay -= dt
		if t.delay > 0 {
			return
		}
		dt = -t.delay
		t.delay = 0
	}
	if !t.started {
		t.from = t.acc.Get()
		t.progress = gween.New(0, 1, t.dur, t.easing)
		t.started = true
	}
	p, finished := t.progress.Update(float32(dt.Seconds()))
	t.apply(p)
	if !finished {
		return
	}
	if t.repeats == 0 {
		t.done = true
		return
	}
	if t.repeats > 0 {
		t.repeats--
	}
	if t.yoyo {
		t.reversed = !t.reversed
	} else {
		t.acc.Set(t.from)
	}
	t.progress.Reset()
}

func (t *Tween) apply(p float32) {
	from, to := t.from, t.to
	if t.reversed {
		from, to = to, from
	}
	t.acc.Set(from.Add(to.Sub(from).Mul(float64(p))))
}

// Manager owns running tweens and advances them once per frame.
type Manager struct {
	tweens []*Tween
	log    *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{log: log}
}

// To starts a tween of acc towards to. target groups tweens for KillTarget.
func (m *Manager) To(target any, acc Accessor, to mgl64.Vec3, d time.Duration, easing ease.TweenFunc) *Tween {
	if easing == nil {
		easing = ease.Linear
	}
	t := &Tween{target: target, acc: acc, to: to, dur: float32(d.Seconds()), easing: easing}
	m.tweens = append(m.tweens, t)
	return t
}

// Update advances every tween and drops finished ones.
func (m *Manager) Update(dt time.Duration) {
	n := len(m.tweens)
	for i := 0; i < n; i++ {
		m.tweens[i].update(dt)
	}
	live := m.tweens[:0]
	for _, t := range m.tweens {
		if !t.Finished() {
			live = append(live, t)
		}
	}
	clear(m.tweens[len(live):])
	m.tweens = live
}

// KillTarget stops every tween started for target.
func (m *Manager) KillTarget(target any) int {
	killed := 0
	for _, t := range m.tweens {
		if t.target == target && !t.Finished() {
			t.Kill()
			killed++
		}
	}
	if killed > 0 {
		m.log.Debug("tweens killed", zap.Int("count", killed))
	}
	return killed
}

func (m *Manager) KillAll() {
	for _, t := range m.tweens {
		t.Kill()
	}
	m.tweens = m.tweens[:0]
}

// Running reports whether target has a live tween.
func (m *Manager) Running(target any) bool {
	for _, t := range m.tweens {
		if t.target == target && !t.Finished() {
			return true
		}
	}
	return false
}

func (m *Manager) Len() int { return len(m.tweens) }
