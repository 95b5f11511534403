package system

import (
	"sort"
	"time"

	"go.uber.org/zap"
)

// Runner executes systems in phase order each frame. Systems sharing a
// phase run in registration order. With a budget set, every frame is timed
// per phase and frames over budget are logged.
type Runner struct {
	systems []System
	sorted  bool

	budget    time.Duration
	phaseTime [phaseCount]time.Duration
	frames    uint64
	slow      uint64
	now       func() time.Time
	log       *zap.Logger
}

// NewRunner returns a runner. budget 0 disables frame timing.
func NewRunner(budget time.Duration, log *zap.Logger) *Runner {
	return &Runner{
		systems: make([]System, 0, 16),
		budget:  budget,
		now:     time.Now,
		log:     log,
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

func (r *Runner) Tick(dt time.Duration) {
	r.ensureSorted()
	r.frames++
	if r.budget <= 0 {
		for _, s := range r.systems {
			s.Update(dt)
		}
		return
	}

	clear(r.phaseTime[:])
	start := r.now()
	last := start
	for _, s := range r.systems {
		s.Update(dt)
		t := r.now()
		if p := s.Phase(); p >= 0 && p < phaseCount {
			r.phaseTime[p] += t.Sub(last)
		}
		last = t
	}
	if total := last.Sub(start); total > r.budget {
		r.slow++
		slowest := r.Slowest()
		r.log.Debug("slow frame",
			zap.Uint64("frame", r.frames),
			zap.Duration("took", total),
			zap.Stringer("phase", slowest),
			zap.Duration("phase_took", r.phaseTime[slowest]))
	}
}

// PhaseTime is the time spent in phase during the last timed frame.
func (r *Runner) PhaseTime(p Phase) time.Duration {
	if p < 0 || p >= phaseCount {
		return 0
	}
	return r.phaseTime[p]
}

// Slowest returns the phase that took longest in the last timed frame.
func (r *Runner) Slowest() Phase {
	slowest := Phase(0)
	for p := Phase(1); p < phaseCount; p++ {
		if r.phaseTime[p] > r.phaseTime[slowest] {
			slowest = p
		}
	}
	return slowest
}

func (r *Runner) Len() int           { return len(r.systems) }
func (r *Runner) Frames() uint64     { return r.frames }
func (r *Runner) SlowFrames() uint64 { return r.slow }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
