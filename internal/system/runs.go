package system

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/core/event"
	"github.com/evogame/evolution/internal/core/id"
	coresys "github.com/evogame/evolution/internal/core/system"
	"github.com/evogame/evolution/internal/persist"
)

// RunStore persists finished runs. *persist.RunRepo implements it.
type RunStore interface {
	SaveRuns(ctx context.Context, runs []persist.Run) error
}

var _ RunStore = (*persist.RunRepo)(nil)

// RunRecorder collects level outcomes from the bus and writes them every
// interval frames. Phase 6 (Persist).
type RunRecorder struct {
	store     RunStore // nil: outcomes are only logged
	session   uuid.UUID
	pending   []persist.Run
	log       *zap.Logger
	now       func() time.Time
	tickCount int
	interval  int
}

func NewRunRecorder(bus *event.Bus, store RunStore, log *zap.Logger, intervalTicks int) *RunRecorder {
	s := &RunRecorder{
		store:    store,
		session:  uuid.New(),
		log:      log,
		now:      time.Now,
		interval: max(intervalTicks, 1),
	}
	bus.Subscribe(id.LevelFinish, s.record)
	log.Info("play session", zap.Stringer("session", s.session), zap.Bool("recording", store != nil))
	return s
}

func (s *RunRecorder) Session() uuid.UUID { return s.session }
func (s *RunRecorder) Pending() int       { return len(s.pending) }

func (s *RunRecorder) Phase() coresys.Phase { return coresys.PhasePersist }

func (s *RunRecorder) Update(_ time.Duration) {
	s.tickCount++
	if s.tickCount < s.interval {
		return
	}
	s.tickCount = 0
	s.Flush()
}

func (s *RunRecorder) record(ev event.Event) {
	o, ok := ev.Payload.(event.LevelOutcome)
	if !ok {
		s.log.Error("level outcome without payload")
		return
	}
	run := persist.NewRun(s.session, o, s.now())
	s.log.Info("run finished",
		zap.String("level", run.Level), zap.Bool("completed", run.Completed),
		zap.Float64("seconds", run.Seconds), zap.Int("ammo", run.Ammo), zap.Int("score", run.Score))
	if s.store != nil {
		s.pending = append(s.pending, run)
	}
}

// Flush writes pending runs now. Called for shutdown too. Failed batches
// stay queued for the next flush.
func (s *RunRecorder) Flush() {
	if s.store == nil || len(s.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.store.SaveRuns(ctx, s.pending); err != nil {
		s.log.Error("save runs", zap.Int("count", len(s.pending)), zap.Error(err))
		return
	}
	clear(s.pending)
	s.pending = s.pending[:0]
}
