package injector

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run drives fixed-step frames until ctx is cancelled or the player quits,
// then saves pending runs and unloads the screens.
func (a *App) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.Clock.Step())
	defer ticker.Stop()

	a.Log.Info("game started",
		zap.String("title", a.Config.Game.Title),
		zap.Duration("step", a.Clock.Step()),
		zap.Bool("headless", a.View.Screen == nil))

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			a.shutdown("context done")
			return nil
		case now := <-ticker.C:
			a.Advance(now.Sub(last))
			last = now
			if a.View.Quit() {
				a.shutdown("player quit")
				return nil
			}
		}
	}
}

// Advance runs the frames due after elapsed wall time.
func (a *App) Advance(elapsed time.Duration) int {
	n := a.Clock.Advance(elapsed)
	for range n {
		a.Runner.Tick(a.Clock.Step())
	}
	return n
}

func (a *App) shutdown(reason string) {
	a.Recorder.Flush()
	a.States.Dispose()
	a.Log.Info("game stopped", zap.String("reason", reason), zap.Uint64("frames", a.Clock.Steps()))
}
