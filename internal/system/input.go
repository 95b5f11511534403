package system

import (
	"time"

	"go.uber.org/zap"

	coresys "github.com/evogame/evolution/internal/core/system"
	"github.com/evogame/evolution/internal/input"
)

// Poller pulls pending device events into the key state.
type Poller interface {
	Poll()
}

// KeyHandler receives key-downs, normally the state manager.
type KeyHandler interface {
	KeyDown(k input.Key)
}

// InputSystem polls the input backend and hands this frame's key-downs to
// the active state. Phase 0 (Input).
type InputSystem struct {
	poller     Poller // nil for headless runs
	keys       *input.State
	handler    KeyHandler
	maxPerTick int
	log        *zap.Logger
}

func NewInputSystem(poller Poller, keys *input.State, handler KeyHandler, maxPerTick int, log *zap.Logger) *InputSystem {
	return &InputSystem{
		poller:     poller,
		keys:       keys,
		handler:    handler,
		maxPerTick: maxPerTick,
		log:        log,
	}
}

func (s *InputSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *InputSystem) Update(_ time.Duration) {
	if s.poller != nil {
		s.poller.Poll()
	}
	downs := s.keys.Drain()
	if s.maxPerTick > 0 && len(downs) > s.maxPerTick {
		s.log.Debug("key-downs dropped", zap.Int("count", len(downs)-s.maxPerTick))
		downs = downs[:s.maxPerTick]
	}
	for _, k := range downs {
		s.handler.KeyDown(k)
	}
}
