package system

import (
	"time"

	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/core/ecs"
	coresys "github.com/evogame/evolution/internal/core/system"
)

// CleanupSystem frees the entities queued with MarkForRemoval at frame end.
// Phase 5 (Cleanup).
type CleanupSystem struct {
	entities *ecs.Manager
	log      *zap.Logger
}

func NewCleanupSystem(entities *ecs.Manager, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{entities: entities, log: log}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if err := s.entities.FlushRemovals(); err != nil {
		s.log.Error("flush removals", zap.Error(err))
	}
}
