package controller

import (
	"time"

	"github.com/evogame/evolution/internal/core/ecs"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/engine"
)

// Item erases a thrown rock once its lifetime runs out.
type Item struct {
	ecs.Base
	lifeTime    time.Duration
	lifeCounter time.Duration
}

func NewItem(e *ecs.Entity, deps *engine.Deps) *Item {
	it := &Item{
		Base:     ecs.NewBase(e, "ItemController", Priority),
		lifeTime: seconds(deps.Settings.Float("itemLifeTime", 3)),
	}
	it.Reset()
	return it
}

func (it *Item) Remaining() time.Duration            { return it.lifeCounter }
func (it *Item) OnMessage(ecs.Component, id.ID, any) {}
func (it *Item) Dependencies() []id.ID               { return nil }
func (it *Item) Reset()                              { it.lifeCounter = it.lifeTime }
func (it *Item) Dispose()                            { it.Reset() }

func (it *Item) Update(dt time.Duration) {
	e := it.Entity()
	if e == nil {
		return
	}
	if it.lifeCounter < 0 {
		e.SetState(id.Erase)
	}
	it.lifeCounter -= dt
}
