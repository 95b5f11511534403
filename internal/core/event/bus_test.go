package event

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/evogame/evolution/internal/core/id"
)

func TestBusDeliversAfterSwap(t *testing.T) {
	b := NewBus()
	var got []id.ID
	b.Subscribe(id.PlayerDeath, func(ev Event) { got = append(got, ev.Type) })

	b.Emit(PlayerDeath("caveman"))
	b.DispatchAll()
	assert.Empty(t, got)
	assert.Equal(t, 1, b.Pending())

	b.SwapBuffers()
	assert.Zero(t, b.Pending())
	b.DispatchAll()
	assert.Equal(t, []id.ID{id.PlayerDeath}, got)

	b.SwapBuffers()
	b.DispatchAll()
	assert.Len(t, got, 1)
}

func TestBusRoutesByType(t *testing.T) {
	b := NewBus()
	var deaths, finishes, all int
	b.Subscribe(id.PlayerDeath, func(Event) { deaths++ })
	b.Subscribe(id.LevelFinish, func(ev Event) {
		finishes++
		assert.Equal(t, LevelOutcome{Level: "level1", Completed: true, Ammo: 2}, ev.Payload)
	})
	b.SubscribeAll(func(Event) { all++ })

	b.Emit(PlayerDeath(nil))
	b.Emit(LevelFinished(LevelOutcome{Level: "level1", Completed: true, Ammo: 2}))
	b.Emit(Event{Type: id.Fall})
	b.SwapBuffers()
	b.DispatchAll()

	assert.Equal(t, 1, deaths)
	assert.Equal(t, 1, finishes)
	assert.Equal(t, 3, all)
}

func TestBusEmitDuringDispatchWaits(t *testing.T) {
	b := NewBus()
	calls := 0
	b.Subscribe(id.PlayerDeath, func(ev Event) {
		calls++
		if calls == 1 {
			b.Emit(ev)
		}
	})
	b.Emit(PlayerDeath(nil))
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, b.Pending())

	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, 2, calls)
}
