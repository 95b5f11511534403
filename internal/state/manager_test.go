package state

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/core/event"
	"github.com/evogame/evolution/internal/core/id"
	"github.com/evogame/evolution/internal/engine"
	"github.com/evogame/evolution/internal/input"
)

type spy struct {
	Base
	calls   []string
	keys    []input.Key
	events  []id.ID
	updates int
	onTick  func()
}

func newSpy(name string) *spy {
	return &spy{Base: NewBase(name, &engine.Deps{Log: zap.NewNop()})}
}

func (p *spy) Load() {
	p.Base.Load()
	p.calls = append(p.calls, "load")
}

func (p *spy) Dispose() {
	p.Base.Dispose()
	p.calls = append(p.calls, "dispose")
}

func (p *spy) Update(time.Duration) {
	p.updates++
	if p.onTick != nil {
		p.onTick()
	}
}

func (p *spy) KeyDown(k input.Key)    { p.keys = append(p.keys, k) }
func (p *spy) OnEvent(ev event.Event) { p.events = append(p.events, ev.Type) }

func setup(t *testing.T) (*Manager, *spy, *spy) {
	t.Helper()
	m := NewManager(zap.NewNop())
	menu, game := newSpy("menu"), newSpy("game")
	require.NoError(t, m.Register(menu))
	require.NoError(t, m.Register(game))
	return m, menu, game
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	m, _, _ := setup(t)
	assert.ErrorIs(t, m.Register(newSpy("menu")), ErrDuplicateState)

	s, ok := m.Registered("game")
	assert.True(t, ok)
	assert.Equal(t, "game", s.Name())
}

func TestOperationsAreDeferred(t *testing.T) {
	m, menu, _ := setup(t)
	m.Push("menu")
	assert.Zero(t, m.Len())
	assert.Nil(t, m.Top())

	m.Update(time.Millisecond)
	assert.Equal(t, []string{"menu"}, m.Names())
	assert.True(t, menu.Active())
	assert.True(t, menu.Loaded())
	assert.Zero(t, menu.updates, "pushed after the update pass")

	m.Update(time.Millisecond)
	assert.Equal(t, 1, menu.updates)
}

func TestChangeFromInsideUpdate(t *testing.T) {
	m, menu, game := setup(t)
	m.Push("menu")
	m.Flush()

	menu.onTick = func() { m.Change("game") }
	m.Update(time.Millisecond)

	assert.Equal(t, []string{"game"}, m.Names())
	assert.Equal(t, []string{"load", "dispose"}, menu.calls)
	assert.False(t, menu.Active())
	assert.False(t, menu.Loaded())
	assert.Equal(t, []string{"load"}, game.calls)
	assert.Same(t, game, m.Top())
}

func TestPopReactivatesBelow(t *testing.T) {
	m, menu, game := setup(t)
	m.Push("menu")
	m.Push("game")
	m.Flush()
	assert.Equal(t, []string{"menu", "game"}, m.Names())

	menu.SetActive(false)
	m.Update(time.Millisecond)
	assert.Zero(t, menu.updates, "inactive states are skipped")
	assert.Equal(t, 1, game.updates)

	m.Pop()
	m.Flush()
	assert.Equal(t, []string{"menu"}, m.Names())
	assert.True(t, menu.Active())
	assert.Equal(t, []string{"load"}, menu.calls, "still loaded, not reloaded")
	assert.Equal(t, []string{"load", "dispose"}, game.calls)
}

func TestPushExistingMovesToTop(t *testing.T) {
	m, _, _ := setup(t)
	m.Push("menu")
	m.Push("game")
	m.Push("menu")
	m.Flush()
	assert.Equal(t, []string{"game", "menu"}, m.Names())
}

func TestBadOperationsAreIgnored(t *testing.T) {
	m, _, _ := setup(t)
	assert.NotPanics(t, func() {
		m.Pop()
		m.Push("credits")
		m.Flush()
	})
	assert.Zero(t, m.Len())

	s, ok := m.Get("credits")
	assert.False(t, ok)
	assert.Nil(t, s)
}

func TestInputGoesToTop(t *testing.T) {
	m, menu, game := setup(t)
	m.KeyDown(input.KeyEnter)

	m.Push("menu")
	m.Push("game")
	m.Flush()
	m.KeyDown(input.KeySpace)
	assert.Empty(t, menu.keys)
	assert.Equal(t, []input.Key{input.KeySpace}, game.keys)
}

func TestEventsReachEveryState(t *testing.T) {
	m, menu, game := setup(t)
	m.Push("menu")
	m.Push("game")
	m.Flush()

	m.OnEvent(event.PlayerDeath(nil))
	assert.Equal(t, []id.ID{id.PlayerDeath}, menu.events)
	assert.Equal(t, []id.ID{id.PlayerDeath}, game.events)
}

func TestPauseResumeAndDispose(t *testing.T) {
	m, menu, game := setup(t)
	m.Push("menu")
	m.Push("game")
	m.Flush()

	m.Pause()
	assert.True(t, menu.Paused())
	assert.True(t, game.Paused())
	m.Resume()
	assert.False(t, game.Paused())

	m.Push("menu")
	m.Dispose()
	assert.Zero(t, m.Len())
	assert.False(t, menu.Loaded())
	assert.False(t, game.Loaded())
	m.Flush()
	assert.Zero(t, m.Len(), "pending operations dropped")
}
