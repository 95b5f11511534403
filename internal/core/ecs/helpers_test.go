package ecs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/evogame/evolution/internal/core/id"
)

type message struct {
	sender  Component
	event   id.ID
	payload any
}

// spy records every call made on it.
type spy struct {
	Base
	deps     []id.ID
	trace    *[]string
	messages []message
	onMsg    func(event id.ID)
	updates  int
	resets   int
	fetches  int
	disposes int
}

func newSpy(e *Entity, name string, priority int, trace *[]string, deps ...id.ID) *spy {
	return &spy{Base: NewBase(e, name, priority), deps: deps, trace: trace}
}

func (p *spy) Update(time.Duration) {
	p.updates++
	if p.trace != nil {
		*p.trace = append(*p.trace, p.Name())
	}
}

func (p *spy) Reset()                { p.resets++ }
func (p *spy) FetchAssets()          { p.fetches++ }
func (p *spy) Dependencies() []id.ID { return p.deps }
func (p *spy) Dispose()              { p.disposes++ }

func (p *spy) OnMessage(sender Component, event id.ID, payload any) {
	p.messages = append(p.messages, message{sender, event, payload})
	if p.onMsg != nil {
		p.onMsg(event)
	}
}

func newTestManager(t *testing.T, capacity int) (*Manager, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	return NewManager(capacity, id.NewRegistry(), zap.New(core)), logs
}

func obtain(t *testing.T, m *Manager) *Entity {
	t.Helper()
	e, err := m.Obtain()
	require.NoError(t, err)
	return e
}
