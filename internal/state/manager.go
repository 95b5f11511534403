package state

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/core/event"
	"github.com/evogame/evolution/internal/input"
)

var (
	ErrUnknownState   = errors.New("state not registered")
	ErrDuplicateState = errors.New("state already registered")
)

type opKind int

const (
	opPush opKind = iota
	opPop
)

type op struct {
	kind opKind
	name string
}

// Manager owns the registered states and the stack. Push, Pop and Change
// are queued and applied at the end of Update so a state can replace
// itself from inside its own update.
type Manager struct {
	registry map[string]State
	stack    []State
	pending  []op
	log      *zap.Logger
}

func NewManager(log *zap.Logger) *Manager {
	return &Manager{
		registry: make(map[string]State),
		log:      log,
	}
}

// Register makes s available to Push under its name.
func (m *Manager) Register(s State) error {
	if _, ok := m.registry[s.Name()]; ok {
		return fmt.Errorf("register %s: %w", s.Name(), ErrDuplicateState)
	}
	m.registry[s.Name()] = s
	return nil
}

// Registered returns the state registered as name, on the stack or not.
func (m *Manager) Registered(name string) (State, bool) {
	s, ok := m.registry[name]
	return s, ok
}

func (m *Manager) Push(name string) { m.pending = append(m.pending, op{kind: opPush, name: name}) }
func (m *Manager) Pop()             { m.pending = append(m.pending, op{kind: opPop}) }

// Change replaces the top state.
func (m *Manager) Change(name string) {
	m.Pop()
	m.Push(name)
}

// Update runs every active, loaded state bottom to top, then applies the
// queued stack operations.
func (m *Manager) Update(dt time.Duration) {
	for _, s := range m.stack {
		if s.Active() && s.Loaded() {
			s.Update(dt)
		}
	}
	m.apply()
}

// Flush applies queued operations without updating. Used once at start-up.
func (m *Manager) Flush() { m.apply() }

func (m *Manager) apply() {
	// Operations queued while applying wait for the next frame.
	ops := m.pending
	m.pending = nil
	for _, o := range ops {
		switch o.kind {
		case opPush:
			m.push(o.name)
		case opPop:
			m.pop()
		}
	}
}

func (m *Manager) push(name string) {
	s, ok := m.registry[name]
	if !ok {
		m.log.Error("push of unknown state", zap.String("state", name))
		return
	}
	m.log.Info("pushing state", zap.String("state", name))
	if i := m.index(s); i >= 0 {
		m.log.Info("state already on stack, moved to top", zap.String("state", name))
		m.stack = append(m.stack[:i], m.stack[i+1:]...)
	}
	m.stack = append(m.stack, s)
	if !s.Loaded() {
		s.Load()
	}
	s.SetActive(true)
}

func (m *Manager) pop() {
	if len(m.stack) == 0 {
		m.log.Warn("pop on empty state stack")
		return
	}
	top := m.stack[len(m.stack)-1]
	m.log.Info("popping state", zap.String("state", top.Name()))
	top.SetActive(false)
	top.Dispose()
	m.stack[len(m.stack)-1] = nil
	m.stack = m.stack[:len(m.stack)-1]

	if len(m.stack) > 0 {
		next := m.stack[len(m.stack)-1]
		next.SetActive(true)
		if !next.Loaded() {
			next.Load()
		}
	}
}

func (m *Manager) index(s State) int {
	for i, o := range m.stack {
		if o == s {
			return i
		}
	}
	return -1
}

// Get returns the state called name if it is on the stack.
func (m *Manager) Get(name string) (State, bool) {
	for _, s := range m.stack {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Top returns the state receiving input, or nil.
func (m *Manager) Top() State {
	if len(m.stack) == 0 {
		return nil
	}
	return m.stack[len(m.stack)-1]
}

func (m *Manager) Len() int { return len(m.stack) }

// Names lists the stack bottom to top.
func (m *Manager) Names() []string {
	out := make([]string, len(m.stack))
	for i, s := range m.stack {
		out[i] = s.Name()
	}
	return out
}

// KeyDown hands a key press to the top state.
func (m *Manager) KeyDown(k input.Key) {
	if top := m.Top(); top != nil && top.Active() {
		top.KeyDown(k)
	}
}

// OnEvent broadcasts a game event to every state on the stack.
func (m *Manager) OnEvent(ev event.Event) {
	for _, s := range m.stack {
		s.OnEvent(ev)
	}
}

func (m *Manager) Pause() {
	for _, s := range m.stack {
		s.Pause()
	}
}

func (m *Manager) Resume() {
	for _, s := range m.stack {
		s.Resume()
	}
}

// Dispose unloads every state on the stack, top first.
func (m *Manager) Dispose() {
	for len(m.stack) > 0 {
		m.pop()
	}
	m.pending = nil
}
