// Package input tracks keyboard state for the simulation goroutine.
package input

import "strings"

// Key is a logical game key.
type Key uint8

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeySpace
	KeyEscape
	KeyEnter
	KeyOther
)

var keyNames = [...]string{"none", "left", "right", "up", "down", "space", "escape", "enter", "other"}

func (k Key) String() string {
	if int(k) < len(keyNames) {
		return keyNames[k]
	}
	return "key(?)"
}

// ParseKey maps a key name back to a Key. Unknown names give KeyNone.
func ParseKey(name string) Key {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range keyNames {
		if n == name {
			return Key(i)
		}
	}
	return KeyNone
}

// Source answers whether a key is currently held.
type Source interface {
	Pressed(k Key) bool
}

// State is a Source fed by a backend. Presses made during a frame are
// queued until Drain so states can react to key-downs once.
type State struct {
	held  map[Key]bool
	downs []Key
}

var _ Source = (*State)(nil)

func NewState() *State {
	return &State{held: make(map[Key]bool)}
}

func (s *State) Pressed(k Key) bool { return s.held[k] }

// Press marks k held and queues a key-down if it was not held already.
func (s *State) Press(k Key) {
	if !s.held[k] {
		s.downs = append(s.downs, k)
	}
	s.held[k] = true
}

func (s *State) Release(k Key) { delete(s.held, k) }

// Tap queues a key-down without holding the key. Terminals report key
// presses but not releases.
func (s *State) Tap(k Key) {
	s.downs = append(s.downs, k)
}

// Drain returns the key-downs queued since the last call.
func (s *State) Drain() []Key {
	out := s.downs
	s.downs = nil
	return out
}

// ReleaseAll forgets held keys.
func (s *State) ReleaseAll() {
	clear(s.held)
}
