package ecs

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/evogame/evolution/internal/core/id"
)

var (
	ErrPoolExhausted = errors.New("entity pool exhausted")
	ErrInconsistent  = errors.New("entity manager bookkeeping inconsistent")
)

// Manager is a capacity-bounded pool of entities. Live entities are tracked
// both by id and in a list kept sorted by descending Z; the two views move in
// lockstep.
type Manager struct {
	capacity int
	nextID   EntityID
	free     []*Entity
	byID     map[EntityID]*Entity
	active   []*Entity

	iterating   bool
	pendingFree []*Entity
	removeQueue []removal

	ids *id.Registry
	log *zap.Logger
}

func NewManager(capacity int, ids *id.Registry, log *zap.Logger) *Manager {
	return &Manager{
		capacity:    capacity,
		nextID:      1,
		free:        make([]*Entity, 0, capacity),
		byID:        make(map[EntityID]*Entity, capacity),
		active:      make([]*Entity, 0, capacity),
		removeQueue: make([]removal, 0, 16),
		ids:         ids,
		log:         log,
	}
}

func (m *Manager) Registry() *id.Registry { return m.ids }
func (m *Manager) Capacity() int          { return m.capacity }
func (m *Manager) Len() int               { return len(m.byID) }

// Active returns the live entities in draw order as of the last Update.
// The slice is owned by the manager.
func (m *Manager) Active() []*Entity { return m.active }

// Obtain checks out an entity with a fresh id, recycling a freed object when
// one is available.
func (m *Manager) Obtain() (*Entity, error) {
	if len(m.byID) >= m.capacity {
		m.log.Error("entity pool exhausted", zap.Int("capacity", m.capacity))
		return nil, fmt.Errorf("obtain: %w (capacity %d)", ErrPoolExhausted, m.capacity)
	}
	var e *Entity
	if n := len(m.free); n > 0 {
		e = m.free[n-1]
		m.free[n-1] = nil
		m.free = m.free[:n-1]
	} else {
		e = newEntity(m.ids, m.log)
	}
	e.id = m.nextID
	m.nextID++

	m.byID[e.id] = e
	m.active = append(m.active, e)
	return e, nil
}

// Get looks an entity up by id.
func (m *Manager) Get(eid EntityID) (*Entity, bool) {
	e, ok := m.byID[eid]
	return e, ok
}

// Free disposes e and returns it to the pool. Untracked entities are
// ignored. While Update or FetchAssets is iterating, the free is deferred
// until the pass ends.
func (m *Manager) Free(e *Entity) error {
	if e == nil {
		return nil
	}
	if m.iterating {
		if _, ok := m.byID[e.id]; ok && !e.released {
			e.released = true
			m.pendingFree = append(m.pendingFree, e)
		}
		return nil
	}
	return m.release(e)
}

func (m *Manager) release(e *Entity) error {
	tracked, inMap := m.byID[e.id]
	inMap = inMap && tracked == e
	idx := m.indexOf(e)

	if !inMap && idx < 0 {
		return nil
	}
	if !inMap || idx < 0 {
		m.log.Error("entity bookkeeping mismatch",
			zap.Stringer("entity", e), zap.Bool("in_map", inMap), zap.Bool("in_active", idx >= 0))
		return fmt.Errorf("free %s: %w (in map %t, in active %t)", e, ErrInconsistent, inMap, idx >= 0)
	}

	delete(m.byID, e.id)
	copy(m.active[idx:], m.active[idx+1:])
	m.active[len(m.active)-1] = nil
	m.active = m.active[:len(m.active)-1]

	e.Dispose()
	m.free = append(m.free, e)
	return nil
}

func (m *Manager) indexOf(e *Entity) int {
	for i, a := range m.active {
		if a == e {
			return i
		}
	}
	return -1
}

// FreeAll frees every entity in list and empties it.
func (m *Manager) FreeAll(list *[]*Entity) error {
	var errs []error
	for _, e := range *list {
		if err := m.Free(e); err != nil {
			errs = append(errs, err)
		}
	}
	clear(*list)
	*list = (*list)[:0]
	return errors.Join(errs...)
}

// removal remembers the id an entity had when it was queued.
type removal struct {
	e  *Entity
	id EntityID
}

// MarkForRemoval queues e for FlushRemovals at the end of the tick.
func (m *Manager) MarkForRemoval(e *Entity) {
	if e == nil {
		return
	}
	m.removeQueue = append(m.removeQueue, removal{e: e, id: e.id})
}

// Queued reports how many removals wait for FlushRemovals.
func (m *Manager) Queued() int { return len(m.removeQueue) }

// FlushRemovals frees every queued entity. Entries whose entity was freed
// and handed out again under a new id are dropped.
func (m *Manager) FlushRemovals() error {
	var errs []error
	for _, r := range m.removeQueue {
		if r.e.id != r.id {
			continue
		}
		if err := m.Free(r.e); err != nil {
			errs = append(errs, err)
		}
	}
	clear(m.removeQueue)
	m.removeQueue = m.removeQueue[:0]
	return errors.Join(errs...)
}

// Update re-sorts the live entities by descending Z and updates them in that
// order. Z moves every frame, and the same order drives drawing.
func (m *Manager) Update(dt time.Duration) {
	m.sortByDepth()
	m.each(func(e *Entity) { e.Update(dt) })
}

// FetchAssets runs once the asset provider reports loading complete.
func (m *Manager) FetchAssets() {
	m.each(func(e *Entity) { e.FetchAssets() })
}

func (m *Manager) sortByDepth() {
	sort.SliceStable(m.active, func(i, j int) bool {
		return CompareDepth(m.active[i], m.active[j]) < 0
	})
}

// each visits the entities live when the pass started. Entities obtained
// during the pass wait for the next one; entities freed during it are
// skipped and released afterwards.
func (m *Manager) each(fn func(*Entity)) {
	if m.iterating {
		m.log.Warn("nested entity pass ignored")
		return
	}
	m.iterating = true
	n := len(m.active)
	for i := 0; i < n && i < len(m.active); i++ {
		if e := m.active[i]; !e.released {
			fn(e)
		}
	}
	m.iterating = false

	if len(m.pendingFree) > 0 {
		if err := m.FreeAll(&m.pendingFree); err != nil {
			m.log.Error("deferred free", zap.Error(err))
		}
	}
}

// Clear disposes every live entity and forgets all pooled ones. Ids keep
// growing from where they were.
func (m *Manager) Clear() {
	for _, e := range m.active {
		e.Dispose()
	}
	clear(m.active)
	m.active = m.active[:0]
	clear(m.free)
	m.free = m.free[:0]
	clear(m.byID)
	clear(m.pendingFree)
	m.pendingFree = m.pendingFree[:0]
	clear(m.removeQueue)
	m.removeQueue = m.removeQueue[:0]
}
