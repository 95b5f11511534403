// Package asset loads game data files in the background and hands them to
// the simulation goroutine. Files are reference counted by path: every Load
// must be paired with an Unload.
package asset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/evogame/evolution/internal/core/id"
)

type Kind string

const (
	KindAnimation Kind = "animation"
	KindPhysics   Kind = "physics"
	KindLevel     Kind = "level"
)

var (
	ErrNotLoaded   = errors.New("asset not loaded")
	ErrUnknownKind = errors.New("no loader for asset kind")
)

// Loader turns a file into an asset in two steps. Decode runs on a worker
// goroutine and must not touch shared state; Resolve runs on the simulation
// goroutine during hand-off and may intern identifiers.
type Loader interface {
	Decode(path string, raw []byte) (any, error)
	Resolve(path string, decoded any) (any, error)
}

type state int

const (
	queued state = iota
	loading
	loaded
	failed
)

type entry struct {
	path  string
	kind  Kind
	refs  int
	state state
	data  any
	err   error
}

type job struct {
	e       *entry
	loader  Loader
	decoded any
	err     error
}

type batch struct {
	jobs []*job
	done chan error
}

// Manager is driven from the simulation goroutine. Only file reads and
// decoding happen elsewhere.
type Manager struct {
	fsys    fs.FS
	workers int
	loaders map[Kind]Loader
	entries map[string]*entry
	queue   []*entry
	current *batch

	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

// NewManager reads assets from fsys with up to workers concurrent decodes
// and registers the animation, physics and level loaders.
func NewManager(fsys fs.FS, ids *id.Registry, workers int, log *zap.Logger) *Manager {
	if workers <= 0 {
		workers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		fsys:    fsys,
		workers: workers,
		loaders: make(map[Kind]Loader),
		entries: make(map[string]*entry),
		ctx:     ctx,
		cancel:  cancel,
		log:     log,
	}
	m.Register(KindAnimation, &AnimationLoader{ids: ids})
	m.Register(KindPhysics, &PhysicsLoader{ids: ids})
	m.Register(KindLevel, &LevelLoader{ids: ids})
	return m
}

func (m *Manager) Register(kind Kind, l Loader) { m.loaders[kind] = l }

// Load requests path. Already known paths only gain a reference; failed
// ones are retried.
func (m *Manager) Load(path string, kind Kind) {
	if e, ok := m.entries[path]; ok {
		if e.kind != kind {
			m.log.Error("asset kind mismatch",
				zap.String("path", path), zap.String("have", string(e.kind)), zap.String("want", string(kind)))
			return
		}
		e.refs++
		if e.state == failed {
			e.state, e.err = queued, nil
			m.queue = append(m.queue, e)
		}
		return
	}
	e := &entry{path: path, kind: kind, refs: 1}
	m.entries[path] = e
	m.queue = append(m.queue, e)
}

// Unload drops one reference; the asset is forgotten with the last one.
func (m *Manager) Unload(path string) {
	e, ok := m.entries[path]
	if !ok {
		m.log.Warn("unload of unknown asset", zap.String("path", path))
		return
	}
	e.refs--
	if e.refs > 0 {
		return
	}
	delete(m.entries, path)
	for i, q := range m.queue {
		if q == e {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			break
		}
	}
	e.data = nil
}

func (m *Manager) RefCount(path string) int {
	if e, ok := m.entries[path]; ok {
		return e.refs
	}
	return 0
}

func (m *Manager) Loaded(path string) bool {
	e, ok := m.entries[path]
	return ok && e.state == loaded
}

// Err returns the failure recorded for path, if any.
func (m *Manager) Err(path string) error {
	if e, ok := m.entries[path]; ok {
		return e.err
	}
	return nil
}

// Update advances loading without blocking and reports true once nothing
// is queued or in flight.
func (m *Manager) Update() bool {
	if m.current != nil {
		select {
		case err := <-m.current.done:
			m.handOff(err)
		default:
			return false
		}
	}
	if len(m.queue) > 0 {
		m.start()
		return false
	}
	return true
}

// FinishLoading blocks until every queued asset is handled and returns the
// failures it saw.
func (m *Manager) FinishLoading(ctx context.Context) error {
	var errs []error
	for {
		if m.current == nil {
			if len(m.queue) == 0 {
				return errors.Join(errs...)
			}
			m.start()
		}
		select {
		case err := <-m.current.done:
			errs = append(errs, m.handOff(err)...)
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (m *Manager) start() {
	b := &batch{jobs: make([]*job, 0, len(m.queue)), done: make(chan error, 1)}
	for _, e := range m.queue {
		l, ok := m.loaders[e.kind]
		if !ok {
			e.state, e.err = failed, fmt.Errorf("%s (%s): %w", e.path, e.kind, ErrUnknownKind)
			m.log.Error("asset load failed", zap.String("path", e.path), zap.Error(e.err))
			continue
		}
		e.state = loading
		b.jobs = append(b.jobs, &job{e: e, loader: l})
	}
	m.queue = m.queue[:0]
	m.current = b

	g, ctx := errgroup.WithContext(m.ctx)
	g.SetLimit(m.workers)
	go func() {
		for _, j := range b.jobs {
			g.Go(func() error {
				if err := ctx.Err(); err != nil {
					j.err = err
					return nil
				}
				// A bad file fails alone; the rest of the batch carries on.
				raw, err := fs.ReadFile(m.fsys, j.e.path)
				if err != nil {
					j.err = fmt.Errorf("read %s: %w", j.e.path, err)
					return nil
				}
				j.decoded, err = j.loader.Decode(j.e.path, raw)
				if err != nil {
					j.err = fmt.Errorf("decode %s: %w", j.e.path, err)
				}
				return nil
			})
		}
		b.done <- g.Wait()
	}()
}

// handOff publishes a finished batch. Entries unloaded while their batch
// was in flight are dropped.
func (m *Manager) handOff(batchErr error) []error {
	b := m.current
	m.current = nil
	var errs []error
	for _, j := range b.jobs {
		e := j.e
		if m.entries[e.path] != e {
			continue
		}
		if j.err == nil {
			e.data, j.err = j.loader.Resolve(e.path, j.decoded)
		}
		if j.err != nil {
			e.state, e.err = failed, j.err
			errs = append(errs, j.err)
			m.log.Error("asset load failed", zap.String("path", e.path), zap.Error(j.err))
			continue
		}
		e.state = loaded
		m.log.Debug("asset loaded", zap.String("path", e.path), zap.String("kind", string(e.kind)))
	}
	if batchErr != nil && len(errs) == 0 {
		errs = append(errs, batchErr)
	}
	return errs
}

// Get returns the asset at path when it has been loaded as kind.
func (m *Manager) Get(path string, kind Kind) (any, error) {
	e, ok := m.entries[path]
	if !ok || e.state != loaded {
		m.log.Warn("asset fetched before load", zap.String("path", path))
		return nil, fmt.Errorf("%s: %w", path, ErrNotLoaded)
	}
	if e.kind != kind {
		return nil, fmt.Errorf("%s is %s, not %s: %w", path, e.kind, kind, ErrNotLoaded)
	}
	return e.data, nil
}

// Close stops in-flight decoding and waits for the workers.
func (m *Manager) Close() {
	m.cancel()
	if m.current != nil {
		<-m.current.done
		m.current = nil
	}
}
