package engine

import (
	"cmp"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/haze/internal/ir"
)

// Engine is the document store.
//
// Thread-safety model:
//   - every exported method is safe from any goroutine
//   - registry access is serialized by mu (readers share, writers exclude)
//   - events are published after mu is released
//
// INVARIANTS:
//   - a document's id never changes after Create
//   - every stored document holds an id string and an integral version
//   - seq values are unique across all collections of one engine
//   - collections are never removed once created
type Engine struct {
	mu          sync.RWMutex
	collections map[string]*collection

	seq      *Clock       // Insertion order
	versions VersionClock // Version stamps
	ids      IDGenerator
	notifier *Notifier
	logger   *slog.Logger
}

// entry is one stored document and its insertion seq.
type entry struct {
	seq int64
	doc ir.IRObject
}

type collection struct {
	name string
	docs map[string]*entry
}

// ordered returns the collection's entries in seq order.
// Caller must hold the engine lock.
func (c *collection) ordered() []*entry {
	out := make([]*entry, 0, len(c.docs))
	for _, e := range c.docs {
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b *entry) int {
		return cmp.Compare(a.seq, b.seq)
	})
	return out
}

// EngineOption allows configuration of engine parameters.
type EngineOption func(*Engine)

// WithClock sets the version clock.
//
// Default: NewWallClock() (Unix milliseconds, strictly increasing).
// Use testutil.NewDeterministicClock() for reproducible versions.
func WithClock(c VersionClock) EngineOption {
	return func(e *Engine) {
		e.versions = c
	}
}

// WithIDGenerator sets the document id generator.
//
// Default: UUIDv7Generator.
func WithIDGenerator(g IDGenerator) EngineOption {
	return func(e *Engine) {
		e.ids = g
	}
}

// WithLogger sets the logger used for mutation and query diagnostics.
//
// Default: slog.Default().
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithNotifier shares an existing notifier, so listeners can be registered
// before the engine is built or shared across engines.
func WithNotifier(n *Notifier) EngineOption {
	return func(e *Engine) {
		e.notifier = n
	}
}

// New creates an empty Engine.
//
// Options can be passed to configure the engine (e.g., WithClock).
func New(opts ...EngineOption) *Engine {
	e := &Engine{
		collections: make(map[string]*collection),
		seq:         NewClock(),
		versions:    NewWallClock(),
		ids:         UUIDv7Generator{},
		notifier:    NewNotifier(),
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Notifier returns the engine's change notifier.
func (e *Engine) Notifier() *Notifier {
	return e.notifier
}

// Subscribe registers fn for events of kind. See Notifier.Subscribe.
func (e *Engine) Subscribe(kind EventKind, fn Listener) (unsubscribe func()) {
	return e.notifier.Subscribe(kind, fn)
}

// EnsureCollection creates the named collection if it does not exist.
// Returns true if the collection was created by this call.
func (e *Engine) EnsureCollection(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, ok := e.collections[name]; ok {
		return false
	}
	e.collections[name] = newCollection(name)
	e.logger.Debug("collection created", "collection", name)
	return true
}

func newCollection(name string) *collection {
	return &collection{name: name, docs: make(map[string]*entry)}
}

// HasCollection reports whether the named collection exists.
func (e *Engine) HasCollection(name string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.collections[name]
	return ok
}

// Collections returns the names of all collections, sorted.
func (e *Engine) Collections() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	names := make([]string, 0, len(e.collections))
	for name := range e.collections {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Len returns the number of documents in the named collection
// (0 if the collection does not exist).
func (e *Engine) Len(name string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if c, ok := e.collections[name]; ok {
		return len(c.docs)
	}
	return 0
}
