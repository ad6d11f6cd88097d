package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/specialistvlad/pixelgrid/internal/operation"
)

// ErrUnknownOperation is returned for ids that were never registered.
var ErrUnknownOperation = errors.New("unknown operation")

// Module is the interface that all operation packages implement to be registered.
type Module interface {
	Register(r *Registry)
}

// Registry maps operation ids to factories and caches each operation's
// metadata. It is populated once, frozen, and read-only afterwards, so
// lookups need no locking.
type Registry struct {
	frozen    atomic.Bool
	factories map[string]operation.Factory
	metadata  map[string]*operation.Metadata
	ids       []string
}

// New creates an empty, unfrozen Registry.
func New() *Registry {
	return &Registry{
		factories: make(map[string]operation.Factory),
		metadata:  make(map[string]*operation.Metadata),
	}
}

// Register adds an operation factory. The factory is invoked once to capture
// the operation's metadata. Registering a duplicate id or registering after
// Freeze is a programmer error and panics.
func (r *Registry) Register(factory operation.Factory) {
	if r.frozen.Load() {
		panic("registry is frozen; operations must be registered before use")
	}
	meta := factory().Metadata()
	if meta.ID == "" {
		panic("operation registered without an id")
	}
	if _, exists := r.factories[meta.ID]; exists {
		panic(fmt.Sprintf("operation with id '%s' already registered", meta.ID))
	}
	slog.Debug("Registering operation.", "id", meta.ID, "category", meta.Category.String())
	r.factories[meta.ID] = factory
	r.metadata[meta.ID] = meta
	r.ids = append(r.ids, meta.ID)
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	if r.frozen.Swap(true) {
		return
	}
	slices.Sort(r.ids)
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	return r.frozen.Load()
}

// Create instantiates the operation registered under id.
func (r *Registry) Create(id string) (operation.Operation, error) {
	factory, ok := r.factories[id]
	if !ok {
		return nil, fmt.Errorf("%w: '%s'", ErrUnknownOperation, id)
	}
	return factory(), nil
}

// Metadata returns the cached metadata of an operation.
func (r *Registry) Metadata(id string) (*operation.Metadata, bool) {
	m, ok := r.metadata[id]
	return m, ok
}

// Len returns the number of registered operations.
func (r *Registry) Len() int {
	return len(r.ids)
}

// List returns all metadata ordered by id.
func (r *Registry) List() []*operation.Metadata {
	ids := slices.Sorted(slices.Values(r.ids))
	out := make([]*operation.Metadata, len(ids))
	for i, id := range ids {
		out[i] = r.metadata[id]
	}
	return out
}

// Categories returns the distinct categories in use, in declaration order.
func (r *Registry) Categories() []operation.Category {
	var cats []operation.Category
	for _, m := range r.metadata {
		if !slices.Contains(cats, m.Category) {
			cats = append(cats, m.Category)
		}
	}
	slices.Sort(cats)
	return cats
}

// ByCategory returns the operations in category c ordered by id.
func (r *Registry) ByCategory(c operation.Category) []*operation.Metadata {
	var out []*operation.Metadata
	for _, m := range r.List() {
		if m.Category == c {
			out = append(out, m)
		}
	}
	return out
}

// Search matches query case-insensitively against id, name, description
// and tags.
func (r *Registry) Search(query string) []*operation.Metadata {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []*operation.Metadata
	for _, m := range r.List() {
		if q == "" || matches(m, q) {
			out = append(out, m)
		}
	}
	return out
}

func matches(m *operation.Metadata, q string) bool {
	fields := append([]string{m.ID, m.Name, m.Description}, m.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}
