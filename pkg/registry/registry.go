package registry

import (
	"math"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/objectregistry/pkg/errors"
	"github.com/objectregistry/pkg/utils"
)

// Registry is a thread-safe bidirectional map between ids and objects.
type Registry struct {
	mu      sync.Mutex
	gen     atomic.Pointer[tables]
	size    atomic.Int64
	density float64
	logger  utils.Logger
}

// Option configures a Registry.
type Option func(*options)

type options struct {
	initialCapacity int
	density         float64
	logger          utils.Logger
}

// WithInitialCapacity sets the number of entries the registry holds before it
// first grows.
func WithInitialCapacity(n int) Option {
	return func(o *options) {
		o.initialCapacity = n
	}
}

// WithHashDensity sets the ratio of entries to slots. Values above 1 trade
// longer buckets for smaller slot arrays.
func WithHashDensity(d float64) Option {
	return func(o *options) {
		o.density = d
	}
}

// WithLogger sets the logger used for growth and maintenance messages.
func WithLogger(logger utils.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an empty Registry.
func New(opts ...Option) (*Registry, error) {
	o := options{
		initialCapacity: DefaultInitialCapacity,
		density:         DefaultHashDensity,
		logger:          &utils.NullLogger{},
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.density <= 0 || math.IsNaN(o.density) || math.IsInf(o.density, 0) {
		return nil, errors.Newf(errors.CodeConfigError, "hash density must be a positive finite number, got %v", o.density)
	}
	if o.initialCapacity < 0 {
		return nil, errors.Newf(errors.CodeConfigError, "initial capacity must not be negative, got %d", o.initialCapacity)
	}

	r := &Registry{
		density: o.density,
		logger:  o.logger,
	}
	r.gen.Store(newTables(slotLengthFor(o.initialCapacity, o.density), o.density))
	return r, nil
}

// Size returns the number of tracked ids, hollow and orphaned ones included.
func (r *Registry) Size() int {
	return int(r.size.Load())
}

// Capacity returns the size at which the registry next grows.
func (r *Registry) Capacity() int {
	return r.gen.Load().capacity
}

// SlotLength returns the current slot array length.
func (r *Registry) SlotLength() int {
	return r.gen.Load().length()
}

// HashDensity returns the configured ratio of entries to slots.
func (r *Registry) HashDensity() float64 {
	return r.density
}

// RegisterObjectID reserves id as a hollow entry. If id is already tracked it
// returns the current referent, which is nil for hollow and orphaned entries.
func (r *Registry) RegisterObjectID(id uint64) (any, error) {
	if id == 0 {
		return nil, errors.ErrNullIdentifier
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.gen.Load()
	if e := t.findByID(id); e != nil {
		return e.referent(), nil
	}
	t.insert(newEntry(id))
	r.size.Add(1)
	r.ensureCapacity()
	return nil, nil
}

// RegisterObject binds id to obj. It returns false when the mapping already
// exists and true when it was created or revived a hollow or orphaned entry.
// It fails without changing anything when id holds a different live object or
// obj is bound to another id.
func (r *Registry) RegisterObject(id uint64, obj any) (bool, error) {
	if id == 0 {
		return false, errors.ErrNullIdentifier
	}
	hash, err := identity(obj)
	if err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.gen.Load()
	e := t.findByID(id)
	if e != nil {
		if cur := e.referent(); cur != nil {
			if cur == obj {
				return false, nil
			}
			return false, errors.IDConflict(id, cur, obj)
		}
	}
	if owner := t.findByObject(obj, hash); owner != nil {
		return false, errors.ObjectConflict(obj, owner.id, id)
	}

	r.bind(t, e, id, obj, hash)
	return true, nil
}

// RegisterType binds id to the type descriptor typ with the same contract as
// RegisterObject.
func (r *Registry) RegisterType(id uint64, typ reflect.Type) (bool, error) {
	if typ == nil {
		if id == 0 {
			return false, errors.ErrNullIdentifier
		}
		return false, errors.InvalidObject(nil, "nil type")
	}
	return r.RegisterObject(id, typ)
}

// OptionalRegisterObject binds id to obj unless either side is already
// taken, and never reports a conflict. If id holds a live object that object
// is returned. If obj is already registered under another id, obj is returned
// and id is left untouched. Otherwise the mapping is created and obj returned.
func (r *Registry) OptionalRegisterObject(id uint64, obj any) (any, error) {
	if id == 0 {
		return nil, errors.ErrNullIdentifier
	}
	hash, err := identity(obj)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.gen.Load()
	e := t.findByID(id)
	if e != nil {
		if cur := e.referent(); cur != nil {
			return cur, nil
		}
	}
	if t.findByObject(obj, hash) != nil {
		return obj, nil
	}

	r.bind(t, e, id, obj, hash)
	return obj, nil
}

// AddRef is OptionalRegisterObject under the name object-graph walkers use.
func (r *Registry) AddRef(id uint64, obj any) (any, error) {
	return r.OptionalRegisterObject(id, obj)
}

// bind points e at obj, or inserts a new entry when e is nil. A revived
// orphan leaves the identity slot of its old hash. The caller holds r.mu.
func (r *Registry) bind(t *tables, e *entry, id uint64, obj any, hash int32) {
	ref := newReference(obj)
	if e == nil {
		e = newEntry(id)
		e.bind(ref, hash)
		t.insert(e)
		r.size.Add(1)
		r.ensureCapacity()
		return
	}

	if old := e.hash.Load(); old != 0 {
		removeCell(&t.byHash[t.hashSlot(old)], e)
	}
	e.bind(ref, hash)
	insertCell(&t.byHash[t.hashSlot(hash)], e)
}

// RemoveByID drops the mapping for id. It returns false if id is unknown.
func (r *Registry) RemoveByID(id uint64) (bool, error) {
	if id == 0 {
		return false, errors.ErrNullIdentifier
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.gen.Load()
	e := t.findByID(id)
	if e == nil {
		return false, nil
	}
	r.drop(t, e)
	return true, nil
}

// Remove drops the mapping for obj. It returns false if obj is not registered.
func (r *Registry) Remove(obj any) bool {
	hash, err := identity(obj)
	if err != nil {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.gen.Load()
	e := t.findByObject(obj, hash)
	if e == nil {
		return false
	}
	r.drop(t, e)
	return true
}

// RetrieveByOID removes the mapping for id and returns its referent, which is
// nil if id was unknown, hollow or orphaned.
func (r *Registry) RetrieveByOID(id uint64) (any, error) {
	if id == 0 {
		return nil, errors.ErrNullIdentifier
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.gen.Load()
	e := t.findByID(id)
	if e == nil {
		return nil, nil
	}
	obj := e.referent()
	r.drop(t, e)
	return obj, nil
}

// RetrieveByObject removes the mapping for obj and returns its id, or 0 if obj
// was not registered.
func (r *Registry) RetrieveByObject(obj any) uint64 {
	hash, err := identity(obj)
	if err != nil {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.gen.Load()
	e := t.findByObject(obj, hash)
	if e == nil {
		return 0
	}
	r.drop(t, e)
	return e.id
}

// RetrieveByTID removes the type mapping for id and returns the type. An id
// bound to a live object that is not a type is left in place and reported as
// an invalid type id.
func (r *Registry) RetrieveByTID(id uint64) (reflect.Type, error) {
	if id == 0 {
		return nil, errors.ErrNullIdentifier
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	t := r.gen.Load()
	e := t.findByID(id)
	if e == nil {
		return nil, nil
	}
	obj := e.referent()
	typ, ok := obj.(reflect.Type)
	if obj != nil && !ok {
		return nil, errors.InvalidTypeID(id, obj)
	}
	r.drop(t, e)
	return typ, nil
}

// drop removes e from both indexes. The caller holds r.mu.
func (r *Registry) drop(t *tables, e *entry) {
	t.remove(e)
	r.size.Add(-1)
}

// Clear drops every entry and keeps the current slot length.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen.Store(newTables(r.gen.Load().length(), r.density))
	r.size.Store(0)
}
