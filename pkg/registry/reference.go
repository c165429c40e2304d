package registry

import (
	"reflect"
	"runtime"
	"unsafe"
	"weak"

	"github.com/objectregistry/pkg/errors"
)

// fibMul spreads consecutive addresses across the high bits before folding.
const fibMul = 0x9E3779B97F4A7C15

// reference is the registry's handle on a referent. Heap objects are held
// through a weak pointer and rebuilt as *T on demand. Types and objects the
// heap does not own, such as package-level variables, are held as-is.
type reference struct {
	typ    reflect.Type
	pinned any
	elem   reflect.Type
	ptr    weak.Pointer[byte]
}

// value returns the referent, or nil once the object has been collected.
func (r *reference) value() any {
	if r.typ != nil {
		return r.typ
	}
	if r.pinned != nil {
		return r.pinned
	}
	p := r.ptr.Value()
	if p == nil {
		return nil
	}
	return reflect.NewAt(r.elem, unsafe.Pointer(p)).Interface()
}

// isType reports whether the reference points at a type descriptor.
func (r *reference) isType() bool {
	return r.typ != nil
}

// identity validates obj and returns its identity hash. The hash is never 0.
func identity(obj any) (int32, error) {
	switch v := obj.(type) {
	case nil:
		return 0, errors.InvalidObject(nil, "nil value")
	case reflect.Type:
		return hashAddr(uintptr(reflect.ValueOf(v).UnsafePointer())), nil
	}

	rv := reflect.ValueOf(obj)
	if rv.Kind() != reflect.Pointer {
		return 0, errors.InvalidObject(obj, "not a pointer")
	}
	if rv.IsNil() {
		return 0, errors.InvalidObject(obj, "nil pointer")
	}
	if rv.Type().Elem().Size() == 0 {
		return 0, errors.InvalidObject(obj, "pointer to zero-sized value")
	}
	return hashAddr(uintptr(rv.UnsafePointer())), nil
}

// newReference builds a reference to obj. obj must have passed identity.
func newReference(obj any) *reference {
	if t, ok := obj.(reflect.Type); ok {
		return &reference{typ: t}
	}
	rv := reflect.ValueOf(obj)
	p := (*byte)(rv.UnsafePointer())
	if !heapAllocated(p) {
		return &reference{pinned: obj}
	}
	return &reference{
		elem: rv.Type().Elem(),
		ptr:  weak.Make(p),
	}
}

// heapAllocated reports whether p points into a block owned by the Go heap.
// weak.Make throws on anything else. The runtime hands back a zero Cleanup
// for linker-allocated memory and panics for memory outside Go entirely.
func heapAllocated(p *byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	c := runtime.AddCleanup(p, func(struct{}) {}, struct{}{})
	if c == (runtime.Cleanup{}) {
		return false
	}
	c.Stop()
	return true
}

func hashAddr(addr uintptr) int32 {
	h := int32(uint64(addr) * fibMul >> 32)
	if h == 0 {
		return 1
	}
	return h
}
