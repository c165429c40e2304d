// Package registry implements the identity registry used when swizzling an
// in-memory object graph to and from storage.
//
// A Registry maps non-zero 64-bit object ids (oids) and type ids (tids) to
// runtime objects and back. Objects are held weakly: registering an object
// never extends its lifetime, and an entry whose object has been collected
// becomes an orphan that lookups treat as unknown until the id is bound
// again or a maintenance pass sweeps it.
//
// Two hash indexes share one slot mask. The id index is keyed by the low
// bits of the id; the identity index is keyed by a hash of the object's
// address. Every bound entry lives in both, hollow entries (ids reserved
// before their object is known) live only in the id index.
//
// Mutating operations serialize on a single mutex. Lookups read an
// atomically published generation of the two indexes and scan it without
// locking, so they always see either the table before a rehash or the
// table after it.
//
// Objects are non-nil pointers to values of non-zero size. Pointer-free values
// smaller than 16 bytes may share a tiny allocator block with other values, so
// their entries can stay live long after the object itself is unreachable.
// Type descriptors are reflect.Type values; the runtime never frees them, so
// they are pinned, as are objects the heap does not own, such as pointers to
// package-level variables.
package registry
