// Package testutil provides shared fixtures for registry tests.
package testutil

import (
	"fmt"
	"reflect"
	"runtime"
	"time"
)

// Node is a heap object shaped like a persisted graph node. It carries a
// pointer field so the allocator never packs it into a shared tiny block,
// which would delay its collection.
type Node struct {
	Name  string
	Next  *Node
	Value int64
	Tags  [2]int64
}

// Account and Order give tests distinct type descriptors.
type Account struct {
	ID    int64
	Owner *string
}

// Order references an account.
type Order struct {
	ID      int64
	Account *Account
}

// NewNodes allocates n distinct nodes named prefix-0 .. prefix-(n-1).
func NewNodes(prefix string, n int) []*Node {
	out := make([]*Node, n)
	for i := range out {
		out[i] = &Node{Name: fmt.Sprintf("%s-%d", prefix, i), Value: int64(i)}
	}
	return out
}

// Types returns a fixed set of distinct type descriptors.
func Types() []reflect.Type {
	return []reflect.Type{
		reflect.TypeOf(Node{}),
		reflect.TypeOf(Account{}),
		reflect.TypeOf(Order{}),
		reflect.TypeOf((*Node)(nil)),
	}
}

// CollectUntil runs the garbage collector until cond holds or attempts run
// out, and reports whether cond held. Weak pointers clear once their target
// is unreachable at the end of a cycle, which can take more than one cycle.
func CollectUntil(cond func() bool) bool {
	for i := 0; i < 20; i++ {
		runtime.GC()
		if cond() {
			return true
		}
		time.Sleep(time.Millisecond)
	}
	return false
}
