package bsp

import "fmt"

// Key is a stable handle to a node of a Tree. A key stays valid for as long
// as the node it was issued for exists; once the node is released, the key
// never resolves to another node, even if its storage slot is reused.
//
// The zero Key never refers to a node.
type Key struct {
	index uint32
	gen   uint32
}

func (k Key) String() string {
	return fmt.Sprintf("%dv%d", k.index, k.gen)
}

type slot[T any] struct {
	node Node[T]
	// gen is odd while the slot is occupied and even while it is free.
	gen uint32
}

// arena is a slot table addressed by generational keys.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
	live  int
}

func (a *arena[T]) insert(n Node[T]) Key {
	a.live++
	if len(a.free) > 0 {
		idx := a.free[len(a.free)-1]
		a.free = a.free[:len(a.free)-1]
		s := &a.slots[idx]
		s.gen++
		s.node = n
		return Key{index: idx, gen: s.gen}
	}
	a.slots = append(a.slots, slot[T]{node: n, gen: 1})
	return Key{index: uint32(len(a.slots) - 1), gen: 1}
}

// get returns a pointer to the node stored under k. The pointer is only
// valid until the next insert.
func (a *arena[T]) get(k Key) (*Node[T], bool) {
	if int(k.index) >= len(a.slots) {
		return nil, false
	}
	s := &a.slots[k.index]
	if s.gen != k.gen || s.gen%2 == 0 {
		return nil, false
	}
	return &s.node, true
}

func (a *arena[T]) remove(k Key) bool {
	if _, ok := a.get(k); !ok {
		return false
	}
	s := &a.slots[k.index]
	s.gen++
	// Drop the payload so the arena doesn't keep it alive.
	s.node = Node[T]{}
	a.free = append(a.free, k.index)
	a.live--
	return true
}

func (a *arena[T]) len() int {
	return a.live
}
