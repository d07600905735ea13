// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import (
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// PushVec is a single-producer multi-consumer append-only vector.
//
// One dedicated producer goroutine appends; any number of reader
// goroutines access elements below Size with zero synchronization
// beyond an atomic pointer load. There is no erase and no shrink: once
// appended, an element at a given logical index is never moved or
// overwritten within any single backing array.
//
// Growth allocates a fresh backing array, copies the published prefix,
// archives the old backing, and publishes the new pointer with release
// semantics. References and iterators handed to readers before a
// growth keep reading the archived backing; DropOld releases the
// producer's archive when those values are no longer needed.
//
// atomix exposes no typed pointer, and parking a *[]T in a Uintptr
// would hide the backing from the garbage collector, so the pointer is
// published through sync/atomic.Pointer.
type PushVec[T any] struct {
	current atomic.Pointer[[]T]
	archive [][]T // producer-only: backings retired by growth
	size    atomix.Uint64
}

// NewPushVec creates a vector with room for at least initialCapacity
// elements before the first growth. Capacities below one are raised
// to one.
func NewPushVec[T any](initialCapacity int) *PushVec[T] {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	backing := make([]T, initialCapacity)
	v := &PushVec[T]{}
	v.current.Store(&backing)
	return v
}

// grow publishes a new backing of the given capacity, copying the
// published prefix and archiving the old backing.
func (v *PushVec[T]) grow(capacity uint64) []T {
	old := *v.current.Load()
	next := make([]T, capacity)
	copy(next, old[:v.size.LoadRelaxed()])
	v.archive = append(v.archive, old)
	v.current.Store(&next)
	return next
}

// Append adds an element (producer only), doubling capacity when the
// vector is full, then publishes the new size with release semantics.
func (v *PushVec[T]) Append(elem *T) {
	n := v.size.LoadRelaxed()
	backing := *v.current.Load()
	if n >= uint64(len(backing)) {
		backing = v.grow(2 * uint64(len(backing)))
	}
	backing[n] = *elem
	v.size.StoreRelease(n + 1)
}

// AppendZero appends a zero-valued element (producer only) and returns
// a pointer to it for in-place construction. The element is already
// visible to readers when AppendZero returns; any mutation through the
// pointer races with readers unless the element's fields are
// themselves atomic.
func (v *PushVec[T]) AppendZero() *T {
	n := v.size.LoadRelaxed()
	backing := *v.current.Load()
	if n >= uint64(len(backing)) {
		backing = v.grow(2 * uint64(len(backing)))
	}
	v.size.StoreRelease(n + 1)
	return &backing[n]
}

// Reserve ensures capacity for at least k elements (producer only),
// growing the backing if needed. No-op when capacity is already
// sufficient; the archive grows only on actual reallocation.
func (v *PushVec[T]) Reserve(k int) {
	if k > len(*v.current.Load()) {
		v.grow(uint64(k))
	}
}

// Resize grows the logical length to k (producer only); the newly
// exposed elements are zero-valued. Returns ErrShrink if k is below
// the current size.
func (v *PushVec[T]) Resize(k int) error {
	if uint64(k) < v.size.LoadRelaxed() {
		return ErrShrink
	}
	v.Reserve(k)
	v.size.StoreRelease(uint64(k))
	return nil
}

// DropOld discards every archived backing array (producer only).
// Readers still holding references into an archived backing keep a
// valid view of the values they saw, but that view stops tracking the
// vector; only call DropOld when such references are no longer in use.
func (v *PushVec[T]) DropOld() {
	v.archive = nil
}

// Size returns the published logical length (acquire ordering).
func (v *PushVec[T]) Size() int {
	return int(v.size.LoadAcquire())
}

// Cap returns the capacity of the currently published backing array.
func (v *PushVec[T]) Cap() int {
	return len(*v.current.Load())
}

// At returns a pointer to element i in the currently published
// backing array. The caller must ensure i < Size; only indices outside
// the backing array (i < 0 or i >= Cap) panic.
func (v *PushVec[T]) At(i int) *T {
	return &(*v.current.Load())[i]
}

// Iter returns a forward iterator over the elements published at the
// moment of the call. The iterator pins the current backing array, so
// its references stay valid across later producer growth; appends
// after Iter are not observed unless the caller rebinds with a fresh
// Iter.
func (v *PushVec[T]) Iter() Iterator[T] {
	end := int(v.size.LoadAcquire())
	return Iterator[T]{backing: *v.current.Load(), idx: -1, end: end}
}

// Iterator is an index-based forward iterator over a [PushVec]. The
// end position is captured at construction.
type Iterator[T any] struct {
	backing []T
	idx     int
	end     int
}

// Next advances to the next element, reporting whether one exists.
func (it *Iterator[T]) Next() bool {
	if it.idx+1 >= it.end {
		return false
	}
	it.idx++
	return true
}

// Value returns a copy of the current element.
func (it *Iterator[T]) Value() T {
	return it.backing[it.idx]
}

// Ref returns a pointer to the current element. The pointer stays
// valid across producer growth for as long as the iterator (or any
// other reference into the same backing) is held.
func (it *Iterator[T]) Ref() *T {
	return &it.backing[it.idx]
}
