// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// MPSC is a multi-producer single-consumer bounded ring.
//
// Producers reserve slots through the [WriteConfirm] barrier (a single
// fetch-and-add), write into the substrate, then commit. Elements
// become visible to the consumer in strict reservation order even when
// producer writes complete out of order: a commit at index j waits for
// every reservation below j. The consumer owns its tail exclusively
// and is never contended by producers.
type MPSC[T any] struct {
	buf *Buffer[T]
	wc  WriteConfirm

	_    pad
	tail atomix.Uint64 // first unconsumed slot
	_    pad

	capacity   uint64
	freeNeeded uint64 // capacity-1
}

// NewMPSC creates an MPSC ring with at least minLines tiles or
// minElems elements under the Pow2 policy. Panics if minLines < 1.
func NewMPSC[T any](minLines, minElems int) *MPSC[T] {
	return newMPSC[T](Pow2, minLines, minElems)
}

func newMPSC[T any](policy Policy, minLines, minElems int) *MPSC[T] {
	buf := NewBuffer[T](policy, minLines, minElems)
	return &MPSC[T]{
		buf:        buf,
		capacity:   uint64(buf.Len()),
		freeNeeded: uint64(buf.Len()) - 1,
	}
}

// Enqueue publishes an element (multiple producers safe). Spins while
// the ring is full, then again in Commit until all earlier
// reservations have committed; never fails, never drops.
func (q *MPSC[T]) Enqueue(elem *T) {
	index := q.wc.Reserve()

	sw := spin.Wait{}
	for index-q.tail.LoadRelaxed() >= q.freeNeeded {
		sw.Once()
	}

	*q.buf.Get(index) = *elem
	q.wc.Commit(index)
}

// Dequeue removes and returns an element (single consumer only).
// Returns (zero-value, ErrWouldBlock) if the ring is empty.
func (q *MPSC[T]) Dequeue() (T, error) {
	readHead := q.wc.ReadIndex()
	tail := q.tail.LoadRelaxed()
	if readHead <= tail {
		var zero T
		return zero, ErrWouldBlock
	}

	slot := q.buf.Get(tail)
	elem := *slot
	var zero T
	*slot = zero
	q.tail.StoreRelease(tail + 1)
	return elem, nil
}

// Size returns the number of committed elements not yet consumed.
// Approximate under concurrency.
func (q *MPSC[T]) Size() int {
	return int(q.wc.ReadIndex() - q.tail.LoadRelaxed())
}

// Cap returns the total slot count of the backing substrate.
func (q *MPSC[T]) Cap() int {
	return int(q.capacity)
}
