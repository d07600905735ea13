// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// SPSC is a single-producer single-consumer bounded ring on the tiled
// substrate.
//
// The producer reserves space from a private, non-atomic head and
// publishes with a single release store; the consumer polls the public
// head and advances its own tail. One slot stays permanently vacant to
// distinguish full from empty.
type SPSC[T any] struct {
	buf *Buffer[T]

	_           pad
	privateHead uint64 // producer-only reservation counter
	_           pad
	head        atomix.Uint64 // producer → consumer
	_           pad
	tail        atomix.Uint64 // consumer → producer
	_           pad

	capacity   uint64
	freeNeeded uint64 // capacity-1
}

// NewSPSC creates an SPSC ring with at least minLines tiles or
// minElems elements under the Pow2 policy. Panics if minLines < 1.
func NewSPSC[T any](minLines, minElems int) *SPSC[T] {
	return newSPSC[T](Pow2, minLines, minElems)
}

func newSPSC[T any](policy Policy, minLines, minElems int) *SPSC[T] {
	buf := NewBuffer[T](policy, minLines, minElems)
	return &SPSC[T]{
		buf:        buf,
		capacity:   uint64(buf.Len()),
		freeNeeded: uint64(buf.Len()) - 1,
	}
}

// Enqueue publishes an element (producer only). Spins while the ring
// is full; never fails, never drops.
func (q *SPSC[T]) Enqueue(elem *T) {
	index := q.privateHead
	q.privateHead++

	sw := spin.Wait{}
	for index-q.tail.LoadRelaxed() >= q.freeNeeded {
		sw.Once()
	}

	*q.buf.Get(index) = *elem
	q.head.StoreRelease(index + 1)
}

// Dequeue removes and returns an element (consumer only).
// Returns (zero-value, ErrWouldBlock) if the ring is empty.
func (q *SPSC[T]) Dequeue() (T, error) {
	tail := q.tail.LoadRelaxed()
	head := q.head.LoadAcquire()
	if tail >= head {
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

// Size returns the current depth. Approximate under concurrency; exact
// when called from the quiescent producer or consumer.
func (q *SPSC[T]) Size() int {
	return int(q.head.LoadAcquire() - q.tail.LoadAcquire())
}

// Cap returns the total slot count of the backing substrate.
func (q *SPSC[T]) Cap() int {
	return int(q.capacity)
}
