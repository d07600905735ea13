// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

// Queue is the combined producer-consumer interface for a bounded ring.
//
// Enqueue spins while the ring is full; Dequeue is non-blocking and
// returns ErrWouldBlock when the ring is empty. Size is approximate
// under concurrency; Cap is the total slot count of the backing
// substrate (one slot stays vacant to distinguish full from empty).
type Queue[T any] interface {
	Producer[T]
	Consumer[T]
	Cap() int
	Size() int
}

// Producer is the interface for publishing elements into a ring.
//
// The element is passed by pointer to avoid copying large structs; the
// ring stores a copy of the pointed-to value, so the original can be
// modified after Enqueue returns.
type Producer[T any] interface {
	// Enqueue publishes an element. It spins while the ring is full
	// and returns only after the element is committed; it never fails
	// and never drops.
	//
	// Thread safety depends on ring type:
	//   - SPSC: single producer only
	//   - MPSC/Fanout: multiple producers safe
	Enqueue(elem *T)
}

// Consumer is the interface for draining elements.
//
// Dequeue never blocks; emptiness is reported as ErrWouldBlock. How
// the slot is treated afterwards depends on the ring: single-consumer
// rings move the element out and clear the slot, fan-out subscriptions
// copy it so other subscribers can still read the same slot.
type Consumer[T any] interface {
	// Dequeue removes and returns the next element.
	// Returns (zero-value, ErrWouldBlock) if nothing is readable.
	Dequeue() (T, error)
}
