// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// WriteConfirm pairs a monotonically increasing write head with a read
// head to let multiple producers reserve slots and later confirm their
// writes.
//
// Protocol:
//
//  1. Reserve atomically fetch-and-increments the write head; the
//     returned index is the caller-exclusive slot.
//  2. Commit, called once the slot is fully written, advances the read
//     head from index to index+1. The CAS loop keeps commits in
//     reservation order even when producers finish out of order: a
//     producer holding index j spins until every reservation below j
//     has committed.
//  3. ReadIndex is polled by consumers to discover the committed
//     frontier; every slot below it is fully written (release/acquire
//     pairing through the read head).
//
// Both counters live on their own cache lines. The zero value is ready
// to use.
type WriteConfirm struct {
	_         pad
	writeHead atomix.Uint64 // next free reservation
	_         pad
	readHead  atomix.Uint64 // one past the highest committed index
	_         pad
}

// Reserve claims the next slot for writing.
// Safe for multiple concurrent producers.
func (w *WriteConfirm) Reserve() uint64 {
	return w.writeHead.AddAcqRel(1) - 1
}

// ReadIndex returns the committed frontier: one past the highest index
// whose write is visible to any observer of this value.
func (w *WriteConfirm) ReadIndex() uint64 {
	return w.readHead.LoadAcquire()
}

// Commit publishes the element at index, making ReadIndex at least
// index+1. If producers holding earlier reservations have not yet
// committed, Commit spins until they have; it never advances the read
// head past an unconfirmed reservation.
func (w *WriteConfirm) Commit(index uint64) {
	sw := spin.Wait{}
	for !w.readHead.CompareAndSwapAcqRel(index, index+1) {
		sw.Once()
	}
}
