// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

// Fanout is a multi-producer multi-consumer ring that delivers every
// committed element to every subscriber. Unlike a competitive MPMC
// queue, consumers do not race for elements: each [Subscription]
// carries its own read cursor over the shared stream.
//
// Producers share the MPSC hot path (fetch-and-add reservation, commit
// barrier) but measure free space against the slowest live subscriber.
// That minimum cursor is re-aggregated by a [Daemon] callback
// registered at construction; the callback also purges retired
// subscriptions. Call Close when the ring is no longer needed to
// deregister the callback.
type Fanout[T any] struct {
	buf *Buffer[T]
	wc  WriteConfirm

	_       pad
	minTail atomix.Uint64 // min over live subscriber cursors
	_       pad

	capacity   uint64
	freeNeeded uint64 // capacity-1

	mu   sync.Mutex // guards subs; held off the hot path only
	subs []*Subscription[T]

	daemon *Daemon
	key    Key
}

// Subscription is a per-consumer cursor into a [Fanout] ring. Created
// exclusively by Subscribe; safe for one consuming goroutine.
type Subscription[T any] struct {
	buf *Buffer[T]
	wc  *WriteConfirm

	_    pad
	tail atomix.Uint64 // consumer cursor
	_    pad
	live atomix.Bool
}

// NewFanout creates a fan-out ring with at least minLines tiles or
// minElems elements under the Pow2 policy, registered with the shared
// daemon. Panics if minLines < 1.
func NewFanout[T any](minLines, minElems int) *Fanout[T] {
	return newFanout[T](Pow2, minLines, minElems, SharedDaemon())
}

func newFanout[T any](policy Policy, minLines, minElems int, d *Daemon) *Fanout[T] {
	buf := NewBuffer[T](policy, minLines, minElems)
	fo := &Fanout[T]{
		buf:        buf,
		capacity:   uint64(buf.Len()),
		freeNeeded: uint64(buf.Len()) - 1,
		daemon:     d,
	}
	fo.key = d.AddCallback(fo.updateMinTail)
	return fo
}

// updateMinTail recomputes the slowest live cursor and drops retired
// subscriptions. Runs on the daemon worker. The seed is the current
// read head, so with no subscribers the ring counts as empty and
// producers are never throttled by stale cursors.
func (fo *Fanout[T]) updateMinTail() {
	fo.mu.Lock()
	defer fo.mu.Unlock()

	minTail := fo.wc.ReadIndex()
	n := 0
	for _, sub := range fo.subs {
		if !sub.live.LoadAcquire() {
			continue
		}
		if tail := sub.tail.LoadRelaxed(); tail < minTail {
			minTail = tail
		}
		fo.subs[n] = sub
		n++
	}
	for i := n; i < len(fo.subs); i++ {
		fo.subs[i] = nil
	}
	fo.subs = fo.subs[:n]

	fo.minTail.StoreRelease(minTail)
}

// Subscribe creates a new independent subscription. Its cursor starts
// at the current read head: elements committed before Subscribe
// returns are not delivered to this subscriber.
//
// The ring owns the returned subscription; after Unsubscribe it is
// reclaimed asynchronously by the daemon pass.
func (fo *Fanout[T]) Subscribe() *Subscription[T] {
	fo.mu.Lock()
	defer fo.mu.Unlock()

	sub := &Subscription[T]{buf: fo.buf, wc: &fo.wc}
	sub.tail.StoreRelaxed(fo.wc.ReadIndex())
	sub.live.StoreRelaxed(true)
	fo.subs = append(fo.subs, sub)
	return sub
}

// Enqueue publishes an element to all subscribers (multiple producers
// safe). Spins while the slowest live subscriber is capacity-1 slots
// behind; never fails, never drops.
func (fo *Fanout[T]) Enqueue(elem *T) {
	index := fo.wc.Reserve()

	sw := spin.Wait{}
	for index-fo.minTail.LoadRelaxed() >= fo.freeNeeded {
		sw.Once()
	}

	*fo.buf.Get(index) = *elem
	fo.wc.Commit(index)
}

// Size returns the committed element count not yet consumed by the
// slowest subscriber, as of the daemon's last aggregation pass.
func (fo *Fanout[T]) Size() int {
	return int(fo.wc.ReadIndex() - fo.minTail.LoadRelaxed())
}

// Cap returns the total slot count of the backing substrate.
func (fo *Fanout[T]) Cap() int {
	return int(fo.capacity)
}

// Close deregisters the min-tail callback from the daemon. The ring
// must be quiescent; subscriptions keep working but producer
// back-pressure stops being refreshed.
func (fo *Fanout[T]) Close() {
	fo.daemon.RemoveCallback(fo.key)
}

// Dequeue reads the next element for this subscriber. The slot is
// copied, not cleared: other subscribers may still read it.
// Returns (zero-value, ErrWouldBlock) if nothing new is committed.
func (s *Subscription[T]) Dequeue() (T, error) {
	readHead := s.wc.ReadIndex()
	tail := s.tail.LoadRelaxed()
	if readHead <= tail {
		var zero T
		return zero, ErrWouldBlock
	}

	elem := *s.buf.Get(tail)
	s.tail.StoreRelease(tail + 1)
	return elem, nil
}

// Unsubscribe retires this subscription. Dequeue remains safe to call
// afterwards but is not required to make progress; the daemon drops
// the subscription from the registry on its next pass, releasing any
// back-pressure it was exerting.
func (s *Subscription[T]) Unsubscribe() {
	s.live.StoreRelease(false)
}
