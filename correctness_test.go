// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/lfc"
)

// =============================================================================
// Test Helpers
// =============================================================================

// retryWithTimeout retries f until it returns true or timeout expires.
// Reports failure with the given message if timeout is reached.
func retryWithTimeout(t *testing.T, timeout time.Duration, f func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	backoff := iox.Backoff{}
	for !f() {
		if time.Now().After(deadline) {
			t.Fatalf("timeout after %v: %s", timeout, msg)
		}
		backoff.Wait()
	}
}

// =============================================================================
// SPSC Correctness
// =============================================================================

// TestSPSCWrapAround pushes and pops through five full generations of
// the ring; each pop must yield exactly the value just pushed.
func TestSPSCWrapAround(t *testing.T) {
	q := lfc.NewSPSC[int](1, 8)
	if q.Cap() < 8 {
		t.Fatalf("Cap: got %d, want >= 8", q.Cap())
	}

	for i := range 5 * q.Cap() {
		q.Enqueue(&i)
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue(%d): %v", i, err)
		}
		if val != i {
			t.Fatalf("Dequeue(%d): got %d, want %d", i, val, i)
		}
	}
}

// TestSPSCFullRingBlocks verifies the full-ring policy: with capacity-1
// elements in flight the producer spins, resumes as soon as one slot
// frees up, and loses nothing.
func TestSPSCFullRingBlocks(t *testing.T) {
	if lfc.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}

	q := lfc.NewSPSC[int](1, 8)
	c := q.Cap()

	// Pre-fill to capacity-1: the usable limit.
	for i := range c - 1 {
		q.Enqueue(&i)
	}

	var completed atomix.Bool
	go func() {
		v := 999
		q.Enqueue(&v) // spins: no free slot
		completed.StoreRelease(true)
	}()

	time.Sleep(20 * time.Millisecond)
	if completed.LoadAcquire() {
		t.Fatal("Enqueue on full ring returned without a free slot")
	}

	val, err := q.Dequeue()
	if err != nil || val != 0 {
		t.Fatalf("Dequeue: got %d,%v, want 0,nil", val, err)
	}

	retryWithTimeout(t, 2*time.Second, func() bool {
		return completed.LoadAcquire()
	}, "producer still blocked after a slot freed up")

	// Drain: 1 .. c-2, then the late 999.
	for i := 1; i < c-1; i++ {
		val, err := q.Dequeue()
		if err != nil {
			t.Fatalf("drain Dequeue(%d): %v", i, err)
		}
		if val != i {
			t.Fatalf("drain Dequeue(%d): got %d, want %d", i, val, i)
		}
	}
	val, err = q.Dequeue()
	if err != nil || val != 999 {
		t.Fatalf("last Dequeue: got %d,%v, want 999,nil", val, err)
	}
	if _, err := q.Dequeue(); !errors.Is(err, lfc.ErrWouldBlock) {
		t.Fatalf("Dequeue after drain: got %v, want ErrWouldBlock", err)
	}
}

// TestSPSCConcurrentTransfer streams values through a small ring and
// verifies the consumer sees the exact producer sequence.
func TestSPSCConcurrentTransfer(t *testing.T) {
	if lfc.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}

	q := lfc.NewSPSC[uint64](1, 16)
	const total = 100_000

	go func() {
		for i := uint64(0); i < total; i++ {
			q.Enqueue(&i)
		}
	}()

	backoff := iox.Backoff{}
	for want := uint64(0); want < total; {
		val, err := q.Dequeue()
		if err != nil {
			backoff.Wait()
			continue
		}
		backoff.Reset()
		if val != want {
			t.Fatalf("sequence broken: got %d, want %d", val, want)
		}
		want++
	}
}

// =============================================================================
// MPSC Correctness
// =============================================================================

// TestMPSCThroughput runs 8 producers each pushing 20000 encoded items
// through one consumer. Every producer's subsequence must arrive
// complete and in order.
func TestMPSCThroughput(t *testing.T) {
	if lfc.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}

	const producers = 8
	const perProducer = 20_000

	q := lfc.NewMPSC[uint64](1, 1024)

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			for seq := uint64(0); seq < perProducer; seq++ {
				v := id<<32 | seq
				q.Enqueue(&v)
			}
		}(uint64(p))
	}

	nextSeq := [producers]uint64{}
	popped := 0
	backoff := iox.Backoff{}
	for popped < producers*perProducer {
		val, err := q.Dequeue()
		if err != nil {
			backoff.Wait()
			continue
		}
		backoff.Reset()
		id := val >> 32
		seq := val & 0xffffffff
		if id >= producers {
			t.Fatalf("corrupt element: producer id %d", id)
		}
		if seq != nextSeq[id] {
			t.Fatalf("producer %d out of order: got seq %d, want %d", id, seq, nextSeq[id])
		}
		nextSeq[id]++
		popped++
	}
	wg.Wait()

	for id, n := range nextSeq {
		if n != perProducer {
			t.Fatalf("producer %d: %d items consumed, want %d", id, n, perProducer)
		}
	}
	if _, err := q.Dequeue(); !errors.Is(err, lfc.ErrWouldBlock) {
		t.Fatalf("Dequeue after drain: got %v, want ErrWouldBlock", err)
	}
}

// TestMPSCWrapAround exercises generation wrapping through a tiny ring
// with a single producer, under both policies.
func TestMPSCWrapAround(t *testing.T) {
	pow2 := lfc.NewMPSC[int](1, 8)
	exact := lfc.BuildMPSC[int](lfc.New(1, 8).Exact().SingleConsumer())

	for _, q := range []*lfc.MPSC[int]{pow2, exact} {
		for i := range 5 * q.Cap() {
			q.Enqueue(&i)
			val, err := q.Dequeue()
			if err != nil {
				t.Fatalf("Dequeue(%d): %v", i, err)
			}
			if val != i {
				t.Fatalf("Dequeue(%d): got %d, want %d", i, val, i)
			}
		}
	}
}

// =============================================================================
// Pinned Consumer
// =============================================================================

// TestPinnedConsumer drains an MPSC ring on a core-pinned thread and
// checks nothing is lost.
func TestPinnedConsumer(t *testing.T) {
	if lfc.RaceEnabled {
		t.Skip("skip: lock-free algorithm uses cross-variable memory ordering")
	}

	q := lfc.NewMPSC[int](1, 64)
	const total = 10_000

	var sum atomix.Int64
	var stop atomix.Bool
	done := lfc.PinnedConsumer(0, q, &stop, func(v int) {
		sum.Add(int64(v))
	})

	want := int64(0)
	for i := range total {
		q.Enqueue(&i)
		want += int64(i)
	}

	retryWithTimeout(t, 5*time.Second, func() bool {
		return sum.Load() == want
	}, "pinned consumer did not drain every element")

	stop.StoreRelease(true)
	<-done
}
