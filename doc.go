// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package lfc provides lock-free concurrent containers for low-latency
// inter-thread communication on shared-memory multicore hardware.
//
// The package offers four containers built on a common storage substrate
// and a common reserve-then-commit publication discipline:
//
//   - SPSC: single-producer single-consumer bounded ring
//   - MPSC: multi-producer single-consumer bounded ring
//   - Fanout: multi-producer multi-consumer bounded ring with
//     independent per-subscriber read cursors
//   - PushVec: single-producer multi-consumer append-only vector with
//     read references that stay valid across producer growth
//
// # Quick Start
//
// Direct constructors (recommended for most cases):
//
//	q := lfc.NewSPSC[Event](1, 1024)
//	q := lfc.NewMPSC[*Request](1, 4096)
//	fo := lfc.NewFanout[Tick](1, 4096)
//	v := lfc.NewPushVec[Order](256)
//
// Builder API selects the ring from producer/consumer constraints:
//
//	q := lfc.BuildSPSC[Event](lfc.New(1, 1024).SingleProducer().SingleConsumer())
//	q := lfc.BuildMPSC[Event](lfc.New(1, 1024).SingleConsumer())
//	fo := lfc.BuildFanout[Event](lfc.New(1, 1024))
//
// # Storage Substrate
//
// Ring storage is a [Buffer]: an array of cache-line-sized tiles that
// spreads consecutive monotone indices round-robin across tiles, so
// whenever the buffer has more than one tile a producer writing slot i
// and a consumer reading slot i-1 use different tiles; a single-tile
// buffer keeps every slot in that one tile. Constructors take a minimum tile count and a
// minimum element count; the larger requirement wins. The default
// [Pow2] policy rounds tile geometry to powers of two so every index
// calculation reduces to mask and shift; [Exact] packs as many elements
// per tile as physically fit at the cost of generic mod/div.
//
// # Basic Usage
//
// Ring Enqueue never fails and never drops: a producer facing a full
// ring spins until the consumer side frees a slot. Size the ring for
// your latency budget. Dequeue is non-blocking and reports emptiness
// as [ErrWouldBlock]:
//
//	v := 42
//	q.Enqueue(&v) // spins while full
//
//	elem, err := q.Dequeue()
//	if lfc.IsWouldBlock(err) {
//	    // ring is empty - poll again later
//	}
//
// # Fan-Out Delivery
//
// A [Fanout] ring delivers every element to every subscriber. Each
// subscription carries its own cursor; a subscriber created after
// elements were published starts at the current read head and does not
// replay history:
//
//	fo := lfc.NewFanout[Tick](1, 4096)
//	sub := fo.Subscribe()
//
//	tick, err := sub.Dequeue() // copies; other subscribers still read the slot
//	...
//	sub.Unsubscribe() // cooperative retire; reclaimed by the daemon
//
// Producer back-pressure is measured against the slowest live
// subscriber. A background [Daemon] callback periodically aggregates
// the minimum cursor and purges retired subscriptions; the process-wide
// daemon from [SharedDaemon] is used unless the builder supplies one.
//
// # Append-Only Vector
//
// [PushVec] supports a single appending producer and any number of
// polling readers. Growth copies into a fresh backing array and
// archives the old one, so a reference or iterator obtained before the
// growth keeps reading the values it saw:
//
//	v := lfc.NewPushVec[int](256)
//	n := 7
//	v.Append(&n)
//
//	it := v.Iter() // end captured now; unaffected by later appends
//	for it.Next() {
//	    process(it.Value())
//	}
//
// # Error Handling
//
// Dequeue on an empty ring returns [ErrWouldBlock], a control flow
// signal sourced from [code.hybscloud.com/iox] for ecosystem
// consistency; it is not a failure. PushVec.Resize with a shrinking
// target returns [ErrShrink]. Nothing is retried internally and no
// timeouts apply: the containers expose mechanism, deadline and
// cancellation policy belong to callers (for example a shared stop
// flag checked between Dequeue attempts, as [PinnedConsumer] does).
//
// # Thread Safety
//
// All operations are safe within their access pattern constraints:
//
//   - SPSC: one producer goroutine, one consumer goroutine
//   - MPSC: multiple producers, one consumer
//   - Fanout: multiple producers; each Subscription is single-consumer
//   - PushVec: one appending producer, any number of readers
//
// Violating these constraints causes undefined behavior including data
// corruption and races.
//
// # Race Detection
//
// Go's race detector cannot observe happens-before relationships
// established through atomic memory orderings on separate variables.
// The containers protect non-atomic element storage with acquire-release
// publication; the algorithms are correct, but the detector may report
// false positives. Tests incompatible with race detection skip
// themselves when [RaceEnabled] is true; the examples are excluded via
// //go:build !race.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors and
// poll backoff, [code.hybscloud.com/atomix] for atomic primitives with
// explicit memory ordering, [code.hybscloud.com/spin] for CPU pause
// instructions, and golang.org/x/sys for thread pinning on Linux.
package lfc
