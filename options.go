// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

// Options configures container creation.
type Options struct {
	// Producer/consumer constraints (determines ring type)
	singleProducer bool
	singleConsumer bool

	// Substrate geometry
	policy   Policy
	minLines int
	minElems int

	// Daemon for fan-out min-tail aggregation (nil → SharedDaemon)
	daemon *Daemon
}

// Builder creates containers with fluent configuration.
//
// Example:
//
//	// SPSC ring, exact element packing
//	q := lfc.BuildSPSC[Event](lfc.New(1, 1024).Exact().SingleProducer().SingleConsumer())
//
//	// Fan-out ring on a private daemon
//	fo := lfc.BuildFanout[Tick](lfc.New(4, 0).Daemon(d))
type Builder struct {
	opts Options
}

// New creates a builder for a substrate with at least minLines tiles
// or minElems elements, whichever requirement is larger. The default
// policy is Pow2.
//
// Panics if minLines < 1.
func New(minLines, minElems int) *Builder {
	if minLines < 1 {
		panic("lfc: buffer needs at least one cache line")
	}
	return &Builder{opts: Options{policy: Pow2, minLines: minLines, minElems: minElems}}
}

// Exact selects exact element packing per tile instead of the default
// power-of-two rounding. Index arithmetic becomes generic mod/div.
func (b *Builder) Exact() *Builder {
	b.opts.policy = Exact
	return b
}

// SingleProducer declares that only one goroutine will enqueue.
func (b *Builder) SingleProducer() *Builder {
	b.opts.singleProducer = true
	return b
}

// SingleConsumer declares that only one goroutine will dequeue.
func (b *Builder) SingleConsumer() *Builder {
	b.opts.singleConsumer = true
	return b
}

// Daemon selects the daemon that aggregates fan-out subscriber
// cursors. Defaults to [SharedDaemon]. Tests typically pass a private
// instance to avoid cross-test coupling.
func (b *Builder) Daemon(d *Daemon) *Builder {
	b.opts.daemon = d
	return b
}

// BuildSPSC creates an SPSC ring.
// Panics if the builder is not configured with SingleProducer().SingleConsumer().
func BuildSPSC[T any](b *Builder) *SPSC[T] {
	if !b.opts.singleProducer || !b.opts.singleConsumer {
		panic("lfc: BuildSPSC requires SingleProducer().SingleConsumer()")
	}
	return newSPSC[T](b.opts.policy, b.opts.minLines, b.opts.minElems)
}

// BuildMPSC creates an MPSC ring.
// Panics if the builder is not configured with SingleConsumer() only.
func BuildMPSC[T any](b *Builder) *MPSC[T] {
	if b.opts.singleProducer || !b.opts.singleConsumer {
		panic("lfc: BuildMPSC requires SingleConsumer() without SingleProducer()")
	}
	return newMPSC[T](b.opts.policy, b.opts.minLines, b.opts.minElems)
}

// BuildFanout creates a fan-out ring.
// Panics if the builder has a consumer constraint set: every fan-out
// subscription is an independent consumer.
func BuildFanout[T any](b *Builder) *Fanout[T] {
	if b.opts.singleConsumer {
		panic("lfc: BuildFanout requires no SingleConsumer constraint")
	}
	d := b.opts.daemon
	if d == nil {
		d = SharedDaemon()
	}
	return newFanout[T](b.opts.policy, b.opts.minLines, b.opts.minElems, d)
}

// BuildVec creates an append-only vector sized from the builder's
// minimum element count.
// Panics unless the builder is configured with SingleProducer() and
// without SingleConsumer().
func BuildVec[T any](b *Builder) *PushVec[T] {
	if !b.opts.singleProducer || b.opts.singleConsumer {
		panic("lfc: BuildVec requires SingleProducer() without SingleConsumer()")
	}
	return NewPushVec[T](b.opts.minElems)
}
