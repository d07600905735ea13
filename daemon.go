// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import (
	"sync"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// Key identifies a registered daemon callback.
type Key uint64

// Daemon is a background worker that repeatedly executes a registry of
// parameterless callbacks. It has no notion of period: as long as
// callbacks are registered it re-runs the full pass immediately.
//
// The registry is guarded by a mutex held for the duration of one
// pass. Callbacks must therefore be short and must not call back into
// AddCallback/RemoveCallback from within themselves; doing so would
// self-deadlock.
//
// Most callers want the process-wide instance from [SharedDaemon];
// independent instances (e.g. one per test) are created with
// [NewDaemon] and torn down with Close.
type Daemon struct {
	stop atomix.Bool
	done chan struct{}

	mu        sync.Mutex
	callbacks map[Key]func()
	nextKey   Key
}

// NewDaemon creates a daemon and immediately launches its worker
// goroutine.
func NewDaemon() *Daemon {
	d := &Daemon{
		done:      make(chan struct{}),
		callbacks: make(map[Key]func()),
	}
	go d.run()
	return d
}

func (d *Daemon) run() {
	defer close(d.done)
	backoff := iox.Backoff{}
	sw := spin.Wait{}
	for !d.stop.LoadAcquire() {
		if d.runCallbacks() == 0 {
			// Nothing registered: no contract depends on empty-pass
			// timing, so back off instead of burning a core.
			backoff.Wait()
			continue
		}
		backoff.Reset()
		sw.Once()
	}
}

// runCallbacks executes every registered callback once and reports how
// many ran. The mutex is held across the whole pass.
func (d *Daemon) runCallbacks() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, fn := range d.callbacks {
		fn()
	}
	return len(d.callbacks)
}

// AddCallback registers fn for execution on every daemon pass and
// returns an opaque key for later removal. Keys are never reused.
func (d *Daemon) AddCallback(fn func()) Key {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := d.nextKey
	d.nextKey++
	d.callbacks[key] = fn
	return key
}

// RemoveCallback deregisters the callback under key. Removing an
// unknown key is a no-op. If the callback is executing concurrently it
// finishes its current invocation but is not scheduled again after
// RemoveCallback returns.
func (d *Daemon) RemoveCallback(key Key) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.callbacks, key)
}

// Close signals the worker to stop and waits for it to exit.
// Close must not be called on the shared daemon.
func (d *Daemon) Close() {
	d.stop.StoreRelease(true)
	<-d.done
}

var (
	sharedOnce   sync.Once
	sharedDaemon *Daemon
)

// SharedDaemon returns the process-wide daemon, creating it on first
// access. The shared instance lives until process exit and is used by
// [NewFanout] unless the builder supplies another daemon.
func SharedDaemon() *Daemon {
	sharedOnce.Do(func() {
		sharedDaemon = NewDaemon()
	})
	return sharedDaemon
}
