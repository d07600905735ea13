// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import (
	"runtime"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// PinnedConsumer launches a goroutine locked to an OS thread and
// pinned to the given CPU core that drains c until stop is set,
// invoking handler for each element. Polling is adaptive: continuous
// while elements arrive, backing off while the source is empty.
//
// The returned channel is closed when the consumer exits. Pinning is
// best-effort; on platforms without affinity support the consumer
// still runs on its own locked thread.
func PinnedConsumer[T any](core int, c Consumer[T], stop *atomix.Bool, handler func(T)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		runtime.LockOSThread()
		_ = setAffinity(core)
		defer func() {
			runtime.UnlockOSThread()
			close(done)
		}()

		backoff := iox.Backoff{}
		for !stop.LoadAcquire() {
			elem, err := c.Dequeue()
			if err != nil {
				backoff.Wait()
				continue
			}
			backoff.Reset()
			handler(elem)
		}
	}()
	return done
}
