// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !linux

package lfc

// setAffinity is a no-op on platforms without sched_setaffinity(2).
// The consumer still runs on a locked OS thread; placement is left to
// the scheduler.
func setAffinity(cpu int) error {
	return nil
}
