// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build linux

package lfc

import "golang.org/x/sys/unix"

// setAffinity pins the calling OS thread to the given CPU core.
// Best-effort: scheduling policy errors are reported, not fatal.
func setAffinity(cpu int) error {
	var set unix.CPUSet
	set.Zero()
	set.Set(cpu)
	return unix.SchedSetaffinity(0, &set)
}
