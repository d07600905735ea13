// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package lfc

import "unsafe"

// cacheLineSize is the conventional x86-64 cache line size in bytes.
const cacheLineSize = 64

// pad is cache line padding to prevent false sharing.
type pad [cacheLineSize]byte

// padShort is padding to fill a cache line after an 8-byte field.
type padShort [cacheLineSize - 8]byte

// Policy selects how tile geometry is rounded.
//
// Pow2 rounds the per-tile element count down and the tile count up to
// powers of two, so index decomposition reduces to mask and shift.
// Exact packs as many elements per tile as physically fit and keeps
// generic mod/div arithmetic.
type Policy int

const (
	// Pow2 is the default policy: branchless mask/shift indexing.
	Pow2 Policy = iota
	// Exact trades branchless indexing for denser element packing.
	Exact
)

// pow2Ceil returns the smallest power of two >= n (n >= 1).
func pow2Ceil(n uint64) uint64 {
	if n < 2 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}

// pow2Floor returns the greatest power of two <= n (n >= 1).
func pow2Floor(n uint64) uint64 {
	c := pow2Ceil(n)
	if c > n {
		c >>= 1
	}
	return c
}

// log2Floor returns floor(log2(n)) for n >= 1.
func log2Floor(n uint64) uint {
	out := uint(0)
	for n > 1 {
		n >>= 1
		out++
	}
	return out
}

// Buffer is a false-sharing-optimized storage substrate: a contiguous
// array of tiles, each tile a cache-line-sized group of perLine
// elements. A monotone index i maps to tile i mod lines and, within
// the tile, to slot (i mod Len()) div lines. Consecutive indices land
// on consecutive tiles, so indices fewer than Lines() apart are stored
// in different tiles; with a single tile every index shares it.
//
// Get performs no range check beyond the modular wrap; callers own the
// monotone-counter discipline that keeps live indices inside one
// generation of the ring.
type Buffer[T any] struct {
	cells []T

	lines   uint64 // tile count M
	perLine uint64 // elements per tile K
	size    uint64 // M*K

	// mask/shift forms, valid only under Pow2
	lineMask uint64 // M-1
	flatMask uint64 // M*K-1
	divShift uint   // log2(M)

	policy Policy
}

// NewBuffer creates a substrate with at least minLines tiles or enough
// tiles to hold minElems elements, whichever is larger. Under Pow2 the
// final tile count is rounded up to a power of two.
//
// Panics if minLines < 1.
func NewBuffer[T any](policy Policy, minLines, minElems int) *Buffer[T] {
	if minLines < 1 {
		panic("lfc: buffer needs at least one cache line")
	}
	if minElems < 0 {
		minElems = 0
	}

	var zero T
	elemSize := uint64(unsafe.Sizeof(zero))

	perLine := uint64(1)
	if elemSize > 0 && elemSize < cacheLineSize {
		perLine = cacheLineSize / elemSize
	}
	if policy == Pow2 {
		perLine = pow2Floor(perLine)
	}

	lines := uint64(minLines)
	if need := (uint64(minElems) + perLine - 1) / perLine; need > lines {
		lines = need
	}
	if policy == Pow2 {
		lines = pow2Ceil(lines)
	}

	b := &Buffer[T]{
		cells:   make([]T, lines*perLine),
		lines:   lines,
		perLine: perLine,
		size:    lines * perLine,
		policy:  policy,
	}
	if policy == Pow2 {
		b.lineMask = lines - 1
		b.flatMask = b.size - 1
		b.divShift = log2Floor(lines)
	}
	return b
}

// Get returns the storage cell for monotone index i. The index wraps
// modulo Len(); distinct live indices within one ring generation map
// to distinct cells.
func (b *Buffer[T]) Get(i uint64) *T {
	var line, slot uint64
	if b.policy == Pow2 {
		line = i & b.lineMask
		slot = (i & b.flatMask) >> b.divShift
	} else {
		line = i % b.lines
		slot = (i % b.size) / b.lines
	}
	return &b.cells[line*b.perLine+slot]
}

// Len returns the total element capacity, lines*perLine.
func (b *Buffer[T]) Len() int {
	return int(b.size)
}

// Lines returns the tile count.
func (b *Buffer[T]) Lines() int {
	return int(b.lines)
}

// PerLine returns the number of elements stored per tile.
func (b *Buffer[T]) PerLine() int {
	return int(b.perLine)
}
