/*
 * Copyright 2024 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package mem is the fixed-block memory pool: config.NumBlocks blocks of
// config.BlockSize bytes, carved once out of a single arena and handed out
// and reclaimed by index. It mirrors k_memory.c's block heap, with the
// double-free/bad-pointer detection styled after unsafex/malloc's bitmap
// allocator (a magic word stamped at the head of every live block).
//
// Pool itself never blocks a caller: TryAcquire reports failure immediately
// when the pool is exhausted, and the scheduler (which alone knows how to
// park a process on the blocked-on-resource queue) is responsible for
// retrying. This keeps mem free of any dependency on sched.
package mem

import (
	"encoding/binary"
	"unsafe"

	"github.com/bytedance/gopkg/lang/mcache"

	"github.com/rtxgo/kernel/config"
	"github.com/rtxgo/kernel/internal/xerr"
	"github.com/rtxgo/kernel/ring"
)

// liveMagic is stamped into the first 4 bytes of every block handed out by
// TryAcquire, and cleared (to freeMagic) on Release. A Release whose block
// does not carry liveMagic is either a double-free or a foreign pointer.
const (
	liveMagic uint32 = 0xB17C5A11
	freeMagic uint32 = 0xDEADF000
)

// Pool is the fixed block heap. The zero value is not usable; use New.
type Pool struct {
	arena     []byte
	blockSize int
	numBlocks int
	free      *ring.Ring[int] // indices of free blocks, FIFO
}

// New allocates the arena (config.NumBlocks*config.BlockSize bytes, via
// mcache so the allocation comes from the same size-classed arena the rest
// of the runtime's scratch buffers use) and marks every block free.
func New() *Pool {
	blockSize := config.BlockSize
	numBlocks := config.NumBlocks
	arena := mcache.Malloc(blockSize * numBlocks)
	p := &Pool{
		arena:     arena,
		blockSize: blockSize,
		numBlocks: numBlocks,
		free:      ring.New[int](numBlocks),
	}
	for i := 0; i < numBlocks; i++ {
		binary.LittleEndian.PutUint32(p.blockAt(i)[:4], freeMagic)
		p.free.PushBack(i)
	}
	return p
}

func (p *Pool) blockAt(i int) []byte {
	off := i * p.blockSize
	return p.arena[off : off+p.blockSize]
}

// TryAcquire hands out one free block, highest-free-index-first is not
// guaranteed -- only that it is FIFO among releases, matching the original
// heap's LIFO-free-list-as-stack being irrelevant to correctness (spec
// makes no ordering promise across distinct blocks).
func (p *Pool) TryAcquire() ([]byte, bool) {
	if p.free.Len() == 0 {
		return nil, false
	}
	idx := p.free.PopFront()
	blk := p.blockAt(idx)
	binary.LittleEndian.PutUint32(blk[:4], liveMagic)
	return blk[4:], true
}

// Release returns a block previously handed out by TryAcquire. It validates
// that blk actually came from this arena, is aligned to a block boundary,
// and is not already free, mirroring k_release_memory_block_valid's checks.
func (p *Pool) Release(blk []byte) error {
	if len(blk) != p.blockSize-4 {
		return xerr.ErrBadPointer
	}
	start := unsafe.Pointer(&p.arena[0])
	ptr := unsafe.Pointer(&blk[0])
	offset := uintptr(ptr) - uintptr(start) - 4
	if uintptr(ptr) < uintptr(start)+4 || int(offset) < 0 || int(offset) >= len(p.arena) {
		return xerr.ErrBadPointer
	}
	if int(offset)%p.blockSize != 0 {
		return xerr.ErrBadPointer
	}
	idx := int(offset) / p.blockSize
	header := p.blockAt(idx)
	if binary.LittleEndian.Uint32(header[:4]) != liveMagic {
		return xerr.ErrBadPointer
	}
	binary.LittleEndian.PutUint32(header[:4], freeMagic)
	p.free.PushBack(idx)
	return nil
}

// FreeCount reports how many blocks are currently unallocated.
func (p *Pool) FreeCount() int {
	return p.free.Len()
}

// BlockPayloadSize is the number of usable bytes per block once the
// liveness header is accounted for.
func BlockPayloadSize() int {
	return config.BlockSize - 4
}

// Reclaim restores a block handle's length to its full payload size after
// it has been re-sliced down to a shorter envelope text (as SendMessage
// callers routinely do). Release requires the full-length slice; a holder
// that only kept the shortened text can get the releasable handle back
// with Reclaim as long as the slice's capacity is exactly the payload size,
// which RequestMemoryBlock callers ensure by always slicing with a third
// index (blk[:n:BlockPayloadSize()]) rather than a plain blk[:n]. A block's
// own capacity runs on into the rest of the arena, so blk[:n:cap(blk)] would
// not do.
func Reclaim(text []byte) []byte {
	return text[:cap(text)]
}
