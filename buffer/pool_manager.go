// Package buffer implements the BufferManager contract the B+Tree index
// depends on: a fixed-size frame cache with pin counting, LRU-K eviction,
// and a disk scheduler backing it, grounded on the classic buffer-pool
// shape (frame table, replacer, free list, one mutex + condvar).
package buffer

import (
	"fmt"
	"sync"

	"github.com/latticedb/bptreeindex/storage/disk"
)

// PoolManager is the concrete BufferManager: AllocPage/FetchPage/
// UnpinPage/FlushAll cover the full page-access contract the index
// needs from a buffer pool.
type PoolManager struct {
	mu         sync.Mutex
	cond       sync.Cond
	frames     []*frame
	pageTable  map[disk.PageId]int
	freeFrames []int
	replacer   *lrukReplacer
	scheduler  *disk.Scheduler
}

// NewPoolManager creates a pool of size frames backed by scheduler, with
// LRU-K eviction parameterized by k.
func NewPoolManager(size, k int, scheduler *disk.Scheduler) *PoolManager {
	frames := make([]*frame, size)
	free := make([]int, size)
	for i := range size {
		frames[i] = newFrame(i)
		free[i] = i
	}

	b := &PoolManager{
		frames:     frames,
		pageTable:  make(map[disk.PageId]int),
		freeFrames: free,
		replacer:   NewLrukReplacer(size, k),
		scheduler:  scheduler,
	}
	b.cond = *sync.NewCond(&b.mu)
	return b
}

// FetchPage pins and returns the page's frame, reading it from disk on a
// cache miss.
func (b *PoolManager) FetchPage(id disk.PageId) (*PageGuard, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		if idx, ok := b.pageTable[id]; ok {
			f := b.frames[idx]
			b.touchLocked(f)
			return &PageGuard{bpm: b, pageId: id, frame: f}, nil
		}

		f, err := b.claimFrameLocked()
		if err != nil {
			return nil, err
		}
		if f == nil {
			b.cond.Wait()
			continue
		}

		resp := <-b.scheduler.Schedule(disk.NewRequest(id, nil, false))
		if resp.Err != nil {
			return nil, fmt.Errorf("buffer: reading page %d: %w", id, resp.Err)
		}

		delete(b.pageTable, f.pageId)
		f.reset(id)
		copy(f.Data, resp.Data)
		b.pageTable[id] = f.id
		b.touchLocked(f)

		return &PageGuard{bpm: b, pageId: id, frame: f}, nil
	}
}

// AllocPage allocates a fresh page on disk and pins a zeroed frame for
// it, ready for the caller to populate and mark dirty before releasing.
func (b *PoolManager) AllocPage(file *disk.BlobFile) (disk.PageId, *PageGuard, error) {
	id, err := file.AllocPage()
	if err != nil {
		return disk.InvalidPageId, nil, err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	f, err := b.claimFrameLocked()
	if err != nil {
		return disk.InvalidPageId, nil, err
	}
	for f == nil {
		b.cond.Wait()
		f, err = b.claimFrameLocked()
		if err != nil {
			return disk.InvalidPageId, nil, err
		}
	}

	delete(b.pageTable, f.pageId)
	f.reset(id)
	b.pageTable[id] = f.id
	b.touchLocked(f)

	return id, &PageGuard{bpm: b, pageId: id, frame: f}, nil
}

// claimFrameLocked returns a frame ready to be repurposed (from the free
// list, or by evicting), or nil if none is currently available and the
// caller should wait. Must be called with b.mu held.
func (b *PoolManager) claimFrameLocked() (*frame, error) {
	if len(b.freeFrames) > 0 {
		idx := b.freeFrames[0]
		b.freeFrames = b.freeFrames[1:]
		return b.frames[idx], nil
	}

	evictIdx, err := b.replacer.evict()
	if err != nil {
		return nil, err
	}
	if evictIdx == InvalidFrameId {
		return nil, nil
	}

	f := b.frames[evictIdx]
	if f.dirty {
		resp := <-b.scheduler.Schedule(disk.NewRequest(f.pageId, append([]byte(nil), f.Data...), true))
		if resp.Err != nil {
			return nil, fmt.Errorf("buffer: flushing evicted page %d: %w", f.pageId, resp.Err)
		}
	}
	return f, nil
}

func (b *PoolManager) touchLocked(f *frame) {
	f.pin()
	b.replacer.recordAccess(f.id)
	b.replacer.setEvictable(f.id, false)
}

// unpin is invoked by PageGuard.Release.
func (b *PoolManager) unpin(f *frame, id disk.PageId, dirty bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if dirty {
		f.dirty = true
	}
	if f.unpin() <= 0 {
		b.replacer.setEvictable(f.id, true)
	}
	b.cond.Signal()
}

// UnpinPage is the direct form of the pin/unpin contract for callers
// that did not go through FetchPage/AllocPage's guard (none in this
// index, but kept as the named counterpart to touchLocked's pin).
func (b *PoolManager) UnpinPage(id disk.PageId, dirty bool) error {
	b.mu.Lock()
	idx, ok := b.pageTable[id]
	b.mu.Unlock()
	if !ok {
		return fmt.Errorf("buffer: unpin of page %d not resident", id)
	}
	b.unpin(b.frames[idx], id, dirty)
	return nil
}

// PinCount reports how many outstanding pins the index holds across the
// whole pool; used by tests to assert every FetchPage/AllocPage is
// matched by a Release.
func (b *PoolManager) PinCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	total := 0
	for _, f := range b.frames {
		total += int(f.pinCount())
	}
	return total
}

// FlushAll writes back every dirty frame. This pool backs exactly one
// file, so flushing the pool and flushing the file coincide.
func (b *PoolManager) FlushAll() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, f := range b.frames {
		if !f.dirty {
			continue
		}
		resp := <-b.scheduler.Schedule(disk.NewRequest(f.pageId, append([]byte(nil), f.Data...), true))
		if resp.Err != nil {
			return fmt.Errorf("buffer: flushing page %d: %w", f.pageId, resp.Err)
		}
		f.dirty = false
	}
	return nil
}
