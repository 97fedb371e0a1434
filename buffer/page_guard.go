package buffer

import "github.com/latticedb/bptreeindex/storage/disk"

// PageGuard is a scoped handle to a pinned frame. It unpins exactly once,
// on Release, marking the frame dirty iff MarkDirty was called first —
// this is the mechanism that makes the index's pin-balance discipline
// (every pin paired with exactly one unpin, dirty set iff mutated)
// mechanical rather than conventional.
type PageGuard struct {
	bpm      *PoolManager
	pageId   disk.PageId
	frame    *frame
	dirty    bool
	released bool
}

// PageId reports which page this guard pins.
func (g *PageGuard) PageId() disk.PageId { return g.pageId }

// Data returns the page's mutable byte slice, exactly PageSize long.
func (g *PageGuard) Data() []byte { return g.frame.Data }

// MarkDirty records that the page image was mutated under this guard.
func (g *PageGuard) MarkDirty() { g.dirty = true }

// Release unpins the frame, flagging it dirty if MarkDirty was called.
// Calling Release more than once is a no-op, so deferring it immediately
// after acquisition is always safe even on error paths that also call it
// explicitly.
func (g *PageGuard) Release() {
	if g == nil || g.released {
		return
	}
	g.released = true
	g.bpm.unpin(g.frame, g.pageId, g.dirty)
}
