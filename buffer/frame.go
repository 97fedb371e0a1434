package buffer

import (
	"sync/atomic"

	"github.com/latticedb/bptreeindex/storage/disk"
)

// frame is one slot of the buffer pool: a PageSize byte buffer plus the
// bookkeeping the pool needs to decide when it may be evicted.
type frame struct {
	id     int
	Data   []byte
	pins   atomic.Int32
	dirty  bool
	pageId disk.PageId
}

func newFrame(id int) *frame {
	return &frame{id: id, Data: make([]byte, disk.PageSize)}
}

func (f *frame) pin() int32   { return f.pins.Add(1) }
func (f *frame) unpin() int32 { return f.pins.Add(-1) }
func (f *frame) pinCount() int32 { return f.pins.Load() }

func (f *frame) reset(pageId disk.PageId) {
	f.dirty = false
	f.pins.Store(0)
	f.pageId = pageId
	clear(f.Data)
}
