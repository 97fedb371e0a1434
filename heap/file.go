package heap

import (
	"fmt"
	"io"
	"os"

	"github.com/latticedb/bptreeindex/buffer"
	"github.com/latticedb/bptreeindex/index"
	"github.com/latticedb/bptreeindex/storage/disk"
)

// File is a disk-backed, append-only relation of fixed-size records.
// Record bytes are opaque to File; it is the index's job to interpret
// an attribute at a configured byte offset within them.
type File struct {
	path       string
	file       *disk.BlobFile
	pool       *buffer.PoolManager
	recordSize int
	capacity   int

	activePageId disk.PageId

	scanStarted bool
	scanPageId  disk.PageId
	scanSlot    int32
}

// Open creates a new heap file at path, or reopens an existing one,
// using a buffer pool of poolSize frames with LRU-K history length k.
func Open(path string, recordSize, poolSize, k int) (*File, error) {
	bf, created, err := disk.CreateOrOpen(path)
	if err != nil {
		return nil, err
	}

	pool := buffer.NewPoolManager(poolSize, k, disk.NewScheduler(bf))
	hf := &File{
		path:       path,
		file:       bf,
		pool:       pool,
		recordSize: recordSize,
		capacity:   capacityFor(disk.PageSize, recordSize),
	}

	if created {
		id, guard, err := pool.AllocPage(bf)
		if err != nil {
			return nil, fmt.Errorf("heap: allocating first page: %w", err)
		}
		newPageView(guard.Data(), recordSize).SetUsedCount(0)
		guard.MarkDirty()
		guard.Release()
		hf.activePageId = id
		return hf, nil
	}

	hf.activePageId = bf.PageCount() - 1
	return hf, nil
}

// Append writes record as a new tuple, allocating a fresh page once the
// active one is full, and returns its RecordId.
func (hf *File) Append(record []byte) (index.RecordId, error) {
	if len(record) != hf.recordSize {
		return index.RecordId{}, fmt.Errorf("heap: record is %d bytes, want %d", len(record), hf.recordSize)
	}

	guard, err := hf.pool.FetchPage(hf.activePageId)
	if err != nil {
		return index.RecordId{}, err
	}
	view := newPageView(guard.Data(), hf.recordSize)
	used := view.UsedCount()

	if int(used) >= hf.capacity {
		guard.Release()
		id, newGuard, err := hf.pool.AllocPage(hf.file)
		if err != nil {
			return index.RecordId{}, fmt.Errorf("heap: allocating page: %w", err)
		}
		hf.activePageId = id
		guard = newGuard
		view = newPageView(guard.Data(), hf.recordSize)
		view.SetUsedCount(0)
		used = 0
	}

	view.SetRecord(int(used), record)
	view.SetUsedCount(used + 1)
	guard.MarkDirty()
	guard.Release()

	return index.RecordId{PageNum: uint32(hf.activePageId), SlotNum: uint32(used) + 1}, nil
}

// GetRecord reads back the tuple identified by rid.
func (hf *File) GetRecord(rid index.RecordId) ([]byte, error) {
	guard, err := hf.pool.FetchPage(disk.PageId(rid.PageNum))
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	view := newPageView(guard.Data(), hf.recordSize)
	return append([]byte(nil), view.Record(int(rid.SlotNum-1))...), nil
}

// ScanNext returns the next tuple in page/slot order, or io.EOF once
// every allocated page has been read.
func (hf *File) ScanNext() (index.RecordId, []byte, error) {
	if !hf.scanStarted {
		hf.scanStarted = true
		hf.scanPageId = 1
		hf.scanSlot = 1
	}

	for {
		if hf.scanPageId >= hf.file.PageCount() {
			return index.RecordId{}, nil, io.EOF
		}

		guard, err := hf.pool.FetchPage(hf.scanPageId)
		if err != nil {
			return index.RecordId{}, nil, err
		}
		view := newPageView(guard.Data(), hf.recordSize)
		used := view.UsedCount()

		if hf.scanSlot > used {
			guard.Release()
			hf.scanPageId++
			hf.scanSlot = 1
			continue
		}

		data := append([]byte(nil), view.Record(int(hf.scanSlot-1))...)
		rid := index.RecordId{PageNum: uint32(hf.scanPageId), SlotNum: uint32(hf.scanSlot)}
		hf.scanSlot++
		guard.Release()
		return rid, data, nil
	}
}

// ResetScan rewinds ScanNext to the beginning of the relation.
func (hf *File) ResetScan() {
	hf.scanStarted = false
}

// Close flushes all dirty pages and releases the underlying file.
func (hf *File) Close() error {
	if err := hf.pool.FlushAll(); err != nil {
		return err
	}
	return hf.file.Close()
}

// Destroy closes the heap file and removes its backing file.
func (hf *File) Destroy() error {
	if err := hf.Close(); err != nil {
		return err
	}
	return os.Remove(hf.path)
}
