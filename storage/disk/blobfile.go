// Package disk implements the paged file backing a B+Tree index: a single
// memory-mapped blob file addressed by fixed-size page identifiers.
package disk

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// PageSize is the fixed size, in bytes, of every page in a blob file.
const PageSize = 4096

// PageId addresses a page inside a blob file. The zero value is reserved
// as the "no such page" sentinel.
type PageId uint32

// InvalidPageId is the sentinel stored in pointer slots that reference no
// page.
const InvalidPageId PageId = 0

const (
	initialFileSize = 64 * PageSize
	growthFactor    = 2
)

// BlobFile is a growable, memory-mapped paged file. Pages are never
// freed: the index this file backs never deletes entries, so no free
// list is needed.
type BlobFile struct {
	mu       sync.RWMutex
	file     *os.File
	data     []byte
	pageNext PageId // next page id to hand out on AllocPage
}

// pageNextOff is where the next-page-id counter lives inside page 0: the
// file's eager truncation to initialFileSize means the file's length is
// a capacity bound, not a record of how many pages are actually in use,
// so that count has to be persisted explicitly rather than derived.
const pageNextOff = 0

// CreateOrOpen opens path if it exists, or creates it with one reserved
// page (page 0, holding the allocator's bookkeeping — page ids handed
// out to callers start at 1). The second return value reports whether
// the file was freshly created, mirroring the create-vs-reopen branch
// every caller of this package needs to take.
func CreateOrOpen(path string) (bf *BlobFile, created bool, err error) {
	_, statErr := os.Stat(path)
	created = os.IsNotExist(statErr)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, false, fmt.Errorf("disk: open %s: %w", path, err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("disk: stat %s: %w", path, err)
	}

	size := info.Size()
	if size < initialFileSize {
		if err := f.Truncate(initialFileSize); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("disk: truncate %s: %w", path, err)
		}
		size = initialFileSize
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, false, fmt.Errorf("disk: mmap %s: %w", path, err)
	}

	bf = &BlobFile{file: f, data: data}
	if created {
		bf.pageNext = 1
		bf.writePageNextLocked()
	} else {
		bf.pageNext = PageId(binary.LittleEndian.Uint32(bf.data[pageNextOff : pageNextOff+4]))
	}
	return bf, created, nil
}

func (bf *BlobFile) writePageNextLocked() {
	binary.LittleEndian.PutUint32(bf.data[pageNextOff:pageNextOff+4], uint32(bf.pageNext))
}

// PageCount reports one past the highest page id ever allocated: valid
// page ids run from 1 to PageCount()-1.
func (bf *BlobFile) PageCount() PageId {
	bf.mu.RLock()
	defer bf.mu.RUnlock()
	return bf.pageNext
}

// AllocPage reserves the next page identifier, growing the mapping if
// necessary, and zeroes the page's bytes.
func (bf *BlobFile) AllocPage() (PageId, error) {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	id := bf.pageNext
	bf.pageNext++

	required := int64(bf.pageNext) * PageSize
	if required > int64(len(bf.data)) {
		if err := bf.growLocked(required); err != nil {
			return InvalidPageId, err
		}
	}

	bf.writePageNextLocked()
	clear(bf.data[int64(id)*PageSize : int64(id+1)*PageSize])
	return id, nil
}

func (bf *BlobFile) growLocked(required int64) error {
	newSize := int64(len(bf.data))
	if newSize == 0 {
		newSize = initialFileSize
	}
	for newSize < required {
		newSize *= growthFactor
	}

	if err := unix.Munmap(bf.data); err != nil {
		return fmt.Errorf("disk: munmap during grow: %w", err)
	}
	if err := bf.file.Truncate(newSize); err != nil {
		return fmt.Errorf("disk: truncate during grow: %w", err)
	}
	data, err := unix.Mmap(int(bf.file.Fd()), 0, int(newSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("disk: remap during grow: %w", err)
	}
	bf.data = data
	return nil
}

// ReadAt copies the bytes of page id into dst, which must be PageSize
// bytes long.
func (bf *BlobFile) ReadAt(id PageId, dst []byte) error {
	bf.mu.RLock()
	defer bf.mu.RUnlock()

	off := int64(id) * PageSize
	if off+PageSize > int64(len(bf.data)) {
		return fmt.Errorf("disk: page %d out of range", id)
	}
	copy(dst, bf.data[off:off+PageSize])
	return nil
}

// WriteAt copies src, which must be PageSize bytes long, into page id.
func (bf *BlobFile) WriteAt(id PageId, src []byte) error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	off := int64(id) * PageSize
	if off+PageSize > int64(len(bf.data)) {
		return fmt.Errorf("disk: page %d out of range", id)
	}
	copy(bf.data[off:off+PageSize], src)
	return nil
}

// Sync flushes the mapping to stable storage.
func (bf *BlobFile) Sync() error {
	bf.mu.RLock()
	defer bf.mu.RUnlock()
	return unix.Msync(bf.data, unix.MS_SYNC)
}

// Close unmaps and closes the underlying file.
func (bf *BlobFile) Close() error {
	bf.mu.Lock()
	defer bf.mu.Unlock()

	if bf.data != nil {
		if err := unix.Munmap(bf.data); err != nil {
			return fmt.Errorf("disk: munmap on close: %w", err)
		}
		bf.data = nil
	}
	return bf.file.Close()
}
