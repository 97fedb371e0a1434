package index

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/latticedb/bptreeindex/buffer"
	"github.com/latticedb/bptreeindex/storage/disk"
)

// HeapScanner is the minimal surface the bulk builder needs from a base
// relation: sequential tuples tagged with their RecordId, exhausted the
// same way an io.Reader signals end of input. Any heap implementation
// that returns io.EOF from ScanNext satisfies this without importing
// this package.
type HeapScanner interface {
	ScanNext() (RecordId, []byte, error)
}

// BPlusTree is a disk-backed secondary index over one int32-typed
// attribute of a fixed-layout base relation. All page access goes
// through a buffer pool; BPlusTree itself holds only the handful of
// fields that describe the index (its root and the attribute it was
// built over) rather than any page content.
type BPlusTree struct {
	path           string
	file           *disk.BlobFile
	pool           *buffer.PoolManager
	relationName   string
	attrByteOffset int32
	attrType       AttrType
	rootPageNo     PageId
	rootLevel      int32
	scan           *scanState
}

// Open creates a new index file at path, or reopens an existing one and
// validates it was built over the same relation/attribute, using a
// buffer pool of poolSize frames with LRU-K history length k. On create,
// it bulk-builds from hs, scanning it to exhaustion; hs may be nil if
// the caller has no relation to build from, leaving a freshly formatted,
// empty index. hs is ignored when the file already existed — a reopen
// adopts whatever root the meta page already records.
func Open(hs HeapScanner, path, relationName string, attrByteOffset int32, attrType AttrType, poolSize, k int) (*BPlusTree, error) {
	file, created, err := disk.CreateOrOpen(path)
	if err != nil {
		return nil, err
	}

	pool := buffer.NewPoolManager(poolSize, k, disk.NewScheduler(file))
	t := &BPlusTree{
		path:           path,
		file:           file,
		pool:           pool,
		relationName:   relationName,
		attrByteOffset: attrByteOffset,
		attrType:       attrType,
	}

	if created {
		if err := t.initialize(); err != nil {
			return nil, err
		}
		if hs != nil {
			if err := t.BuildFromHeap(hs); err != nil {
				return nil, err
			}
		}
		return t, nil
	}
	if err := t.loadExisting(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *BPlusTree) initialize() error {
	metaId, metaGuard, err := t.pool.AllocPage(t.file)
	if err != nil {
		return fmt.Errorf("index: allocating meta page: %w", err)
	}
	if metaId != metaPageNo {
		metaGuard.Release()
		return fmt.Errorf("index: meta page allocated as %d, want %d", metaId, metaPageNo)
	}

	rootId, rootGuard, err := t.pool.AllocPage(t.file)
	if err != nil {
		metaGuard.Release()
		return fmt.Errorf("index: allocating root page: %w", err)
	}
	rootGuard.MarkDirty() // AllocPage already zeroed it; an empty leaf needs no further writes
	rootGuard.Release()

	meta := NewMetaView(metaGuard.Data())
	meta.SetRelationName(t.relationName)
	meta.SetAttrByteOffset(t.attrByteOffset)
	meta.SetAttrType(t.attrType)
	meta.SetRootPageNo(rootId)
	meta.SetRootLevel(leafRootLevel)
	metaGuard.MarkDirty()
	metaGuard.Release()

	t.rootPageNo = rootId
	t.rootLevel = leafRootLevel
	return t.pool.FlushAll()
}

func (t *BPlusTree) loadExisting() error {
	guard, err := t.pool.FetchPage(metaPageNo)
	if err != nil {
		return fmt.Errorf("index: reading meta page: %w", err)
	}
	defer guard.Release()

	meta := NewMetaView(guard.Data())
	if meta.RelationName() != t.relationName ||
		meta.AttrByteOffset() != t.attrByteOffset ||
		meta.AttrType() != t.attrType {
		return ErrBadIndexInfo
	}

	t.rootPageNo = meta.RootPageNo()
	t.rootLevel = meta.RootLevel()
	return nil
}

func (t *BPlusTree) setRootPageId(id PageId, level int32) error {
	guard, err := t.pool.FetchPage(metaPageNo)
	if err != nil {
		return fmt.Errorf("index: updating root pointer: %w", err)
	}
	meta := NewMetaView(guard.Data())
	meta.SetRootPageNo(id)
	meta.SetRootLevel(level)
	guard.MarkDirty()
	guard.Release()

	t.rootPageNo = id
	t.rootLevel = level
	return nil
}

// InsertEntry adds one (key, RecordId) pair to the index, splitting
// leaves and interior nodes and growing the tree's height as needed.
func (t *BPlusTree) InsertEntry(key int32, rid RecordId) error {
	sep, newChildId, err := t.insert(t.rootPageNo, t.rootLevel == leafRootLevel, key, rid)
	if err != nil {
		return err
	}
	if newChildId == InvalidPageId {
		return nil
	}

	newRootId, guard, err := t.pool.AllocPage(t.file)
	if err != nil {
		return fmt.Errorf("index: allocating new root: %w", err)
	}
	// A promotion's new root sits directly above whatever just split. Its
	// level is 1 only the first time this happens, when the old root was
	// itself a leaf; every later promotion sits above an already-interior
	// root, so the new root's children are interior and its level is 0.
	newLevel := int32(0)
	if t.rootLevel == leafRootLevel {
		newLevel = 1
	}
	promote(NewInteriorView(guard.Data()), newLevel, t.rootPageNo, sep, newChildId)
	guard.MarkDirty()
	guard.Release()

	return t.setRootPageId(newRootId, newLevel)
}

// insert descends to the leaf that should hold (key, rid), inserting
// and splitting pages on the way back up. It returns a separator key
// and new sibling page id for the caller to link into its own level —
// both zero-valued when no split propagated up to this call. isLeaf
// tells the call whether pageId is itself a leaf; an interior node's own
// stored Level (1 iff its children are leaves) is read directly off the
// fetched page to make that call for the recursion one level down,
// rather than being derived from a counter threaded through the descent.
func (t *BPlusTree) insert(pageId PageId, isLeaf bool, key int32, rid RecordId) (int32, PageId, error) {
	guard, err := t.pool.FetchPage(pageId)
	if err != nil {
		return 0, InvalidPageId, err
	}
	defer guard.Release()

	if isLeaf {
		return t.insertIntoLeaf(guard, key, rid)
	}

	inner := NewInteriorView(guard.Data())
	idx := findChildIndex(inner, key)
	childId := inner.Child(idx)
	childIsLeaf := inner.Level() == 1

	sep, newChildId, err := t.insert(childId, childIsLeaf, key, rid)
	if err != nil {
		return 0, InvalidPageId, err
	}
	if newChildId == InvalidPageId {
		return 0, InvalidPageId, nil
	}

	if !inner.IsFull() {
		insertSeparator(inner, idx, sep, newChildId)
		guard.MarkDirty()
		return 0, InvalidPageId, nil
	}

	rightId, rightGuard, err := t.pool.AllocPage(t.file)
	if err != nil {
		return 0, InvalidPageId, fmt.Errorf("index: allocating split sibling: %w", err)
	}
	right := NewInteriorView(rightGuard.Data())
	promoted := splitInterior(inner, right)

	leftUsedKeys := inner.UsedKeys()
	if idx <= leftUsedKeys {
		insertSeparator(inner, idx, sep, newChildId)
	} else {
		insertSeparator(right, idx-leftUsedKeys-1, sep, newChildId)
	}

	guard.MarkDirty()
	rightGuard.MarkDirty()
	rightGuard.Release()
	return promoted, rightId, nil
}

func (t *BPlusTree) insertIntoLeaf(guard *buffer.PageGuard, key int32, rid RecordId) (int32, PageId, error) {
	leaf := NewLeafView(guard.Data())

	if !leaf.IsFull() {
		leafInsert(leaf, key, rid)
		guard.MarkDirty()
		return 0, InvalidPageId, nil
	}

	rightId, rightGuard, err := t.pool.AllocPage(t.file)
	if err != nil {
		return 0, InvalidPageId, fmt.Errorf("index: allocating split sibling: %w", err)
	}
	right := NewLeafView(rightGuard.Data())
	sep := splitLeaf(leaf, right, rightId)

	if key < sep {
		leafInsert(leaf, key, rid)
	} else {
		leafInsert(right, key, rid)
	}

	guard.MarkDirty()
	rightGuard.MarkDirty()
	rightGuard.Release()
	return sep, rightId, nil
}

// BuildFromHeap bulk-loads the index by scanning hs to exhaustion and
// inserting every tuple's attribute value, extracted at the index's
// configured byte offset. Reaching exhaustion flushes every dirty page
// the build produced; the caller doesn't need to rely on a later Close
// to persist a bulk build.
func (t *BPlusTree) BuildFromHeap(hs HeapScanner) error {
	for {
		rid, record, err := hs.ScanNext()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return t.pool.FlushAll()
			}
			return err
		}
		key := getInt32(record, int(t.attrByteOffset))
		if err := t.InsertEntry(key, rid); err != nil {
			return err
		}
	}
}

// Close flushes all dirty pages and releases the underlying file.
func (t *BPlusTree) Close() error {
	if err := t.pool.FlushAll(); err != nil {
		return err
	}
	return t.file.Close()
}

// Destroy closes the index and removes its backing file.
func (t *BPlusTree) Destroy() error {
	if err := t.Close(); err != nil {
		return err
	}
	return os.Remove(t.path)
}
