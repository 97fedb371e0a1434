package index

import "github.com/latticedb/bptreeindex/buffer"

// Operator is a comparison used to bound one side of a range scan.
type Operator int

const (
	GT Operator = iota
	GTE
	LT
	LTE
)

func isLowOperator(op Operator) bool  { return op == GT || op == GTE }
func isHighOperator(op Operator) bool { return op == LT || op == LTE }

func satisfiesLow(key, lowVal int32, op Operator) bool {
	if op == GTE {
		return key >= lowVal
	}
	return key > lowVal
}

func satisfiesHigh(key, highVal int32, op Operator) bool {
	if op == LTE {
		return key <= highVal
	}
	return key < highVal
}

// scanState is the cursor for one in-progress range scan: the slot the
// next ScanNext call will read within the leaf held pinned by guard, and
// the bounds it must keep checking because a leaf split can happen
// between this index's own inserts and a caller's ScanNext calls. The
// leaf stays pinned for the scan's whole lifetime — guard changes only
// on a sibling hop, and is released only there, on exhaustion, or on
// EndScan.
type scanState struct {
	lowVal, highVal int32
	lowOp, highOp   Operator
	guard           *buffer.PageGuard
	slot            int
	done            bool
}

// StartScan begins a range scan over keys satisfying lowVal <op=lowOp>
// key <op=highOp> highVal. lowOp must be GT or GTE and highOp must be LT
// or LTE. Only one scan may be active on a BPlusTree at a time.
func (t *BPlusTree) StartScan(lowVal, highVal int32, lowOp, highOp Operator) error {
	if !isLowOperator(lowOp) || !isHighOperator(highOp) {
		return ErrBadOperator
	}
	if lowVal > highVal {
		return ErrBadRange
	}

	leafId, err := t.findLeaf(lowVal)
	if err != nil {
		return err
	}

	for {
		guard, err := t.pool.FetchPage(leafId)
		if err != nil {
			return err
		}
		leaf := NewLeafView(guard.Data())
		n := leaf.UsedCount()

		for slot := 0; slot < n; slot++ {
			key := leaf.Key(slot)
			if !satisfiesLow(key, lowVal, lowOp) {
				continue
			}
			if !satisfiesHigh(key, highVal, highOp) {
				guard.Release()
				return ErrNoSuchKey
			}
			t.scan = &scanState{
				lowVal: lowVal, highVal: highVal,
				lowOp: lowOp, highOp: highOp,
				guard: guard, slot: slot,
			}
			return nil
		}

		next := leaf.RightSibling()
		guard.Release()
		if next == InvalidPageId {
			return ErrNoSuchKey
		}
		leafId = next
	}
}

// findLeaf descends from the root to the leaf that would hold key,
// without mutating anything. Each interior node's own stored Level (1
// iff its children are leaves) decides whether the next fetch is the
// final one, rather than a height counter derived from the root.
func (t *BPlusTree) findLeaf(key int32) (PageId, error) {
	pageId := t.rootPageNo
	isLeaf := t.rootLevel == leafRootLevel

	for !isLeaf {
		guard, err := t.pool.FetchPage(pageId)
		if err != nil {
			return InvalidPageId, err
		}
		inner := NewInteriorView(guard.Data())
		idx := findChildIndex(inner, key)
		pageId = inner.Child(idx)
		isLeaf = inner.Level() == 1
		guard.Release()
	}
	return pageId, nil
}

// ScanNext returns the next RecordId in scan order, or ErrScanDone once
// the upper bound or the end of the leaf chain is reached. Exactly one
// page stays pinned between calls while the scan is active: the leaf
// ScanNext is currently reading from.
func (t *BPlusTree) ScanNext() (RecordId, error) {
	s := t.scan
	if s == nil {
		return RecordId{}, ErrScanNotActive
	}
	if s.done {
		return RecordId{}, ErrScanDone
	}

	leaf := NewLeafView(s.guard.Data())
	n := leaf.UsedCount()

	if s.slot >= n {
		s.guard.Release()
		s.done = true
		return RecordId{}, ErrScanDone
	}

	key := leaf.Key(s.slot)
	if !satisfiesHigh(key, s.highVal, s.highOp) {
		s.guard.Release()
		s.done = true
		return RecordId{}, ErrScanDone
	}

	rid := leaf.Rid(s.slot)
	s.slot++
	if s.slot >= n {
		// On the rightmost leaf the guard stays pinned; the next call sees
		// the slot past the end and releases it with ErrScanDone.
		if next := leaf.RightSibling(); next != InvalidPageId {
			nextGuard, err := t.pool.FetchPage(next)
			if err != nil {
				s.guard.Release()
				s.done = true
				return RecordId{}, err
			}
			s.guard.Release()
			s.guard = nextGuard
			s.slot = 0
		}
	}
	return rid, nil
}

// EndScan terminates the active scan, releasing its pinned leaf if the
// scan hadn't already run to exhaustion. Release is a no-op on an
// already-released guard, so this is safe regardless of s.done.
func (t *BPlusTree) EndScan() error {
	if t.scan == nil {
		return ErrScanNotActive
	}
	t.scan.guard.Release()
	t.scan = nil
	return nil
}
