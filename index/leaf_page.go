package index

const (
	leafEntrySize   = int32Size + recordIdSize
	leafEntriesOff  = 0
	leafSiblingOff  = LeafCap * leafEntrySize
)

// LeafView interprets a raw page as a leaf node: LeafCap (key, RecordId)
// entries packed from offset 0, followed by a single trailing sibling
// pointer. Entries are kept left-packed (the contiguous-fill invariant):
// UsedCount is the length of the prefix of non-empty entries. SetEntry and
// ClearEntry write a single slot and do not repack; leafInsert and
// splitLeaf are the callers that keep the prefix contiguous.
type LeafView struct {
	b []byte
}

// NewLeafView wraps a PageSize-length byte slice as a leaf page.
func NewLeafView(b []byte) LeafView { return LeafView{b: b} }

func (v LeafView) entryOff(i int) int { return leafEntriesOff + i*leafEntrySize }

// Key returns the key stored at slot i, valid only for i < UsedCount.
func (v LeafView) Key(i int) int32 { return getInt32(v.b, v.entryOff(i)) }

// Rid returns the RecordId stored at slot i, valid only for i < UsedCount.
func (v LeafView) Rid(i int) RecordId { return getRecordId(v.b, v.entryOff(i)+int32Size) }

// SetEntry writes the (key, rid) pair into slot i.
func (v LeafView) SetEntry(i int, key int32, rid RecordId) {
	off := v.entryOff(i)
	putInt32(v.b, off, key)
	putRecordId(v.b, off+int32Size, rid)
}

// ClearEntry zeroes slot i, restoring the empty-slot sentinel.
func (v LeafView) ClearEntry(i int) {
	off := v.entryOff(i)
	putInt32(v.b, off, 0)
	putRecordId(v.b, off+int32Size, RecordId{})
}

// UsedCount is the number of contiguous non-empty entries starting at
// slot 0.
func (v LeafView) UsedCount() int {
	for i := 0; i < LeafCap; i++ {
		if v.Rid(i).IsEmpty() {
			return i
		}
	}
	return LeafCap
}

// IsFull reports whether the leaf holds the maximum number of entries.
func (v LeafView) IsFull() bool { return v.UsedCount() == LeafCap }

// RightSibling returns the page id of the next leaf in key order, or
// InvalidPageId if this is the rightmost leaf.
func (v LeafView) RightSibling() PageId { return getPageId(v.b, leafSiblingOff) }

// SetRightSibling sets the right-sibling pointer.
func (v LeafView) SetRightSibling(id PageId) { putPageId(v.b, leafSiblingOff, id) }
