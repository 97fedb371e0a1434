package index

const (
	interiorLevelOff    = 0
	interiorKeysOff     = interiorLevelOff + int32Size
	interiorChildrenOff = interiorKeysOff + InnerCap*int32Size
)

// InteriorView interprets a raw page as an interior node: a Level tag,
// InnerCap key slots, and InnerCap+1 child-pointer slots. A node with n
// keys has exactly n+1 live children; both are left-packed, so
// UsedChildren (and thus UsedKeys = UsedChildren-1) is derived by
// scanning for the first InvalidPageId child rather than stored
// separately — resolving the same "don't compare against a key value of
// zero" concern the leaf layout has, on the pointer side instead.
type InteriorView struct {
	b []byte
}

// NewInteriorView wraps a PageSize-length byte slice as an interior page.
func NewInteriorView(b []byte) InteriorView { return InteriorView{b: b} }

// Level is 1 when this node's children are leaves, and 0 otherwise —
// a binary flag, not a height counter: every interior node strictly
// above the leaf-adjacent level is also 0.
func (v InteriorView) Level() int32     { return getInt32(v.b, interiorLevelOff) }
func (v InteriorView) SetLevel(l int32) { putInt32(v.b, interiorLevelOff, l) }

func (v InteriorView) keyOff(i int) int   { return interiorKeysOff + i*int32Size }
func (v InteriorView) childOff(i int) int { return interiorChildrenOff + i*int32Size }

// Key returns the separator key at index i, valid for i < UsedKeys.
func (v InteriorView) Key(i int) int32 { return getInt32(v.b, v.keyOff(i)) }

// SetKey writes the separator key at index i.
func (v InteriorView) SetKey(i int, key int32) { putInt32(v.b, v.keyOff(i), key) }

// ClearKey zeroes the key at index i.
func (v InteriorView) ClearKey(i int) { putInt32(v.b, v.keyOff(i), 0) }

// Child returns the child pointer at index i, valid for i < UsedChildren.
func (v InteriorView) Child(i int) PageId { return getPageId(v.b, v.childOff(i)) }

// SetChild writes the child pointer at index i.
func (v InteriorView) SetChild(i int, id PageId) { putPageId(v.b, v.childOff(i), id) }

// ClearChild resets the child pointer at index i to InvalidPageId.
func (v InteriorView) ClearChild(i int) { putPageId(v.b, v.childOff(i), InvalidPageId) }

// UsedChildren is the number of contiguous live child pointers starting
// at index 0.
func (v InteriorView) UsedChildren() int {
	for i := 0; i <= InnerCap; i++ {
		if v.Child(i) == InvalidPageId {
			return i
		}
	}
	return InnerCap + 1
}

// UsedKeys is the number of live separator keys: one fewer than
// UsedChildren, or 0 for a node that has no children yet.
func (v InteriorView) UsedKeys() int {
	if n := v.UsedChildren(); n > 0 {
		return n - 1
	}
	return 0
}

// IsFull reports whether the interior node holds the maximum number of
// keys.
func (v InteriorView) IsFull() bool { return v.UsedKeys() == InnerCap }
