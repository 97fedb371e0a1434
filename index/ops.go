package index

// leafInsert writes (key, rid) into v in sorted position, shifting the
// entries at and after the insertion point one slot to the right. The
// caller must have already verified v is not full.
func leafInsert(v LeafView, key int32, rid RecordId) {
	n := v.UsedCount()
	idx := n
	for i := 0; i < n; i++ {
		if key < v.Key(i) {
			idx = i
			break
		}
	}
	for i := n; i > idx; i-- {
		v.SetEntry(i, v.Key(i-1), v.Rid(i-1))
	}
	v.SetEntry(idx, key, rid)
}

// findChildIndex returns the index of the child an interior node must
// descend into to find key. It walks only the node's live keys
// (UsedKeys, tracked via the contiguous-fill scan in InteriorView) so it
// never mistakes an unused trailing key slot — which reads as the
// sentinel value 0 — for a real separator of 0.
func findChildIndex(v InteriorView, key int32) int {
	n := v.UsedKeys()
	for i := 0; i < n; i++ {
		if key < v.Key(i) {
			return i
		}
	}
	return n
}

// insertSeparator inserts sepKey as the node's new separator immediately
// after the child at afterChildIdx, with newChild becoming the child
// that follows it. Existing keys/children above the insertion point
// shift right, preserving the pairing "child[i+1] is reached via
// key[i]" — the invariant the analogous C++ insert_nonleaf routine gets
// backwards by shifting keyArray[i] against pageNoArray[i] instead of
// pageNoArray[i+1].
func insertSeparator(v InteriorView, afterChildIdx int, sepKey int32, newChild PageId) {
	n := v.UsedKeys()
	for i := n; i > afterChildIdx; i-- {
		v.SetKey(i, v.Key(i-1))
		v.SetChild(i+1, v.Child(i))
	}
	v.SetKey(afterChildIdx, sepKey)
	v.SetChild(afterChildIdx+1, newChild)
}

// seedEmptyInterior initializes a freshly allocated interior page with
// no separator keys and a single child: the shape a brand new root
// starts from before promote adds its separator. This is kept distinct from insertSeparator rather than
// overloading it, since "first child of an empty node" and "new
// separator into a populated node" have different preconditions.
func seedEmptyInterior(v InteriorView, level int32, onlyChild PageId) {
	v.SetLevel(level)
	v.SetChild(0, onlyChild)
}
