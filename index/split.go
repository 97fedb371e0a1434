package index

// splitLeaf moves the upper half of left's entries into right (which
// must be freshly allocated and empty), threads right into left's place
// in the sibling chain, and returns the key that separates the two
// halves — the smallest key now in right, which the caller promotes
// into the parent interior node.
func splitLeaf(left, right LeafView, rightId PageId) int32 {
	n := left.UsedCount()
	mid := n / 2

	for i := mid; i < n; i++ {
		right.SetEntry(i-mid, left.Key(i), left.Rid(i))
		left.ClearEntry(i)
	}

	right.SetRightSibling(left.RightSibling())
	left.SetRightSibling(rightId)

	return right.Key(0)
}

// splitInterior moves the upper half of left's children (and the keys
// between them) into right, which must be freshly allocated and empty.
// The middle key is removed from left entirely and returned: unlike a
// leaf split, an interior split does not duplicate its separator into
// both halves, since that key no longer bounds any data directly — it
// only ever reappears as the separator the parent stores for it.
func splitInterior(left, right InteriorView) int32 {
	n := left.UsedKeys()
	mid := n / 2
	promoted := left.Key(mid)

	right.SetLevel(left.Level())

	for i := mid + 1; i <= n; i++ {
		right.SetChild(i-mid-1, left.Child(i))
		left.ClearChild(i)
	}
	for i := mid + 1; i < n; i++ {
		right.SetKey(i-mid-1, left.Key(i))
		left.ClearKey(i)
	}
	left.ClearKey(mid)

	return promoted
}

// promote builds a brand new root over the two halves of a split root,
// used exactly once per split that reaches the top of the tree.
func promote(newRoot InteriorView, level int32, leftId PageId, sepKey int32, rightId PageId) {
	seedEmptyInterior(newRoot, level, leftId)
	insertSeparator(newRoot, 0, sepKey, rightId)
}
