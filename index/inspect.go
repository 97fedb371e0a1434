package index

import "github.com/latticedb/bptreeindex/util"

// LeafReport is a snapshot of one leaf page's contents, produced by
// Inspect for debugging and tests.
type LeafReport struct {
	PageId       PageId   `msgpack:"page_id"`
	Keys         []int32  `msgpack:"keys"`
	RightSibling PageId   `msgpack:"right_sibling"`
}

// InteriorReport is a snapshot of one interior page's contents.
type InteriorReport struct {
	PageId   PageId    `msgpack:"page_id"`
	Level    int32     `msgpack:"level"`
	Keys     []int32   `msgpack:"keys"`
	Children []PageId  `msgpack:"children"`
}

// TreeReport is a full snapshot of every page reachable from the root,
// in top-down, left-to-right order.
type TreeReport struct {
	RootPageId PageId           `msgpack:"root_page_id"`
	RootLevel  int32            `msgpack:"root_level"`
	Interiors  []InteriorReport `msgpack:"interiors"`
	Leaves     []LeafReport     `msgpack:"leaves"`
}

// Snapshot encodes r as msgpack, for writing to a file a later process
// can load back with DecodeTreeReport without re-walking the tree.
func (r *TreeReport) Snapshot() ([]byte, error) {
	return util.ToBytes(r)
}

// DecodeTreeReport decodes a TreeReport previously produced by Snapshot.
func DecodeTreeReport(data []byte) (*TreeReport, error) {
	return util.FromBytes[*TreeReport](data)
}

// Inspect walks the whole tree and returns a structural snapshot. It
// takes no locks beyond the per-page pins FetchPage already provides,
// so it should not be run concurrently with a mutating operation on the
// same tree.
func (t *BPlusTree) Inspect() (*TreeReport, error) {
	report := &TreeReport{RootPageId: t.rootPageNo, RootLevel: t.rootLevel}
	if err := t.inspectPage(t.rootPageNo, t.rootLevel == leafRootLevel, report); err != nil {
		return nil, err
	}
	return report, nil
}

// inspectPage walks pageId and everything reachable below it. isLeaf
// tells it whether pageId is itself a leaf; for an interior page, its
// own stored Level (1 iff its children are leaves) is read directly off
// the fetched page, both for the report and to decide how to recurse.
func (t *BPlusTree) inspectPage(pageId PageId, isLeaf bool, report *TreeReport) error {
	guard, err := t.pool.FetchPage(pageId)
	if err != nil {
		return err
	}
	defer guard.Release()

	if isLeaf {
		leaf := NewLeafView(guard.Data())
		n := leaf.UsedCount()
		keys := make([]int32, n)
		for i := 0; i < n; i++ {
			keys[i] = leaf.Key(i)
		}
		report.Leaves = append(report.Leaves, LeafReport{
			PageId:       pageId,
			Keys:         keys,
			RightSibling: leaf.RightSibling(),
		})
		return nil
	}

	inner := NewInteriorView(guard.Data())
	n := inner.UsedKeys()
	keys := make([]int32, n)
	for i := 0; i < n; i++ {
		keys[i] = inner.Key(i)
	}
	children := make([]PageId, n+1)
	for i := 0; i <= n; i++ {
		children[i] = inner.Child(i)
	}
	report.Interiors = append(report.Interiors, InteriorReport{
		PageId:   pageId,
		Level:    inner.Level(),
		Keys:     keys,
		Children: children,
	})

	childIsLeaf := inner.Level() == 1
	for _, child := range children {
		if err := t.inspectPage(child, childIsLeaf, report); err != nil {
			return err
		}
	}
	return nil
}
