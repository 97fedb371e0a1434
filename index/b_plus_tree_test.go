package index

import (
	"encoding/binary"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestTree(t *testing.T) *BPlusTree {
	t.Helper()
	path := filepath.Join(t.TempDir(), "students.idx")
	tree, err := Open(nil, path, "students", 0, AttrInteger, 16, 2)
	require.NoError(t, err)
	t.Cleanup(func() { tree.Close() })
	return tree
}

func TestInsertAndScanSmallTree(t *testing.T) {
	tree := openTestTree(t)

	for _, k := range []int32{5, 1, 9, 3, 7} {
		require.NoError(t, tree.InsertEntry(k, RecordId{PageNum: 1, SlotNum: uint32(k)}))
	}

	require.NoError(t, tree.StartScan(0, 100, GTE, LTE))
	assert.Equal(t, 1, tree.pool.PinCount(), "startScan leaves exactly one page pinned on success")

	var got []int32
	for {
		rid, err := tree.ScanNext()
		if errors.Is(err, ErrScanDone) {
			break
		}
		require.NoError(t, err)
		assert.Equal(t, 1, tree.pool.PinCount(), "scanNext keeps exactly one page pinned between calls")
		got = append(got, int32(rid.SlotNum))
	}
	assert.Equal(t, 0, tree.pool.PinCount(), "scanNext unpins on ScanDone")
	require.NoError(t, tree.EndScan())

	assert.Equal(t, []int32{1, 3, 5, 7, 9}, got)
}

func TestPinBalanceAcrossInsertAndScanLifecycle(t *testing.T) {
	tree := openTestTree(t)

	for _, k := range []int32{5, 1, 9, 3, 7} {
		require.NoError(t, tree.InsertEntry(k, RecordId{PageNum: 1, SlotNum: uint32(k)}))
		assert.Equal(t, 0, tree.pool.PinCount(), "insertEntry must leave nothing pinned once it returns")
	}

	require.NoError(t, tree.StartScan(0, 100, GTE, LTE))
	assert.Equal(t, 1, tree.pool.PinCount())
	_, err := tree.ScanNext()
	require.NoError(t, err)
	assert.Equal(t, 1, tree.pool.PinCount())
	require.NoError(t, tree.EndScan())
	assert.Equal(t, 0, tree.pool.PinCount(), "endScan leaves zero pinned")

	err = tree.StartScan(1000, 2000, GT, LT)
	assert.ErrorIs(t, err, ErrNoSuchKey)
	assert.Equal(t, 0, tree.pool.PinCount(), "a startScan failure path leaves zero pinned")
}

func TestInsertGrowsAcrossLeafSplit(t *testing.T) {
	tree := openTestTree(t)

	n := LeafCap + 10
	for i := 0; i < n; i++ {
		require.NoError(t, tree.InsertEntry(int32(i), RecordId{PageNum: 1, SlotNum: uint32(i + 1)}))
	}

	// A leaf split's new root sits directly above two leaves, so its
	// level is 1, not 0 — the level tag is 1 iff a node's children are
	// leaves.
	assert.Equal(t, int32(1), tree.rootLevel)

	report, err := tree.Inspect()
	require.NoError(t, err)
	assert.Len(t, report.Interiors, 1)
	assert.Equal(t, int32(1), report.Interiors[0].Level)
	assert.GreaterOrEqual(t, len(report.Leaves), 2)

	require.NoError(t, tree.StartScan(int32(0), int32(n-1), GTE, LTE))
	count := 0
	for {
		_, err := tree.ScanNext()
		if errors.Is(err, ErrScanDone) {
			break
		}
		require.NoError(t, err)
		count++
	}
	assert.Equal(t, n, count)

	assert.Equal(t, 0, tree.pool.PinCount(), "scan to exhaustion must leave nothing pinned")
}

func TestInsertPromotesRootAcrossMultipleSplits(t *testing.T) {
	tree := openTestTree(t)

	n := LeafCap * (InnerCap + 2)
	for i := 0; i < n; i++ {
		require.NoError(t, tree.InsertEntry(int32(i), RecordId{PageNum: 1, SlotNum: uint32(i%4294967294 + 1)}))
	}
	require.Equal(t, 0, tree.pool.PinCount(), "a completed insert sequence must leave nothing pinned")

	// Level is a binary flag (§3/§4.2), not a height counter: once the
	// tree grows a third level, the root's own children are interior
	// nodes, so the root is level 0 again — it never keeps incrementing.
	// Exactly one level of level-1 interiors sits directly above the
	// leaves, mirroring spec.md §8's worked three-level scenario.
	assert.Equal(t, int32(0), tree.rootLevel)

	report, err := tree.Inspect()
	require.NoError(t, err)
	require.NotEmpty(t, report.Interiors)
	assert.Equal(t, int32(0), report.Interiors[0].Level, "root is interiors[0] in the top-down walk")
	leafAdjacent := 0
	for _, in := range report.Interiors[1:] {
		assert.Equal(t, int32(1), in.Level, "every non-root interior in this tree sits directly above leaves")
		leafAdjacent++
	}
	assert.Greater(t, leafAdjacent, 1, "the root's split must have produced more than one level-1 interior")

	require.NoError(t, tree.StartScan(int32(0), int32(n-1), GTE, LTE))
	scanned := 0
	for {
		_, err := tree.ScanNext()
		if errors.Is(err, ErrScanDone) {
			break
		}
		require.NoError(t, err)
		scanned++
	}
	assert.Equal(t, n, scanned)
	assert.Equal(t, 0, tree.pool.PinCount(), "scan to exhaustion must leave nothing pinned")
}

func TestScanEmptyRangeReturnsErrNoSuchKey(t *testing.T) {
	tree := openTestTree(t)
	require.NoError(t, tree.InsertEntry(10, RecordId{PageNum: 1, SlotNum: 1}))

	err := tree.StartScan(100, 200, GT, LT)
	assert.ErrorIs(t, err, ErrNoSuchKey)
}

func TestStartScanValidatesOperatorsAndRange(t *testing.T) {
	tree := openTestTree(t)
	require.NoError(t, tree.InsertEntry(10, RecordId{PageNum: 1, SlotNum: 1}))

	assert.ErrorIs(t, tree.StartScan(0, 10, LT, LTE), ErrBadOperator)
	assert.ErrorIs(t, tree.StartScan(0, 10, GT, GTE), ErrBadOperator)
	assert.ErrorIs(t, tree.StartScan(10, 0, GT, LTE), ErrBadRange)
}

func TestScanNextWithoutStartScanErrors(t *testing.T) {
	tree := openTestTree(t)
	_, err := tree.ScanNext()
	assert.ErrorIs(t, err, ErrScanNotActive)
}

func TestReopenValidatesIndexInfo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.idx")
	tree, err := Open(nil, path, "students", 4, AttrInteger, 16, 2)
	require.NoError(t, err)
	require.NoError(t, tree.InsertEntry(1, RecordId{PageNum: 1, SlotNum: 1}))
	require.NoError(t, tree.Close())

	reopened, err := Open(nil, path, "students", 4, AttrInteger, 16, 2)
	require.NoError(t, err)
	defer reopened.Close()

	require.NoError(t, reopened.StartScan(0, 10, GTE, LTE))
	rid, err := reopened.ScanNext()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), rid.SlotNum)

	_, err = Open(nil, path, "wrong_relation", 4, AttrInteger, 16, 2)
	assert.ErrorIs(t, err, ErrBadIndexInfo)
}

type fakeHeapScanner struct {
	records [][]byte
	rids    []RecordId
	pos     int
}

func (f *fakeHeapScanner) ScanNext() (RecordId, []byte, error) {
	if f.pos >= len(f.records) {
		return RecordId{}, nil, io.EOF
	}
	rid, rec := f.rids[f.pos], f.records[f.pos]
	f.pos++
	return rid, rec, nil
}

func TestOpenBulkBuildsFromHeapOnCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.idx")

	hs := &fakeHeapScanner{}
	for _, k := range []int32{5, 1, 9, 3, 7} {
		rec := make([]byte, 4)
		binary.LittleEndian.PutUint32(rec, uint32(k))
		hs.records = append(hs.records, rec)
		hs.rids = append(hs.rids, RecordId{PageNum: 1, SlotNum: uint32(k)})
	}

	tree, err := Open(hs, path, "students", 0, AttrInteger, 16, 2)
	require.NoError(t, err)
	defer tree.Close()

	require.NoError(t, tree.StartScan(0, 100, GTE, LTE))
	var got []int32
	for {
		rid, err := tree.ScanNext()
		if errors.Is(err, ErrScanDone) {
			break
		}
		require.NoError(t, err)
		got = append(got, int32(rid.SlotNum))
	}
	assert.Equal(t, []int32{1, 3, 5, 7, 9}, got)
}
