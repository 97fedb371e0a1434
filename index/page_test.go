package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLeafViewEntries(t *testing.T) {
	leaf := NewLeafView(make([]byte, 4096))

	assert.Equal(t, 0, leaf.UsedCount())

	leaf.SetEntry(0, 10, RecordId{PageNum: 1, SlotNum: 1})
	leaf.SetEntry(1, 20, RecordId{PageNum: 1, SlotNum: 2})

	assert.Equal(t, 2, leaf.UsedCount())
	assert.Equal(t, int32(10), leaf.Key(0))
	assert.Equal(t, RecordId{PageNum: 1, SlotNum: 2}, leaf.Rid(1))
	assert.False(t, leaf.IsFull())

	leaf.ClearEntry(1)
	assert.Equal(t, 1, leaf.UsedCount())
}

func TestLeafViewSiblingPointer(t *testing.T) {
	leaf := NewLeafView(make([]byte, 4096))
	assert.Equal(t, InvalidPageId, leaf.RightSibling())

	leaf.SetRightSibling(7)
	assert.Equal(t, PageId(7), leaf.RightSibling())
}

func TestLeafCapacityFillsPage(t *testing.T) {
	leaf := NewLeafView(make([]byte, 4096))
	for i := 0; i < LeafCap; i++ {
		leaf.SetEntry(i, int32(i), RecordId{PageNum: 1, SlotNum: uint32(i + 1)})
	}
	assert.True(t, leaf.IsFull())
	assert.Equal(t, LeafCap, leaf.UsedCount())
}

func TestInteriorViewChildrenAndKeys(t *testing.T) {
	inner := NewInteriorView(make([]byte, 4096))
	seedEmptyInterior(inner, 0, 100)

	assert.Equal(t, int32(0), inner.Level())
	assert.Equal(t, 0, inner.UsedKeys())
	assert.Equal(t, 1, inner.UsedChildren())
	assert.Equal(t, PageId(100), inner.Child(0))

	insertSeparator(inner, 0, 50, 101)
	assert.Equal(t, 1, inner.UsedKeys())
	assert.Equal(t, int32(50), inner.Key(0))
	assert.Equal(t, PageId(101), inner.Child(1))
}

func TestInteriorCapacityFillsPage(t *testing.T) {
	inner := NewInteriorView(make([]byte, 4096))
	seedEmptyInterior(inner, 0, 1)
	for i := 0; i < InnerCap; i++ {
		insertSeparator(inner, i, int32(i), PageId(i+2))
	}
	assert.True(t, inner.IsFull())
	assert.Equal(t, InnerCap, inner.UsedKeys())
	assert.Equal(t, InnerCap+1, inner.UsedChildren())
}

func TestMetaViewRoundtrip(t *testing.T) {
	meta := NewMetaView(make([]byte, 4096))
	meta.SetRelationName("students")
	meta.SetAttrByteOffset(12)
	meta.SetAttrType(AttrInteger)
	meta.SetRootPageNo(3)
	meta.SetRootLevel(leafRootLevel)

	assert.Equal(t, "students", meta.RelationName())
	assert.Equal(t, int32(12), meta.AttrByteOffset())
	assert.Equal(t, AttrInteger, meta.AttrType())
	assert.Equal(t, PageId(3), meta.RootPageNo())
	assert.Equal(t, leafRootLevel, meta.RootLevel())
}
