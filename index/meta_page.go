package index

// AttrType identifies the base-relation attribute type an index was
// built over. Only INTEGER is exercised by the operations in this
// package — DOUBLE and STRING are recorded so a reopened index can be
// validated against the type its caller expects, the same way the
// relation name and byte offset are.
type AttrType int32

const (
	AttrInteger AttrType = 0
	AttrDouble  AttrType = 1
	AttrString  AttrType = 2
)

const (
	metaRelationNameLen = 20
	metaRelationNameOff = 0
	metaAttrOffsetOff   = metaRelationNameOff + metaRelationNameLen
	metaAttrTypeOff     = metaAttrOffsetOff + int32Size
	metaRootPageNoOff   = metaAttrTypeOff + int32Size
	metaRootLevelOff    = metaRootPageNoOff + int32Size
	metaPageUsedBytes   = metaRootLevelOff + int32Size
)

// leafRootLevel is the sentinel RootLevel value for a tree small enough
// that its root is itself a leaf page (no interior nodes at all yet).
const leafRootLevel int32 = -1

// MetaView interprets page 1 of the index file: the fixed index
// description (relation name, attribute offset and type) plus the
// current root page id and root level, the only fields that change
// after the index is created.
type MetaView struct {
	b []byte
}

// NewMetaView wraps a PageSize-length byte slice as the meta page.
func NewMetaView(b []byte) MetaView { return MetaView{b: b} }

// RelationName returns the base relation's name, trimmed of its
// null-byte padding.
func (v MetaView) RelationName() string {
	raw := v.b[metaRelationNameOff : metaRelationNameOff+metaRelationNameLen]
	n := 0
	for n < len(raw) && raw[n] != 0 {
		n++
	}
	return string(raw[:n])
}

// SetRelationName writes name, truncated if it exceeds the fixed field
// width, null-padding the remainder.
func (v MetaView) SetRelationName(name string) {
	dst := v.b[metaRelationNameOff : metaRelationNameOff+metaRelationNameLen]
	clear(dst)
	copy(dst, name)
}

func (v MetaView) AttrByteOffset() int32     { return getInt32(v.b, metaAttrOffsetOff) }
func (v MetaView) SetAttrByteOffset(o int32) { putInt32(v.b, metaAttrOffsetOff, o) }

func (v MetaView) AttrType() AttrType { return AttrType(getInt32(v.b, metaAttrTypeOff)) }
func (v MetaView) SetAttrType(t AttrType) { putInt32(v.b, metaAttrTypeOff, int32(t)) }

func (v MetaView) RootPageNo() PageId     { return getPageId(v.b, metaRootPageNoOff) }
func (v MetaView) SetRootPageNo(id PageId) { putPageId(v.b, metaRootPageNoOff, id) }

// RootLevel mirrors the root page's own Level if it is an interior node,
// or leafRootLevel if the root is currently a leaf. Every interior page
// below the root carries its own Level tag, read directly off that page
// during a descent; RootLevel exists only because the root has no
// parent interior to read that flag from for it.
func (v MetaView) RootLevel() int32     { return getInt32(v.b, metaRootLevelOff) }
func (v MetaView) SetRootLevel(l int32) { putInt32(v.b, metaRootLevelOff, l) }
