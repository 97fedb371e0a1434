package index

import (
	"encoding/binary"

	"github.com/latticedb/bptreeindex/storage/disk"
)

// PageId is the index package's page identifier, shared verbatim with the
// disk layer: the index never needs its own numbering scheme.
type PageId = disk.PageId

// InvalidPageId is the sentinel PageId used as both "no child" and
// "no sibling".
const InvalidPageId = disk.InvalidPageId

// Page kinds are distinguished structurally (leaf pages have no Level
// field; the meta page is page 1 by convention), not by a stored tag
// byte — mirroring the contiguous-fill invariant's goal of not spending
// bytes on information derivable from position.
const (
	metaPageNo PageId = 1

	int32Size    = 4
	recordIdSize = 8
)

// LeafCap is the maximum number of (key, RecordId) entries a leaf page
// holds: the largest n such that n*(int32Size+recordIdSize) + int32Size
// (the trailing sibling pointer) fits in disk.PageSize.
const LeafCap = (disk.PageSize - int32Size) / (int32Size + recordIdSize)

// InnerCap is the maximum number of keys an interior page holds. An
// interior page with n keys carries n+1 children, so capacity is bound
// by n*int32Size + (n+1)*int32Size + int32Size (the Level field) <=
// disk.PageSize.
const InnerCap = (disk.PageSize - 2*int32Size) / (2 * int32Size)

func getInt32(b []byte, off int) int32 {
	return int32(binary.LittleEndian.Uint32(b[off : off+4]))
}

func putInt32(b []byte, off int, v int32) {
	binary.LittleEndian.PutUint32(b[off:off+4], uint32(v))
}

func getPageId(b []byte, off int) PageId {
	return PageId(binary.LittleEndian.Uint32(b[off : off+4]))
}

func putPageId(b []byte, off int, v PageId) {
	binary.LittleEndian.PutUint32(b[off:off+4], uint32(v))
}
