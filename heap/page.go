// Package heap implements the fixed-record base relation a BPlusTree
// index is built over: an append-only sequence of equal-sized tuples,
// addressed by the same RecordId the index stores in its leaves.
package heap

import "encoding/binary"

const headerSize = 4 // used-record count, stored at the front of every page

// pageView interprets a raw page as a packed array of fixed-size
// records behind a used-count header. Records never move once written
// (the base relation this index backs supports no delete, mirroring
// the index's own Non-goals), so slot i's offset never changes.
type pageView struct {
	b          []byte
	recordSize int
}

func newPageView(b []byte, recordSize int) pageView {
	return pageView{b: b, recordSize: recordSize}
}

func (v pageView) UsedCount() int32 {
	return int32(binary.LittleEndian.Uint32(v.b[0:4]))
}

func (v pageView) SetUsedCount(n int32) {
	binary.LittleEndian.PutUint32(v.b[0:4], uint32(n))
}

func (v pageView) recordOffset(i int) int {
	return headerSize + i*v.recordSize
}

// Record returns a view of slot i's bytes, valid only for i < UsedCount.
func (v pageView) Record(i int) []byte {
	off := v.recordOffset(i)
	return v.b[off : off+v.recordSize]
}

// SetRecord copies src into slot i.
func (v pageView) SetRecord(i int, src []byte) {
	copy(v.Record(i), src)
}

// capacityFor returns how many recordSize-sized records fit in one page
// after the header.
func capacityFor(pageSize, recordSize int) int {
	return (pageSize - headerSize) / recordSize
}
