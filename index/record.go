package index

import "encoding/binary"

// RecordId names one tuple of the base heap relation: its page number and
// slot within that page. SlotNum == 0 is the reserved "empty slot"
// sentinel — it can never be produced for a real tuple.
type RecordId struct {
	PageNum uint32
	SlotNum uint32
}

// IsEmpty reports whether r is the empty-slot sentinel.
func (r RecordId) IsEmpty() bool { return r.SlotNum == 0 }

func getRecordId(b []byte, off int) RecordId {
	return RecordId{
		PageNum: binary.LittleEndian.Uint32(b[off : off+4]),
		SlotNum: binary.LittleEndian.Uint32(b[off+4 : off+8]),
	}
}

func putRecordId(b []byte, off int, r RecordId) {
	binary.LittleEndian.PutUint32(b[off:off+4], r.PageNum)
	binary.LittleEndian.PutUint32(b[off+4:off+8], r.SlotNum)
}
