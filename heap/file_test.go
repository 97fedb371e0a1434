package heap

import (
	"encoding/binary"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intRecord(v int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func TestAppendAndScanRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.heap")
	hf, err := Open(path, 4, 8, 2)
	require.NoError(t, err)
	defer hf.Close()

	for i := int32(0); i < 5; i++ {
		_, err := hf.Append(intRecord(i))
		require.NoError(t, err)
	}

	var got []int32
	for {
		_, data, err := hf.ScanNext()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, int32(binary.LittleEndian.Uint32(data)))
	}

	assert.Equal(t, []int32{0, 1, 2, 3, 4}, got)
}

func TestAppendSpillsAcrossPages(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.heap")
	hf, err := Open(path, 4, 8, 2)
	require.NoError(t, err)
	defer hf.Close()

	capacity := capacityFor(4096, 4)
	n := capacity + 5

	for i := 0; i < n; i++ {
		_, err := hf.Append(intRecord(int32(i)))
		require.NoError(t, err)
	}
	assert.Greater(t, hf.activePageId, hf.file.PageCount()-2)
	assert.Greater(t, int(hf.file.PageCount()), 2)
}

func TestGetRecordRandomAccess(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.heap")
	hf, err := Open(path, 4, 8, 2)
	require.NoError(t, err)
	defer hf.Close()

	rid, err := hf.Append(intRecord(42))
	require.NoError(t, err)

	data, err := hf.GetRecord(rid)
	require.NoError(t, err)
	assert.Equal(t, int32(42), int32(binary.LittleEndian.Uint32(data)))
}

func TestReopenContinuesAppending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.heap")
	hf, err := Open(path, 4, 8, 2)
	require.NoError(t, err)
	_, err = hf.Append(intRecord(1))
	require.NoError(t, err)
	require.NoError(t, hf.Close())

	hf2, err := Open(path, 4, 8, 2)
	require.NoError(t, err)
	defer hf2.Close()

	_, err = hf2.Append(intRecord(2))
	require.NoError(t, err)

	var got []int32
	for {
		_, data, err := hf2.ScanNext()
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
		got = append(got, int32(binary.LittleEndian.Uint32(data)))
	}
	assert.Equal(t, []int32{1, 2}, got)
}
