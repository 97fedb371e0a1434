package disk

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOrOpen(t *testing.T) {
	t.Run("creating a fresh file reports created=true", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "idx.db")
		bf, created, err := CreateOrOpen(path)
		require.NoError(t, err)
		defer bf.Close()

		assert.True(t, created)
		assert.Equal(t, PageId(1), bf.PageCount())
	})

	t.Run("reopening an existing file reports created=false", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "idx.db")
		bf, _, err := CreateOrOpen(path)
		require.NoError(t, err)
		id, err := bf.AllocPage()
		require.NoError(t, err)
		require.NoError(t, bf.Close())

		bf2, created, err := CreateOrOpen(path)
		require.NoError(t, err)
		defer bf2.Close()

		assert.False(t, created)
		assert.Equal(t, id+1, bf2.PageCount())
	})
}

func TestAllocPageIsZeroed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.db")
	bf, _, err := CreateOrOpen(path)
	require.NoError(t, err)
	defer bf.Close()

	id, err := bf.AllocPage()
	require.NoError(t, err)

	buf := make([]byte, PageSize)
	require.NoError(t, bf.ReadAt(id, buf))
	for _, b := range buf {
		assert.Equal(t, byte(0), b)
	}
}

func TestWriteAtThenReadAt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.db")
	bf, _, err := CreateOrOpen(path)
	require.NoError(t, err)
	defer bf.Close()

	id, err := bf.AllocPage()
	require.NoError(t, err)

	src := make([]byte, PageSize)
	src[0] = 0x42
	src[PageSize-1] = 0x24
	require.NoError(t, bf.WriteAt(id, src))

	dst := make([]byte, PageSize)
	require.NoError(t, bf.ReadAt(id, dst))
	assert.Equal(t, src, dst)
}

func TestAllocPageGrowsBeyondInitialSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "idx.db")
	bf, _, err := CreateOrOpen(path)
	require.NoError(t, err)
	defer bf.Close()

	var last PageId
	for i := 0; i < initialFileSize/PageSize+5; i++ {
		last, err = bf.AllocPage()
		require.NoError(t, err)
	}

	buf := make([]byte, PageSize)
	assert.NoError(t, bf.ReadAt(last, buf))
}
