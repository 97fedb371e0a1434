package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name string `msgpack:"name"`
	N    int32  `msgpack:"n"`
}

func TestToBytesFromBytesRoundtrip(t *testing.T) {
	in := sample{Name: "leaf", N: 7}

	data, err := ToBytes(in)
	require.NoError(t, err)

	out, err := FromBytes[sample](data)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
