// Package util holds small generic helpers shared by callers that need
// to move a Go value to and from its msgpack-encoded form, without each
// call site repeating the marshal/unmarshal boilerplate.
package util

import "github.com/vmihailenco/msgpack"

// ToBytes encodes obj as msgpack.
func ToBytes[T any](obj T) ([]byte, error) {
	return msgpack.Marshal(obj)
}

// FromBytes decodes data, previously produced by ToBytes, back into a T.
func FromBytes[T any](data []byte) (T, error) {
	var res T
	err := msgpack.Unmarshal(data, &res)
	return res, err
}
