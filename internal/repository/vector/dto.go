package vector

import (
	"encoding/binary"
	"math"
)

// buildHashFields flattens a vector and its metadata into HSET fields.
// The namespace field always reflects the key's namespace.
func buildHashFields(namespace string, vector []float32, metadata map[string]string) map[string]string {
	m := make(map[string]string, len(metadata)+2)
	for k, v := range metadata {
		m[k] = v
	}
	m[fieldNamespace] = namespace
	m[fieldVector] = vectorToBytes(vector)
	return m
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}
