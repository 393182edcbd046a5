package database

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Embeddings are stored as raw IEEE-754 64-bit floats, little-endian,
// concatenated with no length prefix. The vector length is implicit from the
// catalog-wide fixed dimensionality. The round trip is bit-exact: NaN
// payloads, negative zero and denormals all survive.

// SerializeEmbedding encodes an embedding for storage in a BYTEA column.
func SerializeEmbedding(embedding []float64) []byte {
	buf := make([]byte, 8*len(embedding))
	for i, v := range embedding {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	return buf
}

// DeserializeEmbedding decodes a stored embedding blob. The blob length must
// be a multiple of 8 bytes.
func DeserializeEmbedding(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d: not a multiple of 8", len(blob))
	}
	embedding := make([]float64, len(blob)/8)
	for i := range embedding {
		embedding[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[8*i:]))
	}
	return embedding, nil
}
