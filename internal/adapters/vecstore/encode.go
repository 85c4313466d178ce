package vecstore

import (
	"bytes"
	"encoding/binary"
)

// encodeEmbedding serializes a vector into the little-endian float32
// blob format vec0 expects.
func encodeEmbedding(v []float32) []byte {
	buf := new(bytes.Buffer)
	buf.Grow(len(v) * 4)
	// binary.Write on []float32 cannot fail against a bytes.Buffer.
	_ = binary.Write(buf, binary.LittleEndian, v)
	return buf.Bytes()
}
