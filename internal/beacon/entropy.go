package beacon

import (
	"encoding/binary"
	"hash"
)

// Entropy is one of the two inputs mixed into a beacon derivation. The
// remote value comes from a network entropy source, the local value from the
// device itself. Both carry the version of the derivation scheme they were
// generated for.
type Entropy struct {
	Version   uint32
	Data      []byte
	Timestamp int64
}

// digest writes the entropy's mixing serialization into h: the raw data
// bytes followed by the timestamp as 8 little-endian bytes.
func (e Entropy) digest(h hash.Hash) {
	h.Write(e.Data)

	var ts [8]byte
	binary.LittleEndian.PutUint64(ts[:], uint64(e.Timestamp))
	h.Write(ts[:])
}
