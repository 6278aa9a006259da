package effect

import (
	"encoding/binary"
	"encoding/hex"
	"hash"
	"hash/fnv"
)

// ObjectID is a 128-bit content hash. The zero value means "no content".
type ObjectID [16]byte

var ObjectIDEmpty ObjectID

func (id ObjectID) IsEmpty() bool {
	return id == ObjectIDEmpty
}

func (id ObjectID) String() string {
	return hex.EncodeToString(id[:])
}

// hashBuilder feeds typed values into an FNV-128a digest.
type hashBuilder struct {
	h   hash.Hash
	buf [8]byte
}

func newHashBuilder() *hashBuilder {
	return &hashBuilder{h: fnv.New128a()}
}

func (b *hashBuilder) writeString(s string) {
	b.writeInt(len(s))
	b.h.Write([]byte(s))
}

func (b *hashBuilder) writeInt(v int) {
	binary.LittleEndian.PutUint64(b.buf[:], uint64(v))
	b.h.Write(b.buf[:])
}

func (b *hashBuilder) sum() ObjectID {
	var id ObjectID
	copy(id[:], b.h.Sum(nil))
	// A real digest of zero bytes would read as "empty"; flip a bit so hashed
	// content is never mistaken for absence.
	if id.IsEmpty() {
		id[0] = 1
	}
	return id
}
