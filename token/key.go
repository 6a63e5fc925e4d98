package token

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/google/uuid"

	"github.com/dzonerzy/go-cstress/internal/pool"
)

// ErrComponentTooLarge is returned when a component of a composite key does
// not fit the 16-bit length prefix.
var ErrComponentTooLarge = errors.New("token: composite key component exceeds 65535 bytes")

// KeyBuilder serializes partition keys the way the database does before
// hashing them. A key with one component is its raw bytes. A key with several
// components is, per component, a big-endian uint16 length, the bytes and a
// zero end-of-component byte.
//
// Builders draw their buffer from a shared pool; call Release when done.
type KeyBuilder struct {
	buf       *[]byte
	parts     int
	oversized bool
}

// NewKeyBuilder returns an empty builder backed by a pooled buffer.
func NewKeyBuilder() *KeyBuilder {
	return &KeyBuilder{buf: pool.GetBuffer(64)}
}

// Int32 appends a CQL int component.
func (b *KeyBuilder) Int32(v int32) *KeyBuilder {
	var raw [4]byte
	binary.BigEndian.PutUint32(raw[:], uint32(v))
	return b.Blob(raw[:])
}

// Int64 appends a CQL bigint component.
func (b *KeyBuilder) Int64(v int64) *KeyBuilder {
	var raw [8]byte
	binary.BigEndian.PutUint64(raw[:], uint64(v))
	return b.Blob(raw[:])
}

// Text appends a CQL text component.
func (b *KeyBuilder) Text(s string) *KeyBuilder {
	b.begin(len(s))
	*b.buf = append(*b.buf, s...)
	*b.buf = append(*b.buf, 0)
	return b
}

// UUID appends a CQL uuid or timeuuid component.
func (b *KeyBuilder) UUID(id uuid.UUID) *KeyBuilder {
	return b.Blob(id[:])
}

// Blob appends a component made of raw bytes.
func (b *KeyBuilder) Blob(p []byte) *KeyBuilder {
	b.begin(len(p))
	*b.buf = append(*b.buf, p...)
	*b.buf = append(*b.buf, 0)
	return b
}

// begin writes the length prefix of the next component. Every component is
// stored in composite form; Bytes strips the framing of single-component keys.
func (b *KeyBuilder) begin(n int) {
	if n > math.MaxUint16 {
		b.oversized = true
	}
	*b.buf = binary.BigEndian.AppendUint16(*b.buf, uint16(n))
	b.parts++
}

// Bytes returns the serialized key. The slice aliases the builder's buffer and
// is valid until the next Reset or Release.
func (b *KeyBuilder) Bytes() ([]byte, error) {
	switch {
	case b.parts == 0:
		return nil, nil
	case b.parts == 1:
		enc := *b.buf
		return enc[2 : len(enc)-1], nil
	case b.oversized:
		return nil, ErrComponentTooLarge
	default:
		return *b.buf, nil
	}
}

// Token hashes the serialized key.
func (b *KeyBuilder) Token() (int64, error) {
	key, err := b.Bytes()
	if err != nil {
		return 0, err
	}
	return Of(key), nil
}

// Parts returns the number of components appended so far.
func (b *KeyBuilder) Parts() int {
	return b.parts
}

// Reset empties the builder, keeping its buffer.
func (b *KeyBuilder) Reset() {
	*b.buf = (*b.buf)[:0]
	b.parts = 0
	b.oversized = false
}

// Release returns the buffer to the pool. The builder must not be used afterwards.
func (b *KeyBuilder) Release() {
	if b.buf == nil {
		return
	}
	pool.PutBuffer(b.buf)
	b.buf = nil
}
