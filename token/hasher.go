// Package token computes partition tokens exactly as the database's default
// Murmur3Partitioner does, so generated keys can be placed on a simulated ring
// the same way the cluster places them.
package token

import (
	"encoding/binary"
	"math"
	"math/bits"
)

const (
	// MinToken and MaxToken bound the Murmur3Partitioner token range.
	MinToken int64 = math.MinInt64
	MaxToken int64 = math.MaxInt64

	blockSize = 16

	c1 uint64 = 0x87c37b91114253d5
	c2 uint64 = 0x4cf5ad432745937f
)

// Partitioner names a token function and builds hashers for it.
type Partitioner interface {
	Name() string
	NewHasher() *Hasher
}

// Murmur3Partitioner is the 128-bit x64 murmur3 token function, keeping the
// low 64 bits of the digest.
type Murmur3Partitioner struct{}

// Name returns the partitioner class name used in cluster metadata.
func (Murmur3Partitioner) Name() string {
	return "org.apache.cassandra.dht.Murmur3Partitioner"
}

// NewHasher returns an empty hasher.
func (Murmur3Partitioner) NewHasher() *Hasher {
	return &Hasher{}
}

// Hasher streams the bytes of one partition key. The zero value is ready to
// use. A Hasher must not be shared between goroutines; give each worker its own.
type Hasher struct {
	h1, h2   uint64
	totalLen uint64
	buf      [blockSize]byte // only the first totalLen%16 bytes are meaningful
}

// Write appends p to the key. It never fails.
func (h *Hasher) Write(p []byte) (int, error) {
	n := len(p)
	buffered := int(h.totalLen % blockSize)
	h.totalLen += uint64(n)

	if buffered > 0 {
		fill := copy(h.buf[buffered:], p)
		p = p[fill:]
		if buffered+fill < blockSize {
			return n, nil
		}
		h.mixBlock(h.buf[:])
	}

	for len(p) >= blockSize {
		h.mixBlock(p[:blockSize])
		p = p[blockSize:]
	}
	copy(h.buf[:], p)
	return n, nil
}

// WriteString appends the bytes of s to the key.
func (h *Hasher) WriteString(s string) (int, error) {
	return h.Write([]byte(s))
}

func (h *Hasher) mixBlock(b []byte) {
	k1 := binary.LittleEndian.Uint64(b[0:8])
	k2 := binary.LittleEndian.Uint64(b[8:16])

	k1 *= c1
	k1 = bits.RotateLeft64(k1, 31)
	k1 *= c2
	h.h1 ^= k1

	h.h1 = bits.RotateLeft64(h.h1, 27)
	h.h1 += h.h2
	h.h1 = h.h1*5 + 0x52dce729

	k2 *= c2
	k2 = bits.RotateLeft64(k2, 33)
	k2 *= c1
	h.h2 ^= k2

	h.h2 = bits.RotateLeft64(h.h2, 31)
	h.h2 += h.h1
	h.h2 = h.h2*5 + 0x38495ab5
}

// Token finishes the digest and returns the token. It works on a copy of the
// state, so the hasher is left unchanged.
func (h *Hasher) Token() int64 {
	h1, h2 := h.h1, h.h2
	tail := h.buf[:h.totalLen%blockSize]

	var k1, k2 uint64
	if len(tail) > 8 {
		for i := len(tail) - 1; i >= 8; i-- {
			// Bytes are sign extended before folding.
			k2 ^= uint64(int64(int8(tail[i]))) << ((i - 8) * 8)
		}
		k2 *= c2
		k2 = bits.RotateLeft64(k2, 33)
		k2 *= c1
		h2 ^= k2
	}
	if len(tail) > 0 {
		for i := min(8, len(tail)) - 1; i >= 0; i-- {
			k1 ^= uint64(int64(int8(tail[i]))) << (i * 8)
		}
		k1 *= c1
		k1 = bits.RotateLeft64(k1, 31)
		k1 *= c2
		h1 ^= k1
	}

	h1 ^= h.totalLen
	h2 ^= h.totalLen

	h1 += h2
	h2 += h1

	h1 = fmix(h1)
	h2 = fmix(h2)

	h1 += h2
	// h2 += h1 would complete the 128-bit digest; the token is its low half.
	return int64(h1)
}

// Reset clears the hasher so it can hash another key.
func (h *Hasher) Reset() {
	*h = Hasher{}
}

// Len returns the number of bytes written since the last Reset.
func (h *Hasher) Len() uint64 {
	return h.totalLen
}

func fmix(k uint64) uint64 {
	k ^= k >> 33
	k *= 0xff51afd7ed558ccd
	k ^= k >> 33
	k *= 0xc4ceb9fe1a85ec53
	k ^= k >> 33
	return k
}

// Of returns the token of a complete serialized partition key.
func Of(key []byte) int64 {
	var h Hasher
	h.Write(key)
	return h.Token()
}
