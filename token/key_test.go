package token

import (
	"bytes"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilderSingleComponentIsRaw(t *testing.T) {
	b := NewKeyBuilder()
	defer b.Release()

	key, err := b.Int32(1).Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 1}, key)

	tok, err := b.Token()
	require.NoError(t, err)
	require.Equal(t, int64(-4069959284402364209), tok)
}

func TestKeyBuilderComposite(t *testing.T) {
	b := NewKeyBuilder()
	defer b.Release()

	key, err := b.Int32(1).Text("a").Bytes()
	require.NoError(t, err)
	require.Equal(t, []byte{0, 4, 0, 0, 0, 1, 0, 0, 1, 'a', 0}, key)
	require.Equal(t, 2, b.Parts())

	tok, err := b.Token()
	require.NoError(t, err)
	require.Equal(t, int64(6516349416904725244), tok)
}

func TestKeyBuilderVectors(t *testing.T) {
	id := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	tests := []struct {
		name  string
		build func(*KeyBuilder)
		want  int64
	}{
		{"text and bigint", func(b *KeyBuilder) { b.Text("user").Int64(42) }, -634928134493276186},
		{"uuid", func(b *KeyBuilder) { b.UUID(id) }, -6761550319734257329},
		{"uuid and text", func(b *KeyBuilder) { b.UUID(id).Text("x") }, 2531242022895598364},
		{"bigint", func(b *KeyBuilder) { b.Int64(42) }, 8623491988607824794},
		{"blob", func(b *KeyBuilder) { b.Blob([]byte("key0")) }, -468459073612751032},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewKeyBuilder()
			defer b.Release()
			tt.build(b)
			tok, err := b.Token()
			require.NoError(t, err)
			require.Equal(t, tt.want, tok)
		})
	}
}

func TestKeyBuilderReset(t *testing.T) {
	b := NewKeyBuilder()
	defer b.Release()

	b.Text("user").Int64(42)
	b.Reset()
	require.Equal(t, 0, b.Parts())

	key, err := b.Bytes()
	require.NoError(t, err)
	require.Nil(t, key)

	tok, err := b.Text("key1").Token()
	require.NoError(t, err)
	require.Equal(t, int64(1573573083296714675), tok)
}

func TestKeyBuilderOversizedComponent(t *testing.T) {
	big := bytes.Repeat([]byte{'x'}, 70000)

	b := NewKeyBuilder()
	defer b.Release()

	// A single large component is hashed raw.
	key, err := b.Blob(big).Bytes()
	require.NoError(t, err)
	require.Len(t, key, len(big))

	_, err = b.Int32(1).Token()
	require.ErrorIs(t, err, ErrComponentTooLarge)
}

func TestKeyBuilderReleaseTwice(t *testing.T) {
	b := NewKeyBuilder()
	b.Release()
	require.NotPanics(t, b.Release)
}
