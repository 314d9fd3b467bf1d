package nbt

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blockberries/nbt/pkg/compress"
)

type level struct {
	Name  string   `nbt:"LevelName"`
	Seed  int64    `nbt:"RandomSeed"`
	Spawn []int32  `nbt:"Spawn"`
	Tags  []string `nbt:"Tags"`
}

func TestCompressedRoundTrip(t *testing.T) {
	src := level{Name: "world", Seed: -99, Spawn: []int32{0, 64, 0}, Tags: []string{"a", "b"}}
	for _, ct := range compress.Types() {
		t.Run(ct.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, MarshalCompressed(&buf, src, ct))

			var got level
			require.NoError(t, UnmarshalCompressed(bytes.NewReader(buf.Bytes()), &got))
			assert.Equal(t, src, got)

			_, tree, detected, err := DecodeCompressed(bytes.NewReader(buf.Bytes()))
			require.NoError(t, err)
			assert.Equal(t, ct, detected)
			v, _ := tree.Get("LevelName")
			assert.Equal(t, String("world"), v)
		})
	}
}

func TestUnmarshalGzipAndZlib(t *testing.T) {
	type doc struct {
		Name string `nbt:"name"`
	}

	gz, err := compress.Compress(bananrama, compress.Gzip)
	require.NoError(t, err)
	var out doc
	require.NoError(t, UnmarshalGzip(bytes.NewReader(gz), &out))
	assert.Equal(t, "Bananrama", out.Name)

	zl, err := compress.Compress(bananrama, compress.Zlib)
	require.NoError(t, err)
	out = doc{}
	require.NoError(t, UnmarshalZlib(bytes.NewReader(zl), &out))
	assert.Equal(t, "Bananrama", out.Name)

	err = UnmarshalGzip(bytes.NewReader(bananrama), &out)
	require.Error(t, err)
}

func TestEncodeCompressedKeepsRootName(t *testing.T) {
	var buf bytes.Buffer
	c := NewCompound().Set("name", String("Bananrama"))
	require.NoError(t, EncodeCompressed(&buf, c, "hello world", compress.Zstd))

	name, got, ct, err := DecodeCompressed(&buf)
	require.NoError(t, err)
	assert.Equal(t, "hello world", name)
	assert.Equal(t, compress.Zstd, ct)
	assert.True(t, Equal(c, got))
}

func TestCompressedTruncated(t *testing.T) {
	gz, err := compress.Compress(helloWorld, compress.Gzip)
	require.NoError(t, err)
	raw, err := compress.Decompress(gz, compress.Gzip, 0)
	require.NoError(t, err)
	require.Equal(t, helloWorld, raw)

	// Cut the uncompressed document short and recompress it: the codec
	// must report an incomplete value, not a stream fault.
	short, err := compress.Compress(helloWorld[:len(helloWorld)-3], compress.Gzip)
	require.NoError(t, err)
	var out struct {
		Name string `nbt:"name"`
	}
	err = UnmarshalCompressed(bytes.NewReader(short), &out)
	require.ErrorIs(t, err, ErrUnexpectedEOF)
}
