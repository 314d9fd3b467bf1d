package compress

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"go.uber.org/zap"
)

// Type identifies a compression filter.
type Type uint8

const (
	// None passes data through unchanged.
	None Type = iota
	// Gzip is RFC 1952 gzip, the usual wrapping of .nbt and .dat files.
	Gzip
	// Zlib is RFC 1950 zlib, used for region-file chunks and network data.
	Zlib
	// LZ4 is the LZ4 frame format.
	LZ4
	// Zstd is Zstandard.
	Zstd
)

// ErrUnknownType is returned for a Type outside the known set.
var ErrUnknownType = errors.New("compress: unknown compression type")

// String returns the lower-case name of the type.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zlib:
		return "zlib"
	case LZ4:
		return "lz4"
	case Zstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParseType parses a type from its name.
func ParseType(name string) (Type, error) {
	switch name {
	case "none", "raw":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zlib":
		return Zlib, nil
	case "lz4":
		return LZ4, nil
	case "zstd", "zst":
		return Zstd, nil
	default:
		return None, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
}

// Types lists every supported type in ID order.
func Types() []Type {
	return []Type{None, Gzip, Zlib, LZ4, Zstd}
}

// PrefixLen is the number of bytes Detect needs to recognize every type.
const PrefixLen = 4

var (
	gzipMagic = []byte{0x1f, 0x8b}
	lz4Magic  = []byte{0x04, 0x22, 0x4d, 0x18}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// Detect returns the type whose signature prefix starts with, or None.
func Detect(prefix []byte) Type {
	switch {
	case bytes.HasPrefix(prefix, gzipMagic):
		return Gzip
	case bytes.HasPrefix(prefix, lz4Magic):
		return LZ4
	case bytes.HasPrefix(prefix, zstdMagic):
		return Zstd
	case isZlibHeader(prefix):
		return Zlib
	default:
		return None
	}
}

// isZlibHeader checks the CMF/FLG pair: deflate method, a window of at
// most 32K and a header checksum divisible by 31.
func isZlibHeader(p []byte) bool {
	if len(p) < 2 {
		return false
	}
	cmf, flg := p[0], p[1]
	if cmf&0x0f != 8 || cmf>>4 > 7 {
		return false
	}
	return (uint16(cmf)<<8|uint16(flg))%31 == 0
}

// NewReader wraps r with the decompressor for t. Closing the result does
// not close r.
func NewReader(r io.Reader, t Type) (io.ReadCloser, error) {
	switch t {
	case None:
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		return zr, nil
	case Zlib:
		zr, err := zlib.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zlib reader: %w", err)
		}
		return zr, nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	case Zstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return zr.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
}

// NewAutoReader detects the compression of r from its first bytes and
// returns a reader of the decompressed stream. The detected bytes are
// not lost.
func NewAutoReader(r io.Reader) (io.ReadCloser, Type, error) {
	br := bufio.NewReader(r)
	prefix, err := br.Peek(PrefixLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, None, err
	}
	t := Detect(prefix)
	Logger().Debug("detected compression",
		zap.Stringer("type", t),
		zap.Binary("prefix", prefix))
	rc, err := NewReader(br, t)
	if err != nil {
		return nil, t, err
	}
	return rc, t, nil
}

// nopWriteCloser adds a no-op Close to an io.Writer.
type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// NewWriter wraps w with the compressor for t. Close must be called to
// flush the trailer; it does not close w.
func NewWriter(w io.Writer, t Type) (io.WriteCloser, error) {
	switch t {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zlib:
		return zlib.NewWriter(w), nil
	case LZ4:
		return lz4.NewWriter(w), nil
	case Zstd:
		zw, err := zstd.NewWriter(w, zstd.WithEncoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return zw, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, uint8(t))
	}
}

// Compress returns data wrapped with t.
func Compress(data []byte, t Type) ([]byte, error) {
	var buf bytes.Buffer
	zw, err := NewWriter(&buf, t)
	if err != nil {
		return nil, err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress unwraps data compressed with t. At most limit decompressed
// bytes are accepted; a limit of 0 means no limit.
func Decompress(data []byte, t Type, limit int64) ([]byte, error) {
	zr, err := NewReader(bytes.NewReader(data), t)
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return readAll(zr, limit)
}

// ErrTooLarge is returned when decompressed output exceeds the limit.
var ErrTooLarge = errors.New("compress: decompressed data exceeds limit")

func readAll(r io.Reader, limit int64) ([]byte, error) {
	if limit <= 0 {
		return io.ReadAll(r)
	}
	out, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(out)) > limit {
		return nil, ErrTooLarge
	}
	return out, nil
}
