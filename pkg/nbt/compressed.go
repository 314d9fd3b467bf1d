package nbt

import (
	"io"

	"github.com/blockberries/nbt/pkg/compress"
)

// UnmarshalGzip decompresses a gzip stream and decodes it into v.
func UnmarshalGzip(r io.Reader, v any) error {
	return unmarshalFiltered(r, v, compress.Gzip)
}

// UnmarshalZlib decompresses a zlib stream and decodes it into v.
func UnmarshalZlib(r io.Reader, v any) error {
	return unmarshalFiltered(r, v, compress.Zlib)
}

// UnmarshalCompressed detects the compression of r from its first bytes,
// decompresses as needed and decodes into v. Uncompressed input is read
// as is.
func UnmarshalCompressed(r io.Reader, v any) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	zr, _, err := compress.NewAutoReader(r)
	if err != nil {
		return ioError(err)
	}
	defer zr.Close()
	return UnmarshalFrom(zr, v)
}

func unmarshalFiltered(r io.Reader, v any, t compress.Type) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	zr, err := compress.NewReader(r, t)
	if err != nil {
		return ioError(err)
	}
	defer zr.Close()
	return UnmarshalFrom(zr, v)
}

// DecodeCompressed reads a possibly compressed root compound from r and
// reports its name and the compression found.
func DecodeCompressed(r io.Reader) (string, *Compound, compress.Type, error) {
	zr, t, err := compress.NewAutoReader(r)
	if err != nil {
		return "", nil, t, ioError(err)
	}
	defer zr.Close()
	name, c, err := NewDecoder(zr).Decode()
	return name, c, t, err
}

// MarshalCompressed encodes v and writes it to w through the given filter.
func MarshalCompressed(w io.Writer, v any, t compress.Type) error {
	data, err := Marshal(v)
	if err != nil {
		return err
	}
	return writeFiltered(w, data, t)
}

// EncodeCompressed encodes a tree and writes it to w through the given
// filter.
func EncodeCompressed(w io.Writer, root *Compound, rootName string, t compress.Type) error {
	data, err := Encode(root, rootName)
	if err != nil {
		return err
	}
	return writeFiltered(w, data, t)
}

func writeFiltered(w io.Writer, data []byte, t compress.Type) error {
	zw, err := compress.NewWriter(w, t)
	if err != nil {
		return err
	}
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return ioError(err)
	}
	if err := zw.Close(); err != nil {
		return ioError(err)
	}
	return nil
}
