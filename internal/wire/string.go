package wire

import (
	"encoding/binary"
	"errors"
	"unicode/utf8"
)

// MaxStringLength is the largest byte length a bare string can declare.
const MaxStringLength = 0xFFFF

// StringHeaderSize is the size of a bare string's length prefix.
const StringHeaderSize = 2

var (
	// ErrStringTooLong indicates a string does not fit the 2-byte length prefix.
	ErrStringTooLong = errors.New("nbt: string exceeds 65535 bytes")

	// ErrInvalidUTF8 indicates string bytes are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("nbt: invalid UTF-8 string")
)

// AppendString appends a bare string: a 2-byte big-endian unsigned length
// followed by the raw bytes, with no terminator.
func AppendString(buf []byte, s string) ([]byte, error) {
	if len(s) > MaxStringLength {
		return buf, ErrStringTooLong
	}
	buf = binary.BigEndian.AppendUint16(buf, uint16(len(s)))
	return append(buf, s...), nil
}

// PutStringHeader writes the 2-byte length prefix of an n-byte string.
// The caller checks n against MaxStringLength.
func PutStringHeader(buf []byte, n int) {
	binary.BigEndian.PutUint16(buf, uint16(n))
}

// DecodeStringLength decodes the 2-byte length prefix of a bare string.
func DecodeStringLength(data []byte) (int, error) {
	if len(data) < StringHeaderSize {
		return 0, ErrTruncated
	}
	return int(binary.BigEndian.Uint16(data)), nil
}

// DecodeString decodes a bare string from data, checking UTF-8 when
// validate is set. Returns the string and the number of bytes consumed.
func DecodeString(data []byte, validate bool) (string, int, error) {
	n, err := DecodeStringLength(data)
	if err != nil {
		return "", 0, err
	}
	if n == 0 {
		return "", StringHeaderSize, nil
	}
	end := StringHeaderSize + n
	if len(data) < end {
		return "", 0, ErrTruncated
	}
	raw := data[StringHeaderSize:end]
	if validate && !utf8.Valid(raw) {
		return "", 0, ErrInvalidUTF8
	}
	return string(raw), end, nil
}

// StringSize returns the encoded size of a bare string.
func StringSize(s string) int {
	return StringHeaderSize + len(s)
}
