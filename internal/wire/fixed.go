package wire

import (
	"encoding/binary"
	"errors"
	"math"
)

// ErrTruncated indicates the input was shorter than the fixed width being decoded.
var ErrTruncated = errors.New("nbt: data truncated")

// Size constants for fixed-width payloads. Every numeric NBT payload is
// big-endian with no padding.
const (
	Int8Size    = 1
	Int16Size   = 2
	Int32Size   = 4
	Int64Size   = 8
	Float32Size = 4
	Float64Size = 8
)

// AppendInt8 appends a signed byte.
func AppendInt8(buf []byte, v int8) []byte {
	return append(buf, byte(v))
}

// AppendInt16 appends a 16-bit value in big-endian format.
func AppendInt16(buf []byte, v int16) []byte {
	return binary.BigEndian.AppendUint16(buf, uint16(v))
}

// AppendInt32 appends a 32-bit value in big-endian format.
func AppendInt32(buf []byte, v int32) []byte {
	return binary.BigEndian.AppendUint32(buf, uint32(v))
}

// AppendInt64 appends a 64-bit value in big-endian format.
func AppendInt64(buf []byte, v int64) []byte {
	return binary.BigEndian.AppendUint64(buf, uint64(v))
}

// AppendFloat32 appends an IEEE-754 float32 in big-endian format.
//
// Unlike a canonicalizing encoder, the bit pattern is written verbatim:
// NaN payloads and negative zero survive a round trip.
func AppendFloat32(buf []byte, v float32) []byte {
	return binary.BigEndian.AppendUint32(buf, math.Float32bits(v))
}

// AppendFloat64 appends an IEEE-754 float64 in big-endian format.
func AppendFloat64(buf []byte, v float64) []byte {
	return binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
}

// DecodeInt16 decodes a big-endian 16-bit value.
func DecodeInt16(data []byte) (int16, error) {
	if len(data) < Int16Size {
		return 0, ErrTruncated
	}
	return int16(binary.BigEndian.Uint16(data)), nil
}

// DecodeInt32 decodes a big-endian 32-bit value.
func DecodeInt32(data []byte) (int32, error) {
	if len(data) < Int32Size {
		return 0, ErrTruncated
	}
	return int32(binary.BigEndian.Uint32(data)), nil
}

// DecodeInt64 decodes a big-endian 64-bit value.
func DecodeInt64(data []byte) (int64, error) {
	if len(data) < Int64Size {
		return 0, ErrTruncated
	}
	return int64(binary.BigEndian.Uint64(data)), nil
}

// DecodeFloat32 decodes a big-endian float32.
func DecodeFloat32(data []byte) (float32, error) {
	if len(data) < Float32Size {
		return 0, ErrTruncated
	}
	return math.Float32frombits(binary.BigEndian.Uint32(data)), nil
}

// DecodeFloat64 decodes a big-endian float64.
func DecodeFloat64(data []byte) (float64, error) {
	if len(data) < Float64Size {
		return 0, ErrTruncated
	}
	return math.Float64frombits(binary.BigEndian.Uint64(data)), nil
}

// PutInt16 writes a 16-bit value to buf in big-endian format.
// The buffer must have at least 2 bytes available.
func PutInt16(buf []byte, v int16) {
	binary.BigEndian.PutUint16(buf, uint16(v))
}

// PutInt32 writes a 32-bit value to buf in big-endian format.
// The buffer must have at least 4 bytes available.
func PutInt32(buf []byte, v int32) {
	binary.BigEndian.PutUint32(buf, uint32(v))
}

// PutInt64 writes a 64-bit value to buf in big-endian format.
// The buffer must have at least 8 bytes available.
func PutInt64(buf []byte, v int64) {
	binary.BigEndian.PutUint64(buf, uint64(v))
}
