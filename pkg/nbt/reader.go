package nbt

import (
	"errors"
	"math"

	"github.com/blockberries/nbt/internal/wire"
)

// source is the byte-level surface the decoder reads from. Reader and
// StreamReader implement it.
type source interface {
	ReadKind() Kind
	ReadInt8() int8
	ReadInt16() int16
	ReadInt32() int32
	ReadInt64() int64
	ReadFloat32() float32
	ReadFloat64() float64
	ReadString() string
	ReadLength() int
	ReadInt8s(n int) []int8
	ReadInt32s(n int) []int32
	ReadInt64s(n int) []int64
	Pos() int
	Err() error
	Options() Options
	setError(err error)
	// available returns the number of unread bytes, or -1 if unknown.
	available() int
}

// Reader provides big-endian decoding over a byte slice with position
// tracking. Readers are lightweight and can be reused.
//
// The zero value is not ready for use; create with NewReader.
type Reader struct {
	data []byte
	pos  int
	opts Options
	err  error
}

// NewReader creates a new Reader for the given data.
func NewReader(data []byte) *Reader {
	return NewReaderWithOptions(data, DefaultOptions)
}

// NewReaderWithOptions creates a new Reader with the specified options.
func NewReaderWithOptions(data []byte, opts Options) *Reader {
	r := &Reader{
		data: data,
		opts: opts,
	}
	if opts.Limits.MaxMessageSize > 0 && int64(len(data)) > opts.Limits.MaxMessageSize {
		r.err = ErrMaxSizeExceeded
	}
	return r
}

// Reset resets the reader to read from new data.
func (r *Reader) Reset(data []byte) {
	r.data = data
	r.pos = 0
	r.err = nil
}

// SetOptions updates the reader's options.
func (r *Reader) SetOptions(opts Options) {
	r.opts = opts
}

// Options returns the reader's current options.
func (r *Reader) Options() Options {
	return r.opts
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Pos returns the current read position.
func (r *Reader) Pos() int {
	return r.pos
}

// Remaining returns the unread portion of the data.
func (r *Reader) Remaining() []byte {
	if r.pos >= len(r.data) {
		return nil
	}
	return r.data[r.pos:]
}

// EOF returns true if all data has been read.
func (r *Reader) EOF() bool {
	return r.pos >= len(r.data)
}

// Err returns the first error that occurred during reading, if any.
func (r *Reader) Err() error {
	return r.err
}

func (r *Reader) available() int {
	return r.Len()
}

func (r *Reader) setError(err error) {
	if r.err == nil {
		r.err = err
	}
}

// setErrorAt records an error with position information.
func (r *Reader) setErrorAt(err error, message string) {
	if r.err == nil {
		r.err = NewDecodeErrorAt(r.pos, message, err)
	}
}

// ensure checks that n bytes are available.
func (r *Reader) ensure(n int) bool {
	if r.err != nil {
		return false
	}
	if n < 0 || r.pos+n > len(r.data) {
		r.setErrorAt(ErrUnexpectedEOF, "unexpected end of data")
		return false
	}
	return true
}

// Skip skips n bytes.
func (r *Reader) Skip(n int) {
	if !r.ensure(n) {
		return
	}
	r.pos += n
}

// ReadKind reads a tag ID and rejects bytes outside the known range.
func (r *Reader) ReadKind() Kind {
	if !r.ensure(1) {
		return TagEnd
	}
	id := r.data[r.pos]
	k, ok := KindFromID(id)
	if !ok {
		r.setErrorAt(&UnknownTagError{ID: id}, "")
		return TagEnd
	}
	r.pos++
	return k
}

// ReadInt8 reads a signed byte.
func (r *Reader) ReadInt8() int8 {
	if !r.ensure(wire.Int8Size) {
		return 0
	}
	v := int8(r.data[r.pos])
	r.pos++
	return v
}

// ReadInt16 reads a big-endian 16-bit integer.
func (r *Reader) ReadInt16() int16 {
	if !r.ensure(wire.Int16Size) {
		return 0
	}
	v, _ := wire.DecodeInt16(r.data[r.pos:])
	r.pos += wire.Int16Size
	return v
}

// ReadInt32 reads a big-endian 32-bit integer.
func (r *Reader) ReadInt32() int32 {
	if !r.ensure(wire.Int32Size) {
		return 0
	}
	v, _ := wire.DecodeInt32(r.data[r.pos:])
	r.pos += wire.Int32Size
	return v
}

// ReadInt64 reads a big-endian 64-bit integer.
func (r *Reader) ReadInt64() int64 {
	if !r.ensure(wire.Int64Size) {
		return 0
	}
	v, _ := wire.DecodeInt64(r.data[r.pos:])
	r.pos += wire.Int64Size
	return v
}

// ReadFloat32 reads an IEEE-754 single.
func (r *Reader) ReadFloat32() float32 {
	if !r.ensure(wire.Float32Size) {
		return 0
	}
	v, _ := wire.DecodeFloat32(r.data[r.pos:])
	r.pos += wire.Float32Size
	return v
}

// ReadFloat64 reads an IEEE-754 double.
func (r *Reader) ReadFloat64() float64 {
	if !r.ensure(wire.Float64Size) {
		return 0
	}
	v, _ := wire.DecodeFloat64(r.data[r.pos:])
	r.pos += wire.Float64Size
	return v
}

// ReadString reads a bare string. The bytes are copied out of the buffer.
func (r *Reader) ReadString() string {
	if !r.ensure(wire.StringHeaderSize) {
		return ""
	}
	n, _ := wire.DecodeStringLength(r.data[r.pos:])
	if n > r.opts.maxString() {
		r.setErrorAt(ErrMaxStringLength, "")
		return ""
	}
	s, size, err := wire.DecodeString(r.data[r.pos:], r.opts.ValidateUTF8)
	switch {
	case errors.Is(err, wire.ErrTruncated):
		r.pos += wire.StringHeaderSize
		r.setErrorAt(ErrUnexpectedEOF, "unexpected end of data")
		return ""
	case err != nil:
		r.setErrorAt(err, "")
		return ""
	}
	r.pos += size
	return s
}

// ReadLength reads a 4-byte list or array length.
func (r *Reader) ReadLength() int {
	n := r.ReadInt32()
	if r.err != nil {
		return 0
	}
	if err := checkLength(int(n), r.opts); err != nil {
		r.pos -= wire.Int32Size
		r.setErrorAt(err, "")
		return 0
	}
	return int(n)
}

// ReadInt8s reads n raw bytes as signed values.
func (r *Reader) ReadInt8s(n int) []int8 {
	if !r.ensure(n) {
		return nil
	}
	out := make([]int8, n)
	for i := range out {
		out[i] = int8(r.data[r.pos+i])
	}
	r.pos += n
	return out
}

// ReadInt32s reads n raw big-endian 32-bit values.
func (r *Reader) ReadInt32s(n int) []int32 {
	if n > math.MaxInt32/wire.Int32Size || !r.ensure(n*wire.Int32Size) {
		r.setErrorAt(ErrUnexpectedEOF, "unexpected end of data")
		return nil
	}
	out := make([]int32, n)
	for i := range out {
		out[i], _ = wire.DecodeInt32(r.data[r.pos:])
		r.pos += wire.Int32Size
	}
	return out
}

// ReadInt64s reads n raw big-endian 64-bit values.
func (r *Reader) ReadInt64s(n int) []int64 {
	if n > math.MaxInt32/wire.Int64Size || !r.ensure(n*wire.Int64Size) {
		r.setErrorAt(ErrUnexpectedEOF, "unexpected end of data")
		return nil
	}
	out := make([]int64, n)
	for i := range out {
		out[i], _ = wire.DecodeInt64(r.data[r.pos:])
		r.pos += wire.Int64Size
	}
	return out
}
