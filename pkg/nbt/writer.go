package nbt

import (
	"math"
	"sync"

	"github.com/blockberries/nbt/internal/wire"
)

// sink is the byte-level surface the Encoder drives. Writer and
// StreamWriter implement it.
type sink interface {
	WriteKind(k Kind)
	WriteTagHeader(k Kind, name string)
	WriteInt8(v int8)
	WriteInt16(v int16)
	WriteInt32(v int32)
	WriteInt64(v int64)
	WriteFloat32(v float32)
	WriteFloat64(v float64)
	WriteString(s string)
	WriteLength(n int)
	WriteInt8s(v []int8)
	WriteInt32s(v []int32)
	WriteInt64s(v []int64)
	Err() error
	Options() Options
	setError(err error)
}

// Writer provides efficient big-endian encoding into a growable buffer.
// Writers can be reused to reduce allocations.
//
// The zero value is ready to use, but for better performance,
// use NewWriter or GetWriter.
type Writer struct {
	buf    []byte
	opts   Options
	err    error
	frozen bool // prevents further writes after Bytes() is called
}

// writerPool provides pooled writers for reduced allocations.
var writerPool = sync.Pool{
	New: func() any {
		return &Writer{
			buf:  make([]byte, 0, 256),
			opts: DefaultOptions,
		}
	},
}

// NewWriter creates a new Writer with default options.
func NewWriter() *Writer {
	return NewWriterWithOptions(DefaultOptions)
}

// NewWriterWithOptions creates a new Writer with the specified options.
func NewWriterWithOptions(opts Options) *Writer {
	return &Writer{
		buf:  make([]byte, 0, 256),
		opts: opts,
	}
}

// NewWriterWithBuffer creates a Writer using the provided buffer.
// The buffer will be reused if it has sufficient capacity.
func NewWriterWithBuffer(buf []byte, opts Options) *Writer {
	return &Writer{
		buf:  buf[:0],
		opts: opts,
	}
}

// GetWriter gets a Writer from the pool.
// The Writer should be returned with PutWriter when done.
func GetWriter() *Writer {
	w := writerPool.Get().(*Writer)
	w.Reset()
	w.opts = DefaultOptions
	return w
}

// PutWriter returns a Writer to the pool.
// The Writer must not be used after calling this.
func PutWriter(w *Writer) {
	if w == nil {
		return
	}
	// Don't pool large buffers to avoid memory bloat
	if cap(w.buf) > 64*1024 {
		return
	}
	w.Reset()
	writerPool.Put(w)
}

// Reset clears the writer for reuse.
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
	w.err = nil
	w.frozen = false
}

// SetOptions updates the writer's options.
func (w *Writer) SetOptions(opts Options) {
	w.opts = opts
}

// Options returns the writer's current options.
func (w *Writer) Options() Options {
	return w.opts
}

// Len returns the current length of the encoded data.
func (w *Writer) Len() int {
	return len(w.buf)
}

// Bytes returns the encoded data.
// The returned slice is only valid until the next call to Reset.
// To get a copy, use BytesCopy.
func (w *Writer) Bytes() []byte {
	w.frozen = true
	return w.buf
}

// BytesCopy returns a copy of the encoded data.
func (w *Writer) BytesCopy() []byte {
	result := make([]byte, len(w.buf))
	copy(result, w.buf)
	return result
}

// Err returns the first error that occurred during writing, if any.
func (w *Writer) Err() error {
	return w.err
}

func (w *Writer) setError(err error) {
	if w.err == nil {
		w.err = err
	}
}

// checkWrite reports whether another write may proceed and reserves room
// for n more bytes.
func (w *Writer) checkWrite(n int) bool {
	if w.err != nil {
		return false
	}
	if w.frozen {
		w.setError(NewEncodeError("writer is frozen after Bytes() call", ErrMisuse))
		return false
	}
	if w.opts.Limits.MaxMessageSize > 0 && int64(len(w.buf)+n) > w.opts.Limits.MaxMessageSize {
		w.setError(ErrMaxSizeExceeded)
		return false
	}
	if len(w.buf)+n > cap(w.buf) {
		newCap := cap(w.buf) * 2
		if newCap < len(w.buf)+n {
			newCap = len(w.buf) + n
		}
		newBuf := make([]byte, len(w.buf), newCap)
		copy(newBuf, w.buf)
		w.buf = newBuf
	}
	return true
}

// WriteKind writes a bare tag ID.
func (w *Writer) WriteKind(k Kind) {
	if !w.checkWrite(1) {
		return
	}
	w.buf = append(w.buf, k.ID())
}

// WriteTagHeader writes a tag ID followed by its name.
func (w *Writer) WriteTagHeader(k Kind, name string) {
	if w.err != nil {
		return
	}
	if err := checkStringLen(len(name), w.opts); err != nil {
		w.setError(err)
		return
	}
	if !w.checkWrite(wire.TagHeaderSize(name)) {
		return
	}
	w.buf, _ = wire.AppendTagHeader(w.buf, k.ID(), name)
}

// WriteInt8 writes a signed byte.
func (w *Writer) WriteInt8(v int8) {
	if !w.checkWrite(wire.Int8Size) {
		return
	}
	w.buf = wire.AppendInt8(w.buf, v)
}

// WriteInt16 writes a big-endian 16-bit integer.
func (w *Writer) WriteInt16(v int16) {
	if !w.checkWrite(wire.Int16Size) {
		return
	}
	w.buf = wire.AppendInt16(w.buf, v)
}

// WriteInt32 writes a big-endian 32-bit integer.
func (w *Writer) WriteInt32(v int32) {
	if !w.checkWrite(wire.Int32Size) {
		return
	}
	w.buf = wire.AppendInt32(w.buf, v)
}

// WriteInt64 writes a big-endian 64-bit integer.
func (w *Writer) WriteInt64(v int64) {
	if !w.checkWrite(wire.Int64Size) {
		return
	}
	w.buf = wire.AppendInt64(w.buf, v)
}

// WriteFloat32 writes an IEEE-754 single. The bit pattern is kept as is.
func (w *Writer) WriteFloat32(v float32) {
	if !w.checkWrite(wire.Float32Size) {
		return
	}
	w.buf = wire.AppendFloat32(w.buf, v)
}

// WriteFloat64 writes an IEEE-754 double. The bit pattern is kept as is.
func (w *Writer) WriteFloat64(v float64) {
	if !w.checkWrite(wire.Float64Size) {
		return
	}
	w.buf = wire.AppendFloat64(w.buf, v)
}

// WriteString writes a bare string: a 2-byte length and the raw bytes.
func (w *Writer) WriteString(s string) {
	if w.err != nil {
		return
	}
	if err := checkStringLen(len(s), w.opts); err != nil {
		w.setError(err)
		return
	}
	if !w.checkWrite(wire.StringSize(s)) {
		return
	}
	w.buf, _ = wire.AppendString(w.buf, s)
}

// WriteLength writes a 4-byte list or array length.
func (w *Writer) WriteLength(n int) {
	if w.err != nil {
		return
	}
	if err := checkLength(n, w.opts); err != nil {
		w.setError(err)
		return
	}
	w.WriteInt32(int32(n))
}

// WriteInt8s writes raw array elements without a length.
func (w *Writer) WriteInt8s(v []int8) {
	if !w.checkWrite(len(v)) {
		return
	}
	for _, x := range v {
		w.buf = append(w.buf, byte(x))
	}
}

// WriteInt32s writes raw array elements without a length.
func (w *Writer) WriteInt32s(v []int32) {
	if !w.checkWrite(len(v) * wire.Int32Size) {
		return
	}
	for _, x := range v {
		w.buf = wire.AppendInt32(w.buf, x)
	}
}

// WriteInt64s writes raw array elements without a length.
func (w *Writer) WriteInt64s(v []int64) {
	if !w.checkWrite(len(v) * wire.Int64Size) {
		return
	}
	for _, x := range v {
		w.buf = wire.AppendInt64(w.buf, x)
	}
}

// checkStringLen enforces the format cap and the configured limit.
func checkStringLen(n int, opts Options) error {
	if n > wire.MaxStringLength {
		return ErrStringTooLong
	}
	if n > opts.maxString() {
		return ErrMaxStringLength
	}
	return nil
}

// checkLength enforces the i32 range and the configured element limit.
func checkLength(n int, opts Options) error {
	if n < 0 {
		return ErrNegativeLength
	}
	if n > math.MaxInt32 {
		return ErrOverflow
	}
	if opts.Limits.MaxArrayLength > 0 && n > opts.Limits.MaxArrayLength {
		return ErrMaxArrayLength
	}
	return nil
}
