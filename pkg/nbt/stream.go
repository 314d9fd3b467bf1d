package nbt

import (
	"bufio"
	"errors"
	"io"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/blockberries/nbt/internal/wire"
)

// StreamWriter writes NBT-encoded data to an io.Writer.
// It buffers writes; call Flush or Close to push them out.
//
// StreamWriter is not safe for use from multiple goroutines.
type StreamWriter struct {
	w       *bufio.Writer
	opts    Options
	err     error
	written int64
	closed  bool
	scratch [wire.Int64Size]byte
	header  []byte
}

// streamWriterPool provides pooled writers for reduced allocations.
var streamWriterPool = sync.Pool{
	New: func() any {
		return &StreamWriter{
			opts: DefaultOptions,
		}
	},
}

// NewStreamWriter creates a new StreamWriter that writes to w.
// The default buffer size is 4096 bytes.
func NewStreamWriter(w io.Writer) *StreamWriter {
	return NewStreamWriterSize(w, 4096)
}

// NewStreamWriterSize creates a new StreamWriter with a specified buffer size.
func NewStreamWriterSize(w io.Writer, bufSize int) *StreamWriter {
	return &StreamWriter{
		w:    bufio.NewWriterSize(w, bufSize),
		opts: DefaultOptions,
	}
}

// NewStreamWriterWithOptions creates a new StreamWriter with options.
func NewStreamWriterWithOptions(w io.Writer, opts Options) *StreamWriter {
	return &StreamWriter{
		w:    bufio.NewWriterSize(w, 4096),
		opts: opts,
	}
}

// GetStreamWriter gets a StreamWriter from the pool.
// Call PutStreamWriter to return it when done.
func GetStreamWriter(w io.Writer) *StreamWriter {
	sw := streamWriterPool.Get().(*StreamWriter)
	sw.Reset(w)
	sw.opts = DefaultOptions
	return sw
}

// PutStreamWriter returns a StreamWriter to the pool.
func PutStreamWriter(sw *StreamWriter) {
	if sw == nil {
		return
	}
	sw.w = nil // Allow GC of the underlying writer
	streamWriterPool.Put(sw)
}

// Reset resets the StreamWriter to write to a new io.Writer.
func (sw *StreamWriter) Reset(w io.Writer) {
	if sw.w == nil {
		sw.w = bufio.NewWriterSize(w, 4096)
	} else {
		sw.w.Reset(w)
	}
	sw.err = nil
	sw.written = 0
	sw.closed = false
}

// SetOptions updates the writer's options.
func (sw *StreamWriter) SetOptions(opts Options) {
	sw.opts = opts
}

// Options returns the writer's current options.
func (sw *StreamWriter) Options() Options {
	return sw.opts
}

// Written returns the number of bytes accepted so far, flushed or not.
func (sw *StreamWriter) Written() int64 {
	return sw.written
}

// Flush writes any buffered data to the underlying writer.
func (sw *StreamWriter) Flush() error {
	if sw.err != nil {
		return sw.err
	}
	if err := sw.w.Flush(); err != nil {
		sw.err = ioError(err)
		return sw.err
	}
	return nil
}

// Close flushes and releases resources.
// The underlying io.Writer is not closed.
func (sw *StreamWriter) Close() error {
	if sw.closed {
		return nil
	}
	sw.closed = true
	return sw.Flush()
}

// Err returns any error that occurred during writing.
func (sw *StreamWriter) Err() error {
	return sw.err
}

func (sw *StreamWriter) setError(err error) {
	if sw.err == nil {
		sw.err = err
	}
}

// checkWrite ensures n more bytes may be written.
func (sw *StreamWriter) checkWrite(n int) bool {
	if sw.err != nil {
		return false
	}
	if sw.closed {
		sw.setError(NewEncodeError("writer is closed", ErrMisuse))
		return false
	}
	if sw.opts.Limits.MaxMessageSize > 0 && sw.written+int64(n) > sw.opts.Limits.MaxMessageSize {
		sw.setError(ErrMaxSizeExceeded)
		return false
	}
	return true
}

func (sw *StreamWriter) write(b []byte) {
	if !sw.checkWrite(len(b)) {
		return
	}
	n, err := sw.w.Write(b)
	sw.written += int64(n)
	if err != nil {
		sw.setError(ioError(err))
	}
}

func (sw *StreamWriter) writeByte(b byte) {
	if !sw.checkWrite(1) {
		return
	}
	if err := sw.w.WriteByte(b); err != nil {
		sw.setError(ioError(err))
		return
	}
	sw.written++
}

// WriteKind writes a bare tag ID.
func (sw *StreamWriter) WriteKind(k Kind) {
	sw.writeByte(k.ID())
}

// WriteTagHeader writes a tag ID followed by its name.
func (sw *StreamWriter) WriteTagHeader(k Kind, name string) {
	if sw.err != nil {
		return
	}
	if err := checkStringLen(len(name), sw.opts); err != nil {
		sw.setError(err)
		return
	}
	sw.header, _ = wire.AppendTagHeader(sw.header[:0], k.ID(), name)
	sw.write(sw.header)
}

// WriteInt8 writes a signed byte.
func (sw *StreamWriter) WriteInt8(v int8) {
	sw.writeByte(byte(v))
}

// WriteInt16 writes a big-endian 16-bit integer.
func (sw *StreamWriter) WriteInt16(v int16) {
	wire.PutInt16(sw.scratch[:], v)
	sw.write(sw.scratch[:wire.Int16Size])
}

// WriteInt32 writes a big-endian 32-bit integer.
func (sw *StreamWriter) WriteInt32(v int32) {
	wire.PutInt32(sw.scratch[:], v)
	sw.write(sw.scratch[:wire.Int32Size])
}

// WriteInt64 writes a big-endian 64-bit integer.
func (sw *StreamWriter) WriteInt64(v int64) {
	wire.PutInt64(sw.scratch[:], v)
	sw.write(sw.scratch[:wire.Int64Size])
}

// WriteFloat32 writes an IEEE-754 single.
func (sw *StreamWriter) WriteFloat32(v float32) {
	sw.WriteInt32(int32(math.Float32bits(v)))
}

// WriteFloat64 writes an IEEE-754 double.
func (sw *StreamWriter) WriteFloat64(v float64) {
	sw.WriteInt64(int64(math.Float64bits(v)))
}

// WriteString writes a bare string.
func (sw *StreamWriter) WriteString(s string) {
	if sw.err != nil {
		return
	}
	if err := checkStringLen(len(s), sw.opts); err != nil {
		sw.setError(err)
		return
	}
	wire.PutStringHeader(sw.scratch[:], len(s))
	sw.write(sw.scratch[:wire.StringHeaderSize])
	if len(s) == 0 || !sw.checkWrite(len(s)) {
		return
	}
	n, err := sw.w.WriteString(s)
	sw.written += int64(n)
	if err != nil {
		sw.setError(ioError(err))
	}
}

// WriteLength writes a 4-byte list or array length.
func (sw *StreamWriter) WriteLength(n int) {
	if sw.err != nil {
		return
	}
	if err := checkLength(n, sw.opts); err != nil {
		sw.setError(err)
		return
	}
	sw.WriteInt32(int32(n))
}

// WriteInt8s writes raw array elements without a length.
func (sw *StreamWriter) WriteInt8s(v []int8) {
	for _, x := range v {
		sw.writeByte(byte(x))
	}
}

// WriteInt32s writes raw array elements without a length.
func (sw *StreamWriter) WriteInt32s(v []int32) {
	for _, x := range v {
		sw.WriteInt32(x)
	}
}

// WriteInt64s writes raw array elements without a length.
func (sw *StreamWriter) WriteInt64s(v []int64) {
	for _, x := range v {
		sw.WriteInt64(x)
	}
}

// StreamReader reads NBT-encoded data from an io.Reader.
// It buffers reads and counts consumed bytes for error offsets.
//
// StreamReader is not safe for use from multiple goroutines.
type StreamReader struct {
	r       *bufio.Reader
	opts    Options
	pos     int
	err     error
	scratch [wire.Int64Size]byte
}

// streamReaderPool provides pooled readers for reduced allocations.
var streamReaderPool = sync.Pool{
	New: func() any {
		return &StreamReader{
			opts: DefaultOptions,
		}
	},
}

// NewStreamReader creates a new StreamReader that reads from r.
// The default buffer size is 4096 bytes.
func NewStreamReader(r io.Reader) *StreamReader {
	return NewStreamReaderSize(r, 4096)
}

// NewStreamReaderSize creates a new StreamReader with a specified buffer size.
func NewStreamReaderSize(r io.Reader, bufSize int) *StreamReader {
	return &StreamReader{
		r:    bufio.NewReaderSize(r, bufSize),
		opts: DefaultOptions,
	}
}

// NewStreamReaderWithOptions creates a new StreamReader with options.
func NewStreamReaderWithOptions(r io.Reader, opts Options) *StreamReader {
	return &StreamReader{
		r:    bufio.NewReaderSize(r, 4096),
		opts: opts,
	}
}

// GetStreamReader gets a StreamReader from the pool.
// Call PutStreamReader to return it when done.
func GetStreamReader(r io.Reader) *StreamReader {
	sr := streamReaderPool.Get().(*StreamReader)
	sr.Reset(r)
	sr.opts = DefaultOptions
	return sr
}

// PutStreamReader returns a StreamReader to the pool.
func PutStreamReader(sr *StreamReader) {
	if sr == nil {
		return
	}
	sr.r = nil // Allow GC of the underlying reader
	streamReaderPool.Put(sr)
}

// Reset resets the StreamReader to read from a new io.Reader.
func (sr *StreamReader) Reset(r io.Reader) {
	if sr.r == nil {
		sr.r = bufio.NewReaderSize(r, 4096)
	} else {
		sr.r.Reset(r)
	}
	sr.pos = 0
	sr.err = nil
}

// SetOptions updates the reader's options.
func (sr *StreamReader) SetOptions(opts Options) {
	sr.opts = opts
}

// Options returns the reader's current options.
func (sr *StreamReader) Options() Options {
	return sr.opts
}

// Pos returns the number of bytes consumed so far.
func (sr *StreamReader) Pos() int {
	return sr.pos
}

// Err returns any error that occurred during reading.
func (sr *StreamReader) Err() error {
	return sr.err
}

func (sr *StreamReader) available() int {
	return -1
}

func (sr *StreamReader) setError(err error) {
	if sr.err == nil {
		sr.err = err
	}
}

func (sr *StreamReader) fail(err error) {
	sr.setError(NewDecodeErrorAt(sr.pos, "", err))
}

// consume accounts for n bytes and enforces the message size limit.
func (sr *StreamReader) consume(n int) bool {
	if sr.opts.Limits.MaxMessageSize > 0 && int64(sr.pos+n) > sr.opts.Limits.MaxMessageSize {
		sr.fail(ErrMaxSizeExceeded)
		return false
	}
	return true
}

// readFull reads exactly len(b) bytes.
func (sr *StreamReader) readFull(b []byte) bool {
	if sr.err != nil || !sr.consume(len(b)) {
		return false
	}
	n, err := io.ReadFull(sr.r, b)
	sr.pos += n
	if err != nil {
		sr.fail(ioError(err))
		return false
	}
	return true
}

// readByte reads a single byte.
func (sr *StreamReader) readByte() (byte, bool) {
	if sr.err != nil || !sr.consume(1) {
		return 0, false
	}
	b, err := sr.r.ReadByte()
	if err != nil {
		sr.fail(ioError(err))
		return 0, false
	}
	sr.pos++
	return b, true
}

// ReadKind reads a tag ID and rejects bytes outside the known range.
func (sr *StreamReader) ReadKind() Kind {
	id, ok := sr.readByte()
	if !ok {
		return TagEnd
	}
	k, known := KindFromID(id)
	if !known {
		sr.pos--
		sr.fail(&UnknownTagError{ID: id})
		return TagEnd
	}
	return k
}

// ReadInt8 reads a signed byte.
func (sr *StreamReader) ReadInt8() int8 {
	b, _ := sr.readByte()
	return int8(b)
}

// ReadInt16 reads a big-endian 16-bit integer.
func (sr *StreamReader) ReadInt16() int16 {
	if !sr.readFull(sr.scratch[:wire.Int16Size]) {
		return 0
	}
	v, _ := wire.DecodeInt16(sr.scratch[:])
	return v
}

// ReadInt32 reads a big-endian 32-bit integer.
func (sr *StreamReader) ReadInt32() int32 {
	if !sr.readFull(sr.scratch[:wire.Int32Size]) {
		return 0
	}
	v, _ := wire.DecodeInt32(sr.scratch[:])
	return v
}

// ReadInt64 reads a big-endian 64-bit integer.
func (sr *StreamReader) ReadInt64() int64 {
	if !sr.readFull(sr.scratch[:wire.Int64Size]) {
		return 0
	}
	v, _ := wire.DecodeInt64(sr.scratch[:])
	return v
}

// ReadFloat32 reads an IEEE-754 single.
func (sr *StreamReader) ReadFloat32() float32 {
	if !sr.readFull(sr.scratch[:wire.Float32Size]) {
		return 0
	}
	v, _ := wire.DecodeFloat32(sr.scratch[:])
	return v
}

// ReadFloat64 reads an IEEE-754 double.
func (sr *StreamReader) ReadFloat64() float64 {
	if !sr.readFull(sr.scratch[:wire.Float64Size]) {
		return 0
	}
	v, _ := wire.DecodeFloat64(sr.scratch[:])
	return v
}

// ReadString reads a bare string.
func (sr *StreamReader) ReadString() string {
	if !sr.readFull(sr.scratch[:wire.StringHeaderSize]) {
		return ""
	}
	n, _ := wire.DecodeStringLength(sr.scratch[:])
	if n > sr.opts.maxString() {
		sr.fail(ErrMaxStringLength)
		return ""
	}
	if n == 0 {
		return ""
	}
	buf := make([]byte, n)
	if !sr.readFull(buf) {
		return ""
	}
	if sr.opts.ValidateUTF8 && !utf8.Valid(buf) {
		sr.fail(ErrInvalidUTF8)
		return ""
	}
	return string(buf)
}

// ReadLength reads a 4-byte list or array length.
func (sr *StreamReader) ReadLength() int {
	n := sr.ReadInt32()
	if sr.err != nil {
		return 0
	}
	if err := checkLength(int(n), sr.opts); err != nil {
		sr.fail(err)
		return 0
	}
	return int(n)
}

// ReadInt8s reads n raw bytes as signed values. The slice grows as data
// arrives so a forged length cannot force a large allocation.
func (sr *StreamReader) ReadInt8s(n int) []int8 {
	out := make([]int8, 0, min(n, 4096))
	for i := 0; i < n; i++ {
		b, ok := sr.readByte()
		if !ok {
			return nil
		}
		out = append(out, int8(b))
	}
	return out
}

// ReadInt32s reads n raw big-endian 32-bit values.
func (sr *StreamReader) ReadInt32s(n int) []int32 {
	out := make([]int32, 0, min(n, 1024))
	for i := 0; i < n; i++ {
		v := sr.ReadInt32()
		if sr.err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// ReadInt64s reads n raw big-endian 64-bit values.
func (sr *StreamReader) ReadInt64s(n int) []int64 {
	out := make([]int64, 0, min(n, 512))
	for i := 0; i < n; i++ {
		v := sr.ReadInt64()
		if sr.err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}

// Peek returns the next n bytes without advancing the reader.
// The returned bytes are only valid until the next read call.
func (sr *StreamReader) Peek(n int) ([]byte, error) {
	if sr.err != nil {
		return nil, sr.err
	}
	return sr.r.Peek(n)
}

// Buffered returns the number of bytes available in the buffer.
func (sr *StreamReader) Buffered() int {
	return sr.r.Buffered()
}

// ioError maps a stream failure onto the taxonomy: running out of data
// is an incomplete value, anything else is an I/O fault.
func ioError(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrUnexpectedEOF
	}
	return &ioFailure{cause: err}
}

// ioFailure carries the underlying stream error and matches ErrIO.
type ioFailure struct {
	cause error
}

func (e *ioFailure) Error() string {
	return "nbt: i/o failure: " + e.cause.Error()
}

func (e *ioFailure) Unwrap() error {
	return e.cause
}

func (e *ioFailure) Is(target error) bool {
	return target == ErrIO
}
