package nbt

import (
	"io"
)

type frameKind uint8

const (
	// frameRecord is an open compound collecting named fields.
	frameRecord frameKind = iota
	// frameSeq is a list whose element kind is committed.
	frameSeq
	// framePending is a list opened before its element kind is known.
	framePending
)

// frame is one level of the encoder's nesting stack.
type frame struct {
	kind frameKind

	// name is the field name waiting for a value (record) or the name the
	// list will be written under (pending). hasName tells "" apart from unset.
	name    string
	hasName bool

	// nested marks a pending list that is itself an element of the
	// enclosing list, so it is written without a header.
	nested bool

	elem   Kind
	length int
	count  int
}

// Encoder writes NBT by driving an explicit frame stack. Callers open
// the root compound, name each field, emit values and close what they
// opened; Marshal and Encode are built on it.
//
// The first error is sticky: every later call returns it. Output already
// written is not rolled back.
type Encoder struct {
	w       sink
	opts    Options
	stack   []frame
	started bool
	done    bool
	err     error
}

// NewEncoder returns an Encoder that writes to w through a buffered
// StreamWriter. Call Finish to flush.
func NewEncoder(w io.Writer) *Encoder {
	return NewEncoderWithOptions(w, DefaultOptions)
}

// NewEncoderWithOptions is like NewEncoder with explicit options.
func NewEncoderWithOptions(w io.Writer, opts Options) *Encoder {
	return newEncoder(NewStreamWriterWithOptions(w, opts), opts)
}

// NewBufferEncoder returns an Encoder that appends to w.
func NewBufferEncoder(w *Writer) *Encoder {
	return newEncoder(w, w.Options())
}

func newEncoder(s sink, opts Options) *Encoder {
	return &Encoder{
		w:     s,
		opts:  opts,
		stack: make([]frame, 0, 8),
	}
}

// SetRootName sets the name written in the root compound header. It must
// be called before the root is opened.
func (e *Encoder) SetRootName(name string) error {
	if e.started {
		return e.fail(misuse("root name set after the root compound was opened"))
	}
	e.opts.RootName = name
	return nil
}

// Err returns the first error encountered.
func (e *Encoder) Err() error {
	return e.err
}

func (e *Encoder) fail(err error) error {
	if e.err == nil {
		e.err = err
	}
	return e.err
}

// check surfaces a sink failure as the encoder's error.
func (e *Encoder) check() error {
	if err := e.w.Err(); err != nil {
		return e.fail(err)
	}
	return e.err
}

func (e *Encoder) top() *frame {
	if len(e.stack) == 0 {
		return nil
	}
	return &e.stack[len(e.stack)-1]
}

func (e *Encoder) push(f frame) error {
	if e.opts.Limits.MaxDepth > 0 && len(e.stack) >= e.opts.Limits.MaxDepth {
		return e.fail(NewEncodeError("nesting too deep", ErrMaxDepthExceeded))
	}
	e.stack = append(e.stack, f)
	return nil
}

func (e *Encoder) pop() {
	e.stack = e.stack[:len(e.stack)-1]
}

// outside reports the error for a value emitted with no open frame.
func (e *Encoder) outside() error {
	if e.done {
		return e.fail(misuse("value written after the root compound was closed"))
	}
	return e.fail(ErrNoRootCompound)
}

// specifyKind announces the kind of the value about to be written and
// writes whatever header the current frame requires.
func (e *Encoder) specifyKind(k Kind) error {
	if e.err != nil {
		return e.err
	}
	f := e.top()
	if f == nil {
		return e.outside()
	}
	switch f.kind {
	case frameRecord:
		if !f.hasName {
			return e.fail(misuse("%s value written without a field name", k))
		}
		e.w.WriteTagHeader(k, f.name)
		f.name, f.hasName = "", false
	case frameSeq:
		if f.count >= f.length {
			return e.fail(misuse("list declared with %d elements received more", f.length))
		}
		if k != f.elem {
			return e.fail(NewEncodeError("", &HeterogeneousListError{Want: f.elem, Got: k}))
		}
		f.count++
	case framePending:
		if f.length == 0 {
			return e.fail(misuse("%s element written to a list declared empty", k))
		}
		if err := e.commit(len(e.stack)-1, k); err != nil {
			return err
		}
		e.stack[len(e.stack)-1].count++
	}
	return e.check()
}

// commit fixes the element kind of the pending list at stack index i and
// writes its framing. A nested list commits its parent first, so headers
// come out outermost first.
func (e *Encoder) commit(i int, elem Kind) error {
	container := elem.ListContainer()
	f := &e.stack[i]
	if f.nested {
		parent := &e.stack[i-1]
		switch parent.kind {
		case framePending:
			if err := e.commit(i-1, container); err != nil {
				return err
			}
			e.stack[i-1].count++
		case frameSeq:
			if parent.elem != container {
				return e.fail(NewEncodeError("", &HeterogeneousListError{Want: parent.elem, Got: container}))
			}
		default:
			return e.fail(misuse("nested list outside a list"))
		}
	} else {
		e.w.WriteTagHeader(container, f.name)
	}
	if container == TagList {
		e.w.WriteKind(elem)
	}
	e.w.WriteLength(f.length)
	f.kind = frameSeq
	f.elem = elem
	f.name, f.hasName = "", false
	f.count = 0
	return e.check()
}

// BeginCompound opens a compound. The first call opens the root and
// writes its header immediately.
func (e *Encoder) BeginCompound() error {
	if e.err != nil {
		return e.err
	}
	if len(e.stack) == 0 {
		if e.started {
			return e.fail(misuse("second root compound"))
		}
		e.started = true
		e.w.WriteTagHeader(TagCompound, e.opts.RootName)
		if err := e.check(); err != nil {
			return err
		}
		return e.push(frame{kind: frameRecord})
	}
	if err := e.specifyKind(TagCompound); err != nil {
		return err
	}
	return e.push(frame{kind: frameRecord})
}

// EndCompound closes the innermost compound and writes its End byte.
func (e *Encoder) EndCompound() error {
	if e.err != nil {
		return e.err
	}
	f := e.top()
	switch {
	case f == nil:
		return e.fail(misuse("EndCompound with no open compound"))
	case f.kind != frameRecord:
		return e.fail(misuse("EndCompound inside an open list"))
	case f.hasName:
		return e.fail(misuse("field name %q set without a value", f.name))
	}
	e.w.WriteKind(TagEnd)
	e.pop()
	if len(e.stack) == 0 {
		e.done = true
	}
	return e.check()
}

// BeginList opens a list of exactly n elements whose kind is fixed by the
// first element written. Lists of Byte, Int and Long are framed as the
// matching array tag.
func (e *Encoder) BeginList(n int) error {
	if e.err != nil {
		return e.err
	}
	if err := checkLength(n, e.opts); err != nil {
		return e.fail(NewEncodeError("list length", err))
	}
	f := e.top()
	if f == nil {
		return e.outside()
	}
	switch f.kind {
	case frameRecord:
		if !f.hasName {
			return e.fail(misuse("list written without a field name"))
		}
		name := f.name
		f.name, f.hasName = "", false
		return e.push(frame{kind: framePending, name: name, hasName: true, length: n})
	case frameSeq:
		if !f.elem.IsList() {
			return e.fail(NewEncodeError("", &HeterogeneousListError{Want: f.elem, Got: TagList}))
		}
		if f.count >= f.length {
			return e.fail(misuse("list declared with %d elements received more", f.length))
		}
		f.count++
	case framePending:
		if f.length == 0 {
			return e.fail(misuse("list element written to a list declared empty"))
		}
	}
	return e.push(frame{kind: framePending, nested: true, length: n})
}

// BeginListOf opens a list whose element kind is known up front. It is
// the only way to give an empty list a specific element kind.
func (e *Encoder) BeginListOf(elem Kind, n int) error {
	if !elem.IsValid() {
		return e.fail(misuse("invalid element kind %s", elem))
	}
	if elem == TagEnd && n > 0 {
		return e.fail(misuse("list of End with %d elements", n))
	}
	if err := e.BeginList(n); err != nil {
		return err
	}
	return e.commit(len(e.stack)-1, elem)
}

// EndList closes the innermost list. The number of elements written must
// equal the declared length. An empty list whose kind was never fixed is
// written as a List of End.
func (e *Encoder) EndList() error {
	if e.err != nil {
		return e.err
	}
	f := e.top()
	if f == nil || f.kind == frameRecord {
		return e.fail(misuse("EndList with no open list"))
	}
	if f.kind == framePending {
		if f.length != 0 {
			return e.fail(misuse("list closed after 0 of %d elements", f.length))
		}
		if err := e.commit(len(e.stack)-1, TagEnd); err != nil {
			return err
		}
		f = e.top()
	}
	if f.count != f.length {
		return e.fail(misuse("list closed after %d of %d elements", f.count, f.length))
	}
	e.pop()
	return e.check()
}

// Name sets the name of the next field of the innermost compound.
func (e *Encoder) Name(name string) error {
	if e.err != nil {
		return e.err
	}
	f := e.top()
	switch {
	case f == nil:
		return e.outside()
	case f.kind != frameRecord:
		return e.fail(misuse("field name %q inside a list", name))
	case f.hasName:
		return e.fail(misuse("field name %q set while %q is pending", name, f.name))
	}
	if err := checkStringLen(len(name), e.opts); err != nil {
		return e.fail(NewEncodeError("field name", err))
	}
	f.name, f.hasName = name, true
	return nil
}

// CancelName drops the pending field name so the field is elided.
func (e *Encoder) CancelName() error {
	if e.err != nil {
		return e.err
	}
	f := e.top()
	if f == nil || f.kind != frameRecord || !f.hasName {
		return e.fail(misuse("CancelName with no pending field name"))
	}
	f.name, f.hasName = "", false
	return nil
}

// Byte writes a Byte value.
func (e *Encoder) Byte(v int8) error {
	if err := e.specifyKind(TagByte); err != nil {
		return err
	}
	e.w.WriteInt8(v)
	return e.check()
}

// Bool writes a Byte holding 1 or 0.
func (e *Encoder) Bool(v bool) error {
	if v {
		return e.Byte(1)
	}
	return e.Byte(0)
}

// Short writes a Short value.
func (e *Encoder) Short(v int16) error {
	if err := e.specifyKind(TagShort); err != nil {
		return err
	}
	e.w.WriteInt16(v)
	return e.check()
}

// Int writes an Int value.
func (e *Encoder) Int(v int32) error {
	if err := e.specifyKind(TagInt); err != nil {
		return err
	}
	e.w.WriteInt32(v)
	return e.check()
}

// Long writes a Long value.
func (e *Encoder) Long(v int64) error {
	if err := e.specifyKind(TagLong); err != nil {
		return err
	}
	e.w.WriteInt64(v)
	return e.check()
}

// Float writes a Float value.
func (e *Encoder) Float(v float32) error {
	if err := e.specifyKind(TagFloat); err != nil {
		return err
	}
	e.w.WriteFloat32(v)
	return e.check()
}

// Double writes a Double value.
func (e *Encoder) Double(v float64) error {
	if err := e.specifyKind(TagDouble); err != nil {
		return err
	}
	e.w.WriteFloat64(v)
	return e.check()
}

// String writes a String value.
func (e *Encoder) String(s string) error {
	if e.err != nil {
		return e.err
	}
	if err := checkStringLen(len(s), e.opts); err != nil {
		return e.fail(NewEncodeError("string value", err))
	}
	if err := e.specifyKind(TagString); err != nil {
		return err
	}
	e.w.WriteString(s)
	return e.check()
}

// ByteArray writes v as a ByteArray in one step.
func (e *Encoder) ByteArray(v []int8) error {
	if err := e.BeginListOf(TagByte, len(v)); err != nil {
		return err
	}
	e.w.WriteInt8s(v)
	e.top().count = len(v)
	return e.EndList()
}

// IntArray writes v as an IntArray in one step.
func (e *Encoder) IntArray(v []int32) error {
	if err := e.BeginListOf(TagInt, len(v)); err != nil {
		return err
	}
	e.w.WriteInt32s(v)
	e.top().count = len(v)
	return e.EndList()
}

// LongArray writes v as a LongArray in one step.
func (e *Encoder) LongArray(v []int64) error {
	if err := e.BeginListOf(TagLong, len(v)); err != nil {
		return err
	}
	e.w.WriteInt64s(v)
	e.top().count = len(v)
	return e.EndList()
}

// Value writes a tree node at the current position.
func (e *Encoder) Value(v Value) error {
	switch v := v.(type) {
	case Byte:
		return e.Byte(int8(v))
	case Short:
		return e.Short(int16(v))
	case Int:
		return e.Int(int32(v))
	case Long:
		return e.Long(int64(v))
	case Float:
		return e.Float(float32(v))
	case Double:
		return e.Double(float64(v))
	case String:
		return e.String(string(v))
	case ByteArray:
		return e.ByteArray(v)
	case IntArray:
		return e.IntArray(v)
	case LongArray:
		return e.LongArray(v)
	case List:
		return e.list(v)
	case *Compound:
		if err := e.BeginCompound(); err != nil {
			return err
		}
		for _, f := range v.Fields() {
			if err := e.Name(f.Name); err != nil {
				return err
			}
			if err := e.Value(f.Value); err != nil {
				return err
			}
		}
		return e.EndCompound()
	case nil:
		return e.fail(misuse("nil value"))
	default:
		return e.fail(NewEncodeError("tree node", &UnrepresentableTypeError{Type: typeName(v)}))
	}
}

func (e *Encoder) list(l List) error {
	// A list of lists takes its framing from the first inner list, which
	// may turn out to be an array.
	var err error
	if l.Elem != TagEnd && (l.Elem != TagList || len(l.Items) == 0) {
		err = e.BeginListOf(l.Elem, len(l.Items))
	} else {
		err = e.BeginList(len(l.Items))
	}
	if err != nil {
		return err
	}
	for _, item := range l.Items {
		if err := e.Value(item); err != nil {
			return err
		}
	}
	return e.EndList()
}

// flusher is implemented by sinks that buffer output.
type flusher interface {
	Flush() error
}

// Finish checks that the root compound was written and closed, then
// flushes buffered output.
func (e *Encoder) Finish() error {
	if e.err != nil {
		return e.err
	}
	if !e.started {
		return e.fail(ErrNoRootCompound)
	}
	if len(e.stack) > 0 {
		return e.fail(misuse("finished with %d open frames", len(e.stack)))
	}
	if fl, ok := e.w.(flusher); ok {
		if err := fl.Flush(); err != nil {
			return e.fail(err)
		}
	}
	return e.check()
}

// Encode serializes a tree under the given root name.
func Encode(root *Compound, rootName string) ([]byte, error) {
	opts := DefaultOptions
	opts.RootName = rootName
	return EncodeWithOptions(root, opts)
}

// EncodeWithOptions serializes a tree with the specified options.
func EncodeWithOptions(root *Compound, opts Options) ([]byte, error) {
	w := GetWriter()
	defer PutWriter(w)
	w.SetOptions(opts)
	e := newEncoder(w, opts)
	if err := e.Value(root); err != nil {
		return nil, err
	}
	if err := e.Finish(); err != nil {
		return nil, err
	}
	return w.BytesCopy(), nil
}

// EncodeTo serializes a tree to w under the given root name.
func EncodeTo(w io.Writer, root *Compound, rootName string) error {
	opts := DefaultOptions
	opts.RootName = rootName
	e := NewEncoderWithOptions(w, opts)
	if err := e.Value(root); err != nil {
		return err
	}
	return e.Finish()
}
