package nbt

import (
	"errors"
	"fmt"
	"io"
)

// treeDecoder reads one root compound into a Value tree.
type treeDecoder struct {
	r     source
	opts  Options
	depth int
}

func newTreeDecoder(r source) *treeDecoder {
	return &treeDecoder{r: r, opts: r.Options()}
}

// fail records a decoding error at the current offset.
func (d *treeDecoder) fail(message string, cause error) {
	d.r.setError(NewDecodeErrorAt(d.r.Pos(), message, cause))
}

// root reads the root header and the compound body behind it.
func (d *treeDecoder) root() (string, *Compound, error) {
	id := d.r.ReadInt8()
	if err := d.r.Err(); err != nil {
		return "", nil, err
	}
	if byte(id) != TagCompound.ID() {
		return "", nil, NewDecodeErrorAt(0, "", ErrNoRootCompound)
	}
	name := d.r.ReadString()
	c := d.compound()
	if err := d.r.Err(); err != nil {
		return "", nil, err
	}
	return name, c, nil
}

func (d *treeDecoder) enter() bool {
	if d.opts.Limits.MaxDepth > 0 && d.depth >= d.opts.Limits.MaxDepth {
		d.fail("", ErrMaxDepthExceeded)
		return false
	}
	d.depth++
	return true
}

// compound reads named fields until the End byte.
func (d *treeDecoder) compound() *Compound {
	if !d.enter() {
		return nil
	}
	defer func() { d.depth-- }()

	c := NewCompound()
	for {
		k := d.r.ReadKind()
		if d.r.Err() != nil {
			return nil
		}
		if k == TagEnd {
			return c
		}
		name := d.r.ReadString()
		if d.r.Err() != nil {
			return nil
		}
		v := d.value(k)
		if d.r.Err() != nil {
			return nil
		}
		if limit := d.opts.Limits.MaxCompoundSize; limit > 0 && c.Len() >= limit {
			d.fail(fmt.Sprintf("compound exceeds %d fields", limit), ErrMaxCompoundSize)
			return nil
		}
		c.Set(name, v)
	}
}

// value reads one payload of kind k.
func (d *treeDecoder) value(k Kind) Value {
	switch k {
	case TagByte:
		return Byte(d.r.ReadInt8())
	case TagShort:
		return Short(d.r.ReadInt16())
	case TagInt:
		return Int(d.r.ReadInt32())
	case TagLong:
		return Long(d.r.ReadInt64())
	case TagFloat:
		return Float(d.r.ReadFloat32())
	case TagDouble:
		return Double(d.r.ReadFloat64())
	case TagString:
		return String(d.r.ReadString())
	case TagByteArray:
		n := d.r.ReadLength()
		return ByteArray(d.r.ReadInt8s(n))
	case TagIntArray:
		n := d.r.ReadLength()
		return IntArray(d.r.ReadInt32s(n))
	case TagLongArray:
		n := d.r.ReadLength()
		return LongArray(d.r.ReadInt64s(n))
	case TagList:
		return d.list()
	case TagCompound:
		return d.compound()
	default:
		d.fail("End tag in value position", &UnexpectedTagError{Got: k, Want: TagCompound})
		return nil
	}
}

// list reads an element kind, a length and that many untagged payloads.
func (d *treeDecoder) list() Value {
	elem := d.r.ReadKind()
	n := d.r.ReadLength()
	if d.r.Err() != nil {
		return nil
	}
	if elem == TagEnd && n > 0 {
		d.fail(fmt.Sprintf("list of End with %d elements", n), ErrUnexpectedTag)
		return nil
	}
	if !d.enter() {
		return nil
	}
	defer func() { d.depth-- }()

	// Every element takes at least one byte, which bounds a forged length.
	capacity := n
	if avail := d.r.available(); avail >= 0 && avail < capacity {
		capacity = avail
	} else if avail < 0 && capacity > 1024 {
		capacity = 1024
	}
	items := make([]Value, 0, capacity)
	for i := 0; i < n; i++ {
		v := d.value(elem)
		if d.r.Err() != nil {
			return nil
		}
		items = append(items, v)
	}
	return List{Elem: elem, Items: items}
}

// Decode reads a root compound from data and discards its name.
func Decode(data []byte) (*Compound, error) {
	_, c, err := DecodeNamedWithOptions(data, DefaultOptions)
	return c, err
}

// DecodeNamed reads a root compound from data and returns its name too.
func DecodeNamed(data []byte) (string, *Compound, error) {
	return DecodeNamedWithOptions(data, DefaultOptions)
}

// DecodeWithOptions is like Decode with explicit options.
func DecodeWithOptions(data []byte, opts Options) (*Compound, error) {
	_, c, err := DecodeNamedWithOptions(data, opts)
	return c, err
}

// DecodeNamedWithOptions is like DecodeNamed with explicit options.
func DecodeNamedWithOptions(data []byte, opts Options) (string, *Compound, error) {
	return newTreeDecoder(NewReaderWithOptions(data, opts)).root()
}

// DecodeFrom reads a root compound from r.
func DecodeFrom(r io.Reader) (*Compound, error) {
	_, c, err := NewDecoder(r).Decode()
	return c, err
}

// Decoder reads successive root compounds from a stream. Files normally
// hold one root, but concatenated roots are read in order.
type Decoder struct {
	sr  *StreamReader
	err error
}

// NewDecoder creates a Decoder reading from r with default options.
func NewDecoder(r io.Reader) *Decoder {
	return NewDecoderWithOptions(r, DefaultOptions)
}

// NewDecoderWithOptions creates a Decoder with the specified options.
func NewDecoderWithOptions(r io.Reader, opts Options) *Decoder {
	return &Decoder{sr: NewStreamReaderWithOptions(r, opts)}
}

// Decode reads the next root compound and its name.
func (d *Decoder) Decode() (string, *Compound, error) {
	if d.err != nil {
		return "", nil, d.err
	}
	// Each root gets a fresh size budget.
	d.sr.pos = 0
	name, c, err := newTreeDecoder(d.sr).root()
	if err != nil {
		d.err = err
	}
	return name, c, err
}

// Unmarshal reads the next root compound into v.
func (d *Decoder) Unmarshal(v any) error {
	_, c, err := d.Decode()
	if err != nil {
		return err
	}
	return bindRoot(c, v, d.sr.opts)
}

// More reports whether another root follows. It returns false at a clean
// end of stream or after an error.
func (d *Decoder) More() bool {
	if d.err != nil {
		return false
	}
	_, err := d.sr.Peek(1)
	if err != nil {
		if !errors.Is(err, io.EOF) {
			d.err = ioError(err)
		}
		return false
	}
	return true
}

// Err returns the error that stopped the Decoder, if any.
func (d *Decoder) Err() error {
	return d.err
}
