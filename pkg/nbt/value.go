package nbt

import (
	"math"
	"slices"
)

// Value is one node of a decoded NBT tree.
type Value interface {
	Kind() Kind
}

// Scalar and array node types. Each is the Go rendition of one tag.
type (
	Byte      int8
	Short     int16
	Int       int32
	Long      int64
	Float     float32
	Double    float64
	ByteArray []int8
	String    string
	IntArray  []int32
	LongArray []int64
)

func (Byte) Kind() Kind      { return TagByte }
func (Short) Kind() Kind     { return TagShort }
func (Int) Kind() Kind       { return TagInt }
func (Long) Kind() Kind      { return TagLong }
func (Float) Kind() Kind     { return TagFloat }
func (Double) Kind() Kind    { return TagDouble }
func (ByteArray) Kind() Kind { return TagByteArray }
func (String) Kind() Kind    { return TagString }
func (IntArray) Kind() Kind  { return TagIntArray }
func (LongArray) Kind() Kind { return TagLongArray }

// List is a homogeneous sequence. Elem is the declared element kind; an
// empty list may carry TagEnd.
type List struct {
	Elem  Kind
	Items []Value
}

// Kind returns TagList.
func (List) Kind() Kind { return TagList }

// Len returns the number of items.
func (l List) Len() int { return len(l.Items) }

// Field is one named entry of a Compound.
type Field struct {
	Name  string
	Value Value
}

// Compound is an ordered set of named values. Field order is the order
// fields were first set, which for decoded data is wire order.
type Compound struct {
	fields []Field
	index  map[string]int
}

// NewCompound returns an empty compound.
func NewCompound() *Compound {
	return &Compound{}
}

// Kind returns TagCompound.
func (*Compound) Kind() Kind { return TagCompound }

// Len returns the number of fields.
func (c *Compound) Len() int {
	if c == nil {
		return 0
	}
	return len(c.fields)
}

// Get returns the value stored under name.
func (c *Compound) Get(name string) (Value, bool) {
	if c == nil || c.index == nil {
		return nil, false
	}
	i, ok := c.index[name]
	if !ok {
		return nil, false
	}
	return c.fields[i].Value, true
}

// Set stores v under name. An existing field keeps its position.
func (c *Compound) Set(name string, v Value) *Compound {
	if c.index == nil {
		c.index = make(map[string]int)
	}
	if i, ok := c.index[name]; ok {
		c.fields[i].Value = v
		return c
	}
	c.index[name] = len(c.fields)
	c.fields = append(c.fields, Field{Name: name, Value: v})
	return c
}

// Delete removes name and reports whether it was present.
func (c *Compound) Delete(name string) bool {
	if c == nil || c.index == nil {
		return false
	}
	i, ok := c.index[name]
	if !ok {
		return false
	}
	c.fields = slices.Delete(c.fields, i, i+1)
	delete(c.index, name)
	for j := i; j < len(c.fields); j++ {
		c.index[c.fields[j].Name] = j
	}
	return true
}

// Names returns the field names in order.
func (c *Compound) Names() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.fields))
	for i, f := range c.fields {
		names[i] = f.Name
	}
	return names
}

// Fields returns the fields in order. The slice must not be modified.
func (c *Compound) Fields() []Field {
	if c == nil {
		return nil
	}
	return c.fields
}

// String renders the compound in text form.
func (c *Compound) String() string {
	return Format(c)
}

// Equal reports whether a and b are the same tree. Floats compare by bit
// pattern so NaN payloads and signed zeros must match.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Byte, Short, Int, Long, String:
		return a == b
	case Float:
		return math.Float32bits(float32(av)) == math.Float32bits(float32(b.(Float)))
	case Double:
		return math.Float64bits(float64(av)) == math.Float64bits(float64(b.(Double)))
	case ByteArray:
		return slices.Equal(av, b.(ByteArray))
	case IntArray:
		return slices.Equal(av, b.(IntArray))
	case LongArray:
		return slices.Equal(av, b.(LongArray))
	case List:
		bv := b.(List)
		if len(av.Items) != len(bv.Items) {
			return false
		}
		if len(av.Items) > 0 && av.Elem != bv.Elem {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bv.Items[i]) {
				return false
			}
		}
		return true
	case *Compound:
		bv := b.(*Compound)
		if av.Len() != bv.Len() {
			return false
		}
		for i, f := range av.Fields() {
			g := bv.fields[i]
			if f.Name != g.Name || !Equal(f.Value, g.Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
