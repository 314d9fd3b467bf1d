package nbt

import (
	"fmt"
	"io"
	"reflect"
)

// Unmarshal decodes an NBT root compound into the struct (or *Compound)
// pointed to by v. The root name is discarded.
//
// Integers bind to Go integers at least as wide as the tag, floats to
// float32 (Float only) or float64, and a bool must be backed by a Byte
// holding 0 or 1. Fields of type Value or any receive the decoded tree
// node. Compound entries with no matching field are skipped unless
// StrictMode is set. A field missing from the data keeps its current
// value; with the "required" tag option it is an error. A *Compound
// target receives the decoded fields, merged over the ones it holds.
func Unmarshal(data []byte, v any) error {
	return UnmarshalWithOptions(data, v, DefaultOptions)
}

// UnmarshalWithOptions decodes data with the specified options.
func UnmarshalWithOptions(data []byte, v any, opts Options) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	_, c, err := DecodeNamedWithOptions(data, opts)
	if err != nil {
		return err
	}
	return bindRoot(c, v, opts)
}

// UnmarshalFrom decodes one root compound read from r into v.
func UnmarshalFrom(r io.Reader, v any) error {
	return UnmarshalFromWithOptions(r, v, DefaultOptions)
}

// UnmarshalFromWithOptions is like UnmarshalFrom with explicit options.
func UnmarshalFromWithOptions(r io.Reader, v any, opts Options) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	sr := GetStreamReader(r)
	defer PutStreamReader(sr)
	sr.SetOptions(opts)

	_, c, err := newTreeDecoder(sr).root()
	if err != nil {
		return err
	}
	return bindRoot(c, v, opts)
}

// Bind copies a decoded tree into v, applying the same rules as Unmarshal.
func Bind(c *Compound, v any) error {
	return BindWithOptions(c, v, DefaultOptions)
}

// BindWithOptions is like Bind with explicit options.
func BindWithOptions(c *Compound, v any, opts Options) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	return bindRoot(c, v, opts)
}

func checkTarget(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr {
		return ErrNotPointer
	}
	if rv.IsNil() {
		return ErrNilPointer
	}
	return nil
}

func bindRoot(c *Compound, v any, opts Options) error {
	if err := checkTarget(v); err != nil {
		return err
	}
	if dst, ok := v.(*Compound); ok {
		for _, f := range c.Fields() {
			dst.Set(f.Name, f.Value)
		}
		return nil
	}
	b := binder{opts: opts}
	return b.bind(c, reflect.ValueOf(v).Elem())
}

// binder copies tree nodes into Go values.
type binder struct {
	opts Options
}

// bind stores val into dst.
func (b *binder) bind(val Value, dst reflect.Value) error {
	if !dst.CanSet() {
		return NewDecodeError("cannot set value", nil)
	}

	switch dst.Kind() {
	case reflect.Interface:
		src := reflect.ValueOf(val)
		if !src.Type().AssignableTo(dst.Type()) {
			return typeError(dst.Type(), &UnrepresentableTypeError{Type: dst.Type().String()})
		}
		dst.Set(src)
		return nil
	case reflect.Ptr:
		if dst.Type() == compoundType {
			c, ok := val.(*Compound)
			if !ok {
				return mismatch(val.Kind(), TagCompound, dst.Type())
			}
			dst.Set(reflect.ValueOf(c))
			return nil
		}
		if dst.IsNil() {
			dst.Set(reflect.New(dst.Type().Elem()))
		}
		return b.bind(val, dst.Elem())
	}

	if dst.Type() == listType {
		l, ok := val.(List)
		if !ok {
			return mismatch(val.Kind(), TagList, dst.Type())
		}
		dst.Set(reflect.ValueOf(l))
		return nil
	}

	switch dst.Kind() {
	case reflect.Bool:
		v, ok := val.(Byte)
		if !ok {
			return mismatch(val.Kind(), TagByte, dst.Type())
		}
		switch v {
		case 0:
			dst.SetBool(false)
		case 1:
			dst.SetBool(true)
		default:
			return NewDecodeError("", &NonBooleanByteError{Value: int8(v)})
		}
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64, reflect.Int:
		return bindInt(val, dst)
	case reflect.Float32:
		v, ok := val.(Float)
		if !ok {
			return mismatch(val.Kind(), TagFloat, dst.Type())
		}
		dst.SetFloat(float64(v))
	case reflect.Float64:
		switch v := val.(type) {
		case Float:
			dst.SetFloat(float64(v))
		case Double:
			dst.SetFloat(float64(v))
		default:
			return mismatch(val.Kind(), TagDouble, dst.Type())
		}
	case reflect.String:
		v, ok := val.(String)
		if !ok {
			return mismatch(val.Kind(), TagString, dst.Type())
		}
		dst.SetString(string(v))
	case reflect.Slice, reflect.Array:
		return b.bindSeq(val, dst)
	case reflect.Struct:
		c, ok := val.(*Compound)
		if !ok {
			return mismatch(val.Kind(), TagCompound, dst.Type())
		}
		return b.bindStruct(c, dst)
	default:
		return typeError(dst.Type(), &UnrepresentableTypeError{Type: reprName(dst.Type())})
	}
	return nil
}

// bindInt stores an integer tag into a Go integer at least as wide.
func bindInt(val Value, dst reflect.Value) error {
	var n int64
	var width int
	switch v := val.(type) {
	case Byte:
		n, width = int64(v), 8
	case Short:
		n, width = int64(v), 16
	case Int:
		n, width = int64(v), 32
	case Long:
		n, width = int64(v), 64
	default:
		want, _ := staticKind(dst.Type())
		return mismatch(val.Kind(), want, dst.Type())
	}
	if width > dst.Type().Bits() {
		want, _ := staticKind(dst.Type())
		return mismatch(val.Kind(), want, dst.Type())
	}
	dst.SetInt(n)
	return nil
}

// bindSeq stores an array tag or a List into a slice or Go array.
func (b *binder) bindSeq(val Value, dst reflect.Value) error {
	elemType := dst.Type().Elem()
	if _, err := staticKind(elemType); err != nil {
		return typeError(dst.Type(), err)
	}

	var items []Value
	switch v := val.(type) {
	case ByteArray:
		if dst.Kind() == reflect.Slice && dst.Type().ConvertibleTo(int8sType) && elemType.Kind() == reflect.Int8 {
			dst.Set(reflect.ValueOf([]int8(v)).Convert(dst.Type()))
			return nil
		}
		items = make([]Value, len(v))
		for i, x := range v {
			items[i] = Byte(x)
		}
	case IntArray:
		if dst.Kind() == reflect.Slice && dst.Type().ConvertibleTo(int32sType) && elemType.Kind() == reflect.Int32 {
			dst.Set(reflect.ValueOf([]int32(v)).Convert(dst.Type()))
			return nil
		}
		items = make([]Value, len(v))
		for i, x := range v {
			items[i] = Int(x)
		}
	case LongArray:
		if dst.Kind() == reflect.Slice && dst.Type().ConvertibleTo(int64sType) && elemType.Kind() == reflect.Int64 {
			dst.Set(reflect.ValueOf([]int64(v)).Convert(dst.Type()))
			return nil
		}
		items = make([]Value, len(v))
		for i, x := range v {
			items[i] = Long(x)
		}
	case List:
		items = v.Items
	default:
		return mismatch(val.Kind(), TagList, dst.Type())
	}

	if dst.Kind() == reflect.Array {
		if len(items) != dst.Len() {
			return NewDecodeError(fmt.Sprintf("%d elements do not fit %s", len(items), dst.Type()), ErrUnexpectedTag)
		}
	} else {
		dst.Set(reflect.MakeSlice(dst.Type(), len(items), len(items)))
	}
	for i, item := range items {
		if err := b.bind(item, dst.Index(i)); err != nil {
			return err
		}
	}
	return nil
}

// bindStruct matches compound fields to struct fields by name.
func (b *binder) bindStruct(c *Compound, dst reflect.Value) error {
	t := dst.Type()
	info := getStructInfo(t)

	var seen map[*fieldInfo]bool
	for _, f := range c.Fields() {
		fi := info.lookup(f.Name, b.opts.FoldFieldNames)
		if fi == nil {
			if b.opts.StrictMode {
				return NewFieldDecodeError(t.Name(), f.Name, "unknown field", ErrUnknownField)
			}
			continue
		}
		if fi.required {
			if seen == nil {
				seen = make(map[*fieldInfo]bool)
			}
			seen[fi] = true
		}
		if err := b.bind(f.Value, dst.Field(fi.index)); err != nil {
			return wrapField(t.Name(), fi.goName, err)
		}
	}

	for i := range info.fields {
		fi := &info.fields[i]
		if fi.required && !seen[fi] {
			return NewFieldDecodeError(t.Name(), fi.goName, "required field missing", ErrRequiredFieldMissing)
		}
	}
	return nil
}

// wrapField attaches a struct field to an error that has none yet.
func wrapField(typeName, field string, err error) error {
	if de, ok := err.(*DecodeError); ok {
		if de.Field == "" {
			de.Type, de.Field = typeName, field
		}
		return de
	}
	return NewFieldDecodeError(typeName, field, "", err)
}

// mismatch reports a tag that does not fit the destination type.
func mismatch(got, want Kind, t reflect.Type) error {
	return typeError(t, &UnexpectedTagError{Got: got, Want: want})
}

func typeError(t reflect.Type, cause error) *DecodeError {
	return &DecodeError{Type: t.String(), Offset: -1, Cause: cause}
}
