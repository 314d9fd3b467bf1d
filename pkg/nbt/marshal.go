package nbt

import (
	"fmt"
	"io"
	"reflect"
)

var (
	valueType    = reflect.TypeOf((*Value)(nil)).Elem()
	compoundType = reflect.TypeOf((**Compound)(nil)).Elem()
	listType     = reflect.TypeOf((*List)(nil)).Elem()
	int8sType    = reflect.TypeOf((*[]int8)(nil)).Elem()
	int32sType   = reflect.TypeOf((*[]int32)(nil)).Elem()
	int64sType   = reflect.TypeOf((*[]int64)(nil)).Elem()
)

// Marshal encodes a Go struct (or *Compound) as an NBT root compound
// with an empty root name.
//
// Go types map onto tags as follows: bool and int8 to Byte, int16 to
// Short, int32 to Int, int64 and int to Long, float32 to Float, float64
// to Double, string to String, slices and arrays to List (or ByteArray,
// IntArray, LongArray for int8, int32 and int64 elements), structs to
// Compound. Unsigned integers, maps, channels, functions and complex
// numbers have no encoding and fail with ErrUnrepresentableType. A nil
// pointer or interface field is omitted.
//
// Field names come from the "nbt" struct tag, or the Go field name.
func Marshal(v any) ([]byte, error) {
	return MarshalWithOptions(v, DefaultOptions)
}

// MarshalNamed is like Marshal but writes rootName in the root header.
func MarshalNamed(v any, rootName string) ([]byte, error) {
	opts := DefaultOptions
	opts.RootName = rootName
	return MarshalWithOptions(v, opts)
}

// MarshalWithOptions encodes a Go value with the specified options.
func MarshalWithOptions(v any, opts Options) ([]byte, error) {
	w := GetWriter()
	defer PutWriter(w)
	w.SetOptions(opts)

	e := newEncoder(w, opts)
	if err := marshalValue(e, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	if err := e.Finish(); err != nil {
		return nil, err
	}
	return w.BytesCopy(), nil
}

// MarshalAppend appends the encoded value to buf.
func MarshalAppend(buf []byte, v any) ([]byte, error) {
	w := &Writer{buf: buf, opts: DefaultOptions}
	e := newEncoder(w, DefaultOptions)
	if err := marshalValue(e, reflect.ValueOf(v)); err != nil {
		return nil, err
	}
	if err := e.Finish(); err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

// MarshalTo encodes v directly to w. On failure w may hold a partial
// encoding.
func MarshalTo(w io.Writer, v any) error {
	return MarshalToWithOptions(w, v, DefaultOptions)
}

// MarshalToWithOptions is like MarshalTo with explicit options.
func MarshalToWithOptions(w io.Writer, v any, opts Options) error {
	sw := GetStreamWriter(w)
	defer PutStreamWriter(sw)
	sw.SetOptions(opts)

	e := newEncoder(sw, opts)
	if err := marshalValue(e, reflect.ValueOf(v)); err != nil {
		return err
	}
	return e.Finish()
}

// marshalValue emits one Go value at the encoder's current position.
func marshalValue(e *Encoder, v reflect.Value) error {
	if !v.IsValid() {
		return e.fail(NewEncodeError("nil value", &UnrepresentableTypeError{Type: "nil"}))
	}

	if (v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface) && v.IsNil() {
		return e.fail(NewEncodeError("nil "+v.Type().String(), &UnrepresentableTypeError{Type: "nil"}))
	}
	if v.Kind() != reflect.Interface && v.Type().Implements(valueType) {
		return e.Value(v.Interface().(Value))
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return marshalValue(e, v.Elem())
	case reflect.Bool:
		return e.Bool(v.Bool())
	case reflect.Int8:
		return e.Byte(int8(v.Int()))
	case reflect.Int16:
		return e.Short(int16(v.Int()))
	case reflect.Int32:
		return e.Int(int32(v.Int()))
	case reflect.Int64, reflect.Int:
		return e.Long(v.Int())
	case reflect.Float32:
		return e.Float(float32(v.Float()))
	case reflect.Float64:
		return e.Double(v.Float())
	case reflect.String:
		return e.String(v.String())
	case reflect.Slice, reflect.Array:
		return marshalSeq(e, v)
	case reflect.Struct:
		return marshalStruct(e, v)
	default:
		return e.fail(NewEncodeError(v.Type().String(), &UnrepresentableTypeError{Type: reprName(v.Type())}))
	}
}

// marshalSeq emits a slice or array as a list. Element kind is taken from
// the Go element type when the sequence is empty.
func marshalSeq(e *Encoder, v reflect.Value) error {
	elemType := v.Type().Elem()
	elem, err := staticKind(elemType)
	if err != nil {
		return e.fail(NewEncodeError(v.Type().String(), err))
	}
	n := v.Len()

	switch {
	case v.Kind() != reflect.Slice:
	case v.Type().ConvertibleTo(int8sType) && elemType.Kind() == reflect.Int8:
		return e.ByteArray(v.Convert(int8sType).Interface().([]int8))
	case v.Type().ConvertibleTo(int32sType) && elemType.Kind() == reflect.Int32:
		return e.IntArray(v.Convert(int32sType).Interface().([]int32))
	case v.Type().ConvertibleTo(int64sType) && elemType.Kind() == reflect.Int64:
		return e.LongArray(v.Convert(int64sType).Interface().([]int64))
	}

	if n == 0 {
		if err := e.BeginListOf(elem, 0); err != nil {
			return err
		}
		return e.EndList()
	}
	if err := e.BeginList(n); err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		if err := marshalValue(e, v.Index(i)); err != nil {
			return err
		}
	}
	return e.EndList()
}

// marshalStruct emits a struct as a compound.
func marshalStruct(e *Encoder, v reflect.Value) error {
	if err := e.BeginCompound(); err != nil {
		return err
	}
	info := getStructInfo(v.Type())
	for i := range info.fields {
		fi := &info.fields[i]
		fv := v.Field(fi.index)
		if (fi.omitEmpty || e.opts.OmitEmpty) && isZeroValue(fv) {
			continue
		}
		if err := e.Name(fi.name); err != nil {
			return e.fieldError(v.Type().Name(), fi.goName, err)
		}
		if isAbsent(fv) {
			if err := e.CancelName(); err != nil {
				return err
			}
			continue
		}
		if err := marshalValue(e, fv); err != nil {
			return e.fieldError(v.Type().Name(), fi.goName, err)
		}
	}
	return e.EndCompound()
}

// fieldError attaches the innermost struct field to the encoder's error.
func (e *Encoder) fieldError(typeName, field string, err error) error {
	ee, ok := err.(*EncodeError)
	if !ok {
		ee = NewFieldEncodeError(typeName, field, "", err)
	} else if ee.Field == "" {
		ee.Type, ee.Field = typeName, field
	}
	if e.err == err {
		e.err = ee
	}
	return ee
}

// isAbsent reports whether a field holds no value: a nil pointer, a nil
// interface or a nil *Compound.
func isAbsent(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}

// staticKind returns the tag a Go type encodes as, without a value.
// Types with no fixed tag, such as Value interfaces, report TagEnd.
func staticKind(t reflect.Type) (Kind, error) {
	switch t {
	case compoundType:
		return TagCompound, nil
	case listType:
		return TagList, nil
	case valueType:
		return TagEnd, nil
	}
	switch t.Kind() {
	case reflect.Bool, reflect.Int8:
		return TagByte, nil
	case reflect.Int16:
		return TagShort, nil
	case reflect.Int32:
		return TagInt, nil
	case reflect.Int64, reflect.Int:
		return TagLong, nil
	case reflect.Float32:
		return TagFloat, nil
	case reflect.Float64:
		return TagDouble, nil
	case reflect.String:
		return TagString, nil
	case reflect.Struct:
		return TagCompound, nil
	case reflect.Ptr:
		return staticKind(t.Elem())
	case reflect.Interface:
		return TagEnd, nil
	case reflect.Slice, reflect.Array:
		elem, err := staticKind(t.Elem())
		if err != nil {
			return TagEnd, err
		}
		return elem.ListContainer(), nil
	default:
		return TagEnd, &UnrepresentableTypeError{Type: reprName(t)}
	}
}

// reprName names a Go type the way unrepresentable errors report it.
func reprName(t reflect.Type) string {
	switch t.Kind() {
	case reflect.Uint8:
		return "u8"
	case reflect.Uint16:
		return "u16"
	case reflect.Uint32:
		return "u32"
	case reflect.Uint64:
		return "u64"
	case reflect.Uint:
		return "uint"
	case reflect.Uintptr:
		return "uintptr"
	case reflect.Map:
		return "map"
	case reflect.Complex64, reflect.Complex128:
		return "complex"
	case reflect.Chan:
		return "chan"
	case reflect.Func:
		return "func"
	default:
		return t.String()
	}
}

// typeName names the dynamic type of v.
func typeName(v any) string {
	return fmt.Sprintf("%T", v)
}
