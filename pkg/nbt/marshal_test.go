package nbt

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inner struct {
	X int32 `nbt:"x"`
}

type allKinds struct {
	Flag    bool      `nbt:"flag"`
	B       int8      `nbt:"b"`
	S       int16     `nbt:"s"`
	I       int32     `nbt:"i"`
	L       int64     `nbt:"l"`
	N       int       `nbt:"n"`
	F       float32   `nbt:"f"`
	D       float64   `nbt:"d"`
	Str     string    `nbt:"str"`
	Bytes   []int8    `nbt:"bytes"`
	Ints    []int32   `nbt:"ints"`
	Longs   []int64   `nbt:"longs"`
	Shorts  []int16   `nbt:"shorts"`
	Strings []string  `nbt:"strings"`
	Nested  inner     `nbt:"nested"`
	Items   []inner   `nbt:"items"`
	Grid    [][]int32 `nbt:"grid"`
	Fixed   [3]int16  `nbt:"fixed"`
	Ptr     *inner    `nbt:"ptr"`
	Missing *inner    `nbt:"missing"`
	Tree    *Compound `nbt:"tree"`
	Any     Value     `nbt:"any"`
	Raw     List      `nbt:"raw"`
	skipped int
	Ignored string `nbt:"-"`
}

func sampleAllKinds() allKinds {
	return allKinds{
		Flag:    true,
		B:       -8,
		S:       1234,
		I:       -123456,
		L:       1 << 50,
		N:       -42,
		F:       0.25,
		D:       3.5,
		Str:     "Bananrama",
		Bytes:   []int8{1, -2, 3},
		Ints:    []int32{10, 20},
		Longs:   []int64{-1},
		Shorts:  []int16{},
		Strings: []string{"a", "", "c"},
		Nested:  inner{X: 7},
		Items:   []inner{{X: 1}, {X: 2}},
		Grid:    [][]int32{{1, 2}, {3}, {}},
		Fixed:   [3]int16{4, 5, 6},
		Ptr:     &inner{X: 9},
		Tree:    NewCompound().Set("k", String("v")),
		Any:     Int(5),
		Raw:     List{Elem: TagDouble, Items: []Value{Double(1)}},
	}
}

func TestMarshalBananrama(t *testing.T) {
	type doc struct {
		Name string `nbt:"name"`
	}
	got, err := Marshal(doc{Name: "Bananrama"})
	require.NoError(t, err)
	assert.Equal(t, bananrama, got)

	got, err = Marshal(&doc{Name: "Bananrama"})
	require.NoError(t, err)
	assert.Equal(t, bananrama, got)

	got, err = Marshal(NewCompound().Set("name", String("Bananrama")))
	require.NoError(t, err)
	assert.Equal(t, bananrama, got)
}

func TestMarshalRoundTrip(t *testing.T) {
	src := sampleAllKinds()
	src.skipped = 3
	src.Ignored = "gone"

	data, err := Marshal(src)
	require.NoError(t, err)

	var got allKinds
	require.NoError(t, Unmarshal(data, &got))

	src.skipped = 0
	src.Ignored = ""
	assert.Equal(t, src, got)
}

func TestMarshalTreeShape(t *testing.T) {
	data, err := Marshal(sampleAllKinds())
	require.NoError(t, err)
	c, err := Decode(data)
	require.NoError(t, err)

	kinds := map[string]Kind{
		"flag":    TagByte,
		"n":       TagLong,
		"bytes":   TagByteArray,
		"ints":    TagIntArray,
		"longs":   TagLongArray,
		"shorts":  TagList,
		"strings": TagList,
		"nested":  TagCompound,
		"grid":    TagList,
		"fixed":   TagList,
	}
	for name, want := range kinds {
		v, ok := c.Get(name)
		require.True(t, ok, name)
		assert.Equal(t, want, v.Kind(), name)
	}

	_, ok := c.Get("missing")
	assert.False(t, ok, "nil pointer field must be elided")
	_, ok = c.Get("Ignored")
	assert.False(t, ok)

	shorts, _ := c.Get("shorts")
	assert.Equal(t, TagShort, shorts.(List).Elem, "empty slice keeps its element kind")
	grid, _ := c.Get("grid")
	assert.Equal(t, TagIntArray, grid.(List).Elem)
}

func TestMarshalFloatList(t *testing.T) {
	type entity struct {
		Pos []float64 `nbt:"Pos"`
	}
	got, err := Marshal(entity{Pos: []float64{1, 2}})
	require.NoError(t, err)
	want := root(cat(
		[]byte{0x09, 0x00, 0x03, 'P', 'o', 's', 0x06}, be32(2),
		[]byte{0x3f, 0xf0, 0, 0, 0, 0, 0, 0},
		[]byte{0x40, 0x00, 0, 0, 0, 0, 0, 0},
	))
	assert.Equal(t, want, got)
}

func TestMarshalNamed(t *testing.T) {
	type doc struct {
		Name string `nbt:"name"`
	}
	got, err := MarshalNamed(doc{Name: "Bananrama"}, "hello world")
	require.NoError(t, err)
	assert.Equal(t, helloWorld, got)
}

func TestMarshalToAndAppend(t *testing.T) {
	type doc struct {
		Name string `nbt:"name"`
	}
	var buf bytes.Buffer
	require.NoError(t, MarshalTo(&buf, doc{Name: "Bananrama"}))
	assert.Equal(t, bananrama, buf.Bytes())

	prefix := []byte{0xde, 0xad}
	got, err := MarshalAppend(prefix, doc{Name: "Bananrama"})
	require.NoError(t, err)
	assert.Equal(t, cat([]byte{0xde, 0xad}, bananrama), got)
}

func TestMarshalUnrepresentable(t *testing.T) {
	tests := []struct {
		name  string
		v     any
		repr  string
		field string
	}{
		{"u8 field", struct{ U uint8 }{1}, "u8", "U"},
		{"u16 field", struct{ U uint16 }{1}, "u16", "U"},
		{"u32 field", struct{ U uint32 }{1}, "u32", "U"},
		{"u64 field", struct{ U uint64 }{1}, "u64", "U"},
		{"byte slice", struct{ B []byte }{[]byte{1}}, "u8", "B"},
		{"empty byte slice", struct{ B []byte }{[]byte{}}, "u8", "B"},
		{"map field", struct{ M map[string]int32 }{map[string]int32{"a": 1}}, "map", "M"},
		{"map root", map[string]int32{}, "map", ""},
		{"complex", struct{ C complex64 }{1}, "complex", "C"},
		{"chan", struct{ C chan int }{make(chan int)}, "chan", "C"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Marshal(tt.v)
			require.ErrorIs(t, err, ErrUnrepresentableType)
			assert.Equal(t, ClassUnrepresentable, Classify(err))
			var ue *UnrepresentableTypeError
			require.ErrorAs(t, err, &ue)
			assert.Equal(t, tt.repr, ue.Type)
			assert.Contains(t, err.Error(), "cannot represent "+tt.repr)
			if tt.field != "" {
				assert.Contains(t, err.Error(), "encode "+tt.field+":")
			}
		})
	}
}

type badSlot struct {
	Count uint8 `nbt:"Count"`
}

type badInventory struct {
	Items []badSlot `nbt:"Items"`
}

func TestMarshalErrorNamesInnermostField(t *testing.T) {
	_, err := Marshal(badInventory{Items: []badSlot{{Count: 1}}})
	require.ErrorIs(t, err, ErrUnrepresentableType)

	var ee *EncodeError
	require.ErrorAs(t, err, &ee)
	assert.Equal(t, "badSlot", ee.Type)
	assert.Equal(t, "Count", ee.Field)
	assert.Equal(t, "nbt: encode badSlot.Count: uint8: nbt: cannot represent u8 in NBT format", err.Error())
}

func TestMarshalStringTooLongMessage(t *testing.T) {
	_, err := Marshal(struct{ S string }{strings.Repeat("x", 65536)})
	require.ErrorIs(t, err, ErrStringTooLong)
	assert.Contains(t, err.Error(), "string value")
	assert.Contains(t, err.Error(), "exceeds 65535")
}

func TestMarshalNoRootCompound(t *testing.T) {
	for _, v := range []any{int32(1), "x", []int32{1}, []string{}, true} {
		_, err := Marshal(v)
		require.ErrorIs(t, err, ErrNoRootCompound, "%T", v)
	}
}

func TestMarshalNil(t *testing.T) {
	_, err := Marshal(nil)
	require.ErrorIs(t, err, ErrUnrepresentableType)

	_, err = Marshal((*Compound)(nil))
	require.ErrorIs(t, err, ErrUnrepresentableType)
}

func TestMarshalHeterogeneousSlice(t *testing.T) {
	type doc struct {
		Mixed []any `nbt:"mixed"`
	}
	_, err := Marshal(doc{Mixed: []any{int32(1), "two"}})
	require.ErrorIs(t, err, ErrHeterogeneousList)
	assert.Contains(t, err.Error(), "Int")
	assert.Contains(t, err.Error(), "String")
}

func TestMarshalOmitEmpty(t *testing.T) {
	type doc struct {
		A int32  `nbt:"a,omitempty"`
		B string `nbt:"b"`
	}
	got, err := Marshal(doc{})
	require.NoError(t, err)
	assert.Equal(t, root([]byte{0x08, 0x00, 0x01, 'b', 0x00, 0x00}), got)

	opts := DefaultOptions
	opts.OmitEmpty = true
	got, err = MarshalWithOptions(doc{}, opts)
	require.NoError(t, err)
	assert.Equal(t, root(), got)
}

func TestMarshalNilFieldsElided(t *testing.T) {
	type doc struct {
		P *int32    `nbt:"p"`
		V Value     `nbt:"v"`
		C *Compound `nbt:"c"`
		Q int8      `nbt:"q"`
	}
	got, err := Marshal(doc{Q: 1})
	require.NoError(t, err)
	assert.Equal(t, root([]byte{0x01, 0x00, 0x01, 'q', 0x01}), got)
}

func TestMarshalDuplicateFieldName(t *testing.T) {
	type doc struct {
		A int8 `nbt:"x"`
		B int8 `nbt:"x"`
	}
	assert.Panics(t, func() { _, _ = Marshal(doc{}) })
}

func TestUnmarshalBool(t *testing.T) {
	type doc struct {
		Flag bool `nbt:"flag"`
	}
	for _, tt := range []struct {
		b    byte
		want bool
	}{{0, false}, {1, true}} {
		var out doc
		require.NoError(t, Unmarshal(root([]byte{0x01, 0x00, 0x04, 'f', 'l', 'a', 'g', tt.b}), &out))
		assert.Equal(t, tt.want, out.Flag)
	}

	var out doc
	err := Unmarshal(root([]byte{0x01, 0x00, 0x04, 'f', 'l', 'a', 'g', 0x02}), &out)
	require.ErrorIs(t, err, ErrNonBooleanByte)
	assert.Contains(t, err.Error(), "found 2")
	assert.Contains(t, err.Error(), "Flag")
	assert.Equal(t, ClassShapeMismatch, Classify(err))
}

func TestUnmarshalIntegerWidth(t *testing.T) {
	type wide struct {
		V int64 `nbt:"v"`
	}
	type narrow struct {
		V int16 `nbt:"v"`
	}

	data := root([]byte{0x01, 0x00, 0x01, 'v', 0xfe})
	var w wide
	require.NoError(t, Unmarshal(data, &w))
	assert.Equal(t, int64(-2), w.V)

	data = root(cat([]byte{0x03, 0x00, 0x01, 'v'}, be32(70000)))
	var n narrow
	err := Unmarshal(data, &n)
	require.ErrorIs(t, err, ErrUnexpectedTag)
	assert.Contains(t, err.Error(), "Int")
}

func TestUnmarshalFloatWidth(t *testing.T) {
	type doc struct {
		D float64 `nbt:"d"`
		F float32 `nbt:"f"`
	}
	data, err := Encode(NewCompound().Set("d", Float(1.5)).Set("f", Float(2.5)), "")
	require.NoError(t, err)
	var out doc
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, doc{D: 1.5, F: 2.5}, out)

	data, err = Encode(NewCompound().Set("f", Double(1)), "")
	require.NoError(t, err)
	require.ErrorIs(t, Unmarshal(data, &out), ErrUnexpectedTag)
}

func TestUnmarshalTypeMismatch(t *testing.T) {
	type doc struct {
		Name int32 `nbt:"name"`
	}
	var out doc
	err := Unmarshal(bananrama, &out)
	require.ErrorIs(t, err, ErrUnexpectedTag)
	var ute *UnexpectedTagError
	require.ErrorAs(t, err, &ute)
	assert.Equal(t, TagString, ute.Got)
	assert.Equal(t, TagInt, ute.Want)
}

func TestUnmarshalArrayLength(t *testing.T) {
	type doc struct {
		Fixed [3]int16 `nbt:"fixed"`
	}
	data, err := Encode(NewCompound().Set("fixed", List{Elem: TagShort, Items: []Value{Short(1), Short(2)}}), "")
	require.NoError(t, err)
	var out doc
	require.ErrorIs(t, Unmarshal(data, &out), ErrUnexpectedTag)
}

func TestUnmarshalMapField(t *testing.T) {
	type doc struct {
		M map[string]int32 `nbt:"m"`
	}
	data, err := Encode(NewCompound().Set("m", NewCompound()), "")
	require.NoError(t, err)
	var out doc
	err = Unmarshal(data, &out)
	require.ErrorIs(t, err, ErrUnrepresentableType)
}

func TestUnmarshalFieldOptions(t *testing.T) {
	t.Run("required", func(t *testing.T) {
		type doc struct {
			Name string `nbt:"name"`
			Age  int32  `nbt:"age,required"`
		}
		var out doc
		err := Unmarshal(bananrama, &out)
		require.ErrorIs(t, err, ErrRequiredFieldMissing)
		assert.Contains(t, err.Error(), "Age")
	})

	t.Run("strict", func(t *testing.T) {
		type doc struct{}
		var out doc
		require.NoError(t, Unmarshal(bananrama, &out))
		err := UnmarshalWithOptions(bananrama, &out, StrictOptions)
		require.ErrorIs(t, err, ErrUnknownField)
	})

	t.Run("fold", func(t *testing.T) {
		type doc struct {
			Name string `nbt:"NAME"`
		}
		var out doc
		require.NoError(t, Unmarshal(bananrama, &out))
		assert.Empty(t, out.Name)

		require.NoError(t, UnmarshalWithOptions(bananrama, &out, LenientOptions))
		assert.Equal(t, "Bananrama", out.Name)
	})

	t.Run("absent keeps value", func(t *testing.T) {
		type doc struct {
			Name  string `nbt:"name"`
			Level int32  `nbt:"level"`
		}
		out := doc{Level: 3}
		require.NoError(t, Unmarshal(bananrama, &out))
		assert.Equal(t, doc{Name: "Bananrama", Level: 3}, out)
	})
}

func TestUnmarshalTargets(t *testing.T) {
	type doc struct {
		Name string `nbt:"name"`
	}
	err := Unmarshal(bananrama, doc{})
	require.ErrorIs(t, err, ErrNotPointer)
	assert.True(t, IsMisuse(err))

	err = Unmarshal(bananrama, (*doc)(nil))
	require.ErrorIs(t, err, ErrNilPointer)

	var c *Compound
	require.NoError(t, Unmarshal(bananrama, &c))
	v, _ := c.Get("name")
	assert.Equal(t, String("Bananrama"), v)

	var tree Value
	require.NoError(t, Unmarshal(bananrama, &tree))
	assert.Equal(t, TagCompound, tree.Kind())
}

func TestUnmarshalIntoCompound(t *testing.T) {
	data, err := Marshal(struct{ A int32 }{A: 7})
	require.NoError(t, err)

	c := NewCompound()
	require.NoError(t, Unmarshal(data, c))
	require.Equal(t, 1, c.Len())
	v, ok := c.Get("A")
	require.True(t, ok)
	assert.Equal(t, Int(7), v)

	kept := NewCompound().Set("B", Byte(1)).Set("A", Int(0))
	require.NoError(t, UnmarshalFrom(bytes.NewReader(data), kept))
	require.Equal(t, 2, kept.Len())
	v, _ = kept.Get("A")
	assert.Equal(t, Int(7), v)
	assert.Equal(t, "B", kept.Fields()[0].Name)

	bound := NewCompound()
	require.NoError(t, Bind(NewCompound().Set("name", String("x")), bound))
	v, _ = bound.Get("name")
	assert.Equal(t, String("x"), v)
}

func TestUnmarshalFrom(t *testing.T) {
	type doc struct {
		Name string `nbt:"name"`
	}
	var out doc
	require.NoError(t, UnmarshalFrom(bytes.NewReader(helloWorld), &out))
	assert.Equal(t, "Bananrama", out.Name)
}

func TestBind(t *testing.T) {
	type doc struct {
		Name string `nbt:"name"`
	}
	var out doc
	require.NoError(t, Bind(NewCompound().Set("name", String("x")), &out))
	assert.Equal(t, "x", out.Name)
}
