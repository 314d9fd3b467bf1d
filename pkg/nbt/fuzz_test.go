package nbt

import (
	"bytes"
	"errors"
	"testing"
)

// FuzzDecode checks that arbitrary input never panics and that anything
// that decodes re-encodes to a stable encoding.
func FuzzDecode(f *testing.F) {
	f.Add(bananrama)
	f.Add(helloWorld)
	f.Add([]byte{0x0a, 0x00, 0x00, 0x09, 0x00, 0x01, 'x', 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	f.Add([]byte{0x0a, 0x00, 0x00, 0x0b, 0x00, 0x01, 'x', 0x7f, 0xff, 0xff, 0xff})
	f.Add([]byte{0xff})
	if data, err := Encode(sampleTree(), "seed"); err == nil {
		f.Add(data)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		name, c, err := DecodeNamedWithOptions(data, SecureOptions)
		if err != nil {
			if Classify(err) == ClassNone || IsMisuse(err) {
				t.Fatalf("decode failure misclassified: %v", err)
			}
			return
		}
		opts := Options{Limits: SecureLimits, RootName: name}
		out, err := EncodeWithOptions(c, opts)
		if err != nil {
			// Lists of lists whose inner lists frame differently, such as
			// a byte list next to a string list, have no encoding.
			if errors.Is(err, ErrHeterogeneousList) {
				return
			}
			t.Fatalf("re-encode: %v", err)
		}
		_, again, err := DecodeNamedWithOptions(out, SecureOptions)
		if err != nil {
			t.Fatalf("decode of re-encoded tree: %v", err)
		}
		out2, err := EncodeWithOptions(again, opts)
		if err != nil {
			t.Fatalf("second re-encode: %v", err)
		}
		if !bytes.Equal(out, out2) {
			t.Fatalf("encoding is not stable across a round trip")
		}
		if _, _, err := newTreeDecoder(NewStreamReaderWithOptions(bytes.NewReader(out), SecureOptions)).root(); err != nil {
			t.Fatalf("stream decode: %v", err)
		}
	})
}

type fuzzTarget struct {
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
	Tree    *Compound `nbt:"tree"`
}

// FuzzUnmarshal binds arbitrary input onto a struct covering every field
// kind. Whatever binds must marshal, and the result must bind again to
// the same bytes.
func FuzzUnmarshal(f *testing.F) {
	f.Add(bananrama)
	if data, err := Marshal(sampleAllKinds()); err == nil {
		f.Add(data)
	}
	f.Add([]byte{0x0a, 0x00, 0x00, 0x01, 0x00, 0x04, 'f', 'l', 'a', 'g', 0x02, 0x00})
	f.Add([]byte{0x0a, 0x00, 0x00, 0x07, 0x00, 0x06, 's', 'h', 'o', 'r', 't', 's', 0x00, 0x00, 0x00, 0x01, 0x05, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		var first fuzzTarget
		if err := UnmarshalWithOptions(data, &first, SecureOptions); err != nil {
			if Classify(err) == ClassNone || IsMisuse(err) {
				t.Fatalf("unmarshal failure misclassified: %v", err)
			}
			return
		}
		out, err := Marshal(first)
		if err != nil {
			if errors.Is(err, ErrHeterogeneousList) {
				return
			}
			t.Fatalf("marshal of bound value: %v", err)
		}
		var second fuzzTarget
		if err := Unmarshal(out, &second); err != nil {
			t.Fatalf("unmarshal of marshaled value: %v", err)
		}
		again, err := Marshal(second)
		if err != nil {
			t.Fatalf("second marshal: %v", err)
		}
		if !bytes.Equal(out, again) {
			t.Fatalf("marshal is not stable across a round trip")
		}
	})
}
