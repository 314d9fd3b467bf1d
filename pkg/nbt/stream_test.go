package nbt

import (
	"bytes"
	"errors"
	"testing"
)

// sampleTree exercises every tag kind.
func sampleTree() *Compound {
	return NewCompound().
		Set("byte", Byte(1)).
		Set("short", Short(-2)).
		Set("int", Int(3)).
		Set("long", Long(-4)).
		Set("float", Float(5.5)).
		Set("double", Double(-6.25)).
		Set("string", String("seven")).
		Set("bytes", ByteArray{8, -8}).
		Set("ints", IntArray{9}).
		Set("longs", LongArray{10, 11}).
		Set("list", List{Elem: TagCompound, Items: []Value{NewCompound().Set("x", Int(12))}}).
		Set("empty", List{}).
		Set("nested", NewCompound().Set("deeper", NewCompound()))
}

func TestStreamMatchesBuffer(t *testing.T) {
	tree := sampleTree()

	want, err := Encode(tree, "r")
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := EncodeTo(&buf, tree, "r"); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Fatalf("stream encoding differs from buffer encoding")
	}

	got, err := DecodeFrom(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(tree, got) {
		t.Errorf("round trip mismatch:\n got %s\nwant %s", got, tree)
	}
}

func TestStreamReaderSmallBuffer(t *testing.T) {
	data, err := Encode(sampleTree(), "")
	if err != nil {
		t.Fatal(err)
	}
	sr := NewStreamReaderSize(bytes.NewReader(data), 16)
	_, c, err := newTreeDecoder(sr).root()
	if err != nil {
		t.Fatal(err)
	}
	if !Equal(sampleTree(), c) {
		t.Error("tree read through a small buffer differs")
	}
	if sr.Pos() != len(data) {
		t.Errorf("Pos() = %d, want %d", sr.Pos(), len(data))
	}
}

func TestStreamWriterWritten(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf)
	sw.WriteKind(TagCompound)
	sw.WriteString("ab")
	sw.WriteInt32s([]int32{1, 2})
	if sw.Written() != 1+4+8 {
		t.Errorf("Written() = %d, want 13", sw.Written())
	}
	if buf.Len() != 0 {
		t.Error("data reached the writer before Flush")
	}
	if err := sw.Close(); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 13 {
		t.Errorf("flushed %d bytes, want 13", buf.Len())
	}
}

func TestStreamWriterClosed(t *testing.T) {
	var buf bytes.Buffer
	sw := NewStreamWriter(&buf)
	if err := sw.Close(); err != nil {
		t.Fatal(err)
	}
	sw.WriteInt8(1)
	if !errors.Is(sw.Err(), ErrMisuse) {
		t.Errorf("write after Close: got %v, want misuse", sw.Err())
	}
}

func TestStreamWriterSizeLimit(t *testing.T) {
	opts := DefaultOptions
	opts.Limits.MaxMessageSize = 8
	var buf bytes.Buffer
	err := MarshalToWithOptions(&buf, struct {
		Name string `nbt:"name"`
	}{"Bananrama"}, opts)
	if !errors.Is(err, ErrMaxSizeExceeded) {
		t.Errorf("got %v, want ErrMaxSizeExceeded", err)
	}
}

func TestStreamReaderSizeLimit(t *testing.T) {
	opts := DefaultOptions
	opts.Limits.MaxMessageSize = 8
	d := NewDecoderWithOptions(bytes.NewReader(bananrama), opts)
	_, _, err := d.Decode()
	if !errors.Is(err, ErrMaxSizeExceeded) {
		t.Errorf("got %v, want ErrMaxSizeExceeded", err)
	}
	if d.More() {
		t.Error("More() after a failed Decode")
	}
}

func TestStreamReaderPooled(t *testing.T) {
	for i := 0; i < 3; i++ {
		sr := GetStreamReader(bytes.NewReader(helloWorld))
		name, _, err := newTreeDecoder(sr).root()
		PutStreamReader(sr)
		if err != nil {
			t.Fatal(err)
		}
		if name != "hello world" {
			t.Errorf("name = %q", name)
		}
	}
}

func TestWriterFrozen(t *testing.T) {
	w := NewWriter()
	w.WriteInt8(1)
	_ = w.Bytes()
	w.WriteInt8(2)
	if !errors.Is(w.Err(), ErrMisuse) {
		t.Errorf("write after Bytes: got %v, want misuse", w.Err())
	}
	w.Reset()
	w.WriteInt8(3)
	if w.Err() != nil || w.Len() != 1 {
		t.Errorf("Reset did not clear the writer: err=%v len=%d", w.Err(), w.Len())
	}
}

func TestTagHeaderWriters(t *testing.T) {
	want := []byte{0x08, 0x00, 0x04, 'n', 'a', 'm', 'e'}

	w := NewWriter()
	w.WriteTagHeader(TagString, "name")
	if w.Err() != nil || !bytes.Equal(w.Bytes(), want) {
		t.Errorf("Writer: %x, %v", w.Bytes(), w.Err())
	}

	var buf bytes.Buffer
	sw := NewStreamWriter(&buf)
	sw.WriteTagHeader(TagString, "name")
	sw.WriteTagHeader(TagInt, "")
	if err := sw.Flush(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf.Bytes(), append(want, 0x03, 0x00, 0x00)) {
		t.Errorf("StreamWriter: %x", buf.Bytes())
	}

	long := string(make([]byte, 65536))
	w = NewWriter()
	w.WriteTagHeader(TagByte, long)
	if !errors.Is(w.Err(), ErrStringTooLong) {
		t.Errorf("Writer long name: %v", w.Err())
	}
	sw = NewStreamWriter(&bytes.Buffer{})
	sw.WriteTagHeader(TagByte, long)
	if !errors.Is(sw.Err(), ErrStringTooLong) {
		t.Errorf("StreamWriter long name: %v", sw.Err())
	}
}

func TestReadersAgree(t *testing.T) {
	w := NewWriter()
	w.WriteInt16(-300)
	w.WriteInt32(-70000)
	w.WriteInt64(-1 << 40)
	w.WriteFloat32(1.5)
	w.WriteFloat64(-0.25)
	w.WriteString("héllo")
	data := w.BytesCopy()

	r := NewReader(data)
	sr := NewStreamReader(bytes.NewReader(data))
	for _, rd := range []source{r, sr} {
		if v := rd.ReadInt16(); v != -300 {
			t.Errorf("%T ReadInt16 = %d", rd, v)
		}
		if v := rd.ReadInt32(); v != -70000 {
			t.Errorf("%T ReadInt32 = %d", rd, v)
		}
		if v := rd.ReadInt64(); v != -1<<40 {
			t.Errorf("%T ReadInt64 = %d", rd, v)
		}
		if v := rd.ReadFloat32(); v != 1.5 {
			t.Errorf("%T ReadFloat32 = %v", rd, v)
		}
		if v := rd.ReadFloat64(); v != -0.25 {
			t.Errorf("%T ReadFloat64 = %v", rd, v)
		}
		if v := rd.ReadString(); v != "héllo" {
			t.Errorf("%T ReadString = %q", rd, v)
		}
	}
	if r.Err() != nil || sr.Err() != nil {
		t.Errorf("errors: %v, %v", r.Err(), sr.Err())
	}

	short := NewReader(data[:len(data)-1])
	short.Skip(2 + 4 + 8 + 4 + 8)
	short.ReadString()
	if !errors.Is(short.Err(), ErrUnexpectedEOF) {
		t.Errorf("truncated string: %v", short.Err())
	}
}
