package nbt

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/blockberries/nbt/internal/wire"
)

// Format renders v as stringified NBT: {name:"x",n:3b,l:[I;1,2]}.
// Numeric suffixes follow the usual text form: b, s, L, f, d; Int has none.
func Format(v Value) string {
	var sb strings.Builder
	formatValue(&sb, v)
	return sb.String()
}

func formatValue(sb *strings.Builder, v Value) {
	switch v := v.(type) {
	case Byte:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('b')
	case Short:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('s')
	case Int:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case Long:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
		sb.WriteByte('L')
	case Float:
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 32))
		sb.WriteByte('f')
	case Double:
		sb.WriteString(strconv.FormatFloat(float64(v), 'g', -1, 64))
		sb.WriteByte('d')
	case String:
		sb.WriteString(strconv.Quote(string(v)))
	case ByteArray:
		sb.WriteString("[B;")
		for i, x := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(int64(x), 10))
			sb.WriteByte('b')
		}
		sb.WriteByte(']')
	case IntArray:
		sb.WriteString("[I;")
		for i, x := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(int64(x), 10))
		}
		sb.WriteByte(']')
	case LongArray:
		sb.WriteString("[L;")
		for i, x := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatInt(x, 10))
			sb.WriteByte('L')
		}
		sb.WriteByte(']')
	case List:
		sb.WriteByte('[')
		for i, item := range v.Items {
			if i > 0 {
				sb.WriteByte(',')
			}
			formatValue(sb, item)
		}
		sb.WriteByte(']')
	case *Compound:
		sb.WriteByte('{')
		for i, f := range v.Fields() {
			if i > 0 {
				sb.WriteByte(',')
			}
			formatKey(sb, f.Name)
			sb.WriteByte(':')
			formatValue(sb, f.Value)
		}
		sb.WriteByte('}')
	case nil:
		sb.WriteString("null")
	}
}

// formatKey writes a compound key bare when it only holds safe
// characters, quoted otherwise.
func formatKey(sb *strings.Builder, name string) {
	if name == "" {
		sb.WriteString(`""`)
		return
	}
	for _, r := range name {
		if !isBareKeyRune(r) {
			sb.WriteString(strconv.Quote(name))
			return
		}
	}
	sb.WriteString(name)
}

func isBareKeyRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r == '_', r == '-', r == '.', r == '+':
		return true
	default:
		return false
	}
}

// MarshalJSON renders the compound as a JSON object with fields in order.
// Non-finite floats become the strings "NaN", "+Inf" and "-Inf".
func (c *Compound) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c.Fields() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := json.Marshal(Plain(f.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Plain converts a tree node to ordinary Go values: integers to int64,
// floats to float64, arrays and lists to slices. Compounds stay as
// *Compound so field order survives. Non-finite floats become strings.
func Plain(v Value) any {
	switch v := v.(type) {
	case Byte:
		return int64(v)
	case Short:
		return int64(v)
	case Int:
		return int64(v)
	case Long:
		return int64(v)
	case Float:
		return plainFloat(float64(v))
	case Double:
		return plainFloat(float64(v))
	case String:
		return string(v)
	case ByteArray:
		out := make([]int64, len(v))
		for i, x := range v {
			out[i] = int64(x)
		}
		return out
	case IntArray:
		out := make([]int64, len(v))
		for i, x := range v {
			out[i] = int64(x)
		}
		return out
	case LongArray:
		return []int64(v)
	case List:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = Plain(item)
		}
		return out
	case *Compound:
		return v
	default:
		return nil
	}
}

func plainFloat(f float64) any {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "+Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	default:
		return f
	}
}

// Size returns the number of payload bytes v occupies on the wire,
// excluding any tag header.
func Size(v Value) int {
	switch v := v.(type) {
	case Byte, Short, Int, Long, Float, Double:
		return v.Kind().payloadSize()
	case String:
		return wire.StringSize(string(v))
	case ByteArray:
		return 4 + len(v)
	case IntArray:
		return 4 + 4*len(v)
	case LongArray:
		return 4 + 8*len(v)
	case List:
		elem := v.Elem
		if elem == TagEnd && len(v.Items) > 0 {
			elem = v.Items[0].Kind()
		}
		n := 5
		if elem.ListContainer() != TagList {
			n = 4
		}
		for _, item := range v.Items {
			n += Size(item)
		}
		return n
	case *Compound:
		n := 1
		for _, f := range v.Fields() {
			n += wire.TagHeaderSize(f.Name) + Size(f.Value)
		}
		return n
	default:
		return 0
	}
}
