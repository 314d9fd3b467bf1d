package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"

	"github.com/blockberries/nbt/pkg/nbt"
)

func cmdDump(stdout io.Writer, args []string) error {
	fs, verbose := newFlagSet("dump", `Usage: nbt dump [options] <file>

Print a decoded NBT file.`)
	format := fs.StringP("format", "f", "text", "Output format: text, json, yaml, cbor")
	compression := fs.StringP("compression", "c", "auto", "Input compression: auto, none, gzip, zlib, lz4, zstd")

	if err := fs.Parse(args); err != nil {
		return err
	}
	setupLogging(*verbose)

	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("dump takes exactly one file")
	}

	doc, err := loadDocument(fs.Arg(0), *compression)
	if err != nil {
		return err
	}
	return dump(stdout, doc, *format)
}

func dump(w io.Writer, doc *document, format string) error {
	switch format {
	case "text":
		if doc.Name != "" {
			fmt.Fprintf(w, "%s: ", strconv.Quote(doc.Name))
		}
		_, err := fmt.Fprintln(w, nbt.Format(doc.Root))
		return err
	case "json":
		data, err := json.MarshalIndent(doc.Root, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(yamlNode(doc.Root)); err != nil {
			return err
		}
		return enc.Close()
	case "cbor":
		data, err := cborMode.Marshal(cborValue(doc.Root))
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// yamlNode converts a tree node to a YAML node. Mapping nodes keep
// compound field order.
func yamlNode(v nbt.Value) *yaml.Node {
	switch v := v.(type) {
	case *nbt.Compound:
		n := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, f := range v.Fields() {
			key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Name}
			n.Content = append(n.Content, key, yamlNode(f.Value))
		}
		return n
	case nbt.List:
		n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, item := range v.Items {
			n.Content = append(n.Content, yamlNode(item))
		}
		return n
	case nbt.ByteArray:
		return yamlInts(v)
	case nbt.IntArray:
		return yamlInts(v)
	case nbt.LongArray:
		return yamlInts(v)
	case nbt.Byte:
		return yamlInt(int64(v))
	case nbt.Short:
		return yamlInt(int64(v))
	case nbt.Int:
		return yamlInt(int64(v))
	case nbt.Long:
		return yamlInt(int64(v))
	case nbt.Float:
		return yamlFloat(float64(v), 32)
	case nbt.Double:
		return yamlFloat(float64(v), 64)
	case nbt.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(v)}
	default:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
	}
}

func yamlInt(n int64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: strconv.FormatInt(n, 10)}
}

func yamlFloat(f float64, bits int) *yaml.Node {
	var s string
	switch {
	case math.IsNaN(f):
		s = ".nan"
	case math.IsInf(f, 1):
		s = ".inf"
	case math.IsInf(f, -1):
		s = "-.inf"
	default:
		s = strconv.FormatFloat(f, 'g', -1, bits)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: s}
}

// yamlInts renders an array tag as a flow sequence.
func yamlInts[T int8 | int32 | int64](xs []T) *yaml.Node {
	n := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq", Style: yaml.FlowStyle}
	for _, x := range xs {
		n.Content = append(n.Content, yamlInt(int64(x)))
	}
	return n
}

// cborMode writes deterministic CBOR. Map keys are sorted, so compound
// field order is not kept.
var cborMode cbor.EncMode

func init() {
	var err error
	cborMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("nbt: CBOR encoder initialization failed: " + err.Error())
	}
}

// cborValue converts a tree node to values the CBOR encoder understands.
func cborValue(v nbt.Value) any {
	switch v := v.(type) {
	case *nbt.Compound:
		m := make(map[string]any, v.Len())
		for _, f := range v.Fields() {
			m[f.Name] = cborValue(f.Value)
		}
		return m
	case nbt.List:
		out := make([]any, len(v.Items))
		for i, item := range v.Items {
			out[i] = cborValue(item)
		}
		return out
	case nbt.ByteArray:
		return []int8(v)
	case nbt.IntArray:
		return []int32(v)
	case nbt.LongArray:
		return []int64(v)
	case nbt.Byte:
		return int8(v)
	case nbt.Short:
		return int16(v)
	case nbt.Int:
		return int32(v)
	case nbt.Long:
		return int64(v)
	case nbt.Float:
		return float32(v)
	case nbt.Double:
		return float64(v)
	case nbt.String:
		return string(v)
	default:
		return nil
	}
}
