package nbt

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"golang.org/x/text/cases"
)

// fieldInfo holds metadata about a struct field.
type fieldInfo struct {
	name      string
	goName    string
	index     int
	omitEmpty bool
	required  bool
}

// structInfo holds cached metadata about a struct type.
type structInfo struct {
	fields []fieldInfo
	byName map[string]*fieldInfo
	// byFold maps case-folded names for Options.FoldFieldNames.
	byFold map[string]*fieldInfo
}

// structInfoCache caches struct metadata for performance.
var structInfoCache sync.Map

// getStructInfo returns cached struct metadata. Field names come from
// the "nbt" tag when present, else the Go field name.
func getStructInfo(t reflect.Type) *structInfo {
	if cached, ok := structInfoCache.Load(t); ok {
		return cached.(*structInfo)
	}

	info := &structInfo{
		fields: make([]fieldInfo, 0, t.NumField()),
	}
	fold := cases.Fold()

	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)

		// Skip unexported fields
		if !f.IsExported() {
			continue
		}

		tag := f.Tag.Get("nbt")
		if tag == "-" {
			continue
		}
		fi := parseFieldTag(tag, fieldInfo{
			name:   f.Name,
			goName: f.Name,
			index:  i,
		})
		info.fields = append(info.fields, fi)
	}

	info.byName = make(map[string]*fieldInfo, len(info.fields))
	info.byFold = make(map[string]*fieldInfo, len(info.fields))
	for i := range info.fields {
		fi := &info.fields[i]
		if prev, ok := info.byName[fi.name]; ok {
			panic(fmt.Sprintf("nbt: duplicate field name %q in %s (fields %q and %q)",
				fi.name, t.Name(), prev.goName, fi.goName))
		}
		info.byName[fi.name] = fi
		key := fold.String(fi.name)
		if _, ok := info.byFold[key]; !ok {
			info.byFold[key] = fi
		}
	}

	actual, _ := structInfoCache.LoadOrStore(t, info)
	return actual.(*structInfo)
}

// lookup finds the field stored under name.
func (si *structInfo) lookup(name string, fold bool) *fieldInfo {
	if fi, ok := si.byName[name]; ok {
		return fi
	}
	if fold {
		return si.byFold[cases.Fold().String(name)]
	}
	return nil
}

// parseFieldTag parses an nbt struct tag.
// Format: "name,option,option,..."
// Options: omitempty, required
func parseFieldTag(tag string, fi fieldInfo) fieldInfo {
	if tag == "" {
		return fi
	}
	parts := strings.Split(tag, ",")
	if parts[0] != "" {
		fi.name = parts[0]
	}
	for _, opt := range parts[1:] {
		switch opt {
		case "omitempty":
			fi.omitEmpty = true
		case "required":
			fi.required = true
		}
	}
	return fi
}

// maxZeroValueDepth bounds recursion in isZeroValue.
const maxZeroValueDepth = 100

// isZeroValue returns true if the value is the zero value for its type.
func isZeroValue(v reflect.Value) bool {
	return isZeroValueWithDepth(v, 0)
}

// isZeroValueWithDepth returns false past maxZeroValueDepth, so the field
// is encoded rather than omitted.
func isZeroValueWithDepth(v reflect.Value, depth int) bool {
	if depth > maxZeroValueDepth {
		return false
	}

	switch v.Kind() {
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.String:
		return v.String() == ""
	case reflect.Slice, reflect.Map:
		return v.IsNil() || v.Len() == 0
	case reflect.Array:
		return v.Len() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	case reflect.Struct:
		for i := 0; i < v.NumField(); i++ {
			if !isZeroValueWithDepth(v.Field(i), depth+1) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
