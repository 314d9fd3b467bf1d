package nbt

import "fmt"

// Kind is the one-byte tag that precedes every NBT value on the wire.
// The numeric value of each Kind is its wire ID.
type Kind int8

// Tag kinds, in wire ID order.
const (
	TagEnd       Kind = 0
	TagByte      Kind = 1
	TagShort     Kind = 2
	TagInt       Kind = 3
	TagLong      Kind = 4
	TagFloat     Kind = 5
	TagDouble    Kind = 6
	TagByteArray Kind = 7
	TagString    Kind = 8
	TagList      Kind = 9
	TagCompound  Kind = 10
	TagIntArray  Kind = 11
	TagLongArray Kind = 12
)

var kindNames = [...]string{
	TagEnd:       "End",
	TagByte:      "Byte",
	TagShort:     "Short",
	TagInt:       "Int",
	TagLong:      "Long",
	TagFloat:     "Float",
	TagDouble:    "Double",
	TagByteArray: "ByteArray",
	TagString:    "String",
	TagList:      "List",
	TagCompound:  "Compound",
	TagIntArray:  "IntArray",
	TagLongArray: "LongArray",
}

// KindFromID returns the Kind for a wire ID.
// The second result is false for any ID outside 0-12.
func KindFromID(id byte) (Kind, bool) {
	if id > byte(TagLongArray) {
		return TagEnd, false
	}
	return Kind(id), true
}

// ID returns the wire ID of the kind.
func (k Kind) ID() byte {
	return byte(k)
}

// IsValid returns true if the kind is one of the thirteen known tags.
func (k Kind) IsValid() bool {
	return k >= TagEnd && k <= TagLongArray
}

// ListContainer returns the tag that frames a homogeneous sequence whose
// elements are of kind k. Byte, Int and Long sequences use their dedicated
// array tags; every other element kind uses the generic List tag.
func (k Kind) ListContainer() Kind {
	switch k {
	case TagByte:
		return TagByteArray
	case TagInt:
		return TagIntArray
	case TagLong:
		return TagLongArray
	default:
		return TagList
	}
}

// IsList returns true for kinds that frame a length-prefixed sequence.
func (k Kind) IsList() bool {
	switch k {
	case TagList, TagByteArray, TagIntArray, TagLongArray:
		return true
	default:
		return false
	}
}

// ArrayElem returns the element kind committed by an array tag.
// The second result is false if k is not one of the three array tags.
func (k Kind) ArrayElem() (Kind, bool) {
	switch k {
	case TagByteArray:
		return TagByte, true
	case TagIntArray:
		return TagInt, true
	case TagLongArray:
		return TagLong, true
	default:
		return TagEnd, false
	}
}

// payloadSize returns the fixed payload width of a numeric kind, or 0.
func (k Kind) payloadSize() int {
	switch k {
	case TagByte:
		return 1
	case TagShort:
		return 2
	case TagInt, TagFloat:
		return 4
	case TagLong, TagDouble:
		return 8
	default:
		return 0
	}
}

// String returns a human-readable name for the kind.
func (k Kind) String() string {
	if k.IsValid() {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int8(k))
}
