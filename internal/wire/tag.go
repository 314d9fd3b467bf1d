package wire

// AppendTagHeader appends a named tag header: the tag ID byte followed by
// the name as a bare string. An empty name is written as a zero length.
func AppendTagHeader(buf []byte, id byte, name string) ([]byte, error) {
	return AppendString(append(buf, id), name)
}

// TagHeaderSize returns the encoded size of a named tag header.
func TagHeaderSize(name string) int {
	return 1 + StringSize(name)
}
