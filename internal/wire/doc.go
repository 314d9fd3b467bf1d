// Package wire implements the bare-value layer of the NBT format:
// fixed-width big-endian numerics, 2-byte length-prefixed strings, and
// named tag headers. It knows nothing about nesting.
package wire
