package nbt

import "github.com/blockberries/nbt/internal/wire"

// Limits defines resource limits for encoding/decoding.
type Limits struct {
	// MaxMessageSize is the maximum total message size in bytes.
	// A value of 0 means no limit.
	MaxMessageSize int64

	// MaxDepth is the maximum nesting depth of compounds and lists.
	// A value of 0 means no limit.
	MaxDepth int

	// MaxStringLength is the maximum length of a string or name in bytes.
	// The format itself caps strings at 65535 bytes; this may only lower it.
	// A value of 0 means the format cap.
	MaxStringLength int

	// MaxArrayLength is the maximum number of elements in a list or array.
	// A value of 0 means no limit.
	MaxArrayLength int

	// MaxCompoundSize is the maximum number of entries in a compound.
	// A value of 0 means no limit.
	MaxCompoundSize int
}

// DefaultLimits are the default resource limits.
// These are generous limits suitable for most use cases.
var DefaultLimits = Limits{
	MaxMessageSize:  64 * 1024 * 1024, // 64 MB
	MaxDepth:        512,
	MaxStringLength: wire.MaxStringLength,
	MaxArrayLength:  16 * 1024 * 1024,
	MaxCompoundSize: 1_000_000,
}

// SecureLimits are conservative limits for untrusted input.
var SecureLimits = Limits{
	MaxMessageSize:  2 * 1024 * 1024, // 2 MB
	MaxDepth:        64,
	MaxStringLength: 32 * 1024,
	MaxArrayLength:  64 * 1024,
	MaxCompoundSize: 10_000,
}

// NoLimits disables all configurable limits.
// Use with caution - only for trusted input.
var NoLimits = Limits{}

// Options configures encoding/decoding behavior.
type Options struct {
	// Limits specifies resource limits.
	Limits Limits

	// RootName is the name written in the root compound header.
	// Most files leave it empty.
	RootName string

	// StrictMode rejects compound entries with no matching struct field.
	StrictMode bool

	// ValidateUTF8 validates that decoded strings are valid UTF-8.
	ValidateUTF8 bool

	// OmitEmpty omits zero-value fields during encoding for every field,
	// not just the ones tagged omitempty.
	OmitEmpty bool

	// FoldFieldNames matches compound entries to struct fields using
	// Unicode case folding when no exact match exists.
	FoldFieldNames bool
}

// DefaultOptions are the default encoding/decoding options.
var DefaultOptions = Options{
	Limits:       DefaultLimits,
	ValidateUTF8: true,
}

// SecureOptions are conservative options for untrusted input.
var SecureOptions = Options{
	Limits:       SecureLimits,
	ValidateUTF8: true,
}

// StrictOptions reject unknown fields and validate strings.
var StrictOptions = Options{
	Limits:       DefaultLimits,
	StrictMode:   true,
	ValidateUTF8: true,
}

// LenientOptions fold field names and skip UTF-8 validation. They suit
// files written by tools that disagree on field name casing.
var LenientOptions = Options{
	Limits:         DefaultLimits,
	FoldFieldNames: true,
}

// maxString returns the effective string length cap.
func (o Options) maxString() int {
	if o.Limits.MaxStringLength <= 0 || o.Limits.MaxStringLength > wire.MaxStringLength {
		return wire.MaxStringLength
	}
	return o.Limits.MaxStringLength
}

// Version information, set by ldflags at build time.
var (
	// Version is the semantic version of the library.
	Version = "dev"

	// GitCommit is the git commit hash.
	GitCommit = "unknown"

	// BuildDate is the build timestamp.
	BuildDate = "unknown"
)

// VersionInfo returns a formatted version string.
func VersionInfo() string {
	return Version + " (" + GitCommit + ", " + BuildDate + ")"
}
