// Package nbt reads and writes the Named Binary Tag format: big-endian,
// self-describing trees rooted in a named compound. Marshal and Unmarshal
// map Go structs onto compounds, and Encode and Decode work on Value trees.
package nbt

import (
	"errors"
	"fmt"

	"github.com/blockberries/nbt/internal/wire"
)

// Sentinel errors for common conditions.
// These can be checked using errors.Is().
var (
	// ErrUnexpectedEOF indicates the stream ended before a value was complete.
	ErrUnexpectedEOF = errors.New("nbt: data does not represent a complete value")

	// ErrIO indicates the underlying stream failed for a reason other than
	// running out of data.
	ErrIO = errors.New("nbt: i/o failure")

	// ErrUnknownTag indicates a tag byte outside the thirteen known IDs.
	ErrUnknownTag = errors.New("nbt: unknown tag")

	// ErrUnexpectedTag indicates a known tag that does not fit the requested type.
	ErrUnexpectedTag = errors.New("nbt: unexpected tag")

	// ErrNonBooleanByte indicates a boolean was backed by a byte other than 0 or 1.
	ErrNonBooleanByte = errors.New("nbt: boolean bytes must be 0 or 1")

	// ErrHeterogeneousList indicates two elements of one list disagree in kind.
	ErrHeterogeneousList = errors.New("nbt: heterogeneous list")

	// ErrMisuse indicates the encoder was driven out of contract: a value
	// without a field name, a name set twice, a list closed short of its
	// declared length, and similar programming errors.
	ErrMisuse = errors.New("nbt: encoder misuse")

	// ErrUnrepresentableType indicates a Go value that has no NBT encoding.
	ErrUnrepresentableType = errors.New("nbt: unrepresentable type")

	// ErrNoRootCompound indicates the outermost value is not a compound.
	ErrNoRootCompound = errors.New("nbt: all values must have a root compound")

	// ErrInvalidUTF8 indicates a string contains invalid UTF-8.
	ErrInvalidUTF8 = wire.ErrInvalidUTF8

	// ErrStringTooLong indicates a string or name longer than 65535 bytes.
	ErrStringTooLong = wire.ErrStringTooLong

	// ErrNegativeLength indicates a negative list or array length was decoded.
	ErrNegativeLength = errors.New("nbt: negative length")

	// ErrOverflow indicates a decoded number does not fit the target type.
	ErrOverflow = errors.New("nbt: integer overflow")

	// ErrNotPointer indicates the target for unmarshaling is not a pointer.
	ErrNotPointer = errors.New("nbt: target must be a pointer")

	// ErrNilPointer indicates the target pointer is nil.
	ErrNilPointer = errors.New("nbt: nil pointer")

	// ErrUnknownField indicates an unknown field was encountered in strict mode.
	ErrUnknownField = errors.New("nbt: unknown field")

	// ErrRequiredFieldMissing indicates a required field was not present.
	ErrRequiredFieldMissing = errors.New("nbt: required field missing")

	// ErrMaxDepthExceeded indicates the maximum nesting depth was exceeded.
	ErrMaxDepthExceeded = errors.New("nbt: maximum nesting depth exceeded")

	// ErrMaxSizeExceeded indicates the maximum message size was exceeded.
	ErrMaxSizeExceeded = errors.New("nbt: maximum message size exceeded")

	// ErrMaxStringLength indicates the configured string length limit was exceeded.
	ErrMaxStringLength = errors.New("nbt: maximum string length exceeded")

	// ErrMaxArrayLength indicates the maximum list/array length was exceeded.
	ErrMaxArrayLength = errors.New("nbt: maximum array length exceeded")

	// ErrMaxCompoundSize indicates a compound held more fields than allowed.
	ErrMaxCompoundSize = errors.New("nbt: maximum compound size exceeded")
)

// UnknownTagError reports a tag byte that names no Kind.
type UnknownTagError struct {
	ID byte
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("nbt: unknown tag: %d", e.ID)
}

// Is reports whether target is ErrUnknownTag.
func (e *UnknownTagError) Is(target error) bool {
	return target == ErrUnknownTag
}

// UnexpectedTagError reports a tag that is valid but not the one the
// destination type requires.
type UnexpectedTagError struct {
	Got  Kind
	Want Kind
}

func (e *UnexpectedTagError) Error() string {
	return fmt.Sprintf("nbt: unexpected tag: %s, expecting: %s", e.Got, e.Want)
}

// Is reports whether target is ErrUnexpectedTag.
func (e *UnexpectedTagError) Is(target error) bool {
	return target == ErrUnexpectedTag
}

// NonBooleanByteError reports the offending byte of a boolean field.
type NonBooleanByteError struct {
	Value int8
}

func (e *NonBooleanByteError) Error() string {
	return fmt.Sprintf("nbt: boolean bytes must be 0 or 1, found %d", e.Value)
}

// Is reports whether target is ErrNonBooleanByte.
func (e *NonBooleanByteError) Is(target error) bool {
	return target == ErrNonBooleanByte
}

// HeterogeneousListError reports a list element whose kind differs from
// the kind the list was opened with.
type HeterogeneousListError struct {
	Want Kind
	Got  Kind
}

func (e *HeterogeneousListError) Error() string {
	return fmt.Sprintf("nbt: heterogeneous list: list holds %s, element is %s", e.Want, e.Got)
}

// Is reports whether target is ErrHeterogeneousList.
func (e *HeterogeneousListError) Is(target error) bool {
	return target == ErrHeterogeneousList
}

// UnrepresentableTypeError names a Go type the format cannot express.
type UnrepresentableTypeError struct {
	Type string
}

func (e *UnrepresentableTypeError) Error() string {
	return fmt.Sprintf("nbt: cannot represent %s in NBT format", e.Type)
}

// Is reports whether target is ErrUnrepresentableType.
func (e *UnrepresentableTypeError) Is(target error) bool {
	return target == ErrUnrepresentableType
}

// DecodeError provides detailed context for decoding failures.
// It implements the error interface and supports error unwrapping.
type DecodeError struct {
	// Type is the name of the Go type being decoded into (if known).
	Type string

	// Field is the name of the field being decoded (if applicable).
	Field string

	// Offset is the byte offset in the input where the error occurred.
	Offset int

	// Message describes what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a formatted error message.
func (e *DecodeError) Error() string {
	var prefix string
	if e.Type != "" && e.Field != "" {
		prefix = fmt.Sprintf("%s.%s", e.Type, e.Field)
	} else if e.Type != "" {
		prefix = e.Type
	} else if e.Field != "" {
		prefix = e.Field
	}

	msg := e.Message
	if e.Cause != nil {
		if msg == "" {
			msg = e.Cause.Error()
		} else {
			msg += ": " + e.Cause.Error()
		}
	}

	if prefix != "" {
		if e.Offset >= 0 {
			return fmt.Sprintf("nbt: decode %s at offset %d: %s", prefix, e.Offset, msg)
		}
		return fmt.Sprintf("nbt: decode %s: %s", prefix, msg)
	}

	if e.Offset >= 0 {
		return fmt.Sprintf("nbt: decode at offset %d: %s", e.Offset, msg)
	}
	return fmt.Sprintf("nbt: decode: %s", msg)
}

// Unwrap returns the underlying cause of the error.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// NewDecodeError creates a new DecodeError.
func NewDecodeError(message string, cause error) *DecodeError {
	return &DecodeError{
		Offset:  -1,
		Message: message,
		Cause:   cause,
	}
}

// NewDecodeErrorAt creates a new DecodeError with offset information.
func NewDecodeErrorAt(offset int, message string, cause error) *DecodeError {
	return &DecodeError{
		Offset:  offset,
		Message: message,
		Cause:   cause,
	}
}

// NewFieldDecodeError creates a DecodeError for a specific field.
func NewFieldDecodeError(typeName, fieldName string, message string, cause error) *DecodeError {
	return &DecodeError{
		Type:    typeName,
		Field:   fieldName,
		Offset:  -1,
		Message: message,
		Cause:   cause,
	}
}

// EncodeError provides detailed context for encoding failures.
type EncodeError struct {
	// Type is the name of the type being encoded.
	Type string

	// Field is the name of the field being encoded (if applicable).
	Field string

	// Message describes what went wrong.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

// Error returns a formatted error message.
func (e *EncodeError) Error() string {
	var prefix string
	if e.Type != "" && e.Field != "" {
		prefix = fmt.Sprintf("%s.%s", e.Type, e.Field)
	} else if e.Type != "" {
		prefix = e.Type
	} else if e.Field != "" {
		prefix = e.Field
	}

	msg := e.Message
	if e.Cause != nil {
		if msg == "" {
			msg = e.Cause.Error()
		} else {
			msg += ": " + e.Cause.Error()
		}
	}

	if prefix != "" {
		return fmt.Sprintf("nbt: encode %s: %s", prefix, msg)
	}
	return fmt.Sprintf("nbt: encode: %s", msg)
}

// Unwrap returns the underlying cause of the error.
func (e *EncodeError) Unwrap() error {
	return e.Cause
}

// NewEncodeError creates a new EncodeError.
func NewEncodeError(message string, cause error) *EncodeError {
	return &EncodeError{
		Message: message,
		Cause:   cause,
	}
}

// NewFieldEncodeError creates an EncodeError for a specific field.
func NewFieldEncodeError(typeName, fieldName string, message string, cause error) *EncodeError {
	return &EncodeError{
		Type:    typeName,
		Field:   fieldName,
		Message: message,
		Cause:   cause,
	}
}

// misuse builds an encoder contract-violation error.
func misuse(format string, args ...any) error {
	return NewEncodeError(fmt.Sprintf(format, args...), ErrMisuse)
}

// ErrorClass is the coarse category of a codec failure.
type ErrorClass int

// Error classes, one per branch of the failure taxonomy.
const (
	ClassNone ErrorClass = iota
	ClassIO
	ClassIncomplete
	ClassMalformed
	ClassShapeMismatch
	ClassStructural
	ClassUnrepresentable
	ClassNoRootCompound
	ClassMisuse
	ClassLimitExceeded
	ClassOther
)

// String returns the class name.
func (c ErrorClass) String() string {
	switch c {
	case ClassNone:
		return "none"
	case ClassIO:
		return "io"
	case ClassIncomplete:
		return "incomplete"
	case ClassMalformed:
		return "malformed"
	case ClassShapeMismatch:
		return "shape-mismatch"
	case ClassStructural:
		return "structural"
	case ClassUnrepresentable:
		return "unrepresentable"
	case ClassNoRootCompound:
		return "no-root-compound"
	case ClassMisuse:
		return "misuse"
	case ClassLimitExceeded:
		return "limit-exceeded"
	default:
		return "other"
	}
}

// Classify maps an error returned by this package to its class.
// Misuse is checked first so a contract violation is never reported as
// malformed input.
func Classify(err error) ErrorClass {
	switch {
	case err == nil:
		return ClassNone
	case IsMisuse(err):
		return ClassMisuse
	case errors.Is(err, ErrNoRootCompound):
		return ClassNoRootCompound
	case IsIncomplete(err):
		return ClassIncomplete
	case errors.Is(err, ErrIO):
		return ClassIO
	case IsMalformed(err):
		return ClassMalformed
	case errors.Is(err, ErrUnexpectedTag),
		errors.Is(err, ErrNonBooleanByte),
		errors.Is(err, ErrOverflow):
		return ClassShapeMismatch
	case errors.Is(err, ErrHeterogeneousList):
		return ClassStructural
	case errors.Is(err, ErrUnrepresentableType),
		errors.Is(err, ErrStringTooLong):
		return ClassUnrepresentable
	case IsLimitExceeded(err):
		return ClassLimitExceeded
	default:
		return ClassOther
	}
}

// IsIncomplete returns true if the input ended in the middle of a value.
func IsIncomplete(err error) bool {
	return errors.Is(err, ErrUnexpectedEOF)
}

// IsMalformed returns true if the input bytes themselves are invalid.
func IsMalformed(err error) bool {
	switch {
	case errors.Is(err, ErrUnknownTag),
		errors.Is(err, ErrInvalidUTF8),
		errors.Is(err, ErrNegativeLength):
		return true
	default:
		return false
	}
}

// IsMisuse returns true if the error indicates a programming error
// that should not occur in correct code.
func IsMisuse(err error) bool {
	switch {
	case errors.Is(err, ErrMisuse),
		errors.Is(err, ErrNotPointer),
		errors.Is(err, ErrNilPointer):
		return true
	default:
		return false
	}
}

// IsFatal is an alias of IsMisuse.
func IsFatal(err error) bool {
	return IsMisuse(err)
}

// IsLimitExceeded returns true if the error indicates a configured limit was exceeded.
func IsLimitExceeded(err error) bool {
	switch {
	case errors.Is(err, ErrMaxDepthExceeded),
		errors.Is(err, ErrMaxSizeExceeded),
		errors.Is(err, ErrMaxStringLength),
		errors.Is(err, ErrMaxArrayLength),
		errors.Is(err, ErrMaxCompoundSize):
		return true
	default:
		return false
	}
}
