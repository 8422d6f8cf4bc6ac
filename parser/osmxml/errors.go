package osmxml

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	// AttrError is a present but malformed numeric or boolean attribute.
	AttrError ErrorKind = iota
	// MissingError is a missing required attribute.
	MissingError
	// TypeError is an unknown member type.
	TypeError
	// EncodingError is invalid UTF-8 or an unknown entity reference in
	// an attribute value.
	EncodingError
	// StructureError is a mis-nested element. Terminates the sequence.
	StructureError
	// SyntaxError is an error from the XML tokenizer or the underlying
	// reader. Terminates the sequence.
	SyntaxError
)

func (k ErrorKind) String() string {
	switch k {
	case AttrError:
		return "attribute error"
	case MissingError:
		return "missing attribute"
	case TypeError:
		return "type error"
	case EncodingError:
		return "encoding error"
	case StructureError:
		return "structure error"
	case SyntaxError:
		return "syntax error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ReadError is returned by Parser.Next for input that could not be
// converted into an element.
type ReadError struct {
	Kind ErrorKind
	Msg  string
	// Offset is the input offset after the token that caused the error.
	Offset int64
	Err    error
}

func (e *ReadError) Error() string {
	msg := fmt.Sprintf("parse error at offset %d: %s", e.Offset, e.Msg)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error. ReadError intentionally does not
// implement Cause, so that errors.Cause stops at the ReadError.
func (e *ReadError) Unwrap() error {
	return e.Err
}

// Recoverable returns true if the parser can continue after this error.
// Only the affected element is dropped.
func (e *ReadError) Recoverable() bool {
	return e.Kind < StructureError
}

// IsRecoverable returns true if err (or its cause) is a recoverable
// ReadError.
func IsRecoverable(err error) bool {
	if rerr, ok := errors.Cause(err).(*ReadError); ok {
		return rerr.Recoverable()
	}
	return false
}

func attrError(key, val string, err error) *ReadError {
	return &ReadError{Kind: AttrError, Msg: fmt.Sprintf("invalid %s attribute %q", key, val), Err: err}
}

func missingError(msg string) *ReadError {
	return &ReadError{Kind: MissingError, Msg: msg}
}

func structureError(msg string) *ReadError {
	return &ReadError{Kind: StructureError, Msg: msg}
}
