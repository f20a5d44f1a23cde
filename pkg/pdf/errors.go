package pdf

import (
	"errors"
	"fmt"
)

// Sentinel errors shared by the crop engine, the assembler and the HTTP layer.
var (
	ErrValidation         = errors.New("invalid request")
	ErrInputTooLarge      = errors.New("input too large")
	ErrDecode             = errors.New("cannot decode document")
	ErrGeometryDegenerate = errors.New("degenerate geometry")
)

// OpError records the operation that failed together with the underlying error.
type OpError struct {
	Op  string // operation name, e.g. "crop.ratio", "pageops.rearrange"
	Err error  // underlying error
}

func (e *OpError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: unknown error", e.Op)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError wraps err with operation context. A nil err yields nil.
func NewOpError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Op: op, Err: err}
}

// kindError pairs a sentinel with the message shown to callers
type kindError struct {
	kind  error
	msg   string
	cause error
}

func (e *kindError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%v: %s: %v", e.kind, e.msg, e.cause)
	}
	return fmt.Sprintf("%v: %s", e.kind, e.msg)
}

func (e *kindError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Validationf builds an error matching ErrValidation with a formatted message.
func Validationf(format string, args ...any) error {
	return &kindError{kind: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// TooLargef builds an error matching ErrInputTooLarge with a formatted message.
func TooLargef(format string, args ...any) error {
	return &kindError{kind: ErrInputTooLarge, msg: fmt.Sprintf(format, args...)}
}

// Decodef builds an error matching ErrDecode with a formatted message.
func Decodef(format string, args ...any) error {
	return &kindError{kind: ErrDecode, msg: fmt.Sprintf(format, args...)}
}

// DecodeError builds an error matching ErrDecode that also keeps the decoder's own error.
func DecodeError(msg string, cause error) error {
	return &kindError{kind: ErrDecode, msg: msg, cause: cause}
}

// Message returns the caller-facing message of the first error in err's chain
// built by Validationf, TooLargef, Decodef or DecodeError.
func Message(err error) (string, bool) {
	var k *kindError
	if errors.As(err, &k) {
		return k.msg, true
	}
	return "", false
}
