package themis

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a structural error.
type ErrorKind uint8

const (
	// KindUnsupportedApplication: the application name is outside the
	// script's source catalog.
	KindUnsupportedApplication ErrorKind = iota + 1
	// KindMalformedEncoding: canonical decoding found too few or too
	// many bytes, or a value outside its domain.
	KindMalformedEncoding
	// KindMalformedResponse: a raw response lacks the expected fields.
	KindMalformedResponse
	// KindInvalidClaimEncoding: a claim signature, public key or
	// address does not parse.
	KindInvalidClaimEncoding
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnsupportedApplication:
		return "UnsupportedApplication"
	case KindMalformedEncoding:
		return "MalformedEncoding"
	case KindMalformedResponse:
		return "MalformedResponse"
	case KindInvalidClaimEncoding:
		return "InvalidClaimEncoding"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// ParseErrorKind is the inverse of ErrorKind.String.
func ParseErrorKind(s string) (ErrorKind, bool) {
	for k := KindUnsupportedApplication; k <= KindInvalidClaimEncoding; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

// Sentinels for errors.Is. They match any StructuralError of the same kind.
var (
	ErrUnsupportedApplication = &StructuralError{Kind: KindUnsupportedApplication}
	ErrMalformedEncoding      = &StructuralError{Kind: KindMalformedEncoding}
	ErrMalformedResponse      = &StructuralError{Kind: KindMalformedResponse}
	ErrInvalidClaimEncoding   = &StructuralError{Kind: KindInvalidClaimEncoding}
)

// StructuralError signals input that cannot be processed at all.
//
// A structural error is never recovered or retried: the invocation is
// aborted and the host records no output. It is distinct from a
// consensus shortfall, which is a normal result with Valid == false.
type StructuralError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *StructuralError) Error() string {
	switch {
	case e.Reason == "" && e.Err == nil:
		return e.Kind.String()
	case e.Err == nil:
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Reason == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Is reports whether target is a StructuralError of the same kind.
func (e *StructuralError) Is(target error) bool {
	t, ok := target.(*StructuralError)
	return ok && t.Kind == e.Kind
}

// NewStructuralError creates a StructuralError with a formatted reason.
func NewStructuralError(kind ErrorKind, format string, args ...any) *StructuralError {
	return &StructuralError{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// WrapStructural wraps err as a StructuralError of the given kind.
func WrapStructural(kind ErrorKind, err error, reason string) *StructuralError {
	return &StructuralError{Kind: kind, Reason: reason, Err: err}
}

// IsStructural checks whether an error is a StructuralError and returns it.
func IsStructural(err error) (*StructuralError, bool) {
	var s *StructuralError
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}
