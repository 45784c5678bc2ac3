package cart

import "fmt"

type StatusCode int

const (
	StatusInvalidArgument StatusCode = iota
	StatusFailedPrecondition
	StatusUnavailable
)

// Messages shown to the operator.
const (
	ErrMsgInvalidQuantity = "Please enter a valid quantity."
	ErrMsgNoSelection     = "Please pick an item first."
	ErrMsgUnknownPicker   = "Unknown variant picker"
	ErrMsgUnknownVariant  = "Unknown variant"
	ErrMsgEmptyCart       = "Please add at least one item to the bill."
	ErrMsgSubmitFailed    = "Error generating bill. Please try again."
)

func (s StatusCode) String() string {
	switch s {
	case StatusInvalidArgument:
		return "INVALID_ARGUMENT"
	case StatusFailedPrecondition:
		return "FAILED_PRECONDITION"
	case StatusUnavailable:
		return "UNAVAILABLE"
	default:
		return "UNKNOWN"
	}
}

type Error struct {
	Code    StatusCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on code and message so wrapped causes still compare equal to
// the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code && t.Message == e.Message
}

// Retryable reports whether repeating the same action may succeed.
func (e *Error) Retryable() bool { return e.Code == StatusUnavailable }

var (
	ErrInvalidQuantity = NewInvalidArgument(ErrMsgInvalidQuantity)
	ErrNoSelection     = NewInvalidArgument(ErrMsgNoSelection)
	ErrUnknownPicker   = NewInvalidArgument(ErrMsgUnknownPicker)
	ErrUnknownVariant  = NewInvalidArgument(ErrMsgUnknownVariant)
	ErrEmptyCart       = NewFailedPrecondition(ErrMsgEmptyCart)
	ErrSubmitFailed    = &Error{Code: StatusUnavailable, Message: ErrMsgSubmitFailed}
)

func NewInvalidArgument(message string) *Error {
	return &Error{Code: StatusInvalidArgument, Message: message}
}

func NewFailedPrecondition(message string) *Error {
	return &Error{Code: StatusFailedPrecondition, Message: message}
}

func newSubmitFailed(cause error) *Error {
	return &Error{Code: StatusUnavailable, Message: ErrMsgSubmitFailed, Err: cause}
}

func wrapInvalid(sentinel *Error, format string, args ...any) *Error {
	return &Error{Code: sentinel.Code, Message: sentinel.Message, Err: fmt.Errorf(format, args...)}
}
