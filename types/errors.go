package types

import (
	"errors"
	"fmt"
)

// Code identifies the kind of runtime failure.
type Code int

const (
	RuntimeAssertionFailed Code = iota + 1
	SymbolNotFound
	TypeNotImplemented
	InvalidCoercion
	IndexOutOfRange
	InvalidProcedure
	InvalidOperation
)

func (c Code) String() string {
	switch c {
	case RuntimeAssertionFailed:
		return "RuntimeAssert"
	case SymbolNotFound:
		return "Symbol not found"
	case TypeNotImplemented:
		return "Type not implemented"
	case InvalidCoercion:
		return "Invalid coercion"
	case IndexOutOfRange:
		return "Index out of range"
	case InvalidProcedure:
		return "Proc not valid"
	case InvalidOperation:
		return "Invalid operation"
	}
	return fmt.Sprintf("(Unknown: %d)", int(c))
}

// Error is the single error family raised by the reader, the evaluator and
// the primitive library.
type Error struct {
	Code   Code
	Reason string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("Runtime error %s: %s", e.Code, e.Reason)
}

func (e *Error) Unwrap() error { return e.Err }

func Errorf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Reason: fmt.Sprintf(format, args...)}
}

// ValueError uses the rendered value as the reason.
func ValueError(code Code, v *Value) *Error {
	return &Error{Code: code, Reason: v.Render(true)}
}

func Wrap(code Code, err error, format string, args ...interface{}) *Error {
	return &Error{Code: code, Reason: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf reports the code of the first *Error in err's chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return 0, false
}

func IsCode(err error, code Code) bool {
	c, ok := CodeOf(err)
	return ok && c == code
}
