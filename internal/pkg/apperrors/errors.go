package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies registry errors so the transport layer can map them to
// response codes without string matching.
type Kind int

const (
	// KindValidation: malformed input (bad address, non-positive quantity).
	KindValidation Kind = iota + 1
	// KindNotFound: a referenced class/transfer/retirement/org/project is missing.
	KindNotFound
	// KindConflict: the mutation is impossible in the current state
	// (already-minted class, insufficient holdings, serial-range overflow).
	KindConflict
	// KindChainUnavailable: the RPC endpoint could not be reached or timed out.
	KindChainUnavailable
	// KindChainExecution: the transaction was delivered but the contract reverted.
	KindChainExecution
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func ChainUnavailable(message string, err error) *Error {
	return &Error{Kind: KindChainUnavailable, Message: message, Err: err}
}

func ChainExecution(message string, err error) *Error {
	return &Error{Kind: KindChainExecution, Message: message, Err: err}
}

// KindOf returns the kind of err, or 0 when err is not an app error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// IsChain reports whether err came from the chain gateway (either variant).
func IsChain(err error) bool {
	k := KindOf(err)
	return k == KindChainUnavailable || k == KindChainExecution
}

// HTTPStatus maps an error to the transport status used by the standard error
// body. Unknown errors are 500.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return 400
	case KindNotFound:
		return 404
	case KindConflict:
		return 409
	case KindChainUnavailable:
		return 503
	case KindChainExecution:
		return 502
	default:
		return 500
	}
}
