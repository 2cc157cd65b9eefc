package bptc

import "errors"

// ErrorCode is a codec API error code.
type ErrorCode uint32

const (
	// Success means no error.
	Success ErrorCode = 0

	// ErrBadParam reports an invalid argument (nil image, bad dimensions, bad tile).
	ErrBadParam ErrorCode = 1

	// ErrBadBufferSize reports an input or output buffer whose length does not match the
	// block count. Nothing is written when this is returned.
	ErrBadBufferSize ErrorCode = 2

	// ErrBadQuality reports an unknown quality tier.
	ErrBadQuality ErrorCode = 3

	// ErrBadFormat reports an unknown or mismatched block format.
	ErrBadFormat ErrorCode = 4

	// ErrBadFlags reports flags that are not valid for the format.
	ErrBadFlags ErrorCode = 5

	// ErrBadContext reports misuse of a Context (nil, busy, closed).
	ErrBadContext ErrorCode = 6

	// ErrCancelled reports cooperative cancellation observed between tiles.
	//
	// Tiles that completed before cancellation are fully written; the remaining
	// destination blocks are left untouched.
	ErrCancelled ErrorCode = 7

	// ErrNoValidCandidate reports that the mode search produced no representable block.
	//
	// This is unreachable for well-formed tiles because the fallback modes cannot
	// overflow; it is surfaced instead of emitting a wrong block.
	ErrNoValidCandidate ErrorCode = 8

	// ErrBadBlock reports a block that does not decode (reserved mode).
	ErrBadBlock ErrorCode = 9
)

// ErrorString returns the symbolic name for a code.
//
// For unknown codes, it returns "".
func ErrorString(code ErrorCode) string {
	switch code {
	case Success:
		return "BPTC_SUCCESS"
	case ErrBadParam:
		return "BPTC_ERR_BAD_PARAM"
	case ErrBadBufferSize:
		return "BPTC_ERR_BAD_BUFFER_SIZE"
	case ErrBadQuality:
		return "BPTC_ERR_BAD_QUALITY"
	case ErrBadFormat:
		return "BPTC_ERR_BAD_FORMAT"
	case ErrBadFlags:
		return "BPTC_ERR_BAD_FLAGS"
	case ErrBadContext:
		return "BPTC_ERR_BAD_CONTEXT"
	case ErrCancelled:
		return "BPTC_ERR_CANCELLED"
	case ErrNoValidCandidate:
		return "BPTC_ERR_NO_VALID_CANDIDATE"
	case ErrBadBlock:
		return "BPTC_ERR_BAD_BLOCK"
	default:
		return ""
	}
}

// Error is a typed error that carries an error code and an optional cause.
type Error struct {
	Code ErrorCode
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if msg == "" {
		if s := ErrorString(e.Code); s != "" {
			msg = "bptc: " + s
		} else {
			msg = "bptc: error"
		}
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying cause, if any (for example context.Canceled).
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// ErrorCodeOf returns the error code for err, or Success for nil.
//
// For non-*Error errors it returns ErrBadParam as a conservative fallback.
func ErrorCodeOf(err error) ErrorCode {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ErrBadParam
}

// IsCancelled reports whether err is the result of cooperative cancellation.
func IsCancelled(err error) bool {
	return err != nil && ErrorCodeOf(err) == ErrCancelled
}

func newError(code ErrorCode, msg string) error {
	return &Error{Code: code, Msg: msg}
}

func wrapError(code ErrorCode, msg string, cause error) error {
	return &Error{Code: code, Msg: msg, Err: cause}
}
