package strictlite

import (
	"fmt"
	"unsafe"
)

// Error is an engine error: a result code plus a human-readable message,
// sourced from the engine's own error accessor where one is available.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("strictlite: %s", e.Code)
	}
	return fmt.Sprintf("strictlite: %s: %s", e.Code, e.Message)
}

// Is matches another *Error by primary code, so
// errors.Is(err, &Error{Code: CodeConstraint}) matches every constraint
// subcode.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code || e.Code.Base() == t.Code
}

// errCode constructs an error from a code and a formatted message.
func errCode(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// ErrCode extracts the engine result code from err, or CodeError for
// non-engine errors and CodeOK for nil.
func ErrCode(err error) Code {
	if err == nil {
		return CodeOK
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return CodeError
}

// dbError builds an error for a failing call on db, pulling the extended
// result code and message from the engine.
func dbError(db dbHandle) *Error {
	p := unsafe.Pointer(db)
	code := Code(c_sqlite3_extended_errcode(p))
	return &Error{Code: code, Message: copyCString(c_sqlite3_errmsg(p))}
}

// rcError maps a raw return code to an error when the engine handle is
// unavailable (the message falls back to the engine's static description).
func rcError(rc int32) *Error {
	code := Code(rc)
	return &Error{Code: code, Message: copyCString(c_sqlite3_errstr(rc))}
}
