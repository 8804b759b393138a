package apperr

import "fmt"

const (
	invalidArgumentCode = "INVALID_ARGUMENT"
	notFoundCode        = "NOT_FOUND"
	internalErrorCode   = "INTERNAL_ERROR"
	backendCode         = "BACKEND_ERROR"
	indexOutOfRangeCode = "INDEX_OUT_OF_RANGE"
)

type messageCause struct {
	Msg string
	Err error
}

func (e *messageCause) Message() string { return e.Msg }
func (e *messageCause) Cause() error    { return e.Err }
func (e *messageCause) Unwrap() error   { return e.Err }

func formatError(code, msg string, cause error) string {
	if cause != nil {
		return fmt.Sprintf("[%s] %s: %v", code, msg, cause)
	}
	return fmt.Sprintf("[%s] %s", code, msg)
}

// InvalidArgErr reports malformed wire input. It is always caused by the
// client and never by the backend.
type InvalidArgErr struct {
	messageCause
}

func NewInvalidArgErr(msg string, cause error) *InvalidArgErr {
	return &InvalidArgErr{messageCause: messageCause{Msg: msg, Err: cause}}
}

func (e *InvalidArgErr) Error() string          { return formatError(invalidArgumentCode, e.Msg, e.Err) }
func (e *InvalidArgErr) Code() string           { return invalidArgumentCode }
func (e *InvalidArgErr) ErrorCode() int         { return RPCCodeInvalidParams }
func (e *InvalidArgErr) ErrorData() interface{} { return invalidArgumentCode }

type NotFoundErr struct {
	messageCause
}

func NewNotFoundErr(msg string, cause error) *NotFoundErr {
	return &NotFoundErr{messageCause: messageCause{Msg: msg, Err: cause}}
}

func (e *NotFoundErr) Error() string          { return formatError(notFoundCode, e.Msg, e.Err) }
func (e *NotFoundErr) Code() string           { return notFoundCode }
func (e *NotFoundErr) ErrorCode() int         { return RPCCodeNotFound }
func (e *NotFoundErr) ErrorData() interface{} { return notFoundCode }

type InternalErr struct {
	messageCause
}

func NewInternalErr(msg string, cause error) *InternalErr {
	return &InternalErr{messageCause: messageCause{Msg: msg, Err: cause}}
}

func (e *InternalErr) Error() string          { return formatError(internalErrorCode, e.Msg, e.Err) }
func (e *InternalErr) Code() string           { return internalErrorCode }
func (e *InternalErr) ErrorCode() int         { return RPCCodeInternalError }
func (e *InternalErr) ErrorData() interface{} { return internalErrorCode }

// BackendErr reports that a light client could not answer: sync not ready,
// remote failure, verification failure or a timed out call.
type BackendErr struct {
	messageCause
}

func NewBackendErr(msg string, cause error) *BackendErr {
	return &BackendErr{messageCause: messageCause{Msg: msg, Err: cause}}
}

func (e *BackendErr) Error() string          { return formatError(backendCode, e.Msg, e.Err) }
func (e *BackendErr) Code() string           { return backendCode }
func (e *BackendErr) ErrorCode() int         { return RPCCodeServerError }
func (e *BackendErr) ErrorData() interface{} { return backendCode }

type IndexOutOfRangeErr struct {
	messageCause
	Index  uint64
	Length int
}

func NewIndexOutOfRangeErr(index uint64, length int) *IndexOutOfRangeErr {
	return &IndexOutOfRangeErr{
		messageCause: messageCause{Msg: "index out of range"},
		Index:        index,
		Length:       length,
	}
}

func (e *IndexOutOfRangeErr) Error() string {
	return formatError(indexOutOfRangeCode, fmt.Sprintf("%s: index %d, length %d", e.Msg, e.Index, e.Length), nil)
}
func (e *IndexOutOfRangeErr) Code() string           { return indexOutOfRangeCode }
func (e *IndexOutOfRangeErr) ErrorCode() int         { return RPCCodeInvalidParams }
func (e *IndexOutOfRangeErr) ErrorData() interface{} { return indexOutOfRangeCode }
