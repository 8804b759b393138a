package apperr

// BaseError defines the interface for application-specific errors.
//
// Every BaseError also satisfies the go-ethereum rpc.Error and rpc.DataError
// contracts, so the JSON-RPC server renders it as a structured error object
// with a numeric code and the string code as data.
type BaseError interface {
	error
	Code() string
	Message() string
	Cause() error
	ErrorCode() int
	ErrorData() interface{}
}

// JSON-RPC error codes.
const (
	RPCCodeServerError   = -32000
	RPCCodeNotFound      = -32001
	RPCCodeInvalidParams = -32602
	RPCCodeInternalError = -32603
)
