package errors

// ErrorCode classifies application errors for clients and logs.
type ErrorCode string

func (c ErrorCode) String() string { return string(c) }

const (
	ErrorCode_INTERNAL         ErrorCode = "INTERNAL"
	ErrorCode_INVALID_ARGUMENT ErrorCode = "INVALID_ARGUMENT"
	ErrorCode_NOT_FOUND        ErrorCode = "NOT_FOUND"
	ErrorCode_ALREADY_EXISTS   ErrorCode = "ALREADY_EXISTS"

	ErrorCode_AUTH_INVALID_TOKEN ErrorCode = "AUTH_INVALID_TOKEN"
	ErrorCode_AUTH_TOKEN_EXPIRED ErrorCode = "AUTH_TOKEN_EXPIRED"

	ErrorCode_CALL_NOT_FOUND ErrorCode = "CALL_NOT_FOUND"
	ErrorCode_CALL_ACTIVE    ErrorCode = "CALL_ACTIVE"

	ErrorCode_TRANSCRIPTS_EMPTY ErrorCode = "TRANSCRIPTS_EMPTY"
	ErrorCode_SUMMARY_FAILED    ErrorCode = "SUMMARY_FAILED"

	ErrorCode_STORAGE_FAILED ErrorCode = "STORAGE_FAILED"

	ErrorCode_DB_CONNECTION_FAILED ErrorCode = "DB_CONNECTION_FAILED"
	ErrorCode_DB_QUERY_FAILED      ErrorCode = "DB_QUERY_FAILED"
)
