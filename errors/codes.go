package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Endpoint wiring errors, signaled through a handler's next function.
const (
	// ErrCodeServiceInvalid indicates the service owning an endpoint failed construction.
	ErrCodeServiceInvalid ErrorCode = "SERVICE_INVALID"
	// ErrCodeRendererInvalid indicates the renderer registered for an endpoint is invalid.
	ErrCodeRendererInvalid ErrorCode = "RENDERER_INVALID"
	// ErrCodeServerAppChunkInvalid indicates a self-registering app chunk is invalid.
	ErrCodeServerAppChunkInvalid ErrorCode = "SERVER_APP_CHUNK_INVALID"
)

// Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client exceeded its request rate.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Request errors
const (
	// ErrCodeNotFound indicates the requested resource was not found.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeMethodNotAllowed indicates the route exists but not for this verb.
	ErrCodeMethodNotAllowed ErrorCode = "METHOD_NOT_ALLOWED"
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal server error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
