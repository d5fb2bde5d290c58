package errors

import "fmt"

// ErrorType classifies a crawl failure
type ErrorType string

const (
	ErrorTypeNetwork      ErrorType = "network"
	ErrorTypePrivate      ErrorType = "private"
	ErrorTypeNotFound     ErrorType = "not_found"
	ErrorTypeUnresolvable ErrorType = "unresolvable"
	ErrorTypeGone         ErrorType = "gone"
	ErrorTypeServerError  ErrorType = "server_error"
	ErrorTypeEmptyFile    ErrorType = "empty_file"
	ErrorTypeDecode       ErrorType = "decode"
	ErrorTypeParsing      ErrorType = "parsing"
	ErrorTypeUnknown      ErrorType = "unknown"
)

// Error represents a crawl error with type information
type Error struct {
	Type    ErrorType
	Message string
	Code    int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s error (code %d): %s", e.Type, e.Code, e.Message)
}

// IsRetryable checks if an error type should be retried.
// Private and not-found photos are permanent, a gone size never comes
// back, and an unparseable page will not change between attempts.
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeNetwork, ErrorTypeServerError, ErrorTypeEmptyFile, ErrorTypeDecode:
		return true
	case ErrorTypePrivate, ErrorTypeNotFound, ErrorTypeUnresolvable, ErrorTypeGone, ErrorTypeParsing:
		return false
	default:
		return false
	}
}

// IsRetryableStatusCode checks if an HTTP status code indicates a retryable error
func IsRetryableStatusCode(statusCode int) bool {
	switch statusCode {
	case 0: // Network error
		return true
	case 429: // Too Many Requests
		return true
	case 500, 502, 503, 504: // Server errors
		return true
	case 404, 410: // Permanent client errors
		return false
	default:
		return statusCode >= 500 // Retry all 5xx errors
	}
}
