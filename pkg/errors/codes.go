package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common Error Codes
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeValidation         ErrorCode = "COMMON_003"
	ErrCodeSerialization      ErrorCode = "COMMON_004"
	ErrCodeNotFound           ErrorCode = "COMMON_005"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_006"
	ErrCodeTimeout            ErrorCode = "COMMON_007"
	ErrCodeNotImplemented     ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_011"
	ErrCodeStorageError       ErrorCode = "COMMON_012"
	ErrCodeMessagingError     ErrorCode = "COMMON_013"
	ErrCodeExternalService    ErrorCode = "COMMON_014"
	ErrCodeIngestion          ErrorCode = "COMMON_015"
	ErrCodeDatabaseError      ErrorCode = "COMMON_016"
)

// Risk pipeline error codes
const (
	ErrCodeClusteringFailed ErrorCode = "RISK_001"
	ErrCodeForestFitFailed  ErrorCode = "RISK_002"
	ErrCodeFeatureMismatch  ErrorCode = "RISK_003"
)

// Knowledge graph error codes
const (
	ErrCodeGraphNodeNotFound ErrorCode = "GRAPH_001"
	ErrCodeGraphRenderFailed ErrorCode = "GRAPH_002"
)

// Aliases used at call sites.
const (
	CodeOK             = ErrorCode("OK")
	CodeUnknown        = ErrorCode("UNKNOWN")
	CodeInternal       = ErrCodeInternal
	CodeInvalidParam   = ErrCodeBadRequest
	CodeValidation     = ErrCodeValidation
	CodeNotFound       = ErrCodeNotFound
	CodeUnavailable    = ErrCodeServiceUnavailable
	CodeUpstream       = ErrCodeExternalService
	CodeIngestion      = ErrCodeIngestion
	CodeNotImplemented = ErrCodeNotImplemented
)

// ErrorCodeHTTPStatus maps ErrorCodes to HTTP status codes.
var ErrorCodeHTTPStatus = map[ErrorCode]int{
	CodeOK:                    http.StatusOK,
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeSerialization:      http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeNotImplemented:     http.StatusNotImplemented,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusBadGateway,
	ErrCodeMessagingError:     http.StatusInternalServerError,
	ErrCodeExternalService:    http.StatusBadGateway,
	ErrCodeIngestion:          http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,

	ErrCodeClusteringFailed: http.StatusInternalServerError,
	ErrCodeForestFitFailed:  http.StatusInternalServerError,
	ErrCodeFeatureMismatch:  http.StatusBadRequest,

	ErrCodeGraphNodeNotFound: http.StatusNotFound,
	ErrCodeGraphRenderFailed: http.StatusInternalServerError,
}

var defaultMessages = map[ErrorCode]string{
	ErrCodeInternal:           "internal server error",
	ErrCodeBadRequest:         "bad request",
	ErrCodeValidation:         "validation failed",
	ErrCodeNotFound:           "resource not found",
	ErrCodeServiceUnavailable: "service unavailable",
	ErrCodeExternalService:    "upstream service failure",
	ErrCodeIngestion:          "dataset ingestion failed",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns a caller-safe message for code.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := defaultMessages[code]; ok {
		return msg
	}
	return defaultMessages[ErrCodeInternal]
}

// IsClientError reports whether code maps to a 4xx status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether code maps to a 5xx status.
func IsServerError(code ErrorCode) bool {
	return HTTPStatusForCode(code) >= 500
}

// ModuleForCode returns the prefix of code, e.g. "RISK" for "RISK_001".
func ModuleForCode(code ErrorCode) string {
	s := string(code)
	if i := strings.IndexByte(s, '_'); i > 0 {
		return s[:i]
	}
	return s
}
