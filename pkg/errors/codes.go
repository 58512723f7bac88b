package errors

import "net/http"

// ErrorCode is a string identifier for a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Sentinel codes.
const (
	CodeOK      ErrorCode = "OK"
	CodeUnknown ErrorCode = "UNKNOWN"
)

// Common error codes.
const (
	CodeInternal           ErrorCode = "COMMON_001"
	CodeBadRequest         ErrorCode = "COMMON_002"
	CodeNotFound           ErrorCode = "COMMON_003"
	CodeConflict           ErrorCode = "COMMON_004"
	CodeValidation         ErrorCode = "COMMON_005"
	CodeSerialization      ErrorCode = "COMMON_006"
	CodeCacheError         ErrorCode = "COMMON_007"
	CodeEventPublishError  ErrorCode = "COMMON_008"
	CodeServiceUnavailable ErrorCode = "COMMON_009"
)

// Dataset / assessment error codes.
const (
	CodeDatasetEmpty          ErrorCode = "DATA_001"
	CodeDuplicateSubzone      ErrorCode = "DATA_002"
	CodeEmptySubzoneID        ErrorCode = "DATA_003"
	CodeTooManyFeatures       ErrorCode = "DATA_004"
	CodeNonBinaryQualitative  ErrorCode = "DATA_005"
	CodeUnknownDataType       ErrorCode = "DATA_006"
	CodeUnknownClassification ErrorCode = "DATA_007"
)

// Component store error codes.
const (
	CodeComponentNotFound    ErrorCode = "COMP_001"
	CodeComponentNameEmpty   ErrorCode = "COMP_002"
	CodeComponentNoResults   ErrorCode = "COMP_003"
	CodeAggregationTooFewECs ErrorCode = "COMP_004"
)

// HTTPStatus maps error codes to HTTP status codes.  Codes not present map
// to 500.
var HTTPStatus = map[ErrorCode]int{
	CodeInternal:           http.StatusInternalServerError,
	CodeBadRequest:         http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeValidation:         http.StatusUnprocessableEntity,
	CodeSerialization:      http.StatusInternalServerError,
	CodeCacheError:         http.StatusInternalServerError,
	CodeEventPublishError:  http.StatusInternalServerError,
	CodeServiceUnavailable: http.StatusServiceUnavailable,

	CodeDatasetEmpty:          http.StatusUnprocessableEntity,
	CodeDuplicateSubzone:      http.StatusUnprocessableEntity,
	CodeEmptySubzoneID:        http.StatusUnprocessableEntity,
	CodeTooManyFeatures:       http.StatusUnprocessableEntity,
	CodeNonBinaryQualitative:  http.StatusUnprocessableEntity,
	CodeUnknownDataType:       http.StatusBadRequest,
	CodeUnknownClassification: http.StatusBadRequest,

	CodeComponentNotFound:    http.StatusNotFound,
	CodeComponentNameEmpty:   http.StatusBadRequest,
	CodeComponentNoResults:   http.StatusConflict,
	CodeAggregationTooFewECs: http.StatusConflict,
}

// StatusFor returns the HTTP status for the first AppError code in err's
// chain, or 500 when no mapping exists.
func StatusFor(err error) int {
	if status, ok := HTTPStatus[GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
