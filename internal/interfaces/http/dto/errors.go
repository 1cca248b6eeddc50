package dto

import (
	"net/http"
	"strings"
)

// API error codes. Domain errors carrying one of the generic codes
// (NOT_FOUND, INVALID_STATE, ...) are sent with the matching ERR_* code;
// specific domain codes such as CLASS_FULL keep their own name.
const (
	ErrCodeInternal        = "ERR_INTERNAL"
	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodePayloadTooLarge = "ERR_PAYLOAD_TOO_LARGE"

	ErrCodeUnauthorized       = "ERR_UNAUTHORIZED"
	ErrCodeForbidden          = "ERR_FORBIDDEN"
	ErrCodeTokenExpired       = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid       = "ERR_TOKEN_INVALID"
	ErrCodeInvalidCredentials = "ERR_INVALID_CREDENTIALS"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"
	ErrCodeInvalidState  = "ERR_INVALID_STATE"
)

var genericCodes = map[string]string{
	"NOT_FOUND":           ErrCodeNotFound,
	"ALREADY_EXISTS":      ErrCodeAlreadyExists,
	"INVALID_INPUT":       ErrCodeInvalidInput,
	"INVALID_STATE":       ErrCodeInvalidState,
	"INVALID_CREDENTIALS": ErrCodeInvalidCredentials,
	"UNAUTHORIZED":        ErrCodeUnauthorized,
	"FORBIDDEN":           ErrCodeForbidden,
	"INTERNAL_ERROR":      ErrCodeInternal,
}

var statusByCode = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodePayloadTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized:       http.StatusUnauthorized,
	ErrCodeForbidden:          http.StatusForbidden,
	ErrCodeTokenExpired:       http.StatusUnauthorized,
	ErrCodeTokenInvalid:       http.StatusUnauthorized,
	ErrCodeInvalidCredentials: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,

	"ACCOUNT_INACTIVE":     http.StatusUnauthorized,
	"CLASS_FULL":           http.StatusUnprocessableEntity,
	"CLASS_NOT_OPEN":       http.StatusUnprocessableEntity,
	"RENTABLE_UNAVAILABLE": http.StatusUnprocessableEntity,
	"BUYABLE_INACTIVE":     http.StatusUnprocessableEntity,
	"JOB_RUNNING":          http.StatusConflict,
	"DOCUMENT_TOO_LARGE":   http.StatusRequestEntityTooLarge,
	"EMPTY_DOCUMENT":       http.StatusBadRequest,
}

// NormalizeErrorCode maps a generic domain code to its ERR_* form and
// returns any other code unchanged
func NormalizeErrorCode(code string) string {
	if c, ok := genericCodes[code]; ok {
		return c
	}
	return code
}

// HTTPStatus returns the status for a (normalized) code. Unlisted domain
// codes follow their naming: INVALID_* and MISSING_* are 400, *_TAKEN and
// *_EXISTS are 409, anything else is 500.
func HTTPStatus(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"), strings.HasPrefix(code, "MISSING_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_TAKEN"), strings.HasSuffix(code, "_EXISTS"):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
