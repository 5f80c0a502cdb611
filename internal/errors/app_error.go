package errors

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string
	Message    string
	Details    []string
	StatusCode int
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetails(details ...string) *AppError {
	e.Details = append(e.Details, details...)

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeBadRequest     = "BAD_REQUEST"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeAuthorization  = "AUTHORIZATION_ERROR"
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeDatabaseError  = "DATABASE_ERROR"
	ErrCodeDuplicateEntry = "DUPLICATE_ENTRY"
	ErrCodeConflict       = "CONFLICT"
	ErrCodeCSVFormat      = "CSV_FORMAT_ERROR"
	ErrCodeCSVSize        = "CSV_SIZE_ERROR"
	ErrCodeCSVSchema      = "CSV_SCHEMA_ERROR"
	ErrCodeRowValidation  = "ROW_VALIDATION_ERROR"
	ErrCodeSubmission     = "SUBMISSION_ERROR"
	ErrCodeStorageError   = "STORAGE_ERROR"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

// AuthorizationError is produced by the cart when the actor is not an
// authenticated buyer. It is always recoverable; the client should surface a
// sign-in prompt.
func AuthorizationError(message string) *AppError {
	return NewAppError(ErrCodeAuthorization, message, http.StatusForbidden)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DatabaseError(message string) *AppError {
	return NewAppError(ErrCodeDatabaseError, message, http.StatusInternalServerError)
}

func DuplicateEntryError(message string) *AppError {
	return NewAppError(ErrCodeDuplicateEntry, message, http.StatusConflict)
}

// ConflictError guards operations that must not run concurrently, such as a
// bulk submission that is already in flight.
func ConflictError(message string) *AppError {
	return NewAppError(ErrCodeConflict, message, http.StatusConflict)
}

// CSV file rejections, raised before any row is parsed.

func CSVFormatError(message string) *AppError {
	return NewAppError(ErrCodeCSVFormat, message, http.StatusBadRequest)
}

func CSVSizeError(message string) *AppError {
	return NewAppError(ErrCodeCSVSize, message, http.StatusBadRequest)
}

func CSVSchemaError(message string) *AppError {
	return NewAppError(ErrCodeCSVSchema, message, http.StatusBadRequest)
}

// RowValidationError aggregates every field-level problem found in the review
// step; submission stays blocked until all of them are fixed.
func RowValidationError(message string) *AppError {
	return NewAppError(ErrCodeRowValidation, message, http.StatusUnprocessableEntity)
}

// SubmissionError reports a batch insert the backend rejected; candidate rows
// are preserved for correction.
func SubmissionError(message string) *AppError {
	return NewAppError(ErrCodeSubmission, message, http.StatusBadGateway)
}

func StorageError(message string) *AppError {
	return NewAppError(ErrCodeStorageError, message, http.StatusInternalServerError)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason))
}
