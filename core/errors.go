package core

import (
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	AuthErrorInvalidToken        = "AUTH_INVALID_TOKEN"
	AuthErrorTokenRevoked        = "AUTH_TOKEN_REVOKED"
	AuthErrorTokenExpired        = "AUTH_TOKEN_EXPIRED"
	AuthErrorTokenMismatch       = "AUTH_TOKEN_MISMATCH"
	AuthErrorUserNotFound        = "USER_NOT_FOUND"
	AuthErrorSignatureInvalid    = "AUTH_SIGNATURE_INVALID"
	AuthErrorTokenMalformed      = "AUTH_TOKEN_MALFORMED"
	AuthErrorTokenUnsupported    = "AUTH_TOKEN_UNSUPPORTED"
	AuthErrorClaimsEmpty         = "AUTH_CLAIMS_EMPTY"
	AuthErrorStoreConflict       = "AUTH_STORE_CONFLICT"
	AuthErrorMissingField        = "AUTH_MISSING_FIELD"
	AuthErrorProviderUnsupported = "AUTH_PROVIDER_UNSUPPORTED"
	AuthErrorInternal            = "AUTH_INTERNAL_ERROR"
)

// authErrorMapper normalizes any failure crossing the engine boundary into a
// goerrors envelope carrying a category, a text code, and an HTTP status.
// Store uniqueness violations become conflicts so concurrent duplicate
// federations fail cleanly instead of as opaque driver errors.
func authErrorMapper(err error) *goerrors.Error {
	if err == nil {
		return nil
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return ensureAuthErrorEnvelope(richErr)
	}

	if isUniqueViolation(err) {
		return newAuthError(err.Error(), goerrors.CategoryConflict, AuthErrorStoreConflict)
	}

	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())
	return ensureAuthErrorEnvelope(mapped)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique violation")
}

func newAuthError(message string, category goerrors.Category, textCode string) *goerrors.Error {
	return ensureAuthErrorEnvelope(
		goerrors.New(message, category).
			WithTextCode(textCode),
	)
}

func ensureAuthErrorEnvelope(err *goerrors.Error) *goerrors.Error {
	if err == nil {
		return nil
	}
	if err.Code == 0 {
		err.Code = authHTTPStatus(err.Category)
	}
	if strings.TrimSpace(err.TextCode) == "" {
		err.TextCode = defaultAuthTextCode(err.Category)
	}
	if err.Category == goerrors.CategoryInternal && strings.TrimSpace(err.Message) == "" {
		err.Message = "An unexpected error occurred"
	}
	return err
}

func defaultAuthTextCode(category goerrors.Category) string {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return AuthErrorMissingField
	case goerrors.CategoryNotFound:
		return AuthErrorUserNotFound
	case goerrors.CategoryAuth, goerrors.CategoryAuthz:
		return AuthErrorInvalidToken
	case goerrors.CategoryConflict:
		return AuthErrorStoreConflict
	default:
		return AuthErrorInternal
	}
}

func authHTTPStatus(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryBadInput, goerrors.CategoryValidation:
		return http.StatusBadRequest
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryAuth:
		return http.StatusUnauthorized
	case goerrors.CategoryAuthz:
		return http.StatusForbidden
	case goerrors.CategoryConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// ErrorTextCode extracts the envelope text code, or "" for plain errors.
func ErrorTextCode(err error) string {
	if err == nil {
		return ""
	}
	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return ""
	}
	return richErr.TextCode
}

// HasErrorCode reports whether err carries the given envelope text code.
func HasErrorCode(err error, textCode string) bool {
	return ErrorTextCode(err) == textCode
}

// NewMissingFieldError reports a required attribute absent from a provider
// payload. Used by profile extractors; bad input rather than an auth failure
// because the payload has already been verified upstream.
func NewMissingFieldError(provider AuthProvider, field string) *goerrors.Error {
	return goerrors.New(
		"provider "+string(provider)+" payload is missing required field "+field,
		goerrors.CategoryBadInput,
	).
		WithTextCode(AuthErrorMissingField).
		WithCode(http.StatusBadRequest).
		WithMetadata(map[string]any{"provider": string(provider), "field": field})
}

// NewStoreConflictError wraps a store uniqueness violation.
func NewStoreConflictError(err error) *goerrors.Error {
	message := "store uniqueness constraint violated"
	if err != nil {
		message = err.Error()
	}
	return newAuthError(message, goerrors.CategoryConflict, AuthErrorStoreConflict)
}
