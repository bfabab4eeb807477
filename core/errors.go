package core

import (
	"context"
	"errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	AppStoreErrorAuth        = "APPSTORE_AUTH_FAILED"
	AppStoreErrorValidation  = "APPSTORE_VALIDATION_FAILED"
	AppStoreErrorNotFound    = "APPSTORE_NOT_FOUND"
	AppStoreErrorConflict    = "APPSTORE_CONFLICT"
	AppStoreErrorRateLimited = "APPSTORE_RATE_LIMITED"
	AppStoreErrorServer      = "APPSTORE_SERVER_ERROR"
	AppStoreErrorTransport   = "APPSTORE_TRANSPORT_FAILED"
	AppStoreErrorNotEditable = "APPSTORE_NOT_EDITABLE"
	AppStoreErrorCancelled   = "APPSTORE_CANCELLED"
	AppStoreErrorBadInput    = "APPSTORE_BAD_INPUT"
	AppStoreErrorInternal    = "APPSTORE_INTERNAL_ERROR"
)

func NewAuthError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryAuth).
		WithCode(http.StatusUnauthorized).
		WithTextCode(AppStoreErrorAuth)
}

func WrapAuthError(source error, message string) *goerrors.Error {
	if source == nil {
		return NewAuthError(message)
	}
	return goerrors.Wrap(source, goerrors.CategoryAuth, message).
		WithCode(http.StatusUnauthorized).
		WithTextCode(AppStoreErrorAuth)
}

func NewBadInputError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(AppStoreErrorBadInput)
}

func NewNotEditableError(appID string) *goerrors.Error {
	return goerrors.New("core: app has no editable app info container", goerrors.CategoryConflict).
		WithCode(http.StatusConflict).
		WithTextCode(AppStoreErrorNotEditable).
		WithMetadata(map[string]any{"app_id": strings.TrimSpace(appID)})
}

func NewCancelledError(source error) *goerrors.Error {
	if source == nil {
		source = context.Canceled
	}
	return goerrors.Wrap(source, goerrors.CategoryOperation, "core: operation cancelled").
		WithCode(http.StatusRequestTimeout).
		WithTextCode(AppStoreErrorCancelled)
}

func NewInternalError(message string) *goerrors.Error {
	return goerrors.New(message, goerrors.CategoryInternal).
		WithCode(http.StatusInternalServerError).
		WithTextCode(AppStoreErrorInternal)
}

// TextCode extracts the taxonomy code from any error in the chain.
func TextCode(err error) string {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return strings.TrimSpace(richErr.TextCode)
	}
	return ""
}

func IsAuthError(err error) bool {
	return TextCode(err) == AppStoreErrorAuth
}

func IsValidationError(err error) bool {
	return TextCode(err) == AppStoreErrorValidation
}

func IsNotFound(err error) bool {
	return TextCode(err) == AppStoreErrorNotFound
}

func IsRateLimited(err error) bool {
	return TextCode(err) == AppStoreErrorRateLimited
}

func IsServerError(err error) bool {
	return TextCode(err) == AppStoreErrorServer
}

func IsTransportError(err error) bool {
	return TextCode(err) == AppStoreErrorTransport
}

func IsNotEditable(err error) bool {
	return TextCode(err) == AppStoreErrorNotEditable
}

func IsCancelled(err error) bool {
	if err == nil {
		return false
	}
	if TextCode(err) == AppStoreErrorCancelled {
		return true
	}
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ErrorStatusTextCode maps an HTTP response status to the taxonomy code the
// transport attaches to classified errors.
func ErrorStatusTextCode(status int) string {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return AppStoreErrorAuth
	case status == http.StatusNotFound:
		return AppStoreErrorNotFound
	case status == http.StatusConflict:
		return AppStoreErrorConflict
	case status == http.StatusTooManyRequests:
		return AppStoreErrorRateLimited
	case status >= 500:
		return AppStoreErrorServer
	case status >= 400:
		return AppStoreErrorValidation
	default:
		return AppStoreErrorInternal
	}
}

// ErrorStatusCategory mirrors ErrorStatusTextCode on the go-errors category
// axis.
func ErrorStatusCategory(status int) goerrors.Category {
	switch {
	case status == http.StatusUnauthorized:
		return goerrors.CategoryAuth
	case status == http.StatusForbidden:
		return goerrors.CategoryAuthz
	case status == http.StatusNotFound:
		return goerrors.CategoryNotFound
	case status == http.StatusConflict:
		return goerrors.CategoryConflict
	case status == http.StatusTooManyRequests:
		return goerrors.CategoryRateLimit
	case status >= 500:
		return goerrors.CategoryExternal
	case status >= 400:
		return goerrors.CategoryValidation
	default:
		return goerrors.CategoryInternal
	}
}
