package transport

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-appstore/core"
)

func transportError(message string, category goerrors.Category, code int, textCode string, metadata map[string]any) error {
	err := goerrors.New(message, category).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

func transportWrapError(source error, category goerrors.Category, message string, code int, textCode string, metadata map[string]any) error {
	if source == nil {
		return transportError(message, category, code, textCode, metadata)
	}
	err := goerrors.Wrap(source, category, message).
		WithCode(code).
		WithTextCode(textCode)
	if len(metadata) > 0 {
		err.WithMetadata(metadata)
	}
	return err
}

// classifyResponse turns a non-success API response into a taxonomy error.
// Field-level complaints from the API errors array become validation field
// errors.
func classifyResponse(status int, doc core.Document, metadata map[string]any) error {
	message := errorMessage(doc)
	category := core.ErrorStatusCategory(status)
	textCode := core.ErrorStatusTextCode(status)

	if textCode == core.AppStoreErrorValidation {
		if fields := fieldErrors(doc); len(fields) > 0 {
			err := goerrors.NewValidation("transport: "+message, fields...).
				WithCode(status).
				WithTextCode(textCode)
			if len(metadata) > 0 {
				err.WithMetadata(metadata)
			}
			return err
		}
	}
	return transportError("transport: "+message, category, status, textCode, metadata)
}

// errorMessage extracts the most specific message the API supplied.
func errorMessage(doc core.Document) string {
	for _, apiErr := range doc.Errors {
		if detail := strings.TrimSpace(apiErr.Detail); detail != "" {
			return detail
		}
		if title := strings.TrimSpace(apiErr.Title); title != "" {
			return title
		}
	}
	return "request failed"
}

func fieldErrors(doc core.Document) []goerrors.FieldError {
	fields := make([]goerrors.FieldError, 0, len(doc.Errors))
	for _, apiErr := range doc.Errors {
		if apiErr.Source == nil {
			continue
		}
		field := strings.TrimSpace(apiErr.Source.Pointer)
		if field == "" {
			field = strings.TrimSpace(apiErr.Source.Parameter)
		}
		if field == "" {
			continue
		}
		message := strings.TrimSpace(apiErr.Detail)
		if message == "" {
			message = strings.TrimSpace(apiErr.Title)
		}
		fields = append(fields, goerrors.FieldError{Field: field, Message: message})
	}
	return fields
}
