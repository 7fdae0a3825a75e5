// Package errors define el error estándar de la capa HTTP y su mapeo a
// respuestas JSON.
package errors

import (
	"fmt"
	"net/http"
)

// AppError es la estructura estándar de error de la aplicación.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // causa original, solo para logs
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

// New crea un AppError.
func New(status int, code, message string) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status}
}

// FromError convierte un error genérico en AppError; si no lo es,
// retorna un error interno conservando la causa.
func FromError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return ErrInternalServerError.WithCause(err)
}

// WithDetail retorna una COPIA con detalle extra (no muta los errores base).
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithCause retorna una COPIA con la causa original adjunta.
func (e *AppError) WithCause(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// Errores base.
var (
	ErrBadRequest          = New(http.StatusBadRequest, "bad_request", "invalid request")
	ErrInvalidJSON         = New(http.StatusBadRequest, "invalid_json", "request body is not valid JSON")
	ErrUnauthorized        = New(http.StatusUnauthorized, "unauthorized", "authentication required")
	ErrNotFound            = New(http.StatusNotFound, "not_found", "resource not found")
	ErrConflict            = New(http.StatusConflict, "conflict", "resource already exists")
	ErrMethodNotAllowed    = New(http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
	ErrTooManyRequests     = New(http.StatusTooManyRequests, "rate_limited", "too many requests")
	ErrUnsupportedProvider = New(http.StatusBadRequest, "unsupported_provider", "unknown identity provider")
	ErrProviderUnavailable = New(http.StatusBadGateway, "provider_unavailable", "identity provider request failed")
	ErrInternalServerError = New(http.StatusInternalServerError, "internal_error", "internal server error")
)
