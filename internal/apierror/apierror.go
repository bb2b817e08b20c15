// Package apierror provides the error taxonomy shared by services and handlers.
// Services return *Error values carrying a machine-readable Kind; handlers map
// them to the JSON envelope without leaking internal causes.
package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Kind is the machine-readable error category.
type Kind string

const (
	KindValidation                 Kind = "validation"
	KindInvalidItem                Kind = "invalid_item"
	KindInsufficientStock          Kind = "insufficient_stock"
	KindInvalidAmount              Kind = "invalid_amount"
	KindNoOpenRegister             Kind = "no_open_register"
	KindWithdrawalExceedsAvailable Kind = "withdrawal_exceeds_available"
	KindNotFound                   Kind = "not_found"
	KindConflict                   Kind = "conflict"
	KindPersistenceFailure         Kind = "persistence_failure"
	KindPersistenceTimeout         Kind = "persistence_timeout"
	KindUnauthorized               Kind = "unauthorized"
	KindTooManyAttempts            Kind = "too_many_attempts"
	KindInternal                   Kind = "internal"
)

// Error is a domain error. Fields holds the context a UI needs to render a
// specific message (field name, amount, category...).
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]any
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// With adds a context field.
func (e *Error) With(key string, value any) *Error {
	if e.Fields == nil {
		e.Fields = make(map[string]any)
	}
	e.Fields[key] = value
	return e
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Message: msg}
}

// Validation reports malformed input on field.
func Validation(field, msg string) *Error {
	return newError(KindValidation, msg).With("field", field)
}

// InvalidItem reports a malformed sale line. index is zero-based.
func InvalidItem(index int, field, msg string) *Error {
	return newError(KindInvalidItem, fmt.Sprintf("item %d: %s", index+1, msg)).
		With("item", index).
		With("field", field)
}

// InsufficientStock reports that nombre (a product or a category) cannot
// cover the requested quantity.
func InsufficientStock(nombre string, solicitado, disponible int) *Error {
	return newError(KindInsufficientStock, fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d", nombre, solicitado, disponible)).
		With("nombre", nombre).
		With("solicitado", solicitado).
		With("disponible", disponible)
}

// InvalidAmount reports a non-positive or non-finite amount.
func InvalidAmount(field string, monto any) *Error {
	return newError(KindInvalidAmount, "el monto debe ser mayor a cero").
		With("field", field).
		With("monto", monto)
}

// NoOpenRegister is returned by caja operations that need an open session.
func NoOpenRegister() *Error {
	return newError(KindNoOpenRegister, "no hay una caja abierta")
}

// WithdrawalExceedsAvailable reports a retiro larger than the expected cash.
func WithdrawalExceedsAvailable(solicitado, disponible fmt.Stringer) *Error {
	return newError(KindWithdrawalExceedsAvailable, fmt.Sprintf("el retiro (%s) supera el efectivo disponible (%s)", solicitado, disponible)).
		With("solicitado", solicitado.String()).
		With("disponible", disponible.String())
}

// NotFound reports a missing entity.
func NotFound(entidad string, id any) *Error {
	return newError(KindNotFound, fmt.Sprintf("%s no encontrado", entidad)).
		With("entidad", entidad).
		With("id", id)
}

// Conflict reports an operation invalid for the current state.
func Conflict(msg string) *Error {
	return newError(KindConflict, msg)
}

// Unauthorized reports failed credentials or a bad token.
func Unauthorized(msg string) *Error {
	return newError(KindUnauthorized, msg)
}

// TooManyAttempts reports a locked gate.
func TooManyAttempts(area string, segundos int) *Error {
	return newError(KindTooManyAttempts, fmt.Sprintf("demasiados intentos, espere %d segundos", segundos)).
		With("area", area).
		With("segundos", segundos)
}

// Persistence wraps a store failure. Deadline errors become persistence_timeout.
func Persistence(op string, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindPersistenceTimeout, Message: "tiempo de espera agotado al " + op, Err: err}
	}
	return &Error{Kind: KindPersistenceFailure, Message: "error de almacenamiento al " + op, Err: err}
}

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries kind.
func Is(err error, kind Kind) bool { return KindOf(err) == kind }

// HTTPStatus maps a Kind to its response status.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindInvalidItem, KindInvalidAmount:
		return http.StatusBadRequest
	case KindInsufficientStock, KindNoOpenRegister, KindWithdrawalExceedsAvailable:
		return http.StatusUnprocessableEntity
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindTooManyAttempts:
		return http.StatusTooManyRequests
	case KindPersistenceFailure:
		return http.StatusServiceUnavailable
	case KindPersistenceTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string         `json:"detail"`
	Kind   Kind           `json:"kind,omitempty"`
	Fields map[string]any `json:"fields,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// FromError builds the envelope for err. Foreign errors get a generic message.
func FromError(err error) *APIError {
	var e *Error
	if !errors.As(err, &e) {
		return &APIError{Detail: "Error interno del servidor", Kind: KindInternal}
	}
	return &APIError{Detail: e.Message, Kind: e.Kind, Fields: e.Fields}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Kind   Kind              `json:"kind"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Kind: KindValidation, Fields: fields}
}
