package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/branesca/ferreteria-cliente/internal/domain"
)

// Error error HTTP del backend con el mensaje del servidor cuando lo hay.
// Envuelve el error de dominio que corresponde al status para que los
// llamadores puedan usar errors.Is sin mirar códigos numéricos.
type Error struct {
	Status  int
	Path    string
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: %s respondió %d: %s", e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("api: %s respondió %d", e.Path, e.Status)
}

// Unwrap mapea el status al error de dominio correspondiente.
func (e *Error) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return domain.ErrUnauthorized
	case http.StatusForbidden:
		return domain.ErrForbidden
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusConflict:
		return domain.ErrConflict
	case http.StatusBadRequest:
		return domain.ErrInvalidInput
	default:
		return nil
	}
}

// ServerMessage extrae el mensaje del servidor de un error, o el fallback
// genérico si no viene ninguno (contrato de la UI: siempre hay algo que
// mostrar).
func ServerMessage(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// newError construye el *Error leyendo el detalle del cuerpo si existe.
// El backend usa "detail" (DRF) o "error" según la vista.
func newError(status int, path string, body []byte) *Error {
	var payload struct {
		Detail string `json:"detail"`
		Err    string `json:"error"`
	}
	msg := ""
	if len(body) > 0 {
		if err := json.Unmarshal(body, &payload); err == nil {
			if payload.Detail != "" {
				msg = payload.Detail
			} else if payload.Err != "" {
				msg = payload.Err
			}
		}
	}
	return &Error{Status: status, Path: path, Message: msg}
}
