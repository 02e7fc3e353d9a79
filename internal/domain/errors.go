package domain

import (
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("missing api credential")
	ErrMalformedResponse = errors.New("malformed model response")
	ErrSessionNotFound   = errors.New("session not found")
	ErrTemplateNotFound  = errors.New("prompt template not found")
	ErrValidation        = errors.New("validation error")
)

// GatewayError representa una respuesta no-2xx de la API remota.
type GatewayError struct {
	StatusCode int
	RawBody    string
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway error: status=%d", e.StatusCode)
}

// ValidationError agrega el campo inválido; errors.Is(err, ErrValidation) sigue funcionando.
func ValidationError(field, reason string) error {
	return fmt.Errorf("%w: %s %s", ErrValidation, field, reason)
}
