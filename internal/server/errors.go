package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/db"
	"github.com/kushagrajajodiauk-source/AI-recruiter/internal/schemas"
)

// ErrForbidden indicates an agent acting on another agent's mailbox
type ErrForbidden struct {
	Agent     string
	MessageID string
}

func (e *ErrForbidden) Error() string {
	return fmt.Sprintf("message %s is not addressed to %s", e.MessageID, e.Agent)
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		forbidden *ErrForbidden
		invalid   *ErrValidation
		input     *db.InputError
		schema    *schemas.ValidationError
	)
	switch {
	case errors.Is(err, db.ErrNotFound):
		return http.StatusNotFound
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &invalid), errors.As(err, &input), errors.As(err, &schema):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
