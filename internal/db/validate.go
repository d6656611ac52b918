package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// InputError reports which fields of a create input failed validation.
type InputError struct {
	Entity string
	Fields []string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s input: %s", e.Entity, strings.Join(e.Fields, ", "))
}

func validateInput(entity string, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate %s input: %w", entity, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
	}
	return &InputError{Entity: entity, Fields: fields}
}
