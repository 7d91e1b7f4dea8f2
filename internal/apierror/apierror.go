// Package apierror holds the JSON bodies of every 4xx/5xx response. Raw Go
// errors are only written for domain rule violations; anything else stays in
// the log.
package apierror

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationError lists the failing fields of a request, keyed by JSON field
// name, with the validator tag that rejected each one.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Erro de validacao", Fields: fields}
}

// FromValidator converts the error returned by validator.Struct.
func FromValidator(err error) *ValidationError {
	fields := make(map[string]string)
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
	}
	return NewValidation(fields)
}
