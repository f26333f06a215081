package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"recipe-api/repositories"
)

var (
	// ErrNotFound covers both missing rows and rows owned by someone else.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials is returned by Authenticate for unknown users,
	// inactive users and wrong passwords alike.
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
)

// ValidationError reports rejected input field by field. Keys are the JSON
// field names, nested ones as "categorias[0].nome".
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = message
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// translate maps repository sentinels onto service errors.
func translate(op string, err error) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrNotFound
	}
	var verr *ValidationError
	if errors.As(err, &verr) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}
