package domain

import (
	"errors"
	"fmt"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
	ErrCollaborator = errors.New("collaborator failure")
	ErrTemporary    = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

func errMissingField(field string) error {
	return fmt.Errorf("missing required field %q", field)
}

func errInvalidEnum(value string) error {
	return fmt.Errorf("unknown value %q", value)
}
