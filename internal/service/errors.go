package service

import (
	"fmt"
	"strings"
)

// ValidationError reports malformed input. It is raised before the store is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// blankToNil maps an empty (or whitespace) optional string to NULL.
func blankToNil(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}

// trimRequired validates an optional replacement for a required text field.
func trimRequired(field string, v *string) (*string, error) {
	if v == nil {
		return nil, nil
	}
	if err := requireText(field, *v); err != nil {
		return nil, err
	}
	t := strings.TrimSpace(*v)
	return &t, nil
}
