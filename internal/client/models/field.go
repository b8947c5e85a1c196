package models

import (
	"errors"
	"strings"
)

// Field is a free-form key/value pair owned by exactly one document.
type Field struct {
	ID         string
	DocumentID string
	Name       string
	Value      string
	Position   int
}

var ErrIncorrectField = errors.New("field must be name=value")

// FieldsFromStrings parses "name=value" lines. Only the first '=' splits,
// so values may contain '='.
func FieldsFromStrings(lines []string) ([]Field, error) {
	fields := make([]Field, 0, len(lines))
	for _, line := range lines {
		name, value, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, ErrIncorrectField
		}
		fields = append(fields, Field{Name: strings.TrimSpace(name), Value: strings.TrimSpace(value)})
	}
	return fields, nil
}
