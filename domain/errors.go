package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("authentication credentials were not provided")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
)

const (
	MsgRequired      = "This field is required."
	MsgBlank         = "This field may not be blank."
	MsgIncorrectType = "Incorrect type."
	MsgReadOnly      = "This field is read-only."
)

// ValidationError maps a field name to the messages describing why its value
// was rejected. It marshals to the response body as is.
type ValidationError map[string][]string

func (v ValidationError) Add(field, msg string) {
	v[field] = append(v[field], msg)
}

// OrNil returns nil when no field has been rejected, so callers can return
// the result directly as an error.
func (v ValidationError) OrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

func (v ValidationError) Error() string {
	fields := make([]string, 0, len(v))
	for field := range v {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(v[field], " "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func maxLengthMessage(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

func DoesNotExistMessage(id int64) string {
	return fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id)
}
