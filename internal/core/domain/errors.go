package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnauthenticated is returned when the backend answers 401. The
// caller must route to the login view and drop the persisted merchant
// selection.
var ErrUnauthenticated = errors.New("unauthenticated")

const StatusValidationError = "validation_error"

// APIError is the backend's error body: {status, message, errors}.
type APIError struct {
	Status   string          `json:"status"`
	Message  string          `json:"message"`
	Errors   []APIErrorField `json:"errors,omitempty"`
	HTTPCode int             `json:"-"`
}

type APIErrorField struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	msgs := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors {
		msgs = append(msgs, f.Message)
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(msgs, ", "))
}

func (e *APIError) IsValidation() bool {
	return e.Status == StatusValidationError
}

// Description renders the user-facing notification text, selecting the
// validation template when the backend flagged a validation error.
func (e *APIError) Description() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, f := range e.Errors {
		msgs = append(msgs, f.Message)
	}
	if len(msgs) == 0 {
		return "Validation error"
	}
	joined := strings.Join(msgs, ", ")
	if e.IsValidation() {
		return "Validation error: " + joined + "."
	}
	return "Got the following errors: " + joined + "."
}
