package errors

import "fmt"

const (
	UnauthorizedMessage      = "Unauthorized"
	ForbiddenMessage         = "Forbidden"
	NotFoundMessage          = "Not found"
	ServerErrorMessage       = "Something went wrong :("
	InvalidCredentials       = "Invalid email or password"
	InvalidRequestFormat     = "Invalid request format"
	UnrecognizedRefreshToken = "Unrecognized refresh token"
	UnrecognizedActionToken  = "Unrecognized action token"
)

type sentinelError string

func (e sentinelError) Error() string { return string(e) }

const (
	// ErrUnauthorized means no actor identity could be established for the
	// request: missing, malformed, expired or wrong-purpose token, or bad
	// local credentials.
	ErrUnauthorized = sentinelError("unauthorized")

	// ErrForbidden means the actor is known but lacks the rights for the
	// specific resource and operation.
	ErrForbidden = sentinelError("forbidden")

	// ErrNotFound means a referenced resource does not exist.
	ErrNotFound = sentinelError("not found")
)

type FieldError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Path    string `json:"path"`
}

// ValidationError carries per-field failures surfaced as a 422 at the
// HTTP boundary.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return e.Errors[0].Message
}

func NewValidationError(fields ...FieldError) *ValidationError {
	return &ValidationError{Errors: fields}
}

func Required(path string) FieldError {
	return FieldError{
		Message: fmt.Sprintf("Path `%s` is required.", path),
		Type:    "required",
		Path:    path,
	}
}

func Unique(path string) FieldError {
	return FieldError{
		Message: fmt.Sprintf("Path `%s` must be unique.", path),
		Type:    "unique",
		Path:    path,
	}
}
