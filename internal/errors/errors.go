package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// AuthError reports a failed authentication step. Credential mistakes map to
// 400 and token problems to 401; the message is shown to the user verbatim.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	return e.Message
}

var (
	// ErrMissingToken is returned when a protected route is called without a bearer token.
	ErrMissingToken = &AuthError{StatusCode: http.StatusUnauthorized, Message: "no token, authorization denied"}
	// ErrInvalidToken is returned when a token is malformed, forged or expired.
	ErrInvalidToken = &AuthError{StatusCode: http.StatusUnauthorized, Message: "token is not valid"}
	// ErrRevokedToken is returned for tokens invalidated by logout.
	ErrRevokedToken = &AuthError{StatusCode: http.StatusUnauthorized, Message: "token has been revoked"}
	// ErrInvalidCredential is returned when the identity provider rejects a credential.
	ErrInvalidCredential = &AuthError{StatusCode: http.StatusUnauthorized, Message: "google credential is not valid"}
	// ErrUserNotFound is returned when no account matches the login email.
	ErrUserNotFound = &AuthError{StatusCode: http.StatusBadRequest, Message: "no user"}
	// ErrWrongPassword is returned when the password does not match the stored hash.
	ErrWrongPassword = &AuthError{StatusCode: http.StatusBadRequest, Message: "wrong password"}
	// ErrPasswordNotSet is returned for password logins on Google-only accounts.
	ErrPasswordNotSet = &AuthError{StatusCode: http.StatusBadRequest, Message: "account uses google sign-in"}
)

// ValidationError reports a request the client must correct.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a new validation error.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrUserAlreadyExists is returned when registering an email that is taken.
var ErrUserAlreadyExists = &ValidationError{Message: "user already exists"}

// FormatKind classifies why a completion could not be turned into data.
type FormatKind string

const (
	FormatNoJSON FormatKind = "no_json"
	FormatParse  FormatKind = "parse"
	FormatShape  FormatKind = "shape"
)

// FormatError reports LLM output that is unparsable or has the wrong shape.
// Raw holds the full completion for server-side logs only.
type FormatError struct {
	Kind FormatKind
	Raw  string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("ai response malformed (%s): %v", e.Kind, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// NewFormatError creates a new format error.
func NewFormatError(kind FormatKind, raw string, err error) *FormatError {
	return &FormatError{Kind: kind, Raw: raw, Err: err}
}

// ServiceError reports a failure of the upstream completion service.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ServerError reports a failure of our own infrastructure, usually the store.
type ServerError struct {
	Op  string
	Err error
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ServerError) Unwrap() error {
	return e.Err
}

var (
	// ErrRoadmapNotFound is returned when the user has not generated a roadmap yet.
	ErrRoadmapNotFound = errors.New("no roadmap generated yet")
	// ErrRoadmapConflict is returned when a toggle targets a roadmap revision that was replaced.
	ErrRoadmapConflict = errors.New("roadmap was regenerated, reload and try again")
)

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Msg string `json:"msg"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{Msg: e.Message}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Upstream and store
// details never reach the client.
func MapErrorToHTTP(err error) *HTTPError {
	var (
		authErr       *AuthError
		validationErr *ValidationError
		formatErr     *FormatError
		serviceErr    *ServiceError
		serverErr     *ServerError
		echoErr       *echo.HTTPError
	)
	switch {
	case errors.As(err, &authErr):
		return NewHTTPError(authErr.StatusCode, authErr.Message)
	case errors.As(err, &validationErr):
		return NewHTTPError(http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, ErrRoadmapNotFound):
		return NewHTTPError(http.StatusNotFound, ErrRoadmapNotFound.Error())
	case errors.Is(err, ErrRoadmapConflict):
		return NewHTTPError(http.StatusConflict, ErrRoadmapConflict.Error())
	case errors.As(err, &formatErr):
		return NewHTTPError(http.StatusInternalServerError, "AI response malformed, please try again")
	case errors.As(err, &serviceErr):
		return NewHTTPError(http.StatusInternalServerError, "AI service unavailable, please try again later")
	case errors.As(err, &serverErr):
		return NewHTTPError(http.StatusInternalServerError, "server error")
	case errors.As(err, &echoErr):
		if msg, ok := echoErr.Message.(string); ok {
			return NewHTTPError(echoErr.Code, msg)
		}
		return NewHTTPError(echoErr.Code, http.StatusText(echoErr.Code))
	default:
		return NewHTTPError(http.StatusInternalServerError, "server error")
	}
}
