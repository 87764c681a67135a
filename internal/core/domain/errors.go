package domain

import (
	"errors"
	"strings"
)

// Error kinds. Every error returned by the services unwraps to one of these so
// the HTTP layer can map it with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrBadRequest      = errors.New("bad request")
	ErrUnauthenticated = errors.New("authentication required")
	ErrForbidden       = errors.New("access forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrHasDependents   = errors.New("resource has dependents")
)

var (
	ErrUserNotFound     = kindError(ErrNotFound, "User not found")
	ErrPostNotFound     = kindError(ErrNotFound, "Post not found")
	ErrPageNotFound     = kindError(ErrNotFound, "Page not found")
	ErrHomePageNotFound = kindError(ErrNotFound, "Home page not found")
	ErrCategoryNotFound = kindError(ErrNotFound, "Category not found")
	ErrMediaNotFound    = kindError(ErrNotFound, "Media not found")
	ErrCommentNotFound  = kindError(ErrNotFound, "Comment not found")

	ErrUserExists     = kindError(ErrConflict, "User with this email or username already exists")
	ErrCategoryExists = kindError(ErrConflict, "Category with this name already exists")
	ErrSlugExists     = kindError(ErrConflict, "Slug already in use")

	ErrCategoryHasPosts         = kindError(ErrHasDependents, "Cannot delete category with existing posts")
	ErrCategoryHasSubcategories = kindError(ErrHasDependents, "Cannot delete category with subcategories")
	ErrPageHasChildren          = kindError(ErrHasDependents, "Cannot delete page with child pages")

	ErrInvalidCredentials  = kindError(ErrUnauthenticated, "Invalid credentials")
	ErrInvalidToken        = kindError(ErrUnauthenticated, "Invalid token")
	ErrTokenExpired        = kindError(ErrUnauthenticated, "Token expired")
	ErrTokenRevoked        = kindError(ErrUnauthenticated, "Token has been revoked")
	ErrInvalidRefreshToken = kindError(ErrUnauthenticated, "Invalid refresh token")
	ErrAccountInactive     = kindError(ErrUnauthenticated, "Account is deactivated")

	ErrAlreadyLiked     = kindError(ErrBadRequest, "Post already liked")
	ErrNotLiked         = kindError(ErrBadRequest, "Post not liked yet")
	ErrWrongPassword    = kindError(ErrBadRequest, "Current password is incorrect")
	ErrFileRequired     = kindError(ErrBadRequest, "No file uploaded")
	ErrFileTooLarge     = kindError(ErrBadRequest, "File too large")
	ErrFileTypeRejected = kindError(ErrBadRequest, "Invalid file type")
)

// KindError is a client-facing message bound to one of the error kinds.
type KindError struct {
	kind error
	msg  string
	base *KindError
}

func kindError(kind error, msg string) *KindError {
	return &KindError{kind: kind, msg: msg}
}

// WithMessage returns a copy of e with a more specific message. The copy still
// matches e under errors.Is.
func (e *KindError) WithMessage(msg string) *KindError {
	base := e
	if e.base != nil {
		base = e.base
	}
	return &KindError{kind: e.kind, msg: msg, base: base}
}

func (e *KindError) Is(target error) bool {
	t, ok := target.(*KindError)
	return ok && e.base != nil && t == e.base
}

func (e *KindError) Error() string { return e.msg }
func (e *KindError) Unwrap() error { return e.kind }

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every field error found in one validation pass.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AuthorizationError is returned when the policy denies an action.
type AuthorizationError struct {
	Action Action
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }
func (e *AuthorizationError) Unwrap() error { return ErrForbidden }
