package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Error kinds. Every business error returned by this package wraps exactly one of them.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// Error is a business error of a given kind with a caller-facing message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func validationError(format string, args ...interface{}) error {
	return newError(ErrValidation, fmt.Sprintf(format, args...))
}

var (
	ErrOrganizationNotFound = newError(ErrNotFound, "organization not found")
	ErrProjectNotFound      = newError(ErrNotFound, "project not found")
	ErrUserNotFound         = newError(ErrNotFound, "user not found")
	ErrTaskNotFound         = newError(ErrNotFound, "task not found")
	ErrWikiPageNotFound     = newError(ErrNotFound, "wiki page not found")
	ErrChatNotFound         = newError(ErrNotFound, "chat not found")

	ErrOrganizationSlugTaken = newError(ErrConflict, "organization slug already exists")
	ErrProjectSlugTaken      = newError(ErrConflict, "project slug already exists in this organization")
	ErrEmailTaken            = newError(ErrConflict, "email already exists")
	ErrWikiTitleTaken        = newError(ErrConflict, "a wiki page with this title already exists")

	ErrSelfDirectMessage  = newError(ErrValidation, "cannot open a direct message with yourself")
	ErrNamedDirectMessage = newError(ErrValidation, "direct messages are opened between two users, not created by name")
	ErrTitleRequired      = newError(ErrValidation, "title is required")
	ErrInvalidCursor      = newError(ErrValidation, "invalid pagination cursor")

	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
)

// lookup turns gorm's not-found into the given business error and wraps anything else.
func lookup[T any](row *T, err error, notFound error, what string) (*T, error) {
	if err == nil {
		return row, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound
	}
	return nil, fmt.Errorf("failed to find %s: %w", what, err)
}

// optional is lookup for reads where absence is a normal result.
func optional[T any](row *T, err error, what string) (*T, error) {
	if err == nil {
		return row, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return nil, fmt.Errorf("failed to find %s: %w", what, err)
}

// isDuplicate reports whether err is a unique index violation.
func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
