package services

import (
	"errors"
	"fmt"
	"promptgallery-backend/internal/repository"
	"strings"
)

var (
	ErrValidation     = errors.New("validation failed")
	ErrUnauthorized   = errors.New("not allowed")
	ErrPromptNotFound = errors.New("prompt not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrTransientStore = errors.New("store temporarily unavailable, please retry")
)

// ValidationError lists the input fields that were rejected.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation.Error(), strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// storeError translates repository errors into service errors. notFound is
// returned for missing records so callers can pick the right sentinel.
func storeError(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.Is(err, repository.ErrLikeConflict), errors.Is(err, repository.ErrTransient):
		return fmt.Errorf("%w: %v", ErrTransientStore, err)
	default:
		return err
	}
}
