package board

import (
	"errors"
	"fmt"
	"unicode/utf8"

	internalstrings "github.com/amonks/kanban/internal/strings"
	"github.com/amonks/kanban/internal/validation"
)

var (
	// ErrValidation is the parent of every input validation error.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTitle is returned when a title is blank or too long.
	ErrInvalidTitle = fmt.Errorf("%w: invalid title", ErrValidation)

	// ErrInvalidDescription is returned when a description is too long.
	ErrInvalidDescription = fmt.Errorf("%w: invalid description", ErrValidation)

	// ErrInvalidStatus is returned when a status is not one of the board columns.
	ErrInvalidStatus = fmt.Errorf("%w: invalid status", ErrValidation)

	// ErrNotFound is returned when no item has the given ID.
	ErrNotFound = errors.New("item not found")

	// ErrAmbiguousID is returned when an ID prefix matches more than one item.
	ErrAmbiguousID = errors.New("ambiguous item ID prefix")

	// ErrWIPLimitExceeded is returned when in_progress is already full.
	ErrWIPLimitExceeded = errors.New("WIP limit reached")

	// ErrInvalidWIPLimit is returned when a WIP limit is not positive.
	ErrInvalidWIPLimit = errors.New("WIP limit must be a positive integer")

	// ErrWIPLimitBelowCurrent is returned when a WIP limit is lower than the in_progress count.
	ErrWIPLimitBelowCurrent = errors.New("WIP limit is below current in_progress count")

	// ErrInvalidReorder is returned when a target position is outside the column.
	ErrInvalidReorder = errors.New("invalid reorder position")
)

// ValidateTitle checks that a title is non-blank and at most MaxTitleLength
// characters once trimmed.
func ValidateTitle(title string) error {
	trimmed := internalstrings.TrimSpace(title)
	if trimmed == "" {
		return fmt.Errorf("%w: title cannot be empty", ErrInvalidTitle)
	}
	if n := utf8.RuneCountInString(trimmed); n > MaxTitleLength {
		return fmt.Errorf("%w: %d > %d characters", ErrInvalidTitle, n, MaxTitleLength)
	}
	return nil
}

// ValidateDescription checks that a trimmed description is at most
// MaxDescriptionLength characters. Empty descriptions are valid.
func ValidateDescription(description string) error {
	trimmed := internalstrings.TrimSpace(description)
	if n := utf8.RuneCountInString(trimmed); n > MaxDescriptionLength {
		return fmt.Errorf("%w: %d > %d characters", ErrInvalidDescription, n, MaxDescriptionLength)
	}
	return nil
}

// ParseStatus converts user input into a Status.
func ParseStatus(value string) (Status, error) {
	status := Status(internalstrings.NormalizeLowerTrimSpace(value))
	if !status.IsValid() {
		return "", validation.FormatInvalidValueError(ErrInvalidStatus, status, Statuses())
	}
	return status, nil
}
