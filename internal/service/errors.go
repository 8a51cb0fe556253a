package service

import "errors"

// Error kinds surfaced to callers. Messages are safe to render to users and
// never carry internal identifiers; wrap with fmt.Errorf("...: %w", err) to
// add context and check with errors.Is.
var (
	// ErrValidation marks a missing or malformed required field.
	ErrValidation = errors.New("required field is missing")

	// ErrDuplicate marks a title+date conflict that eliminated the whole
	// requested operation. Per-year skips during series creation are not
	// reported through this error.
	ErrDuplicate = errors.New("an event with this title and date already exists")

	// ErrSeriesProtected marks an attempt to delete the first event of a
	// yearly series while later entries still exist.
	ErrSeriesProtected = errors.New("the first event of a yearly series cannot be deleted on its own; delete the whole series instead")

	// ErrInvalidDate marks date components that stay unrepresentable even
	// after leap-day correction.
	ErrInvalidDate = errors.New("the date is not a valid calendar date")

	// ErrNotFound marks a referenced event or series that no longer exists.
	ErrNotFound = errors.New("event not found")
)
