// Package queries answers availability questions about groups and individual users.
package queries

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/calcompare/internal/availability/domain"
)

var (
	// ErrValidation is wrapped by every ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrUserNotFound is returned when an individual query names an unknown user.
	ErrUserNotFound = errors.New("user not found")
)

// Request limits.
const (
	MaxSearchDays             = 30
	DefaultMinDurationMinutes = 30
	MinDurationLimit          = 1
	MaxDurationMinutes        = 480
	MinMeetingDuration        = 15
	DefaultMaxSuggestions     = 5
	MaxSuggestionsLimit       = 20
)

// ValidationError reports an invalid query field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap exposes ErrValidation and the underlying cause, if any.
func (e *ValidationError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrValidation}
	}
	return []error{ErrValidation, e.Err}
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// validatePeriod checks the search window and returns it normalised to UTC.
func validatePeriod(start, end time.Time) (domain.Window, error) {
	if start.IsZero() || end.IsZero() {
		return domain.Window{}, invalid("period", "start_date and end_date are required")
	}
	if _, err := domain.NewTimeInterval(start, end); err != nil {
		return domain.Window{}, &ValidationError{Field: "period", Message: "start_date must be before end_date", Err: err}
	}
	if int(end.Sub(start)/(24*time.Hour)) > MaxSearchDays {
		return domain.Window{}, invalid("period", "date range cannot exceed %d days", MaxSearchDays)
	}
	return domain.NewWindow(start, end), nil
}

func normalizeMinDuration(minutes int) (int, error) {
	if minutes == 0 {
		return DefaultMinDurationMinutes, nil
	}
	if minutes < MinDurationLimit || minutes > MaxDurationMinutes {
		return 0, invalid("min_duration", "must be between %d and %d minutes", MinDurationLimit, MaxDurationMinutes)
	}
	return minutes, nil
}

func validateMeetingDuration(minutes int) error {
	if minutes < MinMeetingDuration || minutes > MaxDurationMinutes {
		return invalid("meeting_duration", "must be between %d and %d minutes", MinMeetingDuration, MaxDurationMinutes)
	}
	return nil
}

func normalizeMaxSuggestions(n int) (int, error) {
	if n == 0 {
		return DefaultMaxSuggestions, nil
	}
	if n < 1 || n > MaxSuggestionsLimit {
		return 0, invalid("max_suggestions", "must be between 1 and %d", MaxSuggestionsLimit)
	}
	return n, nil
}
