package validate

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinQueryLength = 3
	MaxQueryLength = 1000
	MaxRangeDays   = 365
)

// ValidationError carries a message that is safe to show to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var harmfulPatterns = []string{"<script", "javascript:", "<iframe", "<object", "<embed"}

// Query checks a question before it reaches the answer pipeline.
func Query(q string) error {
	trimmed := strings.TrimSpace(q)
	if trimmed == "" {
		return &ValidationError{Field: "query", Message: "Please enter a question about financial markets or stocks."}
	}

	length := utf8.RuneCountInString(trimmed)
	if length < MinQueryLength {
		return &ValidationError{Field: "query", Message: "Question is too short. Please provide more details."}
	}
	if length > MaxQueryLength {
		return &ValidationError{Field: "query", Message: "Question is too long. Please keep it under 1000 characters."}
	}

	lower := strings.ToLower(q)
	for _, p := range harmfulPatterns {
		if strings.Contains(lower, p) {
			return &ValidationError{Field: "query", Message: "Invalid characters detected in the query."}
		}
	}
	return nil
}

// DateRange checks an ingestion window. Dates are compared by calendar day
// in now's location, so end == today is accepted.
func DateRange(start, end, now time.Time) error {
	start, end, today := day(start, now.Location()), day(end, now.Location()), day(now, now.Location())

	if start.After(end) {
		return &ValidationError{Field: "start_date", Message: "Start date must be before end date."}
	}
	if start.After(today) || end.After(today) {
		return &ValidationError{Field: "end_date", Message: "Dates cannot be in the future."}
	}
	if end.Sub(start) > MaxRangeDays*24*time.Hour {
		return &ValidationError{Field: "end_date", Message: "Date range cannot exceed 1 year."}
	}
	return nil
}

func day(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
