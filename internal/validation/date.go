package validation

import (
	"time"

	validation "github.com/jellydator/validation"
)

// DateLayout is the calendar date format accepted on the wire.
const DateLayout = "2006-01-02"

// Date validates that a string is a calendar date in YYYY-MM-DD format.
var Date = validation.By(func(value interface{}) error {
	s, ok := value.(string)
	if !ok {
		return validation.NewError("validation_date_type", "must be a string")
	}
	if s == "" {
		return nil // Let Required handle empty strings
	}
	if _, err := time.Parse(DateLayout, s); err != nil {
		return validation.NewError("validation_date_format", "must be a valid date (YYYY-MM-DD)")
	}
	return nil
})

// ParseDate parses a YYYY-MM-DD string into a UTC midnight time.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, WrapValidationError(
			validation.NewError("validation_date_format", "must be a valid date (YYYY-MM-DD)"),
		)
	}
	return t.UTC(), nil
}
