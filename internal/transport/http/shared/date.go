package shared

import "time"

const dateOnlyLayout = "2006-01-02"

// ParseDate accepts RFC3339 timestamps or bare YYYY-MM-DD dates; the
// empty string parses to the zero time so callers can treat the field
// as optional.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse(dateOnlyLayout, value)
}
