package validation

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format accepted from the UI collaborator.
const DateLayout = "2006-01-02"

// IsNotEmpty checks if string is not empty after trimming
func IsNotEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// TrimAndValidate trims string and validates it's not empty
func TrimAndValidate(s string) (string, bool) {
	trimmed := strings.TrimSpace(s)
	return trimmed, trimmed != ""
}

// IsValidGeometryKind reports whether kind names one of the two stored geometries
func IsValidGeometryKind(kind string) bool {
	return kind == "flood" || kind == "footprint"
}

// ParseDate parses a YYYY-MM-DD calendar date in UTC
func ParseDate(s string) (time.Time, bool) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// IsValidDateRange reports whether from does not come after to
func IsValidDateRange(from, to time.Time) bool {
	return !from.After(to)
}
