package util

import (
	"fmt"
	"time"
)

// Accepted layouts for date query parameters and request bodies.
// Plain dates are the documented format; full timestamps are tolerated.
var dateLayouts = []string{
	"2006-01-02",          // 2023-10-01
	"2006-01-02T15:04:05", // 2023-10-01T00:00:00
	time.RFC3339,          // 2023-10-01T00:00:00+01:00
}

// ParseDate parses an ISO-8601 date string.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
