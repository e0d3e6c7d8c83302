package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDuration extends time.ParseDuration to support days (d) and weeks (w).
// The result must be positive.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	var (
		d   time.Duration
		err error
	)
	switch {
	case strings.HasSuffix(s, "d"):
		d, err = scaled(strings.TrimSuffix(s, "d"), 24*time.Hour)
	case strings.HasSuffix(s, "w"):
		d, err = scaled(strings.TrimSuffix(s, "w"), 7*24*time.Hour)
	default:
		d, err = time.ParseDuration(s)
	}
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration must be positive: %s", s)
	}
	return d, nil
}

func scaled(value string, unit time.Duration) (time.Duration, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid duration value: %s", value)
	}
	return time.Duration(n) * unit, nil
}

// FormatDuration renders d the way ParseDuration accepts it, preferring days.
func FormatDuration(d time.Duration) string {
	if d >= 24*time.Hour && d%(24*time.Hour) == 0 {
		return fmt.Sprintf("%dd", d/(24*time.Hour))
	}
	return d.String()
}
