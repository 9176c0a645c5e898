package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseClock converts an "HH:MM" string to minutes from midnight.
func ParseClock(s string) (int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("parse clock: %q is not HH:MM", s)
	}

	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("parse clock: %q is not HH:MM", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("parse clock: %q is not HH:MM", s)
	}

	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock: %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock converts minutes from midnight to "HH:MM", wrapping past 24h.
func FormatClock(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	minutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
