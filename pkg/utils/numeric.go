package utils

import (
	"strconv"
	"strings"
)

// ParseFloat coerces field-collected values to a float.
// Missing, malformed or non-numeric input yields 0, never an error.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// Field forms sometimes use a decimal comma
	s = strings.ReplaceAll(s, ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
