package utils

import "testing"

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"12.5", 12.5},
		{"12,5", 12.5}, // decimal comma
		{" 8 ", 8},
		{"-3.2", -3.2},
		{"", 0},
		{"n/a", 0},
		{"12.5m3", 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseFloat(tt.in); got != tt.want {
				t.Errorf("ParseFloat(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
