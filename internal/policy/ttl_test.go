package policy

import (
	"testing"
	"time"
)

func TestParseTTL_Valid(t *testing.T) {
	tests := []struct {
		ttl  string
		want time.Duration
	}{
		{"1h", time.Hour},
		{"24h", 24 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"1m", 30 * 24 * time.Hour},
		{"2y", 2 * 365 * 24 * time.Hour},
		{"90d", 90 * 24 * time.Hour},
	}

	for _, tt := range tests {
		got, err := ParseTTL(tt.ttl)
		if err != nil {
			t.Errorf("ParseTTL(%q): unexpected error: %v", tt.ttl, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTTL(%q) = %v, want %v", tt.ttl, got, tt.want)
		}
	}
}

func TestParseTTL_Invalid(t *testing.T) {
	tests := []string{
		"",
		"0h",
		"0d",
		"invalid-ttl",
		"24",
		"h",
		"1w",
		"-1h",
		"1.5h",
		"24 h",
	}

	for _, ttl := range tests {
		if _, err := ParseTTL(ttl); err == nil {
			t.Errorf("ParseTTL(%q): expected error, got nil", ttl)
		}
	}
}
