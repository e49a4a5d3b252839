package policy

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ttlPattern = regexp.MustCompile(`^(\d+)([hdmy])$`)

// ParseTTL parses a validity duration in the TTL grammar "<n><unit>" where
// unit is h (hours), d (days), m (30-day months) or y (365-day years). The
// result must be strictly positive: "0h" and unparseable strings fail.
func ParseTTL(ttl string) (time.Duration, error) {
	match := ttlPattern.FindStringSubmatch(ttl)
	if match == nil {
		return 0, fmt.Errorf("invalid TTL format: %q", ttl)
	}

	value, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid TTL format: %q", ttl)
	}
	if value <= 0 {
		return 0, fmt.Errorf("TTL must be a positive duration, got %q", ttl)
	}

	var unit time.Duration
	switch match[2] {
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	case "m":
		unit = 30 * 24 * time.Hour
	case "y":
		unit = 365 * 24 * time.Hour
	}

	return time.Duration(value) * unit, nil
}
