package conversation

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatTimestamp renders an offset in seconds as MM:SS. Minutes grow past
// two digits instead of rolling into hours. Negative offsets clamp to 00:00.
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

// ParseTimestamp inverts FormatTimestamp. Minutes may carry any number of
// digits; seconds must stay below 60.
func ParseTimestamp(value string) (float64, error) {
	minutes, seconds, ok := strings.Cut(value, ":")
	if !ok {
		return 0, fmt.Errorf("parse timestamp %q: expected MM:SS", value)
	}
	m, err := strconv.Atoi(minutes)
	if err != nil || m < 0 {
		return 0, fmt.Errorf("parse timestamp %q: invalid minutes", value)
	}
	s, err := strconv.Atoi(seconds)
	if err != nil || s < 0 || s > 59 {
		return 0, fmt.Errorf("parse timestamp %q: invalid seconds", value)
	}
	return float64(m*60 + s), nil
}
