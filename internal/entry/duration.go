package entry

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// durationPattern matches Xh, Ym, and XhYm (e.g., "2h", "30m", "1h30m")
var durationPattern = regexp.MustCompile(`^(?:(\d+)h)?(?:(\d+)m)?$`)

// MaxDuration is the longest span accepted by ParseDuration
const MaxDuration = 24 * time.Hour

// ParseDuration parses a duration string in Xh, Ym, or XhYm format.
// Valid inputs: "2h", "30m", "1h30m"
// Invalid inputs: "", "0h", "0m", "1.5h", values exceeding 24h
func ParseDuration(input string) (time.Duration, error) {
	m := durationPattern.FindStringSubmatch(input)
	if input == "" || m == nil {
		return 0, fmt.Errorf("invalid time format: expected Xh, Xm, or XhYm, got %q", input)
	}

	hours, minutes := 0, 0
	if m[1] != "" {
		hours, _ = strconv.Atoi(m[1])
	}
	if m[2] != "" {
		minutes, _ = strconv.Atoi(m[2])
	}

	d := time.Duration(hours)*time.Hour + time.Duration(minutes)*time.Minute
	if d == 0 {
		return 0, fmt.Errorf("invalid duration: duration cannot be zero")
	}
	if d > MaxDuration {
		return 0, fmt.Errorf("invalid duration: exceeds maximum of 24 hours")
	}
	return d, nil
}

// FormatDuration renders a duration the way the log's readable column does.
// Examples: "0m", "45m", "2h", "1h 30m"
func FormatDuration(d time.Duration) string {
	minutes := int(d / time.Minute)
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins == 0 {
		return fmt.Sprintf("%dh", hours)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}
