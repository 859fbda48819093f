package store

import (
	"fmt"
	"regexp"
	"strconv"
)

var (
	hoursMinutesRe = regexp.MustCompile(`^\s*(\d+)h\s*(?:(\d+)m)?\s*$`)
	minutesRe      = regexp.MustCompile(`^\s*(\d+)m\s*$`)
)

// FormatMinutes renders a duration as "Xh Ym", or "Ym" below an hour.
func FormatMinutes(mins int) string {
	if mins < 0 {
		mins = 0
	}
	if mins < 60 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %dm", mins/60, mins%60)
}

// ParseDurationLabel reads the "Xh Ym" / "Xh" / "Xm" labels older builds
// stored as text.
func ParseDurationLabel(label string) (int, bool) {
	if m := hoursMinutesRe.FindStringSubmatch(label); m != nil {
		h, _ := strconv.Atoi(m[1])
		mins := 0
		if m[2] != "" {
			mins, _ = strconv.Atoi(m[2])
		}
		return h*60 + mins, true
	}
	if m := minutesRe.FindStringSubmatch(label); m != nil {
		mins, _ := strconv.Atoi(m[1])
		return mins, true
	}
	return 0, false
}
