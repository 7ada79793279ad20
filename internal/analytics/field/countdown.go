package field

import (
	"fmt"
	"strings"
	"time"
)

// Countdown labels
const (
	CountdownCompleted = "Completed"
	CountdownTBA       = "TBA"
)

// RaceStart returns the UTC start of a race. With no clock time the race is
// taken to end the day, at 23:59:59.
func RaceStart(date, clock string) (time.Time, error) {
	if clock == "" {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse race date %q: %w", date, err)
		}
		return t.Add(23*time.Hour + 59*time.Minute + 59*time.Second), nil
	}

	clock = strings.TrimSuffix(clock, "Z")
	t, err := time.Parse("2006-01-02 15:04:05", date+" "+clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse race start %q %q: %w", date, clock, err)
	}
	return t, nil
}

// Countdown formats the time left until a race as "Xd Yh", "Xh Ym" or "Xm".
// Past races are "Completed" and unparseable dates "TBA".
func Countdown(date, clock string, now time.Time) string {
	start, err := RaceStart(date, clock)
	if err != nil {
		return CountdownTBA
	}

	left := start.Sub(now)
	if left < 0 {
		return CountdownCompleted
	}

	days := int(left / (24 * time.Hour))
	hours := int(left % (24 * time.Hour) / time.Hour)
	minutes := int(left % time.Hour / time.Minute)

	switch {
	case days > 0:
		return fmt.Sprintf("%dd %dh", days, hours)
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}
