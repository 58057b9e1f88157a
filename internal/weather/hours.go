package weather

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// isoMinuteLayout is the timestamp layout Open-Meteo uses for daily
// sunrise/sunset values.
const isoMinuteLayout = "2006-01-02T15:04"

// decimalHour converts a wall-clock time to a decimal hour-of-day rounded to
// two decimals (6:30 -> 6.5).
func decimalHour(hour, minute int) float64 {
	return math.Round((float64(hour)+float64(minute)/60)*100) / 100
}

// parseISOHour converts an ISO minute-precision timestamp into a decimal hour.
func parseISOHour(value string) (float64, error) {
	t, err := time.Parse(isoMinuteLayout, value)
	if err != nil {
		return 0, fmt.Errorf("invalid ISO timestamp %q: %w", value, err)
	}
	return decimalHour(t.Hour(), t.Minute()), nil
}

// parse12Hour converts a 12-hour "hh:mm AM/PM" string into a decimal hour.
func parse12Hour(value string) (float64, error) {
	fields := strings.Fields(strings.TrimSpace(value))
	if len(fields) != 2 {
		return 0, fmt.Errorf("invalid 12-hour time %q", value)
	}

	var h, m int
	if _, err := fmt.Sscanf(fields[0], "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid 12-hour time %q: %w", value, err)
	}
	if h < 1 || h > 12 || m < 0 || m > 59 {
		return 0, fmt.Errorf("12-hour time %q out of range", value)
	}

	h = h % 12
	switch strings.ToUpper(fields[1]) {
	case "AM":
	case "PM":
		h += 12
	default:
		return 0, fmt.Errorf("invalid meridiem in %q", value)
	}

	return decimalHour(h, m), nil
}
