package scheduling

import (
	"fmt"
	"time"
)

const quarterHour = 15

// QuarterHourOptions lists every quarter hour of the day as "HH:MM", starting
// at the first quarter hour strictly after now and wrapping around midnight.
func QuarterHourOptions(now time.Time) []string {
	minutes := now.Hour()*60 + now.Minute()
	first := (minutes/quarterHour + 1) * quarterHour

	const perDay = 24 * 60 / quarterHour
	out := make([]string, 0, perDay)
	for i := 0; i < perDay; i++ {
		m := (first + i*quarterHour) % (24 * 60)
		out = append(out, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return out
}
