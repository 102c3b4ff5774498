package attendance

import "time"

// DateLayout is the stored capture-date format, e.g. "Fri, 02 Jun 2023".
const DateLayout = "Mon, 02 Jan 2006"

// Punctuality bands. Comparison is lexicographic on the formatted clock
// string, which only holds together because Capture always zero-pads the hour
// and minute. Do not swap in numeric time comparison without flagging the
// behavior change.
const (
	fullMarkCutoff = "09:45 AM"
	halfMarkCutoff = "09:59 AM"
)

// Capture formats a moment as the stored date and clock strings. The clock
// keeps the 24-hour figure and appends an AM/PM suffix derived from the hour,
// so afternoon captures read like "13:20 PM".
func Capture(now time.Time) (date, clock string) {
	date = now.Format(DateLayout)
	suffix := "AM"
	if now.Hour() >= 12 {
		suffix = "PM"
	}
	clock = now.Format("15:04") + " " + suffix
	return date, clock
}

// Score maps a formatted capture clock to a punctuality mark.
func Score(clock string) int {
	switch {
	case clock <= fullMarkCutoff:
		return 20
	case clock <= halfMarkCutoff:
		return 10
	default:
		return 0
	}
}

// Weekday derives the short weekday name from a stored capture date. Returns
// "" when the stored string does not parse.
func Weekday(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return ""
	}
	return t.Format("Mon")
}
