package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// Minute is a point in a day expressed as minutes since midnight (0-1439).
type Minute int

// ParseClock parses a wall-clock string in 12-hour ("7:30 AM") or 24-hour
// ("07:30") form. Leading and trailing whitespace is ignored and the meridiem
// may be attached without a space. The boolean is false when the input cannot
// be understood; malformed input never panics.
func ParseClock(raw string) (Minute, bool) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}

	meridiem := ""
	switch {
	case strings.HasSuffix(s, "AM"):
		meridiem = "AM"
	case strings.HasSuffix(s, "PM"):
		meridiem = "PM"
	}
	if meridiem != "" {
		s = strings.TrimSpace(strings.TrimSuffix(s, meridiem))
	}

	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	hour, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, false
	}
	minute, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}

	switch meridiem {
	case "AM", "PM":
		if hour < 1 || hour > 12 {
			return 0, false
		}
		if hour == 12 {
			hour = 0
		}
		if meridiem == "PM" {
			hour += 12
		}
	default:
		if hour < 0 || hour > 23 {
			return 0, false
		}
	}
	return Minute(hour*60 + minute), true
}

// Clock12 renders the minute as a 12-hour clock string. Noon and midnight
// are normalised to hour 12.
func (m Minute) Clock12() string {
	hour := int(m) / 60 % 24
	minute := int(m) % 60
	meridiem := "AM"
	if hour >= 12 {
		meridiem = "PM"
	}
	hour %= 12
	if hour == 0 {
		hour = 12
	}
	return fmt.Sprintf("%d:%02d %s", hour, minute, meridiem)
}

// RangesOverlap reports whether [aStart,aEnd) and [bStart,bEnd) intersect.
// Ranges that merely touch at a boundary do not overlap.
func RangesOverlap(aStart, aEnd, bStart, bEnd Minute) bool {
	return !(aEnd <= bStart || bEnd <= aStart)
}

// SpansOverlap is RangesOverlap over raw clock strings. Any boundary that
// fails to parse makes the result false: an overlap cannot be detected in a
// range that cannot be read. Callers surface the parse failure separately as
// an UnparseableTime finding.
func SpansOverlap(aStart, aEnd, bStart, bEnd string) bool {
	as, ok := ParseClock(aStart)
	if !ok {
		return false
	}
	ae, ok := ParseClock(aEnd)
	if !ok {
		return false
	}
	bs, ok := ParseClock(bStart)
	if !ok {
		return false
	}
	be, ok := ParseClock(bEnd)
	if !ok {
		return false
	}
	return RangesOverlap(as, ae, bs, be)
}

// timeKey normalises a (start,end) pair for equality matching. Parseable
// boundaries compare by minute so "7:30 AM" and "07:30" address the same
// slot; unparseable ones fall back to the trimmed literal.
func timeKey(start, end string) string {
	return boundaryKey(start) + "-" + boundaryKey(end)
}

func boundaryKey(raw string) string {
	if m, ok := ParseClock(raw); ok {
		return strconv.Itoa(int(m))
	}
	return strings.TrimSpace(raw)
}
