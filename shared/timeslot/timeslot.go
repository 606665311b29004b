// Package timeslot parses reservation dates and times of day and tests
// half-open time ranges for overlap. Times are compared as minutes since
// midnight so formatting never affects a comparison.
package timeslot

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"cafebook/shared/failure"
)

const minutesPerDay = 24 * 60

// Date is a calendar day without a time or location.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// TimeOfDay is minutes since midnight, 0 <= t < 1440.
type TimeOfDay int

// Range is a half-open [Start, End) interval within one day.
type Range struct {
	Start TimeOfDay
	End   TimeOfDay
}

// NormalizeDate accepts YYYY/MM/DD or YYYY-MM-DD.
func NormalizeDate(text string) (Date, error) {
	value := strings.TrimSpace(text)

	sep := "/"
	if strings.Contains(value, "-") {
		sep = "-"
	}

	parts := strings.Split(value, sep)
	if len(parts) != 3 || len(parts[0]) != 4 || !digitsOnly(parts...) {
		return Date{}, failure.InvalidFormat(fmt.Sprintf("date %q must be YYYY/MM/DD", text))
	}

	year, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	day, _ := strconv.Atoi(parts[2])

	if len(parts[1]) > 2 || len(parts[2]) > 2 || month < 1 || month > 12 || day < 1 {
		return Date{}, failure.InvalidFormat(fmt.Sprintf("date %q must be YYYY/MM/DD", text))
	}

	// time.Date normalises overflow, so 2025/02/30 comes back as March.
	probe := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if probe.Day() != day || probe.Month() != time.Month(month) {
		return Date{}, failure.InvalidFormat(fmt.Sprintf("date %q does not exist", text))
	}

	return Date{Year: year, Month: time.Month(month), Day: day}, nil
}

// NormalizeTime accepts HH:MM, H:MM or HHMM on a 24-hour clock.
func NormalizeTime(text string) (TimeOfDay, error) {
	value := strings.TrimSpace(text)

	var hoursPart, minutesPart string

	switch {
	case strings.Count(value, ":") == 1:
		idx := strings.IndexByte(value, ':')
		hoursPart, minutesPart = value[:idx], value[idx+1:]
	case len(value) == 4:
		hoursPart, minutesPart = value[:2], value[2:]
	default:
		return 0, failure.InvalidFormat(fmt.Sprintf("time %q must be HH:MM", text))
	}

	if len(hoursPart) < 1 || len(hoursPart) > 2 || len(minutesPart) != 2 || !digitsOnly(hoursPart, minutesPart) {
		return 0, failure.InvalidFormat(fmt.Sprintf("time %q must be HH:MM", text))
	}

	hours, _ := strconv.Atoi(hoursPart)
	minutes, _ := strconv.Atoi(minutesPart)

	if hours > 23 || minutes > 59 {
		return 0, failure.InvalidFormat(fmt.Sprintf("time %q is out of range", text))
	}

	return TimeOfDay(hours*60 + minutes), nil
}

// NewRange rejects empty and inverted ranges.
func NewRange(start, end TimeOfDay) (Range, error) {
	if start >= end {
		return Range{}, failure.InvalidRange(fmt.Sprintf("start %s must be before end %s", start, end))
	}

	return Range{Start: start, End: end}, nil
}

// ParseRange normalizes both ends and validates the order.
func ParseRange(start, end string) (Range, error) {
	s, err := NormalizeTime(start)
	if err != nil {
		return Range{}, err
	}

	e, err := NormalizeTime(end)
	if err != nil {
		return Range{}, err
	}

	return NewRange(s, e)
}

// Overlaps reports whether [startA, endA) and [startB, endB) intersect.
// Ranges that only touch at a boundary do not overlap.
func Overlaps(startA, endA, startB, endB TimeOfDay) bool {
	return max(startA, startB) < min(endA, endB)
}

func (r Range) Overlaps(other Range) bool {
	return Overlaps(r.Start, r.End, other.Start, other.End)
}

func (r Range) String() string {
	return r.Start.String() + "-" + r.End.String()
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t TimeOfDay) Valid() bool {
	return t >= 0 && t < minutesPerDay
}

func (d Date) String() string {
	return fmt.Sprintf("%04d/%02d/%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// At returns the instant of t on day d in loc.
func (d Date) At(t TimeOfDay, loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, int(t)/60, int(t)%60, 0, 0, loc)
}

// DateOf returns the calendar day of ts as seen in ts's own location.
func DateOf(ts time.Time) Date {
	return Date{Year: ts.Year(), Month: ts.Month(), Day: ts.Day()}
}

func digitsOnly(parts ...string) bool {
	for _, part := range parts {
		if part == "" {
			return false
		}

		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}

	return true
}
