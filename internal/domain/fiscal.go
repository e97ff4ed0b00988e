package domain

import (
	"fmt"
	"time"
)

// CivilDate is a calendar date without time of day or zone.
type CivilDate struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) CivilDate {
	y, m, d := t.Date()
	return CivilDate{Year: y, Month: m, Day: d}
}

// ParseCivilDate parses a YYYY-MM-DD date.
func ParseCivilDate(s string) (CivilDate, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return CivilDate{}, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date.
func (d CivilDate) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Before reports whether d is strictly earlier than other.
func (d CivilDate) Before(other CivilDate) bool {
	return d.Compare(other) < 0
}

// Compare returns -1, 0 or +1 when d is before, equal to or after other.
func (d CivilDate) Compare(other CivilDate) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

func (d CivilDate) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d CivilDate) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *CivilDate) UnmarshalText(b []byte) error {
	parsed, err := ParseCivilDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// OneYearBefore returns the same day one year earlier.
// 29 February maps to 28 February of the previous year.
func OneYearBefore(d CivilDate) CivilDate {
	prev := CivilDate{Year: d.Year - 1, Month: d.Month, Day: d.Day}
	if d.Month == time.February && d.Day == 29 {
		prev.Day = 28
	}
	return prev
}

// FinancialYear returns the label of the financial year containing d.
// A financial year is named after the calendar year in which it ends, so with
// a July start 2021-06-30 belongs to 2021 and 2021-07-01 to 2022.
func FinancialYear(d CivilDate, startMonth time.Month) int {
	if startMonth <= time.January || d.Month < startMonth {
		return d.Year
	}
	return d.Year + 1
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
