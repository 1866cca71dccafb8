package scheduling

import (
	"errors"
	"fmt"
	"time"
)

const (
	DateLayout = "2006-01-02"

	// MaxRangeDays caps a requested rental or lookup range.
	MaxRangeDays = 366

	secondsPerDay = 24 * 60 * 60
)

var (
	ErrInvalidRange = errors.New("start date is after end date")
	ErrInvalidMonth = errors.New("month index must be between 0 and 11")
	ErrInvalidDate  = errors.New("invalid date")
	ErrRangeTooLong = fmt.Errorf("range longer than %d days", MaxRangeDays)
)

// Date is a calendar day with no time-of-day component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate normalizes overflowing values the same way time.Date does (Feb 30 -> Mar 1/2).
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w %q: %v", ErrInvalidDate, s, err)
	}
	return DateOf(t), nil
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }
func (d Date) Equal(o Date) bool  { return d == o }

func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// DaysUntil counts whole days from d to o; negative when o is earlier.
// Day numbers are used instead of time.Duration, which saturates after ~292 years.
func (d Date) DaysUntil(o Date) int {
	return int(o.dayNumber() - d.dayNumber())
}

// dayNumber is the count of days since 1970-01-01; UTC midnights divide exactly.
func (d Date) dayNumber() int64 {
	return d.Time().Unix() / secondsPerDay
}

func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

func (d Date) String() string {
	return d.Time().Format(DateLayout)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DateRange is inclusive on both ends.
type DateRange struct {
	Start Date
	End   Date
}

func NewDateRange(start, end Date) (DateRange, error) {
	if start.After(end) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start, end)
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseDateRange parses two YYYY-MM-DD strings into a well-formed range.
func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e)
}

// ParseBoundedRange is ParseDateRange limited to MaxRangeDays calendar days.
func ParseBoundedRange(start, end string) (DateRange, error) {
	r, err := ParseDateRange(start, end)
	if err != nil {
		return DateRange{}, err
	}
	if r.Days() > MaxRangeDays {
		return DateRange{}, fmt.Errorf("%w: %s covers %d days", ErrRangeTooLong, r, r.Days())
	}
	return r, nil
}

func (r DateRange) Valid() bool {
	return !r.Start.After(r.End)
}

func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Overlaps reports inclusive intersection. Ranges sharing a boundary day overlap.
func (r DateRange) Overlaps(o DateRange) bool {
	return !r.Start.After(o.End) && !r.End.Before(o.Start)
}

// Days is the number of calendar days covered, Nights the number of day boundaries crossed.
func (r DateRange) Days() int   { return r.Nights() + 1 }
func (r DateRange) Nights() int { return r.Start.DaysUntil(r.End) }

func (r DateRange) Dates() []Date {
	if !r.Valid() {
		return nil
	}
	dates := make([]Date, 0, r.Days())
	for d := r.Start; !d.After(r.End); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

func (r DateRange) String() string {
	return r.Start.String() + ".." + r.End.String()
}

// Day is a derived availability value; never persisted.
type Day struct {
	Date        Date `json:"date"`
	IsAvailable bool `json:"is_available"`
}

// DaysInMonth takes a zero-based month index (0 = January).
func DaysInMonth(year, monthIndex int) (int, error) {
	if monthIndex < 0 || monthIndex > 11 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidMonth, monthIndex)
	}
	// day 0 of the next month is the last day of this one
	last := time.Date(year, time.Month(monthIndex+2), 0, 0, 0, 0, 0, time.UTC)
	return last.Day(), nil
}

// MonthDates lists every date of the month, earliest first.
func MonthDates(year, monthIndex int) ([]Date, error) {
	n, err := DaysInMonth(year, monthIndex)
	if err != nil {
		return nil, err
	}
	first := Date{Year: year, Month: time.Month(monthIndex + 1), Day: 1}
	return DateRange{Start: first, End: first.AddDays(n - 1)}.Dates(), nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
