package scheduling

import (
	"fmt"
	"time"
)

type OverrideState string

const (
	OverrideAvailable   OverrideState = "available"
	OverrideUnavailable OverrideState = "unavailable"
)

func (s OverrideState) Valid() bool {
	return s == OverrideAvailable || s == OverrideUnavailable
}

// Override pins one date to an explicit state, beating the weekly default.
type Override struct {
	Date  Date
	State OverrideState
}

// WeeklySchedule is the host's default week. No days means every day is open.
// OpenTime and CloseTime are informational ("HH:MM") and do not affect day-level availability.
type WeeklySchedule struct {
	Days      []time.Weekday
	OpenTime  string
	CloseTime string
}

func (w WeeklySchedule) Allows(d Date) bool {
	if len(w.Days) == 0 {
		return true
	}
	wd := d.Weekday()
	for _, day := range w.Days {
		if day == wd {
			return true
		}
	}
	return false
}

// CarRules is the host-controlled part of availability.
type CarRules struct {
	Weekly    WeeklySchedule
	Overrides []Override
}

// MonthAvailability computes one Day per date of the month (zero-based monthIndex).
// Active bookings win over overrides, which win over the weekly default.
func MonthAvailability(rules CarRules, bookings []BookingSpan, year, monthIndex int) ([]Day, error) {
	dates, err := MonthDates(year, monthIndex)
	if err != nil {
		return nil, err
	}
	return evaluate(rules, bookings, dates), nil
}

// RangeAvailability is MonthAvailability over an arbitrary inclusive range.
func RangeAvailability(rules CarRules, bookings []BookingSpan, r DateRange) ([]Day, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRange, r)
	}
	return evaluate(rules, bookings, r.Dates()), nil
}

// Unavailable filters the dates reported as not available.
func Unavailable(days []Day) []Date {
	var out []Date
	for _, d := range days {
		if !d.IsAvailable {
			out = append(out, d.Date)
		}
	}
	return out
}

func evaluate(rules CarRules, bookings []BookingSpan, dates []Date) []Day {
	overrides := make(map[Date]OverrideState, len(rules.Overrides))
	for _, o := range rules.Overrides {
		overrides[o.Date] = o.State
	}

	active := make([]DateRange, 0, len(bookings))
	for _, b := range bookings {
		if b.Status.Active() && b.Range.Valid() {
			active = append(active, b.Range)
		}
	}

	days := make([]Day, len(dates))
	for i, d := range dates {
		days[i] = Day{Date: d, IsAvailable: dayAvailable(d, rules.Weekly, overrides, active)}
	}
	return days
}

func dayAvailable(d Date, weekly WeeklySchedule, overrides map[Date]OverrideState, active []DateRange) bool {
	for _, r := range active {
		if r.Contains(d) {
			return false
		}
	}
	if state, ok := overrides[d]; ok {
		return state == OverrideAvailable
	}
	return weekly.Allows(d)
}
