package scheduling

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func span(t *testing.T, start, end string, status BookingStatus) BookingSpan {
	return BookingSpan{ID: uuid.New(), Range: mustRange(t, start, end), Status: status}
}

func availableByDay(days []Day) map[int]bool {
	out := make(map[int]bool, len(days))
	for _, d := range days {
		out[d.Date.Day] = d.IsAvailable
	}
	return out
}

func TestMonthAvailabilityCoverage(t *testing.T) {
	for year := 2023; year <= 2024; year++ {
		for month := 0; month < 12; month++ {
			days, err := MonthAvailability(CarRules{}, nil, year, month)
			require.NoError(t, err)

			want, _ := DaysInMonth(year, month)
			require.Len(t, days, want)

			seen := make(map[Date]bool)
			for i, d := range days {
				assert.False(t, seen[d.Date], "duplicate %s", d.Date)
				seen[d.Date] = true
				assert.Equal(t, time.Month(month+1), d.Date.Month)
				if i > 0 {
					assert.True(t, days[i-1].Date.Before(d.Date))
				}
			}
		}
	}
}

func TestMonthAvailabilityConfirmedBooking(t *testing.T) {
	bookings := []BookingSpan{span(t, "2024-03-10", "2024-03-15", StatusConfirmed)}

	days, err := MonthAvailability(CarRules{}, bookings, 2024, 2)
	require.NoError(t, err)
	require.Len(t, days, 31)

	for day, ok := range availableByDay(days) {
		if day >= 10 && day <= 15 {
			assert.False(t, ok, "march %d should be booked", day)
		} else {
			assert.True(t, ok, "march %d should be free", day)
		}
	}
}

func TestMonthAvailabilityIgnoresCancelled(t *testing.T) {
	bookings := []BookingSpan{span(t, "2024-03-10", "2024-03-15", StatusCancelled)}

	days, err := MonthAvailability(CarRules{}, bookings, 2024, 2)
	require.NoError(t, err)
	assert.Empty(t, Unavailable(days))
}

func TestMonthAvailabilityUnavailableOverride(t *testing.T) {
	rules := CarRules{Overrides: []Override{{Date: mustDate(t, "2024-03-20"), State: OverrideUnavailable}}}

	days, err := MonthAvailability(rules, nil, 2024, 2)
	require.NoError(t, err)
	assert.Equal(t, []Date{mustDate(t, "2024-03-20")}, Unavailable(days))
}

func TestBookingBeatsAvailableOverride(t *testing.T) {
	rules := CarRules{Overrides: []Override{
		{Date: mustDate(t, "2024-03-12"), State: OverrideAvailable},
	}}
	bookings := []BookingSpan{span(t, "2024-03-10", "2024-03-15", StatusPending)}

	days, err := MonthAvailability(rules, bookings, 2024, 2)
	require.NoError(t, err)
	assert.False(t, availableByDay(days)[12])
}

func TestOverrideBeatsWeeklyDefault(t *testing.T) {
	// weekends only
	rules := CarRules{
		Weekly: WeeklySchedule{Days: []time.Weekday{time.Saturday, time.Sunday}},
		Overrides: []Override{
			{Date: mustDate(t, "2024-03-06"), State: OverrideAvailable},   // Wednesday
			{Date: mustDate(t, "2024-03-09"), State: OverrideUnavailable}, // Saturday
		},
	}

	days, err := MonthAvailability(rules, nil, 2024, 2)
	require.NoError(t, err)
	got := availableByDay(days)

	assert.True(t, got[6])
	assert.False(t, got[9])
	assert.True(t, got[10])  // Sunday, weekly default
	assert.False(t, got[11]) // Monday, weekly default
}

func TestRangeAvailability(t *testing.T) {
	rules := CarRules{Overrides: []Override{{Date: mustDate(t, "2024-06-02"), State: OverrideUnavailable}}}

	days, err := RangeAvailability(rules, nil, mustRange(t, "2024-05-30", "2024-06-03"))
	require.NoError(t, err)
	require.Len(t, days, 5)
	assert.Equal(t, []Date{mustDate(t, "2024-06-02")}, Unavailable(days))

	_, err = RangeAvailability(rules, nil, DateRange{Start: mustDate(t, "2024-06-03"), End: mustDate(t, "2024-06-01")})
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestMonthAvailabilityInvalidMonth(t *testing.T) {
	_, err := MonthAvailability(CarRules{}, nil, 2024, 12)
	assert.ErrorIs(t, err, ErrInvalidMonth)
}
