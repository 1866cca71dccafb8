package response

import (
	"car-rental/internal/data/entity"
	"car-rental/internal/scheduling"
)

type CarResponse struct {
	ID           string                    `json:"id"`
	HostID       string                    `json:"host_id"`
	Make         string                    `json:"make"`
	Model        string                    `json:"model"`
	Year         int                       `json:"year"`
	NightlyPrice float64                   `json:"nightly_price"`
	Discounts    []scheduling.DiscountTier `json:"discounts"`
	WeeklyDays   []string                  `json:"weekly_days"`
	OpenTime     *string                   `json:"open_time,omitempty"`
	CloseTime    *string                   `json:"close_time,omitempty"`
}

type AvailabilityResponse struct {
	CarID string           `json:"car_id"`
	Year  int              `json:"year"`
	Month int              `json:"month"`
	Days  []scheduling.Day `json:"days"`
}

type QuoteResponse struct {
	CarID     string `json:"car_id"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	scheduling.PriceQuote
}

type ConflictResponse struct {
	CarID       string            `json:"car_id"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	Bookable    bool              `json:"bookable"`
	Conflicts   []ConflictingSpan `json:"conflicts,omitempty"`
	Unavailable []scheduling.Date `json:"unavailable_dates,omitempty"`
}

type ConflictingSpan struct {
	BookingID string                   `json:"booking_id"`
	StartDate string                   `json:"start_date"`
	EndDate   string                   `json:"end_date"`
	Status    scheduling.BookingStatus `json:"status"`
}

type OverrideResponse struct {
	CarID string                   `json:"car_id"`
	Date  string                   `json:"date"`
	State scheduling.OverrideState `json:"state"`
}

func CarToResponse(car *entity.Car) CarResponse {
	days := make([]string, len(car.WeeklyDays))
	for i, d := range car.WeeklyDays {
		days[i] = weekdayName(d)
	}
	discounts := car.Discounts
	if discounts == nil {
		discounts = []scheduling.DiscountTier{}
	}

	return CarResponse{
		ID:           car.ID.String(),
		HostID:       car.HostID.String(),
		Make:         car.Make,
		Model:        car.Model,
		Year:         car.Year,
		NightlyPrice: car.NightlyPrice,
		Discounts:    discounts,
		WeeklyDays:   days,
		OpenTime:     car.OpenTime,
		CloseTime:    car.CloseTime,
	}
}

func ConflictsToResponse(spans []scheduling.BookingSpan) []ConflictingSpan {
	out := make([]ConflictingSpan, len(spans))
	for i, s := range spans {
		out[i] = ConflictingSpan{
			BookingID: s.ID.String(),
			StartDate: s.Range.Start.String(),
			EndDate:   s.Range.End.String(),
			Status:    s.Status,
		}
	}
	return out
}

func weekdayName(d int32) string {
	names := [...]string{"sunday", "monday", "tuesday", "wednesday", "thursday", "friday", "saturday"}
	if d < 0 || int(d) >= len(names) {
		return "unknown"
	}
	return names[d]
}
