package entity

import (
	"time"

	"car-rental/internal/scheduling"

	"github.com/google/uuid"
)

type Car struct {
	Base
	HostID       uuid.UUID                 `db:"host_id"`
	Make         string                    `db:"make"`
	Model        string                    `db:"model"`
	Year         int                       `db:"year"`
	NightlyPrice float64                   `db:"nightly_price"`
	Discounts    []scheduling.DiscountTier `db:"discounts"`
	WeeklyDays   []int32                   `db:"weekly_days"`
	OpenTime     *string                   `db:"open_time"`
	CloseTime    *string                   `db:"close_time"`
}

// CarDateOverride pins a single date for a car to available or unavailable.
type CarDateOverride struct {
	CarID       uuid.UUID `db:"car_id"`
	Date        time.Time `db:"date"`
	IsAvailable bool      `db:"is_available"`
	UpdatedAt   time.Time `db:"updated_at"`
}
