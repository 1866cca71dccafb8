package entity

import (
	"time"

	"car-rental/internal/scheduling"

	"github.com/google/uuid"
)

type BookingStatus = scheduling.BookingStatus

const (
	BookingStatusPending   = scheduling.StatusPending
	BookingStatusConfirmed = scheduling.StatusConfirmed
	BookingStatusCancelled = scheduling.StatusCancelled
)

type Booking struct {
	BaseNoDelete
	OrderID    string        `db:"order_id"`
	UserID     uuid.UUID     `db:"user_id"`
	CarID      uuid.UUID     `db:"car_id"`
	StartDate  time.Time     `db:"start_date"`
	EndDate    time.Time     `db:"end_date"`
	Nights     int           `db:"nights"`
	TotalPrice float64       `db:"total_price"`
	Status     BookingStatus `db:"status"`
}
