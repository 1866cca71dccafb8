package response

import (
	"time"

	"car-rental/internal/data/entity"
)

type BookingResponse struct {
	ID         string               `json:"id"`
	OrderID    string               `json:"order_id"`
	UserID     string               `json:"user_id"`
	CarID      string               `json:"car_id"`
	StartDate  string               `json:"start_date"`
	EndDate    string               `json:"end_date"`
	Nights     int                  `json:"nights"`
	TotalPrice float64              `json:"total_price"`
	Status     entity.BookingStatus `json:"status"`
	CreatedAt  time.Time            `json:"created_at"`
}

func BookingToResponse(b *entity.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID.String(),
		OrderID:    b.OrderID,
		UserID:     b.UserID.String(),
		CarID:      b.CarID.String(),
		StartDate:  b.StartDate.Format("2006-01-02"),
		EndDate:    b.EndDate.Format("2006-01-02"),
		Nights:     b.Nights,
		TotalPrice: b.TotalPrice,
		Status:     b.Status,
		CreatedAt:  b.CreatedAt,
	}
}
