package request

type CreateBookingRequest struct {
	CarID     string `json:"car_id" validate:"required,uuid"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}
