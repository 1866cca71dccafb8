package request

// MonthRequest selects a calendar month; Month is zero based (0 = January).
type MonthRequest struct {
	Year  int `json:"year" validate:"min=1970,max=9999"`
	Month int `json:"month" validate:"min=0,max=11"`
}

type DateRangeRequest struct {
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type SetOverrideRequest struct {
	Date  string `json:"date" validate:"required,datetime=2006-01-02"`
	State string `json:"state" validate:"required,oneof=available unavailable"`
}
