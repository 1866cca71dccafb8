package adaptor

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"car-rental/internal/dto/request"
	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type CarHandler struct {
	cars         usecase.CarService
	availability usecase.AvailabilityService
	pricing      usecase.PricingService
	log          *zap.Logger
}

func NewCarHandler(cars usecase.CarService, availability usecase.AvailabilityService, pricing usecase.PricingService, log *zap.Logger) *CarHandler {
	return &CarHandler{
		cars:         cars,
		availability: availability,
		pricing:      pricing,
		log:          log.With(zap.String("handler", "car")),
	}
}

// GetCar handles GET /api/cars/{id}
func (h *CarHandler) GetCar(w http.ResponseWriter, r *http.Request) {
	car, err := h.cars.GetCar(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, h.log, err, "get car")
		return
	}

	utils.ResponseSuccess(w, "success", car)
}

// GetAvailability handles GET /api/cars/{id}/availability?year=2024&month=2
// month is zero based; both default to the current month.
func (h *CarHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	query := r.URL.Query()

	req := &request.MonthRequest{
		Year:  now.Year(),
		Month: int(now.Month()) - 1,
	}
	if v := query.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			utils.ResponseBadRequest(w, "year must be a number", rejection{Reason: usecase.ReasonInvalidInput})
			return
		}
		req.Year = year
	}
	if v := query.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			utils.ResponseBadRequest(w, "month must be a number", rejection{Reason: usecase.ReasonInvalidInput})
			return
		}
		req.Month = month
	}

	days, err := h.availability.GetMonthAvailability(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, h.log, err, "get availability")
		return
	}

	utils.ResponseSuccess(w, "success", days)
}

// GetQuote handles GET /api/cars/{id}/quote?start_date=..&end_date=..
func (h *CarHandler) GetQuote(w http.ResponseWriter, r *http.Request) {
	quote, err := h.pricing.Quote(r.Context(), chi.URLParam(r, "id"), rangeFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "quote price")
		return
	}

	utils.ResponseSuccess(w, "success", quote)
}

// CheckConflicts handles GET /api/cars/{id}/conflicts?start_date=..&end_date=..
func (h *CarHandler) CheckConflicts(w http.ResponseWriter, r *http.Request) {
	result, err := h.availability.CheckRange(r.Context(), chi.URLParam(r, "id"), rangeFromQuery(r))
	if err != nil {
		handleServiceError(w, h.log, err, "check conflicts")
		return
	}

	utils.ResponseSuccess(w, "success", result)
}

// SetOverride handles PUT /api/cars/{id}/overrides (owning host only)
func (h *CarHandler) SetOverride(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.SetOverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", rejection{Reason: usecase.ReasonInvalidInput})
		return
	}

	override, err := h.cars.SetOverride(r.Context(), userID.String(), chi.URLParam(r, "id"), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "set override")
		return
	}

	utils.ResponseSuccess(w, "success", override)
}

// DeleteOverride handles DELETE /api/cars/{id}/overrides/{date} (owning host only)
func (h *CarHandler) DeleteOverride(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	err := h.cars.DeleteOverride(r.Context(), userID.String(), chi.URLParam(r, "id"), chi.URLParam(r, "date"))
	if err != nil {
		handleServiceError(w, h.log, err, "delete override")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}

func rangeFromQuery(r *http.Request) *request.DateRangeRequest {
	query := r.URL.Query()
	return &request.DateRangeRequest{
		StartDate: query.Get("start_date"),
		EndDate:   query.Get("end_date"),
	}
}
