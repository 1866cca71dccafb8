package adaptor

import (
	"errors"
	"net/http"

	"car-rental/internal/usecase"
	"car-rental/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Car     *CarHandler
	Booking *BookingHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		Car:     NewCarHandler(service.Car, service.Availability, service.Pricing, log),
		Booking: NewBookingHandler(service.Booking, log),
	}
}

// rejection is the error payload; Reason lets clients branch without parsing messages.
type rejection struct {
	Reason string `json:"reason"`
}

// handleServiceError maps usecase rejections onto HTTP statuses.
func handleServiceError(w http.ResponseWriter, log *zap.Logger, err error, operation string) {
	reason := usecase.ReasonOf(err)
	fields := []zap.Field{zap.Error(err), zap.String("operation", operation), zap.String("reason", reason)}

	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		log.Warn("Invalid input for "+operation, fields...)
		utils.ResponseBadRequest(w, err.Error(), rejection{Reason: reason})

	case errors.Is(err, usecase.ErrNotFound):
		log.Warn(operation+" failed - not found", fields...)
		utils.ResponseNotFound(w, err.Error(), rejection{Reason: reason})

	case errors.Is(err, usecase.ErrConflict):
		log.Info(operation+" rejected - conflict", fields...)
		utils.ResponseConflict(w, err.Error(), rejection{Reason: reason})

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", fields...)
		utils.ResponseJSON(w, http.StatusForbidden, false, err.Error(), nil, rejection{Reason: reason})

	case errors.Is(err, usecase.ErrPersistence):
		log.Error("Failed to "+operation, fields...)
		utils.ResponseServiceUnavailable(w, "Storage temporarily unavailable, please retry", rejection{Reason: reason})

	case errors.Is(err, usecase.ErrCarMisconfigured):
		log.Error(operation+" failed - car misconfigured", fields...)
		utils.ResponseJSON(w, http.StatusInternalServerError, false, "Car configuration is invalid", nil, rejection{Reason: reason})

	default:
		log.Error("Failed to "+operation, fields...)
		utils.ResponseInternalError(w, "Internal server error")
	}
}
