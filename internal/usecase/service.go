package usecase

import (
	"car-rental/internal/data/repository"

	"go.uber.org/zap"
)

type Service struct {
	Car          CarService
	Availability AvailabilityService
	Pricing      PricingService
	Booking      BookingService
}

func NewService(repo *repository.Repository, log *zap.Logger) *Service {
	return &Service{
		Car:          NewCarService(repo.Car, log),
		Availability: NewAvailabilityService(repo, log),
		Pricing:      NewPricingService(repo.Car, log),
		Booking:      NewBookingService(repo, log),
	}
}
