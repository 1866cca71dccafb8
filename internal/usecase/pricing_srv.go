package usecase

import (
	"context"
	"fmt"

	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/scheduling"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PricingService interface {
	Quote(ctx context.Context, carID string, req *request.DateRangeRequest) (*response.QuoteResponse, error)
}

type pricingService struct {
	carRepo repository.CarRepository
	log     *zap.Logger
}

func NewPricingService(carRepo repository.CarRepository, log *zap.Logger) PricingService {
	return &pricingService{
		carRepo: carRepo,
		log:     log.With(zap.String("service", "pricing")),
	}
}

func (s *pricingService) Quote(ctx context.Context, carID string, req *request.DateRangeRequest) (*response.QuoteResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidInput("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(carID)
	if err != nil {
		return nil, invalidInput("invalid car ID format %s", carID)
	}

	r, err := scheduling.ParseBoundedRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, rejectedInput(err)
	}

	car, err := s.carRepo.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to find car for quote", zap.Error(err), zap.String("car_id", carID))
		return nil, persistence("find car", err)
	}
	if car == nil {
		return nil, notFound("car %s", carID)
	}

	quote, err := scheduling.Quote(car.NightlyPrice, car.Discounts, r)
	if err != nil {
		s.log.Error("Car has unusable pricing", zap.Error(err), zap.String("car_id", carID))
		return nil, fmt.Errorf("%w: quote car %s: %w", ErrCarMisconfigured, carID, err)
	}

	return &response.QuoteResponse{
		CarID:      id.String(),
		StartDate:  r.Start.String(),
		EndDate:    r.End.String(),
		PriceQuote: quote,
	}, nil
}
