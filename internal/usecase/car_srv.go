package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/scheduling"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CarService interface {
	GetCar(ctx context.Context, carID string) (*response.CarResponse, error)

	// Host-only: hostID must own the car.
	SetOverride(ctx context.Context, hostID, carID string, req *request.SetOverrideRequest) (*response.OverrideResponse, error)
	DeleteOverride(ctx context.Context, hostID, carID, date string) error
}

type carService struct {
	carRepo repository.CarRepository
	log     *zap.Logger
}

func NewCarService(carRepo repository.CarRepository, log *zap.Logger) CarService {
	return &carService{
		carRepo: carRepo,
		log:     log.With(zap.String("service", "car")),
	}
}

func (s *carService) GetCar(ctx context.Context, carID string) (*response.CarResponse, error) {
	car, err := s.findCar(ctx, carID)
	if err != nil {
		return nil, err
	}

	resp := response.CarToResponse(car)
	return &resp, nil
}

func (s *carService) SetOverride(ctx context.Context, hostID, carID string, req *request.SetOverrideRequest) (*response.OverrideResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidInput("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		return nil, invalidInput("%v", err)
	}
	state := scheduling.OverrideState(req.State)
	if !state.Valid() {
		return nil, invalidInput("unknown override state %q", req.State)
	}

	car, err := s.ownedCar(ctx, hostID, carID)
	if err != nil {
		return nil, err
	}

	override := &entity.CarDateOverride{
		CarID:       car.ID,
		Date:        date.Time(),
		IsAvailable: state == scheduling.OverrideAvailable,
		UpdatedAt:   time.Now(),
	}
	if err := s.carRepo.UpsertOverride(ctx, override); err != nil {
		return nil, persistence("set override", err)
	}

	s.log.Info("Availability override set",
		zap.String("car_id", carID),
		zap.String("date", date.String()),
		zap.String("state", string(state)),
	)

	return &response.OverrideResponse{CarID: car.ID.String(), Date: date.String(), State: state}, nil
}

func (s *carService) DeleteOverride(ctx context.Context, hostID, carID, date string) error {
	d, err := scheduling.ParseDate(date)
	if err != nil {
		return invalidInput("%v", err)
	}

	car, err := s.ownedCar(ctx, hostID, carID)
	if err != nil {
		return err
	}

	if err := s.carRepo.DeleteOverride(ctx, car.ID, d.Time()); err != nil {
		if errors.Is(err, repository.ErrOverrideNotFound) {
			return notFound("override for car %s on %s", carID, d)
		}
		return persistence("delete override", err)
	}

	s.log.Info("Availability override removed", zap.String("car_id", carID), zap.String("date", d.String()))
	return nil
}

func (s *carService) ownedCar(ctx context.Context, hostID, carID string) (*entity.Car, error) {
	host, err := uuid.Parse(hostID)
	if err != nil {
		return nil, invalidInput("invalid host ID format %s", hostID)
	}

	car, err := s.findCar(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.HostID != host {
		s.log.Warn("Override attempt by non-owner", zap.String("car_id", carID), zap.String("user_id", hostID))
		return nil, fmt.Errorf("%w: car %s is not owned by %s", ErrForbidden, carID, hostID)
	}
	return car, nil
}

func (s *carService) findCar(ctx context.Context, carID string) (*entity.Car, error) {
	id, err := uuid.Parse(carID)
	if err != nil {
		return nil, invalidInput("invalid car ID format %s", carID)
	}

	car, err := s.carRepo.FindByID(ctx, id)
	if err != nil {
		return nil, persistence("find car", err)
	}
	if car == nil {
		return nil, notFound("car %s", carID)
	}
	return car, nil
}
