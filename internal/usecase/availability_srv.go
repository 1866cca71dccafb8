package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/dto/response"
	"car-rental/internal/scheduling"
	"car-rental/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type AvailabilityService interface {
	GetMonthAvailability(ctx context.Context, carID string, req *request.MonthRequest) (*response.AvailabilityResponse, error)
	CheckRange(ctx context.Context, carID string, req *request.DateRangeRequest) (*response.ConflictResponse, error)
}

type availabilityService struct {
	repo *repository.Repository
	log  *zap.Logger
}

func NewAvailabilityService(repo *repository.Repository, log *zap.Logger) AvailabilityService {
	return &availabilityService{
		repo: repo,
		log:  log.With(zap.String("service", "availability")),
	}
}

func (s *availabilityService) GetMonthAvailability(ctx context.Context, carID string, req *request.MonthRequest) (*response.AvailabilityResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidInput("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(carID)
	if err != nil {
		return nil, invalidInput("invalid car ID format %s", carID)
	}

	days, err := scheduling.DaysInMonth(req.Year, req.Month)
	if err != nil {
		return nil, invalidInput("%v", err)
	}
	first := scheduling.NewDate(req.Year, time.Month(req.Month+1), 1)
	window := scheduling.DateRange{Start: first, End: first.AddDays(days - 1)}

	sched, err := loadSchedule(ctx, s.repo, id, window)
	if err != nil {
		s.logLoadError(err, carID)
		return nil, err
	}

	result, err := scheduling.MonthAvailability(sched.rules(), sched.spans(), req.Year, req.Month)
	if err != nil {
		return nil, invalidInput("%v", err)
	}

	s.log.Debug("Month availability computed",
		zap.String("car_id", carID),
		zap.Int("year", req.Year),
		zap.Int("month", req.Month),
		zap.Int("unavailable", len(scheduling.Unavailable(result))),
	)

	return &response.AvailabilityResponse{
		CarID: id.String(),
		Year:  req.Year,
		Month: req.Month,
		Days:  result,
	}, nil
}

func (s *availabilityService) CheckRange(ctx context.Context, carID string, req *request.DateRangeRequest) (*response.ConflictResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, invalidInput("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	id, err := uuid.Parse(carID)
	if err != nil {
		return nil, invalidInput("invalid car ID format %s", carID)
	}

	proposed, err := scheduling.ParseBoundedRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, rejectedInput(err)
	}

	sched, err := loadSchedule(ctx, s.repo, id, proposed)
	if err != nil {
		s.logLoadError(err, carID)
		return nil, err
	}

	conflicts, err := scheduling.FindConflicts(sched.spans(), proposed)
	if err != nil {
		return nil, invalidInput("%v", err)
	}
	days, err := scheduling.RangeAvailability(sched.rules(), nil, proposed)
	if err != nil {
		return nil, invalidInput("%v", err)
	}
	blocked := scheduling.Unavailable(days)

	return &response.ConflictResponse{
		CarID:       id.String(),
		StartDate:   proposed.Start.String(),
		EndDate:     proposed.End.String(),
		Bookable:    len(conflicts) == 0 && len(blocked) == 0,
		Conflicts:   response.ConflictsToResponse(conflicts),
		Unavailable: blocked,
	}, nil
}

func (s *availabilityService) logLoadError(err error, carID string) {
	if errors.Is(err, ErrPersistence) {
		s.log.Error("Failed to load car schedule", zap.Error(err), zap.String("car_id", carID))
		return
	}
	s.log.Warn("Car schedule unavailable", zap.Error(err), zap.String("car_id", carID))
}

// describeDates renders a short list for error messages.
func describeDates(dates []scheduling.Date) string {
	const limit = 5
	out := ""
	for i, d := range dates {
		if i == limit {
			return out + fmt.Sprintf(" (+%d more)", len(dates)-limit)
		}
		if i > 0 {
			out += ", "
		}
		out += d.String()
	}
	return out
}
