package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

type BookingService interface {
	// SubmitBooking validates, conflict-checks, prices and stores a pending booking for
	// requesterID. It never retries; a rejection carries one of the Reason* codes.
	SubmitBooking(ctx context.Context, requesterID string, req *request.CreateBookingRequest) (*response.BookingResponse, error)
	GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error)

	// Admin endpoints
	GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error)
	ConfirmBooking(ctx context.Context, bookingID string) error
	CancelBooking(ctx context.Context, bookingID string) error
}

type bookingService struct {
	repo *repository.Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewBookingService(repo *repository.Repository, log *zap.Logger) BookingService {
	return &bookingService{
		repo: repo,
		log:  log.With(zap.String("service", "booking")),
		now:  time.Now,
	}
}

func (s *bookingService) SubmitBooking(ctx context.Context, requesterID string, req *request.CreateBookingRequest) (*response.BookingResponse, error) {
	// Start -> Validated
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Create booking validation failed", zap.Any("errors", errs))
		return nil, invalidInput("validation failed: %s", utils.FormatValidationErrors(errs))
	}

	if strings.TrimSpace(requesterID) == "" {
		return nil, invalidInput("requester identity is required")
	}
	userUUID, err := uuid.Parse(requesterID)
	if err != nil || userUUID == uuid.Nil {
		return nil, invalidInput("invalid requester ID format %s", requesterID)
	}

	carID, err := uuid.Parse(req.CarID)
	if err != nil {
		return nil, invalidInput("invalid car ID format %s", req.CarID)
	}

	proposed, err := scheduling.ParseBoundedRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, rejectedInput(err)
	}

	// Validated -> Bookable
	sched, err := loadSchedule(ctx, s.repo, carID, proposed)
	if err != nil {
		s.log.Warn("Create booking could not load car schedule",
			zap.Error(err),
			zap.String("car_id", req.CarID),
		)
		return nil, err
	}

	conflicts, err := scheduling.FindConflicts(sched.spans(), proposed)
	if err != nil {
		return nil, invalidInput("%v", err)
	}
	if len(conflicts) > 0 {
		s.log.Info("Booking rejected - overlapping booking",
			zap.String("car_id", req.CarID),
			zap.String("range", proposed.String()),
			zap.Int("conflicts", len(conflicts)),
		)
		return nil, fmt.Errorf("%w: car %s is already booked between %s and %s",
			ErrConflict, carID, conflicts[0].Range.Start, conflicts[0].Range.End)
	}

	days, err := scheduling.RangeAvailability(sched.rules(), nil, proposed)
	if err != nil {
		return nil, invalidInput("%v", err)
	}
	if blocked := scheduling.Unavailable(days); len(blocked) > 0 {
		s.log.Info("Booking rejected - host blocked dates",
			zap.String("car_id", req.CarID),
			zap.String("range", proposed.String()),
			zap.Int("blocked", len(blocked)),
		)
		return nil, fmt.Errorf("%w: car %s is not available on %s", ErrConflict, carID, describeDates(blocked))
	}

	// Bookable -> Ready. The price is recorded but never blocks the submission.
	quote := s.priceFor(sched.car, proposed)

	// Ready -> Committed
	now := s.now()
	booking := &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        uuid.New(),
			CreatedAt: now,
			UpdatedAt: now,
		},
		OrderID:    utils.GenerateOrderID(),
		UserID:     userUUID,
		CarID:      carID,
		StartDate:  proposed.Start.Time(),
		EndDate:    proposed.End.Time(),
		Nights:     quote.Nights,
		TotalPrice: quote.Total,
		Status:     entity.BookingStatusPending,
	}

	if err := s.repo.Booking.CreateIfNoOverlap(ctx, booking); err != nil {
		switch {
		case errors.Is(err, repository.ErrBookingOverlap):
			s.log.Info("Booking rejected at write time - overlapping booking",
				zap.String("car_id", req.CarID),
				zap.String("range", proposed.String()),
			)
			return nil, fmt.Errorf("%w: car %s was booked for an overlapping range", ErrConflict, carID)
		case errors.Is(err, repository.ErrCarNotFound):
			return nil, notFound("car %s", carID)
		default:
			s.log.Error("Failed to create booking",
				zap.Error(err),
				zap.String("user_id", requesterID),
				zap.String("car_id", req.CarID),
			)
			return nil, persistence("create booking", err)
		}
	}

	s.log.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("order_id", booking.OrderID),
		zap.String("user_id", requesterID),
		zap.String("car_id", req.CarID),
		zap.String("range", proposed.String()),
		zap.Float64("total_price", booking.TotalPrice),
	)

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

// priceFor quotes the rental, falling back to the undiscounted rate when the car's
// discount schedule is unusable.
func (s *bookingService) priceFor(car *entity.Car, r scheduling.DateRange) scheduling.PriceQuote {
	quote, err := scheduling.Quote(car.NightlyPrice, car.Discounts, r)
	if err == nil {
		return quote
	}
	s.log.Warn("Discount schedule rejected, pricing without discounts",
		zap.Error(err),
		zap.String("car_id", car.ID.String()),
	)

	quote, err = scheduling.Quote(car.NightlyPrice, nil, r)
	if err != nil {
		s.log.Error("Car price unusable, recording zero total",
			zap.Error(err),
			zap.String("car_id", car.ID.String()),
		)
		return scheduling.PriceQuote{Nights: scheduling.BillableNights(r)}
	}
	return quote
}

func (s *bookingService) GetUserBookings(ctx context.Context, userID string, req *request.PaginatedRequest) (*response.PaginatedResponse[response.BookingResponse], error) {
	userUUID, err := uuid.Parse(userID)
	if err != nil {
		return nil, invalidInput("invalid user ID format %s", userID)
	}

	limit := req.Limit()
	offset := req.Offset()

	bookings, err := s.repo.Booking.FindByUserID(ctx, userUUID, limit, offset)
	if err != nil {
		s.log.Error("Failed to get user bookings",
			zap.Error(err),
			zap.String("user_id", userID),
			zap.Int("page", req.Page),
			zap.Int("per_page", req.PerPage),
		)
		return nil, persistence("get user bookings", err)
	}

	total, err := s.repo.Booking.CountByUserID(ctx, userUUID)
	if err != nil {
		s.log.Error("Failed to count user bookings", zap.Error(err))
		return nil, persistence("count user bookings", err)
	}

	bookingResponses := make([]response.BookingResponse, len(bookings))
	for i, booking := range bookings {
		bookingResponses[i] = response.BookingToResponse(booking)
	}

	s.log.Info("User bookings retrieved",
		zap.String("user_id", userID),
		zap.Int("count", len(bookings)),
		zap.Int64("total", total),
	)

	return response.NewPaginatedResponse(bookingResponses, req.Page, limit, total), nil
}

// ==================== ADMIN METHODS ====================

func (s *bookingService) GetBookingByID(ctx context.Context, bookingID string) (*response.BookingResponse, error) {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	resp := response.BookingToResponse(booking)
	return &resp, nil
}

func (s *bookingService) ConfirmBooking(ctx context.Context, bookingID string) error {
	return s.transition(ctx, bookingID,
		[]entity.BookingStatus{entity.BookingStatusPending},
		entity.BookingStatusConfirmed,
	)
}

func (s *bookingService) CancelBooking(ctx context.Context, bookingID string) error {
	return s.transition(ctx, bookingID,
		[]entity.BookingStatus{entity.BookingStatusPending, entity.BookingStatusConfirmed},
		entity.BookingStatusCancelled,
	)
}

func (s *bookingService) transition(ctx context.Context, bookingID string, from []entity.BookingStatus, to entity.BookingStatus) error {
	booking, err := s.findBooking(ctx, bookingID)
	if err != nil {
		return err
	}

	if err := s.repo.Booking.TransitionStatus(ctx, booking.ID, from, to); err != nil {
		if errors.Is(err, repository.ErrStatusForbidden) {
			return fmt.Errorf("%w: booking %s is %s, cannot move to %s", ErrConflict, bookingID, booking.Status, to)
		}
		s.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID),
			zap.String("status", string(to)),
		)
		return persistence("update booking status", err)
	}

	s.log.Info("Booking status changed",
		zap.String("booking_id", bookingID),
		zap.String("order_id", booking.OrderID),
		zap.String("from", string(booking.Status)),
		zap.String("to", string(to)),
	)
	return nil
}

func (s *bookingService) findBooking(ctx context.Context, bookingID string) (*entity.Booking, error) {
	id, err := uuid.Parse(bookingID)
	if err != nil {
		return nil, invalidInput("invalid booking ID format %s", bookingID)
	}

	booking, err := s.repo.Booking.FindByID(ctx, id)
	if err != nil {
		return nil, persistence("find booking", err)
	}
	if booking == nil {
		return nil, notFound("booking %s", bookingID)
	}
	return booking, nil
}
