package usecase

import (
	"context"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/scheduling"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// carSchedule is everything the scheduler needs about one car inside a window.
type carSchedule struct {
	car       *entity.Car
	overrides []*entity.CarDateOverride
	bookings  []*entity.Booking
}

// loadSchedule reads the car, its overrides and its active bookings for window concurrently.
// A missing car is reported as ErrNotFound, any store failure as ErrPersistence.
func loadSchedule(ctx context.Context, repo *repository.Repository, carID uuid.UUID, window scheduling.DateRange) (*carSchedule, error) {
	var (
		sched = &carSchedule{}
		from  = window.Start.Time()
		to    = window.End.Time()
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		car, err := repo.Car.FindByID(gctx, carID)
		if err != nil {
			return persistence("find car", err)
		}
		if car == nil {
			return notFound("car %s", carID)
		}
		sched.car = car
		return nil
	})
	g.Go(func() error {
		overrides, err := repo.Car.FindOverrides(gctx, carID, from, to)
		if err != nil {
			return persistence("find overrides", err)
		}
		sched.overrides = overrides
		return nil
	})
	g.Go(func() error {
		bookings, err := repo.Booking.FindActiveByCarID(gctx, carID, from, to)
		if err != nil {
			return persistence("find active bookings", err)
		}
		sched.bookings = bookings
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sched, nil
}

func (s *carSchedule) rules() scheduling.CarRules {
	return carRules(s.car, s.overrides)
}

func (s *carSchedule) spans() []scheduling.BookingSpan {
	return bookingSpans(s.bookings)
}

func carRules(car *entity.Car, overrides []*entity.CarDateOverride) scheduling.CarRules {
	weekly := scheduling.WeeklySchedule{Days: make([]time.Weekday, 0, len(car.WeeklyDays))}
	for _, d := range car.WeeklyDays {
		weekly.Days = append(weekly.Days, time.Weekday(d))
	}
	if car.OpenTime != nil {
		weekly.OpenTime = *car.OpenTime
	}
	if car.CloseTime != nil {
		weekly.CloseTime = *car.CloseTime
	}

	rules := scheduling.CarRules{Weekly: weekly, Overrides: make([]scheduling.Override, 0, len(overrides))}
	for _, o := range overrides {
		state := scheduling.OverrideUnavailable
		if o.IsAvailable {
			state = scheduling.OverrideAvailable
		}
		rules.Overrides = append(rules.Overrides, scheduling.Override{Date: scheduling.DateOf(o.Date), State: state})
	}
	return rules
}

func bookingSpans(bookings []*entity.Booking) []scheduling.BookingSpan {
	spans := make([]scheduling.BookingSpan, 0, len(bookings))
	for _, b := range bookings {
		spans = append(spans, scheduling.BookingSpan{
			ID:     b.ID,
			Range:  scheduling.DateRange{Start: scheduling.DateOf(b.StartDate), End: scheduling.DateOf(b.EndDate)},
			Status: b.Status,
		})
	}
	return spans
}
