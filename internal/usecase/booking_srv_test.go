package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"
	"car-rental/internal/dto/request"
	"car-rental/internal/scheduling"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := scheduling.ParseDate(s)
	require.NoError(t, err)
	return d.Time()
}

func testCar() *entity.Car {
	return &entity.Car{
		Base:         entity.Base{ID: uuid.New()},
		HostID:       uuid.New(),
		Make:         "Toyota",
		Model:        "Corolla",
		Year:         2021,
		NightlyPrice: 50,
		Discounts:    []scheduling.DiscountTier{{MinNights: 7, Percent: 10}},
	}
}

func existingBooking(t *testing.T, carID uuid.UUID, start, end string, status entity.BookingStatus) *entity.Booking {
	return &entity.Booking{
		BaseNoDelete: entity.BaseNoDelete{ID: uuid.New()},
		UserID:       uuid.New(),
		CarID:        carID,
		StartDate:    day(t, start),
		EndDate:      day(t, end),
		Status:       status,
	}
}

type bookingFixture struct {
	car      *entity.Car
	cars     *fakeCarRepo
	bookings *fakeBookingRepo
	svc      BookingService
}

func newBookingFixture(t *testing.T, existing ...func(carID uuid.UUID) *entity.Booking) *bookingFixture {
	t.Helper()
	car := testCar()
	cars := newFakeCarRepo(car)
	bookings := newFakeBookingRepo(cars)
	for _, mk := range existing {
		b := mk(car.ID)
		bookings.bookings[b.ID] = b
	}

	svc := NewBookingService(&repository.Repository{Car: cars, Booking: bookings}, zap.NewNop())
	svc.(*bookingService).now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

	return &bookingFixture{car: car, cars: cars, bookings: bookings, svc: svc}
}

func (f *bookingFixture) request(start, end string) *request.CreateBookingRequest {
	return &request.CreateBookingRequest{CarID: f.car.ID.String(), StartDate: start, EndDate: end}
}

func TestSubmitBookingCommitsPendingBooking(t *testing.T) {
	f := newBookingFixture(t)
	requester := uuid.New()

	resp, err := f.svc.SubmitBooking(context.Background(), requester.String(), f.request("2024-06-01", "2024-06-08"))
	require.NoError(t, err)

	assert.Equal(t, entity.BookingStatusPending, resp.Status)
	assert.Equal(t, requester.String(), resp.UserID)
	assert.Equal(t, "2024-06-01", resp.StartDate)
	assert.Equal(t, "2024-06-08", resp.EndDate)
	assert.Equal(t, 7, resp.Nights)
	assert.Equal(t, 315.0, resp.TotalPrice)
	assert.Regexp(t, `^RENT-20\d{6}-[0-9A-F]{8}$`, resp.OrderID)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), resp.CreatedAt)
	assert.Len(t, f.bookings.committed(), 1)
}

func TestSubmitBookingRejectsOverlap(t *testing.T) {
	f := newBookingFixture(t, func(carID uuid.UUID) *entity.Booking {
		return existingBooking(t, carID, "2024-04-04", "2024-04-10", entity.BookingStatusConfirmed)
	})

	_, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-04-01", "2024-04-05"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, ReasonConflict, ReasonOf(err))
	assert.Zero(t, f.bookings.creates)
}

func TestSubmitBookingSharedBoundaryDayConflicts(t *testing.T) {
	f := newBookingFixture(t, func(carID uuid.UUID) *entity.Booking {
		return existingBooking(t, carID, "2024-04-04", "2024-04-10", entity.BookingStatusPending)
	})

	_, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-04-10", "2024-04-12"))
	assert.ErrorIs(t, err, ErrConflict)
}

func TestSubmitBookingIgnoresCancelled(t *testing.T) {
	f := newBookingFixture(t, func(carID uuid.UUID) *entity.Booking {
		return existingBooking(t, carID, "2024-04-04", "2024-04-10", entity.BookingStatusCancelled)
	})

	_, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-04-01", "2024-04-05"))
	require.NoError(t, err)
	assert.Len(t, f.bookings.committed(), 2)
}

func TestSubmitBookingInvalidRangeTouchesNothing(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-05-10", "2024-05-05"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.Equal(t, ReasonInvalidInput, ReasonOf(err))
	assert.Zero(t, f.cars.calls)
	assert.Zero(t, f.bookings.creates)
}

func TestSubmitBookingRejectsOverlongRange(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("0001-01-01", "9999-12-31"))
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, scheduling.ErrRangeTooLong)
	assert.Zero(t, f.cars.calls)

	_, err = f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2025-01-01", "2025-12-31"))
	assert.NoError(t, err)
}

func TestSubmitBookingAcceptsAnyUUIDVersion(t *testing.T) {
	f := newBookingFixture(t)
	v1 := *f.car
	v1.ID = uuid.Must(uuid.NewUUID())
	f.cars.cars[v1.ID] = &v1

	req := &request.CreateBookingRequest{CarID: v1.ID.String(), StartDate: "2024-06-01", EndDate: "2024-06-03"}
	resp, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), req)
	require.NoError(t, err)
	assert.Equal(t, v1.ID.String(), resp.CarID)
}

func TestSubmitBookingValidation(t *testing.T) {
	f := newBookingFixture(t)

	tests := []struct {
		name      string
		requester string
		req       *request.CreateBookingRequest
	}{
		{"missing requester", "", f.request("2024-06-01", "2024-06-03")},
		{"blank requester", "   ", f.request("2024-06-01", "2024-06-03")},
		{"malformed requester", "not-a-uuid", f.request("2024-06-01", "2024-06-03")},
		{"nil requester", uuid.Nil.String(), f.request("2024-06-01", "2024-06-03")},
		{"missing car", uuid.NewString(), &request.CreateBookingRequest{StartDate: "2024-06-01", EndDate: "2024-06-03"}},
		{"bad car id", uuid.NewString(), &request.CreateBookingRequest{CarID: "car-1", StartDate: "2024-06-01", EndDate: "2024-06-03"}},
		{"missing start", uuid.NewString(), f.request("", "2024-06-03")},
		{"bad date format", uuid.NewString(), f.request("06/01/2024", "2024-06-03")},
		{"impossible date", uuid.NewString(), f.request("2024-02-30", "2024-03-03")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitBooking(context.Background(), tt.requester, tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
	assert.Zero(t, f.bookings.creates)
}

func TestSubmitBookingUnknownCar(t *testing.T) {
	f := newBookingFixture(t)
	req := &request.CreateBookingRequest{CarID: uuid.NewString(), StartDate: "2024-06-01", EndDate: "2024-06-03"}

	_, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), req)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, f.bookings.creates)
}

func TestSubmitBookingHostBlockedDate(t *testing.T) {
	f := newBookingFixture(t)
	require.NoError(t, f.cars.UpsertOverride(context.Background(), &entity.CarDateOverride{
		CarID: f.car.ID,
		Date:  day(t, "2024-06-02"),
	}))

	_, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-06-01", "2024-06-03"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "2024-06-02")
	assert.Zero(t, f.bookings.creates)
}

func TestSubmitBookingClosedWeekday(t *testing.T) {
	f := newBookingFixture(t)
	// weekdays only; 2024-06-08 is a Saturday
	f.car.WeeklyDays = []int32{1, 2, 3, 4, 5}

	_, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-06-06", "2024-06-08"))
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-06-03", "2024-06-07"))
	assert.NoError(t, err)
}

func TestSubmitBookingPersistenceFailures(t *testing.T) {
	t.Run("read", func(t *testing.T) {
		f := newBookingFixture(t)
		f.cars.findErr = errStoreDown

		_, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-06-01", "2024-06-03"))
		assert.ErrorIs(t, err, ErrPersistence)
		assert.ErrorIs(t, err, errStoreDown)
		assert.Equal(t, ReasonPersistenceFailure, ReasonOf(err))
	})

	t.Run("write", func(t *testing.T) {
		f := newBookingFixture(t)
		f.bookings.createErr = errStoreDown

		_, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-06-01", "2024-06-03"))
		assert.ErrorIs(t, err, ErrPersistence)
		assert.Empty(t, f.bookings.committed())
	})
}

func TestSubmitBookingUnusableDiscountsFallBack(t *testing.T) {
	f := newBookingFixture(t)
	f.car.Discounts = []scheduling.DiscountTier{{MinNights: 0, Percent: 150}}

	resp, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-06-01", "2024-06-08"))
	require.NoError(t, err)
	assert.Equal(t, 350.0, resp.TotalPrice)
}

func TestSubmitBookingConcurrentSameRange(t *testing.T) {
	f := newBookingFixture(t)

	// hold both submissions after their conflict check so they race on the insert
	var arrived sync.WaitGroup
	arrived.Add(2)
	f.bookings.beforeCreate = func() {
		arrived.Done()
		arrived.Wait()
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-07-01", "2024-07-04"))
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)
	assert.Len(t, f.bookings.committed(), 1)
}

func TestBookingStatusTransitions(t *testing.T) {
	f := newBookingFixture(t)
	resp, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-06-01", "2024-06-03"))
	require.NoError(t, err)

	require.NoError(t, f.svc.ConfirmBooking(context.Background(), resp.ID))
	got, err := f.svc.GetBookingByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.BookingStatusConfirmed, got.Status)

	assert.ErrorIs(t, f.svc.ConfirmBooking(context.Background(), resp.ID), ErrConflict)

	require.NoError(t, f.svc.CancelBooking(context.Background(), resp.ID))
	assert.ErrorIs(t, f.svc.CancelBooking(context.Background(), resp.ID), ErrConflict)

	// the range is free again
	_, err = f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-06-02", "2024-06-04"))
	assert.NoError(t, err)
}

func TestBookingLookupErrors(t *testing.T) {
	f := newBookingFixture(t)

	_, err := f.svc.GetBookingByID(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.GetBookingByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, f.svc.ConfirmBooking(context.Background(), uuid.NewString()), ErrNotFound)
}

func TestGetUserBookingsPaginates(t *testing.T) {
	f := newBookingFixture(t)
	user := uuid.New()
	for i := 0; i < 3; i++ {
		start := scheduling.NewDate(2024, time.August, 1+i*3)
		_, err := f.svc.SubmitBooking(context.Background(), user.String(), f.request(start.String(), start.AddDays(1).String()))
		require.NoError(t, err)
	}
	_, err := f.svc.SubmitBooking(context.Background(), uuid.NewString(), f.request("2024-09-01", "2024-09-02"))
	require.NoError(t, err)

	page, err := f.svc.GetUserBookings(context.Background(), user.String(), &request.PaginatedRequest{Page: 2, PerPage: 2})
	require.NoError(t, err)
	assert.Len(t, page.Data, 1)
	assert.Equal(t, int64(3), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	_, err = f.svc.GetUserBookings(context.Background(), "nope", &request.PaginatedRequest{Page: 1, PerPage: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestReasonOf(t *testing.T) {
	assert.Equal(t, "", ReasonOf(nil))
	assert.Equal(t, "", ReasonOf(errors.New("boom")))
	assert.Equal(t, ReasonInvalidInput, ReasonOf(invalidInput("bad %s", "thing")))
	assert.Equal(t, ReasonNotFound, ReasonOf(notFound("car %d", 1)))
	assert.Equal(t, ReasonPersistenceFailure, ReasonOf(persistence("op", errStoreDown)))
	assert.Equal(t, ReasonForbidden, ReasonOf(ErrForbidden))
	assert.Equal(t, ReasonCarMisconfigured, ReasonOf(fmt.Errorf("%w: bad tiers", ErrCarMisconfigured)))
}
