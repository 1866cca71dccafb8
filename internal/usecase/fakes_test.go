package usecase

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/internal/data/repository"

	"github.com/google/uuid"
)

var errStoreDown = errors.New("connection refused")

type fakeCarRepo struct {
	mu        sync.Mutex
	cars      map[uuid.UUID]*entity.Car
	overrides map[uuid.UUID]map[time.Time]*entity.CarDateOverride
	findErr   error
	calls     int
}

func newFakeCarRepo(cars ...*entity.Car) *fakeCarRepo {
	r := &fakeCarRepo{
		cars:      make(map[uuid.UUID]*entity.Car),
		overrides: make(map[uuid.UUID]map[time.Time]*entity.CarDateOverride),
	}
	for _, c := range cars {
		r.cars[c.ID] = c
	}
	return r
}

func (r *fakeCarRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Car, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.cars[id], nil
}

func (r *fakeCarRepo) FindOverrides(_ context.Context, carID uuid.UUID, from, to time.Time) ([]*entity.CarDateOverride, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*entity.CarDateOverride
	for d, o := range r.overrides[carID] {
		if !d.Before(from) && !d.After(to) {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (r *fakeCarRepo) UpsertOverride(_ context.Context, o *entity.CarDateOverride) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.overrides[o.CarID] == nil {
		r.overrides[o.CarID] = make(map[time.Time]*entity.CarDateOverride)
	}
	r.overrides[o.CarID][o.Date] = o
	return nil
}

func (r *fakeCarRepo) DeleteOverride(_ context.Context, carID uuid.UUID, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.overrides[carID][date]; !ok {
		return repository.ErrOverrideNotFound
	}
	delete(r.overrides[carID], date)
	return nil
}

// fakeBookingRepo serialises CreateIfNoOverlap the way the row lock does in Postgres.
type fakeBookingRepo struct {
	mu        sync.Mutex
	bookings  map[uuid.UUID]*entity.Booking
	cars      *fakeCarRepo
	createErr error
	findErr   error
	creates   int

	// beforeCreate runs after the read path and before the insert lock is taken.
	beforeCreate func()
}

func newFakeBookingRepo(cars *fakeCarRepo, existing ...*entity.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking), cars: cars}
	for _, b := range existing {
		r.bookings[b.ID] = b
	}
	return r
}

func overlaps(b *entity.Booking, start, end time.Time) bool {
	return !b.StartDate.After(end) && !start.After(b.EndDate)
}

func (r *fakeBookingRepo) CreateIfNoOverlap(_ context.Context, booking *entity.Booking) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.creates++
	if r.createErr != nil {
		return r.createErr
	}
	if _, ok := r.cars.cars[booking.CarID]; !ok {
		return repository.ErrCarNotFound
	}
	for _, b := range r.bookings {
		if b.CarID == booking.CarID && b.Status.Active() && overlaps(b, booking.StartDate, booking.EndDate) {
			return repository.ErrBookingOverlap
		}
	}
	r.bookings[booking.ID] = booking
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	return r.bookings[id], nil
}

func (r *fakeBookingRepo) FindActiveByCarID(_ context.Context, carID uuid.UUID, from, to time.Time) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.CarID == carID && b.Status.Active() && overlaps(b, from, to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) userBookings(userID uuid.UUID) []*entity.Booking {
	var out []*entity.Booking
	for _, b := range r.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *fakeBookingRepo) FindByUserID(_ context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	all := r.userBookings(userID)
	if offset >= len(all) {
		return nil, nil
	}
	return all[offset:min(offset+limit, len(all))], nil
}

func (r *fakeBookingRepo) CountByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.userBookings(userID))), nil
}

func (r *fakeBookingRepo) TransitionStatus(_ context.Context, id uuid.UUID, from []entity.BookingStatus, to entity.BookingStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok || !slices.Contains(from, b.Status) {
		return repository.ErrStatusForbidden
	}
	b.Status = to
	return nil
}

func (r *fakeBookingRepo) committed() []*entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Booking, 0, len(r.bookings))
	for _, b := range r.bookings {
		out = append(out, b)
	}
	return out
}
