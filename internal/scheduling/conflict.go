package scheduling

import (
	"fmt"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
)

// Active bookings block availability; cancelled ones are ignored.
func (s BookingStatus) Active() bool {
	return s == StatusPending || s == StatusConfirmed
}

// BookingSpan is the part of a booking the scheduler cares about.
type BookingSpan struct {
	ID     uuid.UUID
	Range  DateRange
	Status BookingStatus
}

// FindConflicts returns the active bookings overlapping proposed, in input order.
func FindConflicts(bookings []BookingSpan, proposed DateRange) ([]BookingSpan, error) {
	if !proposed.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidRange, proposed)
	}

	var conflicts []BookingSpan
	for _, b := range bookings {
		if !b.Status.Active() {
			continue
		}
		if proposed.Overlaps(b.Range) {
			conflicts = append(conflicts, b)
		}
	}
	return conflicts, nil
}

// IsBookable reports whether no active booking overlaps proposed.
func IsBookable(bookings []BookingSpan, proposed DateRange) (bool, error) {
	conflicts, err := FindConflicts(bookings, proposed)
	if err != nil {
		return false, err
	}
	return len(conflicts) == 0, nil
}
