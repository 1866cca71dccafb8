package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"car-rental/internal/data/entity"
	"car-rental/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// exclusion_violation, raised by bookings_no_overlap
const pgExclusionViolation = "23P01"

var (
	ErrBookingOverlap  = errors.New("booking overlaps an active booking")
	ErrCarNotFound     = errors.New("car not found")
	ErrStatusForbidden = errors.New("booking status does not allow this transition")
)

type BookingRepository interface {
	// CreateIfNoOverlap inserts the booking unless an active booking of the same car
	// shares a day with it. The check and the insert are atomic.
	CreateIfNoOverlap(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindActiveByCarID(ctx context.Context, carID uuid.UUID, from, to time.Time) ([]*entity.Booking, error)
	FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error)
	CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error)

	// TransitionStatus moves a booking to status only if its current status is one of from.
	TransitionStatus(ctx context.Context, bookingID uuid.UUID, from []entity.BookingStatus, to entity.BookingStatus) error
}

type bookingRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewBookingRepository(db database.PgxIface, log *zap.Logger) BookingRepository {
	return &bookingRepository{
		db:  db,
		log: log.With(zap.String("repository", "booking")),
	}
}

const bookingColumns = `id, order_id, user_id, car_id, start_date, end_date, nights, total_price, status, created_at, updated_at`

func scanBooking(row pgx.Row) (*entity.Booking, error) {
	var booking entity.Booking
	err := row.Scan(
		&booking.ID,
		&booking.OrderID,
		&booking.UserID,
		&booking.CarID,
		&booking.StartDate,
		&booking.EndDate,
		&booking.Nights,
		&booking.TotalPrice,
		&booking.Status,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) CreateIfNoOverlap(ctx context.Context, booking *entity.Booking) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.log.Error("Failed to begin booking transaction", zap.Error(err))
		return fmt.Errorf("begin booking transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Serialize writers per car; concurrent submissions for other cars are not blocked.
	var locked uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM cars WHERE id = $1 AND deleted_at IS NULL FOR UPDATE`,
		booking.CarID,
	).Scan(&locked)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("lock car %s: %w", booking.CarID, ErrCarNotFound)
	}
	if err != nil {
		r.log.Error("Failed to lock car row", zap.Error(err), zap.String("car_id", booking.CarID.String()))
		return fmt.Errorf("lock car %s: %w", booking.CarID, err)
	}

	var overlapping bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE car_id = $1
			  AND status IN ('pending', 'confirmed')
			  AND start_date <= $3
			  AND end_date >= $2
		)
	`, booking.CarID, booking.StartDate, booking.EndDate).Scan(&overlapping)
	if err != nil {
		r.log.Error("Failed to check booking overlap", zap.Error(err), zap.String("car_id", booking.CarID.String()))
		return fmt.Errorf("check overlap for car %s: %w", booking.CarID, err)
	}
	if overlapping {
		return fmt.Errorf("create booking %s: %w", booking.OrderID, ErrBookingOverlap)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO bookings (id, order_id, user_id, car_id, start_date, end_date, nights, total_price, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		booking.ID,
		booking.OrderID,
		booking.UserID,
		booking.CarID,
		booking.StartDate,
		booking.EndDate,
		booking.Nights,
		booking.TotalPrice,
		booking.Status,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if isExclusionViolation(err) {
		return fmt.Errorf("create booking %s: %w", booking.OrderID, ErrBookingOverlap)
	}
	if err != nil {
		r.log.Error("Failed to create booking",
			zap.Error(err),
			zap.String("order_id", booking.OrderID),
			zap.String("user_id", booking.UserID.String()),
		)
		return fmt.Errorf("create booking %s: %w", booking.OrderID, err)
	}

	if err = tx.Commit(ctx); err != nil {
		if isExclusionViolation(err) {
			return fmt.Errorf("commit booking %s: %w", booking.OrderID, ErrBookingOverlap)
		}
		r.log.Error("Failed to commit booking", zap.Error(err), zap.String("order_id", booking.OrderID))
		return fmt.Errorf("commit booking %s: %w", booking.OrderID, err)
	}

	return nil
}

func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(r.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find booking by ID",
			zap.Error(err),
			zap.String("booking_id", id.String()),
		)
		return nil, fmt.Errorf("find booking by ID %s: %w", id.String(), err)
	}

	return booking, nil
}

func (r *bookingRepository) FindActiveByCarID(ctx context.Context, carID uuid.UUID, from, to time.Time) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE car_id = $1
		  AND status IN ('pending', 'confirmed')
		  AND start_date <= $3
		  AND end_date >= $2
		ORDER BY start_date
	`

	rows, err := r.db.Query(ctx, query, carID, from, to)
	if err != nil {
		r.log.Error("Failed to find active bookings by car ID",
			zap.Error(err),
			zap.String("car_id", carID.String()),
		)
		return nil, fmt.Errorf("find active bookings by car ID %s: %w", carID.String(), err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *bookingRepository) FindByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*entity.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`

	rows, err := r.db.Query(ctx, query, userID, limit, offset)
	if err != nil {
		r.log.Error("Failed to find bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
			zap.Int("limit", limit),
			zap.Int("offset", offset),
		)
		return nil, fmt.Errorf("find bookings by user ID %s: %w", userID.String(), err)
	}
	defer rows.Close()

	return r.collect(rows)
}

func (r *bookingRepository) collect(rows pgx.Rows) ([]*entity.Booking, error) {
	var bookings []*entity.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			r.log.Error("Failed to scan booking row", zap.Error(err))
			return nil, fmt.Errorf("scan booking row: %w", err)
		}
		bookings = append(bookings, booking)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate booking rows: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) CountByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	query := `SELECT COUNT(*) FROM bookings WHERE user_id = $1`

	var count int64
	err := r.db.QueryRow(ctx, query, userID).Scan(&count)
	if err != nil {
		r.log.Error("Failed to count bookings by user ID",
			zap.Error(err),
			zap.String("user_id", userID.String()),
		)
		return 0, fmt.Errorf("count bookings by user ID %s: %w", userID.String(), err)
	}

	return count, nil
}

func (r *bookingRepository) TransitionStatus(ctx context.Context, bookingID uuid.UUID, from []entity.BookingStatus, to entity.BookingStatus) error {
	query := `UPDATE bookings SET status = $2, updated_at = NOW() WHERE id = $1 AND status = ANY($3)`

	allowed := make([]string, len(from))
	for i, s := range from {
		allowed[i] = string(s)
	}

	result, err := r.db.Exec(ctx, query, bookingID, to, allowed)
	if err != nil {
		r.log.Error("Failed to update booking status",
			zap.Error(err),
			zap.String("booking_id", bookingID.String()),
			zap.String("status", string(to)),
		)
		return fmt.Errorf("update booking %s status to %s: %w", bookingID.String(), string(to), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking %s to %s: %w", bookingID.String(), string(to), ErrStatusForbidden)
	}

	return nil
}
