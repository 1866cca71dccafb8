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
	"go.uber.org/zap"
)

var ErrOverrideNotFound = errors.New("override not found")

type CarRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error)
	FindOverrides(ctx context.Context, carID uuid.UUID, from, to time.Time) ([]*entity.CarDateOverride, error)
	UpsertOverride(ctx context.Context, override *entity.CarDateOverride) error
	DeleteOverride(ctx context.Context, carID uuid.UUID, date time.Time) error
}

type carRepository struct {
	db  database.PgxIface
	log *zap.Logger
}

func NewCarRepository(db database.PgxIface, log *zap.Logger) CarRepository {
	return &carRepository{
		db:  db,
		log: log.With(zap.String("repository", "car")),
	}
}

func (r *carRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Car, error) {
	query := `
		SELECT id, host_id, make, model, year, nightly_price, discounts, weekly_days,
		       open_time, close_time, created_at, updated_at, deleted_at
		FROM cars
		WHERE id = $1 AND deleted_at IS NULL
	`

	var car entity.Car
	err := r.db.QueryRow(ctx, query, id).Scan(
		&car.ID,
		&car.HostID,
		&car.Make,
		&car.Model,
		&car.Year,
		&car.NightlyPrice,
		&car.Discounts,
		&car.WeeklyDays,
		&car.OpenTime,
		&car.CloseTime,
		&car.CreatedAt,
		&car.UpdatedAt,
		&car.DeletedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find car by ID",
			zap.Error(err),
			zap.String("car_id", id.String()),
		)
		return nil, fmt.Errorf("find car by ID %s: %w", id.String(), err)
	}

	return &car, nil
}

func (r *carRepository) FindOverrides(ctx context.Context, carID uuid.UUID, from, to time.Time) ([]*entity.CarDateOverride, error) {
	query := `
		SELECT car_id, date, is_available, updated_at
		FROM car_date_overrides
		WHERE car_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date
	`

	rows, err := r.db.Query(ctx, query, carID, from, to)
	if err != nil {
		r.log.Error("Failed to find car overrides",
			zap.Error(err),
			zap.String("car_id", carID.String()),
			zap.Time("from", from),
			zap.Time("to", to),
		)
		return nil, fmt.Errorf("find overrides for car %s: %w", carID.String(), err)
	}
	defer rows.Close()

	var overrides []*entity.CarDateOverride
	for rows.Next() {
		var o entity.CarDateOverride
		if err := rows.Scan(&o.CarID, &o.Date, &o.IsAvailable, &o.UpdatedAt); err != nil {
			r.log.Error("Failed to scan override row", zap.Error(err))
			return nil, fmt.Errorf("scan override row: %w", err)
		}
		overrides = append(overrides, &o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate override rows: %w", err)
	}

	return overrides, nil
}

func (r *carRepository) UpsertOverride(ctx context.Context, override *entity.CarDateOverride) error {
	query := `
		INSERT INTO car_date_overrides (car_id, date, is_available, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (car_id, date)
		DO UPDATE SET is_available = EXCLUDED.is_available, updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.Exec(ctx, query,
		override.CarID,
		override.Date,
		override.IsAvailable,
		override.UpdatedAt,
	)
	if err != nil {
		r.log.Error("Failed to upsert override",
			zap.Error(err),
			zap.String("car_id", override.CarID.String()),
			zap.Time("date", override.Date),
		)
		return fmt.Errorf("upsert override for car %s: %w", override.CarID.String(), err)
	}

	return nil
}

func (r *carRepository) DeleteOverride(ctx context.Context, carID uuid.UUID, date time.Time) error {
	query := `DELETE FROM car_date_overrides WHERE car_id = $1 AND date = $2`

	result, err := r.db.Exec(ctx, query, carID, date)
	if err != nil {
		r.log.Error("Failed to delete override",
			zap.Error(err),
			zap.String("car_id", carID.String()),
		)
		return fmt.Errorf("delete override for car %s: %w", carID.String(), err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("override for car %s on %s: %w", carID.String(), date.Format("2006-01-02"), ErrOverrideNotFound)
	}

	return nil
}
