package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// VehicleRepo defines the persistence operations for week-scoped car usage.
type VehicleRepo interface {
	// GetByWeek returns the vehicle record for one (year, ISO week).
	// Returns domain.ErrNotFound when the week has no record.
	GetByWeek(ctx context.Context, year, week int) (domain.VehicleWeek, error)

	// Upsert inserts or replaces the record for its (year, week) and
	// returns the persisted record.
	Upsert(ctx context.Context, vw domain.VehicleWeek) (domain.VehicleWeek, error)
}

// pgVehicleRepo is the Postgres implementation of VehicleRepo.
type pgVehicleRepo struct {
	db db
}

// NewVehicleRepo constructs a VehicleRepo backed by the provided db connection.
func NewVehicleRepo(db db) VehicleRepo {
	return &pgVehicleRepo{db: db}
}

func (r *pgVehicleRepo) GetByWeek(ctx context.Context, year, week int) (domain.VehicleWeek, error) {
	const q = `
		SELECT id, year, week, kennzeichen, kennzeichen2, km_stand, km_gefahren
		FROM vehicle_weeks
		WHERE year = @year AND week = @week`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"year": year, "week": week})
	vw, err := scanVehicleWeek(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.VehicleWeek{}, fmt.Errorf("repo.VehicleRepo.GetByWeek: %w", domain.ErrNotFound)
		}
		return domain.VehicleWeek{}, fmt.Errorf("repo.VehicleRepo.GetByWeek: %w", err)
	}
	return vw, nil
}

func (r *pgVehicleRepo) Upsert(ctx context.Context, vw domain.VehicleWeek) (domain.VehicleWeek, error) {
	const q = `
		INSERT INTO vehicle_weeks (year, week, kennzeichen, kennzeichen2, km_stand, km_gefahren)
		VALUES (@year, @week, @kennzeichen, @kennzeichen2, @km_stand, @km_gefahren)
		ON CONFLICT (year, week) DO UPDATE SET
			kennzeichen  = EXCLUDED.kennzeichen,
			kennzeichen2 = EXCLUDED.kennzeichen2,
			km_stand     = EXCLUDED.km_stand,
			km_gefahren  = EXCLUDED.km_gefahren
		RETURNING id, year, week, kennzeichen, kennzeichen2, km_stand, km_gefahren`

	args := pgx.NamedArgs{
		"year":         vw.Year,
		"week":         vw.Week,
		"kennzeichen":  vw.Kennzeichen,
		"kennzeichen2": vw.Kennzeichen2,
		"km_stand":     vw.KmStand,
		"km_gefahren":  vw.KmGefahren,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanVehicleWeek(row)
	if err != nil {
		return domain.VehicleWeek{}, fmt.Errorf("repo.VehicleRepo.Upsert: %w", err)
	}
	return result, nil
}

// scanVehicleWeek maps one row onto a domain.VehicleWeek.
func scanVehicleWeek(row pgx.Row) (domain.VehicleWeek, error) {
	var vw domain.VehicleWeek
	err := row.Scan(&vw.ID, &vw.Year, &vw.Week, &vw.Kennzeichen, &vw.Kennzeichen2, &vw.KmStand, &vw.KmGefahren)
	if err != nil {
		return domain.VehicleWeek{}, err
	}
	return vw, nil
}
