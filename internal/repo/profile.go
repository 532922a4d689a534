package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// ProfileRepo defines the persistence operations for the employee profile.
// The service layer depends on this interface, not the concrete Postgres
// implementation, which allows the service to be unit-tested with a mock.
type ProfileRepo interface {
	// GetLatest returns the most recently updated profile row.
	// Returns domain.ErrNotFound when no profile has been saved yet.
	GetLatest(ctx context.Context) (domain.Profile, error)

	// Save inserts a new profile row and returns the persisted record.
	// The latest row wins; older rows are kept as history.
	Save(ctx context.Context, profile domain.Profile) (domain.Profile, error)
}

// pgProfileRepo is the Postgres implementation of ProfileRepo.
type pgProfileRepo struct {
	db db
}

// NewProfileRepo constructs a ProfileRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewProfileRepo(db db) ProfileRepo {
	return &pgProfileRepo{db: db}
}

func (r *pgProfileRepo) GetLatest(ctx context.Context) (domain.Profile, error) {
	const q = `
		SELECT id, name, vorname, arbeitsstaette_projekte, art_der_arbeit,
		       kennzeichen, kennzeichen2, created_at, updated_at
		FROM profiles
		ORDER BY updated_at DESC
		LIMIT 1`

	row := r.db.QueryRow(ctx, q)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.GetLatest: %w", domain.ErrNotFound)
		}
		return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.GetLatest: %w", err)
	}
	return profile, nil
}

func (r *pgProfileRepo) Save(ctx context.Context, profile domain.Profile) (domain.Profile, error) {
	const q = `
		INSERT INTO profiles (name, vorname, arbeitsstaette_projekte, art_der_arbeit, kennzeichen, kennzeichen2)
		VALUES (@name, @vorname, @arbeitsstaette_projekte, @art_der_arbeit, @kennzeichen, @kennzeichen2)
		RETURNING id, name, vorname, arbeitsstaette_projekte, art_der_arbeit,
		          kennzeichen, kennzeichen2, created_at, updated_at`

	args := pgx.NamedArgs{
		"name":                    profile.Name,
		"vorname":                 profile.Vorname,
		"arbeitsstaette_projekte": profile.ArbeitsstaetteProjekte,
		"art_der_arbeit":          profile.ArtDerArbeit,
		"kennzeichen":             profile.Kennzeichen,
		"kennzeichen2":            profile.Kennzeichen2,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanProfile(row)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("repo.ProfileRepo.Save: %w", err)
	}
	return result, nil
}

// scanProfile maps one row onto a domain.Profile.
// Column order must match the RETURNING / SELECT lists above.
func scanProfile(row pgx.Row) (domain.Profile, error) {
	var p domain.Profile
	err := row.Scan(
		&p.ID, &p.Name, &p.Vorname, &p.ArbeitsstaetteProjekte, &p.ArtDerArbeit,
		&p.Kennzeichen, &p.Kennzeichen2, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}
