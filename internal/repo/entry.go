package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mhaas/wochenbericht/backend/internal/domain"
)

// EntryRepo defines the persistence operations for daily report entries.
// A day with no row is an absent day; callers receive it as a missing map key.
type EntryRepo interface {
	// Upsert inserts or replaces the entry for its calendar day and returns
	// the persisted record.
	Upsert(ctx context.Context, entry domain.DailyEntry) (domain.DailyEntry, error)

	// GetByDate returns the entry for one calendar day.
	// Returns domain.ErrNotFound when the day has no entry.
	GetByDate(ctx context.Context, date time.Time) (domain.DailyEntry, error)

	// GetByDates returns the entries for the given days, keyed by ISO date
	// string ("2006-01-02"). Days without an entry are simply absent from
	// the map; the map itself is never nil.
	GetByDates(ctx context.Context, dates []time.Time) (map[string]domain.DailyEntry, error)
}

// pgEntryRepo is the Postgres implementation of EntryRepo.
// Lines are stored as a jsonb array in entry order.
type pgEntryRepo struct {
	db db
}

// NewEntryRepo constructs an EntryRepo backed by the provided db connection.
func NewEntryRepo(db db) EntryRepo {
	return &pgEntryRepo{db: db}
}

func (r *pgEntryRepo) Upsert(ctx context.Context, entry domain.DailyEntry) (domain.DailyEntry, error) {
	lines, err := json.Marshal(entry.Lines)
	if err != nil {
		return domain.DailyEntry{}, fmt.Errorf("repo.EntryRepo.Upsert: marshal lines: %w", err)
	}

	const q = `
		INSERT INTO daily_entries (entry_date, arbeitsstaette_projekte, art_der_arbeit, lines, updated_at)
		VALUES (@entry_date, @arbeitsstaette_projekte, @art_der_arbeit, @lines, now())
		ON CONFLICT (entry_date) DO UPDATE SET
			arbeitsstaette_projekte = EXCLUDED.arbeitsstaette_projekte,
			art_der_arbeit          = EXCLUDED.art_der_arbeit,
			lines                   = EXCLUDED.lines,
			updated_at              = now()
		RETURNING id, entry_date, arbeitsstaette_projekte, art_der_arbeit, lines, updated_at`

	args := pgx.NamedArgs{
		"entry_date":              entry.Date,
		"arbeitsstaette_projekte": entry.ArbeitsstaetteProjekte,
		"art_der_arbeit":          entry.ArtDerArbeit,
		"lines":                   lines,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanEntry(row)
	if err != nil {
		return domain.DailyEntry{}, fmt.Errorf("repo.EntryRepo.Upsert: %w", err)
	}
	return result, nil
}

func (r *pgEntryRepo) GetByDate(ctx context.Context, date time.Time) (domain.DailyEntry, error) {
	const q = `
		SELECT id, entry_date, arbeitsstaette_projekte, art_der_arbeit, lines, updated_at
		FROM daily_entries
		WHERE entry_date = @entry_date`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"entry_date": date})
	entry, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.DailyEntry{}, fmt.Errorf("repo.EntryRepo.GetByDate: %w", domain.ErrNotFound)
		}
		return domain.DailyEntry{}, fmt.Errorf("repo.EntryRepo.GetByDate: %w", err)
	}
	return entry, nil
}

func (r *pgEntryRepo) GetByDates(ctx context.Context, dates []time.Time) (map[string]domain.DailyEntry, error) {
	const q = `
		SELECT id, entry_date, arbeitsstaette_projekte, art_der_arbeit, lines, updated_at
		FROM daily_entries
		WHERE entry_date = ANY(@dates)
		ORDER BY entry_date`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"dates": dates})
	if err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.GetByDates: %w", err)
	}
	defer rows.Close()

	entries := make(map[string]domain.DailyEntry)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.EntryRepo.GetByDates: %w", err)
		}
		entries[entry.Date.Format("2006-01-02")] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.EntryRepo.GetByDates: %w", err)
	}
	return entries, nil
}

// scanEntry maps one row onto a domain.DailyEntry, decoding the jsonb lines
// column. Column order must match the SELECT / RETURNING lists above.
func scanEntry(row pgx.Row) (domain.DailyEntry, error) {
	var (
		e     domain.DailyEntry
		lines []byte
	)
	err := row.Scan(&e.ID, &e.Date, &e.ArbeitsstaetteProjekte, &e.ArtDerArbeit, &lines, &e.UpdatedAt)
	if err != nil {
		return domain.DailyEntry{}, err
	}
	if err := json.Unmarshal(lines, &e.Lines); err != nil {
		return domain.DailyEntry{}, fmt.Errorf("decode lines: %w", err)
	}
	return e, nil
}
