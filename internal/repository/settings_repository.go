package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kaveyan18/resolve-desk/internal/domain"
)

// SettingsRepository manages the single SystemSettings row.
type SettingsRepository interface {
	// Get returns the settings row, creating it with defaults on first read.
	Get(ctx context.Context) (*domain.SystemSettings, error)
	Update(ctx context.Context, settings *domain.SystemSettings) error
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository builds repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) Get(ctx context.Context) (*domain.SystemSettings, error) {
	const query = `SELECT auto_assign_enabled, sweep_interval_minutes, updated_at FROM system_settings WHERE id=1`
	var settings domain.SystemSettings
	err := r.pool.QueryRow(ctx, query).Scan(
		&settings.AutoAssignEnabled,
		&settings.SweepIntervalMinutes,
		&settings.UpdatedAt,
	)
	if err == nil {
		return &settings, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	defaults := domain.DefaultSettings()
	const insert = `
        INSERT INTO system_settings (id, auto_assign_enabled, sweep_interval_minutes)
        VALUES (1, $1, $2)
        ON CONFLICT (id) DO UPDATE SET id=system_settings.id
        RETURNING auto_assign_enabled, sweep_interval_minutes, updated_at`
	if err := r.pool.QueryRow(ctx, insert,
		defaults.AutoAssignEnabled,
		defaults.SweepIntervalMinutes,
	).Scan(&settings.AutoAssignEnabled, &settings.SweepIntervalMinutes, &settings.UpdatedAt); err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Update(ctx context.Context, settings *domain.SystemSettings) error {
	const query = `
        INSERT INTO system_settings (id, auto_assign_enabled, sweep_interval_minutes, updated_at)
        VALUES (1, $1, $2, NOW())
        ON CONFLICT (id) DO UPDATE
        SET auto_assign_enabled=EXCLUDED.auto_assign_enabled,
            sweep_interval_minutes=EXCLUDED.sweep_interval_minutes,
            updated_at=NOW()
        RETURNING updated_at`
	return r.pool.QueryRow(ctx, query,
		settings.AutoAssignEnabled,
		settings.SweepIntervalMinutes,
	).Scan(&settings.UpdatedAt)
}
