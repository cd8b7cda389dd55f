package service

import (
	"context"

	"github.com/kaveyan18/resolve-desk/internal/domain"
	"github.com/kaveyan18/resolve-desk/internal/repository"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

// SettingsService reads and writes the single system settings row. The
// scheduler re-reads settings every tick, so updates take effect on the
// next sweep without a restart.
type SettingsService struct {
	settings repository.SettingsRepository
}

// NewSettingsService creates the service.
func NewSettingsService(settings repository.SettingsRepository) *SettingsService {
	return &SettingsService{settings: settings}
}

// Get returns the current settings, creating defaults on first read.
func (s *SettingsService) Get(ctx context.Context) (*domain.SystemSettings, error) {
	return s.settings.Get(ctx)
}

// SettingsPatch carries the fields of a settings update. Nil fields keep
// their current value.
type SettingsPatch struct {
	AutoAssignEnabled    *bool
	SweepIntervalMinutes *int
}

func (p SettingsPatch) empty() bool {
	return p.AutoAssignEnabled == nil && p.SweepIntervalMinutes == nil
}

// Update applies a sparse patch on top of the current settings and persists
// the result.
func (s *SettingsService) Update(ctx context.Context, patch SettingsPatch) (*domain.SystemSettings, error) {
	if patch.empty() {
		return nil, apperrors.NewValidationError("no settings fields supplied", nil)
	}
	if patch.SweepIntervalMinutes != nil && *patch.SweepIntervalMinutes <= 0 {
		return nil, apperrors.NewValidationError("sweep interval must be positive", map[string]any{
			"sweep_interval_minutes": *patch.SweepIntervalMinutes,
		})
	}
	current, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	if patch.AutoAssignEnabled != nil {
		current.AutoAssignEnabled = *patch.AutoAssignEnabled
	}
	if patch.SweepIntervalMinutes != nil {
		current.SweepIntervalMinutes = *patch.SweepIntervalMinutes
	}
	if err := s.settings.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}
