package domain

import "time"

// SystemSettings is the single process-wide configuration record.
// Created with defaults on first read, updated only by admins.
type SystemSettings struct {
	AutoAssignEnabled    bool
	SweepIntervalMinutes int
	UpdatedAt            time.Time
}

// SweepInterval returns the scheduler period, guarding against bad rows.
func (s SystemSettings) SweepInterval() time.Duration {
	if s.SweepIntervalMinutes <= 0 {
		return time.Minute
	}
	return time.Duration(s.SweepIntervalMinutes) * time.Minute
}

// DefaultSettings returns the values written on lazy creation.
func DefaultSettings() SystemSettings {
	return SystemSettings{
		AutoAssignEnabled:    true,
		SweepIntervalMinutes: 1,
	}
}
