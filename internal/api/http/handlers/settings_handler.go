package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/kaveyan18/resolve-desk/internal/api/dto"
	"github.com/kaveyan18/resolve-desk/internal/service"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

// SettingsHandler exposes the admin system-settings endpoints. Role
// enforcement happens in the router via RequireRole.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get GET /api/admin/settings.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	current, err := h.settings.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SettingsResponse{
		AutoAssignEnabled:    current.AutoAssignEnabled,
		SweepIntervalMinutes: current.SweepIntervalMinutes,
		UpdatedAt:            current.UpdatedAt,
	}})
}

// Update PUT /api/admin/settings.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	var req dto.SettingsRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.settings.Update(c.UserContext(), service.SettingsPatch{
		AutoAssignEnabled:    req.AutoAssignEnabled,
		SweepIntervalMinutes: req.SweepIntervalMinutes,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SettingsResponse{
		AutoAssignEnabled:    updated.AutoAssignEnabled,
		SweepIntervalMinutes: updated.SweepIntervalMinutes,
		UpdatedAt:            updated.UpdatedAt,
	}})
}
