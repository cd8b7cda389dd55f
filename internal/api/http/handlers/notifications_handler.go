package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kaveyan18/resolve-desk/internal/api/dto"
	"github.com/kaveyan18/resolve-desk/internal/auth"
	"github.com/kaveyan18/resolve-desk/internal/service"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

// NotificationsHandler exposes per-user notification endpoints.
type NotificationsHandler struct {
	notifications *service.NotificationService
}

// NewNotificationsHandler constructs handler.
func NewNotificationsHandler(notifications *service.NotificationService) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

// List GET /api/notifications.
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	limit, _ := strconv.Atoi(c.Query("limit", "20"))

	records, err := h.notifications.ListForUser(c.UserContext(), principal.User.ID, limit)
	if err != nil {
		return err
	}
	items := make([]dto.NotificationResponse, 0, len(records))
	for i := range records {
		items = append(items, dto.NewNotificationResponse(&records[i]))
	}
	return c.JSON(fiber.Map{"count": len(items), "data": items})
}

// MarkRead PUT /api/notifications/:id/read.
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.notifications.MarkRead(c.UserContext(), principal.User, c.Params("id")); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "notification marked as read"})
}
