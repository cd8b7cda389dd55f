package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/kaveyan18/resolve-desk/internal/api/dto"
	"github.com/kaveyan18/resolve-desk/internal/auth"
	"github.com/kaveyan18/resolve-desk/internal/service"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

// UsersHandler exposes the admin account-management endpoints. Role
// enforcement happens in the router via RequireRole.
type UsersHandler struct {
	users *service.UserService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(users *service.UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

// List GET /api/admin/users.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	offset, _ := strconv.Atoi(c.Query("offset", "0"))

	accounts, err := h.users.ListUsers(c.UserContext(), limit, offset)
	if err != nil {
		return err
	}
	items := make([]dto.AccountResponse, 0, len(accounts))
	for i := range accounts {
		items = append(items, dto.NewAccountResponse(&accounts[i]))
	}
	return c.JSON(fiber.Map{"count": len(items), "data": items})
}

// Update PUT /api/admin/users/:id.
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	updated, err := h.users.UpdateUser(c.UserContext(), principal.User, c.Params("id"), service.UserPatch{
		Approved: req.Approved,
		Active:   req.Active,
		Skills:   req.Skills,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAccountResponse(updated)})
}
