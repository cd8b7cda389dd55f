package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/kaveyan18/resolve-desk/internal/api/dto"
	"github.com/kaveyan18/resolve-desk/internal/service"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

// AuthHandler exposes registration and login.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register POST /api/auth/register.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, token, expiresAt, err := h.auth.Register(c.UserContext(), req.Name, req.Email, req.Password, req.Role, req.Skills)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"user":  dto.NewUserResponse(user),
			"token": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}

// Login POST /api/auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	user, token, expiresAt, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":  dto.NewUserResponse(user),
			"token": dto.AuthResponse{Token: token, ExpiresAt: expiresAt},
		},
	})
}
