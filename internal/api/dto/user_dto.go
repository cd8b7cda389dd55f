package dto

import (
	"time"

	"github.com/kaveyan18/resolve-desk/internal/domain"
)

// RegisterRequest payload for new accounts.
type RegisterRequest struct {
	Name     string                  `json:"name"`
	Email    string                  `json:"email"`
	Password string                  `json:"password"`
	Role     domain.Role             `json:"role"`
	Skills   []domain.TicketCategory `json:"skills"`
}

// LoginRequest payload for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse standard response for auth endpoints.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserResponse is the public account shape.
type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
}

// NewUserResponse maps an account.
func NewUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

// UpdateUserRequest is the admin account patch; omitted fields are untouched.
type UpdateUserRequest struct {
	Approved *bool                   `json:"approved"`
	Active   *bool                   `json:"active"`
	Skills   []domain.TicketCategory `json:"skills"`
}

// AccountResponse is the admin-facing account shape including the
// management flags hidden from the public response.
type AccountResponse struct {
	ID        string                  `json:"id"`
	Name      string                  `json:"name"`
	Email     string                  `json:"email"`
	Role      domain.Role             `json:"role"`
	Skills    []domain.TicketCategory `json:"skills"`
	Active    bool                    `json:"active"`
	Approved  bool                    `json:"approved"`
	CreatedAt time.Time               `json:"created_at"`
}

// NewAccountResponse maps an account for admin views.
func NewAccountResponse(user *domain.User) AccountResponse {
	return AccountResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		Skills:    user.Skills,
		Active:    user.Active,
		Approved:  user.Approved,
		CreatedAt: user.CreatedAt,
	}
}
