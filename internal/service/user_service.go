package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/kaveyan18/resolve-desk/internal/domain"
	"github.com/kaveyan18/resolve-desk/internal/repository"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

// UserService covers admin account management: listing accounts and
// approving, activating or re-skilling staff. Approval is the gate that
// makes a staff account eligible for assignment.
type UserService struct {
	users repository.UserRepository
}

// NewUserService creates the service.
func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users}
}

// UserPatch is a sparse account update; nil fields are untouched.
type UserPatch struct {
	Approved *bool
	Active   *bool
	Skills   []domain.TicketCategory
}

func (p UserPatch) empty() bool {
	return p.Approved == nil && p.Active == nil && p.Skills == nil
}

// ListUsers returns all accounts, oldest first.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.NewTransientStore(err)
	}
	return users, nil
}

// UpdateUser applies an admin patch to an account. Approval and skills are
// staff-only attributes; the active flag applies to any role. Admins cannot
// deactivate their own account.
func (s *UserService) UpdateUser(ctx context.Context, actor *domain.User, userID string, patch UserPatch) (*domain.User, error) {
	if patch.empty() {
		return nil, apperrors.NewValidationError("empty patch", nil)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.NewTransientStore(err)
	}

	if patch.Approved != nil || patch.Skills != nil {
		if user.Role != domain.RoleStaff {
			return nil, apperrors.NewInvalidTransition("approval and skills apply to staff accounts only",
				map[string]any{"role": user.Role})
		}
	}
	if patch.Skills != nil {
		for _, skill := range patch.Skills {
			if !skill.Valid() {
				return nil, apperrors.NewValidationError("unknown skill", map[string]any{"skill": skill})
			}
		}
		user.Skills = patch.Skills
	}
	if patch.Approved != nil {
		user.Approved = *patch.Approved
	}
	if patch.Active != nil {
		if actor != nil && actor.ID == user.ID && !*patch.Active {
			return nil, apperrors.NewConflict("cannot deactivate your own account", nil)
		}
		user.Active = *patch.Active
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.NewTransientStore(err)
	}
	return user, nil
}
