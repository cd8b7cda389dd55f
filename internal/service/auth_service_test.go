package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kaveyan18/resolve-desk/internal/config"
	"github.com/kaveyan18/resolve-desk/internal/domain"
	apperrors "github.com/kaveyan18/resolve-desk/pkg/util"
)

func newAuthFixture() (*fakeUserRepo, *AuthService) {
	users := newFakeUserRepo()
	svc := NewAuthService(config.AuthConfig{
		JWTSecret:             "test-secret",
		AccessTokenTTLMinutes: 15,
		BcryptCost:            4, // min cost keeps the tests fast
	}, users)
	return users, svc
}

func TestRegisterAndLoginRoundTrip(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	user, token, _, err := svc.Register(ctx, "Rita", " Rita@Example.COM ", "hunter22", "", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	assert.Equal(t, "rita@example.com", user.Email)
	assert.True(t, user.Active)
	assert.True(t, user.Approved)
	assert.NotEmpty(t, token)

	claims, err := svc.TokenManager().ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.SubjectID)
	assert.Equal(t, domain.RoleUser, claims.Role)

	logged, token2, _, err := svc.Login(ctx, "rita@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotEmpty(t, token2)
}

func TestRegisterStaffRequiresApproval(t *testing.T) {
	_, svc := newAuthFixture()

	staff, _, _, err := svc.Register(context.Background(), "Sam", "sam@example.com", "s3cret",
		domain.RoleStaff, []domain.TicketCategory{domain.CategoryElectrical})
	require.NoError(t, err)
	assert.False(t, staff.Approved)
	assert.False(t, staff.Assignable())
}

func TestRegisterRejectsAdminAndDuplicates(t *testing.T) {
	_, svc := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Register(ctx, "Eve", "eve@example.com", "pw", domain.RoleAdmin, nil)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	_, _, _, err = svc.Register(ctx, "Rita", "rita@example.com", "pw", "", nil)
	require.NoError(t, err)
	_, _, _, err = svc.Register(ctx, "Other Rita", "RITA@example.com", "pw2", "", nil)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	_, _, _, err = svc.Register(ctx, "Sam", "sam@example.com", "pw", domain.RoleStaff,
		[]domain.TicketCategory{"Gardening"})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))
}

func TestLoginFailures(t *testing.T) {
	users, svc := newAuthFixture()
	ctx := context.Background()

	_, _, _, err := svc.Login(ctx, "nobody@example.com", "pw")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	user, _, _, err := svc.Register(ctx, "Rita", "rita@example.com", "hunter22", "", nil)
	require.NoError(t, err)

	_, _, _, err = svc.Login(ctx, "rita@example.com", "wrong")
	assert.True(t, apperrors.IsCode(err, "UNAUTHORIZED"))

	stored, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	stored.Active = false
	require.NoError(t, users.Update(ctx, stored))

	_, _, _, err = svc.Login(ctx, "rita@example.com", "hunter22")
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}
