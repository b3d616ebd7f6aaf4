package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/internal/apperror"
	"marketplace/internal/events"
	"marketplace/internal/models"
	"marketplace/internal/security"
	"marketplace/internal/service"
)

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	registered := f.register(t, models.RoleSeller, "  Sam@Example.com ")
	assert.Equal(t, "sam@example.com", registered.Account.Email)
	assert.NotEmpty(t, registered.Token)
	assert.NotEqual(t, "secret1", string(registered.Account.PasswordHash))
	assert.Contains(t, f.publisher.Subjects(), events.AccountRegistered)

	result, err := f.auth.Login(ctx, models.RoleSeller, "sam@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, result.Account.ID)

	identity, err := f.auth.Authenticate(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, identity.AccountID)
	assert.Equal(t, models.RoleSeller, identity.Role)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, models.RoleBuyer, "ann@example.com")

	_, err := f.auth.Register(context.Background(), service.RegisterInput{
		Role:     models.RoleBuyer,
		Name:     "Another Ann",
		Email:    "ANN@example.com",
		Password: "secret2",
	})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.DuplicateEmail))
	assert.Equal(t, 1, f.accounts.Count(models.RoleBuyer))
}

func TestSameEmailAcrossRoles(t *testing.T) {
	f := newFixture(t)
	f.register(t, models.RoleBuyer, "dual@example.com")
	f.register(t, models.RoleSeller, "dual@example.com")

	assert.Equal(t, 1, f.accounts.Count(models.RoleBuyer))
	assert.Equal(t, 1, f.accounts.Count(models.RoleSeller))
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)

	cases := map[string]service.RegisterInput{
		"short password": {Role: models.RoleBuyer, Name: "A", Email: "a@example.com", Password: "12345"},
		"bad email":      {Role: models.RoleBuyer, Name: "A", Email: "not-an-email", Password: "secret1"},
		"missing name":   {Role: models.RoleBuyer, Email: "a@example.com", Password: "secret1"},
		"seller no biz":  {Role: models.RoleSeller, Name: "A", Email: "a@example.com", Password: "secret1"},
		"unknown role":   {Role: "admin", Name: "A", Email: "a@example.com", Password: "secret1"},
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := f.auth.Register(context.Background(), input)
			assert.True(t, apperror.Is(err, apperror.Validation), "got %v", err)
		})
	}
}

func TestLoginFailuresLookAlike(t *testing.T) {
	f := newFixture(t)
	f.register(t, models.RoleBuyer, "ann@example.com")
	ctx := context.Background()

	_, wrongPassword := f.auth.Login(ctx, models.RoleBuyer, "ann@example.com", "nope123")
	_, unknownEmail := f.auth.Login(ctx, models.RoleBuyer, "ghost@example.com", "secret1")
	_, wrongRole := f.auth.Login(ctx, models.RoleSeller, "ann@example.com", "secret1")

	for _, err := range []error{wrongPassword, unknownEmail, wrongRole} {
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.Unauthenticated, appErr.Kind)
		assert.Equal(t, "Invalid email or password", appErr.Message)
	}

	_, err := f.auth.Login(ctx, models.RoleBuyer, "", "")
	assert.True(t, apperror.Is(err, apperror.Validation))
}

func TestAuthenticateTokenLifetime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	start := f.now

	result := f.register(t, models.RoleBuyer, "ann@example.com")

	f.now = start.Add(24*time.Hour - time.Second)
	_, err := f.auth.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	f.now = start.Add(24 * time.Hour)
	_, err = f.auth.Authenticate(ctx, result.Token)
	require.Error(t, err)
	assert.ErrorIs(t, err, security.ErrTokenExpired)
	appErr, _ := apperror.As(err)
	assert.Equal(t, "Invalid token", appErr.Message)
	assert.Equal(t, 401, appErr.StatusCode())
}

func TestAuthenticateMissingAndGarbage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.auth.Authenticate(ctx, "")
	assert.ErrorIs(t, err, security.ErrTokenMissing)
	appErr, _ := apperror.As(err)
	assert.Equal(t, "No token provided", appErr.Message)

	_, err = f.auth.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, security.ErrTokenInvalid)
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result := f.register(t, models.RoleSeller, "sam@example.com")
	identity, err := f.auth.Authenticate(ctx, result.Token)
	require.NoError(t, err)

	require.NoError(t, f.auth.Logout(ctx, identity))

	_, err = f.auth.Authenticate(ctx, result.Token)
	assert.ErrorIs(t, err, security.ErrTokenRevoked)
	assert.True(t, apperror.Is(err, apperror.Unauthenticated))
}

func TestVerifyCredentials(t *testing.T) {
	f := newFixture(t)
	registered := f.register(t, models.RoleBuyer, "ann@example.com")

	account, err := f.auth.VerifyCredentials(context.Background(), models.RoleBuyer, "ANN@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, registered.Account.ID, account.ID)
}
