package user

import (
	"context"
	"testing"
	"time"

	"nafany/database"
	userRepo "nafany/database/repository/user"
	"nafany/models"
	"nafany/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(repo userRepo.UserRepository) *DefaultUserService {
	return &DefaultUserService{
		Repo:      repo,
		Tokens:    utils.NewTokenManager("test-secret", time.Hour),
		Validator: utils.NewValidator(),
	}
}

func registration(email string) models.UserRegistration {
	return models.UserRegistration{
		Name:        "علي",
		Email:       email,
		Password:    "secret1",
		Phone:       "+201001234567",
		Governorate: "القاهرة",
	}
}

func TestUsernameFromEmail(t *testing.T) {
	assert.Equal(t, "ali", UsernameFromEmail("ali@example.com"))
	assert.Equal(t, "noat", UsernameFromEmail("noat"))
}

func TestRegisterRejectsTakenEmailOrUsername(t *testing.T) {
	ctx := context.Background()
	repo := userRepo.NewMemoryUserRepo()
	svc := newService(repo)

	u, err := svc.Register(ctx, registration("Ali@Example.com"))
	require.NoError(t, err)
	assert.Equal(t, "ali", u.Username)
	assert.Equal(t, "ali@example.com", u.Email)
	assert.Equal(t, models.RoleUser, u.Role)

	_, err = svc.Register(ctx, registration("ali@example.com"))
	assert.ErrorIs(t, err, database.ErrDuplicate)

	// Same local part under another domain collides on the username.
	_, err = svc.Register(ctx, registration("ali@other.org"))
	assert.ErrorIs(t, err, database.ErrDuplicate)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRegisterValidation(t *testing.T) {
	svc := newService(userRepo.NewMemoryUserRepo())

	req := registration("bad")
	req.Password = "12345"
	req.Phone = "phone"
	_, err := svc.Register(context.Background(), req)

	var ve *utils.ValidationError
	require.ErrorAs(t, err, &ve)
	fields := ve.FieldMap()
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 6 characters", fields["password"])
	assert.Equal(t, "must be a valid phone number", fields["phone"])
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	svc := newService(userRepo.NewMemoryUserRepo())
	_, err := svc.Register(ctx, registration("sara@example.com"))
	require.NoError(t, err)

	resp, err := svc.Authenticate(ctx, " SARA@example.com ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "sara@example.com", resp.User.Email)
	assert.Equal(t, models.RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Authenticate(ctx, "sara@example.com", "nope-nope")
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)
}

func TestUpdateSettings(t *testing.T) {
	ctx := context.Background()
	svc := newService(userRepo.NewMemoryUserRepo())
	_, err := svc.Register(ctx, registration("sara@example.com"))
	require.NoError(t, err)

	name := "  سارة  "
	password := "newsecret"
	u, err := svc.UpdateSettings(ctx, "sara@example.com", models.UserSettings{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "سارة", u.Name)
	assert.Equal(t, "القاهرة", u.Governorate)

	_, err = svc.Authenticate(ctx, "sara@example.com", "newsecret")
	require.NoError(t, err)

	short := "123"
	_, err = svc.UpdateSettings(ctx, "sara@example.com", models.UserSettings{Password: &short})
	assert.True(t, utils.IsValidationError(err))

	_, err = svc.UpdateSettings(ctx, "ghost@example.com", models.UserSettings{Name: &name})
	assert.ErrorIs(t, err, database.ErrNotFound)
}
