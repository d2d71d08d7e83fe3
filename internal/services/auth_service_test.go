package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/schooldesk/fees-api/internal/config"
	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
)

type mockUserRepo struct {
	repository.UserRepository
	mockFindByID    func(ctx context.Context, id uint) (*models.User, error)
	mockFindByEmail func(ctx context.Context, email string) (*models.User, error)
	mockCreate      func(ctx context.Context, user *models.User) error
	mockUpdate      func(ctx context.Context, user *models.User) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uint) (*models.User, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.mockFindByEmail(ctx, email)
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	return m.mockCreate(ctx, user)
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, user)
	}
	return nil
}

func testAuthConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpirationHours: 24}
}

func activeUser(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := HashPassword(password)
	require.NoError(t, err)
	return &models.User{
		ID:                1,
		Email:             "clerk@school.edu.pk",
		EncryptedPassword: hash,
		FullName:          "Fee Clerk",
		Role:              models.RoleOperator,
		Status:            models.StatusActive,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	user := activeUser(t, "correcthorse")
	repo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			assert.Equal(t, "clerk@school.edu.pk", email)
			return user, nil
		},
	}
	svc := NewAuthService(repo, testAuthConfig())

	result, err := svc.Login(context.Background(), "clerk@school.edu.pk", "correcthorse")

	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "clerk@school.edu.pk", result.User.Email)

	claims, err := svc.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, float64(1), claims["user_id"])
	assert.Equal(t, models.RoleOperator, claims["role"])
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	user := activeUser(t, "correcthorse")
	repo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc := NewAuthService(repo, testAuthConfig())

	_, err := svc.Login(context.Background(), "clerk@school.edu.pk", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginUnknownEmail(t *testing.T) {
	repo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewAuthService(repo, testAuthConfig())

	_, err := svc.Login(context.Background(), "nobody@school.edu.pk", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	user := activeUser(t, "correcthorse")
	user.Status = models.StatusInactive
	repo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	svc := NewAuthService(repo, testAuthConfig())

	_, err := svc.Login(context.Background(), "clerk@school.edu.pk", "correcthorse")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthServiceValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&mockUserRepo{}, testAuthConfig())

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestAuthServiceValidateTokenRejectsForeignSecret(t *testing.T) {
	user := activeUser(t, "correcthorse")
	repo := &mockUserRepo{
		mockFindByEmail: func(ctx context.Context, email string) (*models.User, error) {
			return user, nil
		},
	}
	issuer := NewAuthService(repo, testAuthConfig())
	result, err := issuer.Login(context.Background(), "clerk@school.edu.pk", "correcthorse")
	require.NoError(t, err)

	verifier := NewAuthService(repo, &config.Config{JWTSecret: "different-secret", JWTExpirationHours: 24})
	_, err = verifier.ValidateToken(result.Token)
	assert.Error(t, err)
}
