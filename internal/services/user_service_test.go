package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/schooldesk/fees-api/internal/models"
)

func TestUserServiceCreate(t *testing.T) {
	var created *models.User
	repo := &mockUserRepo{
		mockCreate: func(ctx context.Context, user *models.User) error {
			user.ID = 2
			created = user
			return nil
		},
	}
	svc := NewUserService(repo)

	user, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "  Clerk@School.edu.pk ",
		Password: "longenough",
		FullName: " Fee Clerk ",
		Role:     models.RoleOperator,
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, "clerk@school.edu.pk", user.Email)
	assert.Equal(t, "Fee Clerk", user.FullName)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.EncryptedPassword), []byte("longenough")))
}

func TestUserServiceCreateValidation(t *testing.T) {
	svc := NewUserService(&mockUserRepo{})

	tests := []struct {
		name  string
		input CreateUserInput
		field string
	}{
		{
			name:  "blank email",
			input: CreateUserInput{Password: "longenough"},
			field: "email",
		},
		{
			name:  "short password",
			input: CreateUserInput{Email: "a@b.pk", Password: "short"},
			field: "password",
		},
		{
			name:  "unknown role",
			input: CreateUserInput{Email: "a@b.pk", Password: "longenough", Role: "superuser"},
			field: "role",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestUserServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockUserRepo{
		mockCreate: func(ctx context.Context, user *models.User) error {
			return gorm.ErrDuplicatedKey
		},
	}
	svc := NewUserService(repo)

	_, err := svc.Create(context.Background(), CreateUserInput{
		Email:    "clerk@school.edu.pk",
		Password: "longenough",
	})

	var cErr *ConflictError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, "email", cErr.Field)
}

func TestUserServiceSetStatus(t *testing.T) {
	stored := &models.User{ID: 2, Email: "clerk@school.edu.pk", Status: models.StatusActive}

	var updated *models.User
	repo := &mockUserRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.User, error) {
			return stored, nil
		},
		mockUpdate: func(ctx context.Context, user *models.User) error {
			updated = user
			return nil
		},
	}
	svc := NewUserService(repo)

	user, err := svc.SetStatus(context.Background(), 2, models.StatusInactive)

	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, models.StatusInactive, user.Status)
}

func TestUserServiceSetStatusUnknownValue(t *testing.T) {
	svc := NewUserService(&mockUserRepo{})

	_, err := svc.SetStatus(context.Background(), 2, "suspended")

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "status", vErr.Field)
}
