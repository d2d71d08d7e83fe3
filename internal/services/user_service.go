package services

import (
	"context"
	"strings"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
)

type UserService struct {
	repo repository.UserRepository
}

func NewUserService(repo repository.UserRepository) *UserService {
	return &UserService{repo: repo}
}

type CreateUserInput struct {
	Email    string
	Password string
	FullName string
	Role     string
}

func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*models.User, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" {
		return nil, &ValidationError{Field: "email", Message: "must not be blank"}
	}
	if len(input.Password) < 8 {
		return nil, &ValidationError{Field: "password", Message: "must be at least 8 characters"}
	}
	if input.Role != "" && input.Role != models.RoleAdmin && input.Role != models.RoleOperator {
		return nil, &ValidationError{Field: "role", Message: "must be admin or operator"}
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:             input.Email,
		EncryptedPassword: hash,
		FullName:          strings.TrimSpace(input.FullName),
		Role:              input.Role,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, translateDBError(err, "email", "User")
	}
	return user, nil
}

func (s *UserService) FindByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "", "User")
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, query *repository.ListQuery) ([]models.User, int64, error) {
	return s.repo.List(ctx, query)
}

// SetStatus activates or deactivates a user account
func (s *UserService) SetStatus(ctx context.Context, id uint, status string) (*models.User, error) {
	if status != models.StatusActive && status != models.StatusInactive {
		return nil, &ValidationError{Field: "status", Message: "must be active or inactive"}
	}
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "", "User")
	}
	user.Status = status
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
