package services

import (
	"context"
	"strings"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
)

type ClassGradeService struct {
	repo repository.ClassGradeRepository
}

func NewClassGradeService(repo repository.ClassGradeRepository) *ClassGradeService {
	return &ClassGradeService{repo: repo}
}

type ClassGradeInput struct {
	ClassName string
	ClassCode string
	SortOrder int
	IsActive  *bool
}

func (s *ClassGradeService) FindByID(ctx context.Context, id uint) (*models.ClassGrade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "", "ClassGrade")
	}
	return grade, nil
}

func (s *ClassGradeService) List(ctx context.Context) ([]models.ClassGrade, error) {
	return s.repo.List(ctx)
}

func (s *ClassGradeService) Create(ctx context.Context, input ClassGradeInput) (*models.ClassGrade, error) {
	if strings.TrimSpace(input.ClassName) == "" {
		return nil, &ValidationError{Field: "class_name", Message: "must not be blank"}
	}
	if strings.TrimSpace(input.ClassCode) == "" {
		return nil, &ValidationError{Field: "class_code", Message: "must not be blank"}
	}

	grade := &models.ClassGrade{
		ClassName: strings.TrimSpace(input.ClassName),
		ClassCode: strings.ToUpper(strings.TrimSpace(input.ClassCode)),
		SortOrder: input.SortOrder,
		IsActive:  true,
	}
	if input.IsActive != nil {
		grade.IsActive = *input.IsActive
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, translateDBError(err, "class_code", "ClassGrade")
	}
	return grade, nil
}

func (s *ClassGradeService) Update(ctx context.Context, id uint, input ClassGradeInput) (*models.ClassGrade, error) {
	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "", "ClassGrade")
	}

	if strings.TrimSpace(input.ClassName) != "" {
		grade.ClassName = strings.TrimSpace(input.ClassName)
	}
	if strings.TrimSpace(input.ClassCode) != "" {
		grade.ClassCode = strings.ToUpper(strings.TrimSpace(input.ClassCode))
	}
	grade.SortOrder = input.SortOrder
	if input.IsActive != nil {
		grade.IsActive = *input.IsActive
	}

	if err := s.repo.Update(ctx, grade); err != nil {
		return nil, translateDBError(err, "class_code", "ClassGrade")
	}
	return grade, nil
}
