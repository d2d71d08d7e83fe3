package services

import (
	"context"
	"time"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
)

type AcademicYearService struct {
	repo repository.AcademicYearRepository
}

func NewAcademicYearService(repo repository.AcademicYearRepository) *AcademicYearService {
	return &AcademicYearService{repo: repo}
}

type AcademicYearInput struct {
	YearName  string
	StartDate time.Time
	EndDate   time.Time
	IsCurrent bool
}

func (s *AcademicYearService) FindByID(ctx context.Context, id uint) (*models.AcademicYear, error) {
	year, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "", "AcademicYear")
	}
	return year, nil
}

// Current returns the academic year flagged as current
func (s *AcademicYearService) Current(ctx context.Context) (*models.AcademicYear, error) {
	year, err := s.repo.FindCurrent(ctx)
	if err != nil {
		return nil, translateDBError(err, "", "AcademicYear")
	}
	return year, nil
}

func (s *AcademicYearService) List(ctx context.Context) ([]models.AcademicYear, error) {
	return s.repo.List(ctx)
}

func (s *AcademicYearService) Create(ctx context.Context, input AcademicYearInput) (*models.AcademicYear, error) {
	if input.YearName == "" {
		return nil, &ValidationError{Field: "year_name", Message: "must not be blank"}
	}
	if !input.EndDate.After(input.StartDate) {
		return nil, &ValidationError{Field: "end_date", Message: "must be after start date"}
	}

	year := &models.AcademicYear{
		YearName:  input.YearName,
		StartDate: input.StartDate,
		EndDate:   input.EndDate,
	}
	if err := s.repo.Create(ctx, year); err != nil {
		return nil, translateDBError(err, "year_name", "AcademicYear")
	}
	if input.IsCurrent {
		if err := s.repo.SetCurrent(ctx, year.ID); err != nil {
			return nil, err
		}
		year.IsCurrent = true
	}
	return year, nil
}

// SetCurrent marks one year as current and clears the flag everywhere else
func (s *AcademicYearService) SetCurrent(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return translateDBError(err, "", "AcademicYear")
	}
	return s.repo.SetCurrent(ctx, id)
}
