package repository

import (
	"context"

	"github.com/schooldesk/fees-api/internal/models"

	"gorm.io/gorm"
)

// AcademicYearRepository defines the interface for academic year data access
type AcademicYearRepository interface {
	FindByID(ctx context.Context, id uint) (*models.AcademicYear, error)
	FindCurrent(ctx context.Context) (*models.AcademicYear, error)
	Create(ctx context.Context, year *models.AcademicYear) error
	Update(ctx context.Context, year *models.AcademicYear) error
	SetCurrent(ctx context.Context, id uint) error
	List(ctx context.Context) ([]models.AcademicYear, error)
}

type academicYearRepository struct {
	db *gorm.DB
}

// NewAcademicYearRepository creates a new academic year repository
func NewAcademicYearRepository(db *gorm.DB) AcademicYearRepository {
	return &academicYearRepository{db: db}
}

func (r *academicYearRepository) FindByID(ctx context.Context, id uint) (*models.AcademicYear, error) {
	var year models.AcademicYear
	if err := r.db.WithContext(ctx).First(&year, id).Error; err != nil {
		return nil, err
	}
	return &year, nil
}

func (r *academicYearRepository) FindCurrent(ctx context.Context) (*models.AcademicYear, error) {
	var year models.AcademicYear
	if err := r.db.WithContext(ctx).Where("is_current = ?", true).First(&year).Error; err != nil {
		return nil, err
	}
	return &year, nil
}

func (r *academicYearRepository) Create(ctx context.Context, year *models.AcademicYear) error {
	return r.db.WithContext(ctx).Create(year).Error
}

func (r *academicYearRepository) Update(ctx context.Context, year *models.AcademicYear) error {
	return r.db.WithContext(ctx).Save(year).Error
}

// SetCurrent marks one year current and clears the flag everywhere else
func (r *academicYearRepository) SetCurrent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.AcademicYear{}).Where("is_current = ?", true).
			Update("is_current", false).Error; err != nil {
			return err
		}
		return tx.Model(&models.AcademicYear{}).Where("id = ?", id).
			Update("is_current", true).Error
	})
}

func (r *academicYearRepository) List(ctx context.Context) ([]models.AcademicYear, error) {
	var years []models.AcademicYear
	err := r.db.WithContext(ctx).Order("start_date DESC").Find(&years).Error
	return years, err
}
