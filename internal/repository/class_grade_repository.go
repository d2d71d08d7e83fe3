package repository

import (
	"context"

	"github.com/schooldesk/fees-api/internal/models"

	"gorm.io/gorm"
)

// ClassGradeRepository defines the interface for class grade data access
type ClassGradeRepository interface {
	FindByID(ctx context.Context, id uint) (*models.ClassGrade, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.ClassGrade, error)
	Create(ctx context.Context, grade *models.ClassGrade) error
	Update(ctx context.Context, grade *models.ClassGrade) error
	List(ctx context.Context) ([]models.ClassGrade, error)
}

type classGradeRepository struct {
	db *gorm.DB
}

// NewClassGradeRepository creates a new class grade repository
func NewClassGradeRepository(db *gorm.DB) ClassGradeRepository {
	return &classGradeRepository{db: db}
}

func (r *classGradeRepository) FindByID(ctx context.Context, id uint) (*models.ClassGrade, error) {
	var grade models.ClassGrade
	if err := r.db.WithContext(ctx).First(&grade, id).Error; err != nil {
		return nil, err
	}
	return &grade, nil
}

func (r *classGradeRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.ClassGrade, error) {
	var grades []models.ClassGrade
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&grades).Error
	return grades, err
}

func (r *classGradeRepository) Create(ctx context.Context, grade *models.ClassGrade) error {
	return r.db.WithContext(ctx).Create(grade).Error
}

func (r *classGradeRepository) Update(ctx context.Context, grade *models.ClassGrade) error {
	return r.db.WithContext(ctx).Save(grade).Error
}

func (r *classGradeRepository) List(ctx context.Context) ([]models.ClassGrade, error) {
	var grades []models.ClassGrade
	err := r.db.WithContext(ctx).Order("sort_order ASC").Find(&grades).Error
	return grades, err
}
