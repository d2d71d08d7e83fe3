package repository

import (
	"context"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/sequence"

	"gorm.io/gorm"
)

// FamilyRepository defines the interface for family data access
type FamilyRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Family, error)
	FindByCode(ctx context.Context, code string) (*models.Family, error)
	Create(ctx context.Context, family *models.Family) error
	Update(ctx context.Context, family *models.Family) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Family, int64, error)
	MaxFamilyCode(ctx context.Context, year int) (string, error)
}

type familyRepository struct {
	db *gorm.DB
}

// NewFamilyRepository creates a new family repository
func NewFamilyRepository(db *gorm.DB) FamilyRepository {
	return &familyRepository{db: db}
}

func (r *familyRepository) FindByID(ctx context.Context, id uint) (*models.Family, error) {
	var family models.Family
	if err := r.db.WithContext(ctx).Preload("Students").First(&family, id).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

func (r *familyRepository) FindByCode(ctx context.Context, code string) (*models.Family, error) {
	var family models.Family
	if err := r.db.WithContext(ctx).Preload("Students").
		Where("family_code = ?", code).First(&family).Error; err != nil {
		return nil, err
	}
	return &family, nil
}

func (r *familyRepository) Create(ctx context.Context, family *models.Family) error {
	return r.db.WithContext(ctx).Create(family).Error
}

func (r *familyRepository) Update(ctx context.Context, family *models.Family) error {
	return r.db.WithContext(ctx).Save(family).Error
}

func (r *familyRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Family{}, id).Error
}

func (r *familyRepository) List(ctx context.Context, query *ListQuery) ([]models.Family, int64, error) {
	var families []models.Family
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Family{})
	if term := query.Filters["search_term"]; term != "" {
		like := "%" + term + "%"
		db = db.Where("family_code ILIKE ? OR father_name ILIKE ? OR father_contact ILIKE ?", like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Students").
		Order(query.Order()).Limit(query.PerPage).Offset(query.Offset()).
		Find(&families).Error
	return families, total, err
}

// MaxFamilyCode returns the highest FAM code issued in a year, or ""
func (r *familyRepository) MaxFamilyCode(ctx context.Context, year int) (string, error) {
	return maxCode(ctx, r.db, &models.Family{}, "family_code", sequence.FamilyCode.LikePattern(year))
}

// maxCode runs the shared MAX(column) LIKE pattern scan behind every
// identifier family.
func maxCode(ctx context.Context, db *gorm.DB, model interface{}, column, pattern string) (string, error) {
	var result struct {
		Code *string
	}
	err := db.WithContext(ctx).
		Model(model).
		Select("MAX(" + column + ") as code").
		Where(column+" LIKE ?", pattern).
		Scan(&result).Error
	if err != nil {
		return "", err
	}
	if result.Code == nil {
		return "", nil
	}
	return *result.Code, nil
}
