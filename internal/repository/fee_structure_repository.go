package repository

import (
	"context"

	"github.com/schooldesk/fees-api/internal/models"

	"gorm.io/gorm"
)

// FeeStructureRepository defines the interface for fee structure data access
type FeeStructureRepository interface {
	FindByID(ctx context.Context, id uint) (*models.FeeStructure, error)
	FindByClass(ctx context.Context, classGradeID uint, academicYearID uint) ([]models.FeeStructure, error)
	Create(ctx context.Context, fee *models.FeeStructure) error
	Update(ctx context.Context, fee *models.FeeStructure) error
	Delete(ctx context.Context, id uint) error
	ReplaceClasses(ctx context.Context, fee *models.FeeStructure, classes []models.ClassGrade) error
	HasPayments(ctx context.Context, id uint) (bool, error)
	List(ctx context.Context, query *ListQuery) ([]models.FeeStructure, int64, error)
}

type feeStructureRepository struct {
	db *gorm.DB
}

// NewFeeStructureRepository creates a new fee structure repository
func NewFeeStructureRepository(db *gorm.DB) FeeStructureRepository {
	return &feeStructureRepository{db: db}
}

func (r *feeStructureRepository) FindByID(ctx context.Context, id uint) (*models.FeeStructure, error) {
	var fee models.FeeStructure
	err := r.db.WithContext(ctx).
		Preload("AcademicYear").
		Preload("ApplicableClasses").
		First(&fee, id).Error
	if err != nil {
		return nil, err
	}
	return &fee, nil
}

func (r *feeStructureRepository) FindByClass(ctx context.Context, classGradeID uint, academicYearID uint) ([]models.FeeStructure, error) {
	var fees []models.FeeStructure
	db := r.db.WithContext(ctx).
		Joins("JOIN fee_structure_classes fsc ON fsc.fee_structure_id = fee_structures.id").
		Where("fsc.class_grade_id = ?", classGradeID).
		Where("fee_structures.is_active = ?", true)
	if academicYearID != 0 {
		db = db.Where("fee_structures.academic_year_id = ?", academicYearID)
	}
	err := db.Preload("AcademicYear").Find(&fees).Error
	return fees, err
}

func (r *feeStructureRepository) Create(ctx context.Context, fee *models.FeeStructure) error {
	return r.db.WithContext(ctx).Create(fee).Error
}

func (r *feeStructureRepository) Update(ctx context.Context, fee *models.FeeStructure) error {
	return r.db.WithContext(ctx).Omit("ApplicableClasses").Save(fee).Error
}

// Delete removes a fee structure. The FK on fee_payments is RESTRICT, so
// deleting a referenced structure fails at the database even if the
// service-level pre-check raced with a new payment.
func (r *feeStructureRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Select("ApplicableClasses").Delete(&models.FeeStructure{ID: id}).Error
}

// ReplaceClasses rewrites the applicability set of a fee structure
func (r *feeStructureRepository) ReplaceClasses(ctx context.Context, fee *models.FeeStructure, classes []models.ClassGrade) error {
	return r.db.WithContext(ctx).Model(fee).Association("ApplicableClasses").Replace(classes)
}

// HasPayments reports whether any fee payment references the structure
func (r *feeStructureRepository) HasPayments(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FeePayment{}).
		Where("fee_structure_id = ?", id).
		Count(&count).Error
	return count > 0, err
}

func (r *feeStructureRepository) List(ctx context.Context, query *ListQuery) ([]models.FeeStructure, int64, error) {
	var fees []models.FeeStructure
	var total int64

	db := r.db.WithContext(ctx).Model(&models.FeeStructure{})
	if feeType := query.Filters["fee_type"]; feeType != "" {
		db = db.Where("fee_type = ?", feeType)
	}
	if yearID := query.Filters["academic_year_id"]; yearID != "" {
		db = db.Where("academic_year_id = ?", yearID)
	}
	if active := query.Filters["is_active"]; active != "" {
		db = db.Where("is_active = ?", active == "true")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("AcademicYear").Preload("ApplicableClasses").
		Order(query.Order()).Limit(query.PerPage).Offset(query.Offset()).
		Find(&fees).Error
	return fees, total, err
}
