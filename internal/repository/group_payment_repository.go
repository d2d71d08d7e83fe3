package repository

import (
	"context"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/sequence"

	"gorm.io/gorm"
)

// GroupPaymentRepository defines the interface for group payment data access
type GroupPaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.GroupPayment, error)
	FindByFamily(ctx context.Context, familyID uint) ([]models.GroupPayment, error)
	Create(ctx context.Context, group *models.GroupPayment) error
	Update(ctx context.Context, group *models.GroupPayment) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.GroupPayment, int64, error)
	MaxReceiptNumber(ctx context.Context, year int) (string, error)
	MaxGroupPaymentNumber(ctx context.Context, year int) (string, error)
}

type groupPaymentRepository struct {
	db *gorm.DB
}

// NewGroupPaymentRepository creates a new group payment repository
func NewGroupPaymentRepository(db *gorm.DB) GroupPaymentRepository {
	return &groupPaymentRepository{db: db}
}

func (r *groupPaymentRepository) FindByID(ctx context.Context, id uint) (*models.GroupPayment, error) {
	var group models.GroupPayment
	err := r.db.WithContext(ctx).
		Preload("Family").
		Preload("FeePayments").
		Preload("FeePayments.Student").
		Preload("FeePayments.FeeStructure").
		First(&group, id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupPaymentRepository) FindByFamily(ctx context.Context, familyID uint) ([]models.GroupPayment, error) {
	var groups []models.GroupPayment
	err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Preload("FeePayments").
		Order("payment_date DESC").
		Find(&groups).Error
	return groups, err
}

func (r *groupPaymentRepository) Create(ctx context.Context, group *models.GroupPayment) error {
	// Members are attached by the service inside the same transaction;
	// creating through the association here would double-insert them.
	return r.db.WithContext(ctx).Omit("FeePayments").Create(group).Error
}

func (r *groupPaymentRepository) Update(ctx context.Context, group *models.GroupPayment) error {
	return r.db.WithContext(ctx).Omit("FeePayments").Save(group).Error
}

func (r *groupPaymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.GroupPayment{}, id).Error
}

func (r *groupPaymentRepository) List(ctx context.Context, query *ListQuery) ([]models.GroupPayment, int64, error) {
	var groups []models.GroupPayment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.GroupPayment{})
	if familyID := query.Filters["family_id"]; familyID != "" {
		db = db.Where("family_id = ?", familyID)
	}
	if from := query.Filters["start_date"]; from != "" {
		db = db.Where("payment_date >= ?", from)
	}
	if to := query.Filters["end_date"]; to != "" {
		db = db.Where("payment_date <= ?", to)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Family").Preload("FeePayments").
		Order(query.Order()).Limit(query.PerPage).Offset(query.Offset()).
		Find(&groups).Error
	return groups, total, err
}

// MaxReceiptNumber returns the highest RCP number on group payments for a
// year, or ""
func (r *groupPaymentRepository) MaxReceiptNumber(ctx context.Context, year int) (string, error) {
	return maxCode(ctx, r.db, &models.GroupPayment{}, "receipt_number", sequence.ReceiptNumber.LikePattern(year))
}

// MaxGroupPaymentNumber returns the highest GP number issued in a year, or ""
func (r *groupPaymentRepository) MaxGroupPaymentNumber(ctx context.Context, year int) (string, error) {
	return maxCode(ctx, r.db, &models.GroupPayment{}, "group_payment_number", sequence.GroupPaymentNumber.LikePattern(year))
}
