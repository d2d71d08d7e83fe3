package repository

import (
	"context"

	"github.com/schooldesk/fees-api/internal/models"

	"gorm.io/gorm"
)

// ReceiptRepository defines the interface for payment receipt data access
type ReceiptRepository interface {
	FindByID(ctx context.Context, id uint) (*models.PaymentReceipt, error)
	FindByNumber(ctx context.Context, receiptNumber string) (*models.PaymentReceipt, error)
	FindByPayment(ctx context.Context, feePaymentID uint) (*models.PaymentReceipt, error)
	FindByGroupPayment(ctx context.Context, groupPaymentID uint) (*models.PaymentReceipt, error)
	Create(ctx context.Context, receipt *models.PaymentReceipt) error
	Update(ctx context.Context, receipt *models.PaymentReceipt) error
	DeleteByPayment(ctx context.Context, feePaymentID uint) error
	DeleteByGroupPayment(ctx context.Context, groupPaymentID uint) error
	List(ctx context.Context, query *ListQuery) ([]models.PaymentReceipt, int64, error)
}

type receiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository creates a new receipt repository
func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) FindByID(ctx context.Context, id uint) (*models.PaymentReceipt, error) {
	var receipt models.PaymentReceipt
	if err := r.db.WithContext(ctx).First(&receipt, id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) FindByNumber(ctx context.Context, receiptNumber string) (*models.PaymentReceipt, error) {
	var receipt models.PaymentReceipt
	err := r.db.WithContext(ctx).
		Where("receipt_number = ?", receiptNumber).
		First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) FindByPayment(ctx context.Context, feePaymentID uint) (*models.PaymentReceipt, error) {
	var receipt models.PaymentReceipt
	err := r.db.WithContext(ctx).
		Where("fee_payment_id = ?", feePaymentID).
		First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) FindByGroupPayment(ctx context.Context, groupPaymentID uint) (*models.PaymentReceipt, error) {
	var receipt models.PaymentReceipt
	err := r.db.WithContext(ctx).
		Where("group_payment_id = ?", groupPaymentID).
		First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) Create(ctx context.Context, receipt *models.PaymentReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

func (r *receiptRepository) Update(ctx context.Context, receipt *models.PaymentReceipt) error {
	return r.db.WithContext(ctx).Save(receipt).Error
}

func (r *receiptRepository) DeleteByPayment(ctx context.Context, feePaymentID uint) error {
	return r.db.WithContext(ctx).
		Where("fee_payment_id = ?", feePaymentID).
		Delete(&models.PaymentReceipt{}).Error
}

func (r *receiptRepository) DeleteByGroupPayment(ctx context.Context, groupPaymentID uint) error {
	return r.db.WithContext(ctx).
		Where("group_payment_id = ?", groupPaymentID).
		Delete(&models.PaymentReceipt{}).Error
}

func (r *receiptRepository) List(ctx context.Context, query *ListQuery) ([]models.PaymentReceipt, int64, error) {
	var receipts []models.PaymentReceipt
	var total int64

	db := r.db.WithContext(ctx).Model(&models.PaymentReceipt{})
	if from := query.Filters["start_date"]; from != "" {
		db = db.Where("receipt_date >= ?", from)
	}
	if to := query.Filters["end_date"]; to != "" {
		db = db.Where("receipt_date <= ?", to)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order(query.Order()).Limit(query.PerPage).Offset(query.Offset()).
		Find(&receipts).Error
	return receipts, total, err
}
