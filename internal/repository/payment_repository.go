package repository

import (
	"context"
	"time"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/sequence"

	"gorm.io/gorm"
)

// PaymentRepository defines the interface for fee payment data access
type PaymentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.FeePayment, error)
	FindByIDs(ctx context.Context, ids []uint) ([]models.FeePayment, error)
	FindByStudent(ctx context.Context, studentID uint) ([]models.FeePayment, error)
	FindByGroup(ctx context.Context, groupPaymentID uint) ([]models.FeePayment, error)
	FindLapsedCandidates(ctx context.Context, today time.Time) ([]models.FeePayment, error)
	Create(ctx context.Context, payment *models.FeePayment) error
	Update(ctx context.Context, payment *models.FeePayment) error
	Delete(ctx context.Context, id uint) error
	ClearGroup(ctx context.Context, groupPaymentID uint) error
	List(ctx context.Context, query *ListQuery) ([]models.FeePayment, int64, error)
	SumPaidBetween(ctx context.Context, from, to time.Time) (float64, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
	MaxReceiptNumber(ctx context.Context, year int) (string, error)
}

type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) FindByID(ctx context.Context, id uint) (*models.FeePayment, error) {
	var payment models.FeePayment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("FeeStructure").
		First(&payment, id).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.FeePayment, error) {
	var payments []models.FeePayment
	err := r.db.WithContext(ctx).
		Preload("Student").
		Preload("FeeStructure").
		Where("id IN ?", ids).
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindByStudent(ctx context.Context, studentID uint) ([]models.FeePayment, error) {
	var payments []models.FeePayment
	err := r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Preload("FeeStructure").
		Order("due_date ASC").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) FindByGroup(ctx context.Context, groupPaymentID uint) ([]models.FeePayment, error) {
	var payments []models.FeePayment
	err := r.db.WithContext(ctx).
		Where("group_payment_id = ?", groupPaymentID).
		Preload("Student").
		Preload("FeeStructure").
		Find(&payments).Error
	return payments, err
}

// FindLapsedCandidates returns PARTIAL payments whose due date has passed
// but whose stored status has not caught up yet. The nightly refresh job
// re-derives these.
func (r *paymentRepository) FindLapsedCandidates(ctx context.Context, today time.Time) ([]models.FeePayment, error) {
	var payments []models.FeePayment
	err := r.db.WithContext(ctx).
		Where("status = ?", models.PaymentStatusPartial).
		Where("due_date < ?", today.Format("2006-01-02")).
		Preload("FeeStructure").
		Find(&payments).Error
	return payments, err
}

func (r *paymentRepository) Create(ctx context.Context, payment *models.FeePayment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *paymentRepository) Update(ctx context.Context, payment *models.FeePayment) error {
	return r.db.WithContext(ctx).Save(payment).Error
}

func (r *paymentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.FeePayment{}, id).Error
}

// ClearGroup detaches all members of a group payment without deleting them
func (r *paymentRepository) ClearGroup(ctx context.Context, groupPaymentID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.FeePayment{}).
		Where("group_payment_id = ?", groupPaymentID).
		Update("group_payment_id", nil).Error
}

func (r *paymentRepository) List(ctx context.Context, query *ListQuery) ([]models.FeePayment, int64, error) {
	var payments []models.FeePayment
	var total int64

	db := r.db.WithContext(ctx).Model(&models.FeePayment{})
	if status := query.Filters["status"]; status != "" {
		db = db.Where("status = ?", status)
	}
	if method := query.Filters["payment_method"]; method != "" {
		db = db.Where("payment_method = ?", method)
	}
	if studentID := query.Filters["student_id"]; studentID != "" {
		db = db.Where("student_id = ?", studentID)
	}
	if from := query.Filters["start_date"]; from != "" {
		db = db.Where("payment_date >= ?", from)
	}
	if to := query.Filters["end_date"]; to != "" {
		db = db.Where("payment_date <= ?", to)
	}
	if term := query.Filters["search_term"]; term != "" {
		like := "%" + term + "%"
		db = db.Where(
			"receipt_number ILIKE ? OR transaction_id ILIKE ? OR student_id IN (SELECT id FROM students WHERE first_name ILIKE ? OR last_name ILIKE ? OR student_code ILIKE ?)",
			like, like, like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("Student").Preload("FeeStructure").
		Order(query.Order()).Limit(query.PerPage).Offset(query.Offset()).
		Find(&payments).Error
	return payments, total, err
}

// SumPaidBetween totals the PAID amounts collected in a date range
func (r *paymentRepository) SumPaidBetween(ctx context.Context, from, to time.Time) (float64, error) {
	var result struct {
		Total float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.FeePayment{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("status = ?", models.PaymentStatusPaid).
		Where("payment_date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02")).
		Scan(&result).Error
	return result.Total, err
}

// CountByStatus returns payment counts keyed by status
func (r *paymentRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	err := r.db.WithContext(ctx).
		Model(&models.FeePayment{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// MaxReceiptNumber returns the highest RCP number on fee payments for a
// year, or "". Group payments keep their own scan; the generator combines
// the two because the numbering space is shared.
func (r *paymentRepository) MaxReceiptNumber(ctx context.Context, year int) (string, error) {
	return maxCode(ctx, r.db, &models.FeePayment{}, "receipt_number", sequence.ReceiptNumber.LikePattern(year))
}
