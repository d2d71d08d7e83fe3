package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Setup("test")
	os.Exit(m.Run())
}

// fakeTxManager runs the callback against a fixed repository set, standing
// in for a real database transaction.
type fakeTxManager struct {
	repos *repository.Repositories
}

func (f *fakeTxManager) WithinTransaction(ctx context.Context, fn func(repos *repository.Repositories) error) error {
	return fn(f.repos)
}

type mockStudentRepo struct {
	repository.StudentRepository
	mockFindByID           func(ctx context.Context, id uint) (*models.Student, error)
	mockFindByFamily       func(ctx context.Context, familyID uint) ([]models.Student, error)
	mockCreate             func(ctx context.Context, student *models.Student) error
	mockUpdate             func(ctx context.Context, student *models.Student) error
	mockMaxStudentCode     func(ctx context.Context, year int) (string, error)
	mockMaxAdmissionNumber func(ctx context.Context, year int) (string, error)
}

func (m *mockStudentRepo) FindByID(ctx context.Context, id uint) (*models.Student, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockStudentRepo) FindByFamily(ctx context.Context, familyID uint) ([]models.Student, error) {
	if m.mockFindByFamily != nil {
		return m.mockFindByFamily(ctx, familyID)
	}
	return nil, nil
}

func (m *mockStudentRepo) Create(ctx context.Context, student *models.Student) error {
	return m.mockCreate(ctx, student)
}

func (m *mockStudentRepo) Update(ctx context.Context, student *models.Student) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, student)
	}
	return nil
}

func (m *mockStudentRepo) MaxStudentCode(ctx context.Context, year int) (string, error) {
	if m.mockMaxStudentCode != nil {
		return m.mockMaxStudentCode(ctx, year)
	}
	return "", nil
}

func (m *mockStudentRepo) MaxAdmissionNumber(ctx context.Context, year int) (string, error) {
	if m.mockMaxAdmissionNumber != nil {
		return m.mockMaxAdmissionNumber(ctx, year)
	}
	return "", nil
}

type mockFamilyRepo struct {
	repository.FamilyRepository
	mockFindByID      func(ctx context.Context, id uint) (*models.Family, error)
	mockCreate        func(ctx context.Context, family *models.Family) error
	mockUpdate        func(ctx context.Context, family *models.Family) error
	mockDelete        func(ctx context.Context, id uint) error
	mockMaxFamilyCode func(ctx context.Context, year int) (string, error)
}

func (m *mockFamilyRepo) Update(ctx context.Context, family *models.Family) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, family)
	}
	return nil
}

func (m *mockFamilyRepo) FindByID(ctx context.Context, id uint) (*models.Family, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockFamilyRepo) Create(ctx context.Context, family *models.Family) error {
	return m.mockCreate(ctx, family)
}

func (m *mockFamilyRepo) Delete(ctx context.Context, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, id)
	}
	return nil
}

func (m *mockFamilyRepo) MaxFamilyCode(ctx context.Context, year int) (string, error) {
	if m.mockMaxFamilyCode != nil {
		return m.mockMaxFamilyCode(ctx, year)
	}
	return "", nil
}

type mockFeeStructureRepo struct {
	repository.FeeStructureRepository
	mockFindByID       func(ctx context.Context, id uint) (*models.FeeStructure, error)
	mockCreate         func(ctx context.Context, fee *models.FeeStructure) error
	mockDelete         func(ctx context.Context, id uint) error
	mockReplaceClasses func(ctx context.Context, fee *models.FeeStructure, classes []models.ClassGrade) error
	mockHasPayments    func(ctx context.Context, id uint) (bool, error)
}

func (m *mockFeeStructureRepo) FindByID(ctx context.Context, id uint) (*models.FeeStructure, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockFeeStructureRepo) Create(ctx context.Context, fee *models.FeeStructure) error {
	return m.mockCreate(ctx, fee)
}

func (m *mockFeeStructureRepo) ReplaceClasses(ctx context.Context, fee *models.FeeStructure, classes []models.ClassGrade) error {
	if m.mockReplaceClasses != nil {
		return m.mockReplaceClasses(ctx, fee, classes)
	}
	return nil
}

func (m *mockFeeStructureRepo) Delete(ctx context.Context, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, id)
	}
	return nil
}

func (m *mockFeeStructureRepo) HasPayments(ctx context.Context, id uint) (bool, error) {
	return m.mockHasPayments(ctx, id)
}

type mockPaymentRepo struct {
	repository.PaymentRepository
	mockFindByID             func(ctx context.Context, id uint) (*models.FeePayment, error)
	mockFindByIDs            func(ctx context.Context, ids []uint) ([]models.FeePayment, error)
	mockFindByGroup          func(ctx context.Context, groupPaymentID uint) ([]models.FeePayment, error)
	mockFindLapsedCandidates func(ctx context.Context, today time.Time) ([]models.FeePayment, error)
	mockCreate               func(ctx context.Context, payment *models.FeePayment) error
	mockUpdate               func(ctx context.Context, payment *models.FeePayment) error
	mockDelete               func(ctx context.Context, id uint) error
	mockClearGroup           func(ctx context.Context, groupPaymentID uint) error
	mockMaxReceiptNumber     func(ctx context.Context, year int) (string, error)
}

func (m *mockPaymentRepo) FindByID(ctx context.Context, id uint) (*models.FeePayment, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockPaymentRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.FeePayment, error) {
	return m.mockFindByIDs(ctx, ids)
}

func (m *mockPaymentRepo) FindByGroup(ctx context.Context, groupPaymentID uint) ([]models.FeePayment, error) {
	if m.mockFindByGroup != nil {
		return m.mockFindByGroup(ctx, groupPaymentID)
	}
	return nil, nil
}

func (m *mockPaymentRepo) FindLapsedCandidates(ctx context.Context, today time.Time) ([]models.FeePayment, error) {
	return m.mockFindLapsedCandidates(ctx, today)
}

func (m *mockPaymentRepo) Create(ctx context.Context, payment *models.FeePayment) error {
	return m.mockCreate(ctx, payment)
}

func (m *mockPaymentRepo) Update(ctx context.Context, payment *models.FeePayment) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, payment)
	}
	return nil
}

func (m *mockPaymentRepo) Delete(ctx context.Context, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, id)
	}
	return nil
}

func (m *mockPaymentRepo) ClearGroup(ctx context.Context, groupPaymentID uint) error {
	if m.mockClearGroup != nil {
		return m.mockClearGroup(ctx, groupPaymentID)
	}
	return nil
}

func (m *mockPaymentRepo) MaxReceiptNumber(ctx context.Context, year int) (string, error) {
	if m.mockMaxReceiptNumber != nil {
		return m.mockMaxReceiptNumber(ctx, year)
	}
	return "", nil
}

type mockGroupPaymentRepo struct {
	repository.GroupPaymentRepository
	mockFindByID              func(ctx context.Context, id uint) (*models.GroupPayment, error)
	mockFindByFamily          func(ctx context.Context, familyID uint) ([]models.GroupPayment, error)
	mockCreate                func(ctx context.Context, group *models.GroupPayment) error
	mockUpdate                func(ctx context.Context, group *models.GroupPayment) error
	mockDelete                func(ctx context.Context, id uint) error
	mockMaxReceiptNumber      func(ctx context.Context, year int) (string, error)
	mockMaxGroupPaymentNumber func(ctx context.Context, year int) (string, error)
}

func (m *mockGroupPaymentRepo) FindByID(ctx context.Context, id uint) (*models.GroupPayment, error) {
	return m.mockFindByID(ctx, id)
}

func (m *mockGroupPaymentRepo) FindByFamily(ctx context.Context, familyID uint) ([]models.GroupPayment, error) {
	if m.mockFindByFamily != nil {
		return m.mockFindByFamily(ctx, familyID)
	}
	return nil, nil
}

func (m *mockGroupPaymentRepo) Create(ctx context.Context, group *models.GroupPayment) error {
	return m.mockCreate(ctx, group)
}

func (m *mockGroupPaymentRepo) Update(ctx context.Context, group *models.GroupPayment) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, group)
	}
	return nil
}

func (m *mockGroupPaymentRepo) Delete(ctx context.Context, id uint) error {
	if m.mockDelete != nil {
		return m.mockDelete(ctx, id)
	}
	return nil
}

func (m *mockGroupPaymentRepo) MaxReceiptNumber(ctx context.Context, year int) (string, error) {
	if m.mockMaxReceiptNumber != nil {
		return m.mockMaxReceiptNumber(ctx, year)
	}
	return "", nil
}

func (m *mockGroupPaymentRepo) MaxGroupPaymentNumber(ctx context.Context, year int) (string, error) {
	if m.mockMaxGroupPaymentNumber != nil {
		return m.mockMaxGroupPaymentNumber(ctx, year)
	}
	return "", nil
}

type mockReceiptRepo struct {
	repository.ReceiptRepository
	mockFindByNumber         func(ctx context.Context, receiptNumber string) (*models.PaymentReceipt, error)
	mockCreate               func(ctx context.Context, receipt *models.PaymentReceipt) error
	mockUpdate               func(ctx context.Context, receipt *models.PaymentReceipt) error
	mockDeleteByPayment      func(ctx context.Context, feePaymentID uint) error
	mockDeleteByGroupPayment func(ctx context.Context, groupPaymentID uint) error
}

func (m *mockReceiptRepo) FindByNumber(ctx context.Context, receiptNumber string) (*models.PaymentReceipt, error) {
	return m.mockFindByNumber(ctx, receiptNumber)
}

func (m *mockReceiptRepo) Create(ctx context.Context, receipt *models.PaymentReceipt) error {
	return m.mockCreate(ctx, receipt)
}

func (m *mockReceiptRepo) Update(ctx context.Context, receipt *models.PaymentReceipt) error {
	if m.mockUpdate != nil {
		return m.mockUpdate(ctx, receipt)
	}
	return nil
}

func (m *mockReceiptRepo) DeleteByPayment(ctx context.Context, feePaymentID uint) error {
	if m.mockDeleteByPayment != nil {
		return m.mockDeleteByPayment(ctx, feePaymentID)
	}
	return nil
}

func (m *mockReceiptRepo) DeleteByGroupPayment(ctx context.Context, groupPaymentID uint) error {
	if m.mockDeleteByGroupPayment != nil {
		return m.mockDeleteByGroupPayment(ctx, groupPaymentID)
	}
	return nil
}

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

func uintPtr(u uint) *uint { return &u }

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

// newTestRepos assembles a repository set from the given mocks, leaving
// unused slots nil.
func newTestRepos(students *mockStudentRepo, families *mockFamilyRepo, fees *mockFeeStructureRepo, payments *mockPaymentRepo, groups *mockGroupPaymentRepo, receipts *mockReceiptRepo) *repository.Repositories {
	repos := &repository.Repositories{}
	if students != nil {
		repos.Student = students
	}
	if families != nil {
		repos.Family = families
	}
	if fees != nil {
		repos.FeeStructure = fees
	}
	if payments != nil {
		repos.Payment = payments
	}
	if groups != nil {
		repos.GroupPayment = groups
	}
	if receipts != nil {
		repos.Receipt = receipts
	}
	return repos
}
