package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
)

func newPaymentServiceForTest(repos *repository.Repositories, now time.Time) *PaymentService {
	receiptSvc := NewReceiptService(repos, nil, nil)
	receiptSvc.now = func() time.Time { return now }
	svc := NewPaymentService(repos, &fakeTxManager{repos: repos}, receiptSvc, nil, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func testStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Student, error) {
			return &models.Student{ID: id, FirstName: "Ahmed"}, nil
		},
	}
}

func testFeeRepo(amount float64) *mockFeeStructureRepo {
	return &mockFeeStructureRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeeStructure, error) {
			return &models.FeeStructure{ID: id, FeeType: models.FeeTypeMonthly, FeeName: "Monthly Fee", Amount: amount, DueDateOffset: 10}, nil
		},
	}
}

func TestPaymentServiceCreateFullPaymentGetsReceipt(t *testing.T) {
	now := day(2024, time.March, 15)

	var created *models.FeePayment
	payments := &mockPaymentRepo{
		mockCreate: func(ctx context.Context, payment *models.FeePayment) error {
			payment.ID = 7
			created = payment
			return nil
		},
		mockMaxReceiptNumber: func(ctx context.Context, year int) (string, error) {
			return "", nil
		},
	}
	groups := &mockGroupPaymentRepo{}
	var boundReceipt *models.PaymentReceipt
	receipts := &mockReceiptRepo{
		mockCreate: func(ctx context.Context, receipt *models.PaymentReceipt) error {
			boundReceipt = receipt
			return nil
		},
	}

	repos := newTestRepos(testStudentRepo(), nil, testFeeRepo(1000), payments, groups, receipts)
	svc := newPaymentServiceForTest(repos, now)

	payment, err := svc.Create(context.Background(), CreatePaymentInput{
		StudentID:      1,
		FeeStructureID: 2,
		Amount:         1000,
		PaymentMethod:  models.PaymentMethodCash,
	}, 3)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.ReceiptNumber)
	assert.Equal(t, "RCP-2024-00001", *payment.ReceiptNumber)

	require.NotNil(t, boundReceipt)
	require.NotNil(t, boundReceipt.FeePaymentID)
	assert.Equal(t, uint(7), *boundReceipt.FeePaymentID)
	assert.Nil(t, boundReceipt.GroupPaymentID)
	assert.Equal(t, "RCP-2024-00001", boundReceipt.ReceiptNumber)

	assert.Equal(t, now, payment.PaymentDate)
	assert.Equal(t, day(2024, time.March, 25), payment.DueDate)
	assert.Equal(t, uint(3), payment.CreatedByID)
}

func TestPaymentServiceCreatePartialBeforeDueNoReceipt(t *testing.T) {
	now := day(2024, time.March, 15)

	payments := &mockPaymentRepo{
		mockCreate: func(ctx context.Context, payment *models.FeePayment) error {
			payment.ID = 8
			return nil
		},
	}
	receipts := &mockReceiptRepo{
		mockCreate: func(ctx context.Context, receipt *models.PaymentReceipt) error {
			t.Fatal("no receipt should be bound for a partial payment")
			return nil
		},
	}

	repos := newTestRepos(testStudentRepo(), nil, testFeeRepo(1000), payments, &mockGroupPaymentRepo{}, receipts)
	svc := newPaymentServiceForTest(repos, now)

	payment, err := svc.Create(context.Background(), CreatePaymentInput{
		StudentID:      1,
		FeeStructureID: 2,
		Amount:         400,
		PaymentMethod:  models.PaymentMethodCash,
	}, 3)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPartial, payment.Status)
	assert.Nil(t, payment.ReceiptNumber)
}

func TestPaymentServiceCreatePartialPastDueLapses(t *testing.T) {
	now := day(2024, time.March, 15)
	dueDate := day(2024, time.February, 1)

	payments := &mockPaymentRepo{
		mockCreate: func(ctx context.Context, payment *models.FeePayment) error {
			payment.ID = 9
			return nil
		},
	}

	repos := newTestRepos(testStudentRepo(), nil, testFeeRepo(1000), payments, &mockGroupPaymentRepo{}, &mockReceiptRepo{})
	svc := newPaymentServiceForTest(repos, now)

	payment, err := svc.Create(context.Background(), CreatePaymentInput{
		StudentID:      1,
		FeeStructureID: 2,
		Amount:         400,
		PaymentMethod:  models.PaymentMethodCash,
		DueDate:        &dueDate,
	}, 3)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusOverdue, payment.Status)
	assert.Nil(t, payment.ReceiptNumber)
}

func TestPaymentServiceCreateZeroAmountStaysPending(t *testing.T) {
	now := day(2024, time.March, 15)
	dueDate := day(2024, time.January, 1)

	payments := &mockPaymentRepo{
		mockCreate: func(ctx context.Context, payment *models.FeePayment) error {
			payment.ID = 10
			return nil
		},
	}

	repos := newTestRepos(testStudentRepo(), nil, testFeeRepo(1000), payments, &mockGroupPaymentRepo{}, &mockReceiptRepo{})
	svc := newPaymentServiceForTest(repos, now)

	payment, err := svc.Create(context.Background(), CreatePaymentInput{
		StudentID:      1,
		FeeStructureID: 2,
		Amount:         0,
		PaymentMethod:  models.PaymentMethodCash,
		DueDate:        &dueDate,
	}, 3)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
}

func TestPaymentServiceCreateValidation(t *testing.T) {
	svc := newPaymentServiceForTest(newTestRepos(nil, nil, nil, nil, nil, nil), day(2024, time.March, 15))

	tests := []struct {
		name  string
		input CreatePaymentInput
		actor uint
		field string
	}{
		{
			name:  "negative amount",
			input: CreatePaymentInput{Amount: -5, PaymentMethod: models.PaymentMethodCash},
			actor: 3,
			field: "amount",
		},
		{
			name:  "unknown method",
			input: CreatePaymentInput{Amount: 100, PaymentMethod: "CHEQUE"},
			actor: 3,
			field: "payment_method",
		},
		{
			name:  "digital without transaction id",
			input: CreatePaymentInput{Amount: 100, PaymentMethod: models.PaymentMethodEasypaisa},
			actor: 3,
			field: "transaction_id",
		},
		{
			name:  "missing actor",
			input: CreatePaymentInput{Amount: 100, PaymentMethod: models.PaymentMethodCash},
			actor: 0,
			field: "created_by",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input, tt.actor)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestPaymentServiceCreateUnknownStudent(t *testing.T) {
	students := &mockStudentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Student, error) {
			return nil, assert.AnError
		},
	}

	repos := newTestRepos(students, nil, testFeeRepo(1000), &mockPaymentRepo{}, &mockGroupPaymentRepo{}, &mockReceiptRepo{})
	svc := newPaymentServiceForTest(repos, day(2024, time.March, 15))

	_, err := svc.Create(context.Background(), CreatePaymentInput{
		StudentID:      99,
		FeeStructureID: 2,
		Amount:         100,
		PaymentMethod:  models.PaymentMethodCash,
	}, 3)

	var rErr *ReferentialError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, "Student", rErr.Entity)
}

func TestPaymentServiceUpdateDowngradeKeepsReceipt(t *testing.T) {
	now := day(2024, time.March, 15)
	number := "RCP-2024-00042"

	stored := &models.FeePayment{
		ID:             7,
		StudentID:      1,
		FeeStructureID: 2,
		Amount:         1000,
		PaymentMethod:  models.PaymentMethodCash,
		PaymentDate:    day(2024, time.January, 5),
		DueDate:        day(2024, time.January, 15),
		Status:         models.PaymentStatusPaid,
		ReceiptNumber:  &number,
	}

	payments := &mockPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeePayment, error) {
			return stored, nil
		},
	}
	receipts := &mockReceiptRepo{
		mockCreate: func(ctx context.Context, receipt *models.PaymentReceipt) error {
			t.Fatal("an existing receipt must not be rebound")
			return nil
		},
	}

	repos := newTestRepos(testStudentRepo(), nil, testFeeRepo(1000), payments, &mockGroupPaymentRepo{}, receipts)
	svc := newPaymentServiceForTest(repos, now)

	payment, err := svc.Update(context.Background(), 7, UpdatePaymentInput{Amount: f64Ptr(400)}, 3)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusOverdue, payment.Status)
	require.NotNil(t, payment.ReceiptNumber)
	assert.Equal(t, "RCP-2024-00042", *payment.ReceiptNumber)
}

func TestPaymentServiceUpdateIntoPaidDrawsSharedNumber(t *testing.T) {
	now := day(2024, time.March, 15)

	stored := &models.FeePayment{
		ID:             7,
		StudentID:      1,
		FeeStructureID: 2,
		Amount:         400,
		PaymentMethod:  models.PaymentMethodCash,
		PaymentDate:    day(2024, time.March, 10),
		DueDate:        day(2024, time.March, 20),
		Status:         models.PaymentStatusPartial,
	}

	payments := &mockPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeePayment, error) {
			return stored, nil
		},
		mockMaxReceiptNumber: func(ctx context.Context, year int) (string, error) {
			return "RCP-2024-00001", nil
		},
	}
	groups := &mockGroupPaymentRepo{
		mockMaxReceiptNumber: func(ctx context.Context, year int) (string, error) {
			return "RCP-2024-00006", nil
		},
	}
	var boundReceipt *models.PaymentReceipt
	receipts := &mockReceiptRepo{
		mockCreate: func(ctx context.Context, receipt *models.PaymentReceipt) error {
			boundReceipt = receipt
			return nil
		},
	}

	repos := newTestRepos(testStudentRepo(), nil, testFeeRepo(1000), payments, groups, receipts)
	svc := newPaymentServiceForTest(repos, now)

	payment, err := svc.Update(context.Background(), 7, UpdatePaymentInput{Amount: f64Ptr(1000)}, 3)

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.ReceiptNumber)
	// the group receipt RCP-2024-00006 is the overall max across both tables
	assert.Equal(t, "RCP-2024-00007", *payment.ReceiptNumber)
	require.NotNil(t, boundReceipt)
	assert.Equal(t, "RCP-2024-00007", boundReceipt.ReceiptNumber)
}

func TestPaymentServiceUpdateMemberRefreshesGroupTotals(t *testing.T) {
	now := day(2024, time.March, 15)
	groupID := uint(4)

	stored := &models.FeePayment{
		ID:             7,
		StudentID:      1,
		FeeStructureID: 2,
		Amount:         500,
		PaymentMethod:  models.PaymentMethodCash,
		PaymentDate:    day(2024, time.March, 10),
		DueDate:        day(2024, time.March, 20),
		Status:         models.PaymentStatusPartial,
		GroupPaymentID: &groupID,
	}
	group := &models.GroupPayment{ID: groupID, TotalAmount: 800, StudentsCount: 2}

	payments := &mockPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeePayment, error) {
			return stored, nil
		},
		mockFindByGroup: func(ctx context.Context, gid uint) ([]models.FeePayment, error) {
			return []models.FeePayment{*stored, {ID: 8, Amount: 300}}, nil
		},
	}
	var updatedGroup *models.GroupPayment
	groups := &mockGroupPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.GroupPayment, error) {
			return group, nil
		},
		mockUpdate: func(ctx context.Context, g *models.GroupPayment) error {
			updatedGroup = g
			return nil
		},
	}

	repos := newTestRepos(testStudentRepo(), nil, testFeeRepo(1000), payments, groups, &mockReceiptRepo{})
	svc := newPaymentServiceForTest(repos, now)

	_, err := svc.Update(context.Background(), 7, UpdatePaymentInput{Amount: f64Ptr(200)}, 3)

	require.NoError(t, err)
	require.NotNil(t, updatedGroup)
	assert.Equal(t, 500.0, updatedGroup.TotalAmount)
	assert.Equal(t, 2, updatedGroup.StudentsCount)
}

func TestPaymentServiceDeleteRemovesReceiptRecord(t *testing.T) {
	stored := &models.FeePayment{ID: 7, Amount: 100, Status: models.PaymentStatusPartial}

	var deletedPayment uint
	payments := &mockPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeePayment, error) {
			return stored, nil
		},
		mockDelete: func(ctx context.Context, id uint) error {
			deletedPayment = id
			return nil
		},
	}
	var deletedReceiptFor uint
	receipts := &mockReceiptRepo{
		mockDeleteByPayment: func(ctx context.Context, feePaymentID uint) error {
			deletedReceiptFor = feePaymentID
			return nil
		},
	}

	repos := newTestRepos(nil, nil, nil, payments, &mockGroupPaymentRepo{}, receipts)
	svc := newPaymentServiceForTest(repos, day(2024, time.March, 15))

	err := svc.Delete(context.Background(), 7, 3)

	require.NoError(t, err)
	assert.Equal(t, uint(7), deletedPayment)
	assert.Equal(t, uint(7), deletedReceiptFor)
}

func TestPaymentServiceRecomputeStatusIdempotent(t *testing.T) {
	now := day(2024, time.March, 15)

	stored := &models.FeePayment{
		ID:             7,
		FeeStructureID: 2,
		Amount:         400,
		PaymentMethod:  models.PaymentMethodCash,
		PaymentDate:    day(2024, time.March, 10),
		DueDate:        day(2024, time.March, 20),
		Status:         models.PaymentStatusPartial,
	}

	updates := 0
	payments := &mockPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeePayment, error) {
			return stored, nil
		},
		mockUpdate: func(ctx context.Context, payment *models.FeePayment) error {
			updates++
			return nil
		},
	}

	repos := newTestRepos(nil, nil, testFeeRepo(1000), payments, &mockGroupPaymentRepo{}, &mockReceiptRepo{})
	svc := newPaymentServiceForTest(repos, now)

	payment, err := svc.RecomputeStatus(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPartial, payment.Status)
	assert.Equal(t, 0, updates, "an unchanged status should not be written back")

	// past the due date the same call lapses the payment exactly once
	svc.now = func() time.Time { return day(2024, time.March, 21) }
	payment, err = svc.RecomputeStatus(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusOverdue, payment.Status)
	assert.Equal(t, 1, updates)

	payment, err = svc.RecomputeStatus(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusOverdue, payment.Status)
	assert.Equal(t, 1, updates)
}

func TestPaymentServiceRefreshOverdueStatuses(t *testing.T) {
	now := day(2024, time.March, 15)

	candidates := []models.FeePayment{
		{ID: 1, Amount: 200, Status: models.PaymentStatusPartial, DueDate: day(2024, time.February, 1)},
		{ID: 2, Amount: 300, Status: models.PaymentStatusPartial, DueDate: day(2024, time.February, 10)},
	}

	var updated []uint
	payments := &mockPaymentRepo{
		mockFindLapsedCandidates: func(ctx context.Context, today time.Time) ([]models.FeePayment, error) {
			return candidates, nil
		},
		mockUpdate: func(ctx context.Context, payment *models.FeePayment) error {
			assert.Equal(t, models.PaymentStatusOverdue, payment.Status)
			updated = append(updated, payment.ID)
			return nil
		},
	}

	repos := newTestRepos(nil, nil, nil, payments, nil, nil)
	svc := newPaymentServiceForTest(repos, now)

	lapsed, err := svc.RefreshOverdueStatuses(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, lapsed)
	assert.Equal(t, []uint{1, 2}, updated)
}
