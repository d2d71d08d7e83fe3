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

func newGroupServiceForTest(repos *repository.Repositories, now time.Time) *GroupPaymentService {
	receiptSvc := NewReceiptService(repos, nil, nil)
	receiptSvc.now = func() time.Time { return now }
	svc := NewGroupPaymentService(repos, &fakeTxManager{repos: repos}, receiptSvc, nil, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func testFamilyRepo() *mockFamilyRepo {
	return &mockFamilyRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.Family, error) {
			return &models.Family{ID: id, FatherName: "Khan"}, nil
		},
	}
}

func TestGroupPaymentServiceCreate(t *testing.T) {
	now := day(2024, time.April, 2)

	members := []models.FeePayment{
		{ID: 11, Amount: 500, Status: models.PaymentStatusPaid},
		{ID: 12, Amount: 300, Status: models.PaymentStatusPartial},
	}
	var memberUpdates []uint
	payments := &mockPaymentRepo{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.FeePayment, error) {
			return members, nil
		},
		mockUpdate: func(ctx context.Context, payment *models.FeePayment) error {
			require.NotNil(t, payment.GroupPaymentID)
			assert.Equal(t, uint(40), *payment.GroupPaymentID)
			memberUpdates = append(memberUpdates, payment.ID)
			return nil
		},
		mockMaxReceiptNumber: func(ctx context.Context, year int) (string, error) {
			return "RCP-2024-00003", nil
		},
	}
	groups := &mockGroupPaymentRepo{
		mockCreate: func(ctx context.Context, group *models.GroupPayment) error {
			group.ID = 40
			return nil
		},
		mockMaxGroupPaymentNumber: func(ctx context.Context, year int) (string, error) {
			return "GP-2024-00001", nil
		},
		mockMaxReceiptNumber: func(ctx context.Context, year int) (string, error) {
			return "", nil
		},
	}
	var boundReceipt *models.PaymentReceipt
	receipts := &mockReceiptRepo{
		mockCreate: func(ctx context.Context, receipt *models.PaymentReceipt) error {
			boundReceipt = receipt
			return nil
		},
	}

	repos := newTestRepos(nil, testFamilyRepo(), nil, payments, groups, receipts)
	svc := newGroupServiceForTest(repos, now)

	group, err := svc.Create(context.Background(), CreateGroupPaymentInput{
		FamilyID:      5,
		PaymentMethod: models.PaymentMethodCash,
		FeePaymentIDs: []uint{11, 12},
	}, 3)

	require.NoError(t, err)
	assert.Equal(t, "GP-2024-00002", group.GroupPaymentNumber)
	// the receipt sequence is shared with individual payment receipts
	assert.Equal(t, "RCP-2024-00004", group.ReceiptNumber)
	assert.Equal(t, 800.0, group.TotalAmount)
	assert.Equal(t, 2, group.StudentsCount)
	assert.Equal(t, []uint{11, 12}, memberUpdates)

	require.NotNil(t, boundReceipt)
	require.NotNil(t, boundReceipt.GroupPaymentID)
	assert.Equal(t, uint(40), *boundReceipt.GroupPaymentID)
	assert.Nil(t, boundReceipt.FeePaymentID)
	assert.Equal(t, "RCP-2024-00004", boundReceipt.ReceiptNumber)
}

func TestGroupPaymentServiceCreateEmptyMemberList(t *testing.T) {
	now := day(2024, time.April, 2)

	payments := &mockPaymentRepo{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.FeePayment, error) {
			return nil, nil
		},
	}
	groups := &mockGroupPaymentRepo{
		mockCreate: func(ctx context.Context, group *models.GroupPayment) error {
			group.ID = 41
			return nil
		},
	}

	repos := newTestRepos(nil, testFamilyRepo(), nil, payments, groups, &mockReceiptRepo{
		mockCreate: func(ctx context.Context, receipt *models.PaymentReceipt) error { return nil },
	})
	svc := newGroupServiceForTest(repos, now)

	group, err := svc.Create(context.Background(), CreateGroupPaymentInput{
		FamilyID:      5,
		PaymentMethod: models.PaymentMethodCash,
	}, 3)

	require.NoError(t, err)
	assert.Equal(t, 0.0, group.TotalAmount)
	assert.Equal(t, 0, group.StudentsCount)
}

func TestGroupPaymentServiceCreateRejectsGroupedMember(t *testing.T) {
	otherGroup := uint(9)
	payments := &mockPaymentRepo{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.FeePayment, error) {
			return []models.FeePayment{{ID: 11, Amount: 500, GroupPaymentID: &otherGroup}}, nil
		},
	}

	repos := newTestRepos(nil, testFamilyRepo(), nil, payments, &mockGroupPaymentRepo{}, &mockReceiptRepo{})
	svc := newGroupServiceForTest(repos, day(2024, time.April, 2))

	_, err := svc.Create(context.Background(), CreateGroupPaymentInput{
		FamilyID:      5,
		PaymentMethod: models.PaymentMethodCash,
		FeePaymentIDs: []uint{11},
	}, 3)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "fee_payment_ids", vErr.Field)
	assert.Contains(t, vErr.Message, "already belongs to group 9")
}

func TestGroupPaymentServiceCreateRejectsMissingMember(t *testing.T) {
	payments := &mockPaymentRepo{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.FeePayment, error) {
			return []models.FeePayment{{ID: 11, Amount: 500}}, nil
		},
	}

	repos := newTestRepos(nil, testFamilyRepo(), nil, payments, &mockGroupPaymentRepo{}, &mockReceiptRepo{})
	svc := newGroupServiceForTest(repos, day(2024, time.April, 2))

	_, err := svc.Create(context.Background(), CreateGroupPaymentInput{
		FamilyID:      5,
		PaymentMethod: models.PaymentMethodCash,
		FeePaymentIDs: []uint{11, 99},
	}, 3)

	var rErr *ReferentialError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, "FeePayment", rErr.Entity)
}

func TestGroupPaymentServiceCreateDigitalRequiresTransactionID(t *testing.T) {
	svc := newGroupServiceForTest(newTestRepos(nil, nil, nil, nil, nil, nil), day(2024, time.April, 2))

	_, err := svc.Create(context.Background(), CreateGroupPaymentInput{
		FamilyID:      5,
		PaymentMethod: models.PaymentMethodBankTransfer,
		FeePaymentIDs: []uint{11},
	}, 3)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "transaction_id", vErr.Field)
}

func TestGroupPaymentServiceAddEntry(t *testing.T) {
	group := &models.GroupPayment{ID: 40, TotalAmount: 500, StudentsCount: 1}
	payment := &models.FeePayment{ID: 12, Amount: 300}

	payments := &mockPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeePayment, error) {
			return payment, nil
		},
		mockFindByGroup: func(ctx context.Context, groupPaymentID uint) ([]models.FeePayment, error) {
			return []models.FeePayment{{ID: 11, Amount: 500}, *payment}, nil
		},
	}
	groups := &mockGroupPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.GroupPayment, error) {
			return group, nil
		},
	}

	repos := newTestRepos(nil, nil, nil, payments, groups, nil)
	svc := newGroupServiceForTest(repos, day(2024, time.April, 2))

	got, err := svc.AddEntry(context.Background(), 40, 12, 3)

	require.NoError(t, err)
	require.NotNil(t, payment.GroupPaymentID)
	assert.Equal(t, uint(40), *payment.GroupPaymentID)
	assert.Equal(t, 800.0, got.TotalAmount)
	assert.Equal(t, 2, got.StudentsCount)
}

func TestGroupPaymentServiceAddEntryIdempotentForOwnMember(t *testing.T) {
	groupID := uint(40)
	group := &models.GroupPayment{ID: groupID, TotalAmount: 500, StudentsCount: 1}
	payment := &models.FeePayment{ID: 11, Amount: 500, GroupPaymentID: &groupID}

	updates := 0
	payments := &mockPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeePayment, error) {
			return payment, nil
		},
		mockUpdate: func(ctx context.Context, p *models.FeePayment) error {
			updates++
			return nil
		},
	}
	groups := &mockGroupPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.GroupPayment, error) {
			return group, nil
		},
	}

	repos := newTestRepos(nil, nil, nil, payments, groups, nil)
	svc := newGroupServiceForTest(repos, day(2024, time.April, 2))

	got, err := svc.AddEntry(context.Background(), 40, 11, 3)

	require.NoError(t, err)
	assert.Equal(t, 0, updates)
	assert.Equal(t, 500.0, got.TotalAmount)
}

func TestGroupPaymentServiceAddEntryRejectsForeignMember(t *testing.T) {
	otherGroup := uint(9)
	payments := &mockPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeePayment, error) {
			return &models.FeePayment{ID: 12, Amount: 300, GroupPaymentID: &otherGroup}, nil
		},
	}
	groups := &mockGroupPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.GroupPayment, error) {
			return &models.GroupPayment{ID: id}, nil
		},
	}

	repos := newTestRepos(nil, nil, nil, payments, groups, nil)
	svc := newGroupServiceForTest(repos, day(2024, time.April, 2))

	_, err := svc.AddEntry(context.Background(), 40, 12, 3)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "fee_payment_id", vErr.Field)
}

func TestGroupPaymentServiceRemoveEntry(t *testing.T) {
	groupID := uint(40)
	group := &models.GroupPayment{ID: groupID, TotalAmount: 800, StudentsCount: 2}
	payment := &models.FeePayment{ID: 12, Amount: 300, GroupPaymentID: &groupID}

	payments := &mockPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeePayment, error) {
			return payment, nil
		},
		mockFindByGroup: func(ctx context.Context, gid uint) ([]models.FeePayment, error) {
			return []models.FeePayment{{ID: 11, Amount: 500}}, nil
		},
	}
	groups := &mockGroupPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.GroupPayment, error) {
			return group, nil
		},
	}

	repos := newTestRepos(nil, nil, nil, payments, groups, nil)
	svc := newGroupServiceForTest(repos, day(2024, time.April, 2))

	got, err := svc.RemoveEntry(context.Background(), 40, 12, 3)

	require.NoError(t, err)
	assert.Nil(t, payment.GroupPaymentID)
	assert.Equal(t, 500.0, got.TotalAmount)
	assert.Equal(t, 1, got.StudentsCount)
}

func TestGroupPaymentServiceRemoveEntryRejectsNonMember(t *testing.T) {
	payments := &mockPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeePayment, error) {
			return &models.FeePayment{ID: 12, Amount: 300}, nil
		},
	}
	groups := &mockGroupPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.GroupPayment, error) {
			return &models.GroupPayment{ID: id}, nil
		},
	}

	repos := newTestRepos(nil, nil, nil, payments, groups, nil)
	svc := newGroupServiceForTest(repos, day(2024, time.April, 2))

	_, err := svc.RemoveEntry(context.Background(), 40, 12, 3)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "fee_payment_id", vErr.Field)
}

func TestGroupPaymentServiceRecomputeRefreshesStaleTotals(t *testing.T) {
	group := &models.GroupPayment{ID: 40, TotalAmount: 999, StudentsCount: 9}

	payments := &mockPaymentRepo{
		mockFindByGroup: func(ctx context.Context, gid uint) ([]models.FeePayment, error) {
			return []models.FeePayment{{ID: 11, Amount: 500}, {ID: 12, Amount: 300}}, nil
		},
	}
	groups := &mockGroupPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.GroupPayment, error) {
			return group, nil
		},
	}

	repos := newTestRepos(nil, nil, nil, payments, groups, nil)
	svc := newGroupServiceForTest(repos, day(2024, time.April, 2))

	got, err := svc.Recompute(context.Background(), 40)

	require.NoError(t, err)
	assert.Equal(t, 800.0, got.TotalAmount)
	assert.Equal(t, 2, got.StudentsCount)
}

func TestGroupPaymentServiceDeleteSparesMembers(t *testing.T) {
	var clearedGroup, deletedReceiptFor, deletedGroup uint
	payments := &mockPaymentRepo{
		mockClearGroup: func(ctx context.Context, groupPaymentID uint) error {
			clearedGroup = groupPaymentID
			return nil
		},
	}
	groups := &mockGroupPaymentRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.GroupPayment, error) {
			return &models.GroupPayment{ID: id}, nil
		},
		mockDelete: func(ctx context.Context, id uint) error {
			deletedGroup = id
			return nil
		},
	}
	receipts := &mockReceiptRepo{
		mockDeleteByGroupPayment: func(ctx context.Context, groupPaymentID uint) error {
			deletedReceiptFor = groupPaymentID
			return nil
		},
	}

	repos := newTestRepos(nil, nil, nil, payments, groups, receipts)
	svc := newGroupServiceForTest(repos, day(2024, time.April, 2))

	err := svc.Delete(context.Background(), 40, 3)

	require.NoError(t, err)
	assert.Equal(t, uint(40), clearedGroup)
	assert.Equal(t, uint(40), deletedReceiptFor)
	assert.Equal(t, uint(40), deletedGroup)
}
