package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
)

type mockAcademicYearRepo struct {
	repository.AcademicYearRepository
	mockFindByID func(ctx context.Context, id uint) (*models.AcademicYear, error)
}

func (m *mockAcademicYearRepo) FindByID(ctx context.Context, id uint) (*models.AcademicYear, error) {
	return m.mockFindByID(ctx, id)
}

type mockClassGradeRepo struct {
	repository.ClassGradeRepository
	mockFindByIDs func(ctx context.Context, ids []uint) ([]models.ClassGrade, error)
}

func (m *mockClassGradeRepo) FindByIDs(ctx context.Context, ids []uint) ([]models.ClassGrade, error) {
	return m.mockFindByIDs(ctx, ids)
}

func newFeeStructureServiceForTest(repos *repository.Repositories) *FeeStructureService {
	return NewFeeStructureService(repos, &fakeTxManager{repos: repos})
}

func TestFeeStructureServiceCreate(t *testing.T) {
	repos := newTestRepos(nil, nil, nil, nil, nil, nil)
	repos.AcademicYear = &mockAcademicYearRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.AcademicYear, error) {
			return &models.AcademicYear{ID: id, YearName: "2024-2025"}, nil
		},
	}
	repos.ClassGrade = &mockClassGradeRepo{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.ClassGrade, error) {
			return []models.ClassGrade{{ID: 1, ClassName: "Grade 5"}}, nil
		},
	}
	var created *models.FeeStructure
	var replacedWith []models.ClassGrade
	repos.FeeStructure = &mockFeeStructureRepo{
		mockCreate: func(ctx context.Context, fee *models.FeeStructure) error {
			fee.ID = 30
			created = fee
			return nil
		},
		mockReplaceClasses: func(ctx context.Context, fee *models.FeeStructure, classes []models.ClassGrade) error {
			replacedWith = classes
			return nil
		},
	}

	svc := newFeeStructureServiceForTest(repos)
	fee, err := svc.Create(context.Background(), FeeStructureInput{
		FeeType:        models.FeeTypeMonthly,
		FeeName:        "Monthly Tuition",
		Amount:         1500,
		AcademicYearID: 2,
		ClassGradeIDs:  []uint{1},
	})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, uint(30), fee.ID)
	assert.Equal(t, 30, fee.DueDateOffset, "offset should default to 30 days")
	assert.True(t, fee.IsActive)
	require.Len(t, replacedWith, 1)
	assert.Equal(t, "Grade 5", replacedWith[0].ClassName)
}

func TestFeeStructureServiceCreateUnknownClass(t *testing.T) {
	repos := newTestRepos(nil, nil, nil, nil, nil, nil)
	repos.AcademicYear = &mockAcademicYearRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.AcademicYear, error) {
			return &models.AcademicYear{ID: id}, nil
		},
	}
	repos.ClassGrade = &mockClassGradeRepo{
		mockFindByIDs: func(ctx context.Context, ids []uint) ([]models.ClassGrade, error) {
			return nil, nil
		},
	}

	svc := newFeeStructureServiceForTest(repos)
	_, err := svc.Create(context.Background(), FeeStructureInput{
		FeeType:        models.FeeTypeExam,
		FeeName:        "Exam Fee",
		Amount:         500,
		AcademicYearID: 2,
		ClassGradeIDs:  []uint{42},
	})

	var rErr *ReferentialError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, "ClassGrade", rErr.Entity)
}

func TestFeeStructureServiceCreateValidation(t *testing.T) {
	svc := newFeeStructureServiceForTest(newTestRepos(nil, nil, nil, nil, nil, nil))

	tests := []struct {
		name  string
		input FeeStructureInput
		field string
	}{
		{
			name:  "unknown fee type",
			input: FeeStructureInput{FeeType: "DONATION", FeeName: "x", Amount: 1},
			field: "fee_type",
		},
		{
			name:  "blank name",
			input: FeeStructureInput{FeeType: models.FeeTypeMonthly, Amount: 1},
			field: "fee_name",
		},
		{
			name:  "negative amount",
			input: FeeStructureInput{FeeType: models.FeeTypeMonthly, FeeName: "x", Amount: -1},
			field: "amount",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
		})
	}
}

func TestFeeStructureServiceDeleteBlockedByPayments(t *testing.T) {
	deleted := false
	fees := &mockFeeStructureRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeeStructure, error) {
			return &models.FeeStructure{ID: id}, nil
		},
		mockHasPayments: func(ctx context.Context, id uint) (bool, error) {
			return true, nil
		},
		mockDelete: func(ctx context.Context, id uint) error {
			deleted = true
			return nil
		},
	}

	svc := newFeeStructureServiceForTest(newTestRepos(nil, nil, fees, nil, nil, nil))
	err := svc.Delete(context.Background(), 30)

	var rErr *ReferentialError
	require.ErrorAs(t, err, &rErr)
	assert.Equal(t, "FeeStructure", rErr.Entity)
	assert.False(t, deleted)
}

func TestFeeStructureServiceDelete(t *testing.T) {
	var deletedID uint
	fees := &mockFeeStructureRepo{
		mockFindByID: func(ctx context.Context, id uint) (*models.FeeStructure, error) {
			return &models.FeeStructure{ID: id}, nil
		},
		mockHasPayments: func(ctx context.Context, id uint) (bool, error) {
			return false, nil
		},
		mockDelete: func(ctx context.Context, id uint) error {
			deletedID = id
			return nil
		},
	}

	svc := newFeeStructureServiceForTest(newTestRepos(nil, nil, fees, nil, nil, nil))
	err := svc.Delete(context.Background(), 30)

	require.NoError(t, err)
	assert.Equal(t, uint(30), deletedID)
}
