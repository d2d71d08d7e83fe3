package services

import (
	"context"
	"fmt"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
)

// FeeStructureService manages the fee catalogue. A structure with recorded
// payments can never be deleted; history stays traceable to its fee.
type FeeStructureService struct {
	repos *repository.Repositories
	tx    repository.TxManager
}

func NewFeeStructureService(repos *repository.Repositories, tx repository.TxManager) *FeeStructureService {
	return &FeeStructureService{repos: repos, tx: tx}
}

type FeeStructureInput struct {
	FeeType        string
	FeeName        string
	Amount         float64
	AcademicYearID uint
	DueDateOffset  *int
	IsRecurring    *bool
	IsActive       *bool
	ClassGradeIDs  []uint
}

func (s *FeeStructureService) FindByID(ctx context.Context, id uint) (*models.FeeStructure, error) {
	fee, err := s.repos.FeeStructure.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "", "FeeStructure")
	}
	return fee, nil
}

// FindByClass lists the structures applicable to a class in a given year
func (s *FeeStructureService) FindByClass(ctx context.Context, classGradeID, academicYearID uint) ([]models.FeeStructure, error) {
	return s.repos.FeeStructure.FindByClass(ctx, classGradeID, academicYearID)
}

func (s *FeeStructureService) List(ctx context.Context, query *repository.ListQuery) ([]models.FeeStructure, int64, error) {
	return s.repos.FeeStructure.List(ctx, query)
}

func (s *FeeStructureService) Create(ctx context.Context, input FeeStructureInput) (*models.FeeStructure, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	var fee *models.FeeStructure
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.AcademicYear.FindByID(ctx, input.AcademicYearID); err != nil {
			return &ReferentialError{Entity: "AcademicYear", Message: fmt.Sprintf("academic year %d not found", input.AcademicYearID)}
		}
		classes, err := s.resolveClasses(ctx, r, input.ClassGradeIDs)
		if err != nil {
			return err
		}

		fee = &models.FeeStructure{
			FeeType:        input.FeeType,
			FeeName:        input.FeeName,
			Amount:         input.Amount,
			AcademicYearID: input.AcademicYearID,
		}
		if input.DueDateOffset != nil {
			fee.DueDateOffset = *input.DueDateOffset
		} else {
			fee.DueDateOffset = 30
		}
		if input.IsRecurring != nil {
			fee.IsRecurring = *input.IsRecurring
		}
		fee.IsActive = true
		if input.IsActive != nil {
			fee.IsActive = *input.IsActive
		}

		if err := r.FeeStructure.Create(ctx, fee); err != nil {
			return translateDBError(err, "fee_name", "FeeStructure")
		}
		if len(classes) > 0 {
			return r.FeeStructure.ReplaceClasses(ctx, fee, classes)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return fee, nil
}

func (s *FeeStructureService) Update(ctx context.Context, id uint, input FeeStructureInput) (*models.FeeStructure, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	var fee *models.FeeStructure
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		fee, err = r.FeeStructure.FindByID(ctx, id)
		if err != nil {
			return translateDBError(err, "", "FeeStructure")
		}
		classes, err := s.resolveClasses(ctx, r, input.ClassGradeIDs)
		if err != nil {
			return err
		}

		fee.FeeType = input.FeeType
		fee.FeeName = input.FeeName
		fee.Amount = input.Amount
		fee.AcademicYearID = input.AcademicYearID
		if input.DueDateOffset != nil {
			fee.DueDateOffset = *input.DueDateOffset
		}
		if input.IsRecurring != nil {
			fee.IsRecurring = *input.IsRecurring
		}
		if input.IsActive != nil {
			fee.IsActive = *input.IsActive
		}

		if err := r.FeeStructure.Update(ctx, fee); err != nil {
			return translateDBError(err, "fee_name", "FeeStructure")
		}
		return r.FeeStructure.ReplaceClasses(ctx, fee, classes)
	})
	if err != nil {
		return nil, err
	}
	return fee, nil
}

// Delete removes a fee structure. Refused when any payment references it;
// the database foreign key backs the same rule up.
func (s *FeeStructureService) Delete(ctx context.Context, id uint) error {
	return s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.FeeStructure.FindByID(ctx, id); err != nil {
			return translateDBError(err, "", "FeeStructure")
		}
		has, err := r.FeeStructure.HasPayments(ctx, id)
		if err != nil {
			return err
		}
		if has {
			return &ReferentialError{Entity: "FeeStructure", Message: "fee structure has recorded payments"}
		}
		if err := r.FeeStructure.Delete(ctx, id); err != nil {
			return translateDBError(err, "", "FeeStructure")
		}
		return nil
	})
}

func (s *FeeStructureService) validate(input FeeStructureInput) error {
	if !models.ValidFeeType(input.FeeType) {
		return &ValidationError{Field: "fee_type", Message: fmt.Sprintf("unknown fee type %q", input.FeeType)}
	}
	if input.FeeName == "" {
		return &ValidationError{Field: "fee_name", Message: "must not be blank"}
	}
	if input.Amount < 0 {
		return &ValidationError{Field: "amount", Message: "must not be negative"}
	}
	if input.DueDateOffset != nil && *input.DueDateOffset < 0 {
		return &ValidationError{Field: "due_date_offset", Message: "must not be negative"}
	}
	return nil
}

func (s *FeeStructureService) resolveClasses(ctx context.Context, r *repository.Repositories, ids []uint) ([]models.ClassGrade, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	classes, err := r.ClassGrade.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if len(classes) != len(ids) {
		return nil, &ReferentialError{Entity: "ClassGrade", Message: "one or more class grades not found"}
	}
	return classes, nil
}
