package services

import (
	"context"
	"strings"
	"time"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/sequence"
)

// FamilyService manages family records. The family code is drawn in the
// same transaction that inserts the row.
type FamilyService struct {
	repos *repository.Repositories
	tx    repository.TxManager
	now   func() time.Time
}

func NewFamilyService(repos *repository.Repositories, tx repository.TxManager) *FamilyService {
	return &FamilyService{repos: repos, tx: tx, now: time.Now}
}

type FamilyInput struct {
	FatherName    string
	FatherCNIC    *string
	FatherContact string
	MotherName    *string
	Address       *string
}

func (s *FamilyService) FindByID(ctx context.Context, id uint) (*models.Family, error) {
	family, err := s.repos.Family.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "", "Family")
	}
	return family, nil
}

func (s *FamilyService) FindByCode(ctx context.Context, code string) (*models.Family, error) {
	family, err := s.repos.Family.FindByCode(ctx, code)
	if err != nil {
		return nil, translateDBError(err, "", "Family")
	}
	return family, nil
}

func (s *FamilyService) List(ctx context.Context, query *repository.ListQuery) ([]models.Family, int64, error) {
	return s.repos.Family.List(ctx, query)
}

func (s *FamilyService) Create(ctx context.Context, input FamilyInput) (*models.Family, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	var family *models.Family
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		gen := sequence.NewGenerator(r.Student, r.Family, r.Payment, r.GroupPayment)
		code, err := gen.NextFamilyCode(ctx, s.now().Year())
		if err != nil {
			return err
		}

		family = &models.Family{
			FatherName:    strings.TrimSpace(input.FatherName),
			FatherCNIC:    input.FatherCNIC,
			FatherContact: strings.TrimSpace(input.FatherContact),
			MotherName:    input.MotherName,
			Address:       input.Address,
		}
		family.ApplyNumber(code)

		if err := r.Family.Create(ctx, family); err != nil {
			return translateDBError(err, "father_cnic", "Family")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return family, nil
}

// Update edits a family. The family code never changes.
func (s *FamilyService) Update(ctx context.Context, id uint, input FamilyInput) (*models.Family, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	var family *models.Family
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		family, err = r.Family.FindByID(ctx, id)
		if err != nil {
			return translateDBError(err, "", "Family")
		}

		family.FatherName = strings.TrimSpace(input.FatherName)
		family.FatherCNIC = input.FatherCNIC
		family.FatherContact = strings.TrimSpace(input.FatherContact)
		family.MotherName = input.MotherName
		family.Address = input.Address

		if err := r.Family.Update(ctx, family); err != nil {
			return translateDBError(err, "father_cnic", "Family")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return family, nil
}

// Delete removes a family. Students keep their rows with the family
// reference cleared; group payments recorded for the family go with it.
func (s *FamilyService) Delete(ctx context.Context, id uint) error {
	return s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.Family.FindByID(ctx, id); err != nil {
			return translateDBError(err, "", "Family")
		}
		students, err := r.Student.FindByFamily(ctx, id)
		if err != nil {
			return err
		}
		for i := range students {
			students[i].FamilyID = nil
			if err := r.Student.Update(ctx, &students[i]); err != nil {
				return err
			}
		}
		groups, err := r.GroupPayment.FindByFamily(ctx, id)
		if err != nil {
			return err
		}
		for i := range groups {
			if err := r.Payment.ClearGroup(ctx, groups[i].ID); err != nil {
				return err
			}
			if err := r.Receipt.DeleteByGroupPayment(ctx, groups[i].ID); err != nil {
				return err
			}
			if err := r.GroupPayment.Delete(ctx, groups[i].ID); err != nil {
				return err
			}
		}
		if err := r.Family.Delete(ctx, id); err != nil {
			return translateDBError(err, "", "Family")
		}
		return nil
	})
}

func (s *FamilyService) validate(input FamilyInput) error {
	if strings.TrimSpace(input.FatherName) == "" {
		return &ValidationError{Field: "father_name", Message: "must not be blank"}
	}
	if strings.TrimSpace(input.FatherContact) == "" {
		return &ValidationError{Field: "father_contact", Message: "must not be blank"}
	}
	return nil
}
