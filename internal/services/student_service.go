package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/sequence"
)

// StudentService manages student records. New students draw a student code
// and an admission number in the same transaction that inserts the row, so
// a committed student always carries both identifiers.
type StudentService struct {
	repos *repository.Repositories
	tx    repository.TxManager
	now   func() time.Time
}

func NewStudentService(repos *repository.Repositories, tx repository.TxManager) *StudentService {
	return &StudentService{repos: repos, tx: tx, now: time.Now}
}

type StudentInput struct {
	FirstName       string
	LastName        string
	FatherName      string
	DateOfBirth     time.Time
	Gender          string
	ClassGradeID    *uint
	AdmissionDate   *time.Time
	GuardianName    string
	GuardianContact string
	Address         *string
	FamilyID        *uint
	IsActive        *bool
}

func (s *StudentService) FindByID(ctx context.Context, id uint) (*models.Student, error) {
	student, err := s.repos.Student.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "", "Student")
	}
	return student, nil
}

func (s *StudentService) FindByCode(ctx context.Context, code string) (*models.Student, error) {
	student, err := s.repos.Student.FindByCode(ctx, code)
	if err != nil {
		return nil, translateDBError(err, "", "Student")
	}
	return student, nil
}

func (s *StudentService) FindByFamily(ctx context.Context, familyID uint) ([]models.Student, error) {
	return s.repos.Student.FindByFamily(ctx, familyID)
}

func (s *StudentService) List(ctx context.Context, query *repository.ListQuery) ([]models.Student, int64, error) {
	return s.repos.Student.List(ctx, query)
}

func (s *StudentService) Create(ctx context.Context, input StudentInput) (*models.Student, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	var student *models.Student
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if input.ClassGradeID != nil {
			if _, err := r.ClassGrade.FindByID(ctx, *input.ClassGradeID); err != nil {
				return &ReferentialError{Entity: "ClassGrade", Message: fmt.Sprintf("class grade %d not found", *input.ClassGradeID)}
			}
		}
		if input.FamilyID != nil {
			if _, err := r.Family.FindByID(ctx, *input.FamilyID); err != nil {
				return &ReferentialError{Entity: "Family", Message: fmt.Sprintf("family %d not found", *input.FamilyID)}
			}
		}

		year := s.now().Year()
		gen := sequence.NewGenerator(r.Student, r.Family, r.Payment, r.GroupPayment)
		code, err := gen.NextStudentCode(ctx, year)
		if err != nil {
			return err
		}
		admission, err := gen.NextAdmissionNumber(ctx, year)
		if err != nil {
			return err
		}

		admissionDate := s.now()
		if input.AdmissionDate != nil {
			admissionDate = *input.AdmissionDate
		}

		student = &models.Student{
			FirstName:       strings.TrimSpace(input.FirstName),
			LastName:        strings.TrimSpace(input.LastName),
			FatherName:      strings.TrimSpace(input.FatherName),
			DateOfBirth:     input.DateOfBirth,
			Gender:          input.Gender,
			ClassGradeID:    input.ClassGradeID,
			AdmissionDate:   admissionDate,
			GuardianName:    input.GuardianName,
			GuardianContact: input.GuardianContact,
			Address:         input.Address,
			FamilyID:        input.FamilyID,
			IsActive:        true,
		}
		student.ApplyNumber(code)
		student.ApplyAdmissionNumber(admission)

		if err := r.Student.Create(ctx, student); err != nil {
			return translateDBError(err, "student_code", "Student")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// Update edits a student. The student code and admission number are
// assigned once at creation and never change.
func (s *StudentService) Update(ctx context.Context, id uint, input StudentInput) (*models.Student, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	var student *models.Student
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		student, err = r.Student.FindByID(ctx, id)
		if err != nil {
			return translateDBError(err, "", "Student")
		}
		if input.ClassGradeID != nil {
			if _, err := r.ClassGrade.FindByID(ctx, *input.ClassGradeID); err != nil {
				return &ReferentialError{Entity: "ClassGrade", Message: fmt.Sprintf("class grade %d not found", *input.ClassGradeID)}
			}
		}
		if input.FamilyID != nil {
			if _, err := r.Family.FindByID(ctx, *input.FamilyID); err != nil {
				return &ReferentialError{Entity: "Family", Message: fmt.Sprintf("family %d not found", *input.FamilyID)}
			}
		}

		student.FirstName = strings.TrimSpace(input.FirstName)
		student.LastName = strings.TrimSpace(input.LastName)
		student.FatherName = strings.TrimSpace(input.FatherName)
		student.DateOfBirth = input.DateOfBirth
		student.Gender = input.Gender
		student.ClassGradeID = input.ClassGradeID
		student.GuardianName = input.GuardianName
		student.GuardianContact = input.GuardianContact
		student.Address = input.Address
		student.FamilyID = input.FamilyID
		if input.AdmissionDate != nil {
			student.AdmissionDate = *input.AdmissionDate
		}
		if input.IsActive != nil {
			student.IsActive = *input.IsActive
		}

		if err := r.Student.Update(ctx, student); err != nil {
			return translateDBError(err, "student_code", "Student")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// Delete removes a student and, through the cascade, their payments and
// payment receipts.
func (s *StudentService) Delete(ctx context.Context, id uint) error {
	return s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.Student.FindByID(ctx, id); err != nil {
			return translateDBError(err, "", "Student")
		}
		if err := r.Student.Delete(ctx, id); err != nil {
			return translateDBError(err, "", "Student")
		}
		return nil
	})
}

func (s *StudentService) validate(input StudentInput) error {
	if strings.TrimSpace(input.FirstName) == "" {
		return &ValidationError{Field: "first_name", Message: "must not be blank"}
	}
	if input.Gender != "MALE" && input.Gender != "FEMALE" {
		return &ValidationError{Field: "gender", Message: "must be MALE or FEMALE"}
	}
	if input.DateOfBirth.IsZero() {
		return &ValidationError{Field: "date_of_birth", Message: "must be provided"}
	}
	return nil
}
