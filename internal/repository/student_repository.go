package repository

import (
	"context"

	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/sequence"

	"gorm.io/gorm"
)

// StudentRepository defines the interface for student data access
type StudentRepository interface {
	FindByID(ctx context.Context, id uint) (*models.Student, error)
	FindByCode(ctx context.Context, code string) (*models.Student, error)
	FindByFamily(ctx context.Context, familyID uint) ([]models.Student, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query *ListQuery) ([]models.Student, int64, error)
	MaxStudentCode(ctx context.Context, year int) (string, error)
	MaxAdmissionNumber(ctx context.Context, year int) (string, error)
}

type studentRepository struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) FindByID(ctx context.Context, id uint) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("ClassGrade").
		Preload("Family").
		First(&student, id).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) FindByCode(ctx context.Context, code string) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).
		Preload("ClassGrade").
		Preload("Family").
		Where("student_code = ?", code).
		First(&student).Error
	if err != nil {
		return nil, err
	}
	return &student, nil
}

func (r *studentRepository) FindByFamily(ctx context.Context, familyID uint) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).
		Where("family_id = ?", familyID).
		Preload("ClassGrade").
		Find(&students).Error
	return students, err
}

func (r *studentRepository) Create(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Create(student).Error
}

func (r *studentRepository) Update(ctx context.Context, student *models.Student) error {
	return r.db.WithContext(ctx).Save(student).Error
}

// Delete removes the student; their fee payments go with them (CASCADE)
func (r *studentRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Select("FeePayments").Delete(&models.Student{ID: id}).Error
}

func (r *studentRepository) List(ctx context.Context, query *ListQuery) ([]models.Student, int64, error) {
	var students []models.Student
	var total int64

	db := r.db.WithContext(ctx).Model(&models.Student{})
	if classID := query.Filters["class_grade_id"]; classID != "" {
		db = db.Where("class_grade_id = ?", classID)
	}
	if familyID := query.Filters["family_id"]; familyID != "" {
		db = db.Where("family_id = ?", familyID)
	}
	if active := query.Filters["is_active"]; active != "" {
		db = db.Where("is_active = ?", active == "true")
	}
	if term := query.Filters["search_term"]; term != "" {
		like := "%" + term + "%"
		db = db.Where("student_code ILIKE ? OR admission_number ILIKE ? OR first_name ILIKE ? OR last_name ILIKE ?",
			like, like, like, like)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Preload("ClassGrade").Preload("Family").
		Order(query.Order()).Limit(query.PerPage).Offset(query.Offset()).
		Find(&students).Error
	return students, total, err
}

// MaxStudentCode returns the highest SCH code issued in a year, or ""
func (r *studentRepository) MaxStudentCode(ctx context.Context, year int) (string, error) {
	return maxCode(ctx, r.db, &models.Student{}, "student_code", sequence.StudentCode.LikePattern(year))
}

// MaxAdmissionNumber returns the highest ADM number issued in a year, or ""
func (r *studentRepository) MaxAdmissionNumber(ctx context.Context, year int) (string, error) {
	return maxCode(ctx, r.db, &models.Student{}, "admission_number", sequence.AdmissionNumber.LikePattern(year))
}
