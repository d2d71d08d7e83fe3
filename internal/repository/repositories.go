package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	AcademicYear AcademicYearRepository
	ClassGrade   ClassGradeRepository
	Family       FamilyRepository
	Student      StudentRepository
	FeeStructure FeeStructureRepository
	Payment      PaymentRepository
	GroupPayment GroupPaymentRepository
	Receipt      ReceiptRepository
}

// NewRepositories creates all repository instances
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		AcademicYear: NewAcademicYearRepository(db),
		ClassGrade:   NewClassGradeRepository(db),
		Family:       NewFamilyRepository(db),
		Student:      NewStudentRepository(db),
		FeeStructure: NewFeeStructureRepository(db),
		Payment:      NewPaymentRepository(db),
		GroupPayment: NewGroupPaymentRepository(db),
		Receipt:      NewReceiptRepository(db),
	}
}

// TxManager runs a function with every repository bound to one database
// transaction. Payment creation and membership changes use it so the
// identifier scan, the write and the receipt binding commit or roll back
// as a single unit.
type TxManager interface {
	WithinTransaction(ctx context.Context, fn func(repos *Repositories) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

// NewTxManager creates a GORM-backed transaction manager
func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) WithinTransaction(ctx context.Context, fn func(repos *Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepositories(tx))
	})
}
