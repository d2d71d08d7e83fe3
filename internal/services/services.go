package services

import (
	"github.com/schooldesk/fees-api/internal/config"
	"github.com/schooldesk/fees-api/internal/jobs"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/storage"
	"gorm.io/gorm"
)

// Services holds all service instances
type Services struct {
	Auth         *AuthService
	User         *UserService
	AcademicYear *AcademicYearService
	ClassGrade   *ClassGradeService
	Family       *FamilyService
	Student      *StudentService
	FeeStructure *FeeStructureService
	Payment      *PaymentService
	GroupPayment *GroupPaymentService
	Receipt      *ReceiptService
	Audit        *AuditService
	Export       *ExportService
}

// NewServices creates all service instances
func NewServices(repos *repository.Repositories, tx repository.TxManager, worker *jobs.Worker, store *storage.LocalStorage, cfg *config.Config, db *gorm.DB) *Services {
	auditSvc := NewAuditService(db)
	receiptSvc := NewReceiptService(repos, store, cfg)

	return &Services{
		Auth:         NewAuthService(repos.User, cfg),
		User:         NewUserService(repos.User),
		AcademicYear: NewAcademicYearService(repos.AcademicYear),
		ClassGrade:   NewClassGradeService(repos.ClassGrade),
		Family:       NewFamilyService(repos, tx),
		Student:      NewStudentService(repos, tx),
		FeeStructure: NewFeeStructureService(repos, tx),
		Payment:      NewPaymentService(repos, tx, receiptSvc, auditSvc, worker),
		GroupPayment: NewGroupPaymentService(repos, tx, receiptSvc, auditSvc, worker),
		Receipt:      receiptSvc,
		Audit:        auditSvc,
		Export:       NewExportService(),
	}
}
