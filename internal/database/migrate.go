package database

import (
	"github.com/schooldesk/fees-api/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the schema for all models. Ordering matters:
// parents before the tables that reference them.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.AcademicYear{},
		&models.ClassGrade{},
		&models.Family{},
		&models.Student{},
		&models.FeeStructure{},
		&models.GroupPayment{},
		&models.FeePayment{},
		&models.PaymentReceipt{},
		&models.AuditLog{},
	)
}
