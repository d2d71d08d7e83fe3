package models

import (
	"time"
)

// AcademicYear represents one school year. Fee structures are scoped to a
// year so amounts can change session to session without rewriting history.
type AcademicYear struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	YearName  string    `gorm:"size:50;uniqueIndex;not null" json:"year_name"` // e.g. "2024-2025"
	StartDate time.Time `gorm:"type:date;not null" json:"start_date"`
	EndDate   time.Time `gorm:"type:date;not null" json:"end_date"`
	IsCurrent bool      `gorm:"default:false;not null" json:"is_current"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	FeeStructures []FeeStructure `gorm:"foreignKey:AcademicYearID" json:"fee_structures,omitempty"`
}

// TableName specifies the table name for AcademicYear
func (AcademicYear) TableName() string {
	return "academic_years"
}
