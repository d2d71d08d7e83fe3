package models

import (
	"time"
)

// FeeStructure defines a priced fee for an academic year. A structure can
// apply to several classes; one class can carry several structures.
// Deleting a structure that payments reference is rejected, never cascaded.
type FeeStructure struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FeeType        string    `gorm:"size:50;not null;index" json:"fee_type"`
	FeeName        string    `gorm:"size:100;not null" json:"fee_name"`
	Amount         float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	AcademicYearID uint      `gorm:"not null;index" json:"academic_year_id"`
	DueDateOffset  int       `gorm:"default:30;not null" json:"due_date_offset"` // days until due
	IsRecurring    bool      `gorm:"default:false;not null" json:"is_recurring"`
	IsActive       bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Associations
	AcademicYear      *AcademicYear `gorm:"foreignKey:AcademicYearID" json:"academic_year,omitempty"`
	ApplicableClasses []ClassGrade  `gorm:"many2many:fee_structure_classes" json:"applicable_classes,omitempty"`
	FeePayments       []FeePayment  `gorm:"foreignKey:FeeStructureID" json:"-"`
}

// TableName specifies the table name for FeeStructure
func (FeeStructure) TableName() string {
	return "fee_structures"
}

// Fee type constants
const (
	FeeTypeAdmission  = "ADMISSION"
	FeeTypeMonthly    = "MONTHLY"
	FeeTypeStationery = "STATIONERY"
	FeeTypeExam       = "EXAM"
	FeeTypeRenewal    = "ADMISSION_RENEWAL"
	FeeTypeOther      = "OTHER"
)

// FeeTypes lists all valid fee types
var FeeTypes = []string{
	FeeTypeAdmission,
	FeeTypeMonthly,
	FeeTypeStationery,
	FeeTypeExam,
	FeeTypeRenewal,
	FeeTypeOther,
}

// ValidFeeType reports whether t is a known fee type
func ValidFeeType(t string) bool {
	for _, ft := range FeeTypes {
		if ft == t {
			return true
		}
	}
	return false
}

// DueDateFor returns the due date for a payment assigned on the given date
func (f *FeeStructure) DueDateFor(assigned time.Time) time.Time {
	return assigned.AddDate(0, 0, f.DueDateOffset)
}

// FeeStructureResponse is the JSON response format for fee structures
type FeeStructureResponse struct {
	ID                uint     `json:"id"`
	FeeType           string   `json:"fee_type"`
	FeeName           string   `json:"fee_name"`
	Amount            float64  `json:"amount"`
	AcademicYear      string   `json:"academic_year,omitempty"`
	DueDateOffset     int      `json:"due_date_offset"`
	IsRecurring       bool     `json:"is_recurring"`
	IsActive          bool     `json:"is_active"`
	ApplicableClasses []string `json:"applicable_classes"`
}

// ToResponse converts FeeStructure to FeeStructureResponse
func (f *FeeStructure) ToResponse() FeeStructureResponse {
	resp := FeeStructureResponse{
		ID:            f.ID,
		FeeType:       f.FeeType,
		FeeName:       f.FeeName,
		Amount:        f.Amount,
		DueDateOffset: f.DueDateOffset,
		IsRecurring:   f.IsRecurring,
		IsActive:      f.IsActive,
	}
	if f.AcademicYear != nil {
		resp.AcademicYear = f.AcademicYear.YearName
	}
	resp.ApplicableClasses = make([]string, 0, len(f.ApplicableClasses))
	for _, c := range f.ApplicableClasses {
		resp.ApplicableClasses = append(resp.ApplicableClasses, c.ClassName)
	}
	return resp
}
