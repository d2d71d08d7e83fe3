package models

import (
	"time"
)

// Family groups siblings under one household so their fees can be
// collected in a single group payment. The family code is a generated
// year-scoped sequence (FAM-YYYY-NNNN).
type Family struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	FamilyCode    string    `gorm:"size:50;uniqueIndex;not null" json:"family_code"`
	FatherName    string    `gorm:"size:100;not null" json:"father_name"`
	FatherCNIC    *string   `gorm:"size:20;uniqueIndex" json:"father_cnic"`
	FatherContact string    `gorm:"size:20;not null" json:"father_contact"`
	MotherName    *string   `gorm:"size:100" json:"mother_name"`
	Address       *string   `gorm:"type:text" json:"address"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// Associations
	Students      []Student      `gorm:"foreignKey:FamilyID" json:"students,omitempty"`
	GroupPayments []GroupPayment `gorm:"foreignKey:FamilyID" json:"group_payments,omitempty"`
}

// TableName specifies the table name for Family
func (Family) TableName() string {
	return "families"
}

// ApplyNumber assigns the generated family code.
func (f *Family) ApplyNumber(code string) {
	f.FamilyCode = code
}

// FamilyResponse is the JSON response format for families
type FamilyResponse struct {
	ID            uint    `json:"id"`
	FamilyCode    string  `json:"family_code"`
	FatherName    string  `json:"father_name"`
	FatherCNIC    *string `json:"father_cnic"`
	FatherContact string  `json:"father_contact"`
	MotherName    *string `json:"mother_name"`
	Address       *string `json:"address"`
	StudentsCount int     `json:"students_count"`
}

// ToResponse converts Family to FamilyResponse
func (f *Family) ToResponse() FamilyResponse {
	return FamilyResponse{
		ID:            f.ID,
		FamilyCode:    f.FamilyCode,
		FatherName:    f.FatherName,
		FatherCNIC:    f.FatherCNIC,
		FatherContact: f.FatherContact,
		MotherName:    f.MotherName,
		Address:       f.Address,
		StudentsCount: len(f.Students),
	}
}
