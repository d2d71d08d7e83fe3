package models

import (
	"fmt"
	"time"
)

// Student represents an enrolled student. StudentCode (SCH-YYYY-NNNN) and
// AdmissionNumber (ADM-YYYY-NNNN) are generated year-scoped sequences.
type Student struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	StudentCode     string    `gorm:"size:50;uniqueIndex;not null" json:"student_code"`
	AdmissionNumber string    `gorm:"size:50;uniqueIndex;not null" json:"admission_number"`
	FirstName       string    `gorm:"size:100;not null" json:"first_name"`
	LastName        string    `gorm:"size:100;not null" json:"last_name"`
	FatherName      string    `gorm:"size:100;not null" json:"father_name"`
	DateOfBirth     time.Time `gorm:"type:date;not null" json:"date_of_birth"`
	Gender          string    `gorm:"size:10;not null" json:"gender"`
	ClassGradeID    *uint     `gorm:"index" json:"class_grade_id"`
	AdmissionDate   time.Time `gorm:"type:date;not null" json:"admission_date"`
	GuardianName    string    `gorm:"size:100;not null" json:"guardian_name"`
	GuardianContact string    `gorm:"size:20;not null" json:"guardian_contact"`
	Address         *string   `gorm:"type:text" json:"address"`
	FamilyID        *uint     `gorm:"index" json:"family_id"`
	IsActive        bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Associations
	ClassGrade *ClassGrade `gorm:"foreignKey:ClassGradeID" json:"class_grade,omitempty"`
	Family     *Family     `gorm:"foreignKey:FamilyID" json:"family,omitempty"`
	// Payments are owned by the student and removed with them
	FeePayments []FeePayment `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"fee_payments,omitempty"`
}

// TableName specifies the table name for Student
func (Student) TableName() string {
	return "students"
}

// ApplyNumber assigns the generated student code.
func (s *Student) ApplyNumber(code string) {
	s.StudentCode = code
}

// ApplyAdmissionNumber assigns the generated admission number.
func (s *Student) ApplyAdmissionNumber(code string) {
	s.AdmissionNumber = code
}

// FullName returns the student's full name
func (s *Student) FullName() string {
	return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
}

// Age returns the student's age in whole years
func (s *Student) Age(today time.Time) int {
	years := today.Year() - s.DateOfBirth.Year()
	if today.Month() < s.DateOfBirth.Month() ||
		(today.Month() == s.DateOfBirth.Month() && today.Day() < s.DateOfBirth.Day()) {
		years--
	}
	return years
}

// StudentResponse is the JSON response format for students
type StudentResponse struct {
	ID              uint      `json:"id"`
	StudentCode     string    `json:"student_code"`
	AdmissionNumber string    `json:"admission_number"`
	FullName        string    `json:"full_name"`
	FatherName      string    `json:"father_name"`
	Gender          string    `json:"gender"`
	ClassName       string    `json:"class_name,omitempty"`
	FamilyCode      string    `json:"family_code,omitempty"`
	AdmissionDate   time.Time `json:"admission_date"`
	GuardianName    string    `json:"guardian_name"`
	GuardianContact string    `json:"guardian_contact"`
	IsActive        bool      `json:"is_active"`
}

// ToResponse converts Student to StudentResponse
func (s *Student) ToResponse() StudentResponse {
	resp := StudentResponse{
		ID:              s.ID,
		StudentCode:     s.StudentCode,
		AdmissionNumber: s.AdmissionNumber,
		FullName:        s.FullName(),
		FatherName:      s.FatherName,
		Gender:          s.Gender,
		AdmissionDate:   s.AdmissionDate,
		GuardianName:    s.GuardianName,
		GuardianContact: s.GuardianContact,
		IsActive:        s.IsActive,
	}
	if s.ClassGrade != nil {
		resp.ClassName = s.ClassGrade.ClassName
	}
	if s.Family != nil {
		resp.FamilyCode = s.Family.FamilyCode
	}
	return resp
}
