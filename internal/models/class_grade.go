package models

import (
	"time"
)

// ClassGrade represents a class/grade level (Nursery, Class 1, ... Class 10)
type ClassGrade struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ClassName string    `gorm:"size:50;not null" json:"class_name"`
	ClassCode string    `gorm:"size:10;uniqueIndex;not null" json:"class_code"`
	SortOrder int       `gorm:"column:sort_order;default:0;not null" json:"sort_order"`
	IsActive  bool      `gorm:"default:true;not null" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Associations
	Students      []Student      `gorm:"foreignKey:ClassGradeID" json:"students,omitempty"`
	FeeStructures []FeeStructure `gorm:"many2many:fee_structure_classes" json:"fee_structures,omitempty"`
}

// TableName specifies the table name for ClassGrade
func (ClassGrade) TableName() string {
	return "class_grades"
}
