package models

import (
	"time"
)

// GroupPayment bundles several fee payments of one family into a single
// transaction with one receipt. Its number (GP-YYYY-NNNNN) has its own
// sequence; the receipt number draws from the SAME numbering space as
// individual payment receipts (RCP-YYYY-NNNNN across both tables).
// TotalAmount and StudentsCount are always recomputed from the current
// member set, never stored independently of it.
type GroupPayment struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	GroupPaymentNumber string    `gorm:"size:50;uniqueIndex;not null" json:"group_payment_number"`
	FamilyID           uint      `gorm:"not null;index" json:"family_id"`
	TotalAmount        float64   `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	PaymentMethod      string    `gorm:"size:20;not null" json:"payment_method"`
	PaymentDate        time.Time `gorm:"type:date;not null;index" json:"payment_date"`
	TransactionID      *string   `gorm:"size:100;uniqueIndex" json:"transaction_id"`
	AccountName        *string   `gorm:"size:100" json:"account_name"`
	ReceiptNumber      string    `gorm:"size:50;uniqueIndex;not null" json:"receipt_number"`
	Status             string    `gorm:"size:20;default:PAID;not null" json:"status"`
	StudentsCount      int       `gorm:"default:0;not null" json:"students_count"`
	CreatedByID        uint      `gorm:"not null" json:"created_by_id"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`

	// Associations
	Family      *Family      `gorm:"foreignKey:FamilyID;constraint:OnDelete:CASCADE" json:"family,omitempty"`
	FeePayments []FeePayment `gorm:"foreignKey:GroupPaymentID" json:"fee_payments,omitempty"`
	CreatedBy   *User        `gorm:"foreignKey:CreatedByID" json:"-"`
}

// TableName specifies the table name for GroupPayment
func (GroupPayment) TableName() string {
	return "group_payments"
}

// Group payment status constants
const (
	GroupPaymentStatusPaid    = "PAID"
	GroupPaymentStatusPartial = "PARTIAL"
)

// ApplyNumber assigns the generated group payment number.
func (g *GroupPayment) ApplyNumber(code string) {
	g.GroupPaymentNumber = code
}

// ApplyReceiptNumber assigns the receipt number from the shared sequence.
func (g *GroupPayment) ApplyReceiptNumber(code string) {
	g.ReceiptNumber = code
}

// Recompute refreshes TotalAmount and StudentsCount from the members
// currently loaded on the group. An empty group is valid: total 0, count 0.
func (g *GroupPayment) Recompute() (total float64, count int) {
	for _, p := range g.FeePayments {
		total += p.Amount
	}
	count = len(g.FeePayments)
	g.TotalAmount = total
	g.StudentsCount = count
	return total, count
}

// GroupPaymentResponse is the JSON response format for group payments
type GroupPaymentResponse struct {
	ID                 uint                 `json:"id"`
	GroupPaymentNumber string               `json:"group_payment_number"`
	FamilyCode         string               `json:"family_code,omitempty"`
	FatherName         string               `json:"father_name,omitempty"`
	TotalAmount        float64              `json:"total_amount"`
	PaymentMethod      string               `json:"payment_method"`
	PaymentDate        time.Time            `json:"payment_date"`
	ReceiptNumber      string               `json:"receipt_number"`
	Status             string               `json:"status"`
	StudentsCount      int                  `json:"students_count"`
	FeePayments        []FeePaymentResponse `json:"fee_payments,omitempty"`
}

// ToResponse converts GroupPayment to GroupPaymentResponse
func (g *GroupPayment) ToResponse() GroupPaymentResponse {
	resp := GroupPaymentResponse{
		ID:                 g.ID,
		GroupPaymentNumber: g.GroupPaymentNumber,
		TotalAmount:        g.TotalAmount,
		PaymentMethod:      g.PaymentMethod,
		PaymentDate:        g.PaymentDate,
		ReceiptNumber:      g.ReceiptNumber,
		Status:             g.Status,
		StudentsCount:      g.StudentsCount,
	}
	if g.Family != nil {
		resp.FamilyCode = g.Family.FamilyCode
		resp.FatherName = g.Family.FatherName
	}
	for i := range g.FeePayments {
		resp.FeePayments = append(resp.FeePayments, g.FeePayments[i].ToResponse())
	}
	return resp
}
