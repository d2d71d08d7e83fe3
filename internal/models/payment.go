package models

import (
	"fmt"
	"time"
)

// FeePayment is one fee-payment transaction for one student against one
// fee structure. Status is always derived from {amount, fee amount, due
// date}; callers never set it directly. A payment may belong to at most
// one group payment.
type FeePayment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	StudentID      uint      `gorm:"not null;index" json:"student_id"`
	FeeStructureID uint      `gorm:"not null;index" json:"fee_structure_id"`
	Amount         float64   `gorm:"type:decimal(10,2);not null" json:"amount"`
	PaymentMethod  string    `gorm:"size:20;not null" json:"payment_method"`
	PaymentDate    time.Time `gorm:"type:date;not null;index" json:"payment_date"`
	DueDate        time.Time `gorm:"type:date;not null;index" json:"due_date"`
	Status         string    `gorm:"size:20;default:PENDING;not null;index" json:"status"`
	// Assigned once, on the transition into PAID; never regenerated or
	// revoked even if a later edit drops the payment below PAID again.
	ReceiptNumber  *string `gorm:"size:50;uniqueIndex" json:"receipt_number"`
	TransactionID  *string `gorm:"size:100;uniqueIndex" json:"transaction_id"`
	AccountName    *string `gorm:"size:100" json:"account_name"`
	GroupPaymentID *uint   `gorm:"index" json:"group_payment_id"`
	Remarks        *string `gorm:"type:text" json:"remarks"`
	CreatedByID    uint    `gorm:"not null" json:"created_by_id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Associations
	Student      *Student      `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"student,omitempty"`
	FeeStructure *FeeStructure `gorm:"foreignKey:FeeStructureID;constraint:OnDelete:RESTRICT" json:"fee_structure,omitempty"`
	GroupPayment *GroupPayment `gorm:"foreignKey:GroupPaymentID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedBy    *User         `gorm:"foreignKey:CreatedByID" json:"-"`
}

// TableName specifies the table name for FeePayment
func (FeePayment) TableName() string {
	return "fee_payments"
}

// Payment method constants
const (
	PaymentMethodCash         = "CASH"
	PaymentMethodEasypaisa    = "EASYPAISA"
	PaymentMethodJazzcash     = "JAZZCASH"
	PaymentMethodBankTransfer = "BANK_TRANSFER"
)

// PaymentMethods lists all valid payment methods
var PaymentMethods = []string{
	PaymentMethodCash,
	PaymentMethodEasypaisa,
	PaymentMethodJazzcash,
	PaymentMethodBankTransfer,
}

// ValidPaymentMethod reports whether m is a known payment method
func ValidPaymentMethod(m string) bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// Payment status constants
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPaid    = "PAID"
	PaymentStatusPartial = "PARTIAL"
	PaymentStatusOverdue = "OVERDUE"
)

// IsDigital returns true when the method settles through a wallet or bank
// and therefore requires a transaction reference.
func (p *FeePayment) IsDigital() bool {
	switch p.PaymentMethod {
	case PaymentMethodEasypaisa, PaymentMethodJazzcash, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// ApplyNumber assigns the generated receipt number.
func (p *FeePayment) ApplyNumber(code string) {
	p.ReceiptNumber = &code
}

// HasReceipt returns true once a receipt number has been allocated
func (p *FeePayment) HasReceipt() bool {
	return p.ReceiptNumber != nil && *p.ReceiptNumber != ""
}

// DeriveStatus computes the payment status from the amount paid, the fee
// structure's amount owed and today's date. It returns the tentative status
// (before the due-date check) and the final one. A nothing-paid entry stays
// PENDING regardless of the due date, and a fully paid entry is PAID even
// when settled late; only PARTIAL lapses to OVERDUE.
func (p *FeePayment) DeriveStatus(feeAmount float64, today time.Time) (tentative, final string) {
	if p.Amount <= 0 {
		return PaymentStatusPending, PaymentStatusPending
	}

	if p.Amount >= feeAmount {
		return PaymentStatusPaid, PaymentStatusPaid
	}

	tentative = PaymentStatusPartial
	final = tentative
	if dateOnly(today).After(dateOnly(p.DueDate)) {
		final = PaymentStatusOverdue
	}
	return tentative, final
}

// OverdueDays returns how many days past due an unsettled payment is
func (p *FeePayment) OverdueDays(today time.Time) int {
	if p.Status != PaymentStatusOverdue {
		return 0
	}
	days := int(dateOnly(today).Sub(dateOnly(p.DueDate)).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// FeePaymentResponse is the JSON response format for fee payments
type FeePaymentResponse struct {
	ID             uint      `json:"id"`
	StudentID      uint      `json:"student_id"`
	StudentName    string    `json:"student_name,omitempty"`
	FeeStructureID uint      `json:"fee_structure_id"`
	FeeName        string    `json:"fee_name,omitempty"`
	FeeAmount      float64   `json:"fee_amount,omitempty"`
	Amount         float64   `json:"amount"`
	PaymentMethod  string    `json:"payment_method"`
	PaymentDate    time.Time `json:"payment_date"`
	DueDate        time.Time `json:"due_date"`
	Status         string    `json:"status"`
	ReceiptNumber  *string   `json:"receipt_number"`
	TransactionID  *string   `json:"transaction_id"`
	AccountName    *string   `json:"account_name"`
	GroupPaymentID *uint     `json:"group_payment_id"`
	Remarks        *string   `json:"remarks"`
}

// ToResponse converts FeePayment to FeePaymentResponse
func (p *FeePayment) ToResponse() FeePaymentResponse {
	resp := FeePaymentResponse{
		ID:             p.ID,
		StudentID:      p.StudentID,
		FeeStructureID: p.FeeStructureID,
		Amount:         p.Amount,
		PaymentMethod:  p.PaymentMethod,
		PaymentDate:    p.PaymentDate,
		DueDate:        p.DueDate,
		Status:         p.Status,
		ReceiptNumber:  p.ReceiptNumber,
		TransactionID:  p.TransactionID,
		AccountName:    p.AccountName,
		GroupPaymentID: p.GroupPaymentID,
		Remarks:        p.Remarks,
	}
	if p.Student != nil {
		resp.StudentName = p.Student.FullName()
	}
	if p.FeeStructure != nil {
		resp.FeeName = p.FeeStructure.FeeName
		resp.FeeAmount = p.FeeStructure.Amount
	}
	return resp
}

func (p *FeePayment) String() string {
	num := "no receipt"
	if p.ReceiptNumber != nil {
		num = *p.ReceiptNumber
	}
	return fmt.Sprintf("FeePayment(%s, Rs. %.2f)", num, p.Amount)
}
