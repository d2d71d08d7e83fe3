package models

import (
	"time"
)

// PaymentReceipt is the canonical proof-of-payment record. It points at
// exactly one of a fee payment or a group payment, carries the same
// receipt number as its target, and may reference a rendered PDF.
type PaymentReceipt struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	FeePaymentID   *uint     `gorm:"uniqueIndex" json:"fee_payment_id"`
	GroupPaymentID *uint     `gorm:"uniqueIndex" json:"group_payment_id"`
	ReceiptNumber  string    `gorm:"size:50;uniqueIndex;not null" json:"receipt_number"`
	ReceiptDate    time.Time `gorm:"type:date;not null" json:"receipt_date"`
	PDFFilePath    *string   `gorm:"size:255" json:"pdf_file_path"`
	CreatedAt      time.Time `json:"created_at"`

	// Associations
	FeePayment   *FeePayment   `gorm:"foreignKey:FeePaymentID;constraint:OnDelete:CASCADE" json:"fee_payment,omitempty"`
	GroupPayment *GroupPayment `gorm:"foreignKey:GroupPaymentID;constraint:OnDelete:CASCADE" json:"group_payment,omitempty"`
}

// TableName specifies the table name for PaymentReceipt
func (PaymentReceipt) TableName() string {
	return "payment_receipts"
}

// IsGroupReceipt returns true when the receipt belongs to a group payment
func (r *PaymentReceipt) IsGroupReceipt() bool {
	return r.GroupPaymentID != nil
}

// Valid reports whether exactly one target reference is set. Both-set or
// neither-set should be unreachable; callers treat false as an invariant
// violation.
func (r *PaymentReceipt) Valid() bool {
	return (r.FeePaymentID != nil) != (r.GroupPaymentID != nil)
}

// ReceiptResponse is the JSON response format for receipts
type ReceiptResponse struct {
	ID             uint      `json:"id"`
	ReceiptNumber  string    `json:"receipt_number"`
	ReceiptDate    time.Time `json:"receipt_date"`
	IsGroupReceipt bool      `json:"is_group_receipt"`
	HasPDF         bool      `json:"has_pdf"`
	FeePaymentID   *uint     `json:"fee_payment_id,omitempty"`
	GroupPaymentID *uint     `json:"group_payment_id,omitempty"`
}

// ToResponse converts PaymentReceipt to ReceiptResponse
func (r *PaymentReceipt) ToResponse() ReceiptResponse {
	return ReceiptResponse{
		ID:             r.ID,
		ReceiptNumber:  r.ReceiptNumber,
		ReceiptDate:    r.ReceiptDate,
		IsGroupReceipt: r.IsGroupReceipt(),
		HasPDF:         r.PDFFilePath != nil && *r.PDFFilePath != "",
		FeePaymentID:   r.FeePaymentID,
		GroupPaymentID: r.GroupPaymentID,
	}
}
