package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/schooldesk/fees-api/internal/config"
	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/storage"
)

// ReceiptService binds allocated receipt numbers to their payment or group
// payment and renders printable receipts. A receipt references exactly one
// target; binding happens inside the caller's transaction so a committed
// receipt number always has its record.
type ReceiptService struct {
	repos   *repository.Repositories
	storage *storage.LocalStorage
	cfg     *config.Config
	now     func() time.Time
}

func NewReceiptService(repos *repository.Repositories, store *storage.LocalStorage, cfg *config.Config) *ReceiptService {
	return &ReceiptService{
		repos:   repos,
		storage: store,
		cfg:     cfg,
		now:     time.Now,
	}
}

// BindPayment creates the receipt record for an individual payment. The
// payment must already carry its allocated number.
func (s *ReceiptService) BindPayment(ctx context.Context, r *repository.Repositories, payment *models.FeePayment) (*models.PaymentReceipt, error) {
	if !payment.HasReceipt() {
		return nil, &InvariantViolation{Message: fmt.Sprintf("payment %d has no receipt number to bind", payment.ID)}
	}

	receipt := &models.PaymentReceipt{
		FeePaymentID:  &payment.ID,
		ReceiptNumber: *payment.ReceiptNumber,
		ReceiptDate:   s.now(),
	}
	if !receipt.Valid() {
		return nil, &InvariantViolation{Message: "receipt must reference exactly one target"}
	}
	if err := r.Receipt.Create(ctx, receipt); err != nil {
		return nil, translateDBError(err, "receipt_number", "PaymentReceipt")
	}
	return receipt, nil
}

// BindGroupPayment creates the receipt record for a group payment
func (s *ReceiptService) BindGroupPayment(ctx context.Context, r *repository.Repositories, group *models.GroupPayment) (*models.PaymentReceipt, error) {
	if group.ReceiptNumber == "" {
		return nil, &InvariantViolation{Message: fmt.Sprintf("group payment %d has no receipt number to bind", group.ID)}
	}

	receipt := &models.PaymentReceipt{
		GroupPaymentID: &group.ID,
		ReceiptNumber:  group.ReceiptNumber,
		ReceiptDate:    s.now(),
	}
	if !receipt.Valid() {
		return nil, &InvariantViolation{Message: "receipt must reference exactly one target"}
	}
	if err := r.Receipt.Create(ctx, receipt); err != nil {
		return nil, translateDBError(err, "receipt_number", "PaymentReceipt")
	}
	return receipt, nil
}

// Resolve looks up a receipt by number and loads its target. Exactly one
// of the returned payment and group is non-nil.
func (s *ReceiptService) Resolve(ctx context.Context, receiptNumber string) (*models.PaymentReceipt, *models.FeePayment, *models.GroupPayment, error) {
	receipt, err := s.repos.Receipt.FindByNumber(ctx, receiptNumber)
	if err != nil {
		return nil, nil, nil, translateDBError(err, "", "PaymentReceipt")
	}
	if !receipt.Valid() {
		return nil, nil, nil, &InvariantViolation{Message: fmt.Sprintf("receipt %s does not reference exactly one target", receiptNumber)}
	}

	if receipt.FeePaymentID != nil {
		payment, err := s.repos.Payment.FindByID(ctx, *receipt.FeePaymentID)
		if err != nil {
			return nil, nil, nil, translateDBError(err, "", "FeePayment")
		}
		return receipt, payment, nil, nil
	}

	group, err := s.repos.GroupPayment.FindByID(ctx, *receipt.GroupPaymentID)
	if err != nil {
		return nil, nil, nil, translateDBError(err, "", "GroupPayment")
	}
	return receipt, nil, group, nil
}

func (s *ReceiptService) FindByNumber(ctx context.Context, receiptNumber string) (*models.PaymentReceipt, error) {
	receipt, err := s.repos.Receipt.FindByNumber(ctx, receiptNumber)
	if err != nil {
		return nil, translateDBError(err, "", "PaymentReceipt")
	}
	return receipt, nil
}

func (s *ReceiptService) List(ctx context.Context, query *repository.ListQuery) ([]models.PaymentReceipt, int64, error) {
	return s.repos.Receipt.List(ctx, query)
}

// CanRender reports whether PDF rendering is configured
func (s *ReceiptService) CanRender() bool {
	return s.storage != nil && s.cfg != nil
}

// Render generates the receipt PDF, stores it and records the file path.
// Safe to call again; the stored file is overwritten.
func (s *ReceiptService) Render(ctx context.Context, receiptNumber string) error {
	receipt, payment, group, err := s.Resolve(ctx, receiptNumber)
	if err != nil {
		return err
	}

	var data []byte
	if payment != nil {
		data, err = s.renderPayment(receipt, payment)
	} else {
		data, err = s.renderGroup(receipt, group)
	}
	if err != nil {
		return err
	}

	relPath, err := s.storage.SaveReceiptPDF(receiptNumber, data)
	if err != nil {
		return err
	}

	receipt.PDFFilePath = &relPath
	return s.repos.Receipt.Update(ctx, receipt)
}

func (s *ReceiptService) renderPayment(receipt *models.PaymentReceipt, payment *models.FeePayment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	s.renderHeader(pdf, receipt)

	pdf.SetFont("Arial", "", 10)
	if payment.Student != nil {
		pdf.Cell(60, 8, "Student:")
		pdf.Cell(80, 8, fmt.Sprintf("%s (%s)", payment.Student.FullName(), payment.Student.StudentCode))
		pdf.Ln(6)
	}
	if payment.FeeStructure != nil {
		pdf.Cell(60, 8, "Fee:")
		pdf.Cell(80, 8, fmt.Sprintf("%s (%s)", payment.FeeStructure.FeeName, payment.FeeStructure.FeeType))
		pdf.Ln(6)
	}

	pdf.Cell(60, 8, "Amount Paid:")
	pdf.Cell(80, 8, fmt.Sprintf("Rs. %.2f", payment.Amount))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Payment Method:")
	pdf.Cell(80, 8, payment.PaymentMethod)
	pdf.Ln(6)

	pdf.Cell(60, 8, "Payment Date:")
	pdf.Cell(80, 8, payment.PaymentDate.Format("2006-01-02"))
	pdf.Ln(6)

	if payment.TransactionID != nil {
		pdf.Cell(60, 8, "Transaction Ref:")
		pdf.Cell(80, 8, *payment.TransactionID)
		pdf.Ln(6)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ReceiptService) renderGroup(receipt *models.PaymentReceipt, group *models.GroupPayment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	s.renderHeader(pdf, receipt)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Group Payment:")
	pdf.Cell(80, 8, group.GroupPaymentNumber)
	pdf.Ln(6)

	if group.Family != nil {
		pdf.Cell(60, 8, "Family:")
		pdf.Cell(80, 8, fmt.Sprintf("%s (%s)", group.Family.FatherName, group.Family.FamilyCode))
		pdf.Ln(6)
	}

	pdf.Cell(60, 8, "Total Amount:")
	pdf.Cell(80, 8, fmt.Sprintf("Rs. %.2f", group.TotalAmount))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Students Covered:")
	pdf.Cell(80, 8, fmt.Sprintf("%d", group.StudentsCount))
	pdf.Ln(6)

	pdf.Cell(60, 8, "Payment Method:")
	pdf.Cell(80, 8, group.PaymentMethod)
	pdf.Ln(10)

	if len(group.FeePayments) > 0 {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(70, 8, "Student")
		pdf.Cell(60, 8, "Fee")
		pdf.Cell(40, 8, "Amount")
		pdf.Ln(6)

		pdf.SetFont("Arial", "", 10)
		for _, p := range group.FeePayments {
			name := fmt.Sprintf("#%d", p.StudentID)
			if p.Student != nil {
				name = p.Student.FullName()
			}
			fee := ""
			if p.FeeStructure != nil {
				fee = p.FeeStructure.FeeName
			}
			pdf.Cell(70, 8, name)
			pdf.Cell(60, 8, fee)
			pdf.Cell(40, 8, fmt.Sprintf("Rs. %.2f", p.Amount))
			pdf.Ln(6)
		}
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *ReceiptService) renderHeader(pdf *gofpdf.Fpdf, receipt *models.PaymentReceipt) {
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(140, 10, s.cfg.SchoolName)
	pdf.Ln(7)

	pdf.SetFont("Arial", "", 9)
	pdf.Cell(140, 6, s.cfg.SchoolAddress)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(60, 8, "Receipt No:")
	pdf.Cell(80, 8, receipt.ReceiptNumber)
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(60, 8, "Receipt Date:")
	pdf.Cell(80, 8, receipt.ReceiptDate.Format("2006-01-02"))
	pdf.Ln(10)
}
