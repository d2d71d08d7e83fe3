package services

import (
	"context"
	"fmt"
	"time"

	"github.com/schooldesk/fees-api/internal/jobs"
	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/sequence"
	"github.com/schooldesk/fees-api/internal/statemachine"
	"github.com/schooldesk/fees-api/pkg/logger"
)

// PaymentService records fee payments, derives their status and allocates
// receipt numbers. Every write runs inside a single transaction so the
// read-max-insert sequence step and the receipt binding commit atomically.
type PaymentService struct {
	repos      *repository.Repositories
	tx         repository.TxManager
	receiptSvc *ReceiptService
	auditSvc   *AuditService
	worker     *jobs.Worker
	now        func() time.Time
}

func NewPaymentService(
	repos *repository.Repositories,
	tx repository.TxManager,
	receiptSvc *ReceiptService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *PaymentService {
	return &PaymentService{
		repos:      repos,
		tx:         tx,
		receiptSvc: receiptSvc,
		auditSvc:   auditSvc,
		worker:     worker,
		now:        time.Now,
	}
}

type CreatePaymentInput struct {
	StudentID      uint
	FeeStructureID uint
	Amount         float64
	PaymentMethod  string
	PaymentDate    *time.Time
	DueDate        *time.Time
	TransactionID  *string
	AccountName    *string
	Remarks        *string
}

type UpdatePaymentInput struct {
	Amount        *float64
	PaymentMethod *string
	PaymentDate   *time.Time
	DueDate       *time.Time
	TransactionID *string
	AccountName   *string
	Remarks       *string
}

type CollectionSummary struct {
	TotalCollected float64          `json:"total_collected"`
	CountsByStatus map[string]int64 `json:"counts_by_status"`
	From           time.Time        `json:"from"`
	To             time.Time        `json:"to"`
}

func (s *PaymentService) FindByID(ctx context.Context, id uint) (*models.FeePayment, error) {
	payment, err := s.repos.Payment.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "", "FeePayment")
	}
	return payment, nil
}

func (s *PaymentService) FindByStudent(ctx context.Context, studentID uint) ([]models.FeePayment, error) {
	return s.repos.Payment.FindByStudent(ctx, studentID)
}

func (s *PaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.FeePayment, int64, error) {
	return s.repos.Payment.List(ctx, query)
}

// Create records a new fee payment. The status is derived, never taken
// from the caller; a payment that lands on PAID gets a receipt number from
// the shared sequence and a bound receipt record in the same transaction.
func (s *PaymentService) Create(ctx context.Context, input CreatePaymentInput, actorID uint) (*models.FeePayment, error) {
	if err := validatePaymentFields(input.Amount, input.PaymentMethod, input.TransactionID); err != nil {
		return nil, err
	}
	if actorID == 0 {
		return nil, &ValidationError{Field: "created_by", Message: "must reference the recording user"}
	}

	var payment *models.FeePayment
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.Student.FindByID(ctx, input.StudentID); err != nil {
			return &ReferentialError{Entity: "Student", Message: fmt.Sprintf("student %d not found", input.StudentID)}
		}
		fee, err := r.FeeStructure.FindByID(ctx, input.FeeStructureID)
		if err != nil {
			return &ReferentialError{Entity: "FeeStructure", Message: fmt.Sprintf("fee structure %d not found", input.FeeStructureID)}
		}

		paymentDate := s.now()
		if input.PaymentDate != nil {
			paymentDate = *input.PaymentDate
		}
		dueDate := fee.DueDateFor(paymentDate)
		if input.DueDate != nil {
			dueDate = *input.DueDate
		}

		payment = &models.FeePayment{
			StudentID:      input.StudentID,
			FeeStructureID: input.FeeStructureID,
			Amount:         input.Amount,
			PaymentMethod:  input.PaymentMethod,
			PaymentDate:    paymentDate,
			DueDate:        dueDate,
			TransactionID:  input.TransactionID,
			AccountName:    input.AccountName,
			Remarks:        input.Remarks,
			CreatedByID:    actorID,
		}

		if err := s.applyDerivedStatus(ctx, r, payment, fee.Amount); err != nil {
			return err
		}

		if err := r.Payment.Create(ctx, payment); err != nil {
			return translateDBError(err, "transaction_id", "FeePayment")
		}

		if payment.HasReceipt() {
			if _, err := s.receiptSvc.BindPayment(ctx, r, payment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(actorID, "create", payment)
	return payment, nil
}

// Update edits a payment and re-derives its status. A receipt number
// already allocated is kept as is even when the edit drops the payment
// below PAID; numbers are spent, not returned to the pool.
func (s *PaymentService) Update(ctx context.Context, id uint, input UpdatePaymentInput, actorID uint) (*models.FeePayment, error) {
	var payment *models.FeePayment
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		payment, err = r.Payment.FindByID(ctx, id)
		if err != nil {
			return translateDBError(err, "", "FeePayment")
		}

		if input.Amount != nil {
			payment.Amount = *input.Amount
		}
		if input.PaymentMethod != nil {
			payment.PaymentMethod = *input.PaymentMethod
		}
		if input.PaymentDate != nil {
			payment.PaymentDate = *input.PaymentDate
		}
		if input.DueDate != nil {
			payment.DueDate = *input.DueDate
		}
		if input.TransactionID != nil {
			payment.TransactionID = input.TransactionID
		}
		if input.AccountName != nil {
			payment.AccountName = input.AccountName
		}
		if input.Remarks != nil {
			payment.Remarks = input.Remarks
		}

		if err := validatePaymentFields(payment.Amount, payment.PaymentMethod, payment.TransactionID); err != nil {
			return err
		}

		fee, err := r.FeeStructure.FindByID(ctx, payment.FeeStructureID)
		if err != nil {
			return &ReferentialError{Entity: "FeeStructure", Message: fmt.Sprintf("fee structure %d not found", payment.FeeStructureID)}
		}

		hadReceipt := payment.HasReceipt()
		if err := s.applyDerivedStatus(ctx, r, payment, fee.Amount); err != nil {
			return err
		}

		if err := r.Payment.Update(ctx, payment); err != nil {
			return translateDBError(err, "transaction_id", "FeePayment")
		}

		if payment.HasReceipt() && !hadReceipt {
			if _, err := s.receiptSvc.BindPayment(ctx, r, payment); err != nil {
				return err
			}
		}

		if payment.GroupPaymentID != nil {
			if err := recomputeGroup(ctx, r, *payment.GroupPaymentID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(actorID, "update", payment)
	return payment, nil
}

// Delete removes a payment together with its receipt record. When the
// payment belonged to a group, the group's totals are refreshed.
func (s *PaymentService) Delete(ctx context.Context, id uint, actorID uint) error {
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		payment, err := r.Payment.FindByID(ctx, id)
		if err != nil {
			return translateDBError(err, "", "FeePayment")
		}
		if err := r.Receipt.DeleteByPayment(ctx, id); err != nil {
			return err
		}
		if err := r.Payment.Delete(ctx, id); err != nil {
			return err
		}
		if payment.GroupPaymentID != nil {
			return recomputeGroup(ctx, r, *payment.GroupPaymentID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if s.worker != nil && s.auditSvc != nil {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.auditSvc.Log(ctx, actorID, "delete", "FeePayment", id, "", "", "")
		})
	}
	return nil
}

// RecomputeStatus re-derives one payment's status against the current
// date. Idempotent: running it twice leaves the payment unchanged.
func (s *PaymentService) RecomputeStatus(ctx context.Context, id uint) (*models.FeePayment, error) {
	var payment *models.FeePayment
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		payment, err = r.Payment.FindByID(ctx, id)
		if err != nil {
			return translateDBError(err, "", "FeePayment")
		}
		fee, err := r.FeeStructure.FindByID(ctx, payment.FeeStructureID)
		if err != nil {
			return &ReferentialError{Entity: "FeeStructure", Message: fmt.Sprintf("fee structure %d not found", payment.FeeStructureID)}
		}

		hadReceipt := payment.HasReceipt()
		before := payment.Status
		if err := s.applyDerivedStatus(ctx, r, payment, fee.Amount); err != nil {
			return err
		}
		if payment.Status == before && payment.HasReceipt() == hadReceipt {
			return nil
		}
		if err := r.Payment.Update(ctx, payment); err != nil {
			return translateDBError(err, "transaction_id", "FeePayment")
		}
		if payment.HasReceipt() && !hadReceipt {
			if _, err := s.receiptSvc.BindPayment(ctx, r, payment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payment, nil
}

// RefreshOverdueStatuses lapses every partial payment whose due date has
// passed. Runs nightly; PAID entries are never candidates.
func (s *PaymentService) RefreshOverdueStatuses(ctx context.Context) (int, error) {
	candidates, err := s.repos.Payment.FindLapsedCandidates(ctx, s.now())
	if err != nil {
		return 0, err
	}

	lapsed := 0
	for i := range candidates {
		payment := &candidates[i]
		m := statemachine.NewPaymentFSM(payment)
		if err := m.Apply(ctx, models.PaymentStatusOverdue); err != nil {
			logger.Warn(fmt.Sprintf("[Payments] Skipping payment %d: %v", payment.ID, err))
			continue
		}
		if err := s.repos.Payment.Update(ctx, payment); err != nil {
			return lapsed, err
		}
		lapsed++
	}
	if lapsed > 0 {
		logger.Info(fmt.Sprintf("[Payments] Marked %d payments overdue", lapsed))
	}
	return lapsed, nil
}

// Summary aggregates collections between two dates
func (s *PaymentService) Summary(ctx context.Context, from, to time.Time) (*CollectionSummary, error) {
	total, err := s.repos.Payment.SumPaidBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	counts, err := s.repos.Payment.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &CollectionSummary{
		TotalCollected: total,
		CountsByStatus: counts,
		From:           from,
		To:             to,
	}, nil
}

// applyDerivedStatus derives the status, drives the state machine through
// the tentative then the final value, and allocates a receipt number when
// the payment transitions into PAID without one.
func (s *PaymentService) applyDerivedStatus(ctx context.Context, r *repository.Repositories, payment *models.FeePayment, feeAmount float64) error {
	tentative, final := payment.DeriveStatus(feeAmount, s.now())

	m := statemachine.NewPaymentFSM(payment)
	if err := m.Apply(ctx, tentative); err != nil {
		return err
	}
	if err := m.Apply(ctx, final); err != nil {
		return err
	}

	if payment.Status == models.PaymentStatusPaid && !payment.HasReceipt() {
		gen := sequence.NewGenerator(r.Student, r.Family, r.Payment, r.GroupPayment)
		number, err := gen.NextReceiptNumber(ctx, s.now().Year())
		if err != nil {
			return err
		}
		payment.ApplyNumber(number)
	}
	return nil
}

func (s *PaymentService) afterWrite(actorID uint, action string, payment *models.FeePayment) {
	if s.worker == nil {
		return
	}
	id := payment.ID
	hasReceipt := payment.HasReceipt()
	var receiptNumber string
	if hasReceipt {
		receiptNumber = *payment.ReceiptNumber
	}

	if s.auditSvc != nil {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.auditSvc.Log(ctx, actorID, action, "FeePayment", id, payment.String(), "", "")
		})
	}
	if hasReceipt && s.receiptSvc != nil && s.receiptSvc.CanRender() {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.receiptSvc.Render(ctx, receiptNumber)
		})
	}
}

func validatePaymentFields(amount float64, method string, transactionID *string) error {
	if amount < 0 {
		return &ValidationError{Field: "amount", Message: "must not be negative"}
	}
	if !models.ValidPaymentMethod(method) {
		return &ValidationError{Field: "payment_method", Message: fmt.Sprintf("unknown method %q", method)}
	}
	digital := method == models.PaymentMethodEasypaisa ||
		method == models.PaymentMethodJazzcash ||
		method == models.PaymentMethodBankTransfer
	if digital && (transactionID == nil || *transactionID == "") {
		return &ValidationError{Field: "transaction_id", Message: "required for non-cash payments"}
	}
	return nil
}

// recomputeGroup reloads a group's members and refreshes its stored totals
func recomputeGroup(ctx context.Context, r *repository.Repositories, groupID uint) error {
	group, err := r.GroupPayment.FindByID(ctx, groupID)
	if err != nil {
		return translateDBError(err, "", "GroupPayment")
	}
	members, err := r.Payment.FindByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	group.FeePayments = members
	group.Recompute()
	return r.GroupPayment.Update(ctx, group)
}
