package services

import (
	"context"
	"fmt"
	"time"

	"github.com/schooldesk/fees-api/internal/jobs"
	"github.com/schooldesk/fees-api/internal/models"
	"github.com/schooldesk/fees-api/internal/repository"
	"github.com/schooldesk/fees-api/internal/sequence"
)

// GroupPaymentService bundles several fee payments of one family under a
// single group payment with one receipt. Group creation draws two numbers
// in one transaction: a GP number from its own sequence and a receipt
// number from the space shared with individual payment receipts.
type GroupPaymentService struct {
	repos      *repository.Repositories
	tx         repository.TxManager
	receiptSvc *ReceiptService
	auditSvc   *AuditService
	worker     *jobs.Worker
	now        func() time.Time
}

func NewGroupPaymentService(
	repos *repository.Repositories,
	tx repository.TxManager,
	receiptSvc *ReceiptService,
	auditSvc *AuditService,
	worker *jobs.Worker,
) *GroupPaymentService {
	return &GroupPaymentService{
		repos:      repos,
		tx:         tx,
		receiptSvc: receiptSvc,
		auditSvc:   auditSvc,
		worker:     worker,
		now:        time.Now,
	}
}

type CreateGroupPaymentInput struct {
	FamilyID      uint
	PaymentMethod string
	PaymentDate   *time.Time
	TransactionID *string
	AccountName   *string
	FeePaymentIDs []uint
}

func (s *GroupPaymentService) FindByID(ctx context.Context, id uint) (*models.GroupPayment, error) {
	group, err := s.repos.GroupPayment.FindByID(ctx, id)
	if err != nil {
		return nil, translateDBError(err, "", "GroupPayment")
	}
	return group, nil
}

func (s *GroupPaymentService) FindByFamily(ctx context.Context, familyID uint) ([]models.GroupPayment, error) {
	return s.repos.GroupPayment.FindByFamily(ctx, familyID)
}

func (s *GroupPaymentService) List(ctx context.Context, query *repository.ListQuery) ([]models.GroupPayment, int64, error) {
	return s.repos.GroupPayment.List(ctx, query)
}

// Create records a group payment over the given member payments. A member
// that already belongs to another group is rejected; it must be removed
// from its current group first. An empty member list is allowed and yields
// a group with total 0 and count 0.
func (s *GroupPaymentService) Create(ctx context.Context, input CreateGroupPaymentInput, actorID uint) (*models.GroupPayment, error) {
	if !models.ValidPaymentMethod(input.PaymentMethod) {
		return nil, &ValidationError{Field: "payment_method", Message: fmt.Sprintf("unknown method %q", input.PaymentMethod)}
	}
	digital := input.PaymentMethod != models.PaymentMethodCash
	if digital && (input.TransactionID == nil || *input.TransactionID == "") {
		return nil, &ValidationError{Field: "transaction_id", Message: "required for non-cash payments"}
	}
	if actorID == 0 {
		return nil, &ValidationError{Field: "created_by", Message: "must reference the recording user"}
	}

	var group *models.GroupPayment
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.Family.FindByID(ctx, input.FamilyID); err != nil {
			return &ReferentialError{Entity: "Family", Message: fmt.Sprintf("family %d not found", input.FamilyID)}
		}

		members, err := r.Payment.FindByIDs(ctx, input.FeePaymentIDs)
		if err != nil {
			return err
		}
		if len(members) != len(input.FeePaymentIDs) {
			return &ReferentialError{Entity: "FeePayment", Message: "one or more member payments not found"}
		}
		for i := range members {
			if members[i].GroupPaymentID != nil {
				return &ValidationError{
					Field:   "fee_payment_ids",
					Message: fmt.Sprintf("payment %d already belongs to group %d", members[i].ID, *members[i].GroupPaymentID),
				}
			}
		}

		year := s.now().Year()
		gen := sequence.NewGenerator(r.Student, r.Family, r.Payment, r.GroupPayment)
		groupNumber, err := gen.NextGroupPaymentNumber(ctx, year)
		if err != nil {
			return err
		}
		receiptNumber, err := gen.NextReceiptNumber(ctx, year)
		if err != nil {
			return err
		}

		paymentDate := s.now()
		if input.PaymentDate != nil {
			paymentDate = *input.PaymentDate
		}

		group = &models.GroupPayment{
			FamilyID:      input.FamilyID,
			PaymentMethod: input.PaymentMethod,
			PaymentDate:   paymentDate,
			TransactionID: input.TransactionID,
			AccountName:   input.AccountName,
			Status:        models.GroupPaymentStatusPaid,
			CreatedByID:   actorID,
		}
		group.ApplyNumber(groupNumber)
		group.ApplyReceiptNumber(receiptNumber)
		group.FeePayments = members
		group.Recompute()

		if err := r.GroupPayment.Create(ctx, group); err != nil {
			return translateDBError(err, "transaction_id", "GroupPayment")
		}

		for i := range members {
			members[i].GroupPaymentID = &group.ID
			if err := r.Payment.Update(ctx, &members[i]); err != nil {
				return err
			}
		}

		if _, err := s.receiptSvc.BindGroupPayment(ctx, r, group); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(actorID, "create", group)
	return group, nil
}

// AddEntry attaches an ungrouped payment to an existing group and
// refreshes the group's totals.
func (s *GroupPaymentService) AddEntry(ctx context.Context, groupID, paymentID uint, actorID uint) (*models.GroupPayment, error) {
	var group *models.GroupPayment
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		group, err = r.GroupPayment.FindByID(ctx, groupID)
		if err != nil {
			return translateDBError(err, "", "GroupPayment")
		}
		payment, err := r.Payment.FindByID(ctx, paymentID)
		if err != nil {
			return &ReferentialError{Entity: "FeePayment", Message: fmt.Sprintf("payment %d not found", paymentID)}
		}
		if payment.GroupPaymentID != nil {
			if *payment.GroupPaymentID == groupID {
				return nil
			}
			return &ValidationError{
				Field:   "fee_payment_id",
				Message: fmt.Sprintf("payment %d already belongs to group %d", paymentID, *payment.GroupPaymentID),
			}
		}

		payment.GroupPaymentID = &groupID
		if err := r.Payment.Update(ctx, payment); err != nil {
			return err
		}
		return s.reload(ctx, r, group)
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(actorID, "add_entry", group)
	return group, nil
}

// RemoveEntry detaches a member payment from a group and refreshes the
// group's totals. The payment itself is untouched.
func (s *GroupPaymentService) RemoveEntry(ctx context.Context, groupID, paymentID uint, actorID uint) (*models.GroupPayment, error) {
	var group *models.GroupPayment
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		group, err = r.GroupPayment.FindByID(ctx, groupID)
		if err != nil {
			return translateDBError(err, "", "GroupPayment")
		}
		payment, err := r.Payment.FindByID(ctx, paymentID)
		if err != nil {
			return &ReferentialError{Entity: "FeePayment", Message: fmt.Sprintf("payment %d not found", paymentID)}
		}
		if payment.GroupPaymentID == nil || *payment.GroupPaymentID != groupID {
			return &ValidationError{
				Field:   "fee_payment_id",
				Message: fmt.Sprintf("payment %d is not a member of group %d", paymentID, groupID),
			}
		}

		payment.GroupPaymentID = nil
		if err := r.Payment.Update(ctx, payment); err != nil {
			return err
		}
		return s.reload(ctx, r, group)
	})
	if err != nil {
		return nil, err
	}

	s.afterWrite(actorID, "remove_entry", group)
	return group, nil
}

// Recompute forces a refresh of a group's stored totals from its current
// member set. Idempotent.
func (s *GroupPaymentService) Recompute(ctx context.Context, groupID uint) (*models.GroupPayment, error) {
	var group *models.GroupPayment
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		var err error
		group, err = r.GroupPayment.FindByID(ctx, groupID)
		if err != nil {
			return translateDBError(err, "", "GroupPayment")
		}
		return s.reload(ctx, r, group)
	})
	if err != nil {
		return nil, err
	}
	return group, nil
}

// Delete removes a group payment. Member payments survive: their group
// reference is cleared, their own status and receipt are untouched.
func (s *GroupPaymentService) Delete(ctx context.Context, groupID uint, actorID uint) error {
	err := s.tx.WithinTransaction(ctx, func(r *repository.Repositories) error {
		if _, err := r.GroupPayment.FindByID(ctx, groupID); err != nil {
			return translateDBError(err, "", "GroupPayment")
		}
		if err := r.Payment.ClearGroup(ctx, groupID); err != nil {
			return err
		}
		if err := r.Receipt.DeleteByGroupPayment(ctx, groupID); err != nil {
			return err
		}
		return r.GroupPayment.Delete(ctx, groupID)
	})
	if err != nil {
		return err
	}

	if s.worker != nil && s.auditSvc != nil {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.auditSvc.Log(ctx, actorID, "delete", "GroupPayment", groupID, "", "", "")
		})
	}
	return nil
}

func (s *GroupPaymentService) reload(ctx context.Context, r *repository.Repositories, group *models.GroupPayment) error {
	members, err := r.Payment.FindByGroup(ctx, group.ID)
	if err != nil {
		return err
	}
	group.FeePayments = members
	group.Recompute()
	return r.GroupPayment.Update(ctx, group)
}

func (s *GroupPaymentService) afterWrite(actorID uint, action string, group *models.GroupPayment) {
	if s.worker == nil {
		return
	}
	id := group.ID
	receiptNumber := group.ReceiptNumber

	if s.auditSvc != nil {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			details := fmt.Sprintf("%s total=%.2f students=%d", group.GroupPaymentNumber, group.TotalAmount, group.StudentsCount)
			return s.auditSvc.Log(ctx, actorID, action, "GroupPayment", id, details, "", "")
		})
	}
	if s.receiptSvc != nil && s.receiptSvc.CanRender() {
		s.worker.EnqueueAsync(func(ctx context.Context) error {
			return s.receiptSvc.Render(ctx, receiptNumber)
		})
	}
}
