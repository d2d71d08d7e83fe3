package statemachine

import (
	"context"
	"fmt"

	"github.com/looplab/fsm"
	"github.com/schooldesk/fees-api/internal/models"
)

// PaymentFSM wraps a fee payment with its status machine. Status is a
// derived value, so every state is reachable from almost every other as
// edits change the amounts; the one transition that must never happen is
// PAID lapsing to OVERDUE (a fully settled payment stays settled no matter
// how late it was). The event table makes that structural: "lapse" has no
// PAID source.
type PaymentFSM struct {
	payment *models.FeePayment
	fsm     *fsm.FSM
}

// NewPaymentFSM creates a state machine seeded with the payment's current status
func NewPaymentFSM(payment *models.FeePayment) *PaymentFSM {
	current := payment.Status
	if current == "" {
		current = models.PaymentStatusPending
	}

	pfsm := &PaymentFSM{payment: payment}

	pfsm.fsm = fsm.NewFSM(
		current,
		fsm.Events{
			// nothing (or no longer anything) paid
			{Name: "reset", Src: []string{models.PaymentStatusPartial, models.PaymentStatusPaid, models.PaymentStatusOverdue}, Dst: models.PaymentStatusPending},

			// partial amount received; also the downgrade path when a
			// paid entry's amount is edited below the fee amount
			{Name: "part", Src: []string{models.PaymentStatusPending, models.PaymentStatusPaid, models.PaymentStatusOverdue}, Dst: models.PaymentStatusPartial},

			// full amount received
			{Name: "collect", Src: []string{models.PaymentStatusPending, models.PaymentStatusPartial, models.PaymentStatusOverdue}, Dst: models.PaymentStatusPaid},

			// due date passed without full settlement; PAID never lapses
			{Name: "lapse", Src: []string{models.PaymentStatusPending, models.PaymentStatusPartial}, Dst: models.PaymentStatusOverdue},
		},
		fsm.Callbacks{},
	)

	return pfsm
}

// Apply drives the machine to the derived status. Callers apply the
// tentative status first and the final one second so the lapse transition
// always originates from PENDING or PARTIAL, mirroring how the derivation
// rule is ordered.
func (p *PaymentFSM) Apply(ctx context.Context, status string) error {
	if p.fsm.Current() == status {
		return nil
	}

	event, err := eventFor(status)
	if err != nil {
		return err
	}

	if err := p.fsm.Event(ctx, event); err != nil {
		return fmt.Errorf("payment status %s -> %s: %w", p.payment.Status, status, err)
	}

	p.payment.Status = p.fsm.Current()
	return nil
}

// Current returns the current state
func (p *PaymentFSM) Current() string {
	return p.fsm.Current()
}

// Can checks if a transition to the given status is possible
func (p *PaymentFSM) Can(status string) bool {
	event, err := eventFor(status)
	if err != nil {
		return false
	}
	return p.fsm.Current() == status || p.fsm.Can(event)
}

func eventFor(status string) (string, error) {
	switch status {
	case models.PaymentStatusPending:
		return "reset", nil
	case models.PaymentStatusPartial:
		return "part", nil
	case models.PaymentStatusPaid:
		return "collect", nil
	case models.PaymentStatusOverdue:
		return "lapse", nil
	}
	return "", fmt.Errorf("unknown payment status: %s", status)
}
