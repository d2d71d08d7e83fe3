// Package sequence produces the year-scoped, zero-padded codes used across
// the system: student codes, admission numbers, family codes, receipt
// numbers and group payment numbers. Codes have the form PREFIX-YEAR-NNNN
// with a fixed per-family width.
//
// Generation is advisory: the scan-then-increment is not serialized against
// concurrent writers, so the unique index at the database is the actual
// correctness guarantee. A collision on insert surfaces as a conflict error
// and the caller decides whether to retry under a fresh read.
package sequence

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Spec describes one identifier family.
type Spec struct {
	Prefix string
	Width  int
}

// The five identifier families. Receipt numbers are shared between
// individual fee payments and group payments; the rest are single-table.
var (
	StudentCode        = Spec{Prefix: "SCH", Width: 4}
	AdmissionNumber    = Spec{Prefix: "ADM", Width: 4}
	FamilyCode         = Spec{Prefix: "FAM", Width: 4}
	ReceiptNumber      = Spec{Prefix: "RCP", Width: 5}
	GroupPaymentNumber = Spec{Prefix: "GP", Width: 5}
)

// Format renders code number n for the given year.
func (s Spec) Format(year, n int) string {
	return fmt.Sprintf("%s-%d-%0*d", s.Prefix, year, s.Width, n)
}

// LikePattern returns the SQL LIKE pattern matching this family's codes
// for one year.
func (s Spec) LikePattern(year int) string {
	return fmt.Sprintf("%s-%d-%%", s.Prefix, year)
}

// Next computes the next code for a family and year given the current
// maximum code from each table sharing the family's numbering space. Empty
// strings mean "no codes yet". The numeric suffix of the overall maximum is
// incremented; an unparsable suffix restarts the sequence at 1.
func Next(spec Spec, year int, current ...string) string {
	max := ""
	for _, c := range current {
		if c > max {
			max = c
		}
	}

	n := 1
	if max != "" {
		parts := strings.Split(max, "-")
		if v, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
			n = v + 1
		}
	}

	return spec.Format(year, n)
}

// Numbered is implemented by records that carry a generated sequential
// code. The write path assigns codes explicitly through it, inside the
// enclosing transaction, rather than via a save-time hook.
type Numbered interface {
	ApplyNumber(code string)
}

// Scanner interfaces are satisfied by the repositories; each returns the
// maximum existing code for a year, or "" when the year has none.

type StudentScanner interface {
	MaxStudentCode(ctx context.Context, year int) (string, error)
	MaxAdmissionNumber(ctx context.Context, year int) (string, error)
}

type FamilyScanner interface {
	MaxFamilyCode(ctx context.Context, year int) (string, error)
}

type PaymentScanner interface {
	MaxReceiptNumber(ctx context.Context, year int) (string, error)
}

type GroupPaymentScanner interface {
	MaxReceiptNumber(ctx context.Context, year int) (string, error)
	MaxGroupPaymentNumber(ctx context.Context, year int) (string, error)
}

// Generator binds the identifier families to the stores they scan.
// Construct it over transaction-scoped repositories so the scan and the
// subsequent insert run in the same unit of work.
type Generator struct {
	students StudentScanner
	families FamilyScanner
	payments PaymentScanner
	groups   GroupPaymentScanner
}

func NewGenerator(students StudentScanner, families FamilyScanner, payments PaymentScanner, groups GroupPaymentScanner) *Generator {
	return &Generator{
		students: students,
		families: families,
		payments: payments,
		groups:   groups,
	}
}

// NextStudentCode returns the next SCH-YEAR-NNNN code.
func (g *Generator) NextStudentCode(ctx context.Context, year int) (string, error) {
	max, err := g.students.MaxStudentCode(ctx, year)
	if err != nil {
		return "", fmt.Errorf("scan student codes: %w", err)
	}
	return Next(StudentCode, year, max), nil
}

// NextAdmissionNumber returns the next ADM-YEAR-NNNN code.
func (g *Generator) NextAdmissionNumber(ctx context.Context, year int) (string, error) {
	max, err := g.students.MaxAdmissionNumber(ctx, year)
	if err != nil {
		return "", fmt.Errorf("scan admission numbers: %w", err)
	}
	return Next(AdmissionNumber, year, max), nil
}

// NextFamilyCode returns the next FAM-YEAR-NNNN code.
func (g *Generator) NextFamilyCode(ctx context.Context, year int) (string, error) {
	max, err := g.families.MaxFamilyCode(ctx, year)
	if err != nil {
		return "", fmt.Errorf("scan family codes: %w", err)
	}
	return Next(FamilyCode, year, max), nil
}

// NextReceiptNumber returns the next RCP-YEAR-NNNNN code. Individual and
// group receipts share one numbering space, so the maximum is taken across
// both the fee_payments and group_payments tables before incrementing.
func (g *Generator) NextReceiptNumber(ctx context.Context, year int) (string, error) {
	fromPayments, err := g.payments.MaxReceiptNumber(ctx, year)
	if err != nil {
		return "", fmt.Errorf("scan payment receipt numbers: %w", err)
	}
	fromGroups, err := g.groups.MaxReceiptNumber(ctx, year)
	if err != nil {
		return "", fmt.Errorf("scan group receipt numbers: %w", err)
	}
	return Next(ReceiptNumber, year, fromPayments, fromGroups), nil
}

// NextGroupPaymentNumber returns the next GP-YEAR-NNNNN code.
func (g *Generator) NextGroupPaymentNumber(ctx context.Context, year int) (string, error) {
	max, err := g.groups.MaxGroupPaymentNumber(ctx, year)
	if err != nil {
		return "", fmt.Errorf("scan group payment numbers: %w", err)
	}
	return Next(GroupPaymentNumber, year, max), nil
}
