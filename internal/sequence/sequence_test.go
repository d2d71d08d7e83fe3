package sequence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpecFormat(t *testing.T) {
	assert.Equal(t, "SCH-2024-0001", StudentCode.Format(2024, 1))
	assert.Equal(t, "ADM-2024-0042", AdmissionNumber.Format(2024, 42))
	assert.Equal(t, "FAM-2024-0007", FamilyCode.Format(2024, 7))
	assert.Equal(t, "RCP-2024-00001", ReceiptNumber.Format(2024, 1))
	assert.Equal(t, "GP-2024-00123", GroupPaymentNumber.Format(2024, 123))
}

func TestSpecFormat_WidthOverflow(t *testing.T) {
	// Past the padding width the number keeps growing instead of wrapping
	assert.Equal(t, "SCH-2024-10000", StudentCode.Format(2024, 10000))
	assert.Equal(t, "RCP-2024-100000", ReceiptNumber.Format(2024, 100000))
}

func TestSpecLikePattern(t *testing.T) {
	assert.Equal(t, "RCP-2024-%", ReceiptNumber.LikePattern(2024))
	assert.Equal(t, "GP-2025-%", GroupPaymentNumber.LikePattern(2025))
}

func TestNext_EmptyStartsAtOne(t *testing.T) {
	assert.Equal(t, "SCH-2024-0001", Next(StudentCode, 2024, ""))
	assert.Equal(t, "RCP-2024-00001", Next(ReceiptNumber, 2024, "", ""))
}

func TestNext_Increments(t *testing.T) {
	assert.Equal(t, "SCH-2024-0002", Next(StudentCode, 2024, "SCH-2024-0001"))
	assert.Equal(t, "SCH-2024-0100", Next(StudentCode, 2024, "SCH-2024-0099"))
	assert.Equal(t, "RCP-2024-00235", Next(ReceiptNumber, 2024, "RCP-2024-00234"))
}

func TestNext_YearScoped(t *testing.T) {
	// A new year starts its own sequence; the pattern scan never feeds
	// last year's maximum in, so only the target year is seen here
	assert.Equal(t, "SCH-2025-0001", Next(StudentCode, 2025, ""))
}

func TestNext_SharedSpaceTakesOverallMax(t *testing.T) {
	// Receipt numbers across individual and group payments form one space
	got := Next(ReceiptNumber, 2024, "RCP-2024-00003", "RCP-2024-00007")
	assert.Equal(t, "RCP-2024-00008", got)

	got = Next(ReceiptNumber, 2024, "RCP-2024-00009", "")
	assert.Equal(t, "RCP-2024-00010", got)
}

func TestNext_UnparsableSuffixRestartsAtOne(t *testing.T) {
	assert.Equal(t, "SCH-2024-0001", Next(StudentCode, 2024, "SCH-2024-LEGACY"))
	assert.Equal(t, "RCP-2024-00001", Next(ReceiptNumber, 2024, "RCP-2024-"))
}

func TestNext_StrictlyIncreasing(t *testing.T) {
	current := ""
	for i := 0; i < 50; i++ {
		next := Next(ReceiptNumber, 2024, current)
		assert.Greater(t, next, current)
		current = next
	}
	assert.Equal(t, "RCP-2024-00050", current)
}

type stubStudents struct {
	maxCode      string
	maxAdmission string
}

func (s stubStudents) MaxStudentCode(ctx context.Context, year int) (string, error) {
	return s.maxCode, nil
}

func (s stubStudents) MaxAdmissionNumber(ctx context.Context, year int) (string, error) {
	return s.maxAdmission, nil
}

type stubFamilies struct {
	max string
}

func (s stubFamilies) MaxFamilyCode(ctx context.Context, year int) (string, error) {
	return s.max, nil
}

type stubPayments struct {
	maxReceipt string
}

func (s stubPayments) MaxReceiptNumber(ctx context.Context, year int) (string, error) {
	return s.maxReceipt, nil
}

type stubGroups struct {
	maxReceipt string
	maxNumber  string
}

func (s stubGroups) MaxReceiptNumber(ctx context.Context, year int) (string, error) {
	return s.maxReceipt, nil
}

func (s stubGroups) MaxGroupPaymentNumber(ctx context.Context, year int) (string, error) {
	return s.maxNumber, nil
}

func TestGenerator_NextReceiptNumber_ScansBothTables(t *testing.T) {
	gen := NewGenerator(
		stubStudents{},
		stubFamilies{},
		stubPayments{maxReceipt: "RCP-2024-00001"},
		stubGroups{maxReceipt: "RCP-2024-00004"},
	)

	got, err := gen.NextReceiptNumber(context.Background(), 2024)
	require.NoError(t, err)
	assert.Equal(t, "RCP-2024-00005", got)
}

func TestGenerator_FreshYear(t *testing.T) {
	gen := NewGenerator(stubStudents{}, stubFamilies{}, stubPayments{}, stubGroups{})
	ctx := context.Background()

	code, err := gen.NextStudentCode(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, "SCH-2026-0001", code)

	admission, err := gen.NextAdmissionNumber(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, "ADM-2026-0001", admission)

	family, err := gen.NextFamilyCode(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, "FAM-2026-0001", family)

	group, err := gen.NextGroupPaymentNumber(ctx, 2026)
	require.NoError(t, err)
	assert.Equal(t, "GP-2026-00001", group)
}
