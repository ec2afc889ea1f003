// Package fiscal derives invoice amounts from a requested cash-out amount.
// Policies are pure and deterministic; all monetary outputs are rounded to
// two decimal places exactly once, at computation time.
package fiscal

import (
	"errors"

	"github.com/shopspring/decimal"
)

const (
	PolicyExtraction = "extraction"
	PolicyAddition   = "addition"
)

var (
	ErrNonPositiveAmount = errors.New("non_positive_amount")
	ErrUnknownPolicy     = errors.New("unknown_policy")
)

// Breakdown is the fiscal decomposition of a requested amount.
type Breakdown struct {
	BaseAmount        decimal.Decimal
	VAT               decimal.Decimal
	WithholdingOffset decimal.Decimal
	TotalInvoiced     decimal.Decimal
}

// CalculationPolicy turns a requested amount into a fiscal breakdown.
type CalculationPolicy interface {
	Name() string
	Calculate(requested decimal.Decimal) (Breakdown, error)
}

var (
	extractionDivisor = decimal.RequireFromString("1.12")
	extractionVATRate = decimal.RequireFromString("0.12")
	extractionISDRate = decimal.RequireFromString("0.05")
	additionVATRate   = decimal.RequireFromString("0.15")
)

// ExtractionPolicy treats the requested amount as VAT-inclusive: the base is
// extracted by dividing out the VAT, and the total invoiced stays equal to
// the requested amount.
type ExtractionPolicy struct{}

func (ExtractionPolicy) Name() string { return PolicyExtraction }

func (ExtractionPolicy) Calculate(requested decimal.Decimal) (Breakdown, error) {
	if !requested.IsPositive() {
		return Breakdown{}, ErrNonPositiveAmount
	}

	// VAT is derived from the unrounded base so neither output compounds
	// the other's rounding.
	base := requested.Div(extractionDivisor)
	return Breakdown{
		BaseAmount:        base.Round(2),
		VAT:               base.Mul(extractionVATRate).Round(2),
		WithholdingOffset: requested.Mul(extractionISDRate).Round(2),
		TotalInvoiced:     requested.Round(2),
	}, nil
}

// AdditionPolicy treats the requested amount as the taxable base: VAT is
// added on top and the total invoiced grows accordingly. The withholding
// rate is a policy parameter; the default deployment sets it to zero.
type AdditionPolicy struct {
	WithholdingRate decimal.Decimal
}

func (AdditionPolicy) Name() string { return PolicyAddition }

func (p AdditionPolicy) Calculate(requested decimal.Decimal) (Breakdown, error) {
	if !requested.IsPositive() {
		return Breakdown{}, ErrNonPositiveAmount
	}

	vat := requested.Mul(additionVATRate).Round(2)
	return Breakdown{
		BaseAmount:        requested.Round(2),
		VAT:               vat,
		WithholdingOffset: requested.Mul(p.WithholdingRate).Round(2),
		TotalInvoiced:     requested.Round(2).Add(vat),
	}, nil
}

// NewPolicy builds the named policy. The withholding rate only applies to
// the addition policy.
func NewPolicy(name string, additionWithholdingRate float64) (CalculationPolicy, error) {
	switch name {
	case PolicyExtraction:
		return ExtractionPolicy{}, nil
	case PolicyAddition:
		return AdditionPolicy{
			WithholdingRate: decimal.NewFromFloat(additionWithholdingRate),
		}, nil
	default:
		return nil, ErrUnknownPolicy
	}
}
