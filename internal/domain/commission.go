package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationMethod tags how a commission amount was derived at creation time.
// Informational only for aggregation.
type CalculationMethod string

const (
	CalculationMethodIndividual         CalculationMethod = "individual"
	CalculationMethodMonthlyAccumulated CalculationMethod = "monthly_accumulated"
)

// CommissionRecord is one commission row per (seller, order) pair.
// The amount is computed when the order is finalized and is immutable;
// only WithdrawnAmount and ReservedAmount change afterwards, and only
// through the payout workflow.
type CommissionRecord struct {
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
	AvailableAt     *time.Time        `json:"available_for_withdrawal_at"`
	ID              string            `json:"id"`
	SellerID        string            `json:"seller_id"`
	OrderID         string            `json:"order_id"`
	Method          CalculationMethod `json:"calculation_method"`
	Amount          decimal.Decimal   `json:"commission_amount"`
	WithdrawnAmount decimal.Decimal   `json:"withdrawn_amount"`
	ReservedAmount  decimal.Decimal   `json:"reserved_amount"`
}

// Remaining returns the portion of the commission that is neither paid out
// nor held against an in-flight payment request.
func (c *CommissionRecord) Remaining() decimal.Decimal {
	return c.Amount.Sub(c.WithdrawnAmount).Sub(c.ReservedAmount)
}

// IsAvailable reports whether the commission has cleared its release delay
// as of the given instant. Records with no release timestamp are pending.
func (c *CommissionRecord) IsAvailable(now time.Time) bool {
	return c.AvailableAt != nil && !c.AvailableAt.After(now)
}

// CheckInvariant verifies withdrawn + reserved never exceeds the commission
// amount. A violation means the payout workflow broke its contract and must
// be surfaced loudly, never clamped.
func (c *CommissionRecord) CheckInvariant() error {
	if c.WithdrawnAmount.Add(c.ReservedAmount).GreaterThan(c.Amount) {
		return NewDomainError(ErrorCodeInvariantViolation, "withdrawn + reserved exceeds commission amount").
			WithDetail("commission_record_id", c.ID).
			WithDetail("amount", c.Amount.String()).
			WithDetail("withdrawn", c.WithdrawnAmount.String()).
			WithDetail("reserved", c.ReservedAmount.String())
	}
	return nil
}
