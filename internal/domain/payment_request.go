package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestStatus represents the payment request lifecycle state
type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "pending"
	RequestStatusApproved  RequestStatus = "approved"
	RequestStatusRejected  RequestStatus = "rejected"
	RequestStatusCompleted RequestStatus = "completed"
)

// PaymentRequest is one withdrawal request by a seller. At most one request
// with status pending or approved may exist per seller at any time; the
// store enforces this with a partial unique index.
type PaymentRequest struct {
	RequestedAt     time.Time       `json:"requested_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	ApprovedAt      *time.Time      `json:"approved_at"`
	RejectedAt      *time.Time      `json:"rejected_at"`
	CompletedAt     *time.Time      `json:"completed_at"`
	RejectionReason *string         `json:"rejection_reason"`
	ID              string          `json:"id"`
	SellerID        string          `json:"seller_id"`
	Status          RequestStatus   `json:"status"`
	Amount          decimal.Decimal `json:"amount"`
}

// IsOpen reports whether the request still holds reservations against
// commission records (not yet in a terminal state).
func (p *PaymentRequest) IsOpen() bool {
	return p.Status == RequestStatusPending || p.Status == RequestStatusApproved
}

// IsTerminal reports whether the request reached a final state.
func (p *PaymentRequest) IsTerminal() bool {
	return p.Status == RequestStatusRejected || p.Status == RequestStatusCompleted
}

// CanApprove returns true if the request can transition to approved
func (p *PaymentRequest) CanApprove() bool {
	return p.Status == RequestStatusPending
}

// CanReject returns true if the request can transition to rejected
func (p *PaymentRequest) CanReject() bool {
	return p.Status == RequestStatusPending || p.Status == RequestStatusApproved
}

// CanComplete returns true if the request can transition to completed
func (p *PaymentRequest) CanComplete() bool {
	return p.Status == RequestStatusApproved
}

// PayoutAllocation records how much of a payment request was reserved
// against a specific commission record. Reject releases these amounts;
// Complete converts them to withdrawn.
type PayoutAllocation struct {
	RequestID          string          `json:"request_id"`
	CommissionRecordID string          `json:"commission_record_id"`
	Amount             decimal.Decimal `json:"amount"`
}
