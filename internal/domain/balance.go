package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SellerBalance is the derived withdrawal picture for a seller. It is
// computed fresh on every query and never persisted.
type SellerBalance struct {
	NextRequestWindowStart time.Time       `json:"next_request_window_start"`
	NextRequestWindowEnd   time.Time       `json:"next_request_window_end"`
	NextWithdrawalDate     *time.Time      `json:"next_withdrawal_date"`
	LastRequestDate        *time.Time      `json:"last_request_date"`
	AvailableBalance       decimal.Decimal `json:"available_balance"`
	PendingBalance         decimal.Decimal `json:"pending_balance"`
	IsInRequestWindow      bool            `json:"is_in_request_window"`
	CanRequest             bool            `json:"can_request"`
}
