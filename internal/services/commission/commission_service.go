package commission

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/internal/domain/ports"
	"github.com/partnerhub/commission-service/pkg/observability"
	"github.com/partnerhub/commission-service/pkg/timeutil"
)

// Period selects the creation-date filter window for aggregation
type Period string

const (
	PeriodAll     Period = "all"
	PeriodMonth   Period = "month"
	PeriodQuarter Period = "quarter"
	PeriodYear    Period = "year"
)

// Valid reports whether the period value is one of the known filters
func (p Period) Valid() bool {
	switch p {
	case PeriodAll, PeriodMonth, PeriodQuarter, PeriodYear:
		return true
	}
	return false
}

// Stats is the aggregated commission picture for a seller
type Stats struct {
	CurrentMonth decimal.Decimal `json:"current_month"`
	TotalPending decimal.Decimal `json:"total_pending"`
	TotalPaid    decimal.Decimal `json:"total_paid"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// Config holds aggregation policy settings
type Config struct {
	// PendingIncludesReserved controls whether amounts held against an
	// in-flight payment request count as pending. Product policy, not a
	// derived fact; confirm with finance before changing.
	PendingIncludesReserved bool
}

// Service implements the commission aggregator
type Service struct {
	db          ports.DBPort
	commissions ports.CommissionRepository
	sellers     ports.SellerRepository
	logger      ports.Logger
	cfg         Config
}

// NewService creates a new commission aggregation service
func NewService(
	db ports.DBPort,
	commissions ports.CommissionRepository,
	sellers ports.SellerRepository,
	logger ports.Logger,
	cfg Config,
) *Service {
	return &Service{
		db:          db,
		commissions: commissions,
		sellers:     sellers,
		logger:      logger,
		cfg:         cfg,
	}
}

// GetCommissionStats computes commission totals for a seller over the given
// period. An unknown seller yields all-zero stats, not an error. The
// reference instant is explicit so results are reproducible; calendar
// boundaries are evaluated in the seller's reporting timezone.
func (s *Service) GetCommissionStats(ctx context.Context, sellerID string, period Period, now time.Time) (*Stats, error) {
	if !period.Valid() {
		return nil, domain.NewDomainError(domain.ErrorCodeValidationFailed, "unknown period").
			WithDetail("period", string(period))
	}

	loc := time.UTC
	seller, err := s.sellers.GetByID(ctx, s.db.GetDB(), sellerID)
	switch {
	case err == nil:
		loc = seller.Location()
	case errors.Is(err, domain.ErrSellerNotFound):
		// Unknown seller: zero stats below, from an empty record set.
	default:
		observability.RecordCommissionStatsQuery(string(period), "error")
		return nil, domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to load seller", err)
	}

	records, err := s.fetchRecords(ctx, sellerID, period, now, loc)
	if err != nil {
		observability.RecordCommissionStatsQuery(string(period), "error")
		s.logger.Error("commission stats aggregation failed",
			ports.String("seller_id", sellerID),
			ports.String("period", string(period)),
			ports.Err(err))
		return nil, domain.WrapError(domain.ErrorCodeStoreUnavailable, "failed to load commission records", err)
	}

	stats, err := Aggregate(records, now, loc, s.cfg)
	if err != nil {
		observability.RecordCommissionStatsQuery(string(period), "invariant_violation")
		observability.RecordInvariantViolation()
		s.logger.Error("commission invariant violation detected",
			ports.String("seller_id", sellerID),
			ports.Err(err))
		return nil, err
	}

	observability.RecordCommissionStatsQuery(string(period), "ok")
	return stats, nil
}

func (s *Service) fetchRecords(ctx context.Context, sellerID string, period Period, now time.Time, loc *time.Location) ([]*domain.CommissionRecord, error) {
	if period == PeriodAll {
		return s.commissions.ListBySeller(ctx, s.db.GetDB(), sellerID)
	}

	var from time.Time
	switch period {
	case PeriodMonth:
		from = timeutil.StartOfMonth(now, loc)
	case PeriodQuarter:
		from = timeutil.StartOfQuarter(now, loc)
	case PeriodYear:
		from = timeutil.StartOfYear(now, loc)
	}
	return s.commissions.ListBySellerCreatedBetween(ctx, s.db.GetDB(), sellerID, from, now)
}

// Aggregate computes stats from a record set. Pure; exported so callers
// with records already in hand (and tests) can evaluate it directly.
func Aggregate(records []*domain.CommissionRecord, now time.Time, loc *time.Location, cfg Config) (*Stats, error) {
	stats := &Stats{
		CurrentMonth: decimal.Zero,
		TotalPending: decimal.Zero,
		TotalPaid:    decimal.Zero,
		TotalAmount:  decimal.Zero,
	}

	monthStart := timeutil.StartOfMonth(now, loc)
	monthEnd := timeutil.StartOfNextMonth(now, loc)

	for _, record := range records {
		if err := record.CheckInvariant(); err != nil {
			return nil, err
		}

		stats.TotalAmount = stats.TotalAmount.Add(record.Amount)
		stats.TotalPaid = stats.TotalPaid.Add(record.WithdrawnAmount)

		if !record.IsAvailable(now) {
			stats.TotalPending = stats.TotalPending.Add(record.Remaining())
			if cfg.PendingIncludesReserved {
				stats.TotalPending = stats.TotalPending.Add(record.ReservedAmount)
			}
		} else if cfg.PendingIncludesReserved {
			stats.TotalPending = stats.TotalPending.Add(record.ReservedAmount)
		}

		created := record.CreatedAt
		if !created.Before(monthStart) && created.Before(monthEnd) {
			stats.CurrentMonth = stats.CurrentMonth.Add(record.Amount)
		}
	}

	return stats, nil
}
