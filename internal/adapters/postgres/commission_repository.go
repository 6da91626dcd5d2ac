package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/internal/domain/ports"
)

const commissionColumns = `id, seller_id, order_id, commission_amount, calculation_method,
	available_for_withdrawal_at, withdrawn_amount, reserved_amount, created_at, updated_at`

// CommissionRepository implements ports.CommissionRepository with raw pgx queries
type CommissionRepository struct{}

// NewCommissionRepository creates a new commission repository
func NewCommissionRepository() *CommissionRepository {
	return &CommissionRepository{}
}

// ListBySeller returns all commission records for a seller
func (r *CommissionRepository) ListBySeller(ctx context.Context, db ports.DBTX, sellerID string) ([]*domain.CommissionRecord, error) {
	rows, err := db.Query(ctx,
		`SELECT `+commissionColumns+` FROM commission_records WHERE seller_id = $1 ORDER BY created_at`,
		sellerID,
	)
	if err != nil {
		return nil, fmt.Errorf("list commissions by seller: %w", err)
	}
	defer rows.Close()

	return scanCommissionRows(rows)
}

// ListBySellerCreatedBetween returns records for a seller created within [from, to)
func (r *CommissionRepository) ListBySellerCreatedBetween(ctx context.Context, db ports.DBTX, sellerID string, from, to time.Time) ([]*domain.CommissionRecord, error) {
	rows, err := db.Query(ctx,
		`SELECT `+commissionColumns+` FROM commission_records
		 WHERE seller_id = $1 AND created_at >= $2 AND created_at < $3
		 ORDER BY created_at`,
		sellerID, from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("list commissions by seller and range: %w", err)
	}
	defer rows.Close()

	return scanCommissionRows(rows)
}

// ListAvailableForUpdate returns releasable records with a positive remaining
// amount, locked for the surrounding transaction, oldest release first
func (r *CommissionRepository) ListAvailableForUpdate(ctx context.Context, tx ports.DBTX, sellerID string, now time.Time) ([]*domain.CommissionRecord, error) {
	rows, err := tx.Query(ctx,
		`SELECT `+commissionColumns+` FROM commission_records
		 WHERE seller_id = $1
		   AND available_for_withdrawal_at IS NOT NULL
		   AND available_for_withdrawal_at <= $2
		   AND commission_amount - withdrawn_amount - reserved_amount > 0
		 ORDER BY available_for_withdrawal_at
		 FOR UPDATE`,
		sellerID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("list available commissions for update: %w", err)
	}
	defer rows.Close()

	return scanCommissionRows(rows)
}

// SetAmounts overwrites the withdrawn and reserved amounts of a record
func (r *CommissionRepository) SetAmounts(ctx context.Context, tx ports.DBTX, recordID string, withdrawn, reserved decimal.Decimal) error {
	withdrawnNum, err := decimalToPgNumeric(withdrawn)
	if err != nil {
		return err
	}
	reservedNum, err := decimalToPgNumeric(reserved)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE commission_records
		 SET withdrawn_amount = $2, reserved_amount = $3, updated_at = now()
		 WHERE id = $1`,
		recordID, withdrawnNum, reservedNum,
	)
	if err != nil {
		return fmt.Errorf("set commission amounts: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.NewDomainError(domain.ErrorCodeInternalError, "commission record vanished during update").
			WithDetail("commission_record_id", recordID)
	}
	return nil
}

// GetByID retrieves a single commission record
func (r *CommissionRepository) GetByID(ctx context.Context, db ports.DBTX, recordID string) (*domain.CommissionRecord, error) {
	row := db.QueryRow(ctx,
		`SELECT `+commissionColumns+` FROM commission_records WHERE id = $1`,
		recordID,
	)

	record, err := scanCommissionRow(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewDomainError(domain.ErrorCodeInternalError, "commission record not found").
				WithDetail("commission_record_id", recordID)
		}
		return nil, fmt.Errorf("get commission by id: %w", err)
	}
	return record, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCommissionRow(row rowScanner) (*domain.CommissionRecord, error) {
	var (
		record      domain.CommissionRecord
		amount      pgtype.Numeric
		withdrawn   pgtype.Numeric
		reserved    pgtype.Numeric
		availableAt pgtype.Timestamptz
	)

	err := row.Scan(
		&record.ID,
		&record.SellerID,
		&record.OrderID,
		&amount,
		&record.Method,
		&availableAt,
		&withdrawn,
		&reserved,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if record.Amount, err = pgNumericToDecimal(amount); err != nil {
		return nil, fmt.Errorf("convert commission amount: %w", err)
	}
	if record.WithdrawnAmount, err = pgNumericToDecimal(withdrawn); err != nil {
		return nil, fmt.Errorf("convert withdrawn amount: %w", err)
	}
	if record.ReservedAmount, err = pgNumericToDecimal(reserved); err != nil {
		return nil, fmt.Errorf("convert reserved amount: %w", err)
	}
	record.AvailableAt = timePtr(availableAt)

	return &record, nil
}

func scanCommissionRows(rows pgx.Rows) ([]*domain.CommissionRecord, error) {
	var records []*domain.CommissionRecord
	for rows.Next() {
		record, err := scanCommissionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commission record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commission records: %w", err)
	}
	return records, nil
}
