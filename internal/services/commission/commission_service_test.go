package commission

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/internal/domain/ports"
)

// MockDBPort is a mock implementation of ports.DBPort
type MockDBPort struct {
	mock.Mock
}

func (m *MockDBPort) GetDB() *pgxpool.Pool {
	return nil
}

func (m *MockDBPort) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx, nil)
}

func (m *MockDBPort) WithReadOnlyTransaction(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	args := m.Called(ctx, fn)
	if args.Error(0) != nil {
		return args.Error(0)
	}
	return fn(ctx, nil)
}

// MockCommissionRepository is a mock implementation of ports.CommissionRepository
type MockCommissionRepository struct {
	mock.Mock
}

func (m *MockCommissionRepository) ListBySeller(ctx context.Context, db ports.DBTX, sellerID string) ([]*domain.CommissionRecord, error) {
	args := m.Called(ctx, db, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CommissionRecord), args.Error(1)
}

func (m *MockCommissionRepository) ListBySellerCreatedBetween(ctx context.Context, db ports.DBTX, sellerID string, from, to time.Time) ([]*domain.CommissionRecord, error) {
	args := m.Called(ctx, db, sellerID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CommissionRecord), args.Error(1)
}

func (m *MockCommissionRepository) ListAvailableForUpdate(ctx context.Context, tx ports.DBTX, sellerID string, now time.Time) ([]*domain.CommissionRecord, error) {
	args := m.Called(ctx, tx, sellerID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.CommissionRecord), args.Error(1)
}

func (m *MockCommissionRepository) SetAmounts(ctx context.Context, tx ports.DBTX, recordID string, withdrawn, reserved decimal.Decimal) error {
	args := m.Called(ctx, tx, recordID, withdrawn, reserved)
	return args.Error(0)
}

func (m *MockCommissionRepository) GetByID(ctx context.Context, db ports.DBTX, recordID string) (*domain.CommissionRecord, error) {
	args := m.Called(ctx, db, recordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CommissionRecord), args.Error(1)
}

// MockSellerRepository is a mock implementation of ports.SellerRepository
type MockSellerRepository struct {
	mock.Mock
}

func (m *MockSellerRepository) GetByID(ctx context.Context, db ports.DBTX, id string) (*domain.Seller, error) {
	args := m.Called(ctx, db, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Seller), args.Error(1)
}

// MockLogger is a mock implementation of ports.Logger
type MockLogger struct {
	mock.Mock
}

func (m *MockLogger) Debug(msg string, fields ...ports.Field) {}
func (m *MockLogger) Info(msg string, fields ...ports.Field)  {}
func (m *MockLogger) Warn(msg string, fields ...ports.Field)  {}
func (m *MockLogger) Error(msg string, fields ...ports.Field) {}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func newTestService(cfg Config) (*Service, *MockDBPort, *MockCommissionRepository, *MockSellerRepository) {
	mockDB := new(MockDBPort)
	mockCommissions := new(MockCommissionRepository)
	mockSellers := new(MockSellerRepository)
	svc := NewService(mockDB, mockCommissions, mockSellers, new(MockLogger), cfg)
	return svc, mockDB, mockCommissions, mockSellers
}

func TestGetCommissionStats_Totals(t *testing.T) {
	svc, _, mockCommissions, mockSellers := newTestService(Config{})

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	seller := &domain.Seller{ID: "seller-1", Status: domain.SellerStatusActive, Timezone: "UTC"}

	records := []*domain.CommissionRecord{
		{
			// Released and partially paid out.
			ID:              "c-1",
			SellerID:        "seller-1",
			Amount:          dec("100.00"),
			WithdrawnAmount: dec("40.00"),
			ReservedAmount:  decimal.Zero,
			AvailableAt:     timePtr(now.Add(-24 * time.Hour)),
			CreatedAt:       time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			// Not yet released.
			ID:          "c-2",
			SellerID:    "seller-1",
			Amount:      dec("50.00"),
			AvailableAt: timePtr(now.Add(24 * time.Hour)),
			CreatedAt:   time.Date(2025, 6, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			// No release date at all.
			ID:        "c-3",
			SellerID:  "seller-1",
			Amount:    dec("25.00"),
			CreatedAt: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		},
	}

	mockSellers.On("GetByID", mock.Anything, mock.Anything, "seller-1").Return(seller, nil)
	mockCommissions.On("ListBySeller", mock.Anything, mock.Anything, "seller-1").Return(records, nil)

	stats, err := svc.GetCommissionStats(context.Background(), "seller-1", PeriodAll, now)
	require.NoError(t, err)

	assert.True(t, stats.TotalAmount.Equal(dec("175.00")), "total_amount = %s", stats.TotalAmount)
	assert.True(t, stats.TotalPaid.Equal(dec("40.00")), "total_paid = %s", stats.TotalPaid)
	assert.True(t, stats.TotalPending.Equal(dec("75.00")), "total_pending = %s", stats.TotalPending)
	assert.True(t, stats.CurrentMonth.Equal(dec("75.00")), "current_month = %s", stats.CurrentMonth)
}

func TestGetCommissionStats_UnknownSellerYieldsZeros(t *testing.T) {
	svc, _, mockCommissions, mockSellers := newTestService(Config{})

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	mockSellers.On("GetByID", mock.Anything, mock.Anything, "ghost").Return(nil, domain.ErrSellerNotFound)
	mockCommissions.On("ListBySeller", mock.Anything, mock.Anything, "ghost").Return([]*domain.CommissionRecord{}, nil)

	stats, err := svc.GetCommissionStats(context.Background(), "ghost", PeriodAll, now)
	require.NoError(t, err)

	assert.True(t, stats.TotalAmount.IsZero())
	assert.True(t, stats.TotalPending.IsZero())
	assert.True(t, stats.TotalPaid.IsZero())
	assert.True(t, stats.CurrentMonth.IsZero())
}

func TestGetCommissionStats_InvalidPeriod(t *testing.T) {
	svc, _, _, _ := newTestService(Config{})

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	_, err := svc.GetCommissionStats(context.Background(), "seller-1", Period("fortnight"), now)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeValidationFailed, domain.GetErrorCode(err))
}

func TestGetCommissionStats_StoreErrorFailsClosed(t *testing.T) {
	svc, _, mockCommissions, mockSellers := newTestService(Config{})

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	seller := &domain.Seller{ID: "seller-1", Status: domain.SellerStatusActive, Timezone: "UTC"}

	mockSellers.On("GetByID", mock.Anything, mock.Anything, "seller-1").Return(seller, nil)
	mockCommissions.On("ListBySeller", mock.Anything, mock.Anything, "seller-1").
		Return(nil, domain.ErrStoreUnavailable)

	stats, err := svc.GetCommissionStats(context.Background(), "seller-1", PeriodAll, now)
	require.Error(t, err)
	assert.Nil(t, stats, "no partial stats on store failure")
	assert.Equal(t, domain.ErrorCodeStoreUnavailable, domain.GetErrorCode(err))
}

func TestGetCommissionStats_InvariantViolation(t *testing.T) {
	svc, _, mockCommissions, mockSellers := newTestService(Config{})

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	seller := &domain.Seller{ID: "seller-1", Status: domain.SellerStatusActive, Timezone: "UTC"}

	records := []*domain.CommissionRecord{
		{
			ID:              "c-bad",
			SellerID:        "seller-1",
			Amount:          dec("10.00"),
			WithdrawnAmount: dec("15.00"),
			CreatedAt:       now,
		},
	}

	mockSellers.On("GetByID", mock.Anything, mock.Anything, "seller-1").Return(seller, nil)
	mockCommissions.On("ListBySeller", mock.Anything, mock.Anything, "seller-1").Return(records, nil)

	_, err := svc.GetCommissionStats(context.Background(), "seller-1", PeriodAll, now)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeInvariantViolation, domain.GetErrorCode(err))
}

func TestGetCommissionStats_MonthPeriodUsesSellerTimezone(t *testing.T) {
	svc, _, mockCommissions, mockSellers := newTestService(Config{})

	// 2025-06-30 22:00 UTC is already July 1st in Dubai (UTC+4), so the
	// "month" filter must start at July 1st 00:00 Dubai time.
	now := time.Date(2025, 6, 30, 22, 0, 0, 0, time.UTC)
	seller := &domain.Seller{ID: "seller-1", Status: domain.SellerStatusActive, Timezone: "Asia/Dubai"}
	dubai, err := time.LoadLocation("Asia/Dubai")
	require.NoError(t, err)
	wantFrom := time.Date(2025, 7, 1, 0, 0, 0, 0, dubai)

	mockSellers.On("GetByID", mock.Anything, mock.Anything, "seller-1").Return(seller, nil)
	mockCommissions.On("ListBySellerCreatedBetween", mock.Anything, mock.Anything, "seller-1",
		mock.MatchedBy(func(from time.Time) bool { return from.Equal(wantFrom) }), now).
		Return([]*domain.CommissionRecord{}, nil)

	_, err = svc.GetCommissionStats(context.Background(), "seller-1", PeriodMonth, now)
	require.NoError(t, err)
	mockCommissions.AssertExpectations(t)
}

func TestGetCommissionStats_Idempotent(t *testing.T) {
	svc, _, mockCommissions, mockSellers := newTestService(Config{})

	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	seller := &domain.Seller{ID: "seller-1", Status: domain.SellerStatusActive, Timezone: "UTC"}
	records := []*domain.CommissionRecord{
		{
			ID:          "c-1",
			SellerID:    "seller-1",
			Amount:      dec("100.00"),
			AvailableAt: timePtr(now.Add(-time.Hour)),
			CreatedAt:   time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	mockSellers.On("GetByID", mock.Anything, mock.Anything, "seller-1").Return(seller, nil)
	mockCommissions.On("ListBySeller", mock.Anything, mock.Anything, "seller-1").Return(records, nil)

	first, err := svc.GetCommissionStats(context.Background(), "seller-1", PeriodAll, now)
	require.NoError(t, err)
	second, err := svc.GetCommissionStats(context.Background(), "seller-1", PeriodAll, now)
	require.NoError(t, err)

	assert.True(t, first.TotalAmount.Equal(second.TotalAmount))
	assert.True(t, first.TotalPending.Equal(second.TotalPending))
	assert.True(t, first.TotalPaid.Equal(second.TotalPaid))
	assert.True(t, first.CurrentMonth.Equal(second.CurrentMonth))
}

func TestAggregate_PendingIncludesReservedPolicy(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	records := []*domain.CommissionRecord{
		{
			ID:             "c-1",
			Amount:         dec("100.00"),
			ReservedAmount: dec("30.00"),
			AvailableAt:    timePtr(now.Add(-time.Hour)),
			CreatedAt:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	strict, err := Aggregate(records, now, time.UTC, Config{PendingIncludesReserved: false})
	require.NoError(t, err)
	assert.True(t, strict.TotalPending.IsZero())

	inclusive, err := Aggregate(records, now, time.UTC, Config{PendingIncludesReserved: true})
	require.NoError(t, err)
	assert.True(t, inclusive.TotalPending.Equal(dec("30.00")))
}
