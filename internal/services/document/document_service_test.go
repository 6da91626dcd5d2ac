package document

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/partnerhub/commission-service/internal/auth"
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

// MockDocumentStore is a mock implementation of ports.DocumentStore
type MockDocumentStore struct {
	mock.Mock
}

func (m *MockDocumentStore) Get(ctx context.Context, bucket, path string) (*ports.Document, error) {
	args := m.Called(ctx, bucket, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Document), args.Error(1)
}

// MockAccessTokenRepository is a mock implementation of ports.AccessTokenRepository
type MockAccessTokenRepository struct {
	mock.Mock
}

func (m *MockAccessTokenRepository) TokenGrantsAccess(ctx context.Context, db ports.DBTX, token, bucket, path string, now time.Time) (bool, error) {
	args := m.Called(ctx, db, token, bucket, path, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockAccessTokenRepository) SellerOwnsDocument(ctx context.Context, db ports.DBTX, sellerID, bucket, path string) (bool, error) {
	args := m.Called(ctx, db, sellerID, bucket, path)
	return args.Bool(0), args.Error(1)
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

type fixture struct {
	svc     *Service
	db      *MockDBPort
	store   *MockDocumentStore
	tokens  *MockAccessTokenRepository
	sellers *MockSellerRepository
}

func newFixture() *fixture {
	f := &fixture{
		db:      new(MockDBPort),
		store:   new(MockDocumentStore),
		tokens:  new(MockAccessTokenRepository),
		sellers: new(MockSellerRepository),
	}
	f.svc = NewService(f.db, f.store, f.tokens, f.sellers, new(MockLogger))
	return f
}

func testDoc() *ports.Document {
	return &ports.Document{
		Body:        io.NopCloser(strings.NewReader("%PDF-1.7")),
		ContentType: "application/pdf",
	}
}

var now = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func TestFetch_TokenGrant(t *testing.T) {
	f := newFixture()

	f.tokens.On("TokenGrantsAccess", mock.Anything, mock.Anything, "tok-1", "invoices", "2025/inv-9.pdf", now).Return(true, nil)
	f.store.On("Get", mock.Anything, "invoices", "2025/inv-9.pdf").Return(testDoc(), nil)

	doc, err := f.svc.Fetch(context.Background(), "invoices", "2025/inv-9.pdf", "tok-1", nil, now)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", doc.ContentType)
	doc.Body.Close()
}

func TestFetch_ExpiredTokenWithoutPrincipal(t *testing.T) {
	f := newFixture()

	f.tokens.On("TokenGrantsAccess", mock.Anything, mock.Anything, "tok-stale", "invoices", "2025/inv-9.pdf", now).Return(false, nil)

	_, err := f.svc.Fetch(context.Background(), "invoices", "2025/inv-9.pdf", "tok-stale", nil, now)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeDocumentAccessDenied, domain.GetErrorCode(err))
	f.store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestFetch_AdminPrincipal(t *testing.T) {
	f := newFixture()

	admin := &auth.Principal{Role: auth.RoleAdmin}
	f.store.On("Get", mock.Anything, "invoices", "2025/inv-9.pdf").Return(testDoc(), nil)

	doc, err := f.svc.Fetch(context.Background(), "invoices", "2025/inv-9.pdf", "", admin, now)
	require.NoError(t, err)
	require.NotNil(t, doc)
	doc.Body.Close()
}

func TestFetch_OwningActiveSeller(t *testing.T) {
	f := newFixture()

	seller := &auth.Principal{Role: auth.RoleSeller, SellerID: "seller-1"}
	f.sellers.On("GetByID", mock.Anything, mock.Anything, "seller-1").
		Return(&domain.Seller{ID: "seller-1", Status: domain.SellerStatusActive}, nil)
	f.tokens.On("SellerOwnsDocument", mock.Anything, mock.Anything, "seller-1", "invoices", "2025/inv-9.pdf").Return(true, nil)
	f.store.On("Get", mock.Anything, "invoices", "2025/inv-9.pdf").Return(testDoc(), nil)

	doc, err := f.svc.Fetch(context.Background(), "invoices", "2025/inv-9.pdf", "", seller, now)
	require.NoError(t, err)
	require.NotNil(t, doc)
	doc.Body.Close()
}

func TestFetch_SuspendedSellerDenied(t *testing.T) {
	f := newFixture()

	seller := &auth.Principal{Role: auth.RoleSeller, SellerID: "seller-1"}
	f.sellers.On("GetByID", mock.Anything, mock.Anything, "seller-1").
		Return(&domain.Seller{ID: "seller-1", Status: domain.SellerStatusSuspended}, nil)

	_, err := f.svc.Fetch(context.Background(), "invoices", "2025/inv-9.pdf", "", seller, now)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeDocumentAccessDenied, domain.GetErrorCode(err))
	f.tokens.AssertNotCalled(t, "SellerOwnsDocument", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFetch_NonOwningSellerDenied(t *testing.T) {
	f := newFixture()

	seller := &auth.Principal{Role: auth.RoleSeller, SellerID: "seller-2"}
	f.sellers.On("GetByID", mock.Anything, mock.Anything, "seller-2").
		Return(&domain.Seller{ID: "seller-2", Status: domain.SellerStatusActive}, nil)
	f.tokens.On("SellerOwnsDocument", mock.Anything, mock.Anything, "seller-2", "invoices", "2025/inv-9.pdf").Return(false, nil)

	_, err := f.svc.Fetch(context.Background(), "invoices", "2025/inv-9.pdf", "", seller, now)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeDocumentAccessDenied, domain.GetErrorCode(err))
}

func TestFetch_AnonymousDenied(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Fetch(context.Background(), "invoices", "2025/inv-9.pdf", "", nil, now)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeDocumentAccessDenied, domain.GetErrorCode(err))
}

func TestFetch_TokenStoreErrorFailsClosed(t *testing.T) {
	f := newFixture()

	f.tokens.On("TokenGrantsAccess", mock.Anything, mock.Anything, "tok-1", "invoices", "2025/inv-9.pdf", now).
		Return(false, domain.ErrStoreUnavailable)

	_, err := f.svc.Fetch(context.Background(), "invoices", "2025/inv-9.pdf", "tok-1", nil, now)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeStoreUnavailable, domain.GetErrorCode(err))
	f.store.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestFetch_MissingObject(t *testing.T) {
	f := newFixture()

	admin := &auth.Principal{Role: auth.RoleAdmin}
	f.store.On("Get", mock.Anything, "invoices", "gone.pdf").Return(nil, domain.ErrDocumentNotFound)

	_, err := f.svc.Fetch(context.Background(), "invoices", "gone.pdf", "", admin, now)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeDocumentNotFound, domain.GetErrorCode(err))
}

func TestFetch_MissingBucketOrPath(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Fetch(context.Background(), "", "x.pdf", "", nil, now)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeValidationFailed, domain.GetErrorCode(err))

	_, err = f.svc.Fetch(context.Background(), "invoices", "", "", nil, now)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorCodeValidationFailed, domain.GetErrorCode(err))
}
