package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/partnerhub/commission-service/internal/auth"
	"github.com/partnerhub/commission-service/internal/domain"
	"github.com/partnerhub/commission-service/internal/domain/ports"
)

type mockDocumentService struct {
	mock.Mock
}

func (m *mockDocumentService) Fetch(ctx context.Context, bucket, path, token string, principal *auth.Principal, now time.Time) (*ports.Document, error) {
	args := m.Called(ctx, bucket, path, token, principal, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ports.Document), args.Error(1)
}

func newDocumentHandler() (*DocumentHandler, *mockDocumentService) {
	svc := new(mockDocumentService)
	h := NewDocumentHandler(svc, zap.NewNop())
	h.now = func() time.Time { return fixedNow }
	return h, svc
}

func TestDocumentGet_StreamsBody(t *testing.T) {
	h, svc := newDocumentHandler()

	svc.On("Fetch", mock.Anything, "invoices", "2025/inv-9.pdf", "tok-1", (*auth.Principal)(nil), fixedNow).
		Return(&ports.Document{
			Body:          io.NopCloser(strings.NewReader("%PDF-1.7 payload")),
			ContentType:   "application/pdf",
			ContentLength: 16,
		}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/documents?bucket=invoices&path=2025/inv-9.pdf&token=tok-1", nil)
	w := httptest.NewRecorder()

	h.Get(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, "16", w.Header().Get("Content-Length"))
	assert.Equal(t, "%PDF-1.7 payload", w.Body.String())
}

func TestDocumentGet_DeniedHasGenericBody(t *testing.T) {
	h, svc := newDocumentHandler()

	svc.On("Fetch", mock.Anything, "invoices", "2025/inv-9.pdf", "", (*auth.Principal)(nil), fixedNow).
		Return(nil, domain.ErrDocumentAccessDenied)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/documents?bucket=invoices&path=2025/inv-9.pdf", nil)
	w := httptest.NewRecorder()

	h.Get(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.NotContains(t, w.Body.String(), "invoices", "no object detail in the rejection")
}

func TestDocumentGet_PrincipalForwarded(t *testing.T) {
	h, svc := newDocumentHandler()

	admin := &auth.Principal{Role: auth.RoleAdmin}
	svc.On("Fetch", mock.Anything, "invoices", "x.pdf", "", admin, fixedNow).
		Return(&ports.Document{
			Body:        io.NopCloser(strings.NewReader("data")),
			ContentType: "application/octet-stream",
		}, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/documents?bucket=invoices&path=x.pdf", nil)
	w := httptest.NewRecorder()

	h.Get(w, asPrincipal(r, admin))

	require.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestDocumentGet_NotFound(t *testing.T) {
	h, svc := newDocumentHandler()

	svc.On("Fetch", mock.Anything, "invoices", "gone.pdf", "tok-1", (*auth.Principal)(nil), fixedNow).
		Return(nil, domain.ErrDocumentNotFound)

	r := httptest.NewRequest(http.MethodGet, "/api/v1/documents?bucket=invoices&path=gone.pdf&token=tok-1", nil)
	w := httptest.NewRecorder()

	h.Get(w, r)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
