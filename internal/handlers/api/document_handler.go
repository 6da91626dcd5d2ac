package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/partnerhub/commission-service/internal/auth"
	"github.com/partnerhub/commission-service/internal/domain/ports"
	"github.com/partnerhub/commission-service/pkg/timeutil"
)

// DocumentService is the access-gated fetch surface the handler depends on
type DocumentService interface {
	Fetch(ctx context.Context, bucket, path, token string, principal *auth.Principal, now time.Time) (*ports.Document, error)
}

// DocumentHandler streams stored documents to authorized callers
type DocumentHandler struct {
	documents DocumentService
	logger    *zap.Logger
	now       func() time.Time
}

// NewDocumentHandler creates a new document proxy handler
func NewDocumentHandler(documents DocumentService, logger *zap.Logger) *DocumentHandler {
	return &DocumentHandler{
		documents: documents,
		logger:    logger,
		now:       timeutil.Now,
	}
}

// Get handles GET /api/v1/documents?bucket=&path=&token=
func (h *DocumentHandler) Get(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	bucket := query.Get("bucket")
	path := query.Get("path")
	token := query.Get("token")

	doc, err := h.documents.Fetch(r.Context(), bucket, path, token, auth.PrincipalFrom(r.Context()), h.now())
	if err != nil {
		respondError(w, h.logger, err)
		return
	}
	defer doc.Body.Close()

	w.Header().Set("Content-Type", doc.ContentType)
	if doc.ContentLength > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(doc.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, doc.Body); err != nil {
		// Headers are already out; nothing to send but a log line.
		h.logger.Warn("document stream interrupted",
			zap.String("bucket", bucket),
			zap.String("path", path),
			zap.Error(err))
	}
}
