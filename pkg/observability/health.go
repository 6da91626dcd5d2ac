package observability

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// HealthStatus is the JSON body served on the health and readiness endpoints
type HealthStatus struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Checks    map[string]string `json:"checks"`
}

// HealthChecker answers liveness and readiness probes. Liveness only proves
// the process serves HTTP; readiness additionally pings the commission
// database, since every endpoint except the document proxy is useless
// without it.
type HealthChecker struct {
	dbPool *pgxpool.Pool
}

// NewHealthChecker creates a new HealthChecker
func NewHealthChecker(dbPool *pgxpool.Pool) *HealthChecker {
	return &HealthChecker{dbPool: dbPool}
}

// CheckReady pings the database and reports pool utilization
func (h *HealthChecker) CheckReady(ctx context.Context) HealthStatus {
	checks := make(map[string]string)
	status := "ready"

	if h.dbPool == nil {
		checks["database"] = "not configured"
		status = "not ready"
	} else {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()

		if err := h.dbPool.Ping(pingCtx); err != nil {
			checks["database"] = "unreachable: " + err.Error()
			status = "not ready"
		} else {
			stats := h.dbPool.Stat()
			checks["database"] = fmt.Sprintf("ok (%d/%d connections in use)",
				stats.AcquiredConns(), stats.TotalConns())
		}
	}

	return HealthStatus{
		Status:    status,
		Timestamp: time.Now().UTC(),
		Checks:    checks,
	}
}

// HealthHandler serves the liveness probe
func (h *HealthChecker) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, HealthStatus{
			Status:    "alive",
			Timestamp: time.Now().UTC(),
			Checks:    map[string]string{},
		})
	}
}

// ReadyHandler serves the readiness probe; 503 until the database answers
func (h *HealthChecker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := h.CheckReady(r.Context())

		code := http.StatusOK
		if status.Status != "ready" {
			code = http.StatusServiceUnavailable
		}
		writeStatus(w, code, status)
	}
}

func writeStatus(w http.ResponseWriter, code int, status HealthStatus) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(status)
}
