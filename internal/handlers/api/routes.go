package api

import (
	"net/http"

	"github.com/partnerhub/commission-service/pkg/observability"
)

// Routes builds the API mux. Seller endpoints require a bearer principal
// (the seller themselves or an admin), transitions require an admin, and
// the document proxy accepts anonymous callers holding a capability token.
func Routes(
	sellers *SellerHandler,
	payouts *PayoutAdminHandler,
	documents *DocumentHandler,
	authn *Authenticator,
) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /api/v1/sellers/{id}/commission-stats",
		observability.HTTPMetrics("commission_stats", authn.Required(http.HandlerFunc(sellers.GetCommissionStats))))
	mux.Handle("GET /api/v1/sellers/{id}/balance",
		observability.HTTPMetrics("seller_balance", authn.Required(http.HandlerFunc(sellers.GetBalance))))
	mux.Handle("POST /api/v1/sellers/{id}/payment-requests",
		observability.HTTPMetrics("create_payment_request", authn.Required(http.HandlerFunc(sellers.CreatePaymentRequest))))

	mux.Handle("POST /api/v1/payment-requests/{id}/approve",
		observability.HTTPMetrics("approve_payment_request", authn.RequireAdmin(http.HandlerFunc(payouts.Approve))))
	mux.Handle("POST /api/v1/payment-requests/{id}/reject",
		observability.HTTPMetrics("reject_payment_request", authn.RequireAdmin(http.HandlerFunc(payouts.Reject))))
	mux.Handle("POST /api/v1/payment-requests/{id}/complete",
		observability.HTTPMetrics("complete_payment_request", authn.RequireAdmin(http.HandlerFunc(payouts.Complete))))

	mux.Handle("GET /api/v1/documents",
		observability.HTTPMetrics("get_document", authn.Optional(http.HandlerFunc(documents.Get))))

	return mux
}
