package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"gearloop-backend/internal/security"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Rental       *RentalHandler
	Wallet       *WalletHandler
	Dispute      *DisputeHandler
	Webhook      *WebhookHandler
	Notification *NotificationHandler
}

// NewRouter wires the API surface. The webhook and health endpoints are
// public; the webhook authenticates via its body signature, not a bearer
// token; everything else sits behind the auth middleware.
func NewRouter(h Handlers, tm security.TokenManager) *mux.Router {
	r := mux.NewRouter()
	r.Use(RequestLogging)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	r.HandleFunc("/webhooks/payment", h.Webhook.HandlePaymentWebhook).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(tm))

	api.HandleFunc("/rentals", h.Rental.CreateRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals", h.Rental.ListRentals).Methods(http.MethodGet)
	api.HandleFunc("/lendings", h.Rental.ListLendings).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id:[0-9]+}", h.Rental.GetRental).Methods(http.MethodGet)
	api.HandleFunc("/rentals/{id:[0-9]+}/respond", h.Rental.RespondToRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}/cancel", h.Rental.CancelRental).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}/handover", h.Rental.ConfirmHandover).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}/received", h.Rental.ConfirmReceived).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}/returned", h.Rental.ConfirmReturned).Methods(http.MethodPost)
	api.HandleFunc("/rentals/{id:[0-9]+}/disputes", h.Dispute.RaiseDispute).Methods(http.MethodPost)

	api.HandleFunc("/wallet/balance", h.Wallet.GetBalance).Methods(http.MethodGet)
	api.HandleFunc("/wallet/transactions", h.Wallet.ListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/wallet/payouts", h.Wallet.RequestPayout).Methods(http.MethodPost)

	api.HandleFunc("/disputes", h.Dispute.ListOpenDisputes).Methods(http.MethodGet)
	api.HandleFunc("/disputes/{id:[0-9]+}/resolve", h.Dispute.ResolveDispute).Methods(http.MethodPost)

	api.HandleFunc("/notifications", h.Notification.GetNotifications).Methods(http.MethodGet)
	api.HandleFunc("/notifications/{id:[0-9]+}/read", h.Notification.MarkAsRead).Methods(http.MethodPost)

	return r
}
