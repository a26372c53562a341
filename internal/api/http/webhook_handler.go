package http

import (
	"io"
	"net/http"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/service"
)

// SignatureHeader carries the provider's HMAC over the raw request body.
const SignatureHeader = "X-Webhook-Signature"

type WebhookHandler struct {
	webhookSvc service.WebhookService
}

func NewWebhookHandler(webhookSvc service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// HandlePaymentWebhook ingests provider payment notifications. The body is
// read raw before any parsing because the signature covers the exact bytes
// sent, not a re-serialization.
func (h *WebhookHandler) HandlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, r, domain.WrapError(domain.ErrInvalidArgument, "failed to read webhook body", err))
		return
	}

	signature := r.Header.Get(SignatureHeader)
	if signature == "" {
		signature = r.URL.Query().Get("hmac")
	}

	if err := h.webhookSvc.HandlePaymentEvent(r.Context(), payload, signature); err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "received"})
}
