package http

import (
	"net/http"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/service"
)

type DisputeHandler struct {
	disputeSvc service.DisputeService
}

func NewDisputeHandler(disputeSvc service.DisputeService) *DisputeHandler {
	return &DisputeHandler{disputeSvc: disputeSvc}
}

type raiseDisputeRequest struct {
	Reason   string `json:"reason" validate:"required,max=5000"`
	Evidence string `json:"evidence" validate:"max=10000"`
}

func (h *DisputeHandler) RaiseDispute(w http.ResponseWriter, r *http.Request) {
	userID, rentalID, err := actorAndRentalID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req raiseDisputeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	dispute, err := h.disputeSvc.RaiseDispute(r.Context(), userID, rentalID, req.Reason, req.Evidence)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, dispute)
}

type resolveDisputeRequest struct {
	Decision               domain.DisputeDecision `json:"decision" validate:"required,oneof=COMPLETE_RENTAL CANCEL_RENTAL"`
	RefundCents            int64                  `json:"refund_cents" validate:"gte=0"`
	OwnerCompensationCents int64                  `json:"owner_compensation_cents" validate:"gte=0"`
}

func (h *DisputeHandler) ResolveDispute(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	disputeID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req resolveDisputeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	dispute, err := h.disputeSvc.ResolveDispute(r.Context(), userID, disputeID, req.Decision, req.RefundCents, req.OwnerCompensationCents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, dispute)
}

type disputeListResponse struct {
	Disputes   []domain.Dispute `json:"disputes"`
	TotalCount int32            `json:"total_count"`
}

func (h *DisputeHandler) ListOpenDisputes(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, pageSize := pageParams(r)
	disputes, total, err := h.disputeSvc.ListOpenDisputes(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if disputes == nil {
		disputes = []domain.Dispute{}
	}
	writeJSON(w, http.StatusOK, disputeListResponse{Disputes: disputes, TotalCount: total})
}
