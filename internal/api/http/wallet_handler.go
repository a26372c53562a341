package http

import (
	"net/http"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/service"
)

type WalletHandler struct {
	walletSvc service.WalletService
}

func NewWalletHandler(walletSvc service.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	balance, err := h.walletSvc.GetBalance(r.Context(), userID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

type transactionListResponse struct {
	Transactions []domain.WalletTransaction `json:"transactions"`
	TotalCount   int32                      `json:"total_count"`
}

func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, pageSize := pageParams(r)
	txns, total, err := h.walletSvc.ListTransactions(r.Context(), userID, page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if txns == nil {
		txns = []domain.WalletTransaction{}
	}
	writeJSON(w, http.StatusOK, transactionListResponse{Transactions: txns, TotalCount: total})
}

type payoutRequest struct {
	AmountCents int64 `json:"amount_cents" validate:"required,gt=0"`
}

func (h *WalletHandler) RequestPayout(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req payoutRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	txn, err := h.walletSvc.RequestPayout(r.Context(), userID, req.AmountCents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, txn)
}
