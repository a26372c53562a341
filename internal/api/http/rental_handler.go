package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"gearloop-backend/internal/domain"
	"gearloop-backend/internal/service"
)

type RentalHandler struct {
	rentalSvc service.RentalService
}

func NewRentalHandler(rentalSvc service.RentalService) *RentalHandler {
	return &RentalHandler{rentalSvc: rentalSvc}
}

type createRentalRequest struct {
	ItemID    int32  `json:"item_id" validate:"required,gt=0"`
	StartDate string `json:"start_date" validate:"required,len=10"`
	EndDate   string `json:"end_date" validate:"required,len=10"`
}

func (h *RentalHandler) CreateRental(w http.ResponseWriter, r *http.Request) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req createRentalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rental, err := h.rentalSvc.RequestRental(r.Context(), userID, req.ItemID, req.StartDate, req.EndDate)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

type respondRentalRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason" validate:"max=2000"`
}

func (h *RentalHandler) RespondToRental(w http.ResponseWriter, r *http.Request) {
	userID, rentalID, err := actorAndRentalID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req respondRentalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	rental, err := h.rentalSvc.RespondToRental(r.Context(), userID, rentalID, req.Approve, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

type cancelRentalRequest struct {
	Reason string `json:"reason" validate:"max=2000"`
}

func (h *RentalHandler) CancelRental(w http.ResponseWriter, r *http.Request) {
	userID, rentalID, err := actorAndRentalID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req cancelRentalRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	rental, err := h.rentalSvc.CancelRental(r.Context(), userID, rentalID, req.Reason)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) ConfirmHandover(w http.ResponseWriter, r *http.Request) {
	userID, rentalID, err := actorAndRentalID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rental, err := h.rentalSvc.ConfirmHandover(r.Context(), userID, rentalID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (h *RentalHandler) ConfirmReceived(w http.ResponseWriter, r *http.Request) {
	userID, rentalID, err := actorAndRentalID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rental, err := h.rentalSvc.ConfirmReceived(r.Context(), userID, rentalID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

type confirmReturnRequest struct {
	DamageReport         string `json:"damage_report" validate:"max=5000"`
	DamageDeductionCents int64  `json:"damage_deduction_cents" validate:"gte=0"`
}

func (h *RentalHandler) ConfirmReturned(w http.ResponseWriter, r *http.Request) {
	userID, rentalID, err := actorAndRentalID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req confirmReturnRequest
	if r.ContentLength > 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}

	rental, err := h.rentalSvc.ConfirmReturned(r.Context(), userID, rentalID, req.DamageReport, req.DamageDeductionCents)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

type rentalDetailResponse struct {
	Rental   *domain.Rental         `json:"rental"`
	Timeline []domain.TimelineEvent `json:"timeline"`
}

func (h *RentalHandler) GetRental(w http.ResponseWriter, r *http.Request) {
	userID, rentalID, err := actorAndRentalID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	rental, timeline, err := h.rentalSvc.GetRental(r.Context(), userID, rentalID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rentalDetailResponse{Rental: rental, Timeline: timeline})
}

type rentalListResponse struct {
	Rentals    []domain.Rental `json:"rentals"`
	TotalCount int32           `json:"total_count"`
}

func (h *RentalHandler) ListRentals(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.rentalSvc.ListRentals)
}

func (h *RentalHandler) ListLendings(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.rentalSvc.ListLendings)
}

func (h *RentalHandler) list(w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, userID int32, status string, page, pageSize int32) ([]domain.Rental, int32, error)) {
	userID, err := actorID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	page, pageSize := pageParams(r)
	rentals, total, err := fetch(r.Context(), userID, r.URL.Query().Get("status"), page, pageSize)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if rentals == nil {
		rentals = []domain.Rental{}
	}
	writeJSON(w, http.StatusOK, rentalListResponse{Rentals: rentals, TotalCount: total})
}

func actorAndRentalID(r *http.Request) (int32, int32, error) {
	userID, err := actorID(r)
	if err != nil {
		return 0, 0, err
	}
	rentalID, err := pathID(r, "id")
	if err != nil {
		return 0, 0, err
	}
	return userID, rentalID, nil
}

func pathID(r *http.Request, name string) (int32, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || id <= 0 {
		return 0, domain.NewErrorf(domain.ErrInvalidArgument, "invalid %s %q", name, raw)
	}
	return int32(id), nil
}

func pageParams(r *http.Request) (int32, int32) {
	page, _ := strconv.ParseInt(r.URL.Query().Get("page"), 10, 32)
	pageSize, _ := strconv.ParseInt(r.URL.Query().Get("page_size"), 10, 32)
	return int32(page), int32(pageSize)
}
