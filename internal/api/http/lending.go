package http

import (
	"net/http"
	"time"

	"lendlocal-backend/internal/service"
	"lendlocal-backend/internal/utils"

	"github.com/shopspring/decimal"
)

type borrowRequestBody struct {
	ItemID    string `json:"item_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Message   string `json:"message" validate:"max=1000"`
}

type paymentBody struct {
	Amount     decimal.Decimal `json:"amount"`
	PaymentRef string          `json:"payment_ref" validate:"max=200"`
}

type reviewBody struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment" validate:"max=2000"`
}

func parseRange(startParam, endParam string) (time.Time, time.Time, error) {
	start, err := utils.ParseDate(startParam)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := utils.ParseDate(endParam)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// parseRole reads ?role=, writing a 400 when it is not borrower or lender.
func parseRole(w http.ResponseWriter, r *http.Request) (service.Role, bool) {
	role := service.Role(r.URL.Query().Get("role"))
	if !role.Valid() {
		writeError(w, http.StatusBadRequest, "invalid_request", "role must be borrower or lender")
		return "", false
	}
	return role, true
}

func (h *Handler) createRequest(w http.ResponseWriter, r *http.Request) {
	var body borrowRequestBody
	if !h.decode(w, r, &body) {
		return
	}
	start, end, err := parseRange(body.StartDate, body.EndDate)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	req, err := h.lending.CreateRequest(r.Context(), UserIDFromContext(r.Context()), body.ItemID, start, end, body.Message)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, req)
}

func (h *Handler) listRequests(w http.ResponseWriter, r *http.Request) {
	role, ok := parseRole(w, r)
	if !ok {
		return
	}
	reqs, err := h.lending.ListRequests(r.Context(), UserIDFromContext(r.Context()), role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(reqs))
}

func (h *Handler) approveRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.lending.ApproveRequest(r.Context(), UserIDFromContext(r.Context()), pathID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) denyRequest(w http.ResponseWriter, r *http.Request) {
	req, err := h.lending.DenyRequest(r.Context(), UserIDFromContext(r.Context()), pathID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) payRequest(w http.ResponseWriter, r *http.Request) {
	var body paymentBody
	if !h.decode(w, r, &body) {
		return
	}
	loan, err := h.lending.PayRequest(r.Context(), UserIDFromContext(r.Context()), pathID(r), body.Amount, body.PaymentRef)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	role, ok := parseRole(w, r)
	if !ok {
		return
	}
	loans, err := h.lending.ListTransactions(r.Context(), UserIDFromContext(r.Context()), role)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(loans))
}

func (h *Handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	loan, err := h.lending.GetTransaction(r.Context(), UserIDFromContext(r.Context()), pathID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *Handler) markReturned(w http.ResponseWriter, r *http.Request) {
	loan, err := h.lending.MarkReturned(r.Context(), UserIDFromContext(r.Context()), pathID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	var body reviewBody
	if !h.decode(w, r, &body) {
		return
	}
	review, err := h.lending.SubmitReview(r.Context(), UserIDFromContext(r.Context()), pathID(r), body.Rating, body.Comment)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, review)
}
