package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/logger"
	"lendlocal-backend/internal/security"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type errorKind struct {
	err    error
	status int
	kind   string
}

// errorKinds is checked in order with errors.Is.
var errorKinds = []errorKind{
	{domain.ErrInvalidRange, http.StatusBadRequest, "invalid_range"},
	{domain.ErrInvalidRate, http.StatusBadRequest, "invalid_rate"},
	{domain.ErrInvalidRating, http.StatusBadRequest, "invalid_rating"},
	{domain.ErrAmountMismatch, http.StatusBadRequest, "amount_mismatch"},
	{domain.ErrSelfBorrow, http.StatusBadRequest, "self_borrow"},
	{domain.ErrInvalidListing, http.StatusBadRequest, "invalid_listing"},
	{security.ErrInvalidWalletAddress, http.StatusBadRequest, "invalid_wallet_address"},
	{security.ErrInvalidSignature, http.StatusUnauthorized, "unauthenticated"},
	{security.ErrChallengeUsed, http.StatusUnauthorized, "unauthenticated"},
	{security.ErrInvalidToken, http.StatusUnauthorized, "unauthenticated"},
	{security.ErrExpiredToken, http.StatusUnauthorized, "unauthenticated"},
	{security.ErrWrongTokenType, http.StatusUnauthorized, "unauthenticated"},
	{domain.ErrNotAuthorized, http.StatusForbidden, "not_authorized"},
	{domain.ErrUnavailable, http.StatusConflict, "unavailable"},
	{domain.ErrInvalidState, http.StatusConflict, "invalid_state"},
	{domain.ErrDuplicateReview, http.StatusConflict, "duplicate_review"},
	{domain.ErrNotFound, http.StatusNotFound, "not_found"},
}

// writeServiceError maps a service error onto its status code and kind.
// Unknown errors are logged and reported as a bare 500.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			writeError(w, k.status, k.kind, err.Error())
			return
		}
	}
	logger.ErrorContext(r.Context(), "Unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
	writeError(w, http.StatusInternalServerError, "internal", "internal server error")
}

func writeError(w http.ResponseWriter, status int, kind, message string) {
	writeJSON(w, status, errorResponse{Error: kind, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Warn("Failed to encode response", "error", err)
	}
}
