// Package http exposes the lending services as a JSON API.
package http

import (
	"encoding/json"
	"net/http"

	"lendlocal-backend/internal/geo"
	"lendlocal-backend/internal/security"
	"lendlocal-backend/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type Handler struct {
	users           service.UserService
	market          service.MarketplaceService
	lending         service.LendingService
	tokens          security.TokenManager
	defaultLocation geo.Point
	validate        *validator.Validate
}

func NewHandler(users service.UserService, market service.MarketplaceService, lending service.LendingService, tokens security.TokenManager, defaultLocation geo.Point) *Handler {
	return &Handler{
		users:           users,
		market:          market,
		lending:         lending,
		tokens:          tokens,
		defaultLocation: defaultLocation,
		validate:        validator.New(),
	}
}

// Router wires every route under /api/v1 plus /healthz.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(logRequests, h.authenticate)

	api.HandleFunc("/sessions/challenge", h.signInChallenge).Methods(http.MethodPost)
	api.HandleFunc("/sessions", h.signIn).Methods(http.MethodPost)

	api.HandleFunc("/users/me", h.updateProfile).Methods(http.MethodPut)
	api.HandleFunc("/users/{id}", h.getUser).Methods(http.MethodGet)
	api.HandleFunc("/users/{id}/reviews", h.listUserReviews).Methods(http.MethodGet)

	api.HandleFunc("/items", h.browseItems).Methods(http.MethodGet)
	api.HandleFunc("/items", h.createItem).Methods(http.MethodPost)
	api.HandleFunc("/items/{id}", h.getItem).Methods(http.MethodGet)
	api.HandleFunc("/items/{id}", h.updateItem).Methods(http.MethodPut)
	api.HandleFunc("/items/{id}/quote", h.quoteItem).Methods(http.MethodGet)

	api.HandleFunc("/requests", h.createRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests", h.listRequests).Methods(http.MethodGet)
	api.HandleFunc("/requests/{id}/approve", h.approveRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}/deny", h.denyRequest).Methods(http.MethodPost)
	api.HandleFunc("/requests/{id}/pay", h.payRequest).Methods(http.MethodPost)

	api.HandleFunc("/transactions", h.listTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", h.getTransaction).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}/return", h.markReturned).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}/reviews", h.submitReview).Methods(http.MethodPost)

	return r
}

// decode reads a JSON body into dst and runs the struct validators.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed JSON body: "+err.Error())
		return false
	}
	if err := h.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return false
	}
	return true
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}
