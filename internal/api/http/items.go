package http

import (
	"net/http"
	"strconv"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/geo"
	"lendlocal-backend/internal/lifecycle"

	"github.com/shopspring/decimal"
)

type itemRequest struct {
	Title              string          `json:"title" validate:"required,max=120"`
	Description        string          `json:"description" validate:"required,max=2000"`
	ImageURL           string          `json:"image_url" validate:"omitempty,url"`
	Category           string          `json:"category" validate:"required"`
	Condition          string          `json:"condition" validate:"required"`
	BorrowingFeePerDay decimal.Decimal `json:"borrowing_fee_per_day"`
	Lat                *float64        `json:"lat" validate:"omitempty,latitude"`
	Lng                *float64        `json:"lng" validate:"omitempty,longitude"`
}

// details falls back to fallback when the body carries no coordinates.
func (req itemRequest) details(fallback geo.Point) lifecycle.ItemDetails {
	loc := fallback
	if req.Lat != nil && req.Lng != nil {
		loc = geo.Point{Lat: *req.Lat, Lng: *req.Lng}
	}
	return lifecycle.ItemDetails{
		Title:              req.Title,
		Description:        req.Description,
		ImageURL:           req.ImageURL,
		Category:           domain.ItemCategory(req.Category),
		Condition:          domain.ItemCondition(req.Condition),
		BorrowingFeePerDay: req.BorrowingFeePerDay,
		Location:           loc,
	}
}

func (h *Handler) browseItems(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	origin, ok := h.origin(w, q.Get("lat"), q.Get("lng"))
	if !ok {
		return
	}
	listings, err := h.market.Browse(r.Context(), q.Get("q"), q.Get("category"), &origin)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, listings)
}

// origin parses the client's coordinates, or returns the configured default
// location when either is missing.
func (h *Handler) origin(w http.ResponseWriter, latParam, lngParam string) (geo.Point, bool) {
	if latParam == "" || lngParam == "" {
		return h.defaultLocation, true
	}
	lat, err := strconv.ParseFloat(latParam, 64)
	if err != nil || lat < -90 || lat > 90 {
		writeError(w, http.StatusBadRequest, "invalid_request", "lat must be a number between -90 and 90")
		return geo.Point{}, false
	}
	lng, err := strconv.ParseFloat(lngParam, 64)
	if err != nil || lng < -180 || lng > 180 {
		writeError(w, http.StatusBadRequest, "invalid_request", "lng must be a number between -180 and 180")
		return geo.Point{}, false
	}
	return geo.Point{Lat: lat, Lng: lng}, true
}

func (h *Handler) createItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !h.decode(w, r, &req) {
		return
	}
	item, err := h.market.ListItem(r.Context(), UserIDFromContext(r.Context()), req.details(h.defaultLocation))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.market.GetItem(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if !h.decode(w, r, &req) {
		return
	}
	item, err := h.market.UpdateItem(r.Context(), UserIDFromContext(r.Context()), pathID(r), req.details(h.defaultLocation))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *Handler) quoteItem(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseRange(r.URL.Query().Get("start"), r.URL.Query().Get("end"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	quote, err := h.market.Quote(r.Context(), pathID(r), start, end)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}
