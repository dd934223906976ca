package http

import (
	"net/http"

	"lendlocal-backend/internal/domain"
	"lendlocal-backend/internal/service"
)

type challengeRequest struct {
	WalletAddress string `json:"wallet_address" validate:"required"`
}

type signInRequest struct {
	UserID        string `json:"user_id" validate:"omitempty,max=64"`
	DisplayName   string `json:"display_name" validate:"omitempty,max=80"`
	WalletAddress string `json:"wallet_address" validate:"required"`
	Challenge     string `json:"challenge" validate:"required"`
	Signature     string `json:"signature" validate:"required"`
}

type signInResponse struct {
	AccessToken string       `json:"access_token"`
	User        *domain.User `json:"user"`
}

type profileRequest struct {
	DisplayName   *string `json:"display_name" validate:"omitempty,max=80"`
	Bio           *string `json:"bio" validate:"omitempty,max=500"`
	ProfilePicURL *string `json:"profile_pic_url" validate:"omitempty,url"`
	Email         *string `json:"email" validate:"omitempty,email"`
}

func (h *Handler) signInChallenge(w http.ResponseWriter, r *http.Request) {
	var req challengeRequest
	if !h.decode(w, r, &req) {
		return
	}
	ch, err := h.users.Challenge(r.Context(), req.WalletAddress)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, token, err := h.users.SignIn(r.Context(), service.SignInCredentials{
		UserID:        req.UserID,
		DisplayName:   req.DisplayName,
		WalletAddress: req.WalletAddress,
		Challenge:     req.Challenge,
		Signature:     req.Signature,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, signInResponse{AccessToken: token, User: user})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUser(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !h.decode(w, r, &req) {
		return
	}
	user, err := h.users.UpdateProfile(r.Context(), UserIDFromContext(r.Context()), service.ProfileUpdate{
		DisplayName:   req.DisplayName,
		Bio:           req.Bio,
		ProfilePicURL: req.ProfilePicURL,
		Email:         req.Email,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *Handler) listUserReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.users.ListReviews(r.Context(), pathID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(reviews))
}

// nonNil keeps empty lists encoding as [] rather than null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
