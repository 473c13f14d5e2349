package handlers

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/auth"
	"github.com/mmynk/homebase/internal/social"
)

type socialLoginRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

type authURLResponse struct {
	AuthorizationURL string `json:"authorization_url"`
}

// socialAuthURL starts a provider login: it pins a state value in a cookie
// and returns the consent URL carrying the same state.
func (h *Handler) socialAuthURL(w http.ResponseWriter, r *http.Request) {
	provider, err := h.provider(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if redirect := r.URL.Query().Get("redirect_uri"); redirect != "" && redirect != provider.RedirectURL() {
		writeError(w, apperr.Validation("redirect_uri must be in the allowed list"))
		return
	}

	state := uuid.NewString()
	h.cookies.SetState(w, state)
	writeJSON(w, http.StatusOK, authURLResponse{AuthorizationURL: provider.AuthCodeURL(state)})
}

// socialLogin finishes a provider login. code and state come from the query
// string the provider redirected with, or from a JSON body.
func (h *Handler) socialLogin(w http.ResponseWriter, r *http.Request) {
	provider, err := h.provider(r)
	if err != nil {
		writeError(w, err)
		return
	}

	req := socialLoginRequest{
		Code:  r.URL.Query().Get("code"),
		State: r.URL.Query().Get("state"),
	}
	if req.Code == "" {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
	}
	if req.Code == "" {
		writeError(w, apperr.Validation("code is required"))
		return
	}

	expected := auth.TokenFromCookie(r, auth.StateCookie)
	if expected == "" || subtle.ConstantTimeCompare([]byte(expected), []byte(req.State)) != 1 {
		writeError(w, apperr.Validation("State could not be found in server-side session data"))
		return
	}

	identity, err := provider.Exchange(r.Context(), req.Code)
	if err != nil {
		h.logger.Warn("Social login failed", "provider", provider.Name, "error", err)
		switch {
		case errors.Is(err, social.ErrNoEmail), errors.Is(err, social.ErrUnverifiedEmail):
			writeError(w, apperr.Validation("Provider did not return a verified email address"))
		default:
			writeError(w, apperr.Validation("Could not authenticate with provider"))
		}
		return
	}

	pair, profile, err := h.users.SocialLogin(r.Context(), *identity)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cookies.ClearState(w)
	h.cookies.SetTokens(w, pair)
	writeJSON(w, http.StatusCreated, profile)
}

func (h *Handler) provider(r *http.Request) (*social.Provider, error) {
	p, err := h.social.Lookup(mux.Vars(r)["provider"])
	if err != nil {
		return nil, apperr.NotFound("Provider not found")
	}
	return p, nil
}
