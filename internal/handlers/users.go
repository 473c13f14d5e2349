package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/mmynk/homebase/internal/apperr"
	"github.com/mmynk/homebase/internal/auth"
	"github.com/mmynk/homebase/internal/service"
)

const (
	avatarField = "avatar"
	// multipartOverhead is the slack allowed on top of the avatar size for
	// boundaries, part headers and other form fields.
	multipartOverhead = 64 << 10
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	Refresh string `json:"refresh"`
}

type verifyRequest struct {
	Token string `json:"token"`
}

type registerRequest struct {
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Password   string `json:"password"`
	RePassword string `json:"re_password"`
}

type deleteAccountRequest struct {
	CurrentPassword string `json:"current_password"`
}

type avatarResponse struct {
	Avatar string `json:"avatar"`
}

// login exchanges credentials for a token pair delivered as cookies.
func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	pair, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cookies.SetTokens(w, pair)
	writeJSON(w, http.StatusOK, messageBody{Message: "Login successful"})
}

// refresh prefers the refresh cookie and falls back to the request body.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromCookie(r, auth.RefreshCookie)
	if token == "" {
		var req refreshRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		token = req.Refresh
	}

	access, err := h.users.Refresh(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	h.cookies.SetAccess(w, access)
	writeJSON(w, http.StatusOK, messageBody{Message: "Token refreshed"})
}

// verify prefers the access cookie and falls back to the request body.
func (h *Handler) verify(w http.ResponseWriter, r *http.Request) {
	token := auth.TokenFromCookie(r, auth.AccessCookie)
	if token == "" {
		var req verifyRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
		token = req.Token
	}

	if err := h.users.Verify(token); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.users.Register(r.Context(), service.RegisterInput{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Password:   req.Password,
		RePassword: req.RePassword,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.users.Me(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (h *Handler) deleteAccount(w http.ResponseWriter, r *http.Request) {
	var req deleteAccountRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.users.DeleteAccount(r.Context(), userID(r), req.CurrentPassword); err != nil {
		writeError(w, err)
		return
	}
	h.cookies.Clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// uploadAvatar streams the "avatar" part of a multipart form into the
// avatar store without buffering the rest of the form on disk.
func (h *Handler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	limit := h.users.AvatarMaxBytes()
	if r.ContentLength > limit+multipartOverhead {
		writeError(w, apperr.PayloadTooLarge("File too large"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)

	part, err := avatarPart(r)
	if err != nil {
		writeError(w, uploadError(err))
		return
	}
	defer part.Close()

	url, err := h.users.UploadAvatar(r.Context(), userID(r), partSize(part), part)
	if err != nil {
		writeError(w, uploadError(err))
		return
	}
	writeJSON(w, http.StatusOK, avatarResponse{Avatar: url})
}

// deleteAvatar reports filesystem failures as a message body, not an error envelope.
func (h *Handler) deleteAvatar(w http.ResponseWriter, r *http.Request) {
	err := h.users.DeleteAvatar(r.Context(), userID(r))
	if e, ok := apperr.As(err); ok && e.Code == apperr.CodeInternal {
		writeJSON(w, http.StatusInternalServerError, messageBody{Message: e.Message})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: "Avatar deleted successfully"})
}

func avatarPart(r *http.Request) (*multipart.Part, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return nil, apperr.Validation("Expected a multipart form upload")
	}
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return nil, &apperr.Error{Code: apperr.CodeInternal, Message: "No file was submitted."}
		}
		if err != nil {
			return nil, err
		}
		if part.FormName() == avatarField && part.FileName() != "" {
			return part, nil
		}
		part.Close()
	}
}

// partSize is the Content-Length a client declared on the file part, or 0
// when it sent none.
func partSize(part *multipart.Part) int64 {
	n, err := strconv.ParseInt(part.Header.Get("Content-Length"), 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// uploadError maps a body that overran the multipart cap to PayloadTooLarge.
func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return apperr.PayloadTooLarge("File too large")
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Validation("Malformed multipart form")
}
