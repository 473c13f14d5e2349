package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

type shortURLRequest struct {
	OriginalURL string `json:"original_url"`
}

func (h *Handler) listShortURLs(w http.ResponseWriter, r *http.Request) {
	urls, err := h.shortURLs.List(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, urls)
}

func (h *Handler) createShortURL(w http.ResponseWriter, r *http.Request) {
	var req shortURLRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	u, err := h.shortURLs.Create(r.Context(), userID(r), req.OriginalURL)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// resolveShortURL answers with the bare original URL as a JSON string.
func (h *Handler) resolveShortURL(w http.ResponseWriter, r *http.Request) {
	original, err := h.shortURLs.Resolve(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, original)
}

func (h *Handler) deleteShortURL(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.shortURLs.Delete(r.Context(), userID(r), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "Short Url deleted")
}
