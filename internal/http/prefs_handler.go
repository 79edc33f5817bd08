package http

import (
	"encoding/json"
	"net/http"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/session"
)

// PrefsHandler exposes the persisted display preferences. The subject is
// the guest id, or the user id once authenticated.
type PrefsHandler struct {
	sessions *session.Manager
}

func NewPrefsHandler(sessions *session.Manager) *PrefsHandler {
	return &PrefsHandler{sessions: sessions}
}

func (h *PrefsHandler) subject(r *http.Request) string {
	if sess := getSession(r.Context()); sess != nil && sess.User != nil {
		return sess.User.ID
	}
	return getGuestID(r.Context())
}

func (h *PrefsHandler) GetLanguage(w http.ResponseWriter, r *http.Request) {
	subject := h.subject(r)
	if subject == "" {
		respondError(w, http.StatusBadRequest, "missing_subject", "guest id or session is required")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"language": h.sessions.Language(r.Context(), subject)})
}

type languageRequest struct {
	Language string `json:"language"`
}

func (h *PrefsHandler) SetLanguage(w http.ResponseWriter, r *http.Request) {
	subject := h.subject(r)
	if subject == "" {
		respondError(w, http.StatusBadRequest, "missing_subject", "guest id or session is required")
		return
	}

	var req languageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Language == "" {
		respondError(w, http.StatusBadRequest, "invalid_request", "language is required")
		return
	}

	h.sessions.SetLanguage(r.Context(), subject, req.Language)
	respondJSON(w, http.StatusOK, map[string]string{"language": req.Language})
}
