package http

import (
	"encoding/json"
	"net/http"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/domain"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/session"
)

type AuthHandler struct {
	sessions *session.Manager
}

func NewAuthHandler(sessions *session.Manager) *AuthHandler {
	return &AuthHandler{sessions: sessions}
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type registerRequest struct {
	Phone    string      `json:"phone"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

type sessionResponse struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// Login authenticates and, as a side effect, merges any guest cart into the
// account cart. A merge hiccup never surfaces here.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Phone == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_credentials", "phone and password are required")
		return
	}

	sess, err := h.sessions.Login(r.Context(), getGuestID(r.Context()), req.Phone, req.Password)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "login_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{Token: sess.Token, User: sess.User})
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Phone == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "missing_credentials", "phone and password are required")
		return
	}
	if req.Role == "" {
		req.Role = domain.RoleBuyer
	}

	sess, err := h.sessions.Register(r.Context(), getGuestID(r.Context()), req.Phone, req.Password, req.Role)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "registration_failed", err.Error())
		return
	}
	respondJSON(w, http.StatusCreated, sessionResponse{Token: sess.Token, User: sess.User})
}

// Me returns the resolved profile behind the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	sess := getSession(r.Context())
	if sess == nil {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing session")
		return
	}
	respondJSON(w, http.StatusOK, sessionResponse{Token: sess.Token, User: sess.User})
}

// Logout clears the session mirror. The guest cart is left alone: a fresh
// one starts accumulating immediately.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
		return
	}
	h.sessions.Logout(r.Context(), token)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
