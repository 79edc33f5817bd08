package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/session"
)

type contextKey string

const (
	ctxKeyRequestID contextKey = "request_id"
	ctxKeyGuestID   contextKey = "guest_id"
	ctxKeySession   contextKey = "session"
)

// RequestIDMiddleware tags every request, honoring a client-provided id.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GuestIDMiddleware picks up the client-held guest identity. The guest cart
// is keyed on it, so guest routes require it.
func GuestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		guestID := r.Header.Get("X-Guest-ID")
		if guestID == "" {
			if c, err := r.Cookie("guest_id"); err == nil {
				guestID = c.Value
			}
		}
		ctx := context.WithValue(r.Context(), ctxKeyGuestID, guestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthMiddleware resolves the bearer token into a session. The profile
// fetch is authoritative: a rejected credential means 401, and the session
// mirror has already been reset by then.
func AuthMiddleware(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
				return
			}

			sess, err := sessions.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, session.ErrSessionInvalid) {
					respondError(w, http.StatusUnauthorized, "unauthorized", "session is no longer valid")
					return
				}
				respondError(w, http.StatusServiceUnavailable, "auth_unavailable", "could not verify session, try again")
				return
			}

			ctx := context.WithValue(r.Context(), ctxKeySession, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggingMiddleware writes one structured line per request.
func LoggingMiddleware(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.WithFields(logrus.Fields{
				"method":     r.Method,
				"path":       r.URL.Path,
				"request_id": getRequestID(r.Context()),
				"duration":   time.Since(start).String(),
			}).Info("request handled")
		})
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return id
	}
	return ""
}

func getGuestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKeyGuestID).(string); ok {
		return id
	}
	return ""
}

func getSession(ctx context.Context) *session.Session {
	if sess, ok := ctx.Value(ctxKeySession).(*session.Session); ok {
		return sess
	}
	return nil
}
