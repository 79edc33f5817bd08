package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/checkout"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/guestcart"
	"github.com/buranovt2025-jpg/gogomarke.uz-sub002/internal/session"
)

// NewRouter wires the storefront API surface.
func NewRouter(guest *guestcart.Store, sessions *session.Manager, flow *checkout.Orchestrator, requestTimeout time.Duration, log *logrus.Logger) http.Handler {
	guestCart := NewGuestCartHandler(guest)
	auth := NewAuthHandler(sessions)
	prefs := NewPrefsHandler(sessions)
	wizard := NewCheckoutHandler(flow)

	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Compress(5))
	r.Use(GuestIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/guest-cart", func(r chi.Router) {
			r.Get("/", guestCart.Get)
			r.Delete("/", guestCart.Clear)
			r.Post("/items", guestCart.AddItem)
			r.Put("/items/{productID}", guestCart.UpdateQuantity)
			r.Delete("/items/{productID}", guestCart.RemoveItem)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", auth.Login)
			r.Post("/register", auth.Register)
			r.Post("/logout", auth.Logout)
			r.With(AuthMiddleware(sessions)).Get("/me", auth.Me)
		})

		r.Route("/prefs", func(r chi.Router) {
			r.Get("/language", prefs.GetLanguage)
			r.Put("/language", prefs.SetLanguage)
		})

		r.Route("/checkout", func(r chi.Router) {
			r.Use(AuthMiddleware(sessions))
			r.Post("/", wizard.Start)
			r.Get("/", wizard.Get)
			r.Delete("/", wizard.Abandon)
			r.Put("/fields", wizard.UpdateFields)
			r.Post("/advance", wizard.Advance)
			r.Post("/retreat", wizard.Retreat)
			r.Post("/jump", wizard.Jump)
			r.Post("/coupon", wizard.ApplyCoupon)
			r.Delete("/coupon", wizard.RemoveCoupon)
			r.Post("/submit", wizard.Submit)
		})
	})

	return otelhttp.NewHandler(r, "storefront")
}
