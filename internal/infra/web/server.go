package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"shaparak-pay/internal/config"
	"shaparak-pay/internal/usecase"
)

// Server hosts the payment endpoints: initiating a payment, receiving bank
// callbacks and the admin refund surface.
type Server struct {
	payUC usecase.PaymentUseCase
	auth  *AuthManager
	cfg   *config.Config
	log   zerolog.Logger

	srv *http.Server
}

func NewServer(payUC usecase.PaymentUseCase, cfg *config.Config, logger *zerolog.Logger) *Server {
	return &Server{
		payUC: payUC,
		auth:  NewAuthManager(cfg.Admin.Secret, !cfg.Runtime.Dev, cfg.Admin.SessionTTL),
		cfg:   cfg,
		log:   logger.With().Str("component", "web").Logger(),
	}
}

// Router builds the chi mux. Exposed separately from Start so tests can drive
// it with httptest.
func (s *Server) Router() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/pay", s.handlePay)
		// Banks differ: Parsian and Saman POST the callback form, IranKish
		// mixes query and form fields. Accept both methods on one path.
		r.Get("/payment/callback", s.handleCallback)
		r.Post("/payment/callback", s.handleCallback)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/login", s.handleAdminLogin)
			r.Post("/logout", s.handleAdminLogout)
			r.Group(func(r chi.Router) {
				r.Use(s.requireAdmin)
				r.Post("/refund", s.handleRefund)
				r.Get("/payments/{trackingNumber}", s.handlePaymentStatus)
			})
		})
	})

	return r
}

func (s *Server) Start() error {
	s.srv = &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Web.Port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.log.Info().Int("port", s.cfg.Web.Port).Msg("http server listening")
	return s.srv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

// requireAdmin gates the refund surface behind a valid admin session.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Admin.Secret == "" {
			s.log.Error().Msg("admin secret is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		claims, err := s.auth.ParseFromRequest(r)
		if err != nil || claims.Role != "admin" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
