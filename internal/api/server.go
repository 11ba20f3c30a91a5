package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"banyabot/internal/config"
	"banyabot/internal/domain"
	"banyabot/internal/metrics"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HTTPServer REST-попутчик бота для веб-мини-приложения. Вся
// бизнес-логика в сервисах, хэндлеры только парсят и маппят ошибки.
type HTTPServer struct {
	cfg          config.APIConfig
	catalog      domain.CatalogService
	availability domain.AvailabilityService
	bookings     domain.BookingService
	users        domain.UserService
	reviews      domain.ReviewService
	auth         *HTTPAuth
	server       *http.Server
	logger       *zerolog.Logger
}

func NewHTTPServer(
	cfg config.APIConfig,
	catalog domain.CatalogService,
	availability domain.AvailabilityService,
	bookings domain.BookingService,
	users domain.UserService,
	reviews domain.ReviewService,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:          cfg,
		catalog:      catalog,
		availability: availability,
		bookings:     bookings,
		users:        users,
		reviews:      reviews,
		auth:         NewHTTPAuth(cfg),
		logger:       logger,
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(srv.requestLogger)
	r.Use(chimw.Recoverer)

	r.Get("/healthz", srv.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(srv.auth.Middleware)

		r.Get("/cities", srv.handleCities)

		r.Route("/banyas", func(r chi.Router) {
			r.Get("/", srv.handleBanyas)
			r.Get("/{id}", srv.handleBanya)
			r.Get("/{id}/masters", srv.handleBanyaMasters)
			r.Get("/{id}/reviews", srv.handleBanyaReviews)
		})

		r.Route("/masters", func(r chi.Router) {
			r.Get("/", srv.handleMasters)
			r.Get("/{id}", srv.handleMaster)
			r.Get("/{id}/reviews", srv.handleMasterReviews)
		})

		r.Get("/availability", srv.handleAvailability)

		r.Route("/bookings", func(r chi.Router) {
			r.Post("/", srv.handleCreateBooking)
			r.Get("/{id}", srv.handleGetBooking)
			r.Post("/{id}/confirm", srv.handleConfirmBooking)
			r.Post("/{id}/cancel", srv.handleCancelBooking)
		})

		r.Get("/users/{telegram_id}/bookings", srv.handleUserBookings)
		r.Post("/reviews", srv.handleCreateReview)
	})

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
}

// Handler отдаёт роутер без запуска сервера, для httptest.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return fmt.Errorf("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requestLogger вешает request_id, пишет строку доступа и дёргает счётчик.
func (s *HTTPServer) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()

		l := s.logger.With().Str("request_id", requestID).Logger()
		ctx := l.WithContext(r.Context())
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r.WithContext(ctx))

		metrics.IncHTTP(r.URL.Path)
		l.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
