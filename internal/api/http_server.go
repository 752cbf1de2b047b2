package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cabinbook/internal/config"
	"cabinbook/internal/domain"
	"cabinbook/internal/metrics"

	"github.com/rs/zerolog"
)

// HTTPServer exposes the reservation calendar over HTTP.
type HTTPServer struct {
	cfg       *config.Config
	calendar  domain.CalendarService
	bookings  domain.BookingService
	guestbook domain.GuestbookService
	identity  domain.IdentityService
	exporter  Exporter
	health    HealthChecker
	server    *http.Server
	auth      *HTTPAuth
	logger    *zerolog.Logger
}

// Exporter builds a bookings report file and returns its path.
type Exporter interface {
	BookingsReport(ctx context.Context, from, to string) (string, error)
}

type HealthChecker interface {
	Ping(ctx context.Context) error
}

func NewHTTPServer(
	cfg *config.Config,
	calendar domain.CalendarService,
	bookings domain.BookingService,
	guestbook domain.GuestbookService,
	identity domain.IdentityService,
	exporter Exporter,
	health HealthChecker,
	logger *zerolog.Logger,
) *HTTPServer {
	srv := &HTTPServer{
		cfg:       cfg,
		calendar:  calendar,
		bookings:  bookings,
		guestbook: guestbook,
		identity:  identity,
		exporter:  exporter,
		health:    health,
		auth:      NewHTTPAuth(&cfg.API),
		logger:    logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/calendar", srv.handleCalendar)
	mux.HandleFunc("/api/v1/bookings", srv.handleBookings)
	mux.HandleFunc("/api/v1/bookings/", srv.handleBookingByID)
	mux.HandleFunc("/api/v1/guestbook", srv.handleGuestbook)
	mux.HandleFunc("/api/v1/guestbook/", srv.handleGuestbookByID)
	mux.HandleFunc("/api/v1/identity", srv.handleIdentity)
	mux.HandleFunc("/api/v1/contacts", srv.handleContacts)
	mux.HandleFunc("/api/v1/admin/days/open", srv.handleOpenDays)
	mux.HandleFunc("/api/v1/admin/days/close", srv.handleCloseDays)
	mux.HandleFunc("/api/v1/admin/stats", srv.handleStats)
	mux.HandleFunc("/api/v1/admin/export", srv.handleExport)
	mux.HandleFunc("/healthz", srv.handleHealth)

	handler := srv.loggingMiddleware(srv.auth.Wrap(mux))

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.API.Port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	return srv
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

// Handler возвращает корневой обработчик, удобно в тестах
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		metrics.IncHTTP(r.URL.Path)
		s.logger.Debug().
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

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
