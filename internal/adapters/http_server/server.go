package httpserver

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"hbnb_web/internal/domain"
)

type Server struct{ mux *chi.Mux }

// New builds the router with the shared middleware stack. Sessions are
// attached per request through the given factory.
func New(timeout time.Duration, sessions func(http.Handler) http.Handler) *Server {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	m := chi.NewRouter()

	// middlewares must be registered before any route
	m.Use(chimw.RealIP)
	m.Use(chimw.RequestID)
	m.Use(chimw.Recoverer)
	m.Use(Timeout(timeout))
	m.Use(Metrics)
	m.Use(Logger(log.Logger))
	if sessions != nil {
		m.Use(sessions)
	}

	return &Server{mux: m}
}

func (s *Server) Mux() http.Handler { return s.mux }

// Internal is the side-listener router: metrics and the workflow journal.
// It is never mounted on the public pages.
func Internal(metrics http.Handler, journal domain.Journal) http.Handler {
	m := chi.NewRouter()
	m.Use(chimw.Recoverer)
	if metrics != nil {
		m.Handle("/metrics", metrics)
	}
	h := &Handlers{Journal: journal}
	m.Get("/internal/workflows/incomplete", h.listIncomplete)
	return m
}

// Mount attaches any extra handler (e.g., /metrics) to the router.
func (s *Server) Mount(path string, h http.Handler) {
	s.mux.Handle(path, h)
}
