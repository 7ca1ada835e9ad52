package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/napolitain/citysim/internal/metrics"
)

// Server is the HTTP surface over the session manager
type Server struct {
	cfg     Config
	lg      *slog.Logger
	mgr     *Manager
	metrics *metrics.Metrics
	http    *http.Server
}

// New builds the server. accessLog receives Apache-style request lines;
// nil disables them.
func New(cfg Config, lg *slog.Logger, mgr *Manager, m *metrics.Metrics, accessLog io.Writer) *Server {
	s := &Server{cfg: cfg, lg: lg, mgr: mgr, metrics: m}

	var h http.Handler = s.Router()
	if accessLog != nil {
		h = handlers.LoggingHandler(accessLog, h)
	}
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)(h)

	s.http = &http.Server{
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return s
}

// Router returns the route table without middleware
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	s.handle(r, "/health", "health", s.getHealth).Methods(http.MethodGet)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)
	}

	s.handle(r, "/catalog", "catalog", s.getCatalog).Methods(http.MethodGet)
	s.handle(r, "/cities", "cities_create", s.postCity).Methods(http.MethodPost)
	s.handle(r, "/cities", "cities_list", s.listCities).Methods(http.MethodGet)
	s.handle(r, "/cities/{id}", "city_get", s.getCity).Methods(http.MethodGet)
	s.handle(r, "/cities/{id}", "city_delete", s.deleteCity).Methods(http.MethodDelete)
	s.handle(r, "/cities/{id}/buildings", "building_place", s.postBuilding).Methods(http.MethodPost)
	s.handle(r, "/cities/{id}/buildings/{x:-?[0-9]+}/{y:-?[0-9]+}", "building_bulldoze", s.deleteBuilding).Methods(http.MethodDelete)
	s.handle(r, "/cities/{id}/buildings/{x:-?[0-9]+}/{y:-?[0-9]+}/repair", "building_repair", s.postRepair).Methods(http.MethodPost)
	s.handle(r, "/cities/{id}/buildings/{x:-?[0-9]+}/{y:-?[0-9]+}/stabilize", "building_stabilize", s.postStabilize).Methods(http.MethodPost)
	s.handle(r, "/cities/{id}/prompts/{pid}", "prompt_resolve", s.postPrompt).Methods(http.MethodPost)
	s.handle(r, "/cities/{id}/tick", "tick", s.postTick).Methods(http.MethodPost)
	s.handle(r, "/cities/{id}/pause", "pause", s.postPause).Methods(http.MethodPost)
	s.handle(r, "/cities/{id}/events", "journal", s.getEvents).Methods(http.MethodGet)
	r.HandleFunc("/cities/{id}/feed", s.getFeed).Methods(http.MethodGet)

	return r
}

func (s *Server) handle(r *mux.Router, path, name string, fn http.HandlerFunc) *mux.Route {
	if s.metrics == nil {
		return r.HandleFunc(path, fn)
	}
	return r.Handle(path, s.metrics.WrapHandler(name, fn))
}

// Start listens until Stop is called
func (s *Server) Start() error {
	s.lg.Info("http server starting", "addr", s.cfg.Addr, "tick", s.cfg.TickInterval)
	return s.http.ListenAndServe()
}

// Stop shuts the listener down and closes every session
func (s *Server) Stop(ctx context.Context) error {
	s.lg.Info("http server stopping")
	err := s.http.Shutdown(ctx)
	s.mgr.CloseAll()
	return err
}
