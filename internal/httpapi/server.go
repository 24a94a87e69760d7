package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"cinelog/internal/catalog"
	"cinelog/internal/logging"
	"cinelog/internal/query"
	"cinelog/internal/services"
)

// Browser is the slice of the query orchestrator the server consumes.
type Browser interface {
	Browse(ctx context.Context, params query.Params) (*query.Result, error)
}

// Server serves the catalog listing API.
type Server struct {
	bind    string
	logger  *slog.Logger
	browser Browser
	router  *mux.Router

	listener net.Listener
	server   *http.Server
}

// New creates a Server bound to the given address.
func New(bind string, browser Browser, logger *slog.Logger) *Server {
	s := &Server{
		bind:    strings.TrimSpace(bind),
		logger:  logging.NewComponentLogger(logger, "httpapi"),
		browser: browser,
	}

	router := mux.NewRouter()
	router.Use(s.requestIDMiddleware)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/movies", s.handleList(catalog.KindMovie)).Methods(http.MethodGet)
	router.HandleFunc("/api/v1/series", s.handleList(catalog.KindSeries)).Methods(http.MethodGet)
	s.router = router

	s.server = &http.Server{
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Handler exposes the router for in-process use.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins serving in the background and shuts down when ctx ends.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("api bind address is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.logger.Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

// Stop shuts the server down.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

// Addr reports the bound listen address, empty before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get("X-Request-ID"))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r.WithContext(services.WithRequestID(r.Context(), id)))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listResponse is the JSON envelope for listing endpoints.
type listResponse struct {
	Items []*catalog.Item `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
}

func (s *Server) handleList(kind catalog.MediaKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := listParams(kind, r)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := s.browser.Browse(r.Context(), params)
		if err != nil {
			logging.WithContext(r.Context(), s.logger).Error("listing failed",
				logging.String(logging.FieldKind, string(kind)),
				logging.Error(err))
			s.writeError(w, statusForError(err), "listing failed")
			return
		}

		items := result.Items
		if items == nil {
			items = []*catalog.Item{}
		}
		s.writeJSON(w, http.StatusOK, listResponse{
			Items: items,
			Total: result.Total,
			Page:  result.Page,
		})
	}
}

func listParams(kind catalog.MediaKind, r *http.Request) (query.Params, error) {
	values := r.URL.Query()
	params := query.Params{
		Kind:  kind,
		Query: strings.TrimSpace(values.Get("query")),
		Page:  1,
	}

	if raw := values.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return params, fmt.Errorf("invalid page %q", raw)
		}
		params.Page = page
	}

	if raw := values.Get("categories"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil || id <= 0 {
				return params, fmt.Errorf("invalid category id %q", part)
			}
			params.CategoryIDs = append(params.CategoryIDs, id)
		}
	}

	params.Relations = catalog.RelationOptions{
		Categories: boolParam(values.Get("with_categories")),
		Platforms:  boolParam(values.Get("with_platforms")),
		Cast:       boolParam(values.Get("with_cast")),
		Seasons:    boolParam(values.Get("with_seasons")),
	}
	return params, nil
}

func boolParam(raw string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(raw))
	return err == nil && value
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrProvider):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
