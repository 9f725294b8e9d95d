// Package server exposes the pipeline output over HTTP for the map
// frontend: grouped locations as JSON or GeoJSON, plus the failed
// geocoding list for review.
package server

import (
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/foodwatch-nsw/offences-cli/internal/dataset"
	"github.com/foodwatch-nsw/offences-cli/internal/export"
	"github.com/foodwatch-nsw/offences-cli/internal/model"
)

// Server serves the published dataset files. Handlers read the files on
// each request, so a pipeline run that rewrites them is picked up
// without a restart.
type Server struct {
	groupsFile  string
	failedFile  string
	frontendDir string
}

// New creates a server over the given dataset files. frontendDir may be
// empty to disable static file serving.
func New(groupsFile, failedFile, frontendDir string) *Server {
	return &Server{
		groupsFile:  groupsFile,
		failedFile:  failedFile,
		frontendDir: frontendDir,
	}
}

// Router builds the HTTP routing table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
	}))

	r.Get("/healthz", s.handleHealth)
	r.Get("/api/locations", s.handleLocations)
	r.Get("/api/locations/geojson", s.handleGeoJSON)
	r.Get("/api/failed", s.handleFailed)

	if s.frontendDir != "" {
		r.Handle("/*", http.FileServer(http.Dir(s.frontendDir)))
	}
	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleLocations(w http.ResponseWriter, _ *http.Request) {
	groups, err := dataset.LoadGroups(s.groupsFile)
	if err != nil {
		if os.IsNotExist(eris.Cause(err)) {
			writeJSON(w, http.StatusOK, []any{})
			return
		}
		serverError(w, "load groups", err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (s *Server) handleGeoJSON(w http.ResponseWriter, _ *http.Request) {
	groups, err := dataset.LoadGroups(s.groupsFile)
	if err != nil && !os.IsNotExist(eris.Cause(err)) {
		serverError(w, "load groups", err)
		return
	}
	writeJSON(w, http.StatusOK, export.GroupsFeatureCollection(groups))
}

func (s *Server) handleFailed(w http.ResponseWriter, _ *http.Request) {
	failed, err := dataset.LoadFailed(s.failedFile)
	if err != nil {
		if os.IsNotExist(eris.Cause(err)) {
			writeJSON(w, http.StatusOK, []any{})
			return
		}
		serverError(w, "load failed list", err)
		return
	}
	if failed == nil {
		failed = []model.FailedGeocode{}
	}
	writeJSON(w, http.StatusOK, failed)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("write response", zap.Error(err))
	}
}

func serverError(w http.ResponseWriter, action string, err error) {
	zap.L().Error(action, zap.Error(err))
	http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
}

// requestLogger logs each request with method, path, status and timing.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
