// Package server exposes the pipeline's output structures to rendering
// collaborators over a JSON HTTP API.
package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/kpi-pulse/internal/analyze"
	"github.com/sells-group/kpi-pulse/internal/orgtree"
	"github.com/sells-group/kpi-pulse/internal/snapshot"
)

// Server serves dashboard data from a snapshot cache.
type Server struct {
	cache *snapshot.Cache
}

// New creates a Server.
func New(cache *snapshot.Cache) *Server {
	return &Server{cache: cache}
}

// Router builds the chi router for all dashboard endpoints.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Get("/table", s.handleTable)
		r.Get("/orgs", s.handleOrgs)
		r.Get("/orgs/{id}/analysis", s.handleAnalysis)
		r.Get("/orgs/{id}/trend", s.handleTrend)
		r.Get("/tree", s.handleTree)
	})

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// current fetches the snapshot, answering 503 when no data can be served.
func (s *Server) current(w http.ResponseWriter, r *http.Request) (*snapshot.Snapshot, bool) {
	snap, err := s.cache.Current(r.Context())
	if err != nil {
		zap.L().Error("no snapshot available", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "source data unavailable")
		return nil, false
	}
	return snap, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"snapshot_id":  snap.ID,
		"loaded_at":    snap.LoadedAt.Format(time.RFC3339),
		"latest_month": snap.LatestMonth,
	})
}

func (s *Server) handleTable(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"latest_month": snap.LatestMonth,
		"rows":         snap.Table,
	})
}

func (s *Server) handleOrgs(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, orgtree.Ordered(snap.Orgs))
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w, r)
	if !ok {
		return
	}
	tree, ok := orgtree.BuildTree(snap.Orgs)
	if !ok {
		writeError(w, http.StatusNotFound, "no root organization")
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

// orgFromPath resolves the {id} path parameter against the snapshot.
func (s *Server) orgFromPath(w http.ResponseWriter, r *http.Request, snap *snapshot.Snapshot) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid organization id")
		return 0, false
	}
	if _, found := snap.OrgByID(id); !found {
		writeError(w, http.StatusNotFound, "unknown organization")
		return 0, false
	}
	return id, true
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w, r)
	if !ok {
		return
	}
	id, ok := s.orgFromPath(w, r, snap)
	if !ok {
		return
	}
	result := analyze.AnalyzeSnapshot(snap.FactsForOrg(id, snap.LatestMonth))
	writeJSON(w, http.StatusOK, map[string]any{
		"org_id":       id,
		"latest_month": snap.LatestMonth,
		"analysis":     result,
	})
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	snap, ok := s.current(w, r)
	if !ok {
		return
	}
	id, ok := s.orgFromPath(w, r, snap)
	if !ok {
		return
	}
	result := analyze.AnalyzeTrend(snap.FactsForOrg(id, 0))
	writeJSON(w, http.StatusOK, map[string]any{
		"org_id": id,
		"trend":  result,
	})
}
