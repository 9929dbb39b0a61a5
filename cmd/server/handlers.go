package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/brunobiangulo/coauthornet"
	"github.com/brunobiangulo/coauthornet/profile"
)

type handler struct {
	engine coauthornet.Engine
}

func newHandler(e coauthornet.Engine) *handler {
	return &handler{engine: e}
}

func (h *handler) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /analyze", h.handleAnalyze)
	mux.HandleFunc("GET /profiles", h.handleListProfiles)
	mux.HandleFunc("GET /profiles/{id}/similar", h.handleSimilar)
	mux.HandleFunc("GET /graph/neighborhood", h.handleNeighborhood)
	mux.HandleFunc("GET /health", h.handleHealth)
	return mux
}

// POST /analyze
// Fetches the given scholar IDs (or takes inline records) and returns the
// combined network, its centrality scores and the shared connections.
func (h *handler) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Minute)
	defer cancel()

	var req struct {
		IDs     []string         `json:"ids"`
		Records []profile.Record `json:"records,omitempty"`
		Render  bool             `json:"render,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.IDs) == 0 && len(req.Records) == 0 {
		writeError(w, http.StatusBadRequest, "ids or records is required")
		return
	}

	records := req.Records
	if len(records) > 0 {
		if err := coauthornet.ValidateRecords(records); err != nil {
			writeEngineError(w, "invalid records", err)
			return
		}
		if err := h.engine.ImportProfiles(ctx, records); err != nil {
			writeEngineError(w, "failed to store profiles", err)
			return
		}
	}
	if len(req.IDs) > 0 {
		fetched, err := h.engine.FetchProfiles(ctx, req.IDs)
		if err != nil {
			writeEngineError(w, "fetch failed", err)
			return
		}
		records = append(records, fetched...)
	}

	a, err := h.engine.Analyze(ctx, records)
	if err != nil {
		writeEngineError(w, "analysis failed", err)
		return
	}

	resp := map[string]any{
		"run_id":      a.RunID,
		"profiles":    len(a.Profiles),
		"combined":    a.Combined,
		"pairs":       a.Pairs,
		"communities": a.Communities,
	}
	if len(a.Variants) > 0 {
		resp["name_variants"] = a.Variants
	}
	if req.Render {
		files, err := h.engine.Render(ctx, a)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "render failed")
			slog.Error("render error", "run", a.RunID, "error", err)
			return
		}
		resp["files"] = files
	}
	writeJSON(w, http.StatusOK, resp)
}

// GET /profiles
func (h *handler) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.engine.ListProfiles(r.Context())
	if err != nil {
		writeEngineError(w, "failed to list profiles", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profiles": profiles,
	})
}

// GET /profiles/{id}/similar?k=5
func (h *handler) handleSimilar(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	k := 5
	if v := r.URL.Query().Get("k"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			writeError(w, http.StatusBadRequest, "k must be between 1 and 100")
			return
		}
		k = n
	}

	similar, err := h.engine.SimilarProfiles(r.Context(), id, k)
	if err != nil {
		writeEngineError(w, "similarity search failed", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scholar_id": id,
		"similar":    similar,
	})
}

// GET /graph/neighborhood?ids=a,b&name=Jane+Doe&depth=1
func (h *handler) handleNeighborhood(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	depth := 1
	if v := q.Get("depth"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 || n > 5 {
			writeError(w, http.StatusBadRequest, "depth must be between 0 and 5")
			return
		}
		depth = n
	}

	g, err := h.engine.Neighborhood(r.Context(), splitList(q.Get("ids")), q["name"], depth)
	if err != nil {
		writeEngineError(w, "neighborhood failed", err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// GET /health
func (h *handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func splitList(s string) []string {
	var out []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// writeEngineError maps engine sentinel errors to HTTP statuses.
func writeEngineError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, coauthornet.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, coauthornet.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "profile not found")
	case errors.Is(err, coauthornet.ErrNoProfiles):
		writeError(w, http.StatusUnprocessableEntity, "no profiles to analyze")
	case errors.Is(err, coauthornet.ErrFetchFailed):
		writeError(w, http.StatusBadGateway, "fetching profiles failed")
	case errors.Is(err, coauthornet.ErrStoreClosed):
		writeError(w, http.StatusServiceUnavailable, "service shutting down")
	default:
		writeError(w, http.StatusInternalServerError, msg)
	}
	slog.Error("request failed", "msg", msg, "error", err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
