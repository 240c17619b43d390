// Package http is the JSON surface consumed by the UI collaborator.
package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/GregZOL/API-France-March--BOAMP/internal/boamp"
	"github.com/GregZOL/API-France-March--BOAMP/internal/export"
	"github.com/GregZOL/API-France-March--BOAMP/internal/pagination"
	"github.com/GregZOL/API-France-March--BOAMP/internal/port"
)

// Server handles the HTTP routes.
type Server struct {
	svc      port.SearchService
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewServer builds the HTTP adapter over the search service.
func NewServer(svc port.SearchService, logger *zap.Logger) *Server {
	return &Server{
		svc:      svc,
		logger:   logger,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Register wires the routes onto the router.
func (s *Server) Register(r *mux.Router) {
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/search", s.handleSearch).Methods(http.MethodGet)
	r.HandleFunc("/api/explore-demo", s.handleBrowse).Methods(http.MethodGet)
	r.HandleFunc("/api/cpv", s.handleCPV).Methods(http.MethodGet)
	r.HandleFunc("/api/meta", s.handleMeta).Methods(http.MethodGet)
	r.HandleFunc("/api/schema/refresh", s.handleSchemaRefresh).Methods(http.MethodPost)
	r.HandleFunc("/export/csv", s.handleExportCSV).Methods(http.MethodPost)
	r.HandleFunc("/export/excel", s.handleExportExcel).Methods(http.MethodPost)
	r.HandleFunc("/export/ics", s.handleExportICS).Methods(http.MethodPost)
}

// searchResponse is the page envelope plus pagination bookkeeping for the UI.
type searchResponse struct {
	Items      []port.NormalizedRecord `json:"items"`
	Total      *int64                  `json:"total"`
	Page       int                     `json:"page"`
	PageSize   int                     `json:"page_size"`
	TotalPages int                     `json:"total_pages"`
	URL        string                  `json:"debug_url"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	filters := ParseFilterSet(r.URL.Query(), s.now())

	if err := s.validate.Struct(filters); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid filters: " + err.Error()})
		return
	}

	if r.URL.Query().Get("refreshSchema") == "1" {
		// Refresh errors surface during the search below if the catalog
		// stays unreachable.
		if err := s.svc.RefreshSchema(r.Context()); err != nil {
			s.logger.Warn("schema refresh failed", zap.Error(err))
		}
	}

	page, err := s.svc.Search(r.Context(), filters)
	if err != nil {
		s.writeSearchError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Items:      page.Items,
		Total:      page.Total,
		Page:       filters.Page,
		PageSize:   filters.PageSize,
		TotalPages: pagination.TotalPages(page.Total, filters.PageSize, len(page.Items), filters.Page),
		URL:        page.URL,
	})
}

func (s *Server) handleBrowse(w http.ResponseWriter, r *http.Request) {
	limit := pagination.ClampPageSize(parseIntDefault(r.URL.Query().Get("limit"), 20))

	page, err := s.svc.Browse(r.Context(), limit)
	if err != nil {
		s.writeSearchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCPV(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"cpvs": boamp.CPVCatalog})
}

// handleMeta exposes the fixed UI reference data: keyword bucket names and
// the curated department list.
func (s *Server) handleMeta(w http.ResponseWriter, _ *http.Request) {
	buckets := make([]string, 0, len(boamp.KeywordBuckets))
	for name := range boamp.KeywordBuckets {
		buckets = append(buckets, name)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"keyword_buckets": boamp.KeywordBuckets,
		"bucket_names":    buckets,
		"departements":    boamp.IDFDepartments,
	})
}

func (s *Server) handleSchemaRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RefreshSchema(r.Context()); err != nil {
		s.writeSearchError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type exportRequest struct {
	Items []export.Item `json:"items"`
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	s.exportCSV(w, r, "text/csv", `attachment; filename="avis_selection.csv"`)
}

// handleExportExcel serves the same CSV under the Excel mimetype so the file
// opens directly in Excel.
func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	s.exportCSV(w, r, "application/vnd.ms-excel", `attachment; filename="avis_selection.xls"`)
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request, mimetype, disposition string) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	data, err := export.CSV(req.Items)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	w.Header().Set("Content-Type", mimetype)
	w.Header().Set("Content-Disposition", disposition)
	_, _ = w.Write(data)
}

func (s *Server) handleExportICS(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}
	w.Header().Set("Content-Type", "text/calendar")
	w.Header().Set("Content-Disposition", `attachment; filename="avis_selection.ics"`)
	_, _ = w.Write(export.ICS(req.Items))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeSearchError maps the error taxonomy onto the user-visible failure:
// provider errors carry their status code, everything else is reported as a
// network/other failure. Client errors never reach this point, the fallback
// state machine absorbs them.
func (s *Server) writeSearchError(w http.ResponseWriter, err error) {
	var provErr *port.ProviderError
	if errors.As(err, &provErr) {
		s.logger.Error("provider error", zap.Int("status", provErr.StatusCode), zap.String("url", provErr.URL))
		writeJSON(w, http.StatusBadGateway, map[string]string{
			"error": fmt.Sprintf("provider error (status %d)", provErr.StatusCode),
		})
		return
	}
	s.logger.Error("search failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "network error: " + err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
