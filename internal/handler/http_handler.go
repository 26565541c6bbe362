package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fairwaylabs/swinglab/internal/analyzer"
	"github.com/fairwaylabs/swinglab/internal/features"
	"github.com/fairwaylabs/swinglab/internal/inference"
	"github.com/fairwaylabs/swinglab/internal/pose"
	"github.com/fairwaylabs/swinglab/internal/repository"
	"github.com/fairwaylabs/swinglab/pkg/models"
)

// maxBodyBytes bounds the request body so an oversized frame dump
// cannot exhaust memory.
const maxBodyBytes = 32 << 20 // 32MB

// Broadcaster pushes finished reports to live subscribers.
type Broadcaster interface {
	BroadcastReport(report *models.SwingAnalysisReport)
}

// HTTPHandler serves the swing analysis REST API.
type HTTPHandler struct {
	analyzer  *analyzer.Analyzer
	cache     repository.ReportCache
	store     repository.SwingStore
	hub       Broadcaster
	reportTTL time.Duration
}

// NewHTTPHandler creates the handler with its dependencies.
func NewHTTPHandler(a *analyzer.Analyzer, cache repository.ReportCache, store repository.SwingStore, hub Broadcaster, reportTTL time.Duration) *HTTPHandler {
	return &HTTPHandler{
		analyzer:  a,
		cache:     cache,
		store:     store,
		hub:       hub,
		reportTTL: reportTTL,
	}
}

// RegisterRoutes registers the API routes on the router.
func (h *HTTPHandler) RegisterRoutes(router *mux.Router) {
	api := router.PathPrefix("/api/swings").Subrouter()

	api.HandleFunc("/analyze", h.AnalyzeSwing).Methods("POST")
	api.HandleFunc("", h.ListSwings).Methods("GET")
	api.HandleFunc("/{id}", h.GetSwing).Methods("GET")
	api.HandleFunc("/{id}/save", h.SaveSwing).Methods("POST")
	api.HandleFunc("/{id}", h.DeleteSwing).Methods("DELETE")
}

// AnalyzeSwing runs the analysis pipeline on an uploaded pose sequence
// @Summary Analyze a swing
// @Description Runs camera normalization, feature extraction, classification and insight generation on a pose sequence
// @Tags Swing Analysis
// @Accept json
// @Produce json
// @Param request body models.AnalyzeRequest true "Pose sequence to analyze"
// @Success 200 {object} models.SwingAnalysisReport "Analysis report"
// @Failure 400 {object} models.ErrorResponse "Invalid or degenerate input"
// @Failure 500 {object} models.ErrorResponse "Internal error"
// @Failure 504 {object} models.ErrorResponse "Analysis budget exceeded"
// @Router /api/swings/analyze [post]
func (h *HTTPHandler) AnalyzeSwing(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req models.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body", err.Error())
		return
	}

	report, err := h.analyzer.Analyze(r.Context(), &req)
	if err != nil {
		h.respondAnalysisError(w, err)
		return
	}

	if err := h.cache.SetReport(r.Context(), report, h.reportTTL); err != nil {
		log.Printf("[WARN] Failed to cache report %s: %v", report.AnalysisID, err)
	}
	if h.hub != nil {
		h.hub.BroadcastReport(report)
	}

	respondJSON(w, http.StatusOK, report)
}

// GetSwing returns a cached or saved report by analysis id
// @Summary Get a swing report
// @Description Looks up a report in the cache first, then among saved swings
// @Tags Swing Analysis
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} models.SwingAnalysisReport "Report"
// @Failure 404 {object} models.ErrorResponse "Not found or expired"
// @Failure 500 {object} models.ErrorResponse "Storage error"
// @Router /api/swings/{id} [get]
func (h *HTTPHandler) GetSwing(w http.ResponseWriter, r *http.Request) {
	analysisID := mux.Vars(r)["id"]

	report, err := h.cache.GetReport(r.Context(), analysisID)
	if err == nil {
		respondJSON(w, http.StatusOK, report)
		return
	}
	if !errors.Is(err, models.ErrReportNotFound) {
		log.Printf("[ERROR] Failed to read report cache for %s: %v", analysisID, err)
	}

	swing, err := h.store.GetSwing(r.Context(), analysisID)
	if err != nil {
		if errors.Is(err, models.ErrReportNotFound) {
			respondError(w, http.StatusNotFound, "Report not found", "")
			return
		}
		log.Printf("[ERROR] Failed to read saved swing %s: %v", analysisID, err)
		respondError(w, http.StatusInternalServerError, "Failed to load report", "")
		return
	}
	respondJSON(w, http.StatusOK, swing.Report)
}

// SaveSwing persists a cached report
// @Summary Save a swing
// @Description Moves a cached report into permanent storage with optional notes
// @Tags Swing Analysis
// @Accept json
// @Produce json
// @Param id path string true "Analysis ID"
// @Param request body models.SaveRequest false "Save metadata"
// @Success 200 {object} models.SavedSwing "Saved swing"
// @Failure 404 {object} models.ErrorResponse "Report not found or expired"
// @Failure 500 {object} models.ErrorResponse "Storage error"
// @Router /api/swings/{id}/save [post]
func (h *HTTPHandler) SaveSwing(w http.ResponseWriter, r *http.Request) {
	analysisID := mux.Vars(r)["id"]

	var req models.SaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req = models.SaveRequest{}
	}

	report, err := h.cache.GetReport(r.Context(), analysisID)
	if err != nil {
		if errors.Is(err, models.ErrReportNotFound) {
			respondError(w, http.StatusNotFound, "Report not found or expired", "")
			return
		}
		log.Printf("[ERROR] Failed to read report cache for %s: %v", analysisID, err)
		respondError(w, http.StatusInternalServerError, "Failed to load report", "")
		return
	}

	swing := &models.SavedSwing{
		AnalysisID: report.AnalysisID,
		SessionID:  report.SessionID,
		Report:     *report,
		Notes:      req.Notes,
		SavedAt:    time.Now().UTC(),
	}

	if err := h.store.SaveSwing(r.Context(), swing); err != nil {
		log.Printf("[ERROR] Failed to save swing %s: %v", analysisID, err)
		respondError(w, http.StatusInternalServerError, "Failed to save swing", "")
		return
	}

	respondJSON(w, http.StatusOK, swing)
}

// ListSwings lists saved swings
// @Summary List saved swings
// @Description Returns saved swings ordered by save time, newest first
// @Tags Swing Analysis
// @Produce json
// @Param limit query int false "Page size (default 50)"
// @Param offset query int false "Page offset (default 0)"
// @Success 200 {object} map[string]interface{} "Saved swings"
// @Failure 500 {object} models.ErrorResponse "Storage error"
// @Router /api/swings [get]
func (h *HTTPHandler) ListSwings(w http.ResponseWriter, r *http.Request) {
	limit := getQueryInt(r, "limit", 50)
	offset := getQueryInt(r, "offset", 0)

	swings, err := h.store.ListSwings(r.Context(), limit, offset)
	if err != nil {
		log.Printf("[ERROR] Failed to list swings: %v", err)
		respondError(w, http.StatusInternalServerError, "Failed to list swings", "")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"swings": swings,
		"limit":  limit,
		"offset": offset,
		"count":  len(swings),
	})
}

// DeleteSwing removes a swing from cache and storage
// @Summary Delete a swing
// @Description Deletes the cached report and the saved swing if present
// @Tags Swing Analysis
// @Produce json
// @Param id path string true "Analysis ID"
// @Success 200 {object} map[string]interface{} "Deletion result"
// @Failure 404 {object} models.ErrorResponse "Not found"
// @Router /api/swings/{id} [delete]
func (h *HTTPHandler) DeleteSwing(w http.ResponseWriter, r *http.Request) {
	analysisID := mux.Vars(r)["id"]

	cacheErr := h.cache.DeleteReport(r.Context(), analysisID)
	storeErr := h.store.DeleteSwing(r.Context(), analysisID)

	if cacheErr != nil && storeErr != nil {
		if errors.Is(storeErr, models.ErrReportNotFound) {
			respondError(w, http.StatusNotFound, "Report not found", "")
			return
		}
		log.Printf("[ERROR] Failed to delete swing %s: cache=%v store=%v", analysisID, cacheErr, storeErr)
		respondError(w, http.StatusInternalServerError, "Failed to delete swing", "")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message":     "Swing deleted successfully",
		"analysis_id": analysisID,
	})
}

// respondAnalysisError maps pipeline errors to HTTP statuses. Client
// input problems are 4xx, internal invariant violations are 5xx, and a
// blown budget is 504.
func (h *HTTPHandler) respondAnalysisError(w http.ResponseWriter, err error) {
	var (
		valErr     *pose.ValidationError
		missingErr *pose.MissingLandmarkError
		degenErr   *features.DegenerateError
		unclsErr   *inference.UnclassifiableError
	)

	switch {
	case errors.Is(err, analyzer.ErrBudgetExceeded):
		respondError(w, http.StatusGatewayTimeout, "Analysis budget exceeded", err.Error())
	case errors.As(err, &valErr):
		respondError(w, http.StatusBadRequest, "Invalid pose sequence", err.Error())
	case errors.As(err, &missingErr):
		respondError(w, http.StatusBadRequest, "Missing landmark", err.Error())
	case errors.As(err, &degenErr):
		respondError(w, http.StatusBadRequest, "Degenerate swing geometry", err.Error())
	case errors.As(err, &unclsErr):
		respondError(w, http.StatusBadRequest, "Unclassifiable feature vector", err.Error())
	default:
		log.Printf("[ERROR] Analysis failed: %v", err)
		respondError(w, http.StatusInternalServerError, "Analysis failed", "")
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[ERROR] Failed to encode JSON response: %v", err)
	}
}

func respondError(w http.ResponseWriter, status int, message, details string) {
	respondJSON(w, status, models.ErrorResponse{
		Error:   message,
		Details: details,
	})
}

func getQueryInt(r *http.Request, key string, defaultValue int) int {
	valueStr := r.URL.Query().Get(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value < 0 {
		return defaultValue
	}
	return value
}
