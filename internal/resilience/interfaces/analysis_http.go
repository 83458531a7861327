// Package interfaces exposes the analysis service over HTTP and renders
// report exports.
package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"microgrid-resilience/internal/observability/metrics"
	"microgrid-resilience/internal/resilience/application"
	resilience "microgrid-resilience/internal/resilience/domain"
)

const analysisRoute = "/api/v1/resilience/analyses"

// AnalysisHandler handles outage-coverage analysis APIs.
type AnalysisHandler struct {
	service  *application.Service
	defaults application.ScenarioConfig
}

// HandlerOption configures the handler.
type HandlerOption func(*AnalysisHandler)

// WithDefaultScenario sets the scenario applied to requests that omit one.
func WithDefaultScenario(cfg application.ScenarioConfig) HandlerOption {
	return func(h *AnalysisHandler) { h.defaults = cfg }
}

// NewAnalysisHandler constructs a handler.
func NewAnalysisHandler(service *application.Service, opts ...HandlerOption) (*AnalysisHandler, error) {
	if service == nil {
		return nil, errors.New("analysis handler: nil service")
	}
	h := &AnalysisHandler{service: service, defaults: application.DefaultScenario()}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ServeHTTP handles analysis routes under /api/v1/resilience/analyses.
func (h *AnalysisHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path
	if path == analysisRoute {
		switch r.Method {
		case http.MethodPost:
			h.handleRun(w, r)
		case http.MethodGet:
			h.handleList(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
		return
	}
	if strings.HasPrefix(path, analysisRoute+"/") {
		rest := strings.TrimPrefix(path, analysisRoute+"/")
		h.handleByID(w, r, rest)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

// analysisRequest mirrors application.AnalysisInput with a pointer scenario
// so an omitted scenario block is distinguishable from an explicit one.
type analysisRequest struct {
	Scenario         *application.ScenarioConfig    `json:"scenario"`
	CriticalLoadKW   resilience.Series              `json:"critical_load_kw"`
	PVMaxKW          resilience.Series              `json:"pv_max_kw"`
	SOETrajectoryKWh resilience.Series              `json:"soe_trajectory_kwh"`
	ESSUnits         []resilience.ESSUnitSpec       `json:"ess_units"`
	GeneratorUnits   []resilience.GeneratorUnitSpec `json:"generator_units"`
}

func (h *AnalysisHandler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req analysisRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	input := application.AnalysisInput{
		Scenario:         h.defaults,
		CriticalLoadKW:   req.CriticalLoadKW,
		PVMaxKW:          req.PVMaxKW,
		SOETrajectoryKWh: req.SOETrajectoryKWh,
		ESSUnits:         req.ESSUnits,
		GeneratorUnits:   req.GeneratorUnits,
	}
	if req.Scenario != nil {
		input.Scenario = *req.Scenario
	}
	result, err := h.service.Run(r.Context(), input)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result)
}

func (h *AnalysisHandler) handleList(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.List(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if summaries == nil {
		summaries = []application.AnalysisSummary{}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summaries)
}

func (h *AnalysisHandler) handleByID(w http.ResponseWriter, r *http.Request, rest string) {
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	parts := strings.Split(rest, "/")
	id := parts[0]
	if len(parts) == 1 && r.Method == http.MethodGet {
		h.handleGet(w, r, id)
		return
	}
	if len(parts) == 2 && r.Method == http.MethodGet {
		switch parts[1] {
		case "export.pdf":
			h.handleExportPDF(w, r, id)
			return
		case "export.xlsx":
			h.handleExportXLSX(w, r, id)
			return
		}
	}
	w.WriteHeader(http.StatusNotFound)
}

func (h *AnalysisHandler) handleGet(w http.ResponseWriter, r *http.Request, id string) {
	result, err := h.service.Get(r.Context(), id)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

func (h *AnalysisHandler) handleExportPDF(w http.ResponseWriter, r *http.Request, id string) {
	start := time.Now()
	status := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("pdf", status, time.Since(start))
	}()

	result, err := h.service.Get(r.Context(), id)
	if err != nil {
		status = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	data, err := BuildAnalysisPDF(result)
	if err != nil {
		status = metrics.ResultError
		http.Error(w, "export pdf error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *AnalysisHandler) handleExportXLSX(w http.ResponseWriter, r *http.Request, id string) {
	start := time.Now()
	status := metrics.ResultSuccess
	defer func() {
		metrics.ObserveExport("xlsx", status, time.Since(start))
	}()

	result, err := h.service.Get(r.Context(), id)
	if err != nil {
		status = metrics.ResultError
		respondServiceError(w, err)
		return
	}
	data, err := BuildAnalysisXLSX(result)
	if err != nil {
		status = metrics.ResultError
		http.Error(w, "export xlsx error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func respondServiceError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}
	switch {
	case errors.Is(err, application.ErrAnalysisNotFound):
		http.Error(w, "not found", http.StatusNotFound)
	case resilience.IsInvalidInput(err):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case resilience.IsConfiguration(err):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
