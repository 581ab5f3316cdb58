package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/simaogato/etfguard-backend/internal/domain"
	"github.com/simaogato/etfguard-backend/internal/usecase/risk"
)

// RiskHandlers contains HTTP handlers for risk analysis
type RiskHandlers struct {
	service *risk.RiskService
	log     zerolog.Logger
}

// NewRiskHandlers creates a new risk handlers instance
func NewRiskHandlers(service *risk.RiskService, log zerolog.Logger) *RiskHandlers {
	return &RiskHandlers{
		service: service,
		log:     log.With().Str("handler", "risk").Logger(),
	}
}

type riskFactorResponse struct {
	Category string `json:"category"`
	Level    string `json:"level"`
	Message  string `json:"message"`
}

type riskMetricsResponse struct {
	Target                 string               `json:"target"`
	OverallRiskLevel       string               `json:"overallRiskLevel"`
	OverallRiskDisplay     string               `json:"overallRiskDisplay"`
	OverallRiskDescription string               `json:"overallRiskDescription"`
	RiskFactors            []riskFactorResponse `json:"riskFactors"`
	RequiresAction         bool                 `json:"requiresAction"`
	Stable                 bool                 `json:"stable"`
}

func toRiskMetricsResponse(m domain.RiskMetrics) riskMetricsResponse {
	level := m.OverallRiskLevel()
	factors := make([]riskFactorResponse, 0, len(m.Factors()))
	for _, f := range m.Factors() {
		factors = append(factors, riskFactorResponse{
			Category: f.Category,
			Level:    f.Level.String(),
			Message:  f.Message,
		})
	}
	return riskMetricsResponse{
		Target:                 m.Subject(),
		OverallRiskLevel:       level.String(),
		OverallRiskDisplay:     level.DisplayName(),
		OverallRiskDescription: level.Description(),
		RiskFactors:            factors,
		RequiresAction:         m.RequiresAction(),
		Stable:                 m.IsStable(),
	}
}

// HandleAnalyzeAll classifies every supported instrument, in catalog order
// GET /api/risk/etf
func (h *RiskHandlers) HandleAnalyzeAll(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.AnalyzeAll(r.Context())
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	out := make([]riskMetricsResponse, 0, len(results))
	for _, m := range results {
		out = append(out, toRiskMetricsResponse(m))
	}
	writeOK(w, http.StatusOK, "", out)
}

// HandleAnalyzeInstrument classifies one instrument from its latest reading
// GET /api/risk/etf/{symbol}
func (h *RiskHandlers) HandleAnalyzeInstrument(w http.ResponseWriter, r *http.Request) {
	metrics, err := h.service.AnalyzeInstrument(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeOK(w, http.StatusOK, "", toRiskMetricsResponse(metrics))
}

// HandleAnalyzePortfolio folds the risk of every held instrument
// GET /api/risk/portfolio/{userId}
func (h *RiskHandlers) HandleAnalyzePortfolio(w http.ResponseWriter, r *http.Request) {
	userID, err := parseUserID(chi.URLParam(r, "userId"))
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	metrics, err := h.service.AnalyzePortfolio(r.Context(), userID)
	if err != nil {
		writeDomainError(w, h.log, err)
		return
	}

	writeOK(w, http.StatusOK, "", toRiskMetricsResponse(metrics))
}
