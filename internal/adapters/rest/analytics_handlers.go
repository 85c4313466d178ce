package rest

import (
	"errors"
	"net/http"

	"github.com/jian131/agent-bds/internal/contextkeys"
	"github.com/jian131/agent-bds/internal/core/domain"
	"github.com/jian131/agent-bds/internal/core/port"
	"github.com/jian131/agent-bds/internal/core/port/usecases_port"
)

// AnalyticsHandler serves the read-only market statistics endpoints.
type AnalyticsHandler struct {
	analyticsUC usecases_port.GetAnalyticsUseCase
}

func NewAnalyticsHandler(analyticsUC usecases_port.GetAnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsUC: analyticsUC}
}

// Summary handles GET /api/v1/analytics. The days parameter bounds the
// scrape-run window, default one week.
func (h *AnalyticsHandler) Summary(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	days := parseInt(r.URL.Query(), "days", 7)
	if days < 1 {
		days = 7
	}

	handlerLogger := logger.WithFields(port.Fields{
		"handler": "AnalyticsSummary",
		"days":    days,
	})

	summary, err := h.analyticsUC.Summary(r.Context(), days)
	if err != nil {
		h.writeAnalyticsError(w, handlerLogger, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, toAnalyticsResponse(summary))
}

// Market handles GET /api/v1/analytics/market.
func (h *AnalyticsHandler) Market(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())
	handlerLogger := logger.WithFields(port.Fields{"handler": "AnalyticsMarket"})

	rows, err := h.analyticsUC.Market(r.Context())
	if err != nil {
		h.writeAnalyticsError(w, handlerLogger, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, toMarketResponses(rows))
}

// Runs handles GET /api/v1/analytics/runs.
func (h *AnalyticsHandler) Runs(w http.ResponseWriter, r *http.Request) {
	logger := contextkeys.LoggerFromContext(r.Context())

	limit := parseInt(r.URL.Query(), "limit", 20)

	handlerLogger := logger.WithFields(port.Fields{
		"handler": "AnalyticsRuns",
		"limit":   limit,
	})

	runs, err := h.analyticsUC.RecentRuns(r.Context(), limit)
	if err != nil {
		h.writeAnalyticsError(w, handlerLogger, err)
		return
	}

	RespondWithJSON(w, http.StatusOK, toScrapeRunResponses(runs))
}

func (h *AnalyticsHandler) writeAnalyticsError(w http.ResponseWriter, logger port.LoggerPort, err error) {
	if errors.Is(err, domain.ErrStorageDisabled) {
		WriteJSONError(w, http.StatusServiceUnavailable, "Analytics requires listing storage")
		return
	}
	logger.Error("Use case failed", err, nil)
	WriteJSONError(w, http.StatusInternalServerError, "Failed to compute analytics")
}
