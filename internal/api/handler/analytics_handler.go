package handler

import (
	"context"
	"net/http"

	"cf_buddy/internal/app/analytics"
	"cf_buddy/internal/common"

	"github.com/go-chi/chi/v5"
)

type AnalyticsService interface {
	Summary(ctx context.Context, handle, tz string) (*analytics.Summary, error)
}

type AnalyticsHandler struct {
	analyticsService AnalyticsService
}

func NewAnalyticsHandler(s AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: s}
}

func (h *AnalyticsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/{handle}", h.getSummary) // GET /api/v1/analytics/tourist?tz=Europe/Moscow
}

func (h *AnalyticsHandler) getSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.analyticsService.Summary(r.Context(), chi.URLParam(r, "handle"), r.URL.Query().Get("tz"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, summary)
}
