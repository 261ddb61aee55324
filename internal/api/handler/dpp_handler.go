package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"cf_buddy/internal/app/service"
	"cf_buddy/internal/common"
	"cf_buddy/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

// DPPService is the part of *service.DPPService the handler uses.
type DPPService interface {
	GenerateDailySet(ctx context.Context, req service.GenerateRequest) (*service.GenerateResult, error)
	UpsertDailyRecord(ctx context.Context, req service.UpsertRequest) (*service.RecordView, error)
	GetDailyRecord(ctx context.Context, userID, date string) (*service.RecordView, error)
	GetCalendar(ctx context.Context, userID string) ([]model.CalendarEntry, error)
	SyncSolvedState(ctx context.Context, userID, date string) (*service.RecordView, error)
}

type DPPHandler struct {
	dppService DPPService
}

func NewDPPHandler(s DPPService) *DPPHandler {
	return &DPPHandler{dppService: s}
}

func (h *DPPHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.upsertRecord)                   // POST /api/v1/dpp
	r.Post("/generate", h.generate)               // POST /api/v1/dpp/generate
	r.Get("/calendar/{userID}", h.getCalendar)    // GET /api/v1/dpp/calendar/u1
	r.Get("/{userID}/{date}", h.getRecord)        // GET /api/v1/dpp/u1/2024-05-01
	r.Post("/{userID}/{date}/sync", h.syncSolved) // POST /api/v1/dpp/u1/2024-05-01/sync
}

func (h *DPPHandler) generate(w http.ResponseWriter, r *http.Request) {
	var req service.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	res, err := h.dppService.GenerateDailySet(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	status := http.StatusOK
	if res.Generated {
		status = http.StatusCreated
	}
	common.RespondWithJSON(w, status, res)
}

func (h *DPPHandler) upsertRecord(w http.ResponseWriter, r *http.Request) {
	var req service.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request: "+err.Error())
		return
	}

	rec, err := h.dppService.UpsertDailyRecord(r.Context(), req)
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rec)
}

func (h *DPPHandler) getRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := h.dppService.GetDailyRecord(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "date"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rec)
}

func (h *DPPHandler) getCalendar(w http.ResponseWriter, r *http.Request) {
	entries, err := h.dppService.GetCalendar(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *DPPHandler) syncSolved(w http.ResponseWriter, r *http.Request) {
	rec, err := h.dppService.SyncSolvedState(r.Context(), chi.URLParam(r, "userID"), chi.URLParam(r, "date"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, rec)
}
