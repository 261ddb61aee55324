package handler

import (
	"net/http"

	"cf_buddy/internal/app/dpp"
	"cf_buddy/internal/common"

	"github.com/go-chi/chi/v5"
)

type LevelHandler struct{}

func NewLevelHandler() *LevelHandler {
	return &LevelHandler{}
}

func (h *LevelHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.listLevels)         // GET /api/v1/levels
	r.Get("/{levelRef}", h.getLevel) // GET /api/v1/levels/3 or /api/v1/levels/level-3-specialist
}

func (h *LevelHandler) listLevels(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, dpp.Levels())
}

func (h *LevelHandler) getLevel(w http.ResponseWriter, r *http.Request) {
	level, err := dpp.LookupLevel(chi.URLParam(r, "levelRef"))
	if err != nil {
		common.RespondWithErr(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, level)
}
