package httpserver

import (
	"encoding/json"
	"net/http"

	"prephub/internal/domain"
	"prephub/internal/service"
)

type sheetCreateRequest struct {
	Name      string             `json:"name"`
	Physics   domain.SubjectData `json:"physics"`
	Chemistry domain.SubjectData `json:"chemistry"`
	Biology   domain.SubjectData `json:"biology"`
}

// @Summary      Submit a practice sheet
// @Tags         sheets
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body sheetCreateRequest true "Sheet"
// @Success      201  {object}  domain.OmrSheet
// @Failure      400  {object}  map[string]string
// @Router       /sheets [post]
func handleSubmitSheet(sheetSvc *service.SheetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req sheetCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		sheet, err := sheetSvc.Submit(r.Context(), user.ID, service.SheetCreateInput{
			Name:      req.Name,
			Physics:   req.Physics,
			Chemistry: req.Chemistry,
			Biology:   req.Biology,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, sheet)
	}
}

// @Summary      My practice sheets
// @Tags         sheets
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  domain.OmrSheet
// @Router       /sheets [get]
func handleMySheets(sheetSvc *service.SheetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		sheets, err := sheetSvc.ListByUser(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sheets)
	}
}

// @Summary      Recent activity
// @Description  Latest sheet submissions across the whole group
// @Tags         sheets
// @Security     BearerAuth
// @Produce      json
// @Param        limit query int false "Max rows"
// @Success      200  {array}  domain.SheetWithUser
// @Router       /sheets/activity [get]
func handleActivity(sheetSvc *service.SheetService, defaultLimit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sheets, err := sheetSvc.Activity(r.Context(), parseLimitQuery(r, defaultLimit))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, sheets)
	}
}

// @Summary      Weekly chapters config
// @Tags         chapters
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  domain.ChaptersConfig
// @Router       /chapters [get]
func handleGetChapters(sheetSvc *service.SheetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cfg, err := sheetSvc.ChaptersConfig(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}
