package httpserver

import (
	"encoding/json"
	"net/http"

	"prephub/internal/service"
)

type recommendationRequest struct {
	Subject     string `json:"subject"`
	ChapterName string `json:"chapter_name"`
}

type voteRequest struct {
	Approve bool `json:"approve"`
}

// @Summary      Recommend a chapter
// @Description  Propose a chapter for the weekly config; enters the pending voting queue
// @Tags         recommendations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body recommendationRequest true "Recommendation"
// @Success      201  {object}  domain.ChapterRecommendation
// @Failure      400  {object}  map[string]string
// @Router       /recommendations [post]
func handleCreateRecommendation(recSvc *service.RecommendationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req recommendationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		rec, err := recSvc.Recommend(r.Context(), user.ID, req.Subject, req.ChapterName)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, rec)
	}
}

// @Summary      Pending recommendations
// @Tags         recommendations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  domain.ChapterRecommendation
// @Router       /recommendations [get]
func handleListRecommendations(recSvc *service.RecommendationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recs, err := recSvc.ListPending(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, recs)
	}
}

// @Summary      Vote on a recommendation
// @Description  Approval requires every registered user; one rejection is final. A repeat vote by the same user is a no-op.
// @Tags         recommendations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        recommendationID path int true "Recommendation ID"
// @Param        input body voteRequest true "Vote"
// @Success      200  {object}  domain.ChapterRecommendation
// @Failure      404  {object}  map[string]string
// @Router       /recommendations/{recommendationID}/vote [post]
func handleVote(recSvc *service.RecommendationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := parseIDParam(r, "recommendationID")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid recommendation id"})
			return
		}
		var req voteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		rec, err := recSvc.Vote(r.Context(), user.ID, id, req.Approve)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}
