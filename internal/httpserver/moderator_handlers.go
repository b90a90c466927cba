package httpserver

import (
	"encoding/json"
	"net/http"

	"prephub/internal/service"
)

// @Summary      Moderator: login
// @Description  Validates the moderator password; the actual check happens in the middleware
// @Tags         moderator
// @Produce      json
// @Param        X-Moderator-Password header string true "Moderator password"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /moderator/login [post]
func handleModeratorLogin() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// @Summary      Moderator: list users
// @Tags         moderator
// @Produce      json
// @Param        X-Moderator-Password header string true "Moderator password"
// @Success      200  {array}  domain.User
// @Failure      403  {object}  map[string]string
// @Router       /moderator/users [get]
func handleModeratorUsers(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := userSvc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}

// @Summary      Moderator: chat history
// @Description  Global chat including soft-deleted messages
// @Tags         moderator
// @Produce      json
// @Param        X-Moderator-Password header string true "Moderator password"
// @Success      200  {array}  service.ChatMessageResponse
// @Failure      403  {object}  map[string]string
// @Router       /moderator/messages [get]
func handleModeratorMessages(chatSvc *service.ChatService, limit int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := chatSvc.ModeratorHistory(r.Context(), limit)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

// @Summary      Moderator: delete a chat message
// @Tags         moderator
// @Param        X-Moderator-Password header string true "Moderator password"
// @Param        messageID path int true "Message ID"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /moderator/messages/{messageID} [delete]
func handleModeratorDeleteMessage(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "messageID")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid message id"})
			return
		}
		if err := chatSvc.DeleteAsModerator(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type resetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}

// @Summary      Moderator: reset a user's password
// @Description  Privileged reset; does not require the old password
// @Tags         moderator
// @Accept       json
// @Param        X-Moderator-Password header string true "Moderator password"
// @Param        userID path int true "User ID"
// @Param        input body resetPasswordRequest true "New password"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /moderator/users/{userID}/reset-password [post]
func handleModeratorResetPassword(authSvc *service.AuthService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := parseIDParam(r, "userID")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}
		var req resetPasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		if err := authSvc.ResetPassword(r.Context(), id, req.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type chaptersUpdateRequest struct {
	Physics   []string `json:"physics"`
	Chemistry []string `json:"chemistry"`
	Biology   []string `json:"biology"`
}

// @Summary      Moderator: replace the weekly chapters config
// @Tags         moderator
// @Accept       json
// @Produce      json
// @Param        X-Moderator-Password header string true "Moderator password"
// @Param        input body chaptersUpdateRequest true "Chapter lists"
// @Success      200  {object}  domain.ChaptersConfig
// @Router       /moderator/chapters [put]
func handleUpdateChapters(sheetSvc *service.SheetService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req chaptersUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		cfg, err := sheetSvc.UpdateChaptersConfig(r.Context(), req.Physics, req.Chemistry, req.Biology)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, cfg)
	}
}
