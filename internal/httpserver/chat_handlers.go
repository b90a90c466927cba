package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"prephub/internal/service"
)

type messageRequest struct {
	Message string `json:"message"`
}

type reactionRequest struct {
	Reaction string `json:"reaction"`
}

// @Summary      Global chat history
// @Description  Latest visible messages in chronological order; deleted messages are hidden
// @Tags         chat
// @Security     BearerAuth
// @Produce      json
// @Param        limit query int false "Max messages"
// @Success      200  {array}  service.ChatMessageResponse
// @Router       /chat/messages [get]
func handleChatHistory(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		msgs, err := chatSvc.History(r.Context(), parseLimitQuery(r, 0))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

// @Summary      Post to global chat
// @Tags         chat
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body messageRequest true "Message text"
// @Success      201  {object}  service.ChatMessageResponse
// @Failure      400  {object}  map[string]string
// @Router       /chat/messages [post]
func handlePostChatMessage(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		msg, err := chatSvc.Post(r.Context(), user.ID, req.Message)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

// @Summary      Edit a chat message
// @Description  Only the author may edit; deleted messages are immutable
// @Tags         chat
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        messageID path int true "Message ID"
// @Param        input body messageRequest true "New text"
// @Success      200  {object}  service.ChatMessageResponse
// @Failure      403  {object}  map[string]string
// @Router       /chat/messages/{messageID} [put]
func handleEditChatMessage(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := parseIDParam(r, "messageID")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid message id"})
			return
		}
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		msg, err := chatSvc.Edit(r.Context(), user.ID, id, req.Message)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// @Summary      Delete a chat message
// @Description  Soft delete; the message disappears from the global channel
// @Tags         chat
// @Security     BearerAuth
// @Param        messageID path int true "Message ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /chat/messages/{messageID} [delete]
func handleDeleteChatMessage(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := parseIDParam(r, "messageID")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid message id"})
			return
		}
		if err := chatSvc.Delete(r.Context(), user.ID, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      React to a chat message
// @Tags         chat
// @Security     BearerAuth
// @Accept       json
// @Param        messageID path int true "Message ID"
// @Param        input body reactionRequest true "Reaction"
// @Success      204
// @Router       /chat/messages/{messageID}/reactions [post]
func handleAddChatReaction(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := parseIDParam(r, "messageID")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid message id"})
			return
		}
		var req reactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		if err := chatSvc.AddReaction(r.Context(), user.ID, id, req.Reaction); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      Remove a reaction from a chat message
// @Tags         chat
// @Security     BearerAuth
// @Accept       json
// @Param        messageID path int true "Message ID"
// @Param        input body reactionRequest true "Reaction"
// @Success      204
// @Router       /chat/messages/{messageID}/reactions [delete]
func handleRemoveChatReaction(chatSvc *service.ChatService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := parseIDParam(r, "messageID")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid message id"})
			return
		}
		var req reactionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		if err := chatSvc.RemoveReaction(r.Context(), user.ID, id, req.Reaction); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseIDParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// parseLimitQuery reads an optional positive ?limit= parameter, returning
// def when it is absent or unusable.
func parseLimitQuery(r *http.Request, def int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}
