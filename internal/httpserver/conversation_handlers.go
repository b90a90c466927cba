package httpserver

import (
	"encoding/json"
	"net/http"

	"prephub/internal/service"
)

type conversationCreateRequest struct {
	ParticipantIDs []int64 `json:"participant_ids"`
	IsGroup        bool    `json:"is_group"`
	GroupName      string  `json:"group_name"`
}

// @Summary      Create or resolve a conversation
// @Description  Direct conversations are deduplicated by participant set: resolving the same set twice returns the same conversation. Group conversations are always created fresh.
// @Tags         conversations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        input body conversationCreateRequest true "Participants"
// @Success      200  {object}  domain.Conversation
// @Success      201  {object}  domain.Conversation
// @Failure      400  {object}  map[string]string
// @Router       /conversations [post]
func handleCreateConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		var req conversationCreateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}

		if req.IsGroup {
			conv, err := convSvc.CreateGroup(r.Context(), user.ID, req.GroupName, req.ParticipantIDs)
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, conv)
			return
		}

		conv, created, err := convSvc.GetOrCreateDirect(r.Context(), user.ID, req.ParticipantIDs)
		if err != nil {
			writeError(w, err)
			return
		}
		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		writeJSON(w, status, conv)
	}
}

// @Summary      List conversations
// @Description  The caller's conversations ordered by most recent activity, each with a preview of the latest visible message
// @Tags         conversations
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  service.ConversationResponse
// @Router       /conversations [get]
func handleListConversations(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		convs, err := convSvc.ListForUser(r.Context(), user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, convs)
	}
}

// @Summary      Get a conversation
// @Tags         conversations
// @Security     BearerAuth
// @Produce      json
// @Param        conversationID path int true "Conversation ID"
// @Success      200  {object}  domain.Conversation
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /conversations/{conversationID} [get]
func handleGetConversation(convSvc *service.ConversationService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := parseIDParam(r, "conversationID")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid conversation id"})
			return
		}
		conv, err := convSvc.GetForUser(r.Context(), id, user.ID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

// @Summary      Conversation messages
// @Description  Chronological history including deleted-message tombstones
// @Tags         conversations
// @Security     BearerAuth
// @Produce      json
// @Param        conversationID path int true "Conversation ID"
// @Param        limit query int false "Max messages"
// @Success      200  {array}  service.WhisperResponse
// @Failure      403  {object}  map[string]string
// @Router       /conversations/{conversationID}/messages [get]
func handleListWhispers(whisperSvc *service.WhisperService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := parseIDParam(r, "conversationID")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid conversation id"})
			return
		}
		msgs, err := whisperSvc.History(r.Context(), user.ID, id, parseLimitQuery(r, 0))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msgs)
	}
}

// @Summary      Send a conversation message
// @Tags         conversations
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        conversationID path int true "Conversation ID"
// @Param        input body messageRequest true "Message text"
// @Success      201  {object}  service.WhisperResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Router       /conversations/{conversationID}/messages [post]
func handleSendWhisper(whisperSvc *service.WhisperService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		id, err := parseIDParam(r, "conversationID")
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid conversation id"})
			return
		}
		var req messageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeBadJSON(w)
			return
		}
		msg, err := whisperSvc.Send(r.Context(), user.ID, id, req.Message)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, msg)
	}
}

// @Summary      Edit a conversation message
// @Tags         whispers
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        messageID path int true "Message ID"
// @Param        input body messageRequest true "New text"
// @Success      200  {object}  service.WhisperResponse
// @Failure      403  {object}  map[string]string
// @Router       /whispers/{messageID} [put]
func handleEditWhisper(whisperSvc *service.WhisperService) http.HandlerFunc {
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
		msg, err := whisperSvc.Edit(r.Context(), user.ID, id, req.Message)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// @Summary      Delete a conversation message
// @Description  Soft delete; the message remains in history as a tombstone
// @Tags         whispers
// @Security     BearerAuth
// @Param        messageID path int true "Message ID"
// @Success      204
// @Failure      403  {object}  map[string]string
// @Router       /whispers/{messageID} [delete]
func handleDeleteWhisper(whisperSvc *service.WhisperService) http.HandlerFunc {
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
		if err := whisperSvc.Delete(r.Context(), user.ID, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      React to a conversation message
// @Tags         whispers
// @Security     BearerAuth
// @Accept       json
// @Param        messageID path int true "Message ID"
// @Param        input body reactionRequest true "Reaction"
// @Success      204
// @Router       /whispers/{messageID}/reactions [post]
func handleAddWhisperReaction(whisperSvc *service.WhisperService) http.HandlerFunc {
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
		if err := whisperSvc.AddReaction(r.Context(), user.ID, id, req.Reaction); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// @Summary      Remove a reaction from a conversation message
// @Tags         whispers
// @Security     BearerAuth
// @Accept       json
// @Param        messageID path int true "Message ID"
// @Param        input body reactionRequest true "Reaction"
// @Success      204
// @Router       /whispers/{messageID}/reactions [delete]
func handleRemoveWhisperReaction(whisperSvc *service.WhisperService) http.HandlerFunc {
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
		if err := whisperSvc.RemoveReaction(r.Context(), user.ID, id, req.Reaction); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
