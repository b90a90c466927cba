package httpserver

import (
	"encoding/json"
	"net/http"

	"prephub/internal/service"
)

type heartbeatRequest struct {
	IsOnline bool `json:"is_online"`
}

// @Summary      Presence heartbeat
// @Description  Refresh the caller's presence record; clients post this on an interval while a tab is open
// @Tags         presence
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.PresenceRecord
// @Failure      401  {object}  map[string]string
// @Router       /presence/heartbeat [post]
func handleHeartbeat(presenceSvc *service.PresenceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user := CurrentUser(r)
		if user == nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthorized"})
			return
		}
		// Missing body defaults to an online heartbeat.
		req := heartbeatRequest{IsOnline: true}
		if r.Body != nil && r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeBadJSON(w)
				return
			}
		}
		rec, err := presenceSvc.Heartbeat(r.Context(), user.ID, req.IsOnline)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// @Summary      Online users
// @Description  List users whose latest heartbeat is within the liveness window
// @Tags         presence
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  service.OnlineUser
// @Router       /presence/online [get]
func handleOnlineUsers(presenceSvc *service.PresenceService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := presenceSvc.OnlineUsers(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, users)
	}
}
