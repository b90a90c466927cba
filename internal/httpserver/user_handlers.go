package httpserver

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"prephub/internal/service"
)

// @Summary      Group directory
// @Description  List every registered user with sheet counts and live presence
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Success      200  {array}  service.DirectoryEntry
// @Router       /users [get]
func handleDirectory(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := userSvc.Directory(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	}
}

// @Summary      Get user
// @Description  A single user together with all of their submitted sheets
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        userID path int true "User ID"
// @Success      200  {object}  service.UserProfile
// @Failure      404  {object}  map[string]string
// @Router       /users/{userID} [get]
func handleGetUser(userSvc *service.UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user id"})
			return
		}
		profile, err := userSvc.Profile(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}
