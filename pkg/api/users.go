package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"blog/pkg/storage"
)

func (api *API) usersHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin); err != nil {
		api.writeError(w, err, "usersHandler", reqID)
		return
	}

	f := storage.UserFilter{
		Search: r.URL.Query().Get("search"),
		Role:   storage.Role(r.URL.Query().Get("role")),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 10),
	}
	if f.Role != "" && !f.Role.Valid() {
		api.writeError(w, validationError("unknown role filter"), "usersHandler", reqID)
		return
	}

	users, total, err := api.db.Users(r.Context(), f)
	if err != nil {
		api.writeError(w, err, "usersHandler", reqID)
		return
	}
	if users == nil {
		users = []storage.UserWithCounts{}
	}

	writeJSON(w, http.StatusOK, usersResponse{
		Status:     "success",
		Users:      users,
		Pagination: paginationFor(f.Page, f.Limit, total),
	})
}

func (api *API) updateUserRoleHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin); err != nil {
		api.writeError(w, err, "updateUserRoleHandler", reqID)
		return
	}

	var req updateRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, validationError("invalid request body"), "updateUserRoleHandler", reqID)
		return
	}
	defer r.Body.Close()

	if req.ID == uuid.Nil {
		api.writeError(w, validationError("user id is required"), "updateUserRoleHandler", reqID)
		return
	}
	if !req.Role.Valid() {
		api.writeError(w, validationError("unknown role"), "updateUserRoleHandler", reqID)
		return
	}
	// Admins cannot touch their own role; demoting the last admin by
	// accident would lock everyone out of this very endpoint.
	if req.ID == s.UserID {
		api.writeError(w, validationError("you cannot change your own role"), "updateUserRoleHandler", reqID)
		return
	}

	user, err := api.db.UpdateUserRole(r.Context(), req.ID, req.Role)
	if err != nil {
		api.writeError(w, err, "updateUserRoleHandler", reqID)
		return
	}

	log.Infof("[updateUserRoleHandler][%s] user %v set to role %s by %v", shorten(reqID), req.ID, req.Role, s.UserID)
	writeJSON(w, http.StatusOK, userResponse{
		Status:  "success",
		Message: "Role updated successfully",
		User:    user.User,
	})
}

func (api *API) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin); err != nil {
		api.writeError(w, err, "deleteUserHandler", reqID)
		return
	}

	userID, err := uuid.FromString(r.URL.Query().Get("id"))
	if err != nil {
		api.writeError(w, validationError("a valid user id is required"), "deleteUserHandler", reqID)
		return
	}
	if userID == s.UserID {
		api.writeError(w, validationError("you cannot delete your own account"), "deleteUserHandler", reqID)
		return
	}

	user, err := api.db.UserByID(r.Context(), userID)
	if err != nil {
		api.writeError(w, err, "deleteUserHandler", reqID)
		return
	}

	if err := api.db.DeleteUser(r.Context(), userID); err != nil {
		api.writeError(w, err, "deleteUserHandler", reqID)
		return
	}

	log.Infof("[deleteUserHandler][%s] user %s deleted by %v", shorten(reqID), user.Email, s.UserID)
	writeJSON(w, http.StatusOK, messageResponse{
		Status:  "success",
		Message: fmt.Sprintf("User %s deleted successfully", user.Name),
	})
}
