package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/gorilla/mux"

	"blog/pkg/storage"
)

// moderationCommentsHandler gives admins and writers a searchable,
// paginated view over every comment on the platform.
func (api *API) moderationCommentsHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin, storage.RoleWriter); err != nil {
		api.writeError(w, err, "moderationCommentsHandler", reqID)
		return
	}

	f := storage.CommentFilter{
		Search: r.URL.Query().Get("search"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", 10),
	}

	comments, total, err := api.db.Comments(r.Context(), f)
	if err != nil {
		api.writeError(w, err, "moderationCommentsHandler", reqID)
		return
	}
	if comments == nil {
		comments = []storage.CommentWithContext{}
	}

	writeJSON(w, http.StatusOK, moderationResponse{
		Status:     "success",
		Comments:   comments,
		Pagination: paginationFor(f.Page, f.Limit, total),
	})
}

func (api *API) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if s == nil {
		api.writeError(w, errUnauthorized, "createCommentHandler", reqID)
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, validationError("invalid request body"), "createCommentHandler", reqID)
		return
	}
	defer r.Body.Close()

	if req.PostID == uuid.Nil {
		api.writeError(w, validationError("postId is required"), "createCommentHandler", reqID)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		api.writeError(w, validationError("comment content is required"), "createCommentHandler", reqID)
		return
	}

	comment, err := api.db.CreateComment(r.Context(), storage.Comment{
		Content: req.Content,
		UserID:  s.UserID,
		PostID:  req.PostID,
	})
	if err != nil {
		api.writeError(w, err, "createCommentHandler", reqID)
		return
	}

	log.Infof("[createCommentHandler][%s] comment on post %v by %v", shorten(reqID), req.PostID, s.UserID)
	writeJSON(w, http.StatusCreated, commentResponse{
		Status:  "success",
		Message: "Comment added successfully",
		Comment: comment,
	})
}

func (api *API) updateCommentHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if s == nil {
		api.writeError(w, errUnauthorized, "updateCommentHandler", reqID)
		return
	}

	commentID, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		api.writeError(w, validationError("invalid comment id"), "updateCommentHandler", reqID)
		return
	}

	existing, err := api.db.CommentByID(r.Context(), commentID)
	if err != nil {
		api.writeError(w, err, "updateCommentHandler", reqID)
		return
	}
	if existing.UserID != s.UserID && s.Role != storage.RoleAdmin {
		api.writeError(w, errForbidden, "updateCommentHandler", reqID)
		return
	}

	var req updateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, validationError("invalid request body"), "updateCommentHandler", reqID)
		return
	}
	defer r.Body.Close()

	if strings.TrimSpace(req.Content) == "" {
		api.writeError(w, validationError("comment content is required"), "updateCommentHandler", reqID)
		return
	}

	comment, err := api.db.UpdateComment(r.Context(), commentID, req.Content)
	if err != nil {
		api.writeError(w, err, "updateCommentHandler", reqID)
		return
	}

	writeJSON(w, http.StatusOK, commentResponse{
		Status:  "success",
		Message: "Comment updated successfully",
		Comment: comment,
	})
}

// deleteCommentHandler lets a comment's author take it back and admins
// moderate anything.
func (api *API) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if s == nil {
		api.writeError(w, errUnauthorized, "deleteCommentHandler", reqID)
		return
	}

	commentID, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		api.writeError(w, validationError("invalid comment id"), "deleteCommentHandler", reqID)
		return
	}

	existing, err := api.db.CommentByID(r.Context(), commentID)
	if err != nil {
		api.writeError(w, err, "deleteCommentHandler", reqID)
		return
	}
	if existing.UserID != s.UserID && s.Role != storage.RoleAdmin {
		api.writeError(w, errForbidden, "deleteCommentHandler", reqID)
		return
	}

	if err := api.db.DeleteComment(r.Context(), commentID); err != nil {
		api.writeError(w, err, "deleteCommentHandler", reqID)
		return
	}

	log.Infof("[deleteCommentHandler][%s] comment %v removed by %v", shorten(reqID), commentID, s.UserID)
	writeJSON(w, http.StatusOK, messageResponse{Status: "success", Message: "Comment deleted successfully"})
}
