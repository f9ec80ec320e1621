package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"blog/pkg/slug"
	"blog/pkg/storage"
)

// publishedPostsHandler serves the public feed: published posts only,
// newest first.
func (api *API) publishedPostsHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	limit := queryInt(r, "limit", 10)
	if limit > 50 {
		limit = 50
	}

	posts, err := api.db.PublishedPosts(r.Context(), limit)
	if err != nil {
		api.writeError(w, err, "publishedPostsHandler", reqID)
		return
	}

	writeJSON(w, http.StatusOK, postsResponse{Status: "success", Posts: posts})
}

// postBySlugHandler serves a single post with its comment thread.
// Unpublished posts are visible only to admins and their author.
func (api *API) postBySlugHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	post, err := api.db.PostBySlug(r.Context(), mux.Vars(r)["slug"])
	if err != nil {
		api.writeError(w, err, "postBySlugHandler", reqID)
		return
	}

	if !post.Published {
		s := sessionFrom(r.Context())
		if s == nil || (s.Role != storage.RoleAdmin && s.UserID != post.AuthorID) {
			api.writeError(w, storage.ErrPostNotFound, "postBySlugHandler", reqID)
			return
		}
	}

	comments, err := api.db.CommentsByPost(r.Context(), post.ID)
	if err != nil {
		api.writeError(w, err, "postBySlugHandler", reqID)
		return
	}

	writeJSON(w, http.StatusOK, postDetailResponse{Status: "success", Post: post, Comments: comments})
}

func (api *API) postCommentsHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	postID, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		api.writeError(w, validationError("invalid post id"), "postCommentsHandler", reqID)
		return
	}

	if _, err := api.db.PostByID(r.Context(), postID); err != nil {
		api.writeError(w, err, "postCommentsHandler", reqID)
		return
	}

	comments, err := api.db.CommentsByPost(r.Context(), postID)
	if err != nil {
		api.writeError(w, err, "postCommentsHandler", reqID)
		return
	}

	writeJSON(w, http.StatusOK, commentsResponse{Status: "success", Comments: comments})
}

// dashboardPostsHandler lists every post, drafts included, for the
// authoring dashboard. Writers see the whole catalogue too; ownership
// is enforced on the mutation handlers, not the listing.
func (api *API) dashboardPostsHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin, storage.RoleWriter); err != nil {
		api.writeError(w, err, "dashboardPostsHandler", reqID)
		return
	}

	posts, err := api.db.AllPosts(r.Context())
	if err != nil {
		api.writeError(w, err, "dashboardPostsHandler", reqID)
		return
	}

	writeJSON(w, http.StatusOK, postsResponse{Status: "success", Posts: posts})
}

func (api *API) createPostHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin, storage.RoleWriter); err != nil {
		api.writeError(w, err, "createPostHandler", reqID)
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, validationError("invalid request body"), "createPostHandler", reqID)
		return
	}
	defer r.Body.Close()

	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		api.writeError(w, validationError("title is required"), "createPostHandler", reqID)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		api.writeError(w, validationError("content is required"), "createPostHandler", reqID)
		return
	}

	postSlug := slug.Make(req.Title)
	if postSlug == "" {
		api.writeError(w, validationError("title must contain letters or digits"), "createPostHandler", reqID)
		return
	}

	if req.Tags == nil {
		req.Tags = []string{}
	}
	post, err := api.db.CreatePost(r.Context(), storage.Post{
		Title:       req.Title,
		Slug:        postSlug,
		Description: req.Description,
		Content:     req.Content,
		Tags:        req.Tags,
		Image:       req.Image,
		Category:    req.Category,
		Published:   req.Published,
		AuthorID:    s.UserID,
	})
	if err != nil {
		api.writeError(w, err, "createPostHandler", reqID)
		return
	}

	// The draft cache is only a scratchpad; a successful submission
	// retires it.
	api.drafts.Clear(s.UserID)

	author := storage.Author{ID: s.UserID}
	if u, err := api.db.UserByID(r.Context(), s.UserID); err == nil {
		author.Name = u.Name
		author.Email = u.Email
	}

	log.Infof("[createPostHandler][%s] post %s created by %v", shorten(reqID), post.Slug, s.UserID)
	writeJSON(w, http.StatusCreated, postResponse{
		Status:  "success",
		Message: "Post created successfully",
		Post:    storage.PostWithEngagement{Post: post, Author: author},
	})
}

func (api *API) updatePostHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin, storage.RoleWriter); err != nil {
		api.writeError(w, err, "updatePostHandler", reqID)
		return
	}

	postID, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		api.writeError(w, validationError("invalid post id"), "updatePostHandler", reqID)
		return
	}

	existing, err := api.db.PostByID(r.Context(), postID)
	if err != nil {
		api.writeError(w, err, "updatePostHandler", reqID)
		return
	}
	if s.Role != storage.RoleAdmin && existing.AuthorID != s.UserID {
		api.writeError(w, errForbidden, "updatePostHandler", reqID)
		return
	}

	var req updatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, validationError("invalid request body"), "updatePostHandler", reqID)
		return
	}
	defer r.Body.Close()

	if req.Title != nil && strings.TrimSpace(*req.Title) == "" {
		api.writeError(w, validationError("title cannot be empty"), "updatePostHandler", reqID)
		return
	}
	if req.Content != nil && strings.TrimSpace(*req.Content) == "" {
		api.writeError(w, validationError("content cannot be empty"), "updatePostHandler", reqID)
		return
	}

	// The slug is minted once at creation; edits never move a
	// published URL.
	updated, err := api.db.UpdatePost(r.Context(), postID, storage.PostPatch{
		Title:       req.Title,
		Description: req.Description,
		Content:     req.Content,
		Tags:        req.Tags,
		Image:       req.Image,
		Category:    req.Category,
		Published:   req.Published,
	})
	if err != nil {
		api.writeError(w, err, "updatePostHandler", reqID)
		return
	}

	if api.drafts.IsEditing(s.UserID, postID) {
		api.drafts.Clear(s.UserID)
	}

	post, err := api.db.PostBySlug(r.Context(), updated.Slug)
	if err != nil {
		api.writeError(w, err, "updatePostHandler", reqID)
		return
	}

	log.Infof("[updatePostHandler][%s] post %s updated by %v", shorten(reqID), updated.Slug, s.UserID)
	writeJSON(w, http.StatusOK, postResponse{
		Status:  "success",
		Message: "Post updated successfully",
		Post:    post,
	})
}

func (api *API) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin, storage.RoleWriter); err != nil {
		api.writeError(w, err, "deletePostHandler", reqID)
		return
	}

	postID, err := uuid.FromString(mux.Vars(r)["id"])
	if err != nil {
		api.writeError(w, validationError("invalid post id"), "deletePostHandler", reqID)
		return
	}

	existing, err := api.db.PostByID(r.Context(), postID)
	if err != nil {
		api.writeError(w, err, "deletePostHandler", reqID)
		return
	}
	if s.Role != storage.RoleAdmin && existing.AuthorID != s.UserID {
		api.writeError(w, errForbidden, "deletePostHandler", reqID)
		return
	}

	if err := api.db.DeletePost(r.Context(), postID); err != nil {
		api.writeError(w, err, "deletePostHandler", reqID)
		return
	}

	log.Infof("[deletePostHandler][%s] post %s deleted by %v", shorten(reqID), existing.Slug, s.UserID)
	writeJSON(w, http.StatusOK, messageResponse{Status: "success", Message: "Post deleted successfully"})
}
