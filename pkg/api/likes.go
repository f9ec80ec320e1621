package api

import (
	"encoding/json"
	"net/http"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"
)

// toggleLikeHandler flips the caller's like on a post. The same
// request is both "like" and "unlike"; the response reports which of
// the two happened.
func (api *API) toggleLikeHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if s == nil {
		api.writeError(w, errUnauthorized, "toggleLikeHandler", reqID)
		return
	}

	var req postIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, validationError("invalid request body"), "toggleLikeHandler", reqID)
		return
	}
	defer r.Body.Close()

	if req.PostID == uuid.Nil {
		api.writeError(w, validationError("postId is required"), "toggleLikeHandler", reqID)
		return
	}

	liked, _, err := api.db.ToggleLike(r.Context(), s.UserID, req.PostID)
	if err != nil {
		api.writeError(w, err, "toggleLikeHandler", reqID)
		return
	}

	log.Debugf("[toggleLikeHandler][%s] user %v liked=%t post %v", shorten(reqID), s.UserID, liked, req.PostID)
	writeJSON(w, http.StatusOK, likeResponse{Status: "success", Liked: liked})
}

// shareHandler records that the caller shared a post. Sharing is
// idempotent: repeating the request returns the original record.
func (api *API) shareHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if s == nil {
		api.writeError(w, errUnauthorized, "shareHandler", reqID)
		return
	}

	var req postIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, validationError("invalid request body"), "shareHandler", reqID)
		return
	}
	defer r.Body.Close()

	if req.PostID == uuid.Nil {
		api.writeError(w, validationError("postId is required"), "shareHandler", reqID)
		return
	}

	share, err := api.db.AddShare(r.Context(), s.UserID, req.PostID)
	if err != nil {
		api.writeError(w, err, "shareHandler", reqID)
		return
	}

	writeJSON(w, http.StatusOK, shareResponse{Status: "success", Share: share})
}
