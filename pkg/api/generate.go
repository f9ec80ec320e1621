package api

import (
	"encoding/json"
	"net/http"
	"strings"

	log "github.com/sirupsen/logrus"

	"blog/pkg/storage"
)

// generateHandler asks the language-model backend to draft a post
// about the given topic. The result is a suggestion for the editor,
// nothing is persisted.
func (api *API) generateHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin, storage.RoleWriter); err != nil {
		api.writeError(w, err, "generateHandler", reqID)
		return
	}

	if api.generator == nil {
		api.writeError(w, dependencyError("content generation is not configured"), "generateHandler", reqID)
		return
	}

	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, validationError("invalid request body"), "generateHandler", reqID)
		return
	}
	defer r.Body.Close()

	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		api.writeError(w, validationError("topic is required"), "generateHandler", reqID)
		return
	}

	d, err := api.generator.Generate(r.Context(), req.Topic)
	if err != nil {
		log.Warnf("[generateHandler][%s] generation failed: %v", shorten(reqID), err)
		api.writeError(w, err, "generateHandler", reqID)
		return
	}

	log.Infof("[generateHandler][%s] draft generated for %v", shorten(reqID), s.UserID)
	writeJSON(w, http.StatusOK, generateResponse{Status: "success", Draft: d})
}
