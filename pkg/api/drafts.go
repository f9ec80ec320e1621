package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"blog/pkg/draft"
	"blog/pkg/storage"
)

// Draft endpoints back the editor's autosave. Each author holds at
// most one draft slot; saving replaces it wholesale and a successful
// post submission clears it.

func (api *API) getDraftHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin, storage.RoleWriter); err != nil {
		api.writeError(w, err, "getDraftHandler", reqID)
		return
	}

	entry, ok := api.drafts.Get(s.UserID)
	resp := draftResponse{Status: "success", Exists: ok}
	if ok {
		resp.Draft = &entry
	}

	writeJSON(w, http.StatusOK, resp)
}

func (api *API) setDraftHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin, storage.RoleWriter); err != nil {
		api.writeError(w, err, "setDraftHandler", reqID)
		return
	}

	var entry draft.Entry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		api.writeError(w, validationError("invalid request body"), "setDraftHandler", reqID)
		return
	}
	defer r.Body.Close()

	api.drafts.Set(s.UserID, entry)

	log.Debugf("[setDraftHandler][%s] draft saved for %v", shorten(reqID), s.UserID)
	writeJSON(w, http.StatusOK, messageResponse{Status: "success", Message: "Draft saved"})
}

func (api *API) clearDraftHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin, storage.RoleWriter); err != nil {
		api.writeError(w, err, "clearDraftHandler", reqID)
		return
	}

	api.drafts.Clear(s.UserID)

	writeJSON(w, http.StatusOK, messageResponse{Status: "success", Message: "Draft discarded"})
}
