package api

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"blog/pkg/storage"
)

const maxUploadBytes = 10 << 20 // 10 MiB

// imageUploadHandler forwards a cover image to the media host and
// returns the hosted URL for the editor to embed.
func (api *API) imageUploadHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	s := sessionFrom(r.Context())
	if err := requireRole(s, storage.RoleAdmin, storage.RoleWriter); err != nil {
		api.writeError(w, err, "imageUploadHandler", reqID)
		return
	}

	if api.uploads == nil {
		api.writeError(w, dependencyError("image uploads are not configured"), "imageUploadHandler", reqID)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		api.writeError(w, validationError("could not parse upload; the file may be too large"), "imageUploadHandler", reqID)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		api.writeError(w, validationError("a file field is required"), "imageUploadHandler", reqID)
		return
	}
	defer file.Close()

	url, err := api.uploads.Upload(r.Context(), header.Filename, file)
	if err != nil {
		log.Warnf("[imageUploadHandler][%s] upload failed: %v", shorten(reqID), err)
		api.writeError(w, err, "imageUploadHandler", reqID)
		return
	}

	log.Infof("[imageUploadHandler][%s] image uploaded by %v", shorten(reqID), s.UserID)
	writeJSON(w, http.StatusOK, uploadResponse{Status: "success", URL: url})
}
