package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"blog/pkg/session"
	"blog/pkg/storage"
)

// requireRole checks that the request carries a session with one of
// the given roles. No session means 401, a wrong role means 403.
func requireRole(s *session.Session, roles ...storage.Role) error {
	if s == nil {
		return errUnauthorized
	}
	for _, role := range roles {
		if s.Role == role {
			return nil
		}
	}
	return errForbidden
}

func (api *API) registerHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, validationError("invalid request body"), "registerHandler", reqID)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	switch {
	case req.Name == "":
		api.writeError(w, validationError("name is required"), "registerHandler", reqID)
		return
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		api.writeError(w, validationError("a valid email is required"), "registerHandler", reqID)
		return
	case len(req.Password) < 8:
		api.writeError(w, validationError("password must be at least 8 characters"), "registerHandler", reqID)
		return
	}

	hash, err := session.HashPassword(req.Password)
	if err != nil {
		api.writeError(w, err, "registerHandler", reqID)
		return
	}

	user, err := api.db.CreateUser(r.Context(), storage.User{
		Name:         req.Name,
		Email:        req.Email,
		Role:         storage.RoleUser,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, storage.ErrEmailTaken) {
			api.writeError(w, conflictError("an account with this email already exists"), "registerHandler", reqID)
			return
		}
		api.writeError(w, err, "registerHandler", reqID)
		return
	}

	token, err := api.sessions.Issue(user.ID, user.Role)
	if err != nil {
		api.writeError(w, err, "registerHandler", reqID)
		return
	}

	log.Infof("[registerHandler][%s] registered user %s", shorten(reqID), user.Email)
	writeJSON(w, http.StatusCreated, authResponse{
		Status:  "success",
		Message: "Account created successfully",
		Token:   token,
		User:    user,
	})
}

func (api *API) loginHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.writeError(w, validationError("invalid request body"), "loginHandler", reqID)
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		api.writeError(w, validationError("email and password are required"), "loginHandler", reqID)
		return
	}

	// A wrong email and a wrong password answer identically, so the
	// endpoint cannot be used to probe which addresses have accounts.
	user, err := api.db.UserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			api.writeError(w, &apiError{http.StatusUnauthorized, "invalid email or password"}, "loginHandler", reqID)
			return
		}
		api.writeError(w, err, "loginHandler", reqID)
		return
	}

	if user.PasswordHash == "" || !session.CheckPassword(user.PasswordHash, req.Password) {
		api.writeError(w, &apiError{http.StatusUnauthorized, "invalid email or password"}, "loginHandler", reqID)
		return
	}

	token, err := api.sessions.Issue(user.ID, user.Role)
	if err != nil {
		api.writeError(w, err, "loginHandler", reqID)
		return
	}

	log.Infof("[loginHandler][%s] user %s logged in", shorten(reqID), user.Email)
	writeJSON(w, http.StatusOK, authResponse{
		Status:  "success",
		Message: "Logged in successfully",
		Token:   token,
		User:    user,
	})
}

const oauthStateCookie = "oauth_state"

func (api *API) oauthLoginHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	state, err := uuid.NewV4()
	if err != nil {
		api.writeError(w, err, "oauthLoginHandler", reqID)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state.String(),
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
	})

	url := api.oauth.AuthCodeURL(state.String())
	log.Debugf("[oauthLoginHandler][%s] redirecting to identity provider", shorten(reqID))
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (api *API) oauthCallbackHandler(w http.ResponseWriter, r *http.Request) {
	reqID := GetRequestID(r.Context())

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		api.writeError(w, validationError("oauth state mismatch"), "oauthCallbackHandler", reqID)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		api.writeError(w, validationError("missing authorization code"), "oauthCallbackHandler", reqID)
		return
	}

	tok, err := api.oauth.Exchange(r.Context(), code)
	if err != nil {
		log.Warnf("[oauthCallbackHandler][%s] token exchange failed: %v", shorten(reqID), err)
		api.writeError(w, dependencyError("identity provider rejected the authorization code"), "oauthCallbackHandler", reqID)
		return
	}

	resp, err := api.oauth.Client(r.Context(), tok).Get(api.oauth.UserInfoURL)
	if err != nil {
		api.writeError(w, dependencyError("could not fetch user info from identity provider"), "oauthCallbackHandler", reqID)
		return
	}
	defer resp.Body.Close()

	var info struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil || info.Email == "" {
		api.writeError(w, dependencyError("identity provider returned an unusable profile"), "oauthCallbackHandler", reqID)
		return
	}

	info.Email = strings.ToLower(info.Email)
	user, err := api.db.UserByEmail(r.Context(), info.Email)
	if errors.Is(err, storage.ErrUserNotFound) {
		name := info.Name
		if name == "" {
			name = info.Email
		}
		user, err = api.db.CreateUser(r.Context(), storage.User{
			Name:  name,
			Email: info.Email,
			Role:  storage.RoleUser,
		})
	}
	if err != nil {
		api.writeError(w, err, "oauthCallbackHandler", reqID)
		return
	}

	token, err := api.sessions.Issue(user.ID, user.Role)
	if err != nil {
		api.writeError(w, err, "oauthCallbackHandler", reqID)
		return
	}

	log.Infof("[oauthCallbackHandler][%s] oauth login for %s", shorten(reqID), user.Email)
	writeJSON(w, http.StatusOK, authResponse{
		Status:  "success",
		Message: "Logged in successfully",
		Token:   token,
		User:    user,
	})
}
