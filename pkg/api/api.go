// Package api wires the blogging platform's HTTP surface: public
// browsing, the role-gated dashboard, authentication, social
// interactions and the authoring helpers.
package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/segmentio/kafka-go"
	"golang.org/x/oauth2"

	"blog/pkg/draft"
	"blog/pkg/generate"
	"blog/pkg/session"
	"blog/pkg/storage"
	"blog/pkg/uploader"
)

const uuidPattern = "[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}"

// OAuthConfig describes the external identity provider used for the
// social-login flow.
type OAuthConfig struct {
	oauth2.Config
	UserInfoURL string
}

// Deps carries everything a handler may need. The storage handle and
// the session verifier are injected here and passed along explicitly;
// there are no process-wide singletons.
type Deps struct {
	DB        storage.Storage
	Sessions  *session.Manager
	Drafts    *draft.Store
	Generator *generate.Client  // nil disables /generate
	Uploader  *uploader.Client  // nil disables /imageupload
	OAuth     *OAuthConfig      // nil disables the OAuth login flow
	KafkaLog  *kafka.Writer     // nil disables the request-log pipeline
}

type API struct {
	ServiceName string
	Router      *mux.Router

	db        storage.Storage
	sessions  *session.Manager
	drafts    *draft.Store
	generator *generate.Client
	uploads   *uploader.Client
	oauth     *OAuthConfig
	kw        *kafka.Writer
}

func New(name string, deps Deps) *API {
	drafts := deps.Drafts
	if drafts == nil {
		drafts = draft.NewStore()
	}

	api := API{
		ServiceName: name,
		Router:      mux.NewRouter(),
		db:          deps.DB,
		sessions:    deps.Sessions,
		drafts:      drafts,
		generator:   deps.Generator,
		uploads:     deps.Uploader,
		oauth:       deps.OAuth,
		kw:          deps.KafkaLog,
	}
	api.endpoints()

	return &api
}

func (api *API) endpoints() {
	api.Router.Use(api.requestIDMiddleware)
	api.Router.Use(api.headerMiddleware)
	api.Router.Use(api.sessionMiddleware)

	if api.kw != nil {
		api.Router.Use(api.loggingMiddleware(api.kw))
	}

	api.Router.HandleFunc("/auth/register", api.registerHandler).Methods(http.MethodPost)
	api.Router.HandleFunc("/auth/login", api.loginHandler).Methods(http.MethodPost)
	if api.oauth != nil {
		api.Router.HandleFunc("/auth/oauth/login", api.oauthLoginHandler).Methods(http.MethodGet)
		api.Router.HandleFunc("/auth/oauth/callback", api.oauthCallbackHandler).Methods(http.MethodGet)
	}

	api.Router.HandleFunc("/posts", api.publishedPostsHandler).Methods(http.MethodGet)
	api.Router.HandleFunc("/posts/{id:"+uuidPattern+"}/comments", api.postCommentsHandler).Methods(http.MethodGet)
	api.Router.HandleFunc("/posts/{slug}", api.postBySlugHandler).Methods(http.MethodGet)

	api.Router.HandleFunc("/dashboard/posts", api.dashboardPostsHandler).Methods(http.MethodGet)
	api.Router.HandleFunc("/dashboard/posts", api.createPostHandler).Methods(http.MethodPost)
	api.Router.HandleFunc("/dashboard/posts/{id:"+uuidPattern+"}", api.updatePostHandler).Methods(http.MethodPatch)
	api.Router.HandleFunc("/dashboard/posts/{id:"+uuidPattern+"}", api.deletePostHandler).Methods(http.MethodDelete)

	api.Router.HandleFunc("/dashboard/comments", api.moderationCommentsHandler).Methods(http.MethodGet)
	api.Router.HandleFunc("/dashboard/comments", api.createCommentHandler).Methods(http.MethodPost)
	api.Router.HandleFunc("/dashboard/comments/{id:"+uuidPattern+"}", api.updateCommentHandler).Methods(http.MethodPatch)
	api.Router.HandleFunc("/dashboard/comments/{id:"+uuidPattern+"}", api.deleteCommentHandler).Methods(http.MethodDelete)

	api.Router.HandleFunc("/dashboard/like", api.toggleLikeHandler).Methods(http.MethodPost)
	api.Router.HandleFunc("/dashboard/share", api.shareHandler).Methods(http.MethodPost)

	api.Router.HandleFunc("/dashboard/users", api.usersHandler).Methods(http.MethodGet)
	api.Router.HandleFunc("/dashboard/users", api.updateUserRoleHandler).Methods(http.MethodPatch)
	api.Router.HandleFunc("/dashboard/users", api.deleteUserHandler).Methods(http.MethodDelete)

	api.Router.HandleFunc("/dashboard/overview", api.overviewHandler).Methods(http.MethodGet)
	api.Router.HandleFunc("/profile", api.profileHandler).Methods(http.MethodGet)

	api.Router.HandleFunc("/dashboard/draft", api.getDraftHandler).Methods(http.MethodGet)
	api.Router.HandleFunc("/dashboard/draft", api.setDraftHandler).Methods(http.MethodPut)
	api.Router.HandleFunc("/dashboard/draft", api.clearDraftHandler).Methods(http.MethodDelete)

	api.Router.HandleFunc("/generate", api.generateHandler).Methods(http.MethodPost)
	api.Router.HandleFunc("/imageupload", api.imageUploadHandler).Methods(http.MethodPost)
}

// queryInt parses an integer query parameter, falling back to def when
// the parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	return n
}

func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
}
