package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"blog/pkg/session"
	"blog/pkg/storage"
	"blog/pkg/storage/memdb"
)

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	exitCode := m.Run()
	os.Exit(exitCode)
}

func newTestAPI(extra ...func(*Deps)) (*API, *memdb.Store) {
	db := memdb.New()
	deps := Deps{
		DB:       db,
		Sessions: session.NewManager("test-secret", time.Hour),
	}
	for _, f := range extra {
		f(&deps)
	}

	return New("blog-test", deps), db
}

// seedUser creates a user straight in the store and returns it with a
// valid bearer token.
func seedUser(t *testing.T, api *API, db *memdb.Store, name string, role storage.Role) (storage.User, string) {
	t.Helper()

	email := strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com"
	u, err := db.CreateUser(context.Background(), storage.User{Name: name, Email: email, Role: role})
	if err != nil {
		t.Fatalf("unexpected error while seeding user %s: %v", name, err)
	}

	token, err := api.sessions.Issue(u.ID, u.Role)
	if err != nil {
		t.Fatalf("unexpected error while issuing token for %s: %v", name, err)
	}

	return u, token
}

func seedPost(t *testing.T, db *memdb.Store, author storage.User, title string, published bool) storage.Post {
	t.Helper()

	p, err := db.CreatePost(context.Background(), storage.Post{
		Title:     title,
		Slug:      slugify(title),
		Content:   fmt.Sprintf("<p>%s</p>", title),
		Tags:      []string{"test"},
		Published: published,
		AuthorID:  author.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error while seeding post %q: %v", title, err)
	}

	return p
}

func slugify(title string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(title), " ", "-"))
}

// doRequest runs one request through the full router, middleware
// included.
func doRequest(t *testing.T, api *API, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("unexpected error while marshaling request body: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, rdr)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	api.Router.ServeHTTP(rr, req)

	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("unexpected error while decoding response body: %v", err)
	}

	return v
}
