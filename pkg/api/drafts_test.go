package api

import (
	"net/http"
	"testing"

	"blog/pkg/draft"
	"blog/pkg/storage"
)

func TestAPI_draftRoundtrip(t *testing.T) {
	api, db := newTestAPI()
	_, writerToken := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)
	_, readerToken := seedUser(t, api, db, "Rita Reader", storage.RoleUser)

	// Drafting is an authoring feature.
	if rr := doRequest(t, api, http.MethodGet, "/dashboard/draft", readerToken, nil); rr.Code != http.StatusForbidden {
		t.Errorf("reader: want status code %v, got %v", http.StatusForbidden, rr.Code)
	}

	rr := doRequest(t, api, http.MethodGet, "/dashboard/draft", writerToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("want status code %v, got status code %v", http.StatusOK, rr.Code)
	}
	if resp := decodeBody[draftResponse](t, rr); resp.Exists {
		t.Error("fresh author already has a draft")
	}

	entry := draft.Entry{Draft: draft.Draft{Title: "Autosaved", Content: "<p>wip</p>", Tags: []string{"go"}}}
	if rr := doRequest(t, api, http.MethodPut, "/dashboard/draft", writerToken, entry); rr.Code != http.StatusOK {
		t.Fatalf("save draft: want status code %v, got %v", http.StatusOK, rr.Code)
	}

	rr = doRequest(t, api, http.MethodGet, "/dashboard/draft", writerToken, nil)
	resp := decodeBody[draftResponse](t, rr)
	if !resp.Exists || resp.Draft == nil {
		t.Fatal("saved draft not returned")
	}
	if resp.Draft.Draft.Title != "Autosaved" {
		t.Errorf("want title %q, got %q", "Autosaved", resp.Draft.Draft.Title)
	}

	if rr := doRequest(t, api, http.MethodDelete, "/dashboard/draft", writerToken, nil); rr.Code != http.StatusOK {
		t.Fatalf("discard draft: want status code %v, got %v", http.StatusOK, rr.Code)
	}
	rr = doRequest(t, api, http.MethodGet, "/dashboard/draft", writerToken, nil)
	if resp := decodeBody[draftResponse](t, rr); resp.Exists {
		t.Error("draft survived discard")
	}
}

func TestAPI_createPostClearsDraft(t *testing.T) {
	api, db := newTestAPI()
	_, writerToken := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)

	entry := draft.Entry{Draft: draft.Draft{Title: "Ready To Go", Content: "<p>done</p>"}}
	if rr := doRequest(t, api, http.MethodPut, "/dashboard/draft", writerToken, entry); rr.Code != http.StatusOK {
		t.Fatalf("save draft: unexpected status %v", rr.Code)
	}

	rr := doRequest(t, api, http.MethodPost, "/dashboard/posts", writerToken, createPostRequest{
		Title: "Ready To Go", Content: "<p>done</p>",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create post: unexpected status %v", rr.Code)
	}

	rr = doRequest(t, api, http.MethodGet, "/dashboard/draft", writerToken, nil)
	if resp := decodeBody[draftResponse](t, rr); resp.Exists {
		t.Error("draft survived a successful submission")
	}
}
