package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"blog/pkg/storage"
)

func TestAPI_createCommentHandler(t *testing.T) {
	api, db := newTestAPI()
	writer, _ := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)
	reader, readerToken := seedUser(t, api, db, "Rita Reader", storage.RoleUser)

	post := seedPost(t, db, writer, "Open Thread", true)

	rr := doRequest(t, api, http.MethodPost, "/dashboard/comments", "", createCommentRequest{
		PostID: post.ID, Content: "anon",
	})
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous comment: want status code %v, got %v", http.StatusUnauthorized, rr.Code)
	}

	rr = doRequest(t, api, http.MethodPost, "/dashboard/comments", readerToken, createCommentRequest{
		PostID: post.ID, Content: "first!",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("want status code %v, got status code %v: %s", http.StatusCreated, rr.Code, rr.Body)
	}
	resp := decodeBody[commentResponse](t, rr)
	if resp.Comment.UserID != reader.ID || resp.Comment.PostID != post.ID {
		t.Errorf("comment attributed wrongly: %+v", resp.Comment)
	}

	rr = doRequest(t, api, http.MethodPost, "/dashboard/comments", readerToken, createCommentRequest{
		PostID: post.ID, Content: "   ",
	})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("blank comment: want status code %v, got %v", http.StatusBadRequest, rr.Code)
	}
}

func TestAPI_moderationCommentsHandlerPagination(t *testing.T) {
	api, db := newTestAPI()
	writer, writerToken := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)
	reader, readerToken := seedUser(t, api, db, "Rita Reader", storage.RoleUser)

	post := seedPost(t, db, writer, "Busy Thread", true)
	for i := 0; i < 25; i++ {
		_, err := db.CreateComment(context.Background(), storage.Comment{
			Content: fmt.Sprintf("comment %02d", i),
			UserID:  reader.ID,
			PostID:  post.ID,
		})
		if err != nil {
			t.Fatalf("unexpected error while seeding comment %d: %v", i, err)
		}
	}

	// The moderation view is staff only.
	if rr := doRequest(t, api, http.MethodGet, "/dashboard/comments", readerToken, nil); rr.Code != http.StatusForbidden {
		t.Errorf("reader role: want status code %v, got %v", http.StatusForbidden, rr.Code)
	}

	rr := doRequest(t, api, http.MethodGet, "/dashboard/comments?page=2&limit=10", writerToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("want status code %v, got status code %v", http.StatusOK, rr.Code)
	}
	resp := decodeBody[moderationResponse](t, rr)
	if len(resp.Comments) != 10 {
		t.Errorf("want 10 comments on page 2, got %d", len(resp.Comments))
	}
	want := pagination{Page: 2, Limit: 10, Total: 25, Pages: 3}
	if resp.Pagination != want {
		t.Errorf("want pagination %+v, got %+v", want, resp.Pagination)
	}

	// The last page holds the remainder.
	rr = doRequest(t, api, http.MethodGet, "/dashboard/comments?page=3&limit=10", writerToken, nil)
	if resp := decodeBody[moderationResponse](t, rr); len(resp.Comments) != 5 {
		t.Errorf("want 5 comments on page 3, got %d", len(resp.Comments))
	}
}

func TestAPI_moderationCommentsHandlerSearch(t *testing.T) {
	api, db := newTestAPI()
	writer, writerToken := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)
	reader, _ := seedUser(t, api, db, "Rita Reader", storage.RoleUser)

	post := seedPost(t, db, writer, "Search Me", true)
	for _, content := range []string{"spam spam spam", "a thoughtful reply", "more spam"} {
		if _, err := db.CreateComment(context.Background(), storage.Comment{
			Content: content, UserID: reader.ID, PostID: post.ID,
		}); err != nil {
			t.Fatalf("unexpected error while seeding comment: %v", err)
		}
	}

	rr := doRequest(t, api, http.MethodGet, "/dashboard/comments?search=spam", writerToken, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("want status code %v, got status code %v", http.StatusOK, rr.Code)
	}
	resp := decodeBody[moderationResponse](t, rr)
	if resp.Pagination.Total != 2 {
		t.Errorf("want 2 matches for %q, got %d", "spam", resp.Pagination.Total)
	}
}

func TestAPI_commentOwnership(t *testing.T) {
	api, db := newTestAPI()
	writer, _ := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)
	owner, ownerToken := seedUser(t, api, db, "Olive Owner", storage.RoleUser)
	_, strangerToken := seedUser(t, api, db, "Sam Stranger", storage.RoleUser)
	_, adminToken := seedUser(t, api, db, "Alice Admin", storage.RoleAdmin)

	post := seedPost(t, db, writer, "Moderated Thread", true)
	comment, err := db.CreateComment(context.Background(), storage.Comment{
		Content: "original", UserID: owner.ID, PostID: post.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error while seeding comment: %v", err)
	}
	path := "/dashboard/comments/" + comment.ID.String()

	// A stranger can neither edit nor remove it.
	if rr := doRequest(t, api, http.MethodPatch, path, strangerToken, updateCommentRequest{Content: "hijacked"}); rr.Code != http.StatusForbidden {
		t.Errorf("stranger edit: want status code %v, got %v", http.StatusForbidden, rr.Code)
	}
	if rr := doRequest(t, api, http.MethodDelete, path, strangerToken, nil); rr.Code != http.StatusForbidden {
		t.Errorf("stranger delete: want status code %v, got %v", http.StatusForbidden, rr.Code)
	}

	// The owner edits their own words.
	rr := doRequest(t, api, http.MethodPatch, path, ownerToken, updateCommentRequest{Content: "edited"})
	if rr.Code != http.StatusOK {
		t.Fatalf("owner edit: want status code %v, got %v", http.StatusOK, rr.Code)
	}
	if resp := decodeBody[commentResponse](t, rr); resp.Comment.Content != "edited" {
		t.Errorf("want content %q, got %q", "edited", resp.Comment.Content)
	}

	// Admins moderate anything.
	if rr := doRequest(t, api, http.MethodDelete, path, adminToken, nil); rr.Code != http.StatusOK {
		t.Errorf("admin delete: want status code %v, got %v", http.StatusOK, rr.Code)
	}
	if _, err := db.CommentByID(context.Background(), comment.ID); err == nil {
		t.Error("comment survived admin deletion")
	}
}

func TestAPI_postCommentsHandler(t *testing.T) {
	api, db := newTestAPI()
	writer, _ := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)
	reader, _ := seedUser(t, api, db, "Rita Reader", storage.RoleUser)

	post := seedPost(t, db, writer, "Public Thread", true)
	if _, err := db.CreateComment(context.Background(), storage.Comment{
		Content: "visible to all", UserID: reader.ID, PostID: post.ID,
	}); err != nil {
		t.Fatalf("unexpected error while seeding comment: %v", err)
	}

	rr := doRequest(t, api, http.MethodGet, "/posts/"+post.ID.String()+"/comments", "", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("want status code %v, got status code %v", http.StatusOK, rr.Code)
	}
	resp := decodeBody[commentsResponse](t, rr)
	if len(resp.Comments) != 1 || resp.Comments[0].Content != "visible to all" {
		t.Errorf("unexpected comment thread: %+v", resp.Comments)
	}

	missing := "/posts/00000000-0000-0000-0000-000000000001/comments"
	if rr := doRequest(t, api, http.MethodGet, missing, "", nil); rr.Code != http.StatusNotFound {
		t.Errorf("missing post: want status code %v, got %v", http.StatusNotFound, rr.Code)
	}
}
