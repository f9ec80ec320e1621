package api

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/h2non/gock"

	"blog/pkg/generate"
	"blog/pkg/storage"
	"blog/pkg/uploader"
)

const (
	testGenerateURL = "http://ai.test/v1/chat/completions"
	testUploadURL   = "http://media.test/upload"
)

func TestAPI_generateHandler(t *testing.T) {
	defer gock.Off()

	gock.New(testGenerateURL).
		Post("").
		Reply(http.StatusOK).
		JSON(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{
					"role":    "assistant",
					"content": `{"title":"Go Channels","description":"d","content":"<p>c</p>","tags":["go"]}`,
				}},
			},
		})

	api, db := newTestAPI(func(d *Deps) {
		d.Generator = generate.NewClient(testGenerateURL, "test-key", "test-model", 5*time.Second)
	})
	_, writerToken := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)

	rr := doRequest(t, api, http.MethodPost, "/generate", writerToken, generateRequest{Topic: "go channels"})
	if rr.Code != http.StatusOK {
		t.Fatalf("want status code %v, got status code %v: %s", http.StatusOK, rr.Code, rr.Body)
	}
	resp := decodeBody[generateResponse](t, rr)
	if resp.Draft.Title != "Go Channels" {
		t.Errorf("want title %q, got %q", "Go Channels", resp.Draft.Title)
	}
	if len(resp.Draft.Tags) != 1 || resp.Draft.Tags[0] != "go" {
		t.Errorf("unexpected tags: %v", resp.Draft.Tags)
	}
}

func TestAPI_generateHandlerGates(t *testing.T) {
	api, db := newTestAPI(func(d *Deps) {
		d.Generator = generate.NewClient(testGenerateURL, "test-key", "test-model", 5*time.Second)
	})
	_, readerToken := seedUser(t, api, db, "Rita Reader", storage.RoleUser)
	_, writerToken := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)

	if rr := doRequest(t, api, http.MethodPost, "/generate", readerToken, generateRequest{Topic: "x"}); rr.Code != http.StatusForbidden {
		t.Errorf("reader: want status code %v, got %v", http.StatusForbidden, rr.Code)
	}
	if rr := doRequest(t, api, http.MethodPost, "/generate", writerToken, generateRequest{Topic: "  "}); rr.Code != http.StatusBadRequest {
		t.Errorf("blank topic: want status code %v, got %v", http.StatusBadRequest, rr.Code)
	}
}

func TestAPI_generateHandlerBackendDown(t *testing.T) {
	defer gock.Off()

	gock.New(testGenerateURL).
		Post("").
		Reply(http.StatusServiceUnavailable)

	api, db := newTestAPI(func(d *Deps) {
		d.Generator = generate.NewClient(testGenerateURL, "test-key", "test-model", 5*time.Second)
	})
	_, writerToken := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)

	rr := doRequest(t, api, http.MethodPost, "/generate", writerToken, generateRequest{Topic: "anything"})
	if rr.Code != http.StatusBadGateway {
		t.Errorf("want status code %v, got status code %v", http.StatusBadGateway, rr.Code)
	}
}

func TestAPI_generateHandlerNotConfigured(t *testing.T) {
	api, db := newTestAPI()
	_, writerToken := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)

	rr := doRequest(t, api, http.MethodPost, "/generate", writerToken, generateRequest{Topic: "anything"})
	if rr.Code != http.StatusBadGateway {
		t.Errorf("want status code %v, got status code %v", http.StatusBadGateway, rr.Code)
	}
}

func multipartUpload(t *testing.T, api *API, token string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "cover.png")
	if err != nil {
		t.Fatalf("unexpected error creating form file: %v", err)
	}
	fw.Write([]byte("png-bytes"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/imageupload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	api.Router.ServeHTTP(rr, req)

	return rr
}

func TestAPI_imageUploadHandler(t *testing.T) {
	defer gock.Off()

	gock.New(testUploadURL).
		Post("").
		Reply(http.StatusOK).
		JSON(map[string]string{"secure_url": "https://media.test/blog/cover.png"})

	api, db := newTestAPI(func(d *Deps) {
		d.Uploader = uploader.NewClient(testUploadURL, "blog-preset", "blog", 5*time.Second)
	})
	_, writerToken := seedUser(t, api, db, "Walt Writer", storage.RoleWriter)

	rr := multipartUpload(t, api, writerToken)
	if rr.Code != http.StatusOK {
		t.Fatalf("want status code %v, got status code %v: %s", http.StatusOK, rr.Code, rr.Body)
	}
	resp := decodeBody[uploadResponse](t, rr)
	if resp.URL != "https://media.test/blog/cover.png" {
		t.Errorf("want hosted URL, got %q", resp.URL)
	}
}

func TestAPI_imageUploadHandlerGates(t *testing.T) {
	api, db := newTestAPI(func(d *Deps) {
		d.Uploader = uploader.NewClient(testUploadURL, "blog-preset", "blog", 5*time.Second)
	})
	_, readerToken := seedUser(t, api, db, "Rita Reader", storage.RoleUser)

	if rr := multipartUpload(t, api, ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("anonymous: want status code %v, got %v", http.StatusUnauthorized, rr.Code)
	}
	if rr := multipartUpload(t, api, readerToken); rr.Code != http.StatusForbidden {
		t.Errorf("reader: want status code %v, got %v", http.StatusForbidden, rr.Code)
	}
}
