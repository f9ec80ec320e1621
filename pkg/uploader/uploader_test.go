package uploader

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/h2non/gock"
	log "github.com/sirupsen/logrus"
)

const testAPIURL = "http://images.test/upload"

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	os.Exit(m.Run())
}

func newTestClient() *Client {
	return NewClient(testAPIURL, "blog", "blog_uploads", 5*time.Second)
}

func TestUpload(t *testing.T) {
	defer gock.Off()

	gock.New(testAPIURL).
		Post("").
		Reply(http.StatusOK).
		JSON(map[string]string{"secure_url": "https://images.test/blog_uploads/cover.png"})

	url, err := newTestClient().Upload(context.Background(), "cover.png", strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://images.test/blog_uploads/cover.png" {
		t.Errorf("unexpected url %q", url)
	}
}

func TestUploadUnavailable(t *testing.T) {
	defer gock.Off()

	gock.New(testAPIURL).
		Post("").
		Reply(http.StatusBadGateway)

	_, err := newTestClient().Upload(context.Background(), "cover.png", strings.NewReader("x"))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("want ErrUnavailable, got %v", err)
	}
}

func TestUploadEmptyURL(t *testing.T) {
	defer gock.Off()

	gock.New(testAPIURL).
		Post("").
		Reply(http.StatusOK).
		JSON(map[string]string{})

	_, err := newTestClient().Upload(context.Background(), "cover.png", strings.NewReader("x"))
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("want ErrUnavailable, got %v", err)
	}
}
