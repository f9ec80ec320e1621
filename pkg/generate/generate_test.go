package generate

import (
	"context"
	"errors"
	"net/http"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/h2non/gock"
	log "github.com/sirupsen/logrus"
)

const testAPIURL = "http://ai.test/v1/chat/completions"

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	os.Exit(m.Run())
}

func newTestClient() *Client {
	return NewClient(testAPIURL, "test-key", "test-model", 5*time.Second)
}

func reply(content string) map[string]interface{} {
	return map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func TestGenerate(t *testing.T) {
	defer gock.Off()

	gock.New(testAPIURL).
		Post("").
		Reply(http.StatusOK).
		JSON(reply(`{"title":"Go Slices","description":"All about slices","content":"<h1>Slices</h1>","tags":["go","slices"]}`))

	d, err := newTestClient().Generate(context.Background(), "go slices")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Draft{
		Title:       "Go Slices",
		Description: "All about slices",
		Content:     "<h1>Slices</h1>",
		Tags:        []string{"go", "slices"},
	}
	if !reflect.DeepEqual(d, want) {
		t.Errorf("want draft\n%+v\n\ngot draft\n%+v\n", want, d)
	}
}

func TestGenerateStripsMarkdownFences(t *testing.T) {
	defer gock.Off()

	gock.New(testAPIURL).
		Post("").
		Reply(http.StatusOK).
		JSON(reply("```json\n{\"title\":\"Fenced\",\"description\":\"d\",\"content\":\"c\",\"tags\":[]}\n```"))

	d, err := newTestClient().Generate(context.Background(), "fences")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Title != "Fenced" {
		t.Errorf("want title %q, got %q", "Fenced", d.Title)
	}
}

func TestGenerateWrapsInvalidJSON(t *testing.T) {
	defer gock.Off()

	raw := "Here are some thoughts about Go, but not as JSON."
	gock.New(testAPIURL).
		Post("").
		Reply(http.StatusOK).
		JSON(reply(raw))

	d, err := newTestClient().Generate(context.Background(), "go")
	if err != nil {
		t.Fatalf("want graceful degradation, got error: %v", err)
	}
	if d.Content != raw {
		t.Errorf("want raw text as content, got %q", d.Content)
	}
	if d.Title != "" {
		t.Errorf("want empty title, got %q", d.Title)
	}
}

func TestGenerateUnavailable(t *testing.T) {
	defer gock.Off()

	gock.New(testAPIURL).
		Post("").
		Reply(http.StatusServiceUnavailable)

	_, err := newTestClient().Generate(context.Background(), "go")
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("want ErrUnavailable, got %v", err)
	}
}
