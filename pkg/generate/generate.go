// Package generate drafts blog posts from a topic through an
// OpenAI-compatible chat-completions API.
package generate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrUnavailable reports that the generation API could not be reached
// or answered with a non-success status. Callers map it to a 502 rather
// than failing the author's whole editing flow.
var ErrUnavailable = errors.New("generation service unavailable")

const systemPrompt = `You are an AI content generator for a blogging platform.
Your job is to create engaging and SEO-friendly blog content.

Generate the following based on the user's topic:
1. A catchy and SEO-friendly title
2. A short description (max 160 characters)
3. A full article in HTML format (headings, paragraphs, and bullet points)
4. 5-10 relevant tags for SEO

Return ONLY valid JSON (no markdown, no code blocks).
Format exactly like this:
{"title": "...", "description": "...", "content": "...", "tags": ["tag1", "tag2"]}`

// Draft is a generated post skeleton the author can keep editing.
type Draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Content     string   `json:"content"`
	Tags        []string `json:"tags"`
}

type Client struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
}

func NewClient(apiURL, apiKey, model string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate asks the model for a post draft about the topic. A reply
// that is not valid JSON is not an error: the raw text becomes the
// draft content so the author can proceed manually.
func (c *Client) Generate(ctx context.Context, topic string) (Draft, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Topic: " + topic},
		},
	})
	if err != nil {
		return Draft{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return Draft{}, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[generate] request failed: %v", err)
		return Draft{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("[generate] API returned status %d", resp.StatusCode)
		return Draft{}, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Draft{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(cr.Choices) == 0 {
		return Draft{}, fmt.Errorf("%w: empty choices", ErrUnavailable)
	}

	text := stripFences(cr.Choices[0].Message.Content)

	var d Draft
	if err := json.Unmarshal([]byte(text), &d); err != nil {
		log.Warnf("[generate] reply is not valid JSON, wrapping raw text")
		return Draft{Content: text, Tags: []string{}}, nil
	}
	if d.Tags == nil {
		d.Tags = []string{}
	}

	return d, nil
}

// stripFences removes the markdown code fences some models wrap their
// JSON replies in despite the prompt.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
