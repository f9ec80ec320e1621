// Package uploader pushes image blobs to a Cloudinary-compatible
// hosting API and returns their public URLs.
package uploader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
)

// ErrUnavailable reports that the hosting API could not be reached or
// rejected the upload.
var ErrUnavailable = errors.New("image hosting service unavailable")

type Client struct {
	apiURL string
	preset string
	folder string
	client *http.Client
}

// NewClient configures an uploader. folder scopes every upload so an
// external retention job can sweep blobs no post references.
func NewClient(apiURL, preset, folder string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		apiURL: apiURL,
		preset: preset,
		folder: folder,
		client: &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	SecureURL string `json:"secure_url"`
}

// Upload sends the file and returns its hosted URL.
func (c *Client) Upload(ctx context.Context, filename string, file io.Reader) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, file); err != nil {
		return "", err
	}
	if err := mw.WriteField("upload_preset", c.preset); err != nil {
		return "", err
	}
	if err := mw.WriteField("folder", c.folder); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.client.Do(req)
	if err != nil {
		log.Errorf("[uploader] request failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Errorf("[uploader] API returned status %d", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var ur uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&ur); err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if ur.SecureURL == "" {
		return "", fmt.Errorf("%w: empty secure_url", ErrUnavailable)
	}

	return ur.SecureURL, nil
}
