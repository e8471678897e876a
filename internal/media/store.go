// Package media uploads images (profile photos, auction item photos,
// payment proof screenshots) to an upstream media service and hands
// back the stored object's public identifier and URL. Callers treat an
// upload failure as fatal for the request that carried the file.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Object identifies a stored image.
type Object struct {
	PublicID string `json:"public_id"`
	URL      string `json:"url"`
}

// Store persists uploaded images.
type Store interface {
	Upload(ctx context.Context, folder, filename string, r io.Reader) (Object, error)
	Delete(ctx context.Context, publicID string) error
}

// HTTPStore talks to an upstream media service over multipart POST and
// expects an Object back as JSON.
type HTTPStore struct {
	baseURL string
	client  *http.Client
}

func NewHTTPStore(baseURL string) *HTTPStore {
	return &HTTPStore{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *HTTPStore) Upload(ctx context.Context, folder, filename string, r io.Reader) (Object, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := w.WriteField("folder", folder); err != nil {
		return Object{}, err
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return Object{}, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return Object{}, fmt.Errorf("read upload: %w", err)
	}
	if err := w.Close(); err != nil {
		return Object{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/upload", &buf)
	if err != nil {
		return Object{}, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return Object{}, fmt.Errorf("media upload: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Object{}, fmt.Errorf("media upload: upstream returned %s", resp.Status)
	}

	var obj Object
	if err := json.NewDecoder(resp.Body).Decode(&obj); err != nil {
		return Object{}, fmt.Errorf("media upload: decode response: %w", err)
	}
	if obj.PublicID == "" || obj.URL == "" {
		return Object{}, fmt.Errorf("media upload: upstream response incomplete")
	}
	return obj, nil
}

func (s *HTTPStore) Delete(ctx context.Context, publicID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.baseURL+"/media/"+publicID, nil)
	if err != nil {
		return err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("media delete: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("media delete: upstream returned %s", resp.Status)
	}
	return nil
}

// StubStore fabricates identifiers without storing bytes. Used in
// development when no media service is configured; the rest of the
// system behaves exactly as in production.
type StubStore struct{}

func (StubStore) Upload(_ context.Context, folder, _ string, r io.Reader) (Object, error) {
	// The body is drained so multipart handling matches production.
	if _, err := io.Copy(io.Discard, r); err != nil {
		return Object{}, err
	}
	id := folder + "/" + uuid.NewString()
	return Object{PublicID: id, URL: "https://media.invalid/" + id}, nil
}

func (StubStore) Delete(context.Context, string) error { return nil }
