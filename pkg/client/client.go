// Package client provides a typed HTTP client for the NoteManager remote
// APIs: the note collection under /api/notes and the auth endpoints under
// /api/auth.
//
// The client keeps the bearer credential obtained from SignIn and
// attaches it to every subsequent request. It performs no retries and
// enforces no deadline beyond the transport's 30-second timeout; failure
// policy is decided by the callers (see the session and notes packages).
//
// Client instances are safe for concurrent use by multiple goroutines.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/notemanager/notesync/pkg/models"
)

// Client provides strongly-typed access to the NoteManager REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	authToken string
}

// New creates a client for the API server at baseURL. The baseURL should
// include protocol and host (e.g. "http://localhost:5000") without a
// trailing slash or path prefix.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken sets the bearer credential attached to subsequent requests.
// An empty token clears it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

// doRequest performs an HTTP request with proper headers.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	c.mu.RLock()
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}
	c.mu.RUnlock()

	return c.httpClient.Do(req)
}

// decodeResponse decodes the JSON response into the target struct, or
// returns an *APIError for any 4xx/5xx status.
func decodeResponse(resp *http.Response, target any) error {
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return newAPIError(resp)
	}

	if target != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// ListNotes fetches the full note collection for the authenticated user,
// ordered by creation time descending.
func (c *Client) ListNotes(ctx context.Context) ([]models.Note, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/api/notes", nil)
	if err != nil {
		return nil, err
	}

	var result []models.Note
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return result, nil
}

// CreateNote stores a new note. The note carries its client-generated ID.
func (c *Client) CreateNote(ctx context.Context, note models.Note) (*models.Note, error) {
	resp, err := c.doRequest(ctx, http.MethodPost, "/api/notes", note)
	if err != nil {
		return nil, err
	}

	var result models.Note
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// statusUpdate is the partial note document sent by UpdateNoteStatus.
type statusUpdate struct {
	Status models.NoteStatus `json:"status"`
}

// UpdateNoteStatus replaces the status of the note with the given ID.
func (c *Client) UpdateNoteStatus(ctx context.Context, noteID string, status models.NoteStatus) (*models.Note, error) {
	resp, err := c.doRequest(ctx, http.MethodPut, "/api/notes/"+noteID, statusUpdate{Status: status})
	if err != nil {
		return nil, err
	}

	var result models.Note
	if err := decodeResponse(resp, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// DeleteNote removes the note with the given ID from the remote store.
func (c *Client) DeleteNote(ctx context.Context, noteID string) error {
	resp, err := c.doRequest(ctx, http.MethodDelete, "/api/notes/"+noteID, nil)
	if err != nil {
		return err
	}

	return decodeResponse(resp, nil)
}
