// Package remote is the HTTP client for the Pawkit entity service. It
// speaks the four-endpoint protocol the sync engine drives: create,
// precondition-guarded update, idempotent delete, and authoritative
// fetch for conflict resolution.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pawkit/pawkit/internal/model"
)

// PreconditionHeader carries the last-observed entity timestamp on
// updates, RFC 3339 with nanoseconds. The server rejects the write with
// 409/412 when its copy has a later timestamp.
const PreconditionHeader = "X-If-Unmodified-Since"

// Record is the server's representation of an entity: the canonical id,
// the server-side timestamp, and the full entity body to merge locally.
type Record struct {
	ID        string          `json:"id"`
	UpdatedAt time.Time       `json:"updated_at"`
	Entity    json.RawMessage `json:"entity"`
}

// createRequest wraps an entity payload with its type for POST /entities.
type createRequest struct {
	Type   model.EntityType `json:"type"`
	Entity json.RawMessage  `json:"entity"`
}

// Client is a thin HTTP client for the entity service. It handles bearer
// authentication, JSON marshaling, and maps status codes onto the sync
// error taxonomy. Every request is bounded by the client timeout;
// timeouts surface as NetworkError and the caller keeps the op queued.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a client for the entity service rooted at baseURL.
// An empty token disables the Authorization header.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Create posts a new entity and returns the canonical record, including
// the server-assigned id.
func (c *Client) Create(
	ctx context.Context,
	typ model.EntityType,
	entity json.RawMessage,
) (*Record, error) {
	body, err := json.Marshal(createRequest{Type: typ, Entity: entity})
	if err != nil {
		return nil, fmt.Errorf("marshaling create request: %w", err)
	}

	return c.doRecord(ctx, http.MethodPost, "/entities", "", body)
}

// Update patches an existing entity. The baseVersion timestamp rides the
// precondition header; a concurrent server-side edit yields ConflictError.
func (c *Client) Update(
	ctx context.Context,
	id string,
	entity json.RawMessage,
	baseVersion time.Time,
) (*Record, error) {
	precondition := baseVersion.UTC().Format(time.RFC3339Nano)
	return c.doRecord(ctx, http.MethodPatch, "/entities/"+id, precondition, entity)
}

// Get fetches the authoritative server copy, used during conflict
// resolution.
func (c *Client) Get(ctx context.Context, id string) (*Record, error) {
	return c.doRecord(ctx, http.MethodGet, "/entities/"+id, "", nil)
}

// Delete removes an entity remotely. A 404 means already deleted and is
// treated as success.
func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/entities/"+id, "", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	default:
		return c.statusError(resp, "")
	}
}

// doRecord performs a request expected to return a Record body.
func (c *Client) doRecord(
	ctx context.Context,
	method, path, precondition string,
	body []byte,
) (*Record, error) {
	resp, err := c.do(ctx, method, path, precondition, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, c.statusError(resp, strings.TrimPrefix(path, "/entities/"))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("reading response body: %w", err)}
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decoding entity record: %w", err)
	}
	return &record, nil
}

// do builds and sends one HTTP request. Transport failures and timeouts
// come back as NetworkError so callers can tell "retry later" from
// terminal rejections.
func (c *Client) do(
	ctx context.Context,
	method, path, precondition string,
	body []byte,
) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("building %s %s: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if precondition != "" {
		req.Header.Set(PreconditionHeader, precondition)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: fmt.Errorf("%s %s: %w", method, path, err)}
	}
	return resp, nil
}

// statusError maps a non-2xx response onto the error taxonomy.
func (c *Client) statusError(resp *http.Response, entityID string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	switch {
	case resp.StatusCode == http.StatusConflict ||
		resp.StatusCode == http.StatusPreconditionFailed:
		return &ConflictError{EntityID: entityID}
	case resp.StatusCode == http.StatusNotFound:
		return &NotFoundError{EntityID: entityID}
	case resp.StatusCode >= 500:
		// Server-side failures are retryable, same as a dropped
		// connection.
		return &NetworkError{Err: fmt.Errorf(
			"server error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))}
	default:
		return fmt.Errorf("remote rejected request with %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
}
