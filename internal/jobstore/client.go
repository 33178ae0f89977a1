// Package jobstore is the HTTP client for the Remote Job Store and its Auth API.
//
// Upstream routes:
//
//	GET    /api/jobs            → ordered job collection (bearer optional)
//	POST   /api/jobs            → create a job
//	DELETE /api/jobs/{id}       → delete a job (bearer)
//	POST   /api/auth/login      → {message, token?}
//	POST   /api/auth/register   → {message}
package jobstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"careerpage/portal-service/internal/model"
)

const defaultTimeout = 15 * time.Second

// Client talks to the Remote Job Store over a shared HTTP client.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient constructs a client for baseURL. A nil httpClient gets a client
// with the default timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  httpClient,
	}
}

// Credentials is the login/register payload.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResult is the Auth API answer. Token is empty for register and for
// logins the API declined without an error status.
type AuthResult struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// ─── Jobs ─────────────────────────────────────────────────────────────────────

// ListJobs fetches the complete job collection in server order. token may be
// empty for the public listing.
func (c *Client) ListJobs(ctx context.Context, token string) ([]model.Job, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/jobs", token, nil)
	if err != nil {
		return nil, err
	}
	jobs := make([]model.Job, 0)
	if err := json.Unmarshal(body, &jobs); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}
	return jobs, nil
}

// CreateJob posts a new job. The identifier is always left for the store to assign.
func (c *Client) CreateJob(ctx context.Context, job model.Job) (*model.Job, error) {
	job.ID = ""
	body, err := c.do(ctx, http.MethodPost, "/api/jobs", "", job)
	if err != nil {
		return nil, err
	}
	var created model.Job
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &created); err != nil {
			return nil, fmt.Errorf("decode created job: %w", err)
		}
	}
	return &created, nil
}

// DeleteJob removes the job with the given identifier.
func (c *Client) DeleteJob(ctx context.Context, token, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	_, err := c.do(ctx, http.MethodDelete, "/api/jobs/"+url.PathEscape(id), token, nil)
	return err
}

// ─── Auth ─────────────────────────────────────────────────────────────────────

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	return c.auth(ctx, "/api/auth/login", creds)
}

// Register creates an account. It never returns a token the portal keeps.
func (c *Client) Register(ctx context.Context, creds Credentials) (AuthResult, error) {
	return c.auth(ctx, "/api/auth/register", creds)
}

func (c *Client) auth(ctx context.Context, path string, creds Credentials) (AuthResult, error) {
	body, err := c.do(ctx, http.MethodPost, path, "", creds)
	if err != nil {
		return AuthResult{}, err
	}
	var res AuthResult
	if err := json.Unmarshal(body, &res); err != nil {
		return AuthResult{}, fmt.Errorf("decode auth response: %w", err)
	}
	return res, nil
}

// Ping checks that the store answers the public listing.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/api/jobs", "", nil)
	return err
}

// ─── Transport ────────────────────────────────────────────────────────────────

func (c *Client) do(ctx context.Context, method, path, token string, payload any) ([]byte, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("%w: job store url not configured", ErrUnavailable)
	}

	var reader io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// ─── Errors ───────────────────────────────────────────────────────────────────

var (
	// ErrUnavailable covers network and transport failures.
	ErrUnavailable = errors.New("job store unavailable")
	// ErrUnauthorized is returned for bad credentials and missing or expired tokens.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is returned when the addressed record has vanished.
	ErrNotFound = errors.New("job not found")
)

// APIError is an upstream rejection carrying the store's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("job store returned %d", e.Status)
	}
	return fmt.Sprintf("job store returned %d: %s", e.Status, e.Message)
}

// Unwrap lets callers match the taxonomy with errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func newAPIError(status int, body []byte) *APIError {
	var parsed errorResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		msg := parsed.Message
		if msg == "" {
			msg = parsed.Error
		}
		return &APIError{Status: status, Message: msg}
	}
	return &APIError{Status: status, Message: strings.TrimSpace(string(body))}
}

// MessageOf returns the upstream message carried by err, or fallback.
func MessageOf(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
