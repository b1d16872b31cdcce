// Package testiny implements the tms.Client interface for the
// Testiny (https://www.testiny.io/) test management system.
package testiny

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"casectl/logger"
	"casectl/testcase"
	"casectl/tms"
)

// DefaultBaseURL is the production Testiny API endpoint.
const DefaultBaseURL = "https://app.testiny.io/api/v1"

const contentType = "application/json"

// defaultTimeout bounds every remote call. Exceeding it is reported like
// any other remote failure, never retried.
const defaultTimeout = 10 * time.Second

// Client talks to the Testiny v1 REST API. It owns all network I/O and the
// translation between the local field vocabulary and the remote schema.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	ownerUserID int
	log         logger.Logger
}

// NewClient creates a Testiny client from its credentials. Recognized keys:
// "api_key" (required), "url" (optional, defaults to the production API),
// "owner_user_id" (required for create and update, resolvable via
// ResolveOwner), "timeout_seconds" (optional).
func NewClient(credentials map[string]string) (*Client, error) {
	apiKey, ok := credentials["api_key"]
	if !ok || apiKey == "" {
		return nil, fmt.Errorf("testiny: api_key is required")
	}

	baseURL := credentials["url"]
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")

	ownerUserID := 0
	if raw, ok := credentials["owner_user_id"]; ok && raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("testiny: invalid owner_user_id %q: %w", raw, err)
		}
		ownerUserID = parsed
	}

	timeout := defaultTimeout
	if raw, ok := credentials["timeout_seconds"]; ok && raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return nil, fmt.Errorf("testiny: invalid timeout_seconds %q", raw)
		}
		timeout = time.Duration(seconds) * time.Second
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     baseURL,
		apiKey:      apiKey,
		ownerUserID: ownerUserID,
		log:         logger.NewNop(),
	}, nil
}

// WithLogger sets the logger used for request tracing and returns the client.
func (c *Client) WithLogger(log logger.Logger) *Client {
	c.log = log
	return c
}

func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("testiny: failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	url := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("testiny: failed to create request: %w", err)
	}

	req.Header.Set("Accept", contentType)
	req.Header.Set("X-Api-Key", c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	c.log.Debug(ctx, "testiny request", map[string]interface{}{
		"method": method,
		"url":    url,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("testiny: request failed: %w", err)
	}
	return resp, nil
}

// checkStatus maps a non-2xx response to the error taxonomy. The body is
// consumed only on failure.
func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusForbidden:
		return tms.ErrAuth
	case resp.StatusCode == http.StatusNotFound:
		return tms.ErrNotFound
	case resp.StatusCode == http.StatusConflict, resp.StatusCode == http.StatusPreconditionFailed:
		return tms.ErrConflict
	default:
		body, _ := io.ReadAll(resp.Body)
		return &tms.APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}
}

// FindByTitle searches all given projects for test cases with an exactly
// matching title, in one batched request.
func (c *Client) FindByTitle(ctx context.Context, title string, projectIDs []int) ([]tms.Match, error) {
	reqBody := map[string]interface{}{
		"filter": map[string]interface{}{
			"title":      title,
			"project_id": projectIDs,
		},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/testcase/find", reqBody)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("testiny: find by title failed: %w", err)
	}

	var result struct {
		Data []tms.Match `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("testiny: failed to decode find response: %w", err)
	}

	return result.Data, nil
}

// Create submits a new test case and returns the remote-assigned id.
// Calling it twice creates two separate remote records.
func (c *Client) Create(ctx context.Context, projectID int, tc *testcase.TestCase) (int, error) {
	if c.ownerUserID == 0 {
		return 0, fmt.Errorf("testiny: owner_user_id is not configured: %w", tms.ErrNoOwner)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/testcase", toWire(projectID, tc, c.ownerUserID))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return 0, fmt.Errorf("testiny: create failed: %w", err)
	}

	var created struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return 0, fmt.Errorf("testiny: failed to decode create response: %w", err)
	}

	return created.ID, nil
}

// Update overwrites an existing test case. The etag must match the record's
// current version; a stale token surfaces as tms.ErrConflict with no retry.
func (c *Client) Update(ctx context.Context, projectID, id int, tc *testcase.TestCase, etag string) (string, error) {
	if c.ownerUserID == 0 {
		return "", fmt.Errorf("testiny: owner_user_id is not configured: %w", tms.ErrNoOwner)
	}

	payload := toWire(projectID, tc, c.ownerUserID)
	payload.ETag = etag

	resp, err := c.doRequest(ctx, http.MethodPut, fmt.Sprintf("/testcase/%d", id), payload)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", fmt.Errorf("testiny: update failed: %w", err)
	}

	var updated struct {
		ID   int    `json:"id"`
		ETag string `json:"_etag"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&updated); err != nil {
		return "", fmt.Errorf("testiny: failed to decode update response: %w", err)
	}

	return updated.ETag, nil
}

// Read fetches a single test case by id, splitting the flattened text
// fields back into lists.
func (c *Client) Read(ctx context.Context, id int) (*tms.RemoteTestCase, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/testcase/%d", id), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("testiny: read failed: %w", err)
	}

	var w wireTestCaseResponse
	if err := json.NewDecoder(resp.Body).Decode(&w); err != nil {
		return nil, fmt.Errorf("testiny: failed to decode test case: %w", err)
	}

	return fromWire(&w), nil
}

// FindProjectID resolves a remote project name to its id.
func (c *Client) FindProjectID(ctx context.Context, name string) (int, error) {
	reqBody := map[string]interface{}{
		"filter": map[string]interface{}{"name": name},
		"idOnly": true,
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/project/find", reqBody)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return 0, fmt.Errorf("testiny: find project failed: %w", err)
	}

	var result struct {
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
		Data []struct {
			ID int `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("testiny: failed to decode project response: %w", err)
	}

	if result.Meta.Count == 0 || len(result.Data) == 0 {
		return 0, fmt.Errorf("%w: %q", tms.ErrProjectNotFound, name)
	}

	return result.Data[0].ID, nil
}

// ResolveOwner returns the user id associated with the configured API key.
func (c *Client) ResolveOwner(ctx context.Context) (int, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/account/me", nil)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return 0, fmt.Errorf("testiny: resolve owner failed: %w", err)
	}

	var account struct {
		UserID int    `json:"userId"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&account); err != nil {
		return 0, fmt.Errorf("testiny: failed to decode account response: %w", err)
	}

	// The endpoint answers 200 with an error key for an unknown key.
	if account.Error != "" || account.UserID == 0 {
		return 0, tms.ErrNoOwner
	}

	return account.UserID, nil
}

// ValidateConnection checks that the configured API key is accepted.
func (c *Client) ValidateConnection(ctx context.Context) error {
	_, err := c.ResolveOwner(ctx)
	return err
}
