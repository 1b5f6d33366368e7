// Package api implements the HTTP client for the Stockroom server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stockroom/pkg/api"
)

// Client is an HTTP client for the server API
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken sets the bearer token attached to subsequent requests
func (c *Client) SetToken(token string) {
	c.token = token
}

// Error is an API error decoded from the server's error body
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// Register registers a new user
func (c *Client) Register(ctx context.Context, req api.RegisterRequest) (*api.UserResponse, error) {
	var resp api.UserResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/auth/register", req, &resp); err != nil {
		return nil, fmt.Errorf("register request failed: %w", err)
	}
	return &resp, nil
}

// Login exchanges credentials for an access token.
// The server expects an OAuth2 password form.
func (c *Client) Login(ctx context.Context, username, password string) (*api.TokenResponse, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/auth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var resp api.TokenResponse
	if err := c.do(req, &resp); err != nil {
		return nil, fmt.Errorf("login request failed: %w", err)
	}
	return &resp, nil
}

// Me returns the authenticated user
func (c *Client) Me(ctx context.Context) (*api.UserResponse, error) {
	var resp api.UserResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/auth/me", nil, &resp); err != nil {
		return nil, fmt.Errorf("me request failed: %w", err)
	}
	return &resp, nil
}

// ListItems returns a page of all items
func (c *Client) ListItems(ctx context.Context, skip, limit int) (*api.PaginatedItems, error) {
	var resp api.PaginatedItems
	path := "/api/v1/items/?skip=" + strconv.Itoa(skip) + "&limit=" + strconv.Itoa(limit)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, fmt.Errorf("list items request failed: %w", err)
	}
	return &resp, nil
}

// MyItems returns the caller's items
func (c *Client) MyItems(ctx context.Context) ([]api.ItemResponse, error) {
	var resp []api.ItemResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/items/my-items", nil, &resp); err != nil {
		return nil, fmt.Errorf("my items request failed: %w", err)
	}
	return resp, nil
}

// GetItem fetches a single item
func (c *Client) GetItem(ctx context.Context, id int64) (*api.ItemResponse, error) {
	var resp api.ItemResponse
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/api/v1/items/%d", id), nil, &resp); err != nil {
		return nil, fmt.Errorf("get item request failed: %w", err)
	}
	return &resp, nil
}

// CreateItem creates an item owned by the caller
func (c *Client) CreateItem(ctx context.Context, req api.ItemCreateRequest) (*api.ItemResponse, error) {
	var resp api.ItemResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/v1/items/", req, &resp); err != nil {
		return nil, fmt.Errorf("create item request failed: %w", err)
	}
	return &resp, nil
}

// UpdateItem partially updates an item
func (c *Client) UpdateItem(ctx context.Context, id int64, req api.ItemUpdateRequest) (*api.ItemResponse, error) {
	var resp api.ItemResponse
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/api/v1/items/%d", id), req, &resp); err != nil {
		return nil, fmt.Errorf("update item request failed: %w", err)
	}
	return &resp, nil
}

// DeleteItem deletes an item
func (c *Client) DeleteItem(ctx context.Context, id int64) error {
	if err := c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/api/v1/items/%d", id), nil, nil); err != nil {
		return fmt.Errorf("delete item request failed: %w", err)
	}
	return nil
}

// doJSON performs a JSON request against the API
func (c *Client) doJSON(ctx context.Context, method, path string, body, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

// do sends the request, attaching the bearer token when present, and
// decodes the response into result
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := &Error{StatusCode: resp.StatusCode}
		var errBody api.ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errBody); err == nil && errBody.Message != "" {
			apiErr.Message = errBody.Message
		} else {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
