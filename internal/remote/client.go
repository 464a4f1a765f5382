package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"taskpad/internal/model"
)

const DefaultLimit = 50

// Client reads the task list from the remote source. The source is read-only;
// there is no write endpoint, no retry and no timeout beyond what the caller's
// context imposes.
type Client struct {
	baseURL string
	limit   int
	httpc   *http.Client
}

func NewClient(baseURL string, limit int) *Client {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Client{
		baseURL: baseURL,
		limit:   limit,
		httpc:   http.DefaultClient,
	}
}

// SetHTTPClient replaces the underlying HTTP client. Tests use this to point
// the client at an httptest server.
func (c *Client) SetHTTPClient(h *http.Client) {
	if h != nil {
		c.httpc = h
	}
}

func (c *Client) FetchTasks(ctx context.Context) ([]model.Task, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	q := u.Query()
	q.Set("_limit", strconv.Itoa(c.limit))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch tasks: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("fetch tasks: remote returned status %d", res.StatusCode)
	}

	var tasks []model.Task
	if err := json.NewDecoder(res.Body).Decode(&tasks); err != nil {
		return nil, fmt.Errorf("fetch tasks: decode response: %w", err)
	}
	return tasks, nil
}
