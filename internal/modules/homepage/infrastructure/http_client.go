package infrastructure

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
)

// RESTClient wraps http.Client with base URL and bearer token handling shared by the HTTP adapters.
type RESTClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewRESTClient builds a client on a pooled transport. A nil client gets a fresh
// cleanhttp one so no state leaks through http.DefaultTransport.
func NewRESTClient(baseURL, token string, timeout time.Duration, client *http.Client) *RESTClient {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}
	client.Timeout = timeoutOrDefault(timeout)
	return &RESTClient{baseURL: trimmed, token: strings.TrimSpace(token), client: client}
}

func (c *RESTClient) NewRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *RESTClient) Do(req *http.Request) (*http.Response, error) {
	return c.client.Do(req)
}

func (c *RESTClient) BaseURL() string {
	return c.baseURL
}

func timeoutOrDefault(value time.Duration) time.Duration {
	if value <= 0 {
		return 10 * time.Second
	}
	return value
}
