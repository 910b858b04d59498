// Package github provides the small slice of the GitHub REST API used to
// resolve refs to commits and download repository tarballs.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"
)

const (
	// DefaultBaseURL is the public GitHub REST endpoint.
	DefaultBaseURL = "https://api.github.com"

	apiVersion = "2022-11-28"

	// DefaultTimeout bounds API calls and each idle gap of a download.
	DefaultTimeout = 30 * time.Second

	// copyBufferSize bounds the memory used while streaming a tarball.
	copyBufferSize = 32 * 1024
)

// Client talks to the GitHub REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithBaseURL sets a custom base URL for the GitHub API (useful for testing).
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithToken sets the bearer token sent with every request. An empty token
// means unauthenticated requests.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithTimeout sets the overall limit of an API call and the longest a
// tarball download may go without receiving data.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// NewClient creates a new Client with the given options.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: NewHTTPClient(10*time.Second, DefaultTimeout),
		baseURL:    DefaultBaseURL,
		timeout:    DefaultTimeout,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// NewHTTPClient returns an HTTP client whose dial and TLS handshake are
// bounded by connectTimeout and whose wait for response headers is bounded
// by timeout. Bodies have no overall limit; the Client applies its own.
func NewHTTPClient(connectTimeout, timeout time.Duration) *http.Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DialContext = dialer.DialContext
	transport.TLSHandshakeTimeout = connectTimeout
	transport.ResponseHeaderTimeout = timeout

	return &http.Client{Transport: transport}
}

// BaseURL returns the API endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// IsGitHubURL reports whether repoURL is hosted on github.com.
func IsGitHubURL(repoURL string) bool {
	u, err := url.Parse(repoURL)
	if err != nil {
		return false
	}
	switch strings.ToLower(u.Hostname()) {
	case "github.com", "www.github.com":
		return true
	}
	return false
}

// ParseRepo extracts the owner and repository name from a GitHub URL.
func ParseRepo(repoURL string) (owner, repo string, err error) {
	u, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("invalid GitHub repo URL %s: %w", repoURL, err)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid GitHub repo URL: %s", repoURL)
	}

	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}

// commit is the subset of the commit response we read.
type commit struct {
	SHA string `json:"sha"`
}

// CommitSHA returns the commit SHA that ref currently points to. The whole
// call is bounded by the client timeout.
func (c *Client) CommitSHA(ctx context.Context, owner, repo, ref string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/repos/%s/%s/commits/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo), escapeRef(ref))

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", parseAPIError(resp.StatusCode, body)
	}

	var cm commit
	if err := json.Unmarshal(body, &cm); err != nil {
		return "", fmt.Errorf("failed to parse commit response: %w", err)
	}
	if cm.SHA == "" {
		return "", fmt.Errorf("commit response for %s/%s@%s has no sha", owner, repo, ref)
	}

	return cm.SHA, nil
}

// DownloadTarball streams the gzipped tarball of repo at revision into w and
// returns the number of bytes written. The download has no overall limit but
// fails once no data arrives for the client timeout.
func (c *Client) DownloadTarball(ctx context.Context, owner, repo, revision string, w io.Writer) (int64, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/tarball/%s", c.baseURL, url.PathEscape(owner), url.PathEscape(repo), escapeRef(revision))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return 0, parseAPIError(resp.StatusCode, body)
	}

	body := newIdleReader(resp.Body, c.timeout, cancel)
	defer body.stop()

	n, err := io.CopyBuffer(w, body, make([]byte, copyBufferSize))
	if err != nil {
		if body.expired() {
			return n, fmt.Errorf("failed to download tarball: no data received for %s", c.timeout)
		}
		return n, fmt.Errorf("failed to download tarball: %w", err)
	}

	return n, nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	return resp, nil
}

// escapeRef escapes each segment of a ref so names like release/v1 keep
// their slashes.
func escapeRef(ref string) string {
	segments := strings.Split(ref, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// apiError represents an error response from the GitHub API.
type apiError struct {
	Message          string `json:"message"`
	DocumentationURL string `json:"documentation_url"`
}

// parseAPIError parses a GitHub API error response.
func parseAPIError(statusCode int, body []byte) error {
	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Message == "" {
		return fmt.Errorf("API error (HTTP %d): %s", statusCode, strings.TrimSpace(string(body)))
	}

	switch statusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("unauthorized (HTTP %d): %s (check GITHUB_TOKEN)", statusCode, apiErr.Message)
	case http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Errorf("forbidden (HTTP %d): %s (rate limited? set GITHUB_TOKEN)", statusCode, apiErr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("not found (HTTP %d): %s (check repo and ref)", statusCode, apiErr.Message)
	default:
		return fmt.Errorf("API error (HTTP %d): %s", statusCode, apiErr.Message)
	}
}

// idleReader cancels the request once no Read has returned for idle.
type idleReader struct {
	r     io.Reader
	idle  time.Duration
	timer *time.Timer
	fired atomic.Bool
}

func newIdleReader(r io.Reader, idle time.Duration, cancel context.CancelFunc) *idleReader {
	ir := &idleReader{r: r, idle: idle}
	ir.timer = time.AfterFunc(idle, func() {
		ir.fired.Store(true)
		cancel()
	})
	return ir
}

func (r *idleReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if n > 0 {
		r.timer.Reset(r.idle)
	}
	return n, err
}

func (r *idleReader) stop() {
	r.timer.Stop()
}

func (r *idleReader) expired() bool {
	return r.fired.Load()
}
