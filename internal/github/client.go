// Package github lists and reads repository files through the GitHub REST
// API (git trees) and the raw content host.
package github

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"depchain/internal/logging"
	"depchain/internal/version"
)

const (
	// DefaultAPIBaseURL is the public GitHub REST endpoint
	DefaultAPIBaseURL = "https://api.github.com"

	// DefaultRawBaseURL serves file contents by owner/repo/branch/path
	DefaultRawBaseURL = "https://raw.githubusercontent.com"

	// DefaultTimeout bounds a single request
	DefaultTimeout = 15 * time.Second

	// DefaultMaxFileSize caps a fetched file body (2 MiB)
	DefaultMaxFileSize int64 = 2 << 20

	// maxTreeSize caps the tree listing body
	maxTreeSize int64 = 64 << 20
)

// ErrNotFound is returned by FetchContent when the raw host answers 404.
var ErrNotFound = stderrors.New("file not found")

// StatusError reports a non-success HTTP status.
type StatusError struct {
	StatusCode int
	URL        string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("github: %s returned %d: %s", e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github: %s returned %d", e.URL, e.StatusCode)
}

// IsRateLimited reports whether the status indicates an exhausted rate limit.
// GitHub answers 403 for both missing permissions and primary rate limits, so
// a 403 only counts when its message says so.
func (e *StatusError) IsRateLimited() bool {
	switch e.StatusCode {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return strings.Contains(strings.ToLower(e.Message), "rate limit")
	}
	return false
}

// Options configures a Client. Zero values take the defaults above.
type Options struct {
	APIBaseURL       string
	RawBaseURL       string
	Token            string
	Timeout          time.Duration
	MaxFileSizeBytes int64

	// RequestsPerSecond throttles all requests of the client; zero disables
	RequestsPerSecond float64

	// HTTPClient overrides the transport; Timeout is ignored when set
	HTTPClient *http.Client
}

// Client talks to GitHub. It does not retry.
type Client struct {
	apiBase     string
	rawBase     string
	token       string
	maxFileSize int64
	http        *http.Client
	limiter     *rate.Limiter
	logger      *logging.Logger
}

// NewClient creates a Client.
func NewClient(opts Options, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Nop()
	}
	if opts.APIBaseURL == "" {
		opts.APIBaseURL = DefaultAPIBaseURL
	}
	if opts.RawBaseURL == "" {
		opts.RawBaseURL = DefaultRawBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxFileSizeBytes <= 0 {
		opts.MaxFileSizeBytes = DefaultMaxFileSize
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.Timeout}
	}
	var limiter *rate.Limiter
	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
	}
	return &Client{
		apiBase:     strings.TrimRight(opts.APIBaseURL, "/"),
		rawBase:     strings.TrimRight(opts.RawBaseURL, "/"),
		token:       opts.Token,
		maxFileSize: opts.MaxFileSizeBytes,
		http:        hc,
		limiter:     limiter,
		logger:      logger,
	}
}

// treeResponse is the subset of the git trees payload we read.
type treeResponse struct {
	SHA  string `json:"sha"`
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
		Size int64  `json:"size"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

// ListFiles returns every blob path of the repository at repo.Branch, in
// the order GitHub lists them.
func (c *Client) ListFiles(ctx context.Context, repo Repo) ([]string, error) {
	u := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s?recursive=1",
		c.apiBase, url.PathEscape(repo.Owner), url.PathEscape(repo.Name), escapeSegments(repo.branch()))

	body, err := c.get(ctx, u, "application/vnd.github+json", maxTreeSize)
	if err != nil {
		return nil, err
	}

	var tree treeResponse
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("github: decoding tree for %s: %w", repo, err)
	}
	if tree.Truncated {
		c.logger.Warn("Repository tree listing was truncated", map[string]interface{}{
			"repo":    repo.String(),
			"entries": len(tree.Tree),
		})
	}

	files := make([]string, 0, len(tree.Tree))
	for _, entry := range tree.Tree {
		if entry.Type == "blob" {
			files = append(files, entry.Path)
		}
	}

	c.logger.Debug("Listed repository tree", map[string]interface{}{
		"repo":  repo.String(),
		"files": len(files),
	})
	return files, nil
}

// FetchContent returns the text of one file. A missing file yields ErrNotFound.
func (c *Client) FetchContent(ctx context.Context, repo Repo, filePath string) (string, error) {
	u := fmt.Sprintf("%s/%s/%s/%s/%s",
		c.rawBase, url.PathEscape(repo.Owner), url.PathEscape(repo.Name), escapeSegments(repo.branch()),
		escapeSegments(strings.TrimPrefix(filePath, "/")))

	body, err := c.get(ctx, u, "", c.maxFileSize)
	if err != nil {
		var se *StatusError
		if stderrors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return "", fmt.Errorf("%s: %w", filePath, ErrNotFound)
		}
		return "", err
	}
	return string(body), nil
}

// escapeSegments escapes each slash-separated segment of p, keeping the
// slashes. Branch names and file paths both may contain them.
func escapeSegments(p string) string {
	segments := strings.Split(p, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

// get performs a GET and returns at most limit bytes of the body. A body
// larger than limit is an error rather than a silent truncation.
func (c *Client) get(ctx context.Context, u, accept string, limit int64) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("github: creating request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("github: reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			URL:        u,
			Message:    errorMessage(data),
		}
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("github: %s exceeds %d bytes", u, limit)
	}
	return data, nil
}

// errorMessage pulls the "message" field out of a GitHub error body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	msg := strings.TrimSpace(string(body))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}
