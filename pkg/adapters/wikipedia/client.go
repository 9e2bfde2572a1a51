package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/aretw0/wikicard/pkg/buildinfo"
	"github.com/aretw0/wikicard/pkg/domain"
)

const (
	// DefaultBaseURL is the English Wikipedia REST API.
	DefaultBaseURL = "https://en.wikipedia.org/api/rest_v1"

	// DefaultContact is used when no contact address is configured.
	DefaultContact = "no-email-set"

	defaultTimeout = 10 * time.Second
)

var (
	// ErrNotFound is returned when the requested page does not exist.
	// It matches domain.ErrNotFound, as required by ports.ArticleSource.
	ErrNotFound = fmt.Errorf("page %w", domain.ErrNotFound)

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, non-200 responses).
	ErrNetwork = errors.New("network error")
)

// UserAgent builds the identifying client header:
// "wikicard/<version> (<contact>) go-http-client/<go version>".
func UserAgent(contact string) string {
	if strings.TrimSpace(contact) == "" {
		contact = DefaultContact
	}
	return fmt.Sprintf("%s/%s (%s) go-http-client/%s",
		buildinfo.Name, buildinfo.Version, contact, strings.TrimPrefix(runtime.Version(), "go"))
}

// Client fetches page summaries.
type Client struct {
	http    *http.Client
	baseURL string
	headers map[string]string
}

// Option configures the Client.
type Option func(*Client)

// WithBaseURL overrides the API root (used by tests and other language editions).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient injects a custom HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.headers["User-Agent"] = ua
	}
}

// NewClient creates a Client identifying itself with the given contact address.
func NewClient(contact string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: defaultTimeout},
		baseURL: DefaultBaseURL,
		headers: map[string]string{
			"User-Agent": UserAgent(contact),
			"Accept":     "application/json",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UserAgent returns the header value sent with every request.
func (c *Client) UserAgent() string {
	return c.headers["User-Agent"]
}

// Random fetches a random page summary.
func (c *Client) Random(ctx context.Context) (*domain.Article, error) {
	var data summaryResponse
	if err := c.get(ctx, c.baseURL+"/page/random/summary", &data); err != nil {
		return nil, err
	}
	return data.toArticle(), nil
}

// ByTitle fetches the summary of a named page.
func (c *Client) ByTitle(ctx context.Context, title string) (*domain.Article, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("%w: empty title", ErrNotFound)
	}

	// The REST API expects underscores for spaces in page titles.
	escaped := url.PathEscape(strings.ReplaceAll(title, " ", "_"))

	var data summaryResponse
	if err := c.get(ctx, c.baseURL+"/page/summary/"+escaped, &data); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", err, title)
		}
		return nil, err
	}
	return data.toArticle(), nil
}

func (c *Client) get(ctx context.Context, endpoint string, v any) error {
	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: decode summary: %w", ErrNetwork, err)
	}
	return nil
}

func (c *Client) doRequest(ctx context.Context, endpoint string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}

type summaryResponse struct {
	PageID        int64         `json:"pageid"`
	Title         string        `json:"title"`
	Extract       string        `json:"extract"`
	ExtractHTML   string        `json:"extract_html"`
	OriginalImage *imagePayload `json:"originalimage,omitempty"`
	Thumbnail     *imagePayload `json:"thumbnail,omitempty"`
}

type imagePayload struct {
	Source string `json:"source"`
	Width  uint   `json:"width"`
	Height uint   `json:"height"`
}

func (r summaryResponse) toArticle() *domain.Article {
	a := &domain.Article{
		ID:           strconv.FormatInt(r.PageID, 10),
		Title:        r.Title,
		ExtractPlain: r.Extract,
		ExtractHTML:  r.ExtractHTML,
	}

	img := r.OriginalImage
	if img == nil {
		img = r.Thumbnail
	}
	if img != nil && img.Source != "" {
		a.Image = &domain.Image{URL: img.Source, Width: img.Width, Height: img.Height}
	}
	return a
}
