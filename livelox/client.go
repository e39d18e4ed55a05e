// Package livelox fetches orienteering maps and courses from Livelox.
//
// The usual sequence is:
//
//	c := livelox.NewClient()
//	info, err := c.ClassInfo(ctx, classID)
//	blob, err := c.ClassBlob(ctx, info.BlobURL())
//	img, err := c.FetchMap(ctx, blob.Map.URL)
//
// after which blob.Quadrilateral and blob.Routes feed a routemap.Renderer.
package livelox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gogpu/routemap"
	"github.com/gogpu/routemap/internal/imageio"
)

// DefaultBaseURL is the public Livelox site.
const DefaultBaseURL = "https://www.livelox.com"

// DefaultTimeout bounds every request of a client created without
// WithHTTPClient.
const DefaultTimeout = 30 * time.Second

// maxErrorBody is how much of a failed response is kept in a StatusError.
const maxErrorBody = 512

var (
	// ErrNoClassID is returned when a viewer URL has no classId parameter.
	ErrNoClassID = errors.New("livelox: no classId in URL")

	// ErrNoBlobURL is returned when ClassInfo names no class blob.
	ErrNoBlobURL = errors.New("livelox: no class blob URL in class info")

	// ErrMalformedBlob is returned when a class blob lacks the map data.
	ErrMalformedBlob = errors.New("livelox: malformed class blob")
)

// StatusError reports a non-2xx HTTP response.
type StatusError struct {
	Method string
	URL    string
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("livelox: %s %s: status %d", e.Method, e.URL, e.Status)
}

// ClassIDFromURL extracts the classId query parameter of a Livelox viewer URL.
func ClassIDFromURL(viewerURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(viewerURL))
	if err != nil {
		return "", fmt.Errorf("livelox: parse viewer URL: %w", err)
	}
	id := u.Query().Get("classId")
	if id == "" {
		return "", fmt.Errorf("%w: %q", ErrNoClassID, viewerURL)
	}
	return id, nil
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another Livelox host, e.g. a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(base, "/")
	}
}

// WithHTTPClient sets the HTTP client. Nil is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the timeout of the client's HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.http
		hc.Timeout = d
		c.http = &hc
	}
}

// Client talks to the Livelox JSON endpoints. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for DefaultBaseURL.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the host the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// ClassInfo looks up a class and returns where its data lives.
func (c *Client) ClassInfo(ctx context.Context, classID string) (*ClassInfo, error) {
	body, err := json.Marshal(newClassInfoRequest(classID))
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/Data/ClassInfo", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	setJSONHeaders(req)

	var info ClassInfo
	if err := c.doJSON(req, &info); err != nil {
		return nil, fmt.Errorf("class info %s: %w", classID, err)
	}
	if info.BlobURL() == "" {
		return nil, fmt.Errorf("class info %s: %w", classID, ErrNoBlobURL)
	}
	routemap.Logger().Debug("livelox: class info",
		slog.String("class", classID),
		slog.String("event", info.EventName()),
		slog.String("blob", info.BlobURL()))
	return &info, nil
}

// ClassBlob downloads the map and course data of a class.
func (c *Client) ClassBlob(ctx context.Context, blobURL string) (*ClassBlob, error) {
	if blobURL == "" {
		return nil, ErrNoBlobURL
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, blobURL, nil)
	if err != nil {
		return nil, err
	}
	setJSONHeaders(req)

	var blob ClassBlob
	if err := c.doJSON(req, &blob); err != nil {
		return nil, fmt.Errorf("class blob: %w", err)
	}
	if blob.Map.URL == "" {
		return nil, fmt.Errorf("%w: no map URL", ErrMalformedBlob)
	}
	routemap.Logger().Debug("livelox: class blob",
		slog.String("map", blob.Map.Name),
		slog.Float64("resolution", blob.Map.Resolution),
		slog.Int("courses", len(blob.Courses)))
	return &blob, nil
}

// FetchMap downloads and decodes a map image.
func (c *Client) FetchMap(ctx context.Context, mapURL string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mapURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.do(req)
	if err != nil {
		return nil, fmt.Errorf("map image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	img, format, err := imageio.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("map image: %w", err)
	}
	b := img.Bounds()
	routemap.Logger().Debug("livelox: map image",
		slog.String("format", format),
		slog.Int("width", b.Dx()),
		slog.Int("height", b.Dy()))
	return img, nil
}

// do sends req and turns non-2xx responses into a StatusError.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	routemap.Logger().Debug("livelox: request",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() { _ = resp.Body.Close() }()
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &StatusError{
			Method: req.Method,
			URL:    req.URL.String(),
			Status: resp.StatusCode,
			Body:   string(snippet),
		}
	}
	return resp, nil
}

func (c *Client) doJSON(req *http.Request, v any) error {
	resp, err := c.do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", req.URL, err)
	}
	return nil
}

func setJSONHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
}
