package comic

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"comicdl/pkg/config"
	cerrors "comicdl/pkg/errors"
	"comicdl/pkg/logger"
)

// Client fetches strip pages and images over HTTP. Every call makes exactly
// one request; failures are returned, never retried.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	extractor  *Extractor
	logger     logger.Logger
}

// NewClient creates a new strip client
func NewClient(baseURL string, timeout time.Duration, extractor *Extractor, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if extractor == nil {
		extractor = AttributeExtractor()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
		},
		baseURL:   baseURL,
		extractor: extractor,
		logger:    log,
	}
}

// NewClientFromConfig builds a client from the comic and download settings
func NewClientFromConfig(cfg *config.Config, log logger.Logger) (*Client, error) {
	extractor, err := ExtractorForRule(cfg.Comic.Rule, cfg.Comic.ImagePattern, cfg.Comic.ImagePrefix)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrorTypeConfig, err, "failed to build extraction rule")
	}

	client := NewClient(cfg.Comic.BaseURL, cfg.Download.Timeout, extractor, log)
	if cfg.Comic.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Comic.UserAgent)
	}
	return client, nil
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetTransport replaces the HTTP transport, e.g. to route through a proxy
func (c *Client) SetTransport(rt http.RoundTripper) {
	c.httpClient.Transport = rt
}

// Extractor returns the active extraction rule
func (c *Client) Extractor() *Extractor {
	return c.extractor
}

// PageURL returns the strip page URL for a date
func (c *Client) PageURL(date time.Time) string {
	return PageURL(c.baseURL, date)
}

// get performs one GET and maps transport errors and non-2xx statuses to
// typed errors. The caller closes the body on success.
func (c *Client) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, cerrors.Wrap(cerrors.ErrorTypeUnknown, err, "failed to create request")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending HTTP request", map[string]interface{}{
		"method": req.Method,
		"url":    url,
	})

	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)
	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, cerrors.Wrap(cerrors.ErrorTypeNetwork, err, "request to "+url+" failed")
	}

	logger.LogRequest(c.logger, req.Method, url, resp.StatusCode, duration)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, cerrors.FromStatusCode(resp.StatusCode, url)
	}
	return resp, nil
}

// FetchPage retrieves the strip page for a date
func (c *Client) FetchPage(ctx context.Context, date time.Time) (string, error) {
	url := c.PageURL(date)

	resp, err := c.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", cerrors.Wrap(cerrors.ErrorTypeNetwork, err, "failed to read page body")
	}
	return string(body), nil
}

// FetchImageURL retrieves the page for a date and extracts the absolute
// image URL. found is false when the page does not contain the pattern.
func (c *Client) FetchImageURL(ctx context.Context, date time.Time) (found bool, imageURL string, err error) {
	page, err := c.FetchPage(ctx, date)
	if err != nil {
		return false, "", fmt.Errorf("fetch page for %s: %w", date.Format(config.DateLayout), err)
	}

	imageURL, found = c.extractor.Extract(page)
	c.logger.DebugWithFields("image URL extraction", map[string]interface{}{
		"date":  date.Format(config.DateLayout),
		"rule":  c.extractor.Name(),
		"found": found,
		"url":   imageURL,
	})
	return found, imageURL, nil
}

// DownloadImage starts the image download. The caller must close the body.
// size is -1 when the server does not announce a length.
func (c *Client) DownloadImage(ctx context.Context, imageURL string) (body io.ReadCloser, size int64, err error) {
	resp, err := c.get(ctx, imageURL)
	if err != nil {
		return nil, 0, fmt.Errorf("download image: %w", err)
	}
	return resp.Body, resp.ContentLength, nil
}
