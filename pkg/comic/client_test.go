package comic

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"comicdl/pkg/config"
	cerrors "comicdl/pkg/errors"
	"comicdl/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stripDate = time.Date(1989, time.April, 16, 0, 0, 0, 0, time.UTC)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func newResponse(statusCode int, body string) *http.Response {
	return &http.Response{
		StatusCode: statusCode,
		Body:       io.NopCloser(bytes.NewBufferString(body)),
		Header:     make(http.Header),
	}
}

func TestPageURL(t *testing.T) {
	client := NewClient("http://dilbert.com/strip/", time.Second, nil, logger.NewNopLogger())
	assert.Equal(t, "http://dilbert.com/strip/1989-04-16", client.PageURL(stripDate))

	// The base is used verbatim, without adding a separator
	client = NewClient("http://example.com/comics/day-", time.Second, nil, logger.NewNopLogger())
	assert.Equal(t, "http://example.com/comics/day-1989-04-16", client.PageURL(stripDate))

	client = NewClient("http://example.com/?d", time.Second, nil, logger.NewNopLogger())
	assert.Equal(t, "http://example.com/?d1989-04-16", client.PageURL(stripDate))

	client = NewClient("http://example.com/?date=", time.Second, nil, logger.NewNopLogger())
	assert.Equal(t, "http://example.com/?date=1989-04-16", client.PageURL(stripDate))
}

func TestNewClientDefaults(t *testing.T) {
	log := logger.NewTestLogger()
	client := NewClient("", 30*time.Second, nil, log)

	assert.Equal(t, DefaultBaseURL, client.baseURL)
	assert.Equal(t, config.RuleAttribute, client.Extractor().Name())
	assert.Equal(t, 30*time.Second, client.httpClient.Timeout)
	assert.NotEmpty(t, client.headers["User-Agent"])
}

func TestNewClientFromConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Comic.Rule = "direct"
	cfg.Comic.UserAgent = "comicdl-test"

	client, err := NewClientFromConfig(cfg, logger.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, config.RuleDirect, client.Extractor().Name())
	assert.Equal(t, "comicdl-test", client.headers["User-Agent"])

	cfg.Comic.Rule = "bogus"
	_, err = NewClientFromConfig(cfg, logger.NewNopLogger())
	assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeConfig))
}

func TestFetchImageURL(t *testing.T) {
	var requested []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = append(requested, r.URL.Path)
		assert.Equal(t, "comicdl-test", r.Header.Get("User-Agent"))

		switch r.URL.Path {
		case "/strip/1989-04-16":
			w.Write([]byte(`<img data-image="//assets.amuniversal.com/abc123" />`))
		case "/strip/1989-04-17":
			w.Write([]byte(`<p>Strip unavailable</p>`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient(server.URL+"/strip/", 5*time.Second, AttributeExtractor(), logger.NewNopLogger())
	client.SetHeader("User-Agent", "comicdl-test")

	t.Run("found", func(t *testing.T) {
		found, url, err := client.FetchImageURL(context.Background(), stripDate)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "https://assets.amuniversal.com/abc123", url)
	})

	t.Run("not found in page", func(t *testing.T) {
		found, url, err := client.FetchImageURL(context.Background(), stripDate.AddDate(0, 0, 1))
		require.NoError(t, err)
		assert.False(t, found)
		assert.Empty(t, url)
	})

	t.Run("page missing", func(t *testing.T) {
		_, _, err := client.FetchImageURL(context.Background(), stripDate.AddDate(0, 0, 2))
		require.Error(t, err)
		assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeNotFound))
	})

	assert.Equal(t, []string{"/strip/1989-04-16", "/strip/1989-04-17", "/strip/1989-04-18"}, requested)
}

func TestFetchPageErrorsAreNotRetried(t *testing.T) {
	calls := 0
	client := NewClient("http://strips.test/", 5*time.Second, nil, logger.NewNopLogger())
	client.httpClient = &http.Client{Transport: &mockRoundTripper{handler: func(req *http.Request) (*http.Response, error) {
		calls++
		return newResponse(http.StatusServiceUnavailable, "try later"), nil
	}}}

	_, err := client.FetchPage(context.Background(), stripDate)

	require.Error(t, err)
	assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeServerError))
	assert.Equal(t, 1, calls)
}

func TestFetchPageTransportError(t *testing.T) {
	client := NewClient("http://strips.test/", 5*time.Second, nil, logger.NewNopLogger())
	client.httpClient = &http.Client{Transport: &mockRoundTripper{handler: func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}}}

	_, err := client.FetchPage(context.Background(), stripDate)

	require.Error(t, err)
	assert.True(t, cerrors.IsType(err, cerrors.ErrorTypeNetwork))
}

func TestDownloadImage(t *testing.T) {
	gif := []byte("GIF89a....")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/abc123" {
			w.Header().Set("Content-Type", "image/gif")
			w.Write(gif)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", 5*time.Second, nil, logger.NewNopLogger())

	body, size, err := client.DownloadImage(context.Background(), server.URL+"/abc123")
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, gif, data)
	assert.Equal(t, int64(len(gif)), size)

	_, _, err = client.DownloadImage(context.Background(), server.URL+"/private")
	require.Error(t, err)
	var typed *cerrors.Error
	require.ErrorAs(t, err, &typed)
	assert.Equal(t, http.StatusForbidden, typed.Code)
}

func TestRequestsAreLogged(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	log := logger.NewTestLogger()
	client := NewClient(server.URL+"/", 5*time.Second, nil, log)

	_, err := client.FetchPage(context.Background(), stripDate)
	require.Error(t, err)

	assert.True(t, log.HasMessage("sending HTTP request"))
	assert.True(t, log.HasMessage("HTTP request server error"))
}

func TestFetchPageHonoursContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("never read"))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", 5*time.Second, nil, logger.NewNopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchPage(ctx, stripDate)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
