package integration

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
)

// MockStripServer simulates the strip website and its asset host. Pages live
// at /strip/{date} and reference their image as
// data-image="//assets.amuniversal.com/{hash}"; images are served at /{hash}.
type MockStripServer struct {
	server         *httptest.Server
	requestCount   int32
	mu             sync.RWMutex
	missing        map[string]bool
	errorResponses map[string]int
	pageRequests   []string
	images         map[string]string // hash -> date
}

// NewMockStripServer creates a new mock strip server
func NewMockStripServer() *MockStripServer {
	m := &MockStripServer{
		missing:        make(map[string]bool),
		errorResponses: make(map[string]int),
		images:         make(map[string]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/strip/", m.handlePage)
	mux.HandleFunc("/", m.handleImage)

	m.server = httptest.NewServer(mux)
	return m
}

// ImageHash returns the asset name used for a date
func ImageHash(date string) string {
	sum := sha1.Sum([]byte(date))
	return hex.EncodeToString(sum[:16])
}

// StripData returns the bytes served for a date
func StripData(date string) []byte {
	return []byte("GIF89a-strip-" + date)
}

func (m *MockStripServer) handlePage(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)
	date := strings.TrimPrefix(r.URL.Path, "/strip/")

	m.mu.Lock()
	m.pageRequests = append(m.pageRequests, date)
	code := m.errorResponses[date]
	missing := m.missing[date]
	m.mu.Unlock()

	if code > 0 {
		w.WriteHeader(code)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if missing {
		fmt.Fprintf(w, `<html><head><title>Strip %s</title></head><body><div class="comic-item">Strip not available</div></body></html>`, date)
		return
	}

	hash := ImageHash(date)
	m.mu.Lock()
	m.images[hash] = date
	m.mu.Unlock()

	fmt.Fprintf(w, `<html><head><title>Strip %s</title></head>
<body>
<div class="comic-item-container" data-id="%s">
  <div class="img-comic-container">
    <a class="img-comic-link" href="/strip/%s">
      <img class="img-responsive img-comic" width="900" height="280" alt="Strip %s" data-image="//assets.amuniversal.com/%s">
    </a>
  </div>
</div>
</body></html>`, date, date, date, date, hash)
}

func (m *MockStripServer) handleImage(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.requestCount, 1)
	hash := strings.TrimPrefix(r.URL.Path, "/")

	m.mu.RLock()
	date, ok := m.images[hash]
	m.mu.RUnlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "image/gif")
	w.Write(StripData(date))
}

// SetMissing makes the page for date contain no image
func (m *MockStripServer) SetMissing(date string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.missing[date] = true
}

// SetErrorResponse makes the page for date answer with an HTTP error
func (m *MockStripServer) SetErrorResponse(date string, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorResponses[date] = code
}

// PageRequests returns the dates whose page was requested, in order
func (m *MockStripServer) PageRequests() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.pageRequests))
	copy(out, m.pageRequests)
	return out
}

// GetRequestCount returns the total number of requests made
func (m *MockStripServer) GetRequestCount() int {
	return int(atomic.LoadInt32(&m.requestCount))
}

// GetURL returns the mock server URL
func (m *MockStripServer) GetURL() string {
	return m.server.URL
}

// Close shuts down the mock server
func (m *MockStripServer) Close() {
	m.server.Close()
}

// Transport routes every request, whatever its host, to the mock server, so
// absolute asset URLs resolve locally.
func (m *MockStripServer) Transport() http.RoundTripper {
	target, _ := url.Parse(m.server.URL)
	return &rewriteTransport{target: target, next: http.DefaultTransport}
}

type rewriteTransport struct {
	target *url.URL
	next   http.RoundTripper
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.URL.Scheme = t.target.Scheme
	out.URL.Host = t.target.Host
	out.Host = t.target.Host
	return t.next.RoundTrip(out)
}
