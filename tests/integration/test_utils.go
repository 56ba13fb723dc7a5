package integration

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"comicdl/pkg/comic"
	"comicdl/pkg/config"
	"comicdl/pkg/logger"
	"comicdl/pkg/scraper"
	"comicdl/pkg/ui"

	"github.com/stretchr/testify/require"
)

// TestHelper provides common test utilities
type TestHelper struct {
	t          *testing.T
	mockServer *MockStripServer
	tempDir    string
	today      time.Time
	log        *logger.TestLogger
	output     bytes.Buffer
}

// NewTestHelper creates a new test helper with its own mock server and
// temporary folder. "today" defaults to 1989-04-18.
func NewTestHelper(t *testing.T) *TestHelper {
	h := &TestHelper{
		t:          t,
		mockServer: NewMockStripServer(),
		tempDir:    t.TempDir(),
		today:      time.Date(1989, time.April, 18, 9, 0, 0, 0, time.Local),
		log:        logger.NewTestLogger(),
	}
	t.Cleanup(h.mockServer.Close)
	return h
}

// Server returns the mock strip server
func (h *TestHelper) Server() *MockStripServer {
	return h.mockServer
}

// SetToday changes the date the runs consider "today"
func (h *TestHelper) SetToday(y int, m time.Month, d int) {
	h.today = time.Date(y, m, d, 12, 0, 0, 0, time.Local)
}

// Output returns everything the runs printed
func (h *TestHelper) Output() string {
	return h.output.String()
}

// Logger returns the captured logger
func (h *TestHelper) Logger() *logger.TestLogger {
	return h.log
}

// CreateTempSubDir creates a subdirectory in the temp directory
func (h *TestHelper) CreateTempSubDir(name string) string {
	dir := filepath.Join(h.tempDir, name)
	require.NoError(h.t, os.MkdirAll(dir, 0755))
	return dir
}

// CreateTestConfig creates a configuration that keeps the production base
// URL and extraction rule; the mock transport serves every host.
func (h *TestHelper) CreateTestConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Output.SaveFolder = h.CreateTempSubDir("comics")
	cfg.Download.Count = config.CountAll
	cfg.Download.Timeout = 5 * time.Second
	cfg.Download.AutoClose = true
	return cfg
}

// Run performs one full download run against the mock server
func (h *TestHelper) Run(cfg *config.Config) (scraper.Result, error) {
	require.NoError(h.t, cfg.Validate())

	client, err := comic.NewClientFromConfig(cfg, h.log)
	require.NoError(h.t, err)
	client.SetTransport(h.mockServer.Transport())

	console := ui.NewConsole(&h.output, strings.NewReader(""))
	console.SetColor(false)

	today := h.today
	s, err := scraper.New(context.Background(), cfg,
		scraper.WithClient(client),
		scraper.WithClock(func() time.Time { return today }),
		scraper.WithConsole(console),
		scraper.WithLogger(h.log),
	)
	require.NoError(h.t, err)
	defer s.Close()

	return s.Run(context.Background())
}

// StripFile returns the expected path of a strip
func StripFile(root, date string) string {
	return filepath.Join(root, date[:4], "Comic "+date+".gif")
}

// WriteStrip places a strip file as if a previous run downloaded it
func (h *TestHelper) WriteStrip(root, date string, data []byte) {
	path := StripFile(root, date)
	require.NoError(h.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(h.t, os.WriteFile(path, data, 0644))
}
