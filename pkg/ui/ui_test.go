package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestConsole(input string) (*Console, *bytes.Buffer) {
	var out bytes.Buffer
	c := NewConsole(&out, strings.NewReader(input))
	c.SetColor(false)
	return c, &out
}

func TestConsoleOutput(t *testing.T) {
	c, out := newTestConsole("")

	c.PrintInfo("Save folder", "/comics")
	c.Downloading("Comic 1989-04-16")
	c.Done()
	c.Downloading("Comic 1989-04-17")
	c.Failed()
	c.PrintWarning("Can't find image for 1989-04-18")
	c.PrintError("Run failed", assertErr("boom"))
	c.PrintError("Plain", nil)

	assert.Equal(t, strings.Join([]string{
		"Save folder: /comics",
		"Downloading Comic 1989-04-16 ... Done",
		"Downloading Comic 1989-04-17 ... Failed",
		"Can't find image for 1989-04-18",
		"Run failed: boom",
		"Plain",
		"",
	}, "\n"), out.String())
}

func TestWaitForEnterNonInteractive(t *testing.T) {
	c, out := newTestConsole("")
	assert.False(t, c.Interactive())

	c.WaitForEnter("Press Enter to exit.")
	assert.Equal(t, "Press Enter to exit.\n", out.String())
}

func TestWaitForEnterInteractive(t *testing.T) {
	c, out := newTestConsole("\nleftover")
	c.SetInteractive(true)

	c.WaitForEnter("Press Enter to continue.")
	assert.Contains(t, out.String(), "Press Enter to continue.")
}

func TestStatusTrackerBounded(t *testing.T) {
	st := NewStatusTracker(4)
	assert.False(t, st.LimitReached())

	st.IncrementDownloaded(1024)
	st.IncrementDownloaded(1024)
	assert.Equal(t, "[██████████░░░░░░░░░░] 2/4", st.GetProgress())

	st.IncrementDownloaded(0)
	st.IncrementDownloaded(-1)
	assert.True(t, st.LimitReached())
	assert.Equal(t, int64(2048), st.BytesWritten)
	assert.Contains(t, st.Summary(), "2.0 KiB")
}

func TestStatusTrackerUnbounded(t *testing.T) {
	st := NewStatusTracker(0)
	st.IncrementDownloaded(10)

	assert.False(t, st.LimitReached())
	assert.Equal(t, "1 downloaded", st.GetProgress())
	assert.Contains(t, st.Summary(), "10 B")
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
