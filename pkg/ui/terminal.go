package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Banner printed at the start of a run
const Banner = `
  ┌─────────────────────────────┐
  │  comicdl  daily strip fetch │
  └─────────────────────────────┘
`

var (
	cyan    = lipgloss.Color("#00D7D7")
	yellow  = lipgloss.Color("#FFD75F")
	red     = lipgloss.Color("#FF5F5F")
	green   = lipgloss.Color("#5FD75F")
	magenta = lipgloss.Color("#D75FD7")
	dim     = lipgloss.Color("#8A8A8A")

	bannerStyle  = lipgloss.NewStyle().Foreground(cyan).Bold(true)
	labelStyle   = lipgloss.NewStyle().Foreground(cyan)
	valueStyle   = lipgloss.NewStyle().Foreground(yellow)
	successStyle = lipgloss.NewStyle().Foreground(green).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(yellow).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(red).Bold(true)
	stripStyle   = lipgloss.NewStyle().Foreground(magenta)
	dimStyle     = lipgloss.NewStyle().Foreground(dim)
)

// Console writes user-facing progress. Logs go elsewhere.
type Console struct {
	out         io.Writer
	in          io.Reader
	color       bool
	interactive bool
}

// NewConsole creates a console. Pausing is only possible when in is a terminal.
func NewConsole(out io.Writer, in io.Reader) *Console {
	return &Console{
		out:         out,
		in:          in,
		color:       true,
		interactive: isTerminal(in),
	}
}

// Default returns a console bound to stdout and stdin
func Default() *Console {
	return NewConsole(os.Stdout, os.Stdin)
}

// SetColor toggles styling
func (c *Console) SetColor(enabled bool) {
	c.color = enabled
}

// SetInteractive overrides terminal detection
func (c *Console) SetInteractive(interactive bool) {
	c.interactive = interactive
}

func (c *Console) render(style lipgloss.Style, text string) string {
	if !c.color {
		return text
	}
	return style.Render(text)
}

// PrintBanner prints the banner
func (c *Console) PrintBanner() {
	fmt.Fprint(c.out, c.render(bannerStyle, Banner))
	fmt.Fprintln(c.out)
}

// PrintInfo prints a label and value pair
func (c *Console) PrintInfo(label string, value string) {
	fmt.Fprintf(c.out, "%s: %s\n", c.render(labelStyle, label), c.render(valueStyle, value))
}

// PrintSuccess prints a success message
func (c *Console) PrintSuccess(msg string) {
	fmt.Fprintln(c.out, c.render(successStyle, msg))
}

// PrintWarning prints a warning message
func (c *Console) PrintWarning(msg string) {
	fmt.Fprintln(c.out, c.render(warningStyle, msg))
}

// PrintError prints an error message, with the error when given
func (c *Console) PrintError(msg string, err error) {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	fmt.Fprintln(c.out, c.render(errorStyle, msg))
}

// Downloading starts a "Downloading <name> ... " line, finished by Done or Failed
func (c *Console) Downloading(name string) {
	fmt.Fprintf(c.out, "Downloading %s ... ", c.render(stripStyle, name))
}

// Done finishes a Downloading line
func (c *Console) Done() {
	fmt.Fprintln(c.out, c.render(successStyle, "Done"))
}

// Failed finishes a Downloading line
func (c *Console) Failed() {
	fmt.Fprintln(c.out, c.render(errorStyle, "Failed"))
}

// PrintDim prints secondary text
func (c *Console) PrintDim(msg string) {
	fmt.Fprintln(c.out, c.render(dimStyle, msg))
}
