package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// WaitForEnter prints msg and blocks until a line is read. It returns right
// away when the input is not an interactive terminal, so scheduled runs never
// hang.
func (c *Console) WaitForEnter(msg string) {
	fmt.Fprintln(c.out, msg)
	if !c.interactive || c.in == nil {
		return
	}

	reader := bufio.NewReader(c.in)
	_, _ = reader.ReadString('\n')
}

// Interactive reports whether WaitForEnter will block
func (c *Console) Interactive() bool {
	return c.interactive
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
