// Package termtest drives a terminal program under a real pseudo-terminal
// so interactive behavior, including go-prompt rendering and control keys,
// can be asserted end to end.
package termtest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/creack/pty"
)

// typeDelay paces keystrokes so line-editing input is processed the way a
// human would produce it.
const typeDelay = 15 * time.Millisecond

// Console runs one command attached to a pseudo-terminal and captures
// everything the program writes to it.
type Console struct {
	cmd      *exec.Cmd
	ptm      *os.File
	output   strings.Builder
	outputMu sync.RWMutex
	cancel   context.CancelFunc
	closed   bool
}

// New prepares a command for the pseudo-terminal. The environment is
// fixed to a deterministic terminal size so prompt rendering is stable
// across machines.
func New(ctx context.Context, command string, args ...string) *Console {
	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, command, args...)
	cmd.Env = append(os.Environ(),
		"TERM=xterm-256color",
		"COLUMNS=80",
		"LINES=24",
	)
	return &Console{cmd: cmd, cancel: cancel}
}

// Start launches the command with the slave side of a new PTY as its
// controlling terminal and begins capturing output.
func (c *Console) Start() error {
	ptm, err := pty.StartWithSize(c.cmd, &pty.Winsize{Rows: 24, Cols: 80})
	if err != nil {
		return fmt.Errorf("failed to start command with pty: %w", err)
	}
	c.ptm = ptm
	go c.readOutput()
	return nil
}

// Type writes input one rune at a time with a small delay between
// keystrokes.
func (c *Console) Type(input string) error {
	if c.closed {
		return fmt.Errorf("console is closed")
	}
	for _, r := range input {
		if _, err := c.ptm.WriteString(string(r)); err != nil {
			return fmt.Errorf("failed to write input: %w", err)
		}
		time.Sleep(typeDelay)
	}
	return nil
}

// SendLine types the line and presses Enter.
func (c *Console) SendLine(line string) error {
	if err := c.Type(line); err != nil {
		return err
	}
	return c.SendKeys("enter")
}

// SendKeys sends a named control key.
func (c *Console) SendKeys(keys string) error {
	var sequence string
	switch keys {
	case "enter":
		// go-prompt maps LF to Enter.
		sequence = "\n"
	case "tab":
		sequence = "\t"
	case "ctrl-c":
		sequence = "\x03"
	case "ctrl-d":
		sequence = "\x04"
	default:
		return fmt.Errorf("unknown key sequence: %s", keys)
	}
	return c.Type(sequence)
}

// WaitForOutput polls until text appears in the captured output or the
// timeout elapses.
func (c *Console) WaitForOutput(text string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if strings.Contains(c.Output(), text) {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("expected text %q not found in output after %v:\n%s", text, timeout, c.Output())
}

// Output returns everything captured from the program so far.
func (c *Console) Output() string {
	c.outputMu.RLock()
	defer c.outputMu.RUnlock()
	return c.output.String()
}

// OutputLen returns the current length of the captured output. Combined
// with WaitForOutputSince it distinguishes a program's response from the
// terminal echo of earlier keystrokes.
func (c *Console) OutputLen() int {
	c.outputMu.RLock()
	defer c.outputMu.RUnlock()
	return c.output.Len()
}

// WaitForOutputSince polls until text appears at or after offset since in
// the captured output, or the timeout elapses.
func (c *Console) WaitForOutputSince(text string, since int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		output := c.Output()
		if since < len(output) && strings.Contains(output[since:], text) {
			return nil
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("expected text %q not found after offset %d within %v:\n%s", text, since, timeout, c.Output())
}

// WaitForExit waits for the command to finish and returns its exit code.
func (c *Console) WaitForExit(timeout time.Duration) (int, error) {
	done := make(chan error, 1)
	go func() {
		done <- c.cmd.Wait()
	}()
	select {
	case err := <-done:
		var exitErr *exec.ExitError
		switch {
		case err == nil:
			return 0, nil
		case errors.As(err, &exitErr):
			return exitErr.ExitCode(), nil
		default:
			return -1, err
		}
	case <-time.After(timeout):
		if err := c.cmd.Process.Kill(); err != nil {
			return -1, fmt.Errorf("timeout and failed to kill process: %w", err)
		}
		return -1, fmt.Errorf("command did not exit within %v", timeout)
	}
}

// Close tears the console down, killing the command if it is still
// running.
func (c *Console) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	c.cancel()
	if c.cmd.Process != nil {
		_ = c.cmd.Process.Kill()
		_ = c.cmd.Wait()
	}
	if c.ptm != nil {
		return c.ptm.Close()
	}
	return nil
}

func (c *Console) readOutput() {
	buffer := make([]byte, 4096)
	for {
		n, err := c.ptm.Read(buffer)
		if n > 0 {
			c.outputMu.Lock()
			c.output.Write(buffer[:n])
			c.outputMu.Unlock()
		}
		if err != nil {
			return
		}
	}
}
